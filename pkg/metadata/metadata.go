// Copyright 2025 Vulntor Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

// Package metadata holds the identity facts produced by annotations and the
// first-writer-wins merge model used to combine them.
//
// Facts live at two scopes:
//   - LocalMetadata: the single observed service (manufacturer, product, version, revision).
//   - GlobalMetadata: the host as a whole, adding os, os_version and device_type.
//
// An empty string means "unset" for every field.
package metadata

import "strings"

// Serialized field names shared by both scopes.
const (
	KeyManufacturer = "manufacturer"
	KeyProduct      = "product"
	KeyVersion      = "version"
	KeyRevision     = "revision"
	KeyDescription  = "description"
	KeyOS           = "os"
	KeyOSVersion    = "os_version"
	KeyDeviceType   = "device_type"
)

// LocalMetadata describes one observed service.
type LocalMetadata struct {
	Manufacturer string
	Product      string
	Version      string
	Revision     string
}

// Description joins the populated base fields with a single space.
// It returns "" when none is set.
func (l *LocalMetadata) Description() string {
	parts := make([]string, 0, 4)
	for _, v := range []string{l.Manufacturer, l.Product, l.Version, l.Revision} {
		if v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, " ")
}

// Merge copies every field of other that is unset on l.
func (l *LocalMetadata) Merge(other *LocalMetadata) {
	if other == nil {
		return
	}
	fill(&l.Manufacturer, other.Manufacturer)
	fill(&l.Product, other.Product)
	fill(&l.Version, other.Version)
	fill(&l.Revision, other.Revision)
}

// ToDict returns only the populated fields. The description is added when
// withDescription is true and at least one field is populated.
func (l *LocalMetadata) ToDict(withDescription bool) map[string]string {
	out := make(map[string]string, 5)
	put(out, KeyManufacturer, l.Manufacturer)
	put(out, KeyProduct, l.Product)
	put(out, KeyVersion, l.Version)
	put(out, KeyRevision, l.Revision)
	if withDescription && len(out) > 0 {
		out[KeyDescription] = l.Description()
	}
	return out
}

// GlobalMetadata describes the host. It is a superset of LocalMetadata.
type GlobalMetadata struct {
	LocalMetadata
	OS         string
	OSVersion  string
	DeviceType string
}

// Merge copies every field of other that is unset on g.
func (g *GlobalMetadata) Merge(other *GlobalMetadata) {
	if other == nil {
		return
	}
	g.LocalMetadata.Merge(&other.LocalMetadata)
	fill(&g.OS, other.OS)
	fill(&g.OSVersion, other.OSVersion)
	fill(&g.DeviceType, other.DeviceType)
}

// ToDict returns the populated base fields (plus description on request)
// followed by os, os_version and device_type when set.
func (g *GlobalMetadata) ToDict(withDescription bool) map[string]string {
	out := g.LocalMetadata.ToDict(withDescription)
	put(out, KeyOS, g.OS)
	put(out, KeyOSVersion, g.OSVersion)
	put(out, KeyDeviceType, g.DeviceType)
	return out
}

// Metadata is the result of one or more annotations for a single record.
type Metadata struct {
	Local  LocalMetadata
	Global GlobalMetadata
	Tags   Tags
}

// New returns an empty Metadata ready for use.
func New() *Metadata {
	return &Metadata{Tags: NewTags()}
}

// Merge folds other into m. m is the higher-priority side: scalar fields
// already set on m are kept, tags are unioned.
func (m *Metadata) Merge(other *Metadata) {
	if other == nil {
		return
	}
	m.Local.Merge(&other.Local)
	m.Global.Merge(&other.Global)
	if m.Tags == nil {
		m.Tags = NewTags()
	}
	m.Tags.AddAll(other.Tags)
}

// Empty reports whether neither scope has a populated field. Tags alone do
// not make a Metadata non-empty.
func (m *Metadata) Empty() bool {
	return len(m.Local.ToDict(true)) == 0 && len(m.Global.ToDict(true)) == 0
}

// AddTag adds a tag, initializing the set if needed.
func (m *Metadata) AddTag(tag string) {
	if m.Tags == nil {
		m.Tags = NewTags()
	}
	m.Tags.Add(tag)
}

// Clone returns a deep copy of m.
func (m *Metadata) Clone() *Metadata {
	c := &Metadata{Local: m.Local, Global: m.Global, Tags: NewTags()}
	c.Tags.AddAll(m.Tags)
	return c
}

func fill(dst *string, src string) {
	if *dst == "" {
		*dst = src
	}
}

func put(out map[string]string, key, value string) {
	if value != "" {
		out[key] = value
	}
}

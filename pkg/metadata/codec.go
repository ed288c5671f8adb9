// Copyright 2025 Vulntor Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package metadata

import (
	"encoding/json"
	"fmt"
)

// Document is the serialized layout consumed downstream.
type Document struct {
	Local  map[string]string `json:"local" yaml:"local"`
	Global map[string]string `json:"global" yaml:"global"`
	Tags   []string          `json:"tags" yaml:"tags"`
}

// Document renders m with null-omission. Descriptions are included when
// withDescription is true.
func (m *Metadata) Document(withDescription bool) Document {
	tags := m.Tags.Sorted()
	return Document{
		Local:  m.Local.ToDict(withDescription),
		Global: m.Global.ToDict(withDescription),
		Tags:   tags,
	}
}

// MarshalJSON implements json.Marshaler.
func (m *Metadata) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.Document(true))
}

// UnmarshalJSON implements json.Unmarshaler. Descriptions are derived, so
// any description key in the input is ignored.
func (m *Metadata) UnmarshalJSON(data []byte) error {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("decode metadata: %w", err)
	}
	parsed, err := FromDocument(doc)
	if err != nil {
		return err
	}
	*m = *parsed
	return nil
}

// FromDocument rebuilds a Metadata from its serialized layout.
func FromDocument(doc Document) (*Metadata, error) {
	m := New()
	for k, v := range doc.Local {
		if err := m.Set(ScopeLocal, k, v); err != nil {
			return nil, err
		}
	}
	for k, v := range doc.Global {
		if err := m.Set(ScopeGlobal, k, v); err != nil {
			return nil, err
		}
	}
	for _, tag := range doc.Tags {
		m.Tags.Add(tag)
	}
	return m, nil
}

// Scope selects the local or global half of a Metadata.
type Scope string

// Known scopes.
const (
	ScopeLocal  Scope = "local"
	ScopeGlobal Scope = "global"
)

// Set assigns a field by its serialized name. Description keys are accepted
// and ignored. Unknown keys, or global-only keys on the local scope, are errors.
func (m *Metadata) Set(scope Scope, key, value string) error {
	var base *LocalMetadata
	switch scope {
	case ScopeLocal:
		base = &m.Local
	case ScopeGlobal:
		base = &m.Global.LocalMetadata
	default:
		return fmt.Errorf("unknown metadata scope %q", scope)
	}

	switch key {
	case KeyManufacturer:
		base.Manufacturer = value
	case KeyProduct:
		base.Product = value
	case KeyVersion:
		base.Version = value
	case KeyRevision:
		base.Revision = value
	case KeyDescription:
	case KeyOS, KeyOSVersion, KeyDeviceType:
		if scope != ScopeGlobal {
			return fmt.Errorf("field %q is only valid in global metadata", key)
		}
		switch key {
		case KeyOS:
			m.Global.OS = value
		case KeyOSVersion:
			m.Global.OSVersion = value
		default:
			m.Global.DeviceType = value
		}
	default:
		return fmt.Errorf("unknown metadata field %q", key)
	}
	return nil
}

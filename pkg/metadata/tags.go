// Copyright 2025 Vulntor Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package metadata

import "sort"

// Tags is a set of free-form labels.
type Tags map[string]struct{}

// NewTags builds a set from the given labels. Empty labels are ignored.
func NewTags(tags ...string) Tags {
	t := make(Tags, len(tags))
	for _, tag := range tags {
		t.Add(tag)
	}
	return t
}

// Add inserts tag unless it is empty.
func (t Tags) Add(tag string) {
	if tag == "" {
		return
	}
	t[tag] = struct{}{}
}

// AddAll unions other into t.
func (t Tags) AddAll(other Tags) {
	for tag := range other {
		t[tag] = struct{}{}
	}
}

// Has reports whether tag is present.
func (t Tags) Has(tag string) bool {
	_, ok := t[tag]
	return ok
}

// Sorted returns the labels in lexical order.
func (t Tags) Sorted() []string {
	out := make([]string, 0, len(t))
	for tag := range t {
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}

// Equal reports whether both sets hold the same labels.
func (t Tags) Equal(other Tags) bool {
	if len(t) != len(other) {
		return false
	}
	for tag := range t {
		if !other.Has(tag) {
			return false
		}
	}
	return true
}

// Copyright 2025 Vulntor Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package rules

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"sort"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"

	"github.com/vulntor/annotator/pkg/version"
)

// Store is the read-only rule store boundary. Rules returns the ordered rule
// set for an annotation name, or an error wrapping ErrRuleSetNotFound.
type Store interface {
	Rules(ctx context.Context, name string) ([]Rule, error)
	Names(ctx context.Context) ([]string, error)
}

// SupportedSchema is the schema_version range this build understands.
const SupportedSchema = "^1.0.0"

var supportedSchema = semver.MustParse("1.0.0")

//go:embed data/rules.yaml
var embeddedRulesYAML []byte

// Document is the YAML layout of a rule file.
type Document struct {
	SchemaVersion string `yaml:"schema_version"`
	// Requires is an optional constraint on the annotator version.
	Requires    string            `yaml:"requires,omitempty"`
	Annotations map[string][]Rule `yaml:"annotations"`
}

// MemoryStore serves rule sets held in memory. It backs both the embedded
// catalog and YAML files.
type MemoryStore struct {
	sets map[string][]Rule
}

// NewMemoryStore builds a store from rule sets keyed by annotation name.
func NewMemoryStore(sets map[string][]Rule) *MemoryStore {
	copied := make(map[string][]Rule, len(sets))
	for name, rs := range sets {
		copied[name] = append([]Rule(nil), rs...)
	}
	return &MemoryStore{sets: copied}
}

// Rules implements Store.
func (s *MemoryStore) Rules(_ context.Context, name string) ([]Rule, error) {
	rs, ok := s.sets[name]
	if !ok {
		return nil, notFound(name)
	}
	return append([]Rule(nil), rs...), nil
}

// Names implements Store.
func (s *MemoryStore) Names(_ context.Context) ([]string, error) {
	names := make([]string, 0, len(s.sets))
	for name := range s.sets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// ParseDocument decodes a YAML rule document and checks its schema version.
// Rules are validated but not compiled; pattern errors surface when a rule
// set is loaded for an annotation.
func ParseDocument(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse rule YAML: %w", err)
	}
	if err := checkSchema(doc.SchemaVersion); err != nil {
		return nil, err
	}
	if doc.Requires != "" {
		ok, err := version.Satisfies(doc.Requires)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSchemaUnsupported, err)
		}
		if !ok {
			return nil, fmt.Errorf("%w: rules require annotator %s, running %s", ErrSchemaUnsupported, doc.Requires, version.Version)
		}
	}
	for name, rs := range doc.Annotations {
		for i, r := range rs {
			if err := r.Validate(); err != nil {
				return nil, fmt.Errorf("annotation %q rule[%d]: %w", name, i, err)
			}
		}
	}
	return &doc, nil
}

func checkSchema(v string) error {
	if v == "" {
		return fmt.Errorf("%w: schema_version is missing", ErrSchemaUnsupported)
	}
	got, err := semver.NewVersion(v)
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrSchemaUnsupported, v, err)
	}
	constraint, err := semver.NewConstraint(SupportedSchema)
	if err != nil {
		return err
	}
	if !constraint.Check(got) {
		return fmt.Errorf("%w: %s (supported %s)", ErrSchemaUnsupported, got, SupportedSchema)
	}
	return nil
}

// LoadYAML parses a rule document into a MemoryStore.
func LoadYAML(data []byte) (*MemoryStore, error) {
	doc, err := ParseDocument(data)
	if err != nil {
		return nil, err
	}
	return NewMemoryStore(doc.Annotations), nil
}

// LoadYAMLFile reads a rule document from disk.
func LoadYAMLFile(path string) (*MemoryStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rule file: %w", err)
	}
	return LoadYAML(data)
}

// Embedded returns the rule catalog compiled into the binary.
func Embedded() (*MemoryStore, error) {
	return LoadYAML(embeddedRulesYAML)
}

// SchemaVersion reports the schema version this build writes.
func SchemaVersion() string {
	return supportedSchema.String()
}

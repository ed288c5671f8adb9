// Copyright 2025 Vulntor Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

// Package rules implements the declarative rule store consumed by rule-driven
// annotations.
//
// A rule set is an ordered list of rules keyed by annotation name. Each rule
// is a regular expression plus a mapping from output fields to templates.
// Templates follow regexp.Expand syntax: "$1" or "${name}" insert a capture
// group, any other text is copied as is, and "$$" is a literal dollar sign.
// A template that expands to an empty string leaves its field unset.
package rules

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/vulntor/annotator/pkg/metadata"
)

// Output field keys accepted in Rule.Fields.
const (
	FieldLocalManufacturer  = "local.manufacturer"
	FieldLocalProduct       = "local.product"
	FieldLocalVersion       = "local.version"
	FieldLocalRevision      = "local.revision"
	FieldGlobalManufacturer = "global.manufacturer"
	FieldGlobalProduct      = "global.product"
	FieldGlobalVersion      = "global.version"
	FieldGlobalRevision     = "global.revision"
	FieldGlobalOS           = "global.os"
	FieldGlobalOSVersion    = "global.os_version"
	FieldGlobalDeviceType   = "global.device_type"
)

// Rule is one stored pattern with its field mappings.
type Rule struct {
	ID      string            `yaml:"id" json:"id" validate:"required"`
	Pattern string            `yaml:"pattern" json:"pattern" validate:"required"`
	Fields  map[string]string `yaml:"fields" json:"fields" validate:"dive,keys,oneof=local.manufacturer local.product local.version local.revision global.manufacturer global.product global.version global.revision global.os global.os_version global.device_type,endkeys"`
	Tags    []string          `yaml:"tags,omitempty" json:"tags,omitempty" validate:"dive,required"`
}

var validate = validator.New()

// Validate checks the declaration of r without compiling its pattern.
func (r Rule) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("rule %q: %w", r.ID, err)
	}
	if len(r.Fields) == 0 && len(r.Tags) == 0 {
		return fmt.Errorf("rule %q: no fields or tags to emit", r.ID)
	}
	return nil
}

type fieldTemplate struct {
	scope    metadata.Scope
	key      string
	template string
}

// CompiledRule is a validated rule with its expression compiled. It is
// immutable and safe for concurrent use.
type CompiledRule struct {
	Rule
	re     *regexp.Regexp
	fields []fieldTemplate
}

// Compile validates and compiles one rule. Pattern failures are reported as
// *PatternError.
func Compile(r Rule) (*CompiledRule, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	re, err := regexp.Compile(r.Pattern)
	if err != nil {
		return nil, &PatternError{RuleID: r.ID, Pattern: r.Pattern, Err: err}
	}

	keys := make([]string, 0, len(r.Fields))
	for k := range r.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	c := &CompiledRule{Rule: r, re: re}
	for _, k := range keys {
		scope, field, _ := strings.Cut(k, ".")
		c.fields = append(c.fields, fieldTemplate{scope: metadata.Scope(scope), key: field, template: r.Fields[k]})
	}
	return c, nil
}

// CompileAll compiles a rule set, preserving order. The first failure aborts
// the whole set.
func CompileAll(rs []Rule) ([]*CompiledRule, error) {
	out := make([]*CompiledRule, 0, len(rs))
	seen := make(map[string]struct{}, len(rs))
	for _, r := range rs {
		if _, dup := seen[r.ID]; dup {
			return nil, fmt.Errorf("duplicate rule id %q", r.ID)
		}
		seen[r.ID] = struct{}{}
		c, err := Compile(r)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// Apply matches text and builds the resulting metadata. It returns false
// when the pattern does not match.
func (c *CompiledRule) Apply(text string) (*metadata.Metadata, bool) {
	idx := c.re.FindStringSubmatchIndex(text)
	if idx == nil {
		return nil, false
	}

	meta := metadata.New()
	for _, f := range c.fields {
		v := c.expand(f.template, text, idx)
		if v == "" {
			continue
		}
		// Keys were checked by Validate.
		_ = meta.Set(f.scope, f.key, v)
	}
	for _, tag := range c.Tags {
		meta.Tags.Add(c.expand(tag, text, idx))
	}
	return meta, true
}

func (c *CompiledRule) expand(template, text string, idx []int) string {
	return strings.TrimSpace(string(c.re.ExpandString(nil, template, text, idx)))
}

// FirstMatch scans rules in order and returns the metadata of the first one
// whose pattern matches text, together with that rule. It returns nil when
// nothing matches.
func FirstMatch(rs []*CompiledRule, text string) (*metadata.Metadata, *CompiledRule) {
	for _, r := range rs {
		if meta, ok := r.Apply(text); ok {
			return meta, r
		}
	}
	return nil, nil
}

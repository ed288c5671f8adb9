// Copyright 2025 Vulntor Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package annotation

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/vulntor/annotator/pkg/rules"
)

// Kind names the extraction strategy of a registered unit.
type Kind string

const (
	KindProcessor  Kind = "processor"
	KindRuleTester Kind = "rule_tester"
)

// RegistrationResult records the outcome of registering one annotation.
type RegistrationResult struct {
	Name string
	Kind Kind
	// Err is set when the unit was declared but excluded from the active set.
	Err error
}

// OK reports whether the unit is active.
func (r RegistrationResult) OK() bool { return r.Err == nil }

// Registry is the ordered set of annotations an Engine runs. Declaration
// order is merge precedence: earlier units win ties on scalar fields.
// A Registry is built once at startup and must not be modified after an
// Engine has been created from it.
type Registry struct {
	units   []Annotation
	names   map[string]struct{}
	results []RegistrationResult
	logger  zerolog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger zerolog.Logger) *Registry {
	return &Registry{
		names:  make(map[string]struct{}),
		logger: logger.With().Str("component", "registry").Logger(),
	}
}

// Register adds a unit to the active set. An inconsistent declaration
// returns an error wrapping ErrInvalidDeclaration.
func (r *Registry) Register(a Annotation) error {
	kind, err := r.validate(a)
	if err != nil {
		return err
	}
	if rt, ok := a.(*RuleTester); ok && !rt.Bound() {
		return invalidDeclaration(a.Name(), "rule tester has no rule set; use RegisterRuleTester")
	}
	r.names[a.Name()] = struct{}{}
	r.units = append(r.units, a)
	r.results = append(r.results, RegistrationResult{Name: a.Name(), Kind: kind})
	return nil
}

// RegisterRuleTester loads and compiles the rule set named after rt and adds
// rt to the active set. A rule set that cannot be loaded is recorded as a
// failed registration and the unit is left out; only declaration errors are
// returned.
func (r *Registry) RegisterRuleTester(ctx context.Context, rt *RuleTester, cache *rules.Cache) error {
	if _, err := r.validate(rt); err != nil {
		return err
	}
	r.names[rt.Name()] = struct{}{}

	compiled, err := cache.Compiled(ctx, rt.Name())
	if err != nil {
		r.logger.Warn().
			Err(err).
			Str("annotation", rt.Name()).
			Str("code", rules.ErrorCode(err)).
			Msg("rule set unavailable, annotation disabled")
		r.results = append(r.results, RegistrationResult{Name: rt.Name(), Kind: KindRuleTester, Err: err})
		return nil
	}
	if compiled == nil {
		compiled = []*rules.CompiledRule{}
	}
	rt.rules = compiled
	r.units = append(r.units, rt)
	r.results = append(r.results, RegistrationResult{Name: rt.Name(), Kind: KindRuleTester})
	r.logger.Debug().Str("annotation", rt.Name()).Int("rules", len(compiled)).Msg("rule set loaded")
	return nil
}

func (r *Registry) validate(a Annotation) (Kind, error) {
	if a == nil {
		return "", invalidDeclaration("", "nil annotation")
	}
	name := a.Name()
	if name == "" {
		return "", invalidDeclaration(name, "empty name")
	}
	if _, dup := r.names[name]; dup {
		return "", invalidDeclaration(name, "duplicate name")
	}

	f := a.Filter()
	if f.Port < 0 || f.Port > 65535 {
		return "", invalidDeclaration(name, "port %d out of range", f.Port)
	}
	if !f.Subprotocol.IsZero() {
		if f.Protocol.IsZero() {
			return "", invalidDeclaration(name, "subprotocol %s without protocol", f.Subprotocol)
		}
		if !f.Subprotocol.BelongsTo(f.Protocol) {
			return "", invalidDeclaration(name, "subprotocol %s does not belong to %s", f.Subprotocol, f.Protocol)
		}
	}

	switch u := a.(type) {
	case *RuleTester:
		if u.Field == "" {
			return "", invalidDeclaration(name, "rule tester without field")
		}
		return KindRuleTester, nil
	case Processor:
		return KindProcessor, nil
	default:
		return "", invalidDeclaration(name, "neither a processor nor a rule tester")
	}
}

// Annotations returns the active units in declaration order.
func (r *Registry) Annotations() []Annotation {
	return append([]Annotation(nil), r.units...)
}

// Results returns every registration outcome in declaration order.
func (r *Registry) Results() []RegistrationResult {
	return append([]RegistrationResult(nil), r.results...)
}

// Failed returns the number of declared units excluded from the active set.
func (r *Registry) Failed() int {
	n := 0
	for _, res := range r.results {
		if !res.OK() {
			n++
		}
	}
	return n
}

// Len returns the number of active units.
func (r *Registry) Len() int { return len(r.units) }

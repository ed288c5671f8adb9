// Copyright 2025 Vulntor Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

// Package annotation defines the classification unit contract and the engine
// that runs a fixed set of units against scan records.
//
// An annotation is one of two kinds. A Processor carries arbitrary Go logic.
// A *RuleTester is backed by an ordered rule set from the rule store and
// returns the result of the first rule that matches. Both share the same
// port/protocol/subprotocol gates, and the Engine runs them uniformly in
// declaration order, folding their results into one Metadata.
package annotation

import (
	"fmt"

	"github.com/vulntor/annotator/pkg/metadata"
	"github.com/vulntor/annotator/pkg/protocols"
	"github.com/vulntor/annotator/pkg/record"
	"github.com/vulntor/annotator/pkg/rules"
)

// Filter holds the applicability gates of an annotation. A zero member leaves
// that dimension unconstrained, so Port 0 means "any port" and no unit can
// be gated to port 0 itself.
type Filter struct {
	Port        int
	Protocol    protocols.Protocol
	Subprotocol protocols.Subprotocol
}

// CheckPort reports whether port passes the port gate.
func (f Filter) CheckPort(port int) bool {
	return f.Port == 0 || f.Port == port
}

// CheckProtocol reports whether p passes the protocol gate.
func (f Filter) CheckProtocol(p protocols.Protocol) bool {
	return f.Protocol.IsZero() || f.Protocol.Is(p)
}

// CheckSubprotocol reports whether s passes the subprotocol gate.
func (f Filter) CheckSubprotocol(s protocols.Subprotocol) bool {
	return f.Subprotocol.IsZero() || f.Subprotocol.Is(s)
}

// Allows is the conjunction of the three gates for a record's scan context.
func (f Filter) Allows(ctx record.Context) bool {
	return f.CheckPort(ctx.Port) && f.CheckProtocol(ctx.Protocol) && f.CheckSubprotocol(ctx.Subprotocol)
}

// Compatible is Allows with the zero members of ctx treated as wildcards. It
// selects the units that could ever fire for a partially fixed context.
func (f Filter) Compatible(ctx record.Context) bool {
	return (ctx.Port == 0 || f.CheckPort(ctx.Port)) &&
		(ctx.Protocol.IsZero() || f.CheckProtocol(ctx.Protocol)) &&
		(ctx.Subprotocol.IsZero() || f.CheckSubprotocol(ctx.Subprotocol))
}

func (f Filter) String() string {
	return fmt.Sprintf("port=%d protocol=%s subprotocol=%s", f.Port, f.Protocol, f.Subprotocol)
}

// Annotation is the common contract of every classification unit.
type Annotation interface {
	Name() string
	Filter() Filter
}

// Processor is an annotation with imperative extraction logic. Process
// returns nil metadata when the record does not carry this unit's signature.
// Implementations must not keep per-call state.
type Processor interface {
	Annotation
	Process(rec *record.Record) (*metadata.Metadata, error)
}

// Expectation is one self-test case: the named device fixture, run through
// the annotation alone, must produce exactly these fields and tags.
type Expectation struct {
	Device string            `yaml:"device"`
	Local  map[string]string `yaml:"local,omitempty"`
	Global map[string]string `yaml:"global,omitempty"`
	Tags   []string          `yaml:"tags,omitempty"`
}

// Tester is implemented by annotations that ship self-test cases.
type Tester interface {
	Tests() []Expectation
}

// Base carries the declaration shared by built-in annotations. Embed it to
// get Name, Filter and Tests.
type Base struct {
	ID    string
	Gates Filter
	Cases []Expectation
}

// Name implements Annotation.
func (b Base) Name() string { return b.ID }

// Filter implements Annotation.
func (b Base) Filter() Filter { return b.Gates }

// Tests implements Tester.
func (b Base) Tests() []Expectation { return b.Cases }

// ProcessorFunc adapts a function to the Processor interface.
type ProcessorFunc struct {
	Base
	Fn func(rec *record.Record) (*metadata.Metadata, error)
}

// Process implements Processor.
func (p *ProcessorFunc) Process(rec *record.Record) (*metadata.Metadata, error) {
	return p.Fn(rec)
}

// DefaultField is the record path a RuleTester reads when Field is empty.
const DefaultField = "banner"

// RuleTester is a rule-driven annotation. Its rule set is looked up in the
// rule store by the annotation name and bound at registration.
type RuleTester struct {
	Base
	// Field is the dotted record path holding the text rules are matched
	// against.
	Field string

	rules []*rules.CompiledRule
}

// NewRuleTester declares a rule-driven annotation reading field.
func NewRuleTester(name string, gates Filter, field string, cases ...Expectation) *RuleTester {
	if field == "" {
		field = DefaultField
	}
	return &RuleTester{Base: Base{ID: name, Gates: gates, Cases: cases}, Field: field}
}

// Bound reports whether a rule set has been attached.
func (rt *RuleTester) Bound() bool { return rt.rules != nil }

// Test runs the bound rule set over the record's field. A missing or empty
// field yields nil.
func (rt *RuleTester) Test(rec *record.Record) *metadata.Metadata {
	text := rec.String(rt.Field)
	if text == "" {
		return nil
	}
	meta, _ := rules.FirstMatch(rt.rules, text)
	return meta
}

// Apply runs a single annotation against rec, bypassing its gates. It is the
// one place that dispatches over the annotation kinds.
func Apply(a Annotation, rec *record.Record) (*metadata.Metadata, error) {
	switch u := a.(type) {
	case *RuleTester:
		return u.Test(rec), nil
	case Processor:
		return u.Process(rec)
	default:
		return nil, fmt.Errorf("%w: %q has no extraction strategy", ErrInvalidDeclaration, a.Name())
	}
}

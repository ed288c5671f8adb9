// Copyright 2025 Vulntor Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package annotation

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/vulntor/annotator/pkg/metadata"
	"github.com/vulntor/annotator/pkg/record"
)

// Engine runs a fixed, ordered set of annotations over records. It holds no
// per-record state and is safe for concurrent use.
type Engine struct {
	units   []Annotation
	logger  zerolog.Logger
	metrics *Metrics
	debug   bool
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the logger used for unit failures.
func WithLogger(logger zerolog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger.With().Str("component", "engine").Logger()
	}
}

// WithMetrics attaches engine counters.
func WithMetrics(m *Metrics) EngineOption {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithDebug makes Classify stop at the first unit failure and return it
// instead of recovering.
func WithDebug(debug bool) EngineOption {
	return func(e *Engine) {
		e.debug = debug
	}
}

// NewEngine creates an engine over the active units of reg.
func NewEngine(reg *Registry, opts ...EngineOption) *Engine {
	e := &Engine{
		units:  reg.Annotations(),
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Annotations returns the units this engine runs, in order.
func (e *Engine) Annotations() []Annotation {
	return append([]Annotation(nil), e.units...)
}

// Len returns the number of units this engine runs.
func (e *Engine) Len() int { return len(e.units) }

// Eligible returns an engine restricted to the units that can fire for the
// given scan context. Zero members of ctx are wildcards. Per-record gates are
// still checked by Classify.
func (e *Engine) Eligible(ctx record.Context) *Engine {
	out := *e
	out.units = nil
	for _, u := range e.units {
		if u.Filter().Compatible(ctx) {
			out.units = append(out.units, u)
		}
	}
	return &out
}

// Classify runs every unit whose gates admit rec, in declaration order, and
// merges each result into a fresh aggregate. A unit failure is logged and
// counted and contributes nothing. The returned error is non-nil only when
// ctx is done or, in debug mode, when a unit fails; the metadata gathered so
// far is returned with it.
func (e *Engine) Classify(ctx context.Context, rec *record.Record) (*metadata.Metadata, error) {
	aggregate := metadata.New()
	for _, u := range e.units {
		if err := ctx.Err(); err != nil {
			return aggregate, err
		}
		if !u.Filter().Allows(rec.Context) {
			continue
		}

		result, err := e.run(u, rec)
		if err != nil {
			e.metrics.observeFailure(u.Name())
			e.logger.Error().
				Err(err).
				Str("annotation", u.Name()).
				Str("ip", rec.IP).
				Int("port", rec.Port).
				Str("protocol", rec.Protocol.String()).
				Str("subprotocol", rec.Subprotocol.String()).
				Msg("annotation failed")
			if e.debug {
				return aggregate, err
			}
			continue
		}
		if result == nil {
			continue
		}
		e.metrics.observeFired(u.Name())
		aggregate.Merge(result)
	}
	e.metrics.observeRecord(aggregate.Empty())
	return aggregate, nil
}

func (e *Engine) run(u Annotation, rec *record.Record) (meta *metadata.Metadata, err error) {
	defer func() {
		if r := recover(); r != nil {
			meta = nil
			err = &ExtractionError{Annotation: u.Name(), Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	meta, err = Apply(u, rec)
	if err != nil {
		return nil, &ExtractionError{Annotation: u.Name(), Err: err}
	}
	return meta, nil
}

// Copyright 2025 Vulntor Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package rules

import (
	"context"
	"sync"
	"sync/atomic"
)

type cacheEntry struct {
	mu    sync.Mutex
	done  atomic.Bool
	rules []*CompiledRule
	err   error
}

// Cache loads and compiles each rule set at most once, then serves the
// frozen result to any number of concurrent readers.
type Cache struct {
	store Store

	mu      sync.Mutex
	entries map[string]*cacheEntry
}

// NewCache wraps store.
func NewCache(store Store) *Cache {
	return &Cache{store: store, entries: make(map[string]*cacheEntry)}
}

// Compiled returns the compiled rule set for name. Failures are cached too:
// a rule set that did not load stays unavailable for the process lifetime.
// The exception is a load cut short by ctx, which the next call retries.
func (c *Cache) Compiled(ctx context.Context, name string) ([]*CompiledRule, error) {
	c.mu.Lock()
	e, ok := c.entries[name]
	if !ok {
		e = &cacheEntry{}
		c.entries[name] = e
	}
	c.mu.Unlock()

	if e.done.Load() {
		return e.rules, e.err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.done.Load() {
		return e.rules, e.err
	}

	rs, err := c.store.Rules(ctx, name)
	if err != nil && ctx.Err() != nil {
		return nil, err
	}
	if err != nil {
		e.err = err
	} else {
		e.rules, e.err = CompileAll(rs)
	}
	e.done.Store(true)
	return e.rules, e.err
}

// Store returns the underlying store.
func (c *Cache) Store() Store {
	return c.store
}

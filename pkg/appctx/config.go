// Copyright 2025 Vulntor Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

// Package appctx hands the state prepared by the root command to its
// subcommands through a context.
package appctx

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/vulntor/annotator/pkg/config"
	"github.com/vulntor/annotator/pkg/logging"
)

// ErrNoSession is returned when a command runs without the root pre-run.
var ErrNoSession = errors.New("configuration not loaded")

type sessionKey struct{}

// Session is the loaded configuration of one CLI invocation.
type Session struct {
	Manager *config.Manager
}

// WithSession attaches s to ctx.
func WithSession(ctx context.Context, s *Session) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, sessionKey{}, s)
}

// SessionFrom returns the session attached to ctx.
func SessionFrom(ctx context.Context) (*Session, error) {
	if ctx == nil {
		return nil, ErrNoSession
	}
	s, _ := ctx.Value(sessionKey{}).(*Session)
	if s == nil || s.Manager == nil {
		return nil, ErrNoSession
	}
	return s, nil
}

// Config returns a snapshot of the loaded configuration.
func (s *Session) Config() config.Config {
	return s.Manager.Get()
}

// Logger builds a component logger at the configured level. An unparsable
// level falls back to info.
func (s *Session) Logger(component string) zerolog.Logger {
	level, err := logging.ParseLevel(s.Config().Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	return logging.NewLogger(component, level)
}

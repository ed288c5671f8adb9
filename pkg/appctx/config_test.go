// Copyright 2025 Vulntor Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package appctx

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vulntor/annotator/pkg/config"
)

func loadedManager(t *testing.T, level string) *config.Manager {
	t.Helper()
	t.Setenv("ANNOTATOR_LOG_LEVEL", level)
	t.Setenv("ANNOTATOR_STREAM_WORKERS", "2")
	mgr := config.NewManager()
	require.NoError(t, mgr.LoadWithSources([]config.ConfigSource{
		&config.DefaultSource{},
		&config.EnvSource{},
	}))
	return mgr
}

func TestSessionFrom(t *testing.T) {
	mgr := loadedManager(t, "warn")
	ctx := WithSession(context.Background(), &Session{Manager: mgr})

	s, err := SessionFrom(ctx)
	require.NoError(t, err)
	assert.Same(t, mgr, s.Manager)
	assert.Equal(t, 2, s.Config().Stream.Workers)
}

func TestSessionFrom_Missing(t *testing.T) {
	tests := []struct {
		name string
		ctx  context.Context
	}{
		{"nil context", nil},
		{"no session", context.Background()},
		{"session without manager", WithSession(context.Background(), &Session{})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := SessionFrom(tt.ctx)
			assert.ErrorIs(t, err, ErrNoSession)
		})
	}
}

func TestWithSession_NilContext(t *testing.T) {
	//nolint:staticcheck
	ctx := WithSession(nil, &Session{Manager: config.NewManager()})
	_, err := SessionFrom(ctx)
	assert.NoError(t, err)
}

func TestSession_Logger(t *testing.T) {
	s := &Session{Manager: loadedManager(t, "debug")}
	assert.Equal(t, zerolog.DebugLevel, s.Logger("annotate").GetLevel())

	s = &Session{Manager: config.NewManager()}
	assert.Equal(t, zerolog.InfoLevel, s.Logger("annotate").GetLevel())
}

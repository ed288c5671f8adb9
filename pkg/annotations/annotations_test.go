// Copyright 2025 Vulntor Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package annotations

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vulntor/annotator/pkg/annotation"
	"github.com/vulntor/annotator/pkg/protocols"
	"github.com/vulntor/annotator/pkg/record"
	"github.com/vulntor/annotator/pkg/rules"
)

func builtinEngine(t *testing.T) *annotation.Engine {
	t.Helper()
	store, err := rules.Embedded()
	require.NoError(t, err)
	reg, err := NewRegistry(context.Background(), zerolog.Nop(), rules.NewCache(store))
	require.NoError(t, err)
	require.Equal(t, len(Builtin()), reg.Len())
	return annotation.NewEngine(reg)
}

func TestBuiltin_UniqueNames(t *testing.T) {
	seen := map[string]bool{}
	for _, a := range Builtin() {
		assert.False(t, seen[a.Name()], a.Name())
		seen[a.Name()] = true
	}
}

func TestEngine_HTTPPrecedence(t *testing.T) {
	engine := builtinEngine(t)
	ctx := record.Context{Port: 80, Protocol: protocols.HTTP, Subprotocol: protocols.HTTPGet}

	cases := []struct {
		server       string
		manufacturer string
		product      string
		version      string
		os           string
	}{
		{"Apache/2.4.29 (Ubuntu)", "Apache", "Apache", "2.4.29", "Ubuntu"},
		{"nginx/1.18.0", "Nginx", "nginx", "1.18.0", ""},
		{"Microsoft-IIS/10.0", "Microsoft", "IIS", "10.0", "Windows"},
		{"Apache-Coyote/1.1", "", "Apache-Coyote", "1.1", ""},
		{"Jetty(9.4.z-SNAPSHOT)", "", "Jetty", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.server, func(t *testing.T) {
			rec := record.New(ctx, map[string]any{"headers": map[string]any{"server": tc.server}})
			meta, err := engine.Classify(context.Background(), rec)
			require.NoError(t, err)
			assert.Equal(t, tc.manufacturer, meta.Local.Manufacturer)
			assert.Equal(t, tc.product, meta.Local.Product)
			assert.Equal(t, tc.version, meta.Local.Version)
			assert.Equal(t, tc.os, meta.Global.OS)
		})
	}
}

func TestEngine_ProtocolIsolation(t *testing.T) {
	engine := builtinEngine(t)

	// An SSH banner on an FTP record must not reach the SSH rule set.
	rec := record.New(record.Context{Port: 21, Protocol: protocols.FTP, Subprotocol: protocols.Banner},
		map[string]any{"banner": "SSH-2.0-OpenSSH_8.2p1"})
	meta, err := engine.Classify(context.Background(), rec)
	require.NoError(t, err)
	assert.True(t, meta.Empty())

	rec = record.New(record.Context{Port: 22, Protocol: protocols.SSH, Subprotocol: protocols.SSHV2},
		map[string]any{"banner": "SSH-2.0-OpenSSH_8.2p1"})
	meta, err = engine.Classify(context.Background(), rec)
	require.NoError(t, err)
	assert.Equal(t, "OpenSSH", meta.Local.Product)
	assert.Equal(t, "8.2p1", meta.Local.Version)
}

func TestEngine_FortinetCertificate(t *testing.T) {
	engine := builtinEngine(t)
	rec := record.New(record.Context{Port: 443, Protocol: protocols.HTTPS, Subprotocol: protocols.HTTPSTLS},
		map[string]any{"certificate": map[string]any{"parsed": map[string]any{
			"subject": map[string]any{"organization": []any{"Fortinet"}, "common_name": []any{"FMG-VM0A12345"}},
		}}})

	meta, err := engine.Classify(context.Background(), rec)
	require.NoError(t, err)
	assert.Equal(t, "Fortinet", meta.Global.Manufacturer)
	assert.Empty(t, meta.Global.Product)
	assert.True(t, meta.Tags.Has("embedded"))
}

type brokenStore struct{}

func (brokenStore) Rules(context.Context, string) ([]rules.Rule, error) {
	return nil, errors.New("database is locked")
}

func (brokenStore) Names(context.Context) ([]string, error) { return nil, nil }

func TestRegister_UnavailableRulesDisableOnlyRuleTesters(t *testing.T) {
	reg, err := NewRegistry(context.Background(), zerolog.Nop(), rules.NewCache(brokenStore{}))
	require.NoError(t, err)

	processors := 0
	for _, a := range Builtin() {
		if _, ok := a.(*annotation.RuleTester); !ok {
			processors++
		}
	}
	assert.Equal(t, processors, reg.Len())
	assert.Equal(t, len(Builtin())-processors, reg.Failed())
}

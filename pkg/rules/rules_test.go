// Copyright 2025 Vulntor Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package rules

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vulntor/annotator/pkg/version"
)

func mustCompile(t *testing.T, rs ...Rule) []*CompiledRule {
	t.Helper()
	out, err := CompileAll(rs)
	require.NoError(t, err)
	return out
}

func TestFirstMatch_OrderWins(t *testing.T) {
	rs := mustCompile(t,
		Rule{ID: "a", Pattern: "^A", Fields: map[string]string{FieldLocalProduct: "X"}},
		Rule{ID: "ab", Pattern: "^AB", Fields: map[string]string{FieldLocalProduct: "Y"}},
	)

	meta, matched := FirstMatch(rs, "ABC")
	require.NotNil(t, meta)
	assert.Equal(t, "a", matched.ID)
	assert.Equal(t, "X", meta.Local.Product)

	meta, matched = FirstMatch(rs, "ZZZ")
	assert.Nil(t, meta)
	assert.Nil(t, matched)
}

func TestCompiledRule_Apply(t *testing.T) {
	rs := mustCompile(t, Rule{
		ID:      "openssh",
		Pattern: `^SSH-[\d.]+-OpenSSH_(?P<ver>[\w.]+)(?: (\w+)-)?`,
		Fields: map[string]string{
			FieldLocalProduct:  "OpenSSH",
			FieldLocalVersion:  "${ver}",
			FieldGlobalOS:      "$2",
			FieldGlobalVersion: "  ",
		},
		Tags: []string{"ssh", "os-$2"},
	})

	meta, ok := rs[0].Apply("SSH-2.0-OpenSSH_7.4p1 Debian-10")
	require.True(t, ok)
	assert.Equal(t, "OpenSSH", meta.Local.Product)
	assert.Equal(t, "7.4p1", meta.Local.Version)
	assert.Equal(t, "Debian", meta.Global.OS)
	assert.Empty(t, meta.Global.Version)
	assert.ElementsMatch(t, []string{"ssh", "os-Debian"}, meta.Tags.Sorted())

	// Unmatched optional group leaves the field unset.
	meta, ok = rs[0].Apply("SSH-2.0-OpenSSH_8.0")
	require.True(t, ok)
	assert.Empty(t, meta.Global.OS)
	assert.Equal(t, []string{"os-", "ssh"}, meta.Tags.Sorted())
}

func TestCompile_Errors(t *testing.T) {
	_, err := Compile(Rule{ID: "bad", Pattern: "([", Fields: map[string]string{FieldLocalProduct: "x"}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPatternInvalid))
	var pe *PatternError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "bad", pe.RuleID)
	assert.Equal(t, "RULES_PATTERN_INVALID", ErrorCode(err))

	_, err = Compile(Rule{ID: "nofields", Pattern: "x"})
	assert.Error(t, err)

	_, err = Compile(Rule{ID: "badkey", Pattern: "x", Fields: map[string]string{"local.os": "x"}})
	assert.Error(t, err)

	_, err = CompileAll([]Rule{
		{ID: "dup", Pattern: "a", Tags: []string{"a"}},
		{ID: "dup", Pattern: "b", Tags: []string{"b"}},
	})
	assert.Error(t, err)
}

func TestParseDocument_SchemaVersion(t *testing.T) {
	cases := []struct {
		name    string
		doc     string
		wantErr bool
	}{
		{"current", "schema_version: \"1.0.0\"\nannotations: {}\n", false},
		{"minor bump", "schema_version: \"1.3.0\"\nannotations: {}\n", false},
		{"major bump", "schema_version: \"2.0.0\"\nannotations: {}\n", true},
		{"missing", "annotations: {}\n", true},
		{"garbage", "schema_version: \"one\"\n", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseDocument([]byte(tc.doc))
			if tc.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrSchemaUnsupported))
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestParseDocument_Requires(t *testing.T) {
	prev := version.Version
	t.Cleanup(func() { version.Version = prev })
	version.Version = "1.2.0"

	_, err := ParseDocument([]byte("schema_version: \"1.0.0\"\nrequires: \">= 1.1\"\nannotations: {}\n"))
	require.NoError(t, err)

	_, err = ParseDocument([]byte("schema_version: \"1.0.0\"\nrequires: \">= 1.5\"\nannotations: {}\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSchemaUnsupported)
	assert.Equal(t, "RULES_SCHEMA_UNSUPPORTED", ErrorCode(err))
}

func TestEmbedded_Compiles(t *testing.T) {
	store, err := Embedded()
	require.NoError(t, err)

	ctx := context.Background()
	names, err := store.Names(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, names)

	for _, name := range names {
		rs, err := store.Rules(ctx, name)
		require.NoError(t, err)
		_, err = CompileAll(rs)
		require.NoError(t, err, name)
	}
}

func TestMemoryStore_NotFound(t *testing.T) {
	store := NewMemoryStore(nil)
	_, err := store.Rules(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRuleSetNotFound))
	assert.Equal(t, "RULES_SET_NOT_FOUND", ErrorCode(err))
}

type countingStore struct {
	Store
	mu    sync.Mutex
	calls int
}

func (c *countingStore) Rules(ctx context.Context, name string) ([]Rule, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	return c.Store.Rules(ctx, name)
}

func TestCache_LoadsOnce(t *testing.T) {
	inner := NewMemoryStore(map[string][]Rule{
		"x": {{ID: "x", Pattern: "x", Tags: []string{"x"}}},
	})
	store := &countingStore{Store: inner}
	cache := NewCache(store)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rs, err := cache.Compiled(context.Background(), "x")
			assert.NoError(t, err)
			assert.Len(t, rs, 1)
		}()
	}
	wg.Wait()

	_, err := cache.Compiled(context.Background(), "missing")
	assert.Error(t, err)
	_, err = cache.Compiled(context.Background(), "missing")
	assert.Error(t, err)

	assert.Equal(t, 2, store.calls)
}

func TestCache_CancelledLoadIsRetried(t *testing.T) {
	store, err := OpenSQLite(filepath.Join(t.TempDir(), "rules.db"))
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	_, err = store.Import(context.Background(), "test", map[string][]Rule{
		"a": {{ID: "a1", Pattern: "^a", Tags: []string{"a"}}},
	})
	require.NoError(t, err)

	counting := &countingStore{Store: store}
	cache := NewCache(counting)

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = cache.Compiled(cancelled, "a")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)

	rs, err := cache.Compiled(context.Background(), "a")
	require.NoError(t, err)
	assert.Len(t, rs, 1)

	_, err = cache.Compiled(cancelled, "a")
	require.NoError(t, err)
	assert.Equal(t, 2, counting.calls)
}

func TestSQLiteStore_ImportAndRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.db")
	store, err := OpenSQLite(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	ctx := context.Background()
	sets := map[string][]Rule{
		"ftp_products": {
			{ID: "first", Pattern: "^A", Fields: map[string]string{FieldLocalProduct: "X"}},
			{ID: "second", Pattern: "^AB", Fields: map[string]string{FieldLocalProduct: "Y"}, Tags: []string{"t"}},
		},
	}
	n, err := store.Import(ctx, "test", sets)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	rs, err := store.Rules(ctx, "ftp_products")
	require.NoError(t, err)
	require.Len(t, rs, 2)
	assert.Equal(t, "first", rs[0].ID)
	assert.Equal(t, []string{"t"}, rs[1].Tags)
	assert.Empty(t, rs[0].Tags)

	names, err := store.Names(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"ftp_products"}, names)

	// Re-import replaces the set instead of appending.
	sets["ftp_products"] = sets["ftp_products"][1:]
	_, err = store.Import(ctx, "test", sets)
	require.NoError(t, err)
	rs, err = store.Rules(ctx, "ftp_products")
	require.NoError(t, err)
	assert.Len(t, rs, 1)

	_, err = store.Rules(ctx, "missing")
	assert.True(t, errors.Is(err, ErrRuleSetNotFound))

	// Reopening keeps data and skips applied migrations.
	require.NoError(t, store.Close())
	reopened, err := OpenSQLite(path)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()
	rs, err = reopened.Rules(ctx, "ftp_products")
	require.NoError(t, err)
	assert.Len(t, rs, 1)
}

func TestSQLiteStore_ImportRejectsInvalidRule(t *testing.T) {
	store, err := OpenSQLite(filepath.Join(t.TempDir(), "rules.db"))
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	_, err = store.Import(context.Background(), "test", map[string][]Rule{
		"x": {{ID: "", Pattern: "x", Tags: []string{"x"}}},
	})
	assert.Error(t, err)

	names, err := store.Names(context.Background())
	require.NoError(t, err)
	assert.Empty(t, names)
}

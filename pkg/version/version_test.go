// Copyright 2025 Vulntor Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package version

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInfo_ReturnsFormattedString(t *testing.T) {
	info := Info()
	assert.Contains(t, info, "annotator")
	assert.Contains(t, info, Version)
	assert.Contains(t, info, Commit)
	assert.Contains(t, info, BuildDate)
}

func TestGet_ReturnsCorrectStruct(t *testing.T) {
	v := Get()
	assert.Equal(t, Version, v.Version)
	assert.Equal(t, Commit, v.Commit)
	assert.Equal(t, BuildDate, v.BuildDate)
}

func TestStartDate_IsInitialized(t *testing.T) {
	assert.Less(t, time.Since(StartDate), time.Minute)
}

func TestSatisfies(t *testing.T) {
	prev := Version
	t.Cleanup(func() { Version = prev })

	Version = "1.4.2"
	ok, err := Satisfies(">= 1.2")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Satisfies("^2")
	require.NoError(t, err)
	assert.False(t, ok)

	Version = "dev"
	ok, err = Satisfies("^2")
	require.NoError(t, err)
	assert.True(t, ok, "development builds satisfy every constraint")

	_, err = Satisfies("not a constraint")
	assert.Error(t, err)
}

// Copyright 2025 Vulntor Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package format

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	m, err := ParseMode("JSON")
	require.NoError(t, err)
	assert.Equal(t, ModeJSON, m)

	m, err = ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeTable, m)

	_, err = ParseMode("csv")
	assert.Error(t, err)
}

func TestPrinter_Table(t *testing.T) {
	var out bytes.Buffer
	p := &Printer{Out: &out, Mode: ModeTable}
	require.NoError(t, p.Table([]string{"name", "rules"}, [][]string{{"ssh_products", "5"}, {"ftp_products", "5"}}))

	lines := bytes.Split(bytes.TrimSpace(out.Bytes()), []byte("\n"))
	require.Len(t, lines, 3)
	assert.Equal(t, "NAME          RULES", string(lines[0]))
	assert.Equal(t, "ssh_products  5", string(lines[1]))
}

func TestPrinter_TableAsJSON(t *testing.T) {
	var out, errOut bytes.Buffer
	p := &Printer{Out: &out, Err: &errOut, Mode: ModeJSON}
	require.NoError(t, p.Table([]string{"name", "rules"}, [][]string{{"ssh_products", "5"}}))
	require.NoError(t, p.Summary("%d rule sets", 1))

	var items []map[string]string
	require.NoError(t, json.Unmarshal(out.Bytes(), &items))
	assert.Equal(t, []map[string]string{{"name": "ssh_products", "rules": "5"}}, items)
	assert.Equal(t, "1 rule sets\n", errOut.String())
}

func TestPrinter_StatusWithoutColor(t *testing.T) {
	p := &Printer{}
	assert.Equal(t, "ok", p.Status(true, "ok"))
	assert.Equal(t, "failed", p.Status(false, "failed"))
}

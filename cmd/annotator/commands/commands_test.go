// Copyright 2025 Vulntor Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package commands

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vulntor/annotator/pkg/annotation"
	"github.com/vulntor/annotator/pkg/rules"
	"github.com/vulntor/annotator/pkg/version"
)

// execute runs the root command with isolated config and data dirs.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	cmd := NewCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--log.level", "error"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func jsonLines(t *testing.T, data string) []map[string]any {
	t.Helper()
	var out []map[string]any
	sc := bufio.NewScanner(strings.NewReader(data))
	for sc.Scan() {
		var m map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &m))
		out = append(out, m)
	}
	return out
}

const httpRecords = `{"ip":"192.0.2.10","headers":{"server":"nginx/1.18.0"}}
{"ip":"192.0.2.11","title":"NETGEAR Web Smart Switch"}
{"ip":"192.0.2.12","title":"It works"}
`

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "", "version", "--short")
	require.NoError(t, err)
	assert.Equal(t, version.Version+"\n", out)

	out, err = execute(t, "", "version", "--json")
	require.NoError(t, err)
	var v map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &v))
	assert.Equal(t, version.Version, v["version"])
	assert.Equal(t, rules.SchemaVersion(), v["ruleSchema"])

	out, err = execute(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Rule schema:  "+rules.SchemaVersion())
}

func TestAnnotateCommand_FileToFile(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "http.jsonl")
	output := filepath.Join(dir, "annotated.jsonl")
	summaryPath := filepath.Join(dir, "summary.json")
	updatesPath := filepath.Join(dir, "updates.csv")
	require.NoError(t, os.WriteFile(input, []byte(httpRecords), 0o644))

	_, err := execute(t, "", "annotate",
		"--port", "80", "--protocol", "http", "--subprotocol", "get",
		"--input", input, "--output", output,
		"--stream.workers", "2",
		"--stream.summary_file", summaryPath,
		"--stream.updates_file", updatesPath,
	)
	require.NoError(t, err)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	rows := jsonLines(t, string(data))
	require.Len(t, rows, 2)

	byIP := map[string]map[string]any{}
	for _, r := range rows {
		byIP[r["ip"].(string)] = r
	}
	nginx := byIP["192.0.2.10"]
	require.NotNil(t, nginx)
	assert.Equal(t, float64(80), nginx["port"])
	assert.Equal(t, "http", nginx["protocol"])
	assert.Equal(t, "get", nginx["subprotocol"])
	local := nginx["metadata"].(map[string]any)["local"].(map[string]any)
	assert.Equal(t, "nginx", local["product"])
	assert.Equal(t, "1.18.0", local["version"])

	netgear := byIP["192.0.2.11"]
	require.NotNil(t, netgear)
	global := netgear["metadata"].(map[string]any)["global"].(map[string]any)
	assert.Equal(t, "Smart Switch", global["product"])

	raw, err := os.ReadFile(summaryPath)
	require.NoError(t, err)
	var summary map[string]any
	require.NoError(t, json.Unmarshal(raw, &summary))
	assert.Equal(t, float64(2), summary["records_handled"])
	assert.Equal(t, float64(1), summary["records_skipped"])
	assert.Greater(t, summary["eligible_annotations"].(float64), float64(0))

	updates, err := os.ReadFile(updatesPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(updates), "skipped,handled,delta_skipped,delta_handled\n"))
}

func TestAnnotateCommand_StdinEmitUnclassified(t *testing.T) {
	out, err := execute(t, httpRecords, "annotate",
		"--port", "80", "--protocol", "http", "--subprotocol", "get",
		"--stream.emit_unclassified", "--scan-id", "9",
	)
	require.NoError(t, err)
	rows := jsonLines(t, out)
	assert.Len(t, rows, 3)
	for _, r := range rows {
		assert.Equal(t, float64(9), r["scan_id"])
	}
}

func TestAnnotateCommand_RequiresScanContext(t *testing.T) {
	_, err := execute(t, httpRecords, "annotate", "--protocol", "http")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")

	_, err = execute(t, httpRecords, "annotate", "--port", "21", "--protocol", "ftp", "--subprotocol", "get")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not belong")
}

func TestAnnotateCommand_OutputFailureSkipsUpdatesFile(t *testing.T) {
	dir := t.TempDir()
	updatesPath := filepath.Join(dir, "updates.csv")

	_, err := execute(t, httpRecords, "annotate",
		"--port", "80", "--protocol", "http", "--subprotocol", "get",
		"--output", filepath.Join(dir, "missing", "annotated.jsonl"),
		"--stream.updates_file", updatesPath,
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create output")
	assert.NoFileExists(t, updatesPath)
}

func TestAnnotateCommand_InvalidConfig(t *testing.T) {
	t.Setenv("ANNOTATOR_RULES_BACKEND", "sqlite")
	_, err := execute(t, httpRecords, "annotate", "--port", "80", "--protocol", "http", "--subprotocol", "get")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load configuration")
}

func TestTestCommand_BuiltinsPass(t *testing.T) {
	out, err := execute(t, "", "test")
	require.NoError(t, err)
	assert.Contains(t, out, "tests passing")
	assert.Contains(t, out, "nginx")
}

func TestTestCommand_DisabledRuleSetFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`schema_version: "1.0.0"
annotations:
  ssh_products:
    - id: broken
      pattern: '(unclosed'
      fields:
        local.product: SSH
`), 0o644))

	_, err := execute(t, "", "test", "--rules.backend", "yaml", "--rules.path", path)
	require.Error(t, err)
	assert.ErrorIs(t, err, errSelfTestFailed)
	assert.Equal(t, 1, ExitCode(err))
}

func TestRulesCommands_ImportListCheck(t *testing.T) {
	dir := t.TempDir()
	doc := filepath.Join(dir, "rules.yaml")
	db := filepath.Join(dir, "rules.db")
	require.NoError(t, os.WriteFile(doc, []byte(`schema_version: "1.0.0"
annotations:
  telnet_devices:
    - id: busybox
      pattern: '(?i)busybox v(\d+\.\d+)'
      fields:
        global.os: Linux
        local.version: $1
    - id: zyxel
      pattern: 'ZyXEL'
      fields:
        local.manufacturer: ZyXEL
  ftp_products:
    - id: pureftpd
      pattern: 'Pure-FTPd'
      fields:
        local.product: Pure-FTPd
`), 0o644))

	out, err := execute(t, "", "rules", "import", doc, "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "imported 3 rules in 2 rule sets")

	out, err = execute(t, "", "rules", "list", "--rules.backend", "sqlite", "--rules.path", db, "--output-format", "json")
	require.NoError(t, err)
	var items []map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &items))
	assert.Equal(t, []map[string]string{
		{"annotation": "ftp_products", "rules": "1"},
		{"annotation": "telnet_devices", "rules": "2"},
	}, items)

	out, err = execute(t, "", "rules", "check", "--rules.backend", "sqlite", "--rules.path", db)
	require.NoError(t, err)
	assert.Contains(t, out, "2 rule sets compiled")

	// The .db extension selects the sqlite backend on its own.
	out, err = execute(t, "", "rules", "check", "--rules.path", db)
	require.NoError(t, err)
	assert.Contains(t, out, "2 rule sets compiled")
}

func TestRulesCommands_RejectBadPatterns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`schema_version: "1.0.0"
annotations:
  ftp_products:
    - id: broken
      pattern: '[a-'
      fields:
        local.product: FTP
`), 0o644))

	out, err := execute(t, "", "rules", "check", "--rules.backend", "yaml", "--rules.path", path)
	require.Error(t, err)
	assert.ErrorIs(t, err, rules.ErrPatternInvalid)
	assert.Contains(t, out, "RULES_PATTERN_INVALID")

	_, err = execute(t, "", "rules", "import", path, "--db", filepath.Join(t.TempDir(), "rules.db"))
	require.Error(t, err)
	assert.ErrorIs(t, err, rules.ErrPatternInvalid)
}

func TestAnnotationsCommand(t *testing.T) {
	out, err := execute(t, "", "annotations", "--output-format", "json")
	require.NoError(t, err)
	var all []map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &all))
	require.NotEmpty(t, all)
	assert.Equal(t, "netgear_smart_switch", all[0]["annotation"])
	assert.Equal(t, "1", all[0]["order"])
	for _, row := range all {
		assert.Equal(t, "loaded", row["status"], row["annotation"])
	}

	out, err = execute(t, "", "annotations", "--protocol", "ssh", "--output-format", "json")
	require.NoError(t, err)
	var ssh []map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &ssh))
	names := make([]string, 0, len(ssh))
	for _, row := range ssh {
		names = append(names, row["annotation"])
	}
	assert.Contains(t, names, "ssh_products")
	assert.NotContains(t, names, "nginx")
}

func TestConfigCommand(t *testing.T) {
	t.Setenv("ANNOTATOR_STREAM_WORKERS", "3")
	out, err := execute(t, "", "config")
	require.NoError(t, err)
	assert.Contains(t, out, "workers: 3")
	assert.Contains(t, out, "backend: embedded")
	assert.True(t, strings.HasPrefix(out, "# sources: defaults, file:"), out)
	assert.Contains(t, strings.SplitN(out, "\n", 2)[0], "env, flags")
}

func TestConfigFileFromUserDir(t *testing.T) {
	cfgHome := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(cfgHome, "annotator"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(cfgHome, "annotator", "annotator.yaml"), []byte("stream:\n  workers: 7\n"), 0o644))

	cmd := NewCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"config"})
	t.Setenv("XDG_CONFIG_HOME", cfgHome)
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "workers: 7")
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 1, ExitCode(errSelfTestFailed))
	assert.Equal(t, 1, ExitCode(fmt.Errorf("run: %w", errSelfTestFailed)))
	assert.Equal(t, 3, ExitCode(fmt.Errorf("register: %w", annotation.ErrInvalidDeclaration)))
	assert.Equal(t, 2, ExitCode(annotation.ErrMalformedRecord))
	assert.Equal(t, 1, ExitCode(assert.AnError))
}

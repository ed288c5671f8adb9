// Copyright 2025 Vulntor Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package stream

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vulntor/annotator/pkg/annotation"
	"github.com/vulntor/annotator/pkg/banner"
	"github.com/vulntor/annotator/pkg/metadata"
	"github.com/vulntor/annotator/pkg/protocols"
	"github.com/vulntor/annotator/pkg/record"
)

func ftpEngine(t *testing.T) *annotation.Engine {
	t.Helper()
	reg := annotation.NewRegistry(zerolog.Nop())
	require.NoError(t, reg.Register(&annotation.ProcessorFunc{
		Base: annotation.Base{ID: "proftpd", Gates: annotation.Filter{Protocol: protocols.FTP}},
		Fn: func(rec *record.Record) (*metadata.Metadata, error) {
			b := strings.TrimPrefix(rec.Banner(), "220 ")
			meta, ok := banner.SimpleVersion(b, "ProFTPD")
			if !ok {
				return nil, nil
			}
			return meta, nil
		},
	}))
	return annotation.NewEngine(reg)
}

const input = `{"ip":"192.0.2.1","banner":"220 ProFTPD/1.3.5"}
{"ip":"192.0.2.2","banner":"220 Microsoft FTP Service"}

not json
{"ip":"192.0.2.3","port":2121,"banner":"220 ProFTPD/1.3.6 secret-host"}
`

func decodeOutputs(t *testing.T, data []byte) []map[string]any {
	t.Helper()
	var out []map[string]any
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		var m map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &m))
		out = append(out, m)
	}
	return out
}

func TestPipeline_Run(t *testing.T) {
	cleaner, err := banner.NewCleaner([]string{`secret-\S+=>[redacted]`})
	require.NoError(t, err)

	p := &Pipeline{
		Engine:   ftpEngine(t),
		Defaults: record.Context{Port: 21, Protocol: protocols.FTP, Subprotocol: protocols.Banner},
		Workers:  3,
		Cleaner:  cleaner,
		Logger:   zerolog.Nop(),
	}

	var out bytes.Buffer
	stats, err := p.Run(context.Background(), ReaderSource{R: strings.NewReader(input)}, &out)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Handled)
	assert.Equal(t, int64(2), stats.Skipped)
	assert.False(t, stats.End.Before(stats.Start))

	rows := decodeOutputs(t, out.Bytes())
	require.Len(t, rows, 2)
	byIP := map[string]map[string]any{}
	for _, r := range rows {
		byIP[r["ip"].(string)] = r
	}

	first := byIP["192.0.2.1"]
	require.NotNil(t, first)
	assert.Equal(t, float64(21), first["port"])
	assert.Equal(t, "ftp", first["protocol"])
	assert.Equal(t, "banner", first["subprotocol"])
	local := first["metadata"].(map[string]any)["local"].(map[string]any)
	assert.Equal(t, "ProFTPD", local["product"])
	assert.Equal(t, "1.3.5", local["version"])

	third := byIP["192.0.2.3"]
	require.NotNil(t, third)
	assert.Equal(t, float64(2121), third["port"])
	local = third["metadata"].(map[string]any)["local"].(map[string]any)
	assert.Equal(t, "1.3.6 [redacted]", local["version"])
}

func TestPipeline_EmitUnclassified(t *testing.T) {
	p := &Pipeline{
		Engine:           ftpEngine(t),
		Defaults:         record.Context{Port: 21, Protocol: protocols.FTP},
		Workers:          1,
		EmitUnclassified: true,
		Logger:           zerolog.Nop(),
	}
	var out bytes.Buffer
	stats, err := p.Run(context.Background(), ReaderSource{R: strings.NewReader(input)}, &out)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.Handled)
	assert.Equal(t, int64(1), stats.Skipped)
}

func TestPipeline_DebugFailureStopsRun(t *testing.T) {
	reg := annotation.NewRegistry(zerolog.Nop())
	require.NoError(t, reg.Register(&annotation.ProcessorFunc{
		Base: annotation.Base{ID: "panics"},
		Fn:   func(*record.Record) (*metadata.Metadata, error) { panic("boom") },
	}))
	p := &Pipeline{
		Engine:  annotation.NewEngine(reg, annotation.WithDebug(true)),
		Workers: 2,
		Logger:  zerolog.Nop(),
	}
	_, err := p.Run(context.Background(), ReaderSource{R: strings.NewReader(input)}, &bytes.Buffer{})
	require.Error(t, err)
	assert.ErrorIs(t, err, annotation.ErrExtractionFailed)
}

func TestPipeline_ScanID(t *testing.T) {
	for _, id := range []int{0, 17} {
		p := &Pipeline{
			Engine:   ftpEngine(t),
			Defaults: record.Context{Port: 21, Protocol: protocols.FTP},
			Workers:  1,
			ScanID:   id,
			Logger:   zerolog.Nop(),
		}
		var out bytes.Buffer
		_, err := p.Run(context.Background(), ReaderSource{R: strings.NewReader(`{"ip":"192.0.2.1","banner":"220 ProFTPD/1.3.5"}`)}, &out)
		require.NoError(t, err)

		rows := decodeOutputs(t, out.Bytes())
		require.Len(t, rows, 1)
		if id == 0 {
			assert.NotContains(t, rows[0], "scan_id")
		} else {
			assert.Equal(t, float64(id), rows[0]["scan_id"])
		}
	}
}

func TestPipeline_FailureNamesScanContext(t *testing.T) {
	reg := annotation.NewRegistry(zerolog.Nop())
	require.NoError(t, reg.Register(&annotation.ProcessorFunc{
		Base: annotation.Base{ID: "fails"},
		Fn: func(*record.Record) (*metadata.Metadata, error) {
			return nil, assert.AnError
		},
	}))
	p := &Pipeline{
		Engine:   annotation.NewEngine(reg, annotation.WithDebug(true)),
		Defaults: record.Context{Port: 21, Protocol: protocols.FTP, Subprotocol: protocols.Banner},
		Workers:  1,
		Logger:   zerolog.Nop(),
	}

	tests := []struct {
		line string
		want string
	}{
		{`{"banner":"220 ready"}`, "classify - port 21 ftp/banner"},
		{`{"domain":"ftp.example.org","banner":"220 ready"}`, "classify ftp.example.org port 21 ftp/banner"},
		{`{"ip":"192.0.2.9","port":2121,"banner":"220 ready"}`, "classify 192.0.2.9 port 2121 ftp/banner"},
	}
	for _, tt := range tests {
		_, err := p.Run(context.Background(), ReaderSource{R: strings.NewReader(tt.line)}, &bytes.Buffer{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), tt.want)
	}
}

func TestPipeline_ProgressAndSummary(t *testing.T) {
	dir := t.TempDir()
	f, err := os.Create(filepath.Join(dir, "updates.csv"))
	require.NoError(t, err)

	p := &Pipeline{
		Engine:   ftpEngine(t),
		Defaults: record.Context{Port: 21, Protocol: protocols.FTP},
		Workers:  1,
		Updates:  NewUpdater(f, time.Hour),
		Logger:   zerolog.Nop(),
	}
	stats, err := p.Run(context.Background(), ReaderSource{R: strings.NewReader(input)}, &bytes.Buffer{})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "updates.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "skipped,handled,delta_skipped,delta_handled", lines[0])
	assert.Equal(t, "2,2", lines[2][:3])

	summary := NewSummary(stats, 1)
	assert.NotEmpty(t, summary.RunID)
	path := filepath.Join(dir, "summary.json")
	require.NoError(t, summary.WriteFile(path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	for _, key := range []string{"run_id", "eligible_annotations", "records_handled", "records_skipped", "start_time", "end_time", "duration"} {
		assert.Contains(t, doc, key)
	}
	assert.Equal(t, float64(2), doc["records_handled"])
}

func TestUpdater_Interval(t *testing.T) {
	var buf bytes.Buffer
	u := NewUpdater(&buf, time.Second)
	now := time.Unix(1000, 0)
	u.now = func() time.Time { return now }

	require.NoError(t, u.Put(0, 0))
	now = now.Add(500 * time.Millisecond)
	require.NoError(t, u.Put(1, 5))
	now = now.Add(time.Second)
	require.NoError(t, u.Put(2, 10))
	require.NoError(t, u.Close(2, 10))

	assert.Equal(t, "skipped,handled,delta_skipped,delta_handled\n0,0,0,0\n2,10,2,10\n", buf.String())
}

func TestDirSource_ReadsExistingAndWatches(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.jsonl"), []byte("{\"n\":2}\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.jsonl"), []byte("{\"n\":1}\n\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "skip.txt"), []byte("{\"n\":0}\n"), 0o644))

	out := make(chan []byte, 10)
	require.NoError(t, DirSource{Dir: dir}.Lines(context.Background(), out))
	close(out)
	var got []string
	for l := range out {
		got = append(got, string(l))
	}
	assert.Equal(t, []string{`{"n":1}`, `{"n":2}`}, got)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	watched := make(chan []byte, 10)
	done := make(chan error, 1)
	go func() { done <- DirSource{Dir: dir, Watch: true, Logger: zerolog.Nop()}.Lines(ctx, watched) }()

	// Drain the existing files first.
	for i := 0; i < 2; i++ {
		select {
		case <-watched:
		case <-time.After(5 * time.Second):
			t.Fatal("existing files not read")
		}
	}

	staging := filepath.Join(t.TempDir(), "c.jsonl")
	require.NoError(t, os.WriteFile(staging, []byte("{\"n\":3}\n"), 0o644))
	require.NoError(t, os.Rename(staging, filepath.Join(dir, "c.jsonl")))

	select {
	case l := <-watched:
		assert.Equal(t, `{"n":3}`, string(l))
	case <-time.After(5 * time.Second):
		t.Fatal("new file not picked up")
	}

	cancel()
	assert.NoError(t, <-done)
}

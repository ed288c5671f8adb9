// Copyright 2025 Vulntor Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

// Package stream drives records from a source through the annotation engine
// to a JSON lines sink.
//
// Lines are read by one producer, classified by a fixed pool of workers and
// written by a single writer goroutine. Output order is not guaranteed to
// match input order once more than one worker runs.
package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/vulntor/annotator/pkg/annotation"
	"github.com/vulntor/annotator/pkg/banner"
	"github.com/vulntor/annotator/pkg/metadata"
	"github.com/vulntor/annotator/pkg/record"
)

// Output is one line of the annotated stream.
type Output struct {
	IP          string             `json:"ip,omitempty"`
	Domain      string             `json:"domain,omitempty"`
	Port        int                `json:"port,omitempty"`
	Protocol    string             `json:"protocol,omitempty"`
	Subprotocol string             `json:"subprotocol,omitempty"`
	ScanID      int                `json:"scan_id,omitempty"`
	Metadata    *metadata.Metadata `json:"metadata"`
}

// Stats counts the records a run has seen.
type Stats struct {
	Handled int64
	Skipped int64
	Start   time.Time
	End     time.Time
}

// Pipeline is the configured record pipeline.
type Pipeline struct {
	Engine *annotation.Engine
	// Defaults fills the scan context of records that do not carry one.
	Defaults record.Context
	Workers  int
	// ScanID is copied onto every output record when non-zero.
	ScanID int
	// EmitUnclassified writes records with empty metadata instead of
	// counting them as skipped.
	EmitUnclassified bool
	Cleaner          *banner.Cleaner
	Updates          *Updater
	Logger           zerolog.Logger

	handled atomic.Int64
	skipped atomic.Int64
}

// Run consumes src until it is exhausted or ctx is done and writes every
// classified record to w.
func (p *Pipeline) Run(ctx context.Context, src Source, w io.Writer) (Stats, error) {
	stats := Stats{Start: time.Now()}
	p.handled.Store(0)
	p.skipped.Store(0)

	workers := p.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	g, gctx := errgroup.WithContext(ctx)
	lines := make(chan []byte, workers*4)
	results := make(chan Output, workers*4)

	g.Go(func() error {
		defer close(lines)
		return src.Lines(gctx, lines)
	})

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		g.Go(func() error {
			defer wg.Done()
			return p.work(gctx, lines, results)
		})
	}
	g.Go(func() error {
		wg.Wait()
		close(results)
		return nil
	})
	g.Go(func() error {
		return p.write(gctx, results, w)
	})

	err := g.Wait()
	stats.Handled = p.handled.Load()
	stats.Skipped = p.skipped.Load()
	stats.End = time.Now()
	if p.Updates != nil {
		if uerr := p.Updates.Close(stats.Skipped, stats.Handled); uerr != nil && err == nil {
			err = uerr
		}
	}
	return stats, err
}

func (p *Pipeline) work(ctx context.Context, lines <-chan []byte, results chan<- Output) error {
	for line := range lines {
		out, ok, err := p.classify(ctx, line)
		if err != nil {
			return err
		}
		if !ok {
			p.skipped.Add(1)
			p.progress()
			continue
		}
		select {
		case results <- out:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (p *Pipeline) classify(ctx context.Context, line []byte) (Output, bool, error) {
	rec, err := record.Decode(line, p.Defaults)
	if err != nil {
		p.Logger.Debug().
			Err(err).
			Str("line", banner.Snippet(string(line), 120)).
			Msg("skipping malformed record")
		return Output{}, false, nil
	}
	if p.Cleaner != nil {
		if b, ok := rec.Data["banner"].(string); ok {
			rec.Data["banner"] = p.Cleaner.Clean(b)
		}
	}

	meta, err := p.Engine.Classify(ctx, rec)
	if err != nil {
		return Output{}, false, fmt.Errorf("classify %s: %w", describe(rec), err)
	}
	if meta.Empty() && !p.EmitUnclassified {
		p.Logger.Trace().Str("ip", rec.IP).Int("port", rec.Port).Msg("record not classified")
		return Output{}, false, nil
	}

	return Output{
		IP:          rec.IP,
		Domain:      rec.Domain,
		Port:        rec.Port,
		Protocol:    rec.Protocol.String(),
		Subprotocol: rec.Subprotocol.String(),
		ScanID:      p.ScanID,
		Metadata:    meta,
	}, true, nil
}

// describe names a record by host and scan context.
func describe(rec *record.Record) string {
	host := rec.IP
	if host == "" {
		host = rec.Domain
	}
	if host == "" {
		host = "-"
	}
	return fmt.Sprintf("%s port %d %s/%s", host, rec.Port, rec.Protocol.String(), rec.Subprotocol.String())
}

func (p *Pipeline) write(ctx context.Context, results <-chan Output, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for out := range results {
		if err := enc.Encode(out); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		p.handled.Add(1)
		p.progress()
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	return nil
}

func (p *Pipeline) progress() {
	if p.Updates == nil {
		return
	}
	if err := p.Updates.Put(p.skipped.Load(), p.handled.Load()); err != nil {
		p.Logger.Warn().Err(err).Msg("failed to write progress update")
	}
}

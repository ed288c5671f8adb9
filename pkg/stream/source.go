// Copyright 2025 Vulntor Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package stream

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// maxLineSize bounds a single input record.
const maxLineSize = 16 << 20

// Source produces raw record lines. Lines must send on out until the input
// is exhausted or ctx is done; it must not close out.
type Source interface {
	Lines(ctx context.Context, out chan<- []byte) error
}

// ReaderSource reads newline-delimited records from an io.Reader.
type ReaderSource struct {
	R io.Reader
}

// Lines implements Source.
func (s ReaderSource) Lines(ctx context.Context, out chan<- []byte) error {
	return scanLines(ctx, s.R, out)
}

func scanLines(ctx context.Context, r io.Reader, out chan<- []byte) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for sc.Scan() {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		buf := make([]byte, len(line))
		copy(buf, line)
		select {
		case out <- buf:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	return nil
}

// DirSource reads every *.jsonl file in a directory in name order. With
// Watch set it keeps running and picks up files created in or moved into
// the directory until ctx is done. Producers should move complete files
// into the directory rather than write them in place.
type DirSource struct {
	Dir    string
	Watch  bool
	Logger zerolog.Logger
}

// Lines implements Source.
func (s DirSource) Lines(ctx context.Context, out chan<- []byte) error {
	var watcher *fsnotify.Watcher
	if s.Watch {
		// Start watching before the initial listing so no file slips between.
		w, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("create watcher: %w", err)
		}
		defer func() { _ = w.Close() }()
		if err := w.Add(s.Dir); err != nil {
			return fmt.Errorf("watch %s: %w", s.Dir, err)
		}
		watcher = w
	}

	seen := make(map[string]struct{})
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return fmt.Errorf("read input directory: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && isInputFile(e.Name()) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	for _, name := range names {
		path := filepath.Join(s.Dir, name)
		seen[path] = struct{}{}
		if err := s.readFile(ctx, path, out); err != nil {
			return err
		}
	}

	if watcher == nil {
		return nil
	}
	s.Logger.Info().Str("dir", s.Dir).Msg("watching for new input files")
	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.Logger.Warn().Err(err).Msg("watcher error")
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Create) || !isInputFile(filepath.Base(ev.Name)) {
				continue
			}
			if _, dup := seen[ev.Name]; dup {
				continue
			}
			seen[ev.Name] = struct{}{}
			if err := s.readFile(ctx, ev.Name, out); err != nil {
				return err
			}
		}
	}
}

func (s DirSource) readFile(ctx context.Context, path string, out chan<- []byte) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer func() { _ = f.Close() }()
	s.Logger.Debug().Str("file", path).Msg("reading input file")
	return scanLines(ctx, f, out)
}

func isInputFile(name string) bool {
	return strings.HasSuffix(name, ".jsonl") && !strings.HasPrefix(name, ".")
}

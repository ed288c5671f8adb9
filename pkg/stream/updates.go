// Copyright 2025 Vulntor Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package stream

import (
	"encoding/csv"
	"io"
	"strconv"
	"sync"
	"time"
)

var updateHeader = []string{"skipped", "handled", "delta_skipped", "delta_handled"}

type updateRow struct {
	at      time.Time
	skipped int64
	handled int64
}

// Updater writes progress rows as CSV, at most one per interval. Deltas are
// relative to the previous written row. It is safe for concurrent use.
type Updater struct {
	mu       sync.Mutex
	w        *csv.Writer
	closer   io.Closer
	interval time.Duration
	now      func() time.Time
	prev     *updateRow
}

// NewUpdater writes rows to w. If w is an io.Closer it is closed by Close.
func NewUpdater(w io.Writer, interval time.Duration) *Updater {
	u := &Updater{w: csv.NewWriter(w), interval: interval, now: time.Now}
	if c, ok := w.(io.Closer); ok {
		u.closer = c
	}
	return u
}

// Put records the current totals, writing a row when the interval since the
// previous row has elapsed.
func (u *Updater) Put(skipped, handled int64) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	now := u.now()
	if u.prev != nil && now.Sub(u.prev.at) < u.interval {
		return nil
	}
	return u.writeLocked(updateRow{at: now, skipped: skipped, handled: handled})
}

// Close writes a final row when the totals changed since the last one and
// closes the underlying writer.
func (u *Updater) Close(skipped, handled int64) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	var err error
	if u.prev == nil || u.prev.skipped != skipped || u.prev.handled != handled {
		err = u.writeLocked(updateRow{at: u.now(), skipped: skipped, handled: handled})
	}
	if u.closer != nil {
		if cerr := u.closer.Close(); cerr != nil && err == nil {
			err = cerr
		}
		u.closer = nil
	}
	return err
}

func (u *Updater) writeLocked(row updateRow) error {
	var dSkipped, dHandled int64
	if u.prev == nil {
		if err := u.w.Write(updateHeader); err != nil {
			return err
		}
	} else {
		dSkipped = row.skipped - u.prev.skipped
		dHandled = row.handled - u.prev.handled
	}
	record := []string{
		strconv.FormatInt(row.skipped, 10),
		strconv.FormatInt(row.handled, 10),
		strconv.FormatInt(dSkipped, 10),
		strconv.FormatInt(dHandled, 10),
	}
	if err := u.w.Write(record); err != nil {
		return err
	}
	u.w.Flush()
	u.prev = &row
	return u.w.Error()
}

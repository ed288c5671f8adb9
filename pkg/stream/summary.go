// Copyright 2025 Vulntor Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package stream

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
)

// Summary describes one completed run.
type Summary struct {
	RunID               string    `json:"run_id"`
	EligibleAnnotations int       `json:"eligible_annotations"`
	RecordsHandled      int64     `json:"records_handled"`
	RecordsSkipped      int64     `json:"records_skipped"`
	StartTime           time.Time `json:"start_time"`
	EndTime             time.Time `json:"end_time"`
	// Duration is in seconds.
	Duration float64 `json:"duration"`
}

// NewSummary builds the summary of a run over eligible annotations.
func NewSummary(stats Stats, eligible int) Summary {
	return Summary{
		RunID:               uuid.NewString(),
		EligibleAnnotations: eligible,
		RecordsHandled:      stats.Handled,
		RecordsSkipped:      stats.Skipped,
		StartTime:           stats.Start.UTC(),
		EndTime:             stats.End.UTC(),
		Duration:            stats.End.Sub(stats.Start).Seconds(),
	}
}

// WriteFile stores s as indented JSON at path.
func (s Summary) WriteFile(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write run summary: %w", err)
	}
	return nil
}

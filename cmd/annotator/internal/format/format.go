// Copyright 2025 Vulntor Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

// Package format renders command results as tables or JSON.
package format

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
)

// OutputMode selects how results are rendered.
type OutputMode string

const (
	ModeJSON  OutputMode = "json"
	ModeTable OutputMode = "table"
)

// ParseMode validates a --output-format value.
func ParseMode(mode string) (OutputMode, error) {
	switch OutputMode(strings.ToLower(mode)) {
	case ModeJSON:
		return ModeJSON, nil
	case ModeTable, "":
		return ModeTable, nil
	default:
		return "", fmt.Errorf("invalid output format: %s (must be 'json' or 'table')", mode)
	}
}

// Printer writes results to stdout and notes to stderr.
type Printer struct {
	Out   io.Writer
	Err   io.Writer
	Mode  OutputMode
	Color bool
}

// JSON writes v as indented JSON.
func (p *Printer) JSON(v any) error {
	enc := json.NewEncoder(p.Out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Table writes rows under headers. In JSON mode rows become objects keyed
// by header.
func (p *Printer) Table(headers []string, rows [][]string) error {
	if p.Mode == ModeJSON {
		items := make([]map[string]string, 0, len(rows))
		for _, row := range rows {
			item := make(map[string]string, len(headers))
			for i, h := range headers {
				if i < len(row) {
					item[h] = row[i]
				}
			}
			items = append(items, item)
		}
		return p.JSON(items)
	}

	w := tabwriter.NewWriter(p.Out, 0, 0, 2, ' ', 0)
	head := make([]string, len(headers))
	for i, h := range headers {
		head[i] = strings.ToUpper(h)
		if p.Color {
			head[i] = color.New(color.Bold).Sprint(head[i])
		}
	}
	if _, err := fmt.Fprintln(w, strings.Join(head, "\t")); err != nil {
		return err
	}
	for _, row := range rows {
		if _, err := fmt.Fprintln(w, strings.Join(row, "\t")); err != nil {
			return err
		}
	}
	return w.Flush()
}

// Summary writes a closing note. JSON mode keeps stdout machine-readable by
// writing it to stderr.
func (p *Printer) Summary(format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	out := p.Out
	if p.Mode == ModeJSON {
		out = p.Err
	}
	if p.Color {
		_, err := color.New(color.FgGreen).Fprintln(out, msg)
		return err
	}
	_, err := fmt.Fprintln(out, msg)
	return err
}

// Status colors a short status word.
func (p *Printer) Status(ok bool, word string) string {
	if !p.Color {
		return word
	}
	if ok {
		return color.GreenString(word)
	}
	return color.RedString(word)
}

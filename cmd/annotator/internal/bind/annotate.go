// Copyright 2025 Vulntor Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

// Package bind turns command flags into validated option structs.
package bind

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vulntor/annotator/pkg/protocols"
	"github.com/vulntor/annotator/pkg/record"
)

// AnnotateOptions holds the options of the annotate command.
type AnnotateOptions struct {
	Context record.Context
	// Input is a file, a directory of *.jsonl files, or "-" for stdin.
	Input string
	// InputIsDir is set when Input names a directory.
	InputIsDir bool
	Watch      bool
	// Output is a file path or "-" for stdout.
	Output string
	// ScanID tags every output record; 0 leaves it off.
	ScanID int
}

// BindAnnotateOptions extracts and validates annotate command flags.
//
// Flags read:
//   - --port, --protocol, --subprotocol: the scan context of the run
//   - --input: file, directory or "-"
//   - --watch: keep reading new files of an input directory
//   - --output: file or "-"
//   - --scan-id: non-negative id copied onto every output record
func BindAnnotateOptions(cmd *cobra.Command) (AnnotateOptions, error) {
	port, _ := cmd.Flags().GetInt("port")
	protoName, _ := cmd.Flags().GetString("protocol")
	subName, _ := cmd.Flags().GetString("subprotocol")
	input, _ := cmd.Flags().GetString("input")
	watch, _ := cmd.Flags().GetBool("watch")
	output, _ := cmd.Flags().GetString("output")
	scanID, _ := cmd.Flags().GetInt("scan-id")

	opts := AnnotateOptions{Input: input, Watch: watch, Output: output, ScanID: scanID}
	if scanID < 0 {
		return opts, fmt.Errorf("scan id %d is negative", scanID)
	}

	ctx, err := ScanContext(port, protoName, subName)
	if err != nil {
		return opts, err
	}
	opts.Context = ctx

	if opts.Input == "" {
		opts.Input = "-"
	}
	if opts.Output == "" {
		opts.Output = "-"
	}
	if opts.Input != "-" {
		info, err := os.Stat(opts.Input)
		if err != nil {
			return opts, fmt.Errorf("input: %w", err)
		}
		opts.InputIsDir = info.IsDir()
	}
	if opts.Watch && !opts.InputIsDir {
		return opts, errors.New("--watch requires --input to be a directory")
	}
	return opts, nil
}

// ScanContext resolves a port and protocol names into a record context.
// Empty names leave the member unset.
func ScanContext(port int, protoName, subName string) (record.Context, error) {
	var ctx record.Context
	if port < 0 || port > 65535 {
		return ctx, fmt.Errorf("port %d out of range", port)
	}
	ctx.Port = port
	if protoName != "" {
		p, err := protocols.ProtocolFromName(protoName)
		if err != nil {
			return ctx, err
		}
		ctx.Protocol = p
	}
	if subName != "" {
		if ctx.Protocol.IsZero() {
			return ctx, errors.New("--subprotocol requires --protocol")
		}
		s, err := protocols.SubprotocolFromName(subName)
		if err != nil {
			return ctx, err
		}
		if !s.BelongsTo(ctx.Protocol) {
			return ctx, fmt.Errorf("subprotocol %s does not belong to %s", s, ctx.Protocol)
		}
		ctx.Subprotocol = s
	}
	return ctx, nil
}

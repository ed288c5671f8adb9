// Copyright 2025 Vulntor Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

// Package commands implements the annotator CLI.
package commands

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/vulntor/annotator/pkg/annotation"
	"github.com/vulntor/annotator/pkg/appctx"
	"github.com/vulntor/annotator/pkg/config"
	"github.com/vulntor/annotator/pkg/logging"
	"github.com/vulntor/annotator/pkg/paths"
)

const cliExecutable = "annotator"

// errSelfTestFailed is returned when the self-test reports a failure.
var errSelfTestFailed = errors.New("self-test failed")

// NewCommand constructs the top-level annotator command. Its pre-run loads
// the layered configuration and configures global logging for every
// subcommand.
func NewCommand() *cobra.Command {
	var (
		configFile string
		closeLog   func() error
	)

	cmd := &cobra.Command{
		Use:   cliExecutable,
		Short: "Annotate scan records with device, vendor and software metadata",
		Long: `annotator reads scan records as JSON lines, runs every eligible
annotation against each record and writes the merged manufacturer, product,
version, operating system and device type metadata back out.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			path := configFile
			if path == "" {
				path = paths.ConfigFile()
			}
			mgr := config.NewManager()
			if err := mgr.Load(cmd.Flags(), path); err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			cfg := mgr.Get()

			if cfg.Log.File != "" {
				c, err := logging.OpenLogFile(cfg.Log.File)
				if err != nil {
					return err
				}
				closeLog = c
			}
			if err := logging.ConfigureGlobalLogging(cfg.Log.Level, cfg.Log.Format); err != nil {
				return err
			}
			log.Debug().Strs("sources", mgr.Sources()).Msg("configuration loaded")

			ctx := appctx.WithSession(cmd.Context(), &appctx.Session{Manager: mgr})
			cmd.SetContext(ctx)
			if root := cmd.Root(); root != nil && root != cmd {
				root.SetContext(ctx)
			}
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if closeLog != nil {
				return closeLog()
			}
			return nil
		},
	}

	cmd.SilenceUsage = true

	cmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Configuration file path (default: user config dir)")
	config.BindFlags(cmd.PersistentFlags())

	cmd.AddGroup(&cobra.Group{ID: "run", Title: "Run Commands"})
	cmd.AddGroup(&cobra.Group{ID: "core", Title: "Core Commands"})

	cmd.AddCommand(newAnnotateCommand())
	cmd.AddCommand(newTestCommand())
	cmd.AddCommand(newRulesCommand())
	cmd.AddCommand(newAnnotationsCommand())
	cmd.AddCommand(newConfigCommand())
	cmd.AddCommand(newVersionCommand())

	return cmd
}

// ExitCode maps a command error to the process exit code.
func ExitCode(err error) int {
	if isSelfTestFailure(err) {
		return 1
	}
	return annotation.ExitCode(err)
}

// isTerminal reports whether w is a color-capable stdout.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && f == os.Stdout && !color.NoColor
}

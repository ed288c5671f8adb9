// Copyright 2025 Vulntor Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vulntor/annotator/pkg/appctx"
	"github.com/vulntor/annotator/pkg/config"
	"github.com/vulntor/annotator/pkg/device"
	"github.com/vulntor/annotator/pkg/selftest"
)

func newTestCommand() *cobra.Command {
	var crashOnFailure bool

	cmd := &cobra.Command{
		Use:     "test",
		Short:   "Run every annotation against its device fixtures",
		GroupID: "run",
		Long: `Run the expectations declared by each annotation against the built-in
device fixtures and print a per-annotation status with a summary.

The command exits with status 1 when an expectation fails or a declared
annotation could not be loaded.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := appctx.SessionFrom(cmd.Context())
			if err != nil {
				return err
			}
			cfg := sess.Config()
			logger := sess.Logger("selftest")

			reg, closer, err := buildRegistry(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer func() { _ = closer.Close() }()

			devices, err := device.Builtin()
			if err != nil {
				return err
			}

			report, runErr := selftest.Run(reg, devices, selftest.Options{CrashOnFailure: crashOnFailure})
			if report != nil {
				if err := selftest.Render(cmd.OutOrStdout(), report); err != nil {
					return err
				}
			}
			if runErr != nil {
				return fmt.Errorf("%w: %w", errSelfTestFailed, runErr)
			}
			if report.Failed() {
				return errSelfTestFailed
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&crashOnFailure, "crash-on-failure", false, "Stop at the first failing annotation")
	config.BindRuleFlags(cmd.Flags())

	return cmd
}

// isSelfTestFailure reports whether err came from a failed self-test.
func isSelfTestFailure(err error) bool {
	return errors.Is(err, errSelfTestFailed)
}

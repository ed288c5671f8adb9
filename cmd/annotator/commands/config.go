// Copyright 2025 Vulntor Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/vulntor/annotator/pkg/appctx"
)

func newConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "config",
		Short:   "Print the effective configuration",
		GroupID: "core",
		Long: `Print the configuration after merging defaults, the config file,
ANNOTATOR_* environment variables and flags, as YAML.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := appctx.SessionFrom(cmd.Context())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if _, err := fmt.Fprintf(w, "# sources: %s\n", strings.Join(sess.Manager.Sources(), ", ")); err != nil {
				return err
			}
			enc := yaml.NewEncoder(w)
			enc.SetIndent(2)
			if err := enc.Encode(sess.Manager.Effective()); err != nil {
				return err
			}
			return enc.Close()
		},
	}
	return cmd
}

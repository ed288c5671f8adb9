// Copyright 2025 Vulntor Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package commands

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/vulntor/annotator/cmd/annotator/internal/bind"
	"github.com/vulntor/annotator/cmd/annotator/internal/format"
	"github.com/vulntor/annotator/pkg/annotation"
	"github.com/vulntor/annotator/pkg/annotations"
	"github.com/vulntor/annotator/pkg/appctx"
	"github.com/vulntor/annotator/pkg/config"
)

func newAnnotationsCommand() *cobra.Command {
	var (
		outputFormat string
		port         int
		protoName    string
		subName      string
	)

	cmd := &cobra.Command{
		Use:     "annotations",
		Aliases: []string{"ls"},
		Short:   "List the built-in annotations and their registration status",
		GroupID: "core",
		Long: `List every built-in annotation in declaration order with its kind, gates
and registration status. Annotations are tried in this order, so earlier
entries take precedence when two set the same field.

With --port, --protocol or --subprotocol only annotations eligible for that
scan context are listed.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			mode, err := format.ParseMode(outputFormat)
			if err != nil {
				return err
			}
			scan, err := bind.ScanContext(port, protoName, subName)
			if err != nil {
				return err
			}
			sess, err := appctx.SessionFrom(cmd.Context())
			if err != nil {
				return err
			}
			cfg := sess.Config()
			reg, closer, err := buildRegistry(cmd.Context(), cfg, sess.Logger("annotations"))
			if err != nil {
				return err
			}
			defer func() { _ = closer.Close() }()

			gates := make(map[string]annotation.Filter)
			for _, a := range annotations.Builtin() {
				gates[a.Name()] = a.Filter()
			}

			p := printer(cmd, mode)
			var rows [][]string
			loaded := 0
			for _, res := range reg.Results() {
				f := gates[res.Name]
				if !f.Compatible(scan) {
					continue
				}
				status, detail := p.Status(true, "loaded"), ""
				if res.OK() {
					loaded++
				} else {
					status, detail = p.Status(false, "disabled"), res.Err.Error()
				}
				rows = append(rows, []string{
					strconv.Itoa(len(rows) + 1),
					res.Name,
					string(res.Kind),
					f.String(),
					status,
					detail,
				})
			}
			if err := p.Table([]string{"order", "annotation", "kind", "gates", "status", "detail"}, rows); err != nil {
				return err
			}
			return p.Summary("%d/%d annotations loaded", loaded, len(rows))
		},
	}

	cmd.Flags().StringVar(&outputFormat, "output-format", "table", "Output format (table, json)")
	cmd.Flags().IntVar(&port, "port", 0, "Only list annotations eligible for this port")
	cmd.Flags().StringVar(&protoName, "protocol", "", "Only list annotations eligible for this protocol")
	cmd.Flags().StringVar(&subName, "subprotocol", "", "Only list annotations eligible for this subprotocol")
	config.BindRuleFlags(cmd.Flags())

	return cmd
}

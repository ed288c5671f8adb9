// Copyright 2025 Vulntor Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package commands

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/vulntor/annotator/cmd/annotator/internal/bind"
	"github.com/vulntor/annotator/cmd/annotator/internal/format"
	"github.com/vulntor/annotator/pkg/appctx"
	"github.com/vulntor/annotator/pkg/config"
	"github.com/vulntor/annotator/pkg/paths"
	"github.com/vulntor/annotator/pkg/rules"
)

func newRulesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "rules",
		Short:   "Inspect and manage rule stores",
		GroupID: "core",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	config.BindRuleFlags(cmd.PersistentFlags())

	cmd.AddCommand(newRulesListCommand())
	cmd.AddCommand(newRulesCheckCommand())
	cmd.AddCommand(newRulesImportCommand())

	return cmd
}

func newRulesListCommand() *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the rule sets of the configured store",
		RunE: func(cmd *cobra.Command, _ []string) error {
			mode, err := format.ParseMode(outputFormat)
			if err != nil {
				return err
			}
			sess, err := appctx.SessionFrom(cmd.Context())
			if err != nil {
				return err
			}
			cfg := sess.Config()
			store, closer, err := bind.RuleStore(cfg.Rules)
			if err != nil {
				return err
			}
			defer func() { _ = closer.Close() }()

			rows, err := ruleSetRows(cmd.Context(), store)
			if err != nil {
				return err
			}
			p := printer(cmd, mode)
			if err := p.Table([]string{"annotation", "rules"}, rows); err != nil {
				return err
			}
			return p.Summary("%d rule sets in %s store", len(rows), cfg.Rules.Backend)
		},
	}

	cmd.Flags().StringVar(&outputFormat, "output-format", "table", "Output format (table, json)")

	return cmd
}

func ruleSetRows(ctx context.Context, store rules.Store) ([][]string, error) {
	names, err := store.Names(ctx)
	if err != nil {
		return nil, err
	}
	rows := make([][]string, 0, len(names))
	for _, name := range names {
		rs, err := store.Rules(ctx, name)
		if err != nil {
			return nil, err
		}
		rows = append(rows, []string{name, strconv.Itoa(len(rs))})
	}
	return rows, nil
}

func newRulesCheckCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Compile every rule set of the configured store",
		Long: `Compile every rule of the configured store and report the rule sets
whose patterns do not compile. An annotation whose rule set fails here is
disabled at run time.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := appctx.SessionFrom(cmd.Context())
			if err != nil {
				return err
			}
			cfg := sess.Config()
			store, closer, err := bind.RuleStore(cfg.Rules)
			if err != nil {
				return err
			}
			defer func() { _ = closer.Close() }()

			names, err := store.Names(cmd.Context())
			if err != nil {
				return err
			}
			cache := rules.NewCache(store)
			p := printer(cmd, format.ModeTable)
			rows := make([][]string, 0, len(names))
			failed := 0
			for _, name := range names {
				compiled, err := cache.Compiled(cmd.Context(), name)
				if err != nil {
					failed++
					rows = append(rows, []string{name, "-", p.Status(false, rules.ErrorCode(err)), err.Error()})
					continue
				}
				rows = append(rows, []string{name, strconv.Itoa(len(compiled)), p.Status(true, "ok"), ""})
			}
			if err := p.Table([]string{"annotation", "rules", "status", "detail"}, rows); err != nil {
				return err
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d rule sets failed to compile: %w", failed, len(names), rules.ErrPatternInvalid)
			}
			return p.Summary("%d rule sets compiled", len(names))
		},
	}
	return cmd
}

func newRulesImportCommand() *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Import a YAML rule document into a SQLite rule store",
		Long: `Import every rule set of a YAML rule document into a SQLite rule store,
replacing rule sets of the same name. Other rule sets are kept.

The database is locked for the duration of the import, so concurrent
imports are serialized.`,
		Example: `  annotator rules import rules.yaml --db /var/lib/annotator/rules.db
  annotator annotate --rules.backend sqlite --rules.path /var/lib/annotator/rules.db ...`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read rule file: %w", err)
			}
			doc, err := rules.ParseDocument(data)
			if err != nil {
				return err
			}
			for name, rs := range doc.Annotations {
				if _, err := rules.CompileAll(rs); err != nil {
					return fmt.Errorf("annotation %q: %w", name, err)
				}
			}
			if dbPath == "" {
				dbPath = paths.RulesDB()
			}
			store, err := rules.OpenSQLite(dbPath)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			n, err := store.Import(cmd.Context(), args[0], doc.Annotations)
			if err != nil {
				return err
			}
			return printer(cmd, format.ModeTable).Summary("imported %d rules in %d rule sets into %s", n, len(doc.Annotations), dbPath)
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite rule store (default: user data dir)")

	return cmd
}

func printer(cmd *cobra.Command, mode format.OutputMode) *format.Printer {
	return &format.Printer{
		Out:   cmd.OutOrStdout(),
		Err:   cmd.ErrOrStderr(),
		Mode:  mode,
		Color: isTerminal(cmd.OutOrStdout()),
	}
}

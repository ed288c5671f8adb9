// Copyright 2025 Vulntor Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/vulntor/annotator/cmd/annotator/internal/bind"
	"github.com/vulntor/annotator/pkg/annotation"
	"github.com/vulntor/annotator/pkg/appctx"
	"github.com/vulntor/annotator/pkg/banner"
	"github.com/vulntor/annotator/pkg/config"
	"github.com/vulntor/annotator/pkg/stream"
)

func newAnnotateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "annotate",
		Short:   "Annotate a stream of scan records",
		GroupID: "run",
		Long: `Read scan records as JSON lines, classify each one with every annotation
eligible for the given port, protocol and subprotocol, and write the
annotated records as JSON lines.

Records without a scan context of their own take the one given by flags.
Records no annotation classified are dropped unless
--stream.emit_unclassified is set.`,
		Example: `  # Annotate HTTP GET results from a file
  annotator annotate --port 80 --protocol http --subprotocol get --input http.jsonl

  # Annotate SSH banners from stdin, redacting host names
  zcat ssh.jsonl.gz | annotator annotate --port 22 --protocol ssh --subprotocol v2 \
      --banner.redact 'host-\S+=>[host]'

  # Follow a spool directory and expose metrics
  annotator annotate --port 21 --protocol ftp --subprotocol banner \
      --input /var/spool/ftp --watch --metrics.enabled`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := bind.BindAnnotateOptions(cmd)
			if err != nil {
				return err
			}
			sess, err := appctx.SessionFrom(cmd.Context())
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runAnnotate(ctx, cmd, opts, sess)
		},
	}

	cmd.Flags().Int("port", 0, "Port the records were scanned on")
	cmd.Flags().String("protocol", "", "Protocol of the records, e.g. http, ssh, ftp")
	cmd.Flags().String("subprotocol", "", "Subprotocol of the records, e.g. get, v2, banner")
	cmd.Flags().StringP("input", "i", "-", "Input file, directory of *.jsonl files, or - for stdin")
	cmd.Flags().Bool("watch", false, "Keep reading files added to the input directory")
	cmd.Flags().StringP("output", "o", "-", "Output file, or - for stdout")
	cmd.Flags().IntP("scan-id", "s", 0, "Scan id written as scan_id on every output record")
	config.BindStreamFlags(cmd.Flags())

	_ = cmd.MarkFlagRequired("port")
	_ = cmd.MarkFlagRequired("protocol")
	_ = cmd.MarkFlagRequired("subprotocol")

	return cmd
}

func runAnnotate(ctx context.Context, cmd *cobra.Command, opts bind.AnnotateOptions, sess *appctx.Session) error {
	cfg := sess.Config()
	logger := sess.Logger("annotate")

	reg, closer, err := buildRegistry(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = closer.Close() }()

	var metrics *annotation.Metrics
	if cfg.Metrics.Enabled {
		promReg := prometheus.NewRegistry()
		promReg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		metrics = annotation.NewMetrics(promReg)
		srv := serveMetrics(cfg.Metrics.Addr, promReg, logger)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	engine := annotation.NewEngine(reg,
		annotation.WithLogger(logger),
		annotation.WithMetrics(metrics),
		annotation.WithDebug(cfg.Engine.Debug),
	).Eligible(opts.Context)
	logger.Info().
		Int("port", opts.Context.Port).
		Str("protocol", opts.Context.Protocol.String()).
		Str("subprotocol", opts.Context.Subprotocol.String()).
		Int("eligible", engine.Len()).
		Int("loaded", reg.Len()).
		Msg("annotations selected")

	cleaner, err := banner.NewCleaner(cfg.Banner.Redact)
	if err != nil {
		return err
	}

	src, closeSrc, err := openSource(cmd, opts, logger)
	if err != nil {
		return err
	}
	defer func() { _ = closeSrc() }()

	out, closeOut, err := openOutput(cmd, opts.Output)
	if err != nil {
		return err
	}

	// The updater owns the file from here on; Pipeline.Run closes it.
	var updates *stream.Updater
	if cfg.Stream.UpdatesFile != "" {
		f, err := os.Create(cfg.Stream.UpdatesFile)
		if err != nil {
			_ = closeOut()
			return fmt.Errorf("create updates file: %w", err)
		}
		updates = stream.NewUpdater(f, cfg.Stream.UpdateInterval)
	}

	p := &stream.Pipeline{
		Engine:           engine,
		Defaults:         opts.Context,
		Workers:          cfg.Stream.Workers,
		ScanID:           opts.ScanID,
		EmitUnclassified: cfg.Stream.EmitUnclassified,
		Cleaner:          cleaner,
		Updates:          updates,
		Logger:           logger,
	}
	stats, runErr := p.Run(ctx, src, out)
	if err := closeOut(); err != nil && runErr == nil {
		runErr = err
	}

	summary := stream.NewSummary(stats, engine.Len())
	if cfg.Stream.SummaryFile != "" {
		if err := summary.WriteFile(cfg.Stream.SummaryFile); err != nil && runErr == nil {
			runErr = err
		}
	}
	logger.Info().
		Str("run_id", summary.RunID).
		Int64("handled", summary.RecordsHandled).
		Int64("skipped", summary.RecordsSkipped).
		Float64("duration", summary.Duration).
		Msg("annotation run finished")

	if errors.Is(runErr, context.Canceled) && ctx.Err() != nil {
		return nil
	}
	return runErr
}

func openSource(cmd *cobra.Command, opts bind.AnnotateOptions, logger zerolog.Logger) (stream.Source, func() error, error) {
	switch {
	case opts.Input == "-":
		return stream.ReaderSource{R: cmd.InOrStdin()}, func() error { return nil }, nil
	case opts.InputIsDir:
		return stream.DirSource{Dir: opts.Input, Watch: opts.Watch, Logger: logger}, func() error { return nil }, nil
	default:
		f, err := os.Open(opts.Input)
		if err != nil {
			return nil, nil, fmt.Errorf("open input: %w", err)
		}
		return stream.ReaderSource{R: f}, f.Close, nil
	}
}

func openOutput(cmd *cobra.Command, path string) (io.Writer, func() error, error) {
	if path == "-" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create output: %w", err)
	}
	return f, f.Close, nil
}

func serveMetrics(addr string, gatherer prometheus.Gatherer, logger zerolog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		logger.Info().Str("addr", addr).Msg("serving metrics")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Str("addr", addr).Msg("metrics server failed")
		}
	}()
	return srv
}

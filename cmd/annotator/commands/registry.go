// Copyright 2025 Vulntor Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package commands

import (
	"context"
	"io"

	"github.com/rs/zerolog"

	"github.com/vulntor/annotator/cmd/annotator/internal/bind"
	"github.com/vulntor/annotator/pkg/annotation"
	"github.com/vulntor/annotator/pkg/annotations"
	"github.com/vulntor/annotator/pkg/config"
	"github.com/vulntor/annotator/pkg/rules"
)

// buildRegistry opens the configured rule store and registers the built-in
// annotations against it. Failed rule sets are reported by the
// registry; only invalid declarations are returned as errors. The closer
// releases the rule store.
func buildRegistry(ctx context.Context, cfg config.Config, logger zerolog.Logger) (*annotation.Registry, io.Closer, error) {
	store, closer, err := bind.RuleStore(cfg.Rules)
	if err != nil {
		return nil, nil, err
	}
	reg, err := annotations.NewRegistry(ctx, logger, rules.NewCache(store))
	if err != nil {
		_ = closer.Close()
		return nil, nil, err
	}
	return reg, closer, nil
}

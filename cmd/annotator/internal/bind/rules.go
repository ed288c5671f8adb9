// Copyright 2025 Vulntor Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package bind

import (
	"fmt"
	"io"

	"github.com/vulntor/annotator/pkg/config"
	"github.com/vulntor/annotator/pkg/rules"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// RuleStore opens the rule store selected by cfg. The returned closer
// releases the store and is never nil.
func RuleStore(cfg config.RulesConfig) (rules.Store, io.Closer, error) {
	switch cfg.Backend {
	case config.BackendEmbedded, "":
		s, err := rules.Embedded()
		if err != nil {
			return nil, nil, fmt.Errorf("load embedded rules: %w", err)
		}
		return s, nopCloser{}, nil
	case config.BackendYAML:
		s, err := rules.LoadYAMLFile(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return s, nopCloser{}, nil
	case config.BackendSQLite:
		s, err := rules.OpenSQLite(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	default:
		return nil, nil, fmt.Errorf("unknown rule store backend %q", cfg.Backend)
	}
}

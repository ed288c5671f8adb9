// Copyright 2025 Vulntor Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package config

import "time"

// Config is the root configuration structure for the annotator.
type Config struct {
	Log     LogConfig     `description:"Logging configuration" koanf:"log"`
	Rules   RulesConfig   `description:"Rule store configuration" koanf:"rules"`
	Stream  StreamConfig  `description:"Record pipeline configuration" koanf:"stream"`
	Banner  BannerConfig  `description:"Banner cleaning configuration" koanf:"banner"`
	Metrics MetricsConfig `description:"Prometheus metrics endpoint" koanf:"metrics"`
	Engine  EngineConfig  `description:"Annotation engine configuration" koanf:"engine"`
}

// LogConfig holds logging related configuration.
type LogConfig struct {
	Level  string `description:"Log level: trace | debug | info | warn | error" koanf:"level" validate:"oneof=trace debug info warn error fatal panic disabled"`
	Format string `description:"Log format: json | text" koanf:"format" validate:"oneof=json text"`
	File   string `description:"Log file path" koanf:"file"`
}

// Rule store backends.
const (
	BackendEmbedded = "embedded"
	BackendYAML     = "yaml"
	BackendSQLite   = "sqlite"
)

// RulesConfig selects where rule testers load their rule sets from.
type RulesConfig struct {
	Backend string `description:"Rule store backend: embedded | yaml | sqlite" koanf:"backend" validate:"oneof=embedded yaml sqlite"`
	// Path is the YAML document or SQLite database. Unused for embedded.
	Path string `description:"Rule store path" koanf:"path" validate:"required_unless=Backend embedded"`
}

// StreamConfig holds record pipeline settings.
type StreamConfig struct {
	Workers          int           `description:"Classification workers (0 uses one per CPU)" koanf:"workers" validate:"gte=0"`
	EmitUnclassified bool          `description:"Write records that no annotation classified" koanf:"emit_unclassified"`
	UpdatesFile      string        `description:"Progress updates CSV path" koanf:"updates_file"`
	UpdateInterval   time.Duration `description:"Minimum interval between progress rows" koanf:"update_interval" validate:"gt=0"`
	SummaryFile      string        `description:"Run summary JSON path" koanf:"summary_file"`
}

// BannerConfig holds banner cleaning rules.
type BannerConfig struct {
	// Redact entries have the form "pattern=>placeholder".
	Redact []string `description:"Banner redaction rules (pattern=>placeholder)" koanf:"redact" validate:"dive,contains==>"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `description:"Serve Prometheus metrics" koanf:"enabled"`
	Addr    string `description:"Metrics listen address" koanf:"addr" validate:"required_if=Enabled true"`
}

// EngineConfig holds annotation engine settings.
type EngineConfig struct {
	// Debug returns annotation failures as errors instead of logging them.
	Debug bool `description:"Stop on the first annotation failure" koanf:"debug"`
}

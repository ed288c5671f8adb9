// Copyright 2025 Vulntor Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

// Package config loads the annotator configuration from layered sources.
package config

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// ErrInvalidConfig is returned when the merged configuration fails validation.
var ErrInvalidConfig = errors.New("invalid configuration")

var validate = validator.New()

// Manager handles loading and accessing application configuration.
type Manager struct {
	currentConfig Config
	sources       []string
	mu            sync.RWMutex
}

// NewManager creates a Manager holding the default configuration until
// Load is called.
func NewManager() *Manager {
	return &Manager{currentConfig: DefaultConfig()}
}

// DefaultConfig returns the baseline configuration.
func DefaultConfig() Config {
	return Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Rules: RulesConfig{
			Backend: BackendEmbedded,
		},
		Stream: StreamConfig{
			UpdateInterval: 10 * time.Second,
		},
		Metrics: MetricsConfig{
			Addr: "127.0.0.1:9464",
		},
	}
}

// DefaultConfigAsMap flattens DefaultConfig for koanf's confmap provider so
// every key is known before flags are merged.
func DefaultConfigAsMap() map[string]interface{} {
	return configAsMap(DefaultConfig())
}

func configAsMap(cfg Config) map[string]interface{} {
	redact := cfg.Banner.Redact
	if redact == nil {
		redact = []string{}
	}
	return map[string]interface{}{
		"log.level":  cfg.Log.Level,
		"log.format": cfg.Log.Format,
		"log.file":   cfg.Log.File,

		"rules.backend": cfg.Rules.Backend,
		"rules.path":    cfg.Rules.Path,

		"stream.workers":           cfg.Stream.Workers,
		"stream.emit_unclassified": cfg.Stream.EmitUnclassified,
		"stream.updates_file":      cfg.Stream.UpdatesFile,
		"stream.update_interval":   cfg.Stream.UpdateInterval.String(),
		"stream.summary_file":      cfg.Stream.SummaryFile,

		"banner.redact": redact,

		"metrics.enabled": cfg.Metrics.Enabled,
		"metrics.addr":    cfg.Metrics.Addr,

		"engine.debug": cfg.Engine.Debug,
	}
}

// Load merges defaults, the config file, ANNOTATOR_* environment variables
// and flags, in that order.
func (m *Manager) Load(flags *pflag.FlagSet, configPath string) error {
	debug := false
	if flags != nil {
		if f := flags.Lookup("debug"); f != nil {
			debug = f.Value.String() == "true"
		}
	}
	return m.LoadWithSources(DefaultSources(configPath, flags, debug))
}

// LoadWithSources loads the given sources in ascending priority order,
// unmarshals the result and validates it.
func (m *Manager) LoadWithSources(sources []ConfigSource) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ordered := make([]ConfigSource, len(sources))
	copy(ordered, sources)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority() < ordered[j].Priority()
	})

	k := koanf.New(".")
	names := make([]string, 0, len(ordered))
	for _, src := range ordered {
		if err := src.Load(k); err != nil {
			return fmt.Errorf("config source %s: %w", src.Name(), err)
		}
		names = append(names, src.Name())
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return fmt.Errorf("error unmarshaling final config: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return err
	}

	m.currentConfig = cfg
	m.sources = names
	return nil
}

// Validate checks cfg against its struct constraints.
func Validate(cfg Config) error {
	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%w: %s fails %q (value %v)", ErrInvalidConfig, fe.Namespace(), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Get returns a copy of the current configuration.
func (m *Manager) Get() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cfg := m.currentConfig
	cfg.Banner.Redact = append([]string(nil), m.currentConfig.Banner.Redact...)
	return cfg
}

// Sources returns the names of the sources merged by the last load.
func (m *Manager) Sources() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.sources...)
}

// Effective returns the current configuration as a nested map keyed like
// the config file.
func (m *Manager) Effective() map[string]interface{} {
	k := koanf.New(".")
	_ = k.Load(confmap.Provider(configAsMap(m.Get()), "."), nil)
	return k.Raw()
}

// BindFlags defines the global flags that feed configuration.
func BindFlags(flags *pflag.FlagSet) {
	var flagvar bool
	flags.BoolVar(&flagvar, "debug", false, "Enable debug logging")
	flags.String("log.level", "", "Log level (trace, debug, info, warn, error)")
	flags.String("log.format", "", "Log format (text, json)")
	flags.String("log.file", "", "Log file path (empty for stderr)")
}

// BindRuleFlags defines the rule store flags.
func BindRuleFlags(flags *pflag.FlagSet) {
	def := DefaultConfig()
	flags.String("rules.backend", def.Rules.Backend, "Rule store backend (embedded, yaml, sqlite)")
	flags.String("rules.path", def.Rules.Path, "Rule store path for the yaml and sqlite backends")
}

// BindStreamFlags defines the flags of commands that run the record pipeline.
func BindStreamFlags(flags *pflag.FlagSet) {
	def := DefaultConfig()
	BindRuleFlags(flags)
	flags.Int("stream.workers", def.Stream.Workers, "Classification workers (0 uses one per CPU)")
	flags.Bool("stream.emit_unclassified", def.Stream.EmitUnclassified, "Write records no annotation classified")
	flags.String("stream.updates_file", def.Stream.UpdatesFile, "Write progress updates as CSV to this path")
	flags.Duration("stream.update_interval", def.Stream.UpdateInterval, "Minimum interval between progress rows")
	flags.String("stream.summary_file", def.Stream.SummaryFile, "Write the run summary JSON to this path")
	flags.StringSlice("banner.redact", nil, "Banner redaction rule pattern=>placeholder (repeatable)")
	flags.Bool("metrics.enabled", def.Metrics.Enabled, "Serve Prometheus metrics")
	flags.String("metrics.addr", def.Metrics.Addr, "Metrics listen address")
	flags.Bool("engine.debug", def.Engine.Debug, "Stop on the first annotation failure")
}

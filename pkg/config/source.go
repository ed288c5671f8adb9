// Copyright 2025 Vulntor Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// ConfigSource is one layer of the annotator configuration. Layers are
// merged in ascending priority, so a later layer overrides keys set by an
// earlier one:
//
//	10 defaults
//	20 config file (--config, or annotator.yaml in the user config dir)
//	30 ANNOTATOR_* environment variables
//	40 command-line flags
type ConfigSource interface {
	Name() string
	Priority() int
	Load(k *koanf.Koanf) error
}

// DefaultEnvPrefix prefixes every environment variable read by EnvSource.
const DefaultEnvPrefix = "ANNOTATOR_"

// listSeparator splits list keys given as a single string, e.g.
// ANNOTATOR_BANNER_REDACT='secret-\S+=>[redacted];token=\w+=>[token]'.
const listSeparator = ";"

// listKeys hold string lists.
var listKeys = []string{"banner.redact"}

// backendByExt selects the rule store backend for a rules.path that comes
// without a rules.backend in the same layer.
var backendByExt = map[string]string{
	".yaml":    BackendYAML,
	".yml":     BackendYAML,
	".db":      BackendSQLite,
	".sqlite":  BackendSQLite,
	".sqlite3": BackendSQLite,
}

// layer loads p into its own koanf, settles it against baseDir and merges
// it over k.
func layer(k *koanf.Koanf, p koanf.Provider, pa koanf.Parser, baseDir string) error {
	l := koanf.New(".")
	if err := l.Load(p, pa); err != nil {
		return err
	}
	if err := settle(l, baseDir); err != nil {
		return err
	}
	return k.Merge(l)
}

// settle rewrites the keys of one layer into the shape Config expects.
// Scalar list values are split on listSeparator. A relative rules.path is
// resolved against baseDir when one is given. A rules.path without a
// rules.backend picks the backend from its extension.
func settle(l *koanf.Koanf, baseDir string) error {
	for _, key := range listKeys {
		if v, ok := l.Get(key).(string); ok {
			if err := l.Set(key, splitList(v)); err != nil {
				return err
			}
		}
	}

	path := l.String("rules.path")
	if path == "" {
		return nil
	}
	if baseDir != "" && !filepath.IsAbs(path) {
		path = filepath.Join(baseDir, path)
		if err := l.Set("rules.path", path); err != nil {
			return err
		}
	}
	if l.Exists("rules.backend") {
		return nil
	}
	if backend, ok := backendByExt[strings.ToLower(filepath.Ext(path))]; ok {
		return l.Set("rules.backend", backend)
	}
	return nil
}

func splitList(v string) []string {
	out := []string{}
	for _, part := range strings.Split(v, listSeparator) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// DefaultSource loads DefaultConfig so every key exists before the other
// layers merge.
type DefaultSource struct{}

func (s *DefaultSource) Name() string  { return "defaults" }
func (s *DefaultSource) Priority() int { return 10 }

func (s *DefaultSource) Load(k *koanf.Koanf) error {
	if err := k.Load(confmap.Provider(DefaultConfigAsMap(), "."), nil); err != nil {
		return fmt.Errorf("load defaults: %w", err)
	}
	return nil
}

// FileSource reads a YAML config file. A missing file is not an error.
// Relative rule store paths in the file are taken relative to the file.
type FileSource struct {
	Path string
}

func (s *FileSource) Name() string  { return "file:" + s.Path }
func (s *FileSource) Priority() int { return 20 }

func (s *FileSource) Load(k *koanf.Koanf) error {
	if s.Path == "" {
		return nil
	}
	if _, err := os.Stat(s.Path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("stat config file %s: %w", s.Path, err)
	}
	if err := layer(k, file.Provider(s.Path), yaml.Parser(), filepath.Dir(s.Path)); err != nil {
		return fmt.Errorf("load config file %s: %w", s.Path, err)
	}
	return nil
}

// EnvSource reads variables carrying Prefix. The first underscore after the
// prefix separates the section from the key:
//
//	ANNOTATOR_LOG_LEVEL                -> log.level
//	ANNOTATOR_STREAM_EMIT_UNCLASSIFIED -> stream.emit_unclassified
type EnvSource struct {
	// Prefix defaults to DefaultEnvPrefix.
	Prefix string
}

func (s *EnvSource) Name() string  { return "env" }
func (s *EnvSource) Priority() int { return 30 }

func (s *EnvSource) Load(k *koanf.Koanf) error {
	prefix := s.Prefix
	if prefix == "" {
		prefix = DefaultEnvPrefix
	}
	p := env.Provider(prefix, ".", func(name string) string {
		return envKey(strings.TrimPrefix(name, prefix))
	})
	if err := layer(k, p, nil, ""); err != nil {
		return fmt.Errorf("load environment: %w", err)
	}
	return nil
}

func envKey(name string) string {
	name = strings.ToLower(name)
	section, key, ok := strings.Cut(name, "_")
	if !ok {
		return name
	}
	return section + "." + key
}

// FlagSource merges the flags the user set. Unchanged flags never
// override lower layers. Debug forces log.level to debug.
type FlagSource struct {
	Flags *pflag.FlagSet
	Debug bool
}

func (s *FlagSource) Name() string  { return "flags" }
func (s *FlagSource) Priority() int { return 40 }

func (s *FlagSource) Load(k *koanf.Koanf) error {
	if s.Flags != nil {
		if err := layer(k, posflag.Provider(s.Flags, ".", k), nil, ""); err != nil {
			return fmt.Errorf("load flags: %w", err)
		}
	}
	if s.Debug {
		return k.Set("log.level", "debug")
	}
	return nil
}

// DefaultSources returns the four standard layers.
func DefaultSources(configPath string, flags *pflag.FlagSet, debug bool) []ConfigSource {
	return []ConfigSource{
		&DefaultSource{},
		&FileSource{Path: configPath},
		&EnvSource{Prefix: DefaultEnvPrefix},
		&FlagSource{Flags: flags, Debug: debug},
	}
}

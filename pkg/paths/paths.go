// Copyright 2025 Vulntor Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

// Package paths resolves per-user directories for annotator files.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

const appName = "annotator"

// ConfigDir returns the config directory.
// Order: XDG_CONFIG_HOME/annotator, platform-specific fallback.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}
	if runtime.GOOS == "windows" {
		if appData := os.Getenv("AppData"); appData != "" {
			return filepath.Join(appData, "Annotator")
		}
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", appName)
}

// DataDir returns the data directory.
// Order: XDG_DATA_HOME/annotator, platform-specific fallback.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}
	if runtime.GOOS == "windows" {
		if appData := os.Getenv("AppData"); appData != "" {
			return filepath.Join(appData, "Annotator")
		}
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", appName)
}

// ConfigFile is the config file read when --config is not given. It may
// not exist.
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "annotator.yaml")
}

// RulesDB is the default SQLite rule store location.
func RulesDB() string {
	return filepath.Join(DataDir(), "rules.db")
}

// Copyright 2025 Vulntor Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

// Package version provides version metadata for the application.
package version

import (
	"fmt"
	"time"

	"github.com/Masterminds/semver/v3"
)

// These variables are typically injected at build time using -ldflags
var (
	// Version holds the current version of annotator.
	Version = "dev"
	// Commit holds the current version commit of annotator.
	Commit = "none"
	// BuildDate holds the build date of annotator.
	BuildDate = "unknown"
	// StartDate holds the start date of annotator.
	StartDate = time.Now()
)

// Struct returns version information in a structured format.
type Struct struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"buildDate"`
}

// Info returns a formatted version string.
func Info() string {
	return fmt.Sprintf("annotator %s (commit: %s, date: %s)", Version, Commit, BuildDate)
}

// Get returns version information as a Struct.
func Get() Struct {
	return Struct{
		Version:   Version,
		Commit:    Commit,
		BuildDate: BuildDate,
	}
}

// Semver parses Version. Development builds ("dev") do not parse.
func Semver() (*semver.Version, error) {
	return semver.NewVersion(Version)
}

// Satisfies reports whether this build meets constraint, e.g. ">= 1.2".
// Builds without a semantic version satisfy every constraint.
func Satisfies(constraint string) (bool, error) {
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return false, fmt.Errorf("invalid version constraint %q: %w", constraint, err)
	}
	v, err := Semver()
	if err != nil {
		return true, nil
	}
	return c.Check(v), nil
}

// Copyright 2025 Vulntor Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package banner

import (
	"fmt"
	"regexp"
	"strings"
)

// Redaction replaces every match of Pattern with Placeholder.
type Redaction struct {
	Pattern     *regexp.Regexp
	Placeholder string
}

// Cleaner normalizes banners before they reach annotations. Scanner
// hostnames and addresses echoed back by services are the usual targets.
type Cleaner struct {
	redactions []Redaction
}

// NewCleaner compiles redactions of the form "pattern=>placeholder".
func NewCleaner(entries []string) (*Cleaner, error) {
	c := &Cleaner{}
	for _, entry := range entries {
		pattern, placeholder, found := strings.Cut(entry, "=>")
		if !found {
			return nil, fmt.Errorf("redaction %q: expected pattern=>placeholder", entry)
		}
		re, err := regexp.Compile(strings.TrimSpace(pattern))
		if err != nil {
			return nil, fmt.Errorf("redaction %q: %w", entry, err)
		}
		c.redactions = append(c.redactions, Redaction{Pattern: re, Placeholder: strings.TrimSpace(placeholder)})
	}
	return c, nil
}

// Clean applies the redactions in order and trims surrounding whitespace.
// A nil Cleaner only trims.
func (c *Cleaner) Clean(b string) string {
	if c != nil {
		for _, r := range c.redactions {
			b = r.Pattern.ReplaceAllLiteralString(b, r.Placeholder)
		}
	}
	return strings.TrimSpace(b)
}

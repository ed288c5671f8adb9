// Copyright 2025 Vulntor Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

// Package banner extracts product, version and OS tokens from free-text
// service banners.
//
// Every helper returns a fresh *metadata.Metadata and never mutates a
// caller-owned value; a false second return means "no match".
package banner

import (
	"regexp"
	"strings"

	"github.com/vulntor/annotator/pkg/metadata"
)

// tokenPattern captures a leading token run, an optional "/version" segment
// and an optional parenthesized comment, e.g. "Apache/2.4.1 (Unix)".
var tokenPattern = regexp.MustCompile(`([A-Za-z0-9_.-]+)(?:/([A-Za-z0-9_.-]+))?(?: \(([^)]*)\))?`)

// SimpleVersion succeeds when b starts with server (case-insensitive). The
// product is set to server as given by the caller; when b contains a "/"
// the trimmed text after the first one becomes the version.
func SimpleVersion(b, server string) (*metadata.Metadata, bool) {
	if server == "" || !strings.HasPrefix(strings.ToLower(b), strings.ToLower(server)) {
		return nil, false
	}
	meta := metadata.New()
	meta.Local.Product = server
	if _, after, found := strings.Cut(b, "/"); found {
		meta.Local.Version = strings.TrimSpace(after)
	}
	return meta, true
}

// Parse applies the generic token heuristic: the leading token becomes the
// local product, the "/" segment the local version and the parenthesized
// text the global OS.
func Parse(b string) (*metadata.Metadata, bool) {
	groups := tokenPattern.FindStringSubmatch(b)
	if groups == nil || groups[1] == "" {
		return nil, false
	}
	meta := metadata.New()
	meta.Local.Product = groups[1]
	meta.Local.Version = groups[2]
	meta.Global.OS = groups[3]
	return meta, true
}

// Snippet shortens b for log fields, adding "..." when truncated. Newlines
// are folded into spaces.
func Snippet(b string, maxLength int) string {
	b = strings.TrimSpace(b)
	b = strings.ReplaceAll(b, "\n", " ")
	b = strings.ReplaceAll(b, "\r", "")

	if maxLength < 0 {
		return ""
	}
	if len(b) <= maxLength {
		return b
	}
	if maxLength <= 3 {
		return b[:maxLength]
	}
	return b[:maxLength-3] + "..."
}

// Copyright 2025 Vulntor Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

// Package record models one scan observation for a (host, port, protocol)
// tuple: the scan context used by annotation filters plus the decoded
// protocol payload, read through tolerant dotted-path accessors.
package record

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cast"

	"github.com/vulntor/annotator/pkg/protocols"
)

// ErrMalformed marks input that cannot be turned into a Record.
var ErrMalformed = errors.New("malformed record")

// Context is the scan context of a record.
type Context struct {
	Port        int
	Protocol    protocols.Protocol
	Subprotocol protocols.Subprotocol
}

// Record is a single scan observation.
type Record struct {
	IP     string
	Domain string
	Context

	// Data is the decoded payload. Annotations read it through Get and the
	// typed accessors; a missing path is never an error.
	Data map[string]any
}

// New builds a Record around an already decoded payload.
func New(ctx Context, data map[string]any) *Record {
	if data == nil {
		data = map[string]any{}
	}
	r := &Record{Context: ctx, Data: data}
	r.IP = r.String("ip")
	r.Domain = r.String("domain")
	return r
}

// Decode parses one JSON object. Scan context present in the object
// ("port", "protocol", "subprotocol") overrides the defaults.
func Decode(line []byte, defaults Context) (*Record, error) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return nil, fmt.Errorf("%w: empty line", ErrMalformed)
	}

	var data map[string]any
	dec := json.NewDecoder(bytes.NewReader(line))
	dec.UseNumber()
	if err := dec.Decode(&data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	ctx := defaults
	if raw, ok := data["port"]; ok && raw != nil {
		port, err := cast.ToIntE(normalizeNumber(raw))
		if err != nil || port < 0 || port > 65535 {
			return nil, fmt.Errorf("%w: invalid port %v", ErrMalformed, raw)
		}
		ctx.Port = port
	}
	if name, ok := data["protocol"].(string); ok && name != "" {
		p, err := protocols.ProtocolFromName(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		ctx.Protocol = p
	}
	if name, ok := data["subprotocol"].(string); ok && name != "" {
		s, err := protocols.SubprotocolFromName(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		ctx.Subprotocol = s
	}

	return New(ctx, data), nil
}

// Get walks a dotted path through nested objects and arrays. Numeric
// segments index arrays.
func (r *Record) Get(path string) (any, bool) {
	if r == nil || path == "" {
		return nil, false
	}
	var cur any = r.Data
	for _, key := range strings.Split(path, ".") {
		switch node := cur.(type) {
		case map[string]any:
			v, ok := node[key]
			if !ok || v == nil {
				return nil, false
			}
			cur = v
		case []any:
			i, err := strconv.Atoi(key)
			if err != nil || i < 0 || i >= len(node) {
				return nil, false
			}
			cur = node[i]
		default:
			return nil, false
		}
	}
	return cur, cur != nil
}

// String returns the value at path as a string, or "" when missing or not
// convertible.
func (r *Record) String(path string) string {
	v, ok := r.Get(path)
	if !ok {
		return ""
	}
	s, err := cast.ToStringE(normalizeNumber(v))
	if err != nil {
		return ""
	}
	return s
}

// Strings returns the value at path as a string slice. A scalar becomes a
// one-element slice.
func (r *Record) Strings(path string) []string {
	v, ok := r.Get(path)
	if !ok {
		return nil
	}
	if _, isList := v.([]any); !isList {
		if s := r.String(path); s != "" {
			return []string{s}
		}
		return nil
	}
	out, err := cast.ToStringSliceE(v)
	if err != nil {
		return nil
	}
	return out
}

// Banner returns the raw service banner.
func (r *Record) Banner() string { return r.String("banner") }

// Title returns the HTML title captured by an HTTP scan.
func (r *Record) Title() string { return r.String("title") }

// Header returns an HTTP response header. Header names are matched in
// lower case with dashes folded to underscores, as scanners emit them.
func (r *Record) Header(name string) string {
	key := strings.ReplaceAll(strings.ToLower(name), "-", "_")
	return r.String("headers." + key)
}

// SubjectField returns a field of the parsed certificate subject, e.g.
// "common_name" or "organization".
func (r *Record) SubjectField(name string) []string {
	return r.Strings("certificate.parsed.subject." + name)
}

// FingerprintSHA256 returns the SHA-256 fingerprint of the certificate.
func (r *Record) FingerprintSHA256() string {
	return r.String("certificate.parsed.fingerprint_sha256")
}

// HasCertificate reports whether a parsed certificate is attached.
func (r *Record) HasCertificate() bool {
	_, ok := r.Get("certificate.parsed")
	return ok
}

func normalizeNumber(v any) any {
	if n, ok := v.(json.Number); ok {
		return n.String()
	}
	return v
}

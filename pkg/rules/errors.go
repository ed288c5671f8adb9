// Copyright 2025 Vulntor Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package rules

import (
	"errors"
	"fmt"
)

const (
	errorCodePatternInvalid    = "RULES_PATTERN_INVALID"
	errorCodeRuleSetNotFound   = "RULES_SET_NOT_FOUND"
	errorCodeSchemaUnsupported = "RULES_SCHEMA_UNSUPPORTED"
	errorCodeStoreFailed       = "RULES_STORE_FAILED"
)

var (
	// ErrPatternInvalid indicates a rule pattern failed to compile.
	ErrPatternInvalid = errors.New("invalid rule pattern")
	// ErrRuleSetNotFound indicates the store holds no rules for a name.
	ErrRuleSetNotFound = errors.New("rule set not found")
	// ErrSchemaUnsupported indicates a rule document with an incompatible schema_version.
	ErrSchemaUnsupported = errors.New("unsupported rule schema version")
)

// PatternError reports a rule whose pattern does not compile.
type PatternError struct {
	RuleID  string
	Pattern string
	Err     error
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("rule %q: invalid pattern %q: %v", e.RuleID, e.Pattern, e.Err)
}

// Unwrap exposes the compiler error.
func (e *PatternError) Unwrap() error { return e.Err }

// Is lets errors.Is match ErrPatternInvalid.
func (e *PatternError) Is(target error) bool { return target == ErrPatternInvalid }

// ErrorCode resolves err to a rule store error code.
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrPatternInvalid):
		return errorCodePatternInvalid
	case errors.Is(err, ErrRuleSetNotFound):
		return errorCodeRuleSetNotFound
	case errors.Is(err, ErrSchemaUnsupported):
		return errorCodeSchemaUnsupported
	default:
		return errorCodeStoreFailed
	}
}

func notFound(name string) error {
	return fmt.Errorf("%w: %q", ErrRuleSetNotFound, name)
}

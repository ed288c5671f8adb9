// Copyright 2025 Vulntor Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package annotation

import (
	"errors"
	"fmt"

	"github.com/vulntor/annotator/pkg/record"
)

const (
	errorCodeMalformedRecord    = "ANNOTATION_MALFORMED_RECORD"
	errorCodeExtractionFailed   = "ANNOTATION_EXTRACTION_FAILED"
	errorCodeInvalidDeclaration = "ANNOTATION_INVALID_DECLARATION"
	errorCodeInternal           = "ANNOTATION_INTERNAL"
)

var (
	// ErrMalformedRecord marks input that cannot be classified at all.
	ErrMalformedRecord = record.ErrMalformed
	// ErrExtractionFailed wraps an error or panic raised by a Processor.
	ErrExtractionFailed = errors.New("annotation extraction failed")
	// ErrInvalidDeclaration indicates an annotation with an inconsistent
	// declaration. It is fatal at startup.
	ErrInvalidDeclaration = errors.New("invalid annotation declaration")
)

type errorCoder interface {
	error
	Code() string
}

type withCodeError struct {
	error
	code string
}

func (e *withCodeError) Code() string {
	return e.code
}

func (e *withCodeError) Unwrap() error {
	return e.error
}

// WithErrorCode annotates err with an annotation error code.
func WithErrorCode(err error, code string) error {
	if err == nil {
		return nil
	}
	return &withCodeError{error: err, code: code}
}

// ExtractionError reports a unit failure together with the unit's name.
type ExtractionError struct {
	Annotation string
	Err        error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("annotation %q: %v", e.Annotation, e.Err)
}

// Unwrap exposes the underlying failure.
func (e *ExtractionError) Unwrap() error { return e.Err }

// Is lets errors.Is match ErrExtractionFailed.
func (e *ExtractionError) Is(target error) bool { return target == ErrExtractionFailed }

func invalidDeclaration(name, format string, args ...any) error {
	return WithErrorCode(
		fmt.Errorf("%w: %q: %s", ErrInvalidDeclaration, name, fmt.Sprintf(format, args...)),
		errorCodeInvalidDeclaration,
	)
}

// ErrorCode resolves an error to its annotation error code.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}

	var coded errorCoder
	if errors.As(err, &coded) {
		if code := coded.Code(); code != "" {
			return code
		}
	}

	switch {
	case errors.Is(err, ErrMalformedRecord):
		return errorCodeMalformedRecord
	case errors.Is(err, ErrExtractionFailed):
		return errorCodeExtractionFailed
	case errors.Is(err, ErrInvalidDeclaration):
		return errorCodeInvalidDeclaration
	default:
		return errorCodeInternal
	}
}

// ExitCode maps annotation errors to CLI exit codes.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}

	switch {
	case errors.Is(err, ErrMalformedRecord):
		return 2
	case errors.Is(err, ErrInvalidDeclaration):
		return 3
	default:
		return 1
	}
}

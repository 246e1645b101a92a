package ai

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies pipeline failures.
type Kind string

const (
	KindUnknown Kind = ""
	// KindTransientInference means the oracle failed on every attempt.
	KindTransientInference Kind = "TransientInferenceFailure"
	// KindMalformedOutput means the oracle replied but the reply could not be
	// parsed or validated.
	KindMalformedOutput Kind = "MalformedOutput"
	// KindEmptyExtraction means extraction produced zero skills.
	KindEmptyExtraction Kind = "EmptyExtractionFailure"
	// KindIncompleteInput means required input was missing before any call.
	KindIncompleteInput Kind = "IncompleteInputFailure"
)

// Error is the typed failure returned by gateway and stages.
type Error struct {
	Kind   Kind
	Stage  string
	Detail string
	// Raw is the oracle text that led to the failure, if any.
	Raw string
	Err error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}

	var b strings.Builder
	if e.Stage != "" {
		b.WriteString(e.Stage)
		b.WriteString(": ")
	}
	b.WriteString(string(e.Kind))
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is lets errors.Is match on kind when the target is an *Error without
// stage or detail.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil {
		return false
	}
	return t.Stage == "" && t.Detail == "" && t.Err == nil && t.Kind == e.Kind
}

// NewError builds an *Error.
func NewError(kind Kind, stage, detail string, raw string, err error) *Error {
	return &Error{Kind: kind, Stage: stage, Detail: detail, Raw: raw, Err: err}
}

// Errorf builds an *Error with a formatted detail.
func Errorf(kind Kind, stage string, format string, args ...any) *Error {
	return &Error{Kind: kind, Stage: stage, Detail: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var aiErr *Error
	if errors.As(err, &aiErr) {
		return aiErr.Kind
	}
	return KindUnknown
}

// RawOf returns the raw oracle text carried by err, if any.
func RawOf(err error) string {
	var aiErr *Error
	if errors.As(err, &aiErr) {
		return aiErr.Raw
	}
	return ""
}

var (
	ErrTransientInference = &Error{Kind: KindTransientInference}
	ErrMalformedOutput    = &Error{Kind: KindMalformedOutput}
	ErrEmptyExtraction    = &Error{Kind: KindEmptyExtraction}
	ErrIncompleteInput    = &Error{Kind: KindIncompleteInput}
)

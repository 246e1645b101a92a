package parser

import (
	"fmt"
	"strings"
)

// ParseError reports oracle text that could not be turned into the expected
// value. Raw is the untouched input.
type ParseError struct {
	Raw        string
	Reason     string
	Violations []string
	Err        error
}

func (e *ParseError) Error() string {
	var b strings.Builder
	b.WriteString("parse error: ")
	b.WriteString(e.Reason)
	if len(e.Violations) > 0 {
		fmt.Fprintf(&b, " (%s)", strings.Join(e.Violations, "; "))
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

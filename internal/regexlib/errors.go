package regexlib

import (
	"errors"
	"fmt"
)

var (
	ErrSyntax             = errors.New("syntax error")
	ErrUnmatchedGroup     = errors.New("unmatched group")
	ErrEmptyUnion         = errors.New("empty union")
	ErrEmptyConcatenation = errors.New("empty concatenation")
	ErrUnknownAlias       = errors.New("unknown alias")
)

// SyntaxError reports a malformed pattern. Err is one of the package
// sentinels so callers can test it with errors.Is.
type SyntaxError struct {
	Pattern string
	Pos     int
	Err     error
	Detail  string
}

func (e *SyntaxError) Error() string {
	msg := fmt.Sprintf("regex %q at offset %d: %v", e.Pattern, e.Pos, e.Err)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *SyntaxError) Unwrap() error { return e.Err }

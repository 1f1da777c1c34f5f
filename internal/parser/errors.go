// Package parser implements the parsing engines: table-driven LL(1),
// backtracking recursive descent, LR(0)/LALR(1) and GLR.
package parser

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"langkit/internal/grammar"
)

var (
	// ErrNoAction reports a table cell with no entry for the lookahead.
	ErrNoAction = errors.New("no action")
	// ErrInformalTerm reports a Group, Optional or Repetition term handed
	// to an engine that needs a desugared grammar.
	ErrInformalTerm = errors.New("grammar is not formal")
)

// Options configures one engine invocation.
type Options struct {
	Logger  *slog.Logger
	Verbose bool
	// Strict turns conflicts that precedence does not decide into a
	// *ConflictError.
	Strict bool
	// Indirect makes grammar preparation for top-down engines also remove
	// left recursion that goes through other nonterminals.
	Indirect bool
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.New(slog.DiscardHandler)
}

// ParseError is a parse failure at token Index.
type ParseError struct {
	Index    int
	Message  string
	Expected []string
	Err      error
}

func (e *ParseError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "token %d: %s", e.Index, e.Message)
	if len(e.Expected) > 0 {
		fmt.Fprintf(&b, " (expected %s)", strings.Join(e.Expected, ", "))
	}
	return b.String()
}

func (e *ParseError) Unwrap() error { return e.Err }

// ParseErrors collects the errors of one LL run.
type ParseErrors []*ParseError

func (e ParseErrors) Error() string {
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

func (e ParseErrors) Unwrap() []error {
	out := make([]error, len(e))
	for i, err := range e {
		out[i] = err
	}
	return out
}

// Conflict is a table cell that received more than one action.
type Conflict struct {
	Where    string
	Symbol   grammar.Symbol
	Kept     string
	Dropped  string
	Resolved bool
}

func (c Conflict) String() string {
	how := "overwritten"
	if c.Resolved {
		how = "resolved"
	}
	return fmt.Sprintf("%s on %s: kept %s, dropped %s (%s)", c.Where, c.Symbol, c.Kept, c.Dropped, how)
}

// ConflictError lists the conflicts a strict build refused to decide.
type ConflictError struct {
	Conflicts []Conflict
}

func (e *ConflictError) Error() string {
	if len(e.Conflicts) == 1 {
		return "conflict: " + e.Conflicts[0].String()
	}
	return fmt.Sprintf("%d conflicts, first: %s", len(e.Conflicts), e.Conflicts[0])
}

func unresolved(cs []Conflict) []Conflict {
	var out []Conflict
	for _, c := range cs {
		if !c.Resolved {
			out = append(out, c)
		}
	}
	return out
}

func checkFormal(g *grammar.Grammar) error {
	for _, p := range g.Productions {
		for _, t := range p.Expr.Terms {
			if !t.Formal() {
				return fmt.Errorf("%w: production %s ?%s? has a %s term", ErrInformalTerm, p.Name, p.Label, t.Kind)
			}
		}
	}
	return nil
}

// Package lexer turns source text into tokens using one DFA per rule.
package lexer

import "fmt"

// ErrorType is the type of tokens covering text no rule matched.
const ErrorType = "ERROR"

type Token struct {
	Type  string
	Value string
	Line  int
}

func (t Token) String() string {
	return fmt.Sprintf("#%d %s %q", t.Line, t.Type, t.Value)
}

// IsError reports whether t covers unrecognized input.
func (t Token) IsError() bool { return t.Type == ErrorType }

package lexer

import (
	"fmt"

	"langkit/internal/regexlib"
)

// RegularRule is a named token pattern. A non-greedy rule stops extending
// after its first accepted prefix; an ignored rule matches but emits nothing.
type RegularRule struct {
	Name   string
	DFA    *regexlib.FA
	Greedy bool
	Ignore bool
}

// NewRule compiles pattern into a greedy, non-ignored rule.
func NewRule(name, pattern string, defs regexlib.Definitions, strategy regexlib.Strategy) (RegularRule, error) {
	re, err := regexlib.Compile(pattern, defs, strategy, nil)
	if err != nil {
		return RegularRule{}, fmt.Errorf("rule %s: %w", name, err)
	}
	return RegularRule{Name: name, DFA: re.DFA, Greedy: true}, nil
}

// MustRule is like NewRule with the Thompson strategy and no definitions but
// panics on error.
func MustRule(name, pattern string) RegularRule {
	r, err := NewRule(name, pattern, regexlib.Definitions{}, regexlib.Thompson)
	if err != nil {
		panic(err)
	}
	return r
}

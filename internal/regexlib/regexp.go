package regexlib

import "fmt"

// Strategy selects how a pattern is turned into a DFA.
type Strategy int

const (
	// Thompson builds an NFA and determinises it with the subset construction.
	Thompson Strategy = iota
	// Followpos builds the DFA directly from the syntax tree.
	Followpos
)

func (s Strategy) String() string {
	if s == Followpos {
		return "followpos"
	}
	return "thompson"
}

// ParseStrategy maps a strategy name to its value.
func ParseStrategy(name string) (Strategy, error) {
	switch name {
	case "", "thompson", "nfa":
		return Thompson, nil
	case "followpos", "direct":
		return Followpos, nil
	}
	return 0, fmt.Errorf("unknown construction strategy %q", name)
}

// Regex is a compiled pattern.
type Regex struct {
	Pattern string
	Expr    *Expr
	DFA     *FA
}

// Compile parses pattern against defs and builds a minimal DFA over charmap
// (nil keeps the symbols of the pattern).
func Compile(pattern string, defs Definitions, strategy Strategy, charmap []byte) (*Regex, error) {
	e, err := Parse(pattern, defs)
	if err != nil {
		return nil, err
	}
	d, err := CompileExpr(e, strategy, charmap)
	if err != nil {
		return nil, err
	}
	return &Regex{Pattern: pattern, Expr: e, DFA: d}, nil
}

// CompileExpr builds a minimal DFA for an already parsed expression.
func CompileExpr(e *Expr, strategy Strategy, charmap []byte) (*FA, error) {
	var (
		d   *FA
		err error
	)
	switch strategy {
	case Followpos:
		d, err = BuildDFA(e, charmap)
	default:
		var nfa *FA
		nfa, err = BuildNFA(e)
		if err == nil {
			d = NFAToDFA(nfa, charmap)
		}
	}
	if err != nil {
		return nil, err
	}
	return Minimize(d), nil
}

// MustCompile is like Compile with default arguments but panics on error.
func MustCompile(pattern string) *Regex {
	r, err := Compile(pattern, Definitions{}, Thompson, nil)
	if err != nil {
		panic(err)
	}
	return r
}

// MatchString reports whether the whole of s is accepted.
func (r *Regex) MatchString(s string) bool { return Match(r.DFA, s) == Ok }

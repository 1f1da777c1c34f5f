package lexer

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"langkit/internal/regexlib"
)

// ReadSpec reads a lexical specification:
//
//	# comment
//	letter  [a-zA-Z]
//	%
//	IDENT   {letter}+
//	STRING? "[^"]*"     non-greedy
//	-WS     [\ \t\n]+   ignored
//
// Lines before the % separator define aliases usable as {name} in later
// patterns; lines after it define rules in priority order. Without a %
// line every entry is a rule.
func ReadSpec(r io.Reader, strategy regexlib.Strategy) ([]RegularRule, error) {
	type entry struct {
		line       int
		name, body string
	}
	var aliases, rules []entry
	sawSeparator := false

	sc := bufio.NewScanner(r)
	for n := 1; sc.Scan(); n++ {
		raw := strings.TrimRight(sc.Text(), "\r")
		text := strings.TrimLeft(raw, " \t")
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		if strings.TrimSpace(text) == "%" {
			if sawSeparator {
				return nil, fmt.Errorf("line %d: second %% separator", n)
			}
			sawSeparator = true
			aliases, rules = rules, nil
			continue
		}
		name := text
		if k := strings.IndexAny(text, " \t"); k >= 0 {
			name = text[:k]
		}
		body := strings.TrimLeft(text[len(name):], " \t")
		if body == "" {
			return nil, fmt.Errorf("line %d: %s has no pattern", n, name)
		}
		rules = append(rules, entry{line: n, name: name, body: body})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	defs := regexlib.Definitions{}
	for _, a := range aliases {
		if _, dup := defs[a.name]; dup {
			return nil, fmt.Errorf("line %d: alias %s redefined", a.line, a.name)
		}
		e, err := regexlib.Parse(a.body, defs)
		if err != nil {
			return nil, fmt.Errorf("line %d: alias %s: %w", a.line, a.name, err)
		}
		defs[a.name] = e
	}

	out := make([]RegularRule, 0, len(rules))
	for _, e := range rules {
		name, greedy, ignore := e.name, true, false
		if strings.HasPrefix(name, "-") {
			name, ignore = name[1:], true
		}
		if strings.HasSuffix(name, "?") && len(name) > 1 {
			name, greedy = name[:len(name)-1], false
		}
		if name == "" {
			return nil, fmt.Errorf("line %d: empty rule name", e.line)
		}
		rule, err := NewRule(name, e.body, defs, strategy)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", e.line, err)
		}
		rule.Greedy, rule.Ignore = greedy, ignore
		out = append(out, rule)
	}
	return out, nil
}

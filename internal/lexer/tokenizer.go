package lexer

import (
	"log/slog"
	"strings"

	"langkit/internal/regexlib"
)

// sentinel is appended to the input so that every pending match is flushed.
const sentinel = "\x00"

// Tokenizer runs all rules side by side and emits the longest match; ties
// go to the rule declared first.
type Tokenizer struct {
	Rules  []RegularRule
	Logger *slog.Logger
}

func New(rules []RegularRule) *Tokenizer {
	return &Tokenizer{Rules: rules}
}

// Tokenize is a shorthand for New(rules).Tokenize(input).
func Tokenize(input string, rules []RegularRule) []Token {
	return New(rules).Tokenize(input)
}

type cursor struct {
	state int
	end   int // exclusive end of the best accepted prefix, -1 if none
	alive bool
}

// Tokenize splits input into tokens. Text no rule can match becomes ERROR
// tokens, cut before the next line break. Each token carries the line it
// starts on.
func (t *Tokenizer) Tokenize(input string) []Token {
	src := input + sentinel
	cur := make([]cursor, len(t.Rules))
	var out []Token

	line := 1
	start, i := 0, 0
	fresh := true
	reset := func() {
		for k, r := range t.Rules {
			cur[k] = cursor{state: r.DFA.Start, end: -1, alive: true}
		}
		fresh = true
	}
	advance := func(end int) {
		line += strings.Count(src[start:end], "\n")
		start, i = end, end
		reset()
	}
	reset()

	for i < len(src) {
		c := src[i]
		alive := false
		for k := range cur {
			r := &cur[k]
			if !r.alive {
				continue
			}
			if !t.Rules[k].Greedy && r.end >= 0 {
				r.alive = false
				continue
			}
			next, res := regexlib.Step(t.Rules[k].DFA, r.state, c)
			if res == regexlib.Err {
				r.alive = false
				continue
			}
			r.state = next
			if res == regexlib.Ok {
				r.end = i + 1
			}
			alive = true
		}
		if alive {
			i++
			fresh = false
			continue
		}

		best := -1
		for k := range cur {
			if cur[k].end > start && (best < 0 || cur[k].end > cur[best].end) {
				best = k
			}
		}
		if best >= 0 {
			end := cur[best].end
			if rule := t.Rules[best]; !rule.Ignore {
				out = append(out, Token{Type: rule.Name, Value: src[start:end], Line: line})
			}
			advance(end)
			continue
		}

		end := i
		if fresh {
			end = i + 1
		}
		text := src[start:end]
		if nl := strings.IndexByte(text, '\n'); nl >= 0 && len(text) > 1 {
			cut := max(nl, 1)
			end = start + cut
			text = text[:cut]
		}
		if text != sentinel {
			out = append(out, Token{Type: ErrorType, Value: text, Line: line})
			if t.Logger != nil {
				t.Logger.Debug("unrecognized input", "line", line, "text", text)
			}
		}
		advance(end)
	}
	return out
}

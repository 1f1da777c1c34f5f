package parser

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"langkit/internal/grammar"
	"langkit/internal/lexer"
	"langkit/internal/tree"
)

// glrStack is one live parse: its state stack and the productions it has
// reduced so far, in order. empty counts the zero-length reductions since
// the last shift.
type glrStack struct {
	states  []int
	reduced []int
	empty   int
}

func (s *glrStack) key() string {
	var b strings.Builder
	for _, st := range s.states {
		b.WriteString(strconv.Itoa(st))
		b.WriteByte(' ')
	}
	return b.String()
}

func (s *glrStack) top() int { return s.states[len(s.states)-1] }

// ParseGLR explores every action the table admits, ignoring how conflicts
// were resolved. At each position all stacks are closed under reduction,
// then every stack that can shift the token does so. Stacks with the same
// state sequence are kept once. The first stack to reduce the augmented
// production at end of input wins, and its reductions are replayed into a
// tree by BuildRightmost.
func ParseGLR(t *LRTable, tokens []lexer.Token, opts Options) (*tree.Node, error) {
	log := opts.logger()
	stacks := []*glrStack{{states: []int{t.Start}}}

	for i := 0; ; i++ {
		end := i >= len(tokens)
		var tok lexer.Token
		if !end {
			tok = tokens[i]
		}

		var accepted *glrStack
		stacks, accepted = t.reduceAll(stacks, tok, end, len(t.Rows)+len(tokens)-i)
		if accepted != nil {
			return BuildRightmost(t.Productions, accepted.reduced, tokens)
		}
		if end {
			return nil, t.glrError(stacks, tokens, i)
		}

		var shifted []*glrStack
		seen := map[string]bool{}
		for _, s := range stacks {
			for _, a := range t.Candidates(s.top(), tok, false) {
				if a.Kind != Shift {
					continue
				}
				next := &glrStack{states: append(slices.Clone(s.states), a.Target), reduced: s.reduced}
				if k := next.key(); !seen[k] {
					seen[k] = true
					shifted = append(shifted, next)
				}
			}
		}
		if opts.Verbose {
			log.Debug("glr shift", "index", i, "stacks", len(stacks), "shifted", len(shifted))
		}
		if len(shifted) == 0 {
			return nil, t.glrError(stacks, tokens, i)
		}
		stacks = shifted
	}
}

// reduceAll closes stacks under the reductions allowed by the lookahead.
// The result keeps the original stacks, which may still shift. A stack
// takes at most maxEmpty zero-length reductions between two shifts, so a
// nullable left corner cannot grow it forever.
func (t *LRTable) reduceAll(stacks []*glrStack, tok lexer.Token, end bool, maxEmpty int) ([]*glrStack, *glrStack) {
	seen := map[string]bool{}
	for _, s := range stacks {
		seen[s.key()] = true
	}
	for w := 0; w < len(stacks); w++ {
		s := stacks[w]
		for _, a := range t.Candidates(s.top(), tok, end) {
			if a.Kind != Reduce {
				continue
			}
			if a.Target == t.Augmented {
				if end && len(s.states) == 2 {
					return stacks, s
				}
				continue
			}
			p := t.Productions[a.Target]
			n := len(p.Expr.Terms)
			if n >= len(s.states) || (n == 0 && s.empty >= maxEmpty) {
				continue
			}
			base := s.states[:len(s.states)-n]
			next, ok := t.GotoState(base[len(base)-1], p.Name)
			if !ok {
				continue
			}
			r := &glrStack{
				states:  append(slices.Clone(base), next),
				reduced: append(slices.Clone(s.reduced), a.Target),
				empty:   s.empty,
			}
			if n == 0 {
				r.empty++
			}
			if k := r.key(); !seen[k] {
				seen[k] = true
				stacks = append(stacks, r)
			}
		}
	}
	return stacks, nil
}

func (t *LRTable) glrError(stacks []*glrStack, tokens []lexer.Token, i int) error {
	expected := grammar.NewSymbolSet()
	for _, s := range stacks {
		for _, c := range t.Rows[s.top()].Cells {
			if c.Symbol.Terminal {
				expected.Add(c.Symbol)
			}
		}
	}
	names := make([]string, 0, expected.Len())
	for _, s := range expected.Items {
		names = append(names, s.String())
	}
	slices.Sort(names)
	msg := "unexpected end of input"
	if i < len(tokens) {
		msg = fmt.Sprintf("unexpected %s %q", tokens[i].Type, tokens[i].Value)
	}
	return &ParseError{Index: i, Message: msg + ": every stack died", Expected: names, Err: ErrNoAction}
}

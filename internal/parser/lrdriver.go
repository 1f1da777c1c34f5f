package parser

import (
	"fmt"

	"langkit/internal/lexer"
	"langkit/internal/tree"
)

// ParseLR runs the shift-reduce driver over tokens. The run accepts when
// the augmented production is reduced at end of input. It fails with
// ErrNoAction once the reductions since the last shift outnumber the
// table's states plus the stack depth.
func ParseLR(t *LRTable, tokens []lexer.Token, opts Options) (*tree.Node, error) {
	log := opts.logger()
	states := []int{t.Start}
	var nodes []*tree.Node
	i := 0
	reductions, limit := 0, len(t.Rows)+len(states)

	for {
		state := states[len(states)-1]
		end := i >= len(tokens)
		var tok lexer.Token
		if !end {
			tok = tokens[i]
		}
		cell, ok := t.Lookup(state, tok, end)
		if !ok {
			return nil, unexpected(t, state, tokens, i)
		}
		act := cell.Action
		if opts.Verbose {
			log.Debug("lr step", "state", state, "index", i, "action", t.describe(act))
		}

		switch act.Kind {
		case Shift:
			nodes = append(nodes, tree.NewTerminal(tok, i))
			states = append(states, act.Target)
			i++
			reductions, limit = 0, len(t.Rows)+len(states)
		case Reduce:
			if act.Target == t.Augmented {
				return nodes[0], nil
			}
			if reductions++; reductions > limit {
				return nil, fmt.Errorf("state %d: %d reductions without a shift at token %d: %w", state, reductions, i, ErrNoAction)
			}
			p := &t.Productions[act.Target]
			n := len(p.Expr.Terms)
			kids := nodes[len(nodes)-n:]
			node := tree.NewNonTerminal(p, i)
			if n > 0 {
				node.Index = kids[0].Index
			}
			node.Push(kids...)
			nodes = append(nodes[:len(nodes)-n], node)
			states = states[:len(states)-n]
			next, ok := t.GotoState(states[len(states)-1], p.Name)
			if !ok {
				return nil, fmt.Errorf("state %d: no goto on %s: %w", states[len(states)-1], p.Name, ErrNoAction)
			}
			states = append(states, next)
		default:
			return nil, fmt.Errorf("state %d: %s on a terminal: %w", state, act.Kind, ErrNoAction)
		}
	}
}

func unexpected(t *LRTable, state int, tokens []lexer.Token, i int) *ParseError {
	msg := "unexpected end of input"
	if i < len(tokens) {
		msg = fmt.Sprintf("unexpected %s %q", tokens[i].Type, tokens[i].Value)
	}
	return &ParseError{Index: i, Message: msg, Expected: t.Expected(state), Err: ErrNoAction}
}

package regexlib

import (
	"strconv"

	"langkit/internal/suggest"
)

// ResolveAliases returns a copy of e with every Alias node replaced by its
// definition. Definitions may refer to other definitions; cycles are errors.
func ResolveAliases(e *Expr, defs Definitions) (*Expr, error) {
	r := resolver{defs: defs, active: map[string]bool{}}
	return r.resolve(e)
}

type resolver struct {
	defs   Definitions
	active map[string]bool
}

func (r *resolver) resolve(e *Expr) (*Expr, error) {
	switch e.Kind {
	case Alias:
		def, ok := r.defs[e.Name]
		if !ok {
			return nil, &SyntaxError{Err: ErrUnknownAlias, Detail: strconv.Quote(e.Name) + suggest.Hint(e.Name, r.defs.names())}
		}
		if r.active[e.Name] {
			return nil, &SyntaxError{Err: ErrSyntax, Detail: "alias " + strconv.Quote(e.Name) + " refers to itself"}
		}
		r.active[e.Name] = true
		out, err := r.resolve(def)
		delete(r.active, e.Name)
		return out, err
	case Epsilon, Atomic:
		return &Expr{Kind: e.Kind, Char: e.Char}, nil
	}

	out := &Expr{Kind: e.Kind, Operands: make([]*Expr, len(e.Operands))}
	for i, op := range e.Operands {
		sub, err := r.resolve(op)
		if err != nil {
			return nil, err
		}
		out.Operands[i] = sub
	}
	return out, nil
}

package grammar

import (
	"strconv"

	"langkit/internal/lexer"
)

// Symbol identifies a terminal (token type plus optional literal value) or
// a nonterminal. It is comparable and used as a map key by the engines.
type Symbol struct {
	Terminal bool
	Name     string
	Value    string
	HasValue bool
}

var (
	// EndOfInput is the terminal that follows the last token.
	EndOfInput = Symbol{Terminal: true, Name: "$"}
	// Epsilon marks nullability inside FIRST sets.
	Epsilon = Symbol{Terminal: true, Name: "\x00"}
)

func (s Symbol) String() string {
	switch {
	case s == EndOfInput:
		return "$"
	case s == Epsilon:
		return "ε"
	case !s.Terminal:
		return s.Name
	case s.HasValue:
		return strconv.Quote(s.Name) + " <- " + strconv.Quote(s.Value)
	}
	return strconv.Quote(s.Name)
}

// Term converts a symbol back into a formal term.
func (s Symbol) Term() Term {
	if !s.Terminal {
		return NonTerm(s.Name)
	}
	if s.HasValue {
		return TokValue(s.Name, s.Value)
	}
	return Tok(s.Name)
}

// TokenSymbols returns the two terminal symbols a token can match: the one
// carrying its text and the one matching its type alone. Tables are probed
// in that order.
func TokenSymbols(tok lexer.Token) (exact, byType Symbol) {
	return Symbol{Terminal: true, Name: tok.Type, Value: tok.Value, HasValue: true},
		Symbol{Terminal: true, Name: tok.Type}
}

// SymbolSet is a set of symbols that remembers insertion order. Items is
// exported so sets can be persisted; the lookup index is rebuilt on demand.
type SymbolSet struct {
	Items []Symbol
	index map[Symbol]struct{}
}

func NewSymbolSet(items ...Symbol) *SymbolSet {
	s := &SymbolSet{}
	for _, it := range items {
		s.Add(it)
	}
	return s
}

func (s *SymbolSet) ensure() {
	if s.index != nil {
		return
	}
	s.index = make(map[Symbol]struct{}, len(s.Items))
	for _, it := range s.Items {
		s.index[it] = struct{}{}
	}
}

func (s *SymbolSet) Len() int { return len(s.Items) }

func (s *SymbolSet) Contains(sym Symbol) bool {
	s.ensure()
	_, ok := s.index[sym]
	return ok
}

// Add inserts sym and reports whether the set changed.
func (s *SymbolSet) Add(sym Symbol) bool {
	if s.Contains(sym) {
		return false
	}
	s.index[sym] = struct{}{}
	s.Items = append(s.Items, sym)
	return true
}

// Union adds every symbol of o and reports whether the set changed.
func (s *SymbolSet) Union(o *SymbolSet) bool {
	changed := false
	for _, it := range o.Items {
		if s.Add(it) {
			changed = true
		}
	}
	return changed
}

func (s *SymbolSet) Remove(sym Symbol) bool {
	if !s.Contains(sym) {
		return false
	}
	delete(s.index, sym)
	for i, it := range s.Items {
		if it == sym {
			s.Items = append(s.Items[:i], s.Items[i+1:]...)
			break
		}
	}
	return true
}

func (s *SymbolSet) Clone() *SymbolSet {
	return NewSymbolSet(s.Items...)
}

// MatchToken reports whether tok is in the set, exactly or by type.
func (s *SymbolSet) MatchToken(tok lexer.Token) bool {
	exact, byType := TokenSymbols(tok)
	return s.Contains(exact) || s.Contains(byType)
}

package regexlib

import (
	"slices"
	"sort"
	"strconv"
	"strings"

	"langkit/internal/suggest"
)

// Definitions maps alias names to already parsed expressions.
type Definitions map[string]*Expr

func (d Definitions) names() []string {
	out := make([]string, 0, len(d))
	for k := range d {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// DefaultAlphabet is the byte alphabet used for negated classes and DFA
// construction. Byte 0 is reserved for the tokenizer sentinel.
func DefaultAlphabet() []byte {
	out := make([]byte, 0, 255)
	for c := 1; c < 256; c++ {
		out = append(out, byte(c))
	}
	return out
}

type marker int

const (
	mExpr marker = iota
	mTuple
	mGroup
	mGroupNegate
	mUnionOp
)

type item struct {
	marker marker
	expr   *Expr
}

type parser struct {
	src   string
	defs  Definitions
	pos   int
	stack []item

	inGroup      bool
	negated      bool
	rangePending bool
}

// Parse turns a pattern into an expression tree. With a non-nil defs every
// {name} is resolved immediately; with nil defs it becomes an Alias node to
// be handled by ResolveAliases.
func Parse(src string, defs Definitions) (*Expr, error) {
	p := &parser{src: src, defs: defs}
	return p.parse()
}

// MustParse is like Parse but panics on error.
func MustParse(src string, defs Definitions) *Expr {
	e, err := Parse(src, defs)
	if err != nil {
		panic(err)
	}
	return e
}

func (p *parser) fail(err error, detail string) error {
	return &SyntaxError{Pattern: p.src, Pos: p.pos, Err: err, Detail: detail}
}

func (p *parser) push(e *Expr)  { p.stack = append(p.stack, item{marker: mExpr, expr: e}) }
func (p *parser) mark(m marker) { p.stack = append(p.stack, item{marker: m}) }

func (p *parser) top() (item, bool) {
	if len(p.stack) == 0 {
		return item{}, false
	}
	return p.stack[len(p.stack)-1], true
}

func (p *parser) pop() item {
	it := p.stack[len(p.stack)-1]
	p.stack = p.stack[:len(p.stack)-1]
	return it
}

func (p *parser) parse() (*Expr, error) {
	for p.pos = 0; p.pos < len(p.src); p.pos++ {
		c := p.src[p.pos]
		if p.inGroup {
			if err := p.groupByte(c); err != nil {
				return nil, err
			}
			continue
		}

		switch c {
		case ' ', '\t', '\r', '\n':
		case '\\':
			e, err := p.escape()
			if err != nil {
				return nil, err
			}
			p.push(e)
		case '(':
			p.mark(mTuple)
		case ')':
			if err := p.collectConcat(); err != nil {
				return nil, err
			}
			if err := p.collectUnion(true); err != nil {
				return nil, err
			}
		case '[':
			p.mark(mGroup)
			p.inGroup, p.negated, p.rangePending = true, false, false
		case ']', '}':
			return nil, p.fail(ErrUnmatchedGroup, "unexpected "+strconv.QuoteRune(rune(c)))
		case '|':
			if err := p.collectConcat(); err != nil {
				return nil, err
			}
			p.mark(mUnionOp)
		case '*', '+', '?':
			if err := p.postfix(c); err != nil {
				return nil, err
			}
		case '{':
			e, err := p.alias()
			if err != nil {
				return nil, err
			}
			p.push(e)
		default:
			p.push(atom(c))
		}
	}

	if p.inGroup {
		return nil, p.fail(ErrUnmatchedGroup, "unterminated character class")
	}
	if err := p.collectConcat(); err != nil {
		return nil, err
	}
	if err := p.collectUnion(false); err != nil {
		return nil, err
	}
	if len(p.stack) != 1 || p.stack[0].marker != mExpr {
		return nil, p.fail(ErrSyntax, "dangling operator")
	}
	return p.stack[0].expr, nil
}

func (p *parser) escape() (*Expr, error) {
	p.pos++
	if p.pos >= len(p.src) {
		return nil, p.fail(ErrSyntax, "trailing backslash")
	}
	switch c := p.src[p.pos]; c {
	case 'n':
		return atom('\n'), nil
	case 't':
		return atom('\t'), nil
	case 'r':
		return atom('\r'), nil
	case '0':
		return eps(), nil
	case 'x':
		if p.pos+3 > len(p.src) {
			return nil, p.fail(ErrSyntax, `\x needs two hex digits`)
		}
		v, err := strconv.ParseUint(p.src[p.pos+1:p.pos+3], 16, 8)
		if err != nil || v == 0 {
			return nil, p.fail(ErrSyntax, "bad hex escape")
		}
		p.pos += 2
		return atom(byte(v)), nil
	default:
		return atom(c), nil
	}
}

func (p *parser) alias() (*Expr, error) {
	end := strings.IndexByte(p.src[p.pos:], '}')
	if end < 0 {
		return nil, p.fail(ErrUnmatchedGroup, "unterminated alias")
	}
	name := strings.TrimSpace(p.src[p.pos+1 : p.pos+end])
	p.pos += end
	if p.defs == nil {
		return alias(name), nil
	}
	e, ok := p.defs[name]
	if !ok {
		return nil, p.fail(ErrUnknownAlias, strconv.Quote(name)+suggest.Hint(name, p.defs.names()))
	}
	return e, nil
}

func (p *parser) postfix(c byte) error {
	it, ok := p.top()
	if !ok || it.marker != mExpr {
		return p.fail(ErrSyntax, "nothing to repeat before "+strconv.QuoteRune(rune(c)))
	}
	e := p.pop().expr
	switch c {
	case '*':
		p.push(star(e))
	case '+':
		p.push(concat([]*Expr{e, star(Clone(e))}))
	case '?':
		p.push(&Expr{Kind: Union, Operands: []*Expr{eps(), e}})
	}
	return nil
}

// ---- character classes ----------------------------------------------------

func (p *parser) groupByte(c byte) error {
	switch c {
	case ' ', '\t', '\r', '\n':
		return nil
	case ']':
		return p.closeGroup()
	case '^':
		if p.negated {
			return p.fail(ErrSyntax, "second ^ in character class")
		}
		if p.rangePending {
			p.push(atom('-'))
			p.rangePending = false
		}
		p.negated = true
		p.mark(mGroupNegate)
		return nil
	case '-':
		if it, ok := p.top(); ok && it.marker == mExpr && it.expr.Kind == Atomic && !p.rangePending {
			p.rangePending = true
			return nil
		}
		return p.member(atom('-'))
	case '\\':
		e, err := p.escape()
		if err != nil {
			return err
		}
		return p.member(e)
	default:
		return p.member(atom(c))
	}
}

func (p *parser) member(e *Expr) error {
	if !p.rangePending {
		p.push(e)
		return nil
	}
	p.rangePending = false
	lo := p.pop().expr
	if e.Kind != Atomic {
		return p.fail(ErrSyntax, "range bound must be a character")
	}
	if lo.Char > e.Char {
		return p.fail(ErrSyntax, "range out of order")
	}
	for c := int(lo.Char); c <= int(e.Char); c++ {
		p.push(atom(byte(c)))
	}
	return nil
}

func (p *parser) closeGroup() error {
	if p.rangePending {
		p.push(atom('-'))
	}
	p.inGroup, p.rangePending = false, false

	var cur, excluded []*Expr
	negated := false
	for {
		if len(p.stack) == 0 {
			return p.fail(ErrUnmatchedGroup, "")
		}
		it := p.pop()
		if it.marker == mGroup {
			break
		}
		switch it.marker {
		case mExpr:
			cur = append(cur, it.expr)
		case mGroupNegate:
			negated = true
			excluded, cur = cur, nil
		default:
			return p.fail(ErrUnmatchedGroup, "")
		}
	}

	if negated && len(cur) == 0 {
		for _, c := range DefaultAlphabet() {
			cur = append(cur, atom(c))
		}
	} else {
		slices.Reverse(cur)
	}

	var skip [256]bool
	for _, e := range excluded {
		if e.Kind == Atomic {
			skip[e.Char] = true
		}
	}
	var members []*Expr
	hasEps := false
	for _, e := range cur {
		switch {
		case e.Kind == Epsilon:
			if !hasEps {
				members = append(members, e)
			}
			hasEps = true
		case e.Kind == Atomic && skip[e.Char]:
		default:
			if e.Kind == Atomic {
				skip[e.Char] = true
			}
			members = append(members, e)
		}
	}
	if len(members) == 0 {
		return p.fail(ErrEmptyUnion, "empty character class")
	}
	p.push(union(members))
	return nil
}

// ---- reductions ------------------------------------------------------------

func (p *parser) collectConcat() error {
	var ops []*Expr
	for {
		it, ok := p.top()
		if !ok || it.marker != mExpr {
			break
		}
		ops = append(ops, p.pop().expr)
	}
	if len(ops) == 0 {
		return p.fail(ErrEmptyConcatenation, "")
	}
	slices.Reverse(ops)
	p.push(concat(ops))
	return nil
}

// collectUnion folds the alternatives above the nearest open parenthesis.
// closing is true for ')' and false at the end of the pattern.
func (p *parser) collectUnion(closing bool) error {
	var ops []*Expr
	for {
		if len(p.stack) == 0 {
			if closing {
				return p.fail(ErrUnmatchedGroup, "unexpected ')'")
			}
			break
		}
		it := p.pop()
		if it.marker == mTuple {
			if !closing {
				return p.fail(ErrUnmatchedGroup, "unclosed '('")
			}
			break
		}
		switch it.marker {
		case mExpr:
			ops = append(ops, it.expr)
		case mUnionOp:
		default:
			return p.fail(ErrUnmatchedGroup, "")
		}
	}
	if len(ops) == 0 {
		return p.fail(ErrEmptyUnion, "")
	}
	slices.Reverse(ops)
	p.push(union(ops))
	return nil
}

// Clone returns a deep copy of e.
func Clone(e *Expr) *Expr {
	if e == nil {
		return nil
	}
	out := &Expr{Kind: e.Kind, Char: e.Char, Name: e.Name}
	if len(e.Operands) > 0 {
		out.Operands = make([]*Expr, len(e.Operands))
		for i, op := range e.Operands {
			out.Operands[i] = Clone(op)
		}
	}
	return out
}

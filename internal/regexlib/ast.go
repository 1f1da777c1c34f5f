package regexlib

import (
	"strconv"
	"strings"
)

type Kind int

const (
	Epsilon Kind = iota
	Atomic
	Union
	Concatenation
	Iteration
	Alias
)

func (k Kind) String() string {
	switch k {
	case Epsilon:
		return "Epsilon"
	case Atomic:
		return "Atomic"
	case Union:
		return "Union"
	case Concatenation:
		return "Concatenation"
	case Iteration:
		return "Iteration"
	case Alias:
		return "Alias"
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Expr is a node of a regular expression tree. Char is set for Atomic, Name
// for Alias; Union and Concatenation keep their operands in order and
// Iteration has exactly one operand.
type Expr struct {
	Kind     Kind
	Char     byte
	Name     string
	Operands []*Expr
}

func eps() *Expr { return &Expr{Kind: Epsilon} }
func atom(c byte) *Expr { return &Expr{Kind: Atomic, Char: c} }
func star(e *Expr) *Expr { return &Expr{Kind: Iteration, Operands: []*Expr{e}} }
func alias(name string) *Expr { return &Expr{Kind: Alias, Name: name} }

func union(ops []*Expr) *Expr {
	if len(ops) == 1 {
		return ops[0]
	}
	return &Expr{Kind: Union, Operands: ops}
}

func concat(ops []*Expr) *Expr {
	if len(ops) == 1 {
		return ops[0]
	}
	return &Expr{Kind: Concatenation, Operands: ops}
}

// String renders the tree in the accepted regex syntax.
func (e *Expr) String() string {
	var b strings.Builder
	e.write(&b)
	return b.String()
}

func (e *Expr) write(b *strings.Builder) {
	switch e.Kind {
	case Epsilon:
		b.WriteString(`\0`)
	case Atomic:
		writeChar(b, e.Char)
	case Alias:
		b.WriteString("{" + e.Name + "}")
	case Iteration:
		op := e.Operands[0]
		if op.Kind == Union || op.Kind == Concatenation {
			b.WriteByte('(')
			op.write(b)
			b.WriteByte(')')
		} else {
			op.write(b)
		}
		b.WriteByte('*')
	case Concatenation:
		for _, op := range e.Operands {
			if op.Kind == Union {
				b.WriteByte('(')
				op.write(b)
				b.WriteByte(')')
				continue
			}
			op.write(b)
		}
	case Union:
		for i, op := range e.Operands {
			if i > 0 {
				b.WriteByte('|')
			}
			op.write(b)
		}
	}
}

func writeChar(b *strings.Builder, c byte) {
	switch c {
	case '\n':
		b.WriteString(`\n`)
	case '\t':
		b.WriteString(`\t`)
	case '\r':
		b.WriteString(`\r`)
	case '(', ')', '[', ']', '{', '}', '|', '*', '+', '?', '\\', ' ':
		b.WriteByte('\\')
		b.WriteByte(c)
	default:
		if c < 0x20 || c >= 0x7f {
			b.WriteString(`\x`)
			b.WriteString(strconv.FormatUint(uint64(c)>>4, 16))
			b.WriteString(strconv.FormatUint(uint64(c)&0xf, 16))
			return
		}
		b.WriteByte(c)
	}
}

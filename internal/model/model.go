// Package model saves compiled artifacts (rule sets, grammars, LR automata
// and tables, token streams, trees) as CBOR documents and loads them back.
//
// Every document is an envelope naming what it holds, the format version it
// was written with and a BLAKE2b-256 digest of the payload.
package model

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/mod/semver"

	"langkit/internal/grammar"
	"langkit/internal/lexer"
	"langkit/internal/parser"
	"langkit/internal/tree"
)

// Version is the format version written into new documents. Documents with
// a different major version, or a newer one, are rejected.
const Version = "v1.0.0"

type Kind string

const (
	KindRules     Kind = "rules"
	KindGrammar   Kind = "grammar"
	KindAutomaton Kind = "lr-automaton"
	KindTable     Kind = "lr-table"
	KindTokens    Kind = "tokens"
	KindTree      Kind = "tree"
)

var (
	ErrKind    = errors.New("model: unexpected document kind")
	ErrVersion = errors.New("model: unsupported format version")
	ErrDigest  = errors.New("model: payload digest mismatch")
)

// Envelope is the outer document.
type Envelope struct {
	Kind    Kind            `cbor:"kind"`
	Version string          `cbor:"version"`
	Digest  []byte          `cbor:"digest"`
	Payload cbor.RawMessage `cbor:"payload"`
}

// Table is a persisted LR table together with the engine it was built for.
type Table struct {
	Engine string
	LR     *parser.LRTable
}

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	if encMode, err = cbor.CanonicalEncOptions().EncMode(); err != nil {
		panic(fmt.Sprintf("cbor enc mode: %v", err))
	}
	// trees nest two levels per node
	decMode, err = cbor.DecOptions{
		MaxNestedLevels:  4096,
		MaxArrayElements: 1 << 24,
	}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("cbor dec mode: %v", err))
	}
}

// Encode wraps v in an envelope of the given kind.
func Encode[T any](kind Kind, v T) ([]byte, error) {
	payload, err := encMode.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", kind, err)
	}
	sum := blake2b.Sum256(payload)
	data, err := encMode.Marshal(Envelope{Kind: kind, Version: Version, Digest: sum[:], Payload: payload})
	if err != nil {
		return nil, fmt.Errorf("encode %s envelope: %w", kind, err)
	}
	return data, nil
}

// Peek decodes and checks the envelope without decoding the payload.
func Peek(data []byte) (Envelope, error) {
	var env Envelope
	if err := decMode.Unmarshal(data, &env); err != nil {
		return Envelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	if !semver.IsValid(env.Version) ||
		semver.Major(env.Version) != semver.Major(Version) ||
		semver.Compare(env.Version, Version) > 0 {
		return Envelope{}, fmt.Errorf("%w: %q (reader is %s)", ErrVersion, env.Version, Version)
	}
	sum := blake2b.Sum256(env.Payload)
	if !bytes.Equal(sum[:], env.Digest) {
		return Envelope{}, fmt.Errorf("%w in %s document", ErrDigest, env.Kind)
	}
	return env, nil
}

// Decode checks the envelope and decodes its payload into a T.
func Decode[T any](data []byte, kind Kind) (T, error) {
	var v T
	env, err := Peek(data)
	if err != nil {
		return v, err
	}
	if env.Kind != kind {
		return v, fmt.Errorf("%w: want %s, got %s", ErrKind, kind, env.Kind)
	}
	if err := decMode.Unmarshal(env.Payload, &v); err != nil {
		return v, fmt.Errorf("decode %s: %w", kind, err)
	}
	return v, nil
}

func Save[T any](w io.Writer, kind Kind, v T) error {
	data, err := Encode(kind, v)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func Load[T any](r io.Reader, kind Kind) (T, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		var zero T
		return zero, err
	}
	return Decode[T](data, kind)
}

// SaveFile writes v to path, replacing any existing file.
func SaveFile[T any](path string, kind Kind, v T) error {
	data, err := Encode(kind, v)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// LoadFile reads a document of the given kind from path.
func LoadFile[T any](path string, kind Kind) (T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		var zero T
		return zero, err
	}
	v, err := Decode[T](data, kind)
	if err != nil {
		return v, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}

func SaveRules(w io.Writer, rules []lexer.RegularRule) error { return Save(w, KindRules, rules) }

func LoadRules(r io.Reader) ([]lexer.RegularRule, error) {
	return Load[[]lexer.RegularRule](r, KindRules)
}

func SaveGrammar(w io.Writer, g *grammar.Grammar) error { return Save(w, KindGrammar, g) }

func LoadGrammar(r io.Reader) (*grammar.Grammar, error) {
	return Load[*grammar.Grammar](r, KindGrammar)
}

func SaveAutomaton(w io.Writer, a *parser.LRAutomaton) error { return Save(w, KindAutomaton, a) }

func LoadAutomaton(r io.Reader) (*parser.LRAutomaton, error) {
	return Load[*parser.LRAutomaton](r, KindAutomaton)
}

func SaveTable(w io.Writer, t Table) error { return Save(w, KindTable, t) }

func LoadTable(r io.Reader) (Table, error) { return Load[Table](r, KindTable) }

func SaveTokens(w io.Writer, tokens []lexer.Token) error { return Save(w, KindTokens, tokens) }

func LoadTokens(r io.Reader) ([]lexer.Token, error) {
	return Load[[]lexer.Token](r, KindTokens)
}

func SaveTree(w io.Writer, n *tree.Node) error { return Save(w, KindTree, n) }

func LoadTree(r io.Reader) (*tree.Node, error) { return Load[*tree.Node](r, KindTree) }

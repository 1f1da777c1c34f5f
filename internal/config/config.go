// Package config loads the YAML project file read by the command line and
// builds the logger shared by the engines.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"langkit/internal/parser"
	"langkit/internal/pipeline"
	"langkit/internal/regexlib"
)

// ErrInvalid wraps every problem found in a project file.
var ErrInvalid = errors.New("invalid project file")

//go:embed schema.json
var schemaJSON string

const schemaURL = "langkit://config.json"

var compileSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(schemaURL, strings.NewReader(schemaJSON)); err != nil {
		return nil, err
	}
	return compiler.Compile(schemaURL)
})

// Config is a project file. Lexer, Grammar and MetaLexer are paths; Load
// resolves them against the directory of the file.
type Config struct {
	Lexer     string `yaml:"lexer"`
	Grammar   string `yaml:"grammar"`
	MetaLexer string `yaml:"meta_lexer"`
	Engine    string `yaml:"engine"`
	Strategy  string `yaml:"strategy"`
	Debug     bool   `yaml:"debug"`
	Verbose   bool   `yaml:"verbose"`
	Strict    bool   `yaml:"strict"`
	Indirect  bool   `yaml:"indirect"`
}

func Default() Config {
	return Config{Engine: string(pipeline.LALR), Strategy: regexlib.Thompson.String()}
}

// Parse decodes a project file over the defaults and validates it.
func Parse(data []byte) (Config, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if doc != nil {
		schema, err := compileSchema()
		if err != nil {
			return Config{}, fmt.Errorf("compile config schema: %w", err)
		}
		if err := schema.Validate(doc); err != nil {
			return Config{}, fmt.Errorf("%w: %v", ErrInvalid, err)
		}
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads and validates the project file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	dir := filepath.Dir(path)
	cfg.Lexer = resolve(dir, cfg.Lexer)
	cfg.Grammar = resolve(dir, cfg.Grammar)
	cfg.MetaLexer = resolve(dir, cfg.MetaLexer)
	return cfg, nil
}

func resolve(dir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}

// Validate checks the engine and strategy names.
func (c Config) Validate() error {
	if _, err := pipeline.ParseEngine(c.Engine); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if _, err := regexlib.ParseStrategy(c.Strategy); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

func (c Config) EngineName() pipeline.Engine { return pipeline.Engine(c.Engine) }

// RegexStrategy returns the configured strategy, Thompson when unset or
// unknown.
func (c Config) RegexStrategy() regexlib.Strategy {
	s, _ := regexlib.ParseStrategy(c.Strategy)
	return s
}

// Options returns engine options logging to log.
func (c Config) Options(log *slog.Logger) parser.Options {
	return parser.Options{Logger: log, Verbose: c.Verbose, Strict: c.Strict, Indirect: c.Indirect}
}

// NewLogger returns a text logger without time and level attributes. With
// debug set it reports Debug records, otherwise Info and above.
func NewLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey || a.Key == slog.LevelKey {
				return slog.Attr{}
			}
			return a
		},
	}))
}

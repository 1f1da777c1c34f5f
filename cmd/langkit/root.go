package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"langkit/internal/config"
	"langkit/internal/grammar"
	"langkit/internal/lexer"
	"langkit/internal/model"
	"langkit/internal/pipeline"
)

// app carries the settings shared by every subcommand: the project file
// overlaid with the flags the user set explicitly.
type app struct {
	cfgPath string
	rules   string
	flags   config.Config

	cfg config.Config
	log *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "langkit",
		Short:         "Build tokenizers and parsers from lexical and grammar specifications",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&a.cfgPath, "config", "c", "", "project file (YAML)")
	pf.StringVarP(&a.flags.Lexer, "lexer", "l", "", "lexical specification file")
	pf.StringVar(&a.rules, "rules", "", "compiled rule set saved by lex --save-rules")
	pf.StringVarP(&a.flags.Grammar, "grammar", "g", "", "grammar file")
	pf.StringVar(&a.flags.MetaLexer, "meta-lexer", "", "lexical specification replacing the built-in tokens of grammar files")
	pf.StringVarP(&a.flags.Engine, "engine", "e", "", "parsing engine: "+strings.Join(pipeline.Engines(), ", "))
	pf.StringVar(&a.flags.Strategy, "strategy", "", "regex construction: thompson or followpos")
	pf.BoolVar(&a.flags.Debug, "debug", false, "log debug records")
	pf.BoolVar(&a.flags.Verbose, "verbose", false, "log every driver step")
	pf.BoolVar(&a.flags.Strict, "strict", false, "fail on unresolved conflicts")
	pf.BoolVar(&a.flags.Indirect, "indirect", false, "ll, rd: also remove indirect left recursion")

	root.AddCommand(newLexCmd(a), newParseCmd(a), newGrammarCmd(a), newDotCmd(a), newMatchCmd(a))
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg := config.Default()
	if a.cfgPath != "" {
		loaded, err := config.Load(a.cfgPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	fl := cmd.Flags()
	if fl.Changed("lexer") {
		cfg.Lexer = a.flags.Lexer
	}
	if fl.Changed("grammar") {
		cfg.Grammar = a.flags.Grammar
	}
	if fl.Changed("meta-lexer") {
		cfg.MetaLexer = a.flags.MetaLexer
	}
	if fl.Changed("engine") {
		cfg.Engine = a.flags.Engine
	}
	if fl.Changed("strategy") {
		cfg.Strategy = a.flags.Strategy
	}
	cfg.Debug = cfg.Debug || a.flags.Debug
	cfg.Verbose = cfg.Verbose || a.flags.Verbose
	cfg.Strict = cfg.Strict || a.flags.Strict
	cfg.Indirect = cfg.Indirect || a.flags.Indirect
	if err := cfg.Validate(); err != nil {
		return err
	}

	a.cfg = cfg
	a.log = config.NewLogger(cmd.ErrOrStderr(), cfg.Debug || cfg.Verbose)
	return nil
}

func (a *app) loadRules() ([]lexer.RegularRule, error) {
	if a.rules != "" {
		return model.LoadFile[[]lexer.RegularRule](a.rules, model.KindRules)
	}
	if a.cfg.Lexer == "" {
		return nil, errors.New("no lexical specification: use --lexer, --rules or a project file")
	}
	f, err := os.Open(a.cfg.Lexer)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	rules, err := lexer.ReadSpec(f, a.cfg.RegexStrategy())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", a.cfg.Lexer, err)
	}
	a.log.Debug("rules compiled", "file", a.cfg.Lexer, "rules", len(rules), "strategy", a.cfg.Strategy)
	return rules, nil
}

func (a *app) loadGrammar() (*grammar.Grammar, error) {
	if a.cfg.Grammar == "" {
		return nil, errors.New("no grammar: use --grammar or a project file")
	}
	data, err := os.ReadFile(a.cfg.Grammar)
	if err != nil {
		return nil, err
	}
	if a.cfg.MetaLexer == "" {
		return grammar.ParseNamed(a.cfg.Grammar, string(data))
	}
	f, err := os.Open(a.cfg.MetaLexer)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	meta, err := lexer.ReadSpec(f, a.cfg.RegexStrategy())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", a.cfg.MetaLexer, err)
	}
	return grammar.ParseWithRules(a.cfg.Grammar, string(data), meta)
}

// tokenize lexes the input file named by args, or standard input.
func (a *app) tokenize(cmd *cobra.Command, args []string) ([]lexer.Token, error) {
	rules, err := a.loadRules()
	if err != nil {
		return nil, err
	}
	src, err := readInput(cmd, args)
	if err != nil {
		return nil, err
	}
	tokens := lexer.Tokenize(src, rules)
	a.log.Debug("tokenized", "tokens", len(tokens))
	return tokens, nil
}

func readInput(cmd *cobra.Command, args []string) (string, error) {
	var (
		data []byte
		err  error
	)
	if len(args) == 0 || args[0] == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(args[0])
	}
	return string(data), err
}

// output opens path for writing, or returns the command's output for "" and "-".
func output(cmd *cobra.Command, path string) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

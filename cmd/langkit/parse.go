package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"langkit/internal/lexer"
	"langkit/internal/model"
	"langkit/internal/pipeline"
	"langkit/internal/tree"
)

func newParseCmd(a *app) *cobra.Command {
	var (
		tablePath  string
		saveTable  string
		saveTree   string
		tokensPath string
		sexpr      bool
	)
	cmd := &cobra.Command{
		Use:   "parse [input]",
		Short: "Tokenize and parse a file (or standard input) and print the tree",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.compile(tablePath)
			if err != nil {
				return err
			}
			for _, c := range p.Conflicts() {
				a.log.Info("conflict", "engine", p.Engine, "detail", c.String(), "resolved", c.Resolved)
			}
			if saveTable != "" {
				if p.LR == nil {
					return fmt.Errorf("--save-table needs an LR engine, not %s", p.Engine)
				}
				t := model.Table{Engine: string(p.Engine), LR: p.LR}
				if err := model.SaveFile(saveTable, model.KindTable, t); err != nil {
					return err
				}
			}

			var tokens []lexer.Token
			if tokensPath != "" {
				tokens, err = model.LoadFile[[]lexer.Token](tokensPath, model.KindTokens)
			} else {
				tokens, err = a.tokenize(cmd, args)
			}
			if err != nil {
				return err
			}

			root, err := p.Parse(tokens)
			if err != nil {
				return err
			}
			if saveTree != "" {
				return model.SaveFile(saveTree, model.KindTree, root)
			}
			if sexpr {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), root)
				return err
			}
			return tree.Fprint(cmd.OutOrStdout(), root)
		},
	}
	f := cmd.Flags()
	f.StringVar(&tablePath, "table", "", "parse with an LR table saved by --save-table instead of a grammar")
	f.StringVar(&saveTable, "save-table", "", "write the LR table to this file")
	f.StringVar(&saveTree, "save-tree", "", "write the tree to this file instead of printing it")
	f.StringVar(&tokensPath, "tokens", "", "parse a token stream saved by lex --save-tokens")
	f.BoolVar(&sexpr, "sexpr", false, "print the tree as one s-expression")
	return cmd
}

// compile builds the parser from a saved table or from the grammar.
func (a *app) compile(tablePath string) (*pipeline.Parser, error) {
	opts := a.cfg.Options(a.log)
	if tablePath == "" {
		g, err := a.loadGrammar()
		if err != nil {
			return nil, err
		}
		return pipeline.Compile(g, a.cfg.EngineName(), opts)
	}

	t, err := model.LoadFile[model.Table](tablePath, model.KindTable)
	if err != nil {
		return nil, err
	}
	e, err := pipeline.ParseEngine(t.Engine)
	if err != nil {
		return nil, err
	}
	if t.LR == nil || (e != pipeline.LR0 && e != pipeline.LALR && e != pipeline.GLR) {
		return nil, errors.New(tablePath + ": not an LR table")
	}
	return pipeline.FromTable(t.LR, e, opts), nil
}

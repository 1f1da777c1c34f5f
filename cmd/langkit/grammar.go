package main

import (
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"

	"langkit/internal/grammar"
	"langkit/internal/model"
	"langkit/internal/parser"
	"langkit/internal/pipeline"
)

func newGrammarCmd(a *app) *cobra.Command {
	var (
		raw  bool
		sets bool
		save string
	)
	cmd := &cobra.Command{
		Use:   "grammar",
		Short: "Print the grammar as the selected engine sees it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			g, err := a.loadGrammar()
			if err != nil {
				return err
			}
			if !raw {
				if g, err = pipeline.Prepare(g, a.cfg.EngineName(), a.cfg.Options(a.log)); err != nil {
					return err
				}
			}
			if save != "" {
				return model.SaveFile(save, model.KindGrammar, g)
			}

			out := cmd.OutOrStdout()
			if err := g.Dump(out); err != nil {
				return err
			}
			if sets {
				return printSets(out, g)
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.BoolVar(&raw, "raw", false, "print the grammar as written, without engine transforms")
	f.BoolVar(&sets, "sets", false, "also print FIRST and FOLLOW sets")
	f.StringVar(&save, "save", "", "write the grammar to this file instead of printing it")
	return cmd
}

func printSets(w io.Writer, g *grammar.Grammar) error {
	first, err := parser.ComputeFirst(g)
	if err != nil {
		return err
	}
	follow, err := parser.ComputeFollow(g, first)
	if err != nil {
		return err
	}
	for _, nt := range g.NonTerminals() {
		fmt.Fprintf(w, "\nFIRST(%s)  = %s\nFOLLOW(%s) = %s\n", nt, setString(first[nt]), nt, setString(follow[nt]))
	}
	return nil
}

func setString(s *grammar.SymbolSet) string {
	if s == nil {
		return "[]"
	}
	names := make([]string, 0, s.Len())
	for _, sym := range s.Items {
		names = append(names, sym.String())
	}
	slices.Sort(names)
	return fmt.Sprint(names)
}

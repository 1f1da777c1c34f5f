package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/cobra"

	"langkit/internal/automaton"
	"langkit/internal/grammar"
	"langkit/internal/model"
	"langkit/internal/parser"
	"langkit/internal/pipeline"
	"langkit/internal/regexlib"
)

func newDotCmd(a *app) *cobra.Command {
	var (
		pattern string
		form    string
		lr      bool
		outFile string
		png     bool
		saveLR  string
	)
	cmd := &cobra.Command{
		Use:   "dot",
		Short: "Export a regex automaton or the LR automaton of the grammar as Graphviz",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var buf bytes.Buffer
			switch {
			case lr:
				au, err := a.lrAutomaton()
				if err != nil {
					return err
				}
				if saveLR != "" {
					if err := model.SaveFile(saveLR, model.KindAutomaton, au); err != nil {
						return err
					}
				}
				err = automaton.ExportDOT(&buf, au.Graph, grammar.Symbol.String, au.StateLabel)
				if err != nil {
					return err
				}
			case pattern != "":
				fa, err := regexAutomaton(pattern, form)
				if err != nil {
					return err
				}
				if err := regexlib.ExportDOT(&buf, fa); err != nil {
					return err
				}
			default:
				return errors.New("nothing to draw: use --re or --lr")
			}

			if png {
				if outFile == "" || outFile == "-" {
					return errors.New("--png needs an output file")
				}
				render := exec.CommandContext(cmd.Context(), "dot", "-Tpng", "-o", outFile)
				render.Stdin = &buf
				render.Stderr = os.Stderr
				if err := render.Run(); err != nil {
					return fmt.Errorf("dot failed: %w", err)
				}
				a.log.Info("png written", "file", outFile)
				return nil
			}

			w, done, err := output(cmd, outFile)
			if err != nil {
				return err
			}
			if _, err := buf.WriteTo(w); err != nil {
				_ = done()
				return err
			}
			return done()
		},
	}
	f := cmd.Flags()
	f.StringVar(&pattern, "re", "", "regular expression to draw")
	f.StringVar(&form, "form", "min", "automaton to draw for --re: nfa, dfa, followpos or min")
	f.BoolVar(&lr, "lr", false, "draw the LR automaton of the grammar (lr0 with --engine lr0, else LALR(1))")
	f.StringVarP(&outFile, "output", "o", "-", "output file")
	f.BoolVar(&png, "png", false, "render PNG via dot -Tpng")
	f.StringVar(&saveLR, "save-automaton", "", "with --lr, also write the automaton to this file")
	return cmd
}

func regexAutomaton(pattern, form string) (*regexlib.FA, error) {
	e, err := regexlib.Parse(pattern, regexlib.Definitions{})
	if err != nil {
		return nil, err
	}
	switch form {
	case "nfa":
		return regexlib.BuildNFA(e)
	case "dfa":
		nfa, err := regexlib.BuildNFA(e)
		if err != nil {
			return nil, err
		}
		return regexlib.NFAToDFA(nfa, nil), nil
	case "followpos":
		return regexlib.BuildDFA(e, nil)
	case "min":
		return regexlib.CompileExpr(e, regexlib.Thompson, nil)
	}
	return nil, fmt.Errorf("unknown automaton form %q", form)
}

func (a *app) lrAutomaton() (*parser.LRAutomaton, error) {
	g, err := a.loadGrammar()
	if err != nil {
		return nil, err
	}
	e := a.cfg.EngineName()
	if e != pipeline.LR0 {
		e = pipeline.LALR
	}
	prepared, err := pipeline.Prepare(g, e, a.cfg.Options(a.log))
	if err != nil {
		return nil, err
	}
	if e == pipeline.LR0 {
		return parser.BuildLR0(prepared)
	}
	return parser.BuildLALR1(prepared)
}

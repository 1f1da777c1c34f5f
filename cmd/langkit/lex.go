package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"langkit/internal/lexer"
	"langkit/internal/model"
)

func newLexCmd(a *app) *cobra.Command {
	var saveRules, saveTokens string
	cmd := &cobra.Command{
		Use:   "lex [input]",
		Short: "Tokenize a file (or standard input) and print the tokens",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rules, err := a.loadRules()
			if err != nil {
				return err
			}
			if saveRules != "" {
				if err := model.SaveFile(saveRules, model.KindRules, rules); err != nil {
					return err
				}
			}
			if len(args) == 0 && saveRules != "" {
				return nil
			}

			src, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			tokens := lexer.Tokenize(src, rules)
			if saveTokens != "" {
				return model.SaveFile(saveTokens, model.KindTokens, tokens)
			}
			out := cmd.OutOrStdout()
			for _, tok := range tokens {
				fmt.Fprintln(out, tok)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&saveRules, "save-rules", "", "write the compiled rule set to this file")
	cmd.Flags().StringVar(&saveTokens, "save-tokens", "", "write the tokens to this file instead of printing them")
	return cmd
}

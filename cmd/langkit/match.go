package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"langkit/internal/regexlib"
)

func newMatchCmd(a *app) *cobra.Command {
	var (
		pattern string
		show    bool
	)
	cmd := &cobra.Command{
		Use:   "match --re pattern [text...]",
		Short: "Run a regular expression over each argument, or each line of standard input",
		RunE: func(cmd *cobra.Command, args []string) error {
			re, err := regexlib.Compile(pattern, regexlib.Definitions{}, a.cfg.RegexStrategy(), nil)
			if err != nil {
				return err
			}
			inputs := args
			if len(inputs) == 0 {
				sc := bufio.NewScanner(cmd.InOrStdin())
				for sc.Scan() {
					inputs = append(inputs, strings.TrimRight(sc.Text(), "\r"))
				}
				if err := sc.Err(); err != nil {
					return err
				}
			}
			out := cmd.OutOrStdout()
			if show {
				fmt.Fprintln(out, regexlib.ToExpr(re.DFA))
			}
			for _, in := range inputs {
				fmt.Fprintf(out, "%q\t%s\n", in, regexlib.Match(re.DFA, in))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&pattern, "re", "", "regular expression")
	cmd.Flags().BoolVar(&show, "expr", false, "first print the expression recovered from the minimal DFA")
	_ = cmd.MarkFlagRequired("re")
	return cmd
}

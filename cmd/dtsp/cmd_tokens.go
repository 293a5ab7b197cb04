package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kylebonnici/dts-lsp-sub002/dts/parser"
)

func newTokensCmd() *cobra.Command {
	var withComments bool

	cmd := &cobra.Command{
		Use:   "tokens <file>",
		Short: "Dump the token stream for a devicetree source file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filename := args[0]
			src, err := os.ReadFile(filename)
			if err != nil {
				return fmt.Errorf("read %s: %w", filename, err)
			}

			tokens, comments := parser.NewLexer(src, filename).Tokenize()
			for _, tok := range tokens {
				fmt.Printf("%s-%s\t%s\t%q\n",
					tok.Span.Start, tok.Span.End, tok.Kind, tok.Literal)
			}
			if withComments {
				for _, tok := range comments {
					fmt.Printf("%s-%s\t%s\t%q\n",
						tok.Span.Start, tok.Span.End, tok.Kind, tok.Literal)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&withComments, "comments", false, "Include comment tokens")
	return cmd
}

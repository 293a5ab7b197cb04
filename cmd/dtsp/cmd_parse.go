package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kylebonnici/dts-lsp-sub002/dts"
	"github.com/kylebonnici/dts-lsp-sub002/dts/preprocessor"
)

func newParseCmd() *cobra.Command {
	var outputFormat string
	var defines []string

	cmd := &cobra.Command{
		Use:   "parse <file>",
		Short: "Parse a devicetree source file and dump the tree and diagnostics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filename := args[0]
			src, err := os.ReadFile(filename)
			if err != nil {
				return fmt.Errorf("read %s: %w", filename, err)
			}

			macros := preprocessor.NewTable()
			for _, def := range defines {
				// -D FOO=1 means FOO expands to 1, like a C compiler.
				if i := strings.Index(def, "="); i >= 0 {
					def = def[:i] + " " + def[i+1:]
				}
				if m, ok := preprocessor.ParseDefine("#define " + def); ok {
					macros.Define(m)
				}
			}

			doc := dts.NewDocument(filename, dts.WithMacros(macros))
			result := doc.Reparse(src)
			dts.ResolveIncludes(result.Items, filepath.Dir(filename))

			switch outputFormat {
			case "json":
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				if err := enc.Encode(result.Root); err != nil {
					return fmt.Errorf("encode tree: %w", err)
				}
			default:
				fmt.Print(result.Root.String())
			}

			for _, issue := range result.Issues {
				span := issue.Span()
				fmt.Fprintf(os.Stderr, "%s:%s: %s: %s\n",
					filename, span.Start, issue.Severity, issue.Kind.Message())
			}
			if len(result.Issues) > 0 {
				return fmt.Errorf("%d issues", len(result.Issues))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "tree", "Output format: tree or json")
	cmd.Flags().StringArrayVarP(&defines, "define", "D", nil, "Macro definition, e.g. FOO=1 or FOO(x)=x")
	return cmd
}

package main

import (
	"os"

	"github.com/spf13/cobra"

	_ "github.com/tliron/commonlog/simple"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "dtsp",
		Short: "Devicetree source parsing tools",
	}

	rootCmd.AddCommand(newParseCmd())
	rootCmd.AddCommand(newTokensCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

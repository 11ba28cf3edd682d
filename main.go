//go:build !(js || wasm)

package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/cottand/slottype/cmd"
)

func main() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "slottype [subcommand]",
	Short:        "slottype checks that typed block connections fit a nominal type hierarchy",
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
}

func init() {
	cmd.AddGlobalFlags(rootCmd)
	rootCmd.AddCommand(cmd.CheckCmd)
	rootCmd.AddCommand(cmd.ValidateCmd)
	rootCmd.AddCommand(cmd.CompileCmd)
	rootCmd.AddCommand(cmd.QueryCmd)
}

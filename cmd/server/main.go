package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "pyventure",
	Short: "Gateway for the PyVenture learning game",
	Long: `pyventure serves the browser client of the Python learning game.

It keeps backend credentials server-side, generates level content with an
LLM, runs submitted programs in a sandbox and grades their output.`,
	SilenceUsage: true,
}

func main() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(generateCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

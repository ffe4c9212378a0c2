package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	generateLevel      int64
	generateDifficulty string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate content for a level and print it as JSON",
	Long: `Generate content for a level through the configured LLM and print it.

The result goes through the same cache as the gateway, so running this
ahead of time also warms the cache for players.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if generateLevel <= 0 {
			return fmt.Errorf("--level must be a positive level id")
		}

		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := a.levels.Content(cmd.Context(), generateLevel, generateDifficulty)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	},
}

func init() {
	generateCmd.Flags().Int64Var(&generateLevel, "level", 0, "Level id to generate content for")
	generateCmd.Flags().StringVar(&generateDifficulty, "difficulty", "", "Difficulty (default: DEFAULT_DIFFICULTY)")
}

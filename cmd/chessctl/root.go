package main

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"example/chess-history/app"

	"github.com/spf13/cobra"
)

var timeout time.Duration

var rootCmd = &cobra.Command{
	Use:   "chessctl",
	Short: "Ingest chess.com game archives",
	Long: `chessctl resolves a player's monthly chess.com archives, normalizes the
games into a player-centric table and either prints it or queues it for storage.`,
	Example: `  # Print every 2023 game for Hikaru
  $ chessctl ingest Hikaru --year 2023

  # Rating summary for one month
  $ chessctl ingest Hikaru --year 2023 --month 2 --summary

  # Queue every archive of the configured identities
  $ chessctl sweep`,
	SilenceUsage: true,
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Minute, "overall deadline")

	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(yearsCmd)
	rootCmd.AddCommand(sweepCmd)
}

// withDeps bootstraps shared dependencies under the --timeout deadline.
func withDeps(cmd *cobra.Command, fn func(ctx context.Context, deps *app.Deps) error) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	deps, err := app.Bootstrap(ctx)
	if err != nil {
		return err
	}
	defer deps.Close()
	return fn(ctx, deps)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

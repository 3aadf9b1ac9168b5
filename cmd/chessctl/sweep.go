package main

import (
	"context"
	"strings"
	"time"

	"example/chess-history/app"
	"example/chess-history/app/logging"

	"github.com/spf13/cobra"
)

var sweepIdentities string

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Queue one ingest job per archive for every configured identity",
	Long: `sweep walks the full archive list of each identity and queues a job per
archive. With QUEUE_URL set jobs go to SQS, otherwise they run in-process.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		start := time.Now()
		return withDeps(cmd, func(ctx context.Context, deps *app.Deps) error {
			identities := deps.Config.Sweep.Identities
			if sweepIdentities != "" {
				identities = strings.Split(sweepIdentities, ",")
			}

			s := &app.Sweeper{
				Archives: deps.Client,
				Queue:    deps.Queue,
				Workers:  deps.Config.Sweep.Workers,
			}
			results := s.Sweep(ctx, identities)

			queued, failed := 0, 0
			for _, r := range results {
				queued += r.Queued
				failed += r.Failed
			}
			logging.Named("sweep").Info().
				Int("identities", len(results)).
				Int("queued", queued).
				Int("failed", failed).
				Dur("took", time.Since(start)).
				Msg("sweep complete")
			return nil
		})
	},
}

func init() {
	sweepCmd.Flags().StringVar(&sweepIdentities, "identities", "", "comma separated identities overriding the configured list")
}

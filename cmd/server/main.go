package main

import (
	"context"
	"time"

	"example/chess-history/app"
	"example/chess-history/app/logging"
)

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	deps, err := app.Bootstrap(ctx)
	cancel()
	if err != nil {
		logging.Get().Fatal().Err(err).Msg("bootstrap failed")
	}
	defer deps.Close()

	router, err := deps.Router()
	if err != nil {
		logging.Get().Fatal().Err(err).Msg("failed to initialize router")
	}
	logging.Named("server").Info().Str("addr", deps.Config.HTTPAddr).Msg("listening")
	if err := router.Run(deps.Config.HTTPAddr); err != nil {
		logging.Get().Fatal().Err(err).Msg("server stopped")
	}
}

package main

import (
	"context"
	"time"

	"example/chess-history/app"
	"example/chess-history/app/logging"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
)

var adapter *ginadapter.GinLambdaV2

// Cold start: bootstrap once per container. The DB handle lives as long as
// the container does.
func init() {
	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	deps, err := app.Bootstrap(ctx)
	if err != nil {
		logging.Get().Fatal().Err(err).Msg("bootstrap failed")
	}
	router, err := deps.Router()
	if err != nil {
		logging.Get().Fatal().Err(err).Msg("router init failed")
	}
	adapter = ginadapter.NewV2(router)
	logging.Named("lambda").Info().Dur("took", time.Since(start)).Msg("cold start complete")
}

// handle serves API Gateway HTTP API (payload v2) proxy events.
func handle(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	return adapter.ProxyWithContext(ctx, req)
}

func main() {
	lambda.Start(handle)
}

// Package main runs the relay endpoint as an AWS Lambda function behind
// an API Gateway proxy integration.
package main

import (
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/edgard/audiorelay/internal/app"
	"github.com/edgard/audiorelay/internal/config"
	"github.com/edgard/audiorelay/internal/logger"
	"github.com/edgard/audiorelay/internal/serverless"
)

func main() {
	cfg, err := config.LoadConfig(os.Getenv(config.EnvPrefix + "_CONFIG"))
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg.Log.Level, cfg.Log.JSON)
	slog.SetDefault(log)

	a, err := app.New(cfg, log)
	if err != nil {
		log.Error("Failed to initialize relay", "error", err)
		os.Exit(1)
	}

	lambda.Start(serverless.NewHandler(a.Handler, log).Handle)
}

package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/lambda"

	"chart-plotter/config"
	"chart-plotter/internal/handler"
	"chart-plotter/pkg"
)

func main() {
	cfg := config.LoadConfig()
	logger := pkg.SetupLogger(cfg.Log.Level)

	h, err := handler.NewFromConfig(context.Background(), cfg, logger)
	if err != nil {
		log.Fatalf("unable to initialise handler: %v", err)
	}

	if err := cfg.Images.Validate(); err != nil {
		// GET requests fail until this is fixed; other methods still answer.
		logger.Warn("images configuration incomplete", "error", err)
	}
	logger.Info("loading function", "bucket", cfg.Images.Bucket, "directory", cfg.Images.Directory, "notify", cfg.Notify.Enabled())

	lambda.Start(h.Handle)
}

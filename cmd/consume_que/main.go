package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"

	"chart-plotter/config"
	"chart-plotter/internal/sqs"
	"chart-plotter/pkg"
)

// Tails the chart.published queue and logs each chart as it lands.
func main() {
	cfg := config.LoadConfig()
	logger := pkg.SetupLogger(cfg.Log.Level)

	if !cfg.Notify.Enabled() {
		log.Fatal("IMAGES_NOTIFY_QUEUE_URL is not set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	awsCfg, err := cfg.AWS.Load(ctx)
	if err != nil {
		log.Fatalf("%v", err)
	}

	consumer := sqs.NewConsumerFromConfig(awsCfg, cfg.Notify.QueueURL, logger)
	logger.Info("waiting for chart notifications", "queue", cfg.Notify.QueueURL)

	err = consumer.Run(ctx, func(msg sqs.ChartPublished) error {
		logger.Info("chart published",
			"bucket", msg.Bucket,
			"key", msg.Key,
			"size", humanize.Bytes(uint64(msg.Size)),
			"request_id", msg.RequestID,
			"published", humanize.Time(msg.PublishedAt),
		)
		return nil
	})
	if err != nil {
		log.Fatalf("%v", err)
	}
}

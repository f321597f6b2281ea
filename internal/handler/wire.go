package handler

import (
	"context"
	"log/slog"

	"chart-plotter/config"
	"chart-plotter/internal/s3"
	"chart-plotter/internal/sqs"
)

// NewFromConfig wires the S3 uploader, and the SQS notifier when a queue is
// configured, from the default AWS credential chain.
func NewFromConfig(ctx context.Context, cfg *config.AppConfig, logger *slog.Logger) (*Handler, error) {
	awsCfg, err := cfg.AWS.Load(ctx)
	if err != nil {
		return nil, err
	}

	var opts []Option
	if cfg.Notify.Enabled() {
		if err := cfg.Notify.Validate(); err != nil {
			return nil, err
		}
		opts = append(opts, WithNotifier(sqs.NewPublisherFromConfig(awsCfg, cfg.Notify.QueueURL)))
	}

	return New(cfg.Images, s3.NewUploaderFromConfig(awsCfg), logger, opts...), nil
}

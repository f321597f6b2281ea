package sqs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/avast/retry-go"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

type ReceiveDeleteAPI interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

const (
	pollAttempts      = 5
	defaultBackoff    = time.Second
	defaultMaxBackoff = 30 * time.Second
)

type Consumer struct {
	client     ReceiveDeleteAPI
	queueURL   string
	logger     *slog.Logger
	backoff    time.Duration
	maxBackoff time.Duration
}

func NewConsumer(client ReceiveDeleteAPI, queueURL string, logger *slog.Logger) *Consumer {
	return &Consumer{
		client:     client,
		queueURL:   queueURL,
		logger:     logger,
		backoff:    defaultBackoff,
		maxBackoff: defaultMaxBackoff,
	}
}

// WithBackoff sets the first delay after a failed poll and the cap it doubles up to.
func (c *Consumer) WithBackoff(initial, max time.Duration) *Consumer {
	c.backoff = initial
	c.maxBackoff = max
	return c
}

func NewConsumerFromConfig(cfg aws.Config, queueURL string, logger *slog.Logger) *Consumer {
	return NewConsumer(sqs.NewFromConfig(cfg), queueURL, logger)
}

// Poll long-polls once and hands every decoded notification to fn.
// A message is deleted only after fn returns nil; undecodable messages are
// left for the queue's redrive policy.
func (c *Consumer) Poll(ctx context.Context, fn func(ChartPublished) error) (int, error) {
	output, err := c.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(c.queueURL),
		MaxNumberOfMessages: 10,
		WaitTimeSeconds:     20,
		VisibilityTimeout:   30,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to receive messages: %w", err)
	}

	handled := 0
	for _, message := range output.Messages {
		var msg ChartPublished
		if err := json.Unmarshal([]byte(aws.ToString(message.Body)), &msg); err != nil {
			c.logger.Warn("failed to unmarshal notification", "message_id", aws.ToString(message.MessageId), "error", err)
			continue
		}

		if err := fn(msg); err != nil {
			c.logger.Error("notification handler failed", "message_id", aws.ToString(message.MessageId), "error", err)
			continue
		}

		_, err := c.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
			QueueUrl:      aws.String(c.queueURL),
			ReceiptHandle: message.ReceiptHandle,
		})
		if err != nil {
			c.logger.Error("failed to delete message", "message_id", aws.ToString(message.MessageId), "error", err)
			continue
		}
		handled++
	}
	return handled, nil
}

// Run polls until ctx is done. Failed polls back off exponentially; after
// pollAttempts failures in a row it waits maxBackoff before trying again.
func (c *Consumer) Run(ctx context.Context, fn func(ChartPublished) error) error {
	for ctx.Err() == nil {
		err := retry.Do(
			func() error {
				_, err := c.Poll(ctx, fn)
				return err
			},
			retry.Context(ctx),
			retry.Attempts(pollAttempts),
			retry.Delay(c.backoff),
			retry.MaxDelay(c.maxBackoff),
			retry.DelayType(retry.BackOffDelay),
			retry.LastErrorOnly(true),
			retry.OnRetry(func(n uint, err error) {
				c.logger.Warn("poll failed, backing off", "attempt", n+1, "error", err)
			}),
		)
		if err == nil || ctx.Err() != nil {
			continue
		}

		c.logger.Error("poll failed", "attempts", pollAttempts, "error", err)
		select {
		case <-ctx.Done():
		case <-time.After(c.maxBackoff):
		}
	}
	return nil
}

package sqs

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

const (
	EventChartPublished = "chart.published"

	messageGroupID = "chart-plotter"
)

// ChartPublished is the JSON body sent after a chart lands in the bucket.
type ChartPublished struct {
	Event       string    `json:"event"`
	Bucket      string    `json:"bucket"`
	Key         string    `json:"key"`
	Size        int       `json:"size"`
	RequestID   string    `json:"request_id"`
	PublishedAt time.Time `json:"published_at"`
}

type SendMessageAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

type Publisher struct {
	client   SendMessageAPI
	queueURL string
}

func NewPublisher(client SendMessageAPI, queueURL string) *Publisher {
	return &Publisher{client: client, queueURL: queueURL}
}

func NewPublisherFromConfig(cfg aws.Config, queueURL string) *Publisher {
	return NewPublisher(sqs.NewFromConfig(cfg), queueURL)
}

func isFIFO(queueURL string) bool {
	return strings.HasSuffix(queueURL, ".fifo")
}

// Publish sends msg and returns the SQS message id.
func (p *Publisher) Publish(ctx context.Context, msg ChartPublished) (string, error) {
	if msg.Event == "" {
		msg.Event = EventChartPublished
	}
	if msg.PublishedAt.IsZero() {
		msg.PublishedAt = time.Now().UTC()
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return "", fmt.Errorf("marshal %s: %w", msg.Event, err)
	}

	input := &sqs.SendMessageInput{
		QueueUrl:    aws.String(p.queueURL),
		MessageBody: aws.String(string(body)),
	}
	if isFIFO(p.queueURL) {
		// FIFO queues require a group; dedup keeps SDK retries from double-sending.
		input.MessageGroupId = aws.String(messageGroupID)
		input.MessageDeduplicationId = aws.String(fmt.Sprintf("%s_%d", msg.RequestID, msg.PublishedAt.UnixNano()))
	}

	output, err := p.client.SendMessage(ctx, input)
	if err != nil {
		return "", fmt.Errorf("failed to send message to %s: %w", p.queueURL, err)
	}
	return aws.ToString(output.MessageId), nil
}

package sqs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeQueue struct {
	sent     []*sqs.SendMessageInput
	messages []types.Message
	deleted  []string
	sendErr  error

	receiveErr   error
	receiveCalls int
}

func (f *fakeQueue) SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	f.sent = append(f.sent, params)
	return &sqs.SendMessageOutput{MessageId: aws.String("msg-1")}, nil
}

func (f *fakeQueue) ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
	f.receiveCalls++
	if f.receiveErr != nil {
		return nil, f.receiveErr
	}
	out := &sqs.ReceiveMessageOutput{Messages: f.messages}
	f.messages = nil
	return out, nil
}

func (f *fakeQueue) DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
	f.deleted = append(f.deleted, aws.ToString(params.ReceiptHandle))
	return &sqs.DeleteMessageOutput{}, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func TestPublish_StandardQueue(t *testing.T) {
	q := &fakeQueue{}
	p := NewPublisher(q, "https://sqs.ap-southeast-1.amazonaws.com/123456789012/charts")

	id, err := p.Publish(context.Background(), ChartPublished{Bucket: "b", Key: "d/test.png", Size: 42, RequestID: "req-1"})
	require.NoError(t, err)
	assert.Equal(t, "msg-1", id)

	require.Len(t, q.sent, 1)
	in := q.sent[0]
	assert.Nil(t, in.MessageGroupId)
	assert.Nil(t, in.MessageDeduplicationId)

	var got ChartPublished
	require.NoError(t, json.Unmarshal([]byte(aws.ToString(in.MessageBody)), &got))
	assert.Equal(t, EventChartPublished, got.Event)
	assert.Equal(t, "d/test.png", got.Key)
	assert.Equal(t, 42, got.Size)
	assert.False(t, got.PublishedAt.IsZero())
}

func TestPublish_FIFOQueue(t *testing.T) {
	q := &fakeQueue{}
	p := NewPublisher(q, "https://sqs.ap-southeast-1.amazonaws.com/123456789012/charts.fifo")
	at := time.Date(2026, 1, 9, 12, 0, 0, 0, time.UTC)

	_, err := p.Publish(context.Background(), ChartPublished{Key: "k", RequestID: "req-1", PublishedAt: at})
	require.NoError(t, err)

	in := q.sent[0]
	assert.Equal(t, "chart-plotter", aws.ToString(in.MessageGroupId))
	assert.Equal(t, "req-1_1767960000000000000", aws.ToString(in.MessageDeduplicationId))
}

func TestPublish_Error(t *testing.T) {
	boom := errors.New("throttled")
	p := NewPublisher(&fakeQueue{sendErr: boom}, "https://example.com/q")

	_, err := p.Publish(context.Background(), ChartPublished{})
	require.ErrorIs(t, err, boom)
}

func TestConsumer_Poll(t *testing.T) {
	good, err := json.Marshal(ChartPublished{Event: EventChartPublished, Key: "d/test.png"})
	require.NoError(t, err)

	q := &fakeQueue{messages: []types.Message{
		{MessageId: aws.String("1"), ReceiptHandle: aws.String("rh-1"), Body: aws.String(string(good))},
		{MessageId: aws.String("2"), ReceiptHandle: aws.String("rh-2"), Body: aws.String("{not json")},
	}}
	c := NewConsumer(q, "https://example.com/q", discardLogger())

	var seen []string
	n, err := c.Poll(context.Background(), func(msg ChartPublished) error {
		seen = append(seen, msg.Key)
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"d/test.png"}, seen)
	assert.Equal(t, []string{"rh-1"}, q.deleted)
}

func TestConsumer_PollKeepsFailedMessages(t *testing.T) {
	body, err := json.Marshal(ChartPublished{Key: "k"})
	require.NoError(t, err)

	q := &fakeQueue{messages: []types.Message{
		{MessageId: aws.String("1"), ReceiptHandle: aws.String("rh-1"), Body: aws.String(string(body))},
	}}
	c := NewConsumer(q, "https://example.com/q", discardLogger())

	n, err := c.Poll(context.Background(), func(ChartPublished) error { return errors.New("nope") })
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, q.deleted)
}

func TestConsumer_RunBacksOffOnPersistentError(t *testing.T) {
	q := &fakeQueue{receiveErr: errors.New("expired token")}
	c := NewConsumer(q, "https://example.com/q", discardLogger()).WithBackoff(10*time.Millisecond, 20*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := c.Run(ctx, func(ChartPublished) error { return nil })
	require.NoError(t, err)

	assert.Less(t, time.Since(start), time.Second)
	assert.GreaterOrEqual(t, q.receiveCalls, 1)
	assert.LessOrEqual(t, q.receiveCalls, 15)
}

func TestConsumer_RunStopsOnCancel(t *testing.T) {
	q := &fakeQueue{receiveErr: errors.New("access denied")}
	c := NewConsumer(q, "https://example.com/q", discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, c.Run(ctx, func(ChartPublished) error { return nil }))
	assert.Zero(t, q.receiveCalls)
}

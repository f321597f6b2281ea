// Package handler turns API Gateway proxy events into published charts.
package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"chart-plotter/config"
	"chart-plotter/internal/plot"
	"chart-plotter/internal/s3"
	"chart-plotter/internal/sqs"
)

type ObjectStore interface {
	UploadImage(ctx context.Context, obj s3.Object) error
}

type Notifier interface {
	Publish(ctx context.Context, msg sqs.ChartPublished) (string, error)
}

type Handler struct {
	images   config.ImagesConfig
	store    ObjectStore
	render   plot.Renderer
	notifier Notifier
	logger   *slog.Logger
}

type Option func(*Handler)

// WithNotifier sends a chart.published message after each upload.
func WithNotifier(n Notifier) Option {
	return func(h *Handler) {
		h.notifier = n
	}
}

func WithRenderer(r plot.Renderer) Option {
	return func(h *Handler) {
		h.render = r
	}
}

func New(images config.ImagesConfig, store ObjectStore, logger *slog.Logger, opts ...Option) *Handler {
	h := &Handler{
		images: images,
		store:  store,
		render: plot.GenerateLineChart,
		logger: logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Handle serves one invocation. A non-GET method yields a 400 envelope and
// no side effects. Configuration, rendering and upload failures are logged
// and returned as errors for the platform to surface.
func (h *Handler) Handle(ctx context.Context, event events.APIGatewayProxyRequest) (Response, error) {
	reqID := requestID(ctx, event)
	log := h.logger.With("request_id", reqID, "method", event.HTTPMethod)

	if event.HTTPMethod != http.MethodGet {
		fault := UnsupportedMethod(event.HTTPMethod)
		log.Warn("rejected request", "error", fault.Message)
		return Failure(fault), nil
	}

	log.Info("query parameters", "params", event.QueryStringParameters)

	key, err := h.publishChart(ctx, reqID, log)
	if err != nil {
		log.Error("publish chart failed", "error", err)
		return Response{}, err
	}
	return Success(key), nil
}

func (h *Handler) publishChart(ctx context.Context, reqID string, log *slog.Logger) (string, error) {
	if err := h.images.Validate(); err != nil {
		return "", err
	}
	log.Debug("target bucket", "bucket", h.images.Bucket)

	img, err := h.render(plot.SampleSeries())
	if err != nil {
		return "", fmt.Errorf("render chart: %w", err)
	}

	key := s3.ObjectKey(h.images.Directory)
	err = h.store.UploadImage(ctx, s3.Object{
		Bucket:      h.images.Bucket,
		Key:         key,
		Body:        img,
		ContentType: s3.ContentTypePNG,
		PublicRead:  true,
	})
	if err != nil {
		return "", err
	}
	log.Info("chart uploaded", "bucket", h.images.Bucket, "key", key, "size", humanize.Bytes(uint64(len(img))))

	if h.notifier != nil {
		// The chart is already public; a lost notification does not fail the request.
		id, err := h.notifier.Publish(ctx, sqs.ChartPublished{
			Bucket:    h.images.Bucket,
			Key:       key,
			Size:      len(img),
			RequestID: reqID,
		})
		if err != nil {
			log.Error("publish notification failed", "key", key, "error", err)
		} else {
			log.Debug("notification sent", "message_id", id)
		}
	}

	return key, nil
}

func requestID(ctx context.Context, event events.APIGatewayProxyRequest) string {
	if id := event.RequestContext.RequestID; id != "" {
		return id
	}
	if lc, ok := lambdacontext.FromContext(ctx); ok && lc.AwsRequestID != "" {
		return lc.AwsRequestID
	}
	return uuid.New().String()
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/alexflint/go-arg"
	"github.com/aws/aws-lambda-go/events"

	"chart-plotter/config"
	"chart-plotter/internal/handler"
	"chart-plotter/internal/plot"
	"chart-plotter/pkg"
)

type renderArgs struct {
	Out    string            `arg:"-o,--out" default:"chart.png" help:"write the sample chart to this file"`
	Invoke bool              `arg:"--invoke" help:"run the handler once against the configured bucket instead"`
	Method string            `arg:"-m,--method" default:"GET" help:"http method sent with --invoke"`
	Query  map[string]string `arg:"-q,--query" help:"query parameters sent with --invoke, key=value"`
}

func (renderArgs) Description() string {
	return "\nrender the sample line chart locally, or invoke the publish handler once\n"
}

func main() {
	var args renderArgs
	arg.MustParse(&args)

	if !args.Invoke {
		if err := plot.SaveLineChart(plot.SampleSeries(), args.Out); err != nil {
			log.Fatalf("render failed: %v", err)
		}
		fmt.Println("chart saved:", args.Out)
		return
	}

	cfg := config.LoadConfig()
	logger := pkg.SetupLogger(cfg.Log.Level)
	ctx := context.Background()

	h, err := handler.NewFromConfig(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("unable to initialise handler: %v", err)
	}

	resp, err := h.Handle(ctx, events.APIGatewayProxyRequest{
		HTTPMethod:            args.Method,
		QueryStringParameters: args.Query,
	})
	if err != nil {
		log.Fatalf("invoke failed: %v", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(resp); err != nil {
		log.Fatalf("encode response: %v", err)
	}
}

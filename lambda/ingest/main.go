package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	linerag "github.com/hsmtkk/turbo-octo-pancake"
	"github.com/hsmtkk/turbo-octo-pancake/coldstart"
	"github.com/hsmtkk/turbo-octo-pancake/embedding"
	"github.com/hsmtkk/turbo-octo-pancake/ingest"
	"github.com/hsmtkk/turbo-octo-pancake/objectstore"
	"github.com/hsmtkk/turbo-octo-pancake/reader"
)

type app struct {
	pipeline *ingest.Pipeline
}

func main() {
	linerag.SetupLambdaLogger(os.Stdout, os.Getenv("LOG_LEVEL"))
	log := linerag.Logger
	ctx := context.Background()

	env, err := coldstart.Init(ctx)
	if err != nil {
		log.Error("Cold start failed", "error", err)
		os.Exit(1)
	}
	cfg := env.Config
	e, err := embedding.New(cfg.EmbeddingProvider, env.Secrets.OpenAIAPIKey, &env.AWS)
	if err != nil {
		log.Error("Embedding setup failed", "error", err)
		os.Exit(1)
	}
	a := &app{
		pipeline: ingest.New(
			objectstore.New(s3.NewFromConfig(env.AWS)),
			cfg.VectorBucket,
			e,
			ingest.WithSplitter(reader.NewSplitter(
				reader.WithChunkSize(cfg.ChunkSize),
				reader.WithChunkOverlap(cfg.ChunkOverlap),
			)),
		),
	}
	lambda.Start(a.Handler)
}

func (a *app) Handler(ctx context.Context, event events.S3Event) (events.APIGatewayProxyResponse, error) {
	log := linerag.Logger
	log.Info("Event received", "records", len(event.Records))
	res, err := a.pipeline.HandleEvent(ctx, event)
	log.Info("Event done", "processed", res.Processed, "failed", res.Failed)
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}
	body, _ := json.Marshal(linerag.OK)
	return events.APIGatewayProxyResponse{StatusCode: http.StatusOK, Body: string(body)}, nil
}

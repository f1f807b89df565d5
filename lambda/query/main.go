package main

import (
	"context"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"

	linerag "github.com/hsmtkk/turbo-octo-pancake"
	"github.com/hsmtkk/turbo-octo-pancake/callback"
	"github.com/hsmtkk/turbo-octo-pancake/coldstart"
)

func main() {
	linerag.SetupLambdaLogger(os.Stdout, os.Getenv("LOG_LEVEL"))
	log := linerag.Logger
	ctx := context.Background()

	env, err := coldstart.Init(ctx)
	if err != nil {
		log.Error("Cold start failed", "error", err)
		os.Exit(1)
	}
	handler, err := callback.NewApp(env.Config, env.Secrets, &env.AWS)
	if err != nil {
		log.Error("Webhook setup failed", "error", err)
		os.Exit(1)
	}
	lambda.Start(newProxy(handler).ProxyWithContext)
}

// newProxy bridges API Gateway proxy events to the webhook router.
func newProxy(h *callback.Handler) *ginadapter.GinLambda {
	return ginadapter.New(callback.NewRouter(h))
}

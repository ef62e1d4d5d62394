package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"

	"github.com/imrishuroy/go-shop-admin/internal/app"
	"github.com/imrishuroy/go-shop-admin/internal/aws"
	"github.com/imrishuroy/go-shop-admin/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	clients, err := aws.NewAWSClients(context.Background())
	if err != nil {
		log.Fatalf("failed to init aws clients: %v", err)
	}

	a := app.New(cfg, clients)
	r := a.Router()

	// RUN_LOCAL=true serves plain HTTP for development.
	if cfg.RunLocal {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		a.StartJanitor(ctx)

		addr := cfg.Addr()
		log.Printf("running local server on %s", addr)
		if err := r.Run(addr); err != nil {
			log.Fatalf("failed to run local server: %v", err)
		}
		return
	}

	// lambda adapter
	adapter := ginadapter.New(r)

	lambda.Start(func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		return adapter.ProxyWithContext(ctx, req)
	})
}

package main

import (
	"context"
	"encoding/json"
	"log"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

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
	p := NewProcessor(a.Reconciler, a.Orders)

	// RUN_LOCAL=true processes one message from LOCAL_SQS_BODY (or LOCAL_ORDER_ID) and exits.
	if cfg.RunLocal {
		body := os.Getenv("LOCAL_SQS_BODY")
		if body == "" {
			b, _ := json.Marshal(map[string]string{"order_id": os.Getenv("LOCAL_ORDER_ID")})
			body = string(b)
		}
		event := events.SQSEvent{
			Records: []events.SQSMessage{{MessageId: "local-1", Body: body}},
		}
		resp, _ := p.Handle(context.Background(), event)
		if len(resp.BatchItemFailures) > 0 {
			log.Fatalf("local message failed")
		}
		return
	}

	lambda.Start(p.Handle)
}

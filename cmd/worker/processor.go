package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/aws/aws-lambda-go/events"

	"github.com/imrishuroy/go-shop-admin/internal/inventory"
	"github.com/imrishuroy/go-shop-admin/internal/orders"
)

// PaidOrderHandler applies the stock decrement of a paid order.
type PaidOrderHandler interface {
	HandlePaidMessage(ctx context.Context, source inventory.OrderSource, msg orders.PaidMessage) error
}

// Processor handles stock-sync messages from SQS.
type Processor struct {
	handler PaidOrderHandler
	orders  inventory.OrderSource
}

func NewProcessor(handler PaidOrderHandler, source inventory.OrderSource) *Processor {
	return &Processor{handler: handler, orders: source}
}

// Handle processes each record and reports the failed ones so SQS redelivers only
// those. Lines already applied are skipped by the ledger, so redelivery is safe.
func (p *Processor) Handle(ctx context.Context, ev events.SQSEvent) (events.SQSEventResponse, error) {
	var resp events.SQSEventResponse
	for _, rec := range ev.Records {
		if err := p.processMessage(ctx, rec); err != nil {
			log.Printf("[worker] message=%s failed: %v", rec.MessageId, err)
			resp.BatchItemFailures = append(resp.BatchItemFailures, events.SQSBatchItemFailure{
				ItemIdentifier: rec.MessageId,
			})
		}
	}
	return resp, nil
}

func (p *Processor) processMessage(ctx context.Context, rec events.SQSMessage) error {
	var msg orders.PaidMessage
	if err := json.Unmarshal([]byte(rec.Body), &msg); err != nil {
		return fmt.Errorf("invalid message body: %w", err)
	}
	if msg.CorrelationID == "" {
		if attr, ok := rec.MessageAttributes["correlation_id"]; ok && attr.StringValue != nil {
			msg.CorrelationID = *attr.StringValue
		}
	}

	log.Printf("[worker] received order=%s corr=%s", msg.OrderID, msg.CorrelationID)
	if err := p.handler.HandlePaidMessage(ctx, p.orders, msg); err != nil {
		return err
	}
	log.Printf("[worker] stock synced order=%s", msg.OrderID)
	return nil
}

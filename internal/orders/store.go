package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/imrishuroy/go-shop-admin/internal/aws"
)

// Store encapsulates operations on the orders table.
type Store struct {
	client    aws.DynamoDBAPI
	tableName string
	nowFunc   func() time.Time
}

// NewStore creates a new orders Store.
func NewStore(client aws.DynamoDBAPI, tableName string) *Store {
	return &Store{
		client:    client,
		tableName: tableName,
		nowFunc:   time.Now,
	}
}

func orderKey(orderID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"order_id": &types.AttributeValueMemberS{Value: orderID},
	}
}

// Create puts a new order, failing if the id already exists.
func (s *Store) Create(ctx context.Context, order Order) error {
	orderMap, err := s.marshalNew(order)
	if err != nil {
		return err
	}
	_, err = s.client.PutItem(ctx, &dyn.PutItemInput{
		TableName:           &s.tableName,
		Item:                orderMap,
		ConditionExpression: aws.String("attribute_not_exists(order_id)"),
	})
	if err != nil {
		return fmt.Errorf("put order: %w", err)
	}
	return nil
}

// CreateWithIdempotencyTransaction atomically creates:
//   - idempotency record in idempotencyTable (with ConditionExpression attribute_not_exists(idempotency_key))
//   - order record in orders table
//
// idempotencyItem must marshal to a map with idempotency_key present.
// Returns ErrIdempotencyConflict when the key was already taken.
func (s *Store) CreateWithIdempotencyTransaction(ctx context.Context, idempotencyTable string, idempotencyItem interface{}, order Order, ttlWindow time.Duration) error {
	idempMap, err := attributevalue.MarshalMap(idempotencyItem)
	if err != nil {
		return fmt.Errorf("marshal idempotency item: %w", err)
	}
	if _, ok := idempMap["expires_at"]; !ok && ttlWindow > 0 {
		expires := s.nowFunc().Add(ttlWindow).Unix()
		idempMap["expires_at"] = &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", expires)}
	}

	orderMap, err := s.marshalNew(order)
	if err != nil {
		return err
	}

	_, err = s.client.TransactWriteItems(ctx, &dyn.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{
				Put: &types.Put{
					TableName:           &idempotencyTable,
					Item:                idempMap,
					ConditionExpression: aws.String("attribute_not_exists(idempotency_key)"),
				},
			},
			{
				Put: &types.Put{
					TableName:           &s.tableName,
					Item:                orderMap,
					ConditionExpression: aws.String("attribute_not_exists(order_id)"),
				},
			},
		},
	})
	if err != nil {
		if aws.IsTransactionCanceled(err) {
			return fmt.Errorf("%w: %v", ErrIdempotencyConflict, err)
		}
		return fmt.Errorf("transact write: %w", err)
	}
	return nil
}

// marshalNew stamps timestamps and marshals the order.
func (s *Store) marshalNew(order Order) (map[string]types.AttributeValue, error) {
	now := s.nowFunc().UTC()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	order.UpdatedAt = now
	if order.Events == nil {
		order.Events = []OrderEvent{}
	}
	item, err := attributevalue.MarshalMap(order)
	if err != nil {
		return nil, fmt.Errorf("marshal order item: %w", err)
	}
	return item, nil
}

// Get fetches an order by order_id. Returns (nil, nil) if not found.
func (s *Store) Get(ctx context.Context, orderID string) (*Order, error) {
	consistent := true
	out, err := s.client.GetItem(ctx, &dyn.GetItemInput{
		TableName:      &s.tableName,
		Key:            orderKey(orderID),
		ConsistentRead: &consistent,
	})
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	var o Order
	if err := attributevalue.UnmarshalMap(out.Item, &o); err != nil {
		return nil, fmt.Errorf("unmarshal order: %w", err)
	}
	return &o, nil
}

// List scans every order.
func (s *Store) List(ctx context.Context) ([]Order, error) {
	orders := make([]Order, 0)
	var startKey map[string]types.AttributeValue
	for {
		out, err := s.client.Scan(ctx, &dyn.ScanInput{
			TableName:         &s.tableName,
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("scan orders: %w", err)
		}
		var page []Order
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, fmt.Errorf("unmarshal orders: %w", err)
		}
		orders = append(orders, page...)
		if len(out.LastEvaluatedKey) == 0 {
			return orders, nil
		}
		startKey = out.LastEvaluatedKey
	}
}

// ApplyTransition conditionally moves both statuses from expected -> new and appends
// tr.Event to the history. paid_at / shipped_at are stamped when the transition
// enters paid / shipped.
// Returns the updated order, or ErrStatusMismatch if the condition failed.
func (s *Store) ApplyTransition(ctx context.Context, orderID string, tr Transition) (*Order, error) {
	now := s.nowFunc().UTC()
	if tr.Event.CreatedAt.IsZero() {
		tr.Event.CreatedAt = now
	}
	event, err := attributevalue.MarshalMap(tr.Event)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	ts := &types.AttributeValueMemberS{Value: now.Format(time.RFC3339Nano)}

	updateExpr := "SET #ps = :np, #os = :no, updated_at = :ua, events = list_append(if_not_exists(events, :empty), :ev)"
	values := map[string]types.AttributeValue{
		":np":    &types.AttributeValueMemberS{Value: tr.NewPayment},
		":no":    &types.AttributeValueMemberS{Value: tr.NewOrder},
		":ep":    &types.AttributeValueMemberS{Value: tr.ExpectedPayment},
		":eo":    &types.AttributeValueMemberS{Value: tr.ExpectedOrder},
		":ua":    ts,
		":empty": &types.AttributeValueMemberL{Value: []types.AttributeValue{}},
		":ev":    &types.AttributeValueMemberL{Value: []types.AttributeValue{&types.AttributeValueMemberM{Value: event}}},
	}
	if tr.NewPayment == PaymentPaid && tr.ExpectedPayment != PaymentPaid {
		updateExpr += ", paid_at = :pa"
		values[":pa"] = ts
	}
	if tr.NewOrder == StatusShipped && tr.ExpectedOrder != StatusShipped {
		updateExpr += ", shipped_at = :sa"
		values[":sa"] = ts
	}

	out, err := s.client.UpdateItem(ctx, &dyn.UpdateItemInput{
		TableName:        &s.tableName,
		Key:              orderKey(orderID),
		UpdateExpression: &updateExpr,
		ExpressionAttributeNames: map[string]string{
			"#ps": "payment_status",
			"#os": "order_status",
		},
		ExpressionAttributeValues: values,
		ConditionExpression:       aws.String("attribute_exists(order_id) AND #ps = :ep AND #os = :eo"),
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		if aws.IsConditionalCheckFailed(err) {
			return nil, ErrStatusMismatch
		}
		return nil, fmt.Errorf("update item: %w", err)
	}
	var o Order
	if err := attributevalue.UnmarshalMap(out.Attributes, &o); err != nil {
		return nil, fmt.Errorf("unmarshal order: %w", err)
	}
	return &o, nil
}

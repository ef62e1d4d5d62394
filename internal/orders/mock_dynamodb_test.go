package orders

import (
	"context"
	"errors"
	"sync"

	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// ordersMock holds the orders table plus the idempotency table used by transactions.
type ordersMock struct {
	mu          sync.Mutex
	orders      map[string]map[string]types.AttributeValue
	idempotency map[string]map[string]types.AttributeValue
	lastUpdate  *dyn.UpdateItemInput
	lastTx      *dyn.TransactWriteItemsInput
}

func newOrdersMock() *ordersMock {
	return &ordersMock{
		orders:      map[string]map[string]types.AttributeValue{},
		idempotency: map[string]map[string]types.AttributeValue{},
	}
}

func sValue(av types.AttributeValue) string {
	if s, ok := av.(*types.AttributeValueMemberS); ok {
		return s.Value
	}
	return ""
}

func (m *ordersMock) PutItem(ctx context.Context, params *dyn.PutItemInput, optFns ...func(*dyn.Options)) (*dyn.PutItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := sValue(params.Item["order_id"])
	if k == "" {
		return nil, errors.New("missing order_id")
	}
	if params.ConditionExpression != nil && *params.ConditionExpression == "attribute_not_exists(order_id)" {
		if _, ok := m.orders[k]; ok {
			return nil, &types.ConditionalCheckFailedException{}
		}
	}
	m.orders[k] = params.Item
	return &dyn.PutItemOutput{}, nil
}

func (m *ordersMock) GetItem(ctx context.Context, params *dyn.GetItemInput, optFns ...func(*dyn.Options)) (*dyn.GetItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.orders[sValue(params.Key["order_id"])]
	if !ok {
		return &dyn.GetItemOutput{}, nil
	}
	return &dyn.GetItemOutput{Item: item}, nil
}

func (m *ordersMock) UpdateItem(ctx context.Context, params *dyn.UpdateItemInput, optFns ...func(*dyn.Options)) (*dyn.UpdateItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastUpdate = params
	if *params.ConditionExpression != "attribute_exists(order_id) AND #ps = :ep AND #os = :eo" {
		return nil, errors.New("unexpected condition: " + *params.ConditionExpression)
	}
	item, ok := m.orders[sValue(params.Key["order_id"])]
	vals := params.ExpressionAttributeValues
	if !ok ||
		sValue(item["payment_status"]) != sValue(vals[":ep"]) ||
		sValue(item["order_status"]) != sValue(vals[":eo"]) {
		return nil, &types.ConditionalCheckFailedException{}
	}
	item["payment_status"] = vals[":np"]
	item["order_status"] = vals[":no"]
	item["updated_at"] = vals[":ua"]
	if v, ok := vals[":pa"]; ok {
		item["paid_at"] = v
	}
	if v, ok := vals[":sa"]; ok {
		item["shipped_at"] = v
	}
	var events []types.AttributeValue
	if l, ok := item["events"].(*types.AttributeValueMemberL); ok {
		events = append(events, l.Value...)
	}
	events = append(events, vals[":ev"].(*types.AttributeValueMemberL).Value...)
	item["events"] = &types.AttributeValueMemberL{Value: events}
	return &dyn.UpdateItemOutput{Attributes: item}, nil
}

func (m *ordersMock) DeleteItem(ctx context.Context, params *dyn.DeleteItemInput, optFns ...func(*dyn.Options)) (*dyn.DeleteItemOutput, error) {
	return nil, errors.New("not used by the orders store")
}

func (m *ordersMock) Scan(ctx context.Context, params *dyn.ScanInput, optFns ...func(*dyn.Options)) (*dyn.ScanOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := &dyn.ScanOutput{}
	for _, item := range m.orders {
		out.Items = append(out.Items, item)
	}
	out.Count = int32(len(out.Items))
	return out, nil
}

func (m *ordersMock) TransactWriteItems(ctx context.Context, params *dyn.TransactWriteItemsInput, optFns ...func(*dyn.Options)) (*dyn.TransactWriteItemsOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastTx = params
	for _, it := range params.TransactItems {
		p := it.Put
		if p == nil || p.ConditionExpression == nil {
			continue
		}
		switch *p.ConditionExpression {
		case "attribute_not_exists(idempotency_key)":
			if _, ok := m.idempotency[sValue(p.Item["idempotency_key"])]; ok {
				return nil, &types.TransactionCanceledException{}
			}
		case "attribute_not_exists(order_id)":
			if _, ok := m.orders[sValue(p.Item["order_id"])]; ok {
				return nil, &types.TransactionCanceledException{}
			}
		}
	}
	for _, it := range params.TransactItems {
		p := it.Put
		if k := sValue(p.Item["idempotency_key"]); k != "" {
			m.idempotency[k] = p.Item
			continue
		}
		m.orders[sValue(p.Item["order_id"])] = p.Item
	}
	return &dyn.TransactWriteItemsOutput{}, nil
}

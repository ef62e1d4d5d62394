package idempotency

import (
	"context"
	"errors"
	"strconv"
	"sync"

	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// simpleMock is a small in-memory table keyed by idempotency_key. It understands the
// condition expressions the Store sends and nothing else.
type simpleMock struct {
	mu          sync.Mutex
	table       map[string]map[string]types.AttributeValue
	putCalls    int
	getCalls    int
	updateCalls int
}

func newSimpleMock() *simpleMock {
	return &simpleMock{
		table: map[string]map[string]types.AttributeValue{},
	}
}

func keyFrom(m map[string]types.AttributeValue) (string, error) {
	attr, ok := m["idempotency_key"].(*types.AttributeValueMemberS)
	if !ok {
		return "", errors.New("missing key")
	}
	return attr.Value, nil
}

func statusOf(item map[string]types.AttributeValue) string {
	if s, ok := item["status"].(*types.AttributeValueMemberS); ok {
		return s.Value
	}
	return ""
}

// leaseExpired mirrors "#s = :inprogress AND #l < :now"; a missing lease never expires.
func leaseExpired(item map[string]types.AttributeValue, now types.AttributeValue) bool {
	if statusOf(item) != StatusInProgress {
		return false
	}
	l, ok := item["lease_expires_at"].(*types.AttributeValueMemberN)
	n, nok := now.(*types.AttributeValueMemberN)
	if !ok || !nok {
		return false
	}
	lv, err1 := strconv.ParseInt(l.Value, 10, 64)
	nv, err2 := strconv.ParseInt(n.Value, 10, 64)
	return err1 == nil && err2 == nil && lv < nv
}

func (m *simpleMock) PutItem(ctx context.Context, params *dyn.PutItemInput, optFns ...func(*dyn.Options)) (*dyn.PutItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.putCalls++
	k, err := keyFrom(params.Item)
	if err != nil {
		return nil, err
	}
	existing, exists := m.table[k]
	if params.ConditionExpression != nil {
		switch *params.ConditionExpression {
		case "attribute_not_exists(idempotency_key) OR #s = :failed OR (#s = :inprogress AND #l < :now)":
			if exists && statusOf(existing) != StatusFailed && !leaseExpired(existing, params.ExpressionAttributeValues[":now"]) {
				return nil, &types.ConditionalCheckFailedException{}
			}
		default:
			return nil, errors.New("unexpected condition: " + *params.ConditionExpression)
		}
	}
	m.table[k] = params.Item
	return &dyn.PutItemOutput{}, nil
}

func (m *simpleMock) GetItem(ctx context.Context, params *dyn.GetItemInput, optFns ...func(*dyn.Options)) (*dyn.GetItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getCalls++
	k, err := keyFrom(params.Key)
	if err != nil {
		return nil, err
	}
	item, ok := m.table[k]
	if !ok {
		return &dyn.GetItemOutput{}, nil
	}
	return &dyn.GetItemOutput{Item: item}, nil
}

func (m *simpleMock) UpdateItem(ctx context.Context, params *dyn.UpdateItemInput, optFns ...func(*dyn.Options)) (*dyn.UpdateItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updateCalls++
	k, err := keyFrom(params.Key)
	if err != nil {
		return nil, err
	}
	item, ok := m.table[k]
	if !ok {
		return nil, &types.ConditionalCheckFailedException{}
	}
	vals := params.ExpressionAttributeValues
	if v, ok := vals[":done"]; ok {
		item["status"] = v
		item["response_body"] = vals[":rb"]
		item["response_status"] = vals[":rs"]
	}
	if v, ok := vals[":failed"]; ok {
		item["status"] = v
		item["note"] = vals[":n"]
	}
	item["updated_at"] = vals[":ua"]
	return &dyn.UpdateItemOutput{}, nil
}

func (m *simpleMock) DeleteItem(ctx context.Context, params *dyn.DeleteItemInput, optFns ...func(*dyn.Options)) (*dyn.DeleteItemOutput, error) {
	return nil, errors.New("not used")
}

func (m *simpleMock) Scan(ctx context.Context, params *dyn.ScanInput, optFns ...func(*dyn.Options)) (*dyn.ScanOutput, error) {
	return nil, errors.New("not used")
}

func (m *simpleMock) TransactWriteItems(ctx context.Context, params *dyn.TransactWriteItemsInput, optFns ...func(*dyn.Options)) (*dyn.TransactWriteItemsOutput, error) {
	return nil, errors.New("not used")
}

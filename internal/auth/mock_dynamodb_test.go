package auth

import (
	"context"
	"errors"
	"sync"

	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// tablesMock keeps the users and sessions tables, keyed by their partition key.
type tablesMock struct {
	mu     sync.Mutex
	tables map[string]map[string]map[string]types.AttributeValue
}

func newTablesMock() *tablesMock {
	return &tablesMock{tables: map[string]map[string]map[string]types.AttributeValue{
		"users":    {},
		"sessions": {},
	}}
}

// pk reads the partition key: email for users, token for sessions.
func pk(table *string, m map[string]types.AttributeValue) string {
	name := "token"
	if *table == "users" {
		name = "email"
	}
	if s, ok := m[name].(*types.AttributeValueMemberS); ok {
		return s.Value
	}
	return ""
}

func (m *tablesMock) table(name *string) (map[string]map[string]types.AttributeValue, error) {
	t, ok := m.tables[*name]
	if !ok {
		return nil, errors.New("unknown table " + *name)
	}
	return t, nil
}

func (m *tablesMock) PutItem(ctx context.Context, params *dyn.PutItemInput, optFns ...func(*dyn.Options)) (*dyn.PutItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, err := m.table(params.TableName)
	if err != nil {
		return nil, err
	}
	k := pk(params.TableName, params.Item)
	if params.ConditionExpression != nil {
		if _, exists := t[k]; exists {
			return nil, &types.ConditionalCheckFailedException{}
		}
	}
	t[k] = params.Item
	return &dyn.PutItemOutput{}, nil
}

func (m *tablesMock) GetItem(ctx context.Context, params *dyn.GetItemInput, optFns ...func(*dyn.Options)) (*dyn.GetItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, err := m.table(params.TableName)
	if err != nil {
		return nil, err
	}
	return &dyn.GetItemOutput{Item: t[pk(params.TableName, params.Key)]}, nil
}

func (m *tablesMock) UpdateItem(ctx context.Context, params *dyn.UpdateItemInput, optFns ...func(*dyn.Options)) (*dyn.UpdateItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if *params.UpdateExpression != "SET is_active = :a" {
		return nil, errors.New("unexpected update: " + *params.UpdateExpression)
	}
	t, err := m.table(params.TableName)
	if err != nil {
		return nil, err
	}
	item, ok := t[pk(params.TableName, params.Key)]
	if !ok {
		return nil, &types.ConditionalCheckFailedException{}
	}
	item["is_active"] = params.ExpressionAttributeValues[":a"]
	return &dyn.UpdateItemOutput{}, nil
}

func (m *tablesMock) DeleteItem(ctx context.Context, params *dyn.DeleteItemInput, optFns ...func(*dyn.Options)) (*dyn.DeleteItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, err := m.table(params.TableName)
	if err != nil {
		return nil, err
	}
	delete(t, pk(params.TableName, params.Key))
	return &dyn.DeleteItemOutput{}, nil
}

func (m *tablesMock) Scan(ctx context.Context, params *dyn.ScanInput, optFns ...func(*dyn.Options)) (*dyn.ScanOutput, error) {
	return nil, errors.New("not used")
}

func (m *tablesMock) TransactWriteItems(ctx context.Context, params *dyn.TransactWriteItemsInput, optFns ...func(*dyn.Options)) (*dyn.TransactWriteItemsOutput, error) {
	return nil, errors.New("not used")
}

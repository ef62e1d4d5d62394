package catalog

import (
	"context"
	"errors"
	"sort"
	"sync"

	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// productsMock is an in-memory products table. It understands only the condition
// expressions the Store sends.
type productsMock struct {
	mu    sync.Mutex
	table map[string]map[string]types.AttributeValue

	// pageSize > 0 splits Scan results into pages.
	pageSize int

	lastUpdate *dyn.UpdateItemInput
	lastScan   []*dyn.ScanInput
}

func newProductsMock() *productsMock {
	return &productsMock{table: map[string]map[string]types.AttributeValue{}}
}

func keyOf(m map[string]types.AttributeValue) (string, error) {
	attr, ok := m["product_id"].(*types.AttributeValueMemberS)
	if !ok {
		return "", errors.New("missing product_id")
	}
	return attr.Value, nil
}

func numberValue(av types.AttributeValue) string {
	if n, ok := av.(*types.AttributeValueMemberN); ok {
		return n.Value
	}
	return ""
}

func (m *productsMock) PutItem(ctx context.Context, params *dyn.PutItemInput, optFns ...func(*dyn.Options)) (*dyn.PutItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k, err := keyOf(params.Item)
	if err != nil {
		return nil, err
	}
	existing, exists := m.table[k]
	cond := ""
	if params.ConditionExpression != nil {
		cond = *params.ConditionExpression
	}
	switch cond {
	case "attribute_not_exists(product_id)":
		if exists {
			return nil, &types.ConditionalCheckFailedException{}
		}
	case "attribute_exists(product_id) AND #v = :expected":
		if !exists || numberValue(existing["version"]) != numberValue(params.ExpressionAttributeValues[":expected"]) {
			return nil, &types.ConditionalCheckFailedException{}
		}
	case "":
	default:
		return nil, errors.New("unexpected condition: " + cond)
	}
	m.table[k] = params.Item
	return &dyn.PutItemOutput{}, nil
}

func (m *productsMock) GetItem(ctx context.Context, params *dyn.GetItemInput, optFns ...func(*dyn.Options)) (*dyn.GetItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k, err := keyOf(params.Key)
	if err != nil {
		return nil, err
	}
	item, ok := m.table[k]
	if !ok {
		return &dyn.GetItemOutput{}, nil
	}
	return &dyn.GetItemOutput{Item: item}, nil
}

func (m *productsMock) UpdateItem(ctx context.Context, params *dyn.UpdateItemInput, optFns ...func(*dyn.Options)) (*dyn.UpdateItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastUpdate = params
	k, err := keyOf(params.Key)
	if err != nil {
		return nil, err
	}
	item, exists := m.table[k]
	if !exists {
		return nil, &types.ConditionalCheckFailedException{}
	}
	vals := params.ExpressionAttributeValues
	switch *params.ConditionExpression {
	case "attribute_exists(product_id) AND #st = :expected":
		if numberValue(item["stock"]) != numberValue(vals[":expected"]) {
			return nil, &types.ConditionalCheckFailedException{}
		}
		item["stock"] = vals[":next"]
		var mvs []types.AttributeValue
		if l, ok := item["movements"].(*types.AttributeValueMemberL); ok {
			mvs = append(mvs, l.Value...)
		}
		if l, ok := vals[":mv"].(*types.AttributeValueMemberL); ok {
			mvs = append(mvs, l.Value...)
		}
		item["movements"] = &types.AttributeValueMemberL{Value: mvs}
	case "attribute_exists(product_id)":
		item["is_featured"] = vals[":f"]
		if fa, ok := vals[":fa"]; ok {
			item["featured_at"] = fa
		} else {
			delete(item, "featured_at")
		}
	default:
		return nil, errors.New("unexpected condition: " + *params.ConditionExpression)
	}
	item["updated_at"] = vals[":ua"]
	return &dyn.UpdateItemOutput{}, nil
}

func (m *productsMock) DeleteItem(ctx context.Context, params *dyn.DeleteItemInput, optFns ...func(*dyn.Options)) (*dyn.DeleteItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k, err := keyOf(params.Key)
	if err != nil {
		return nil, err
	}
	item, ok := m.table[k]
	if !ok {
		return nil, &types.ConditionalCheckFailedException{}
	}
	delete(m.table, k)
	if params.ReturnValues == types.ReturnValueAllOld {
		return &dyn.DeleteItemOutput{Attributes: item}, nil
	}
	return &dyn.DeleteItemOutput{}, nil
}

func (m *productsMock) Scan(ctx context.Context, params *dyn.ScanInput, optFns ...func(*dyn.Options)) (*dyn.ScanOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastScan = append(m.lastScan, params)

	keys := make([]string, 0, len(m.table))
	for k := range m.table {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var items []map[string]types.AttributeValue
	for _, k := range keys {
		item := m.table[k]
		if params.FilterExpression != nil {
			if *params.FilterExpression != "is_featured = :t" {
				return nil, errors.New("unexpected filter: " + *params.FilterExpression)
			}
			b, ok := item["is_featured"].(*types.AttributeValueMemberBOOL)
			if !ok || !b.Value {
				continue
			}
		}
		items = append(items, item)
	}

	start := 0
	if params.ExclusiveStartKey != nil {
		start = len(params.ExclusiveStartKey["offset"].(*types.AttributeValueMemberS).Value)
	}
	end := len(items)
	var lastKey map[string]types.AttributeValue
	if m.pageSize > 0 && start+m.pageSize < len(items) {
		end = start + m.pageSize
		// the offset is encoded as a string of that length
		lastKey = map[string]types.AttributeValue{
			"offset": &types.AttributeValueMemberS{Value: string(make([]byte, end))},
		}
	}
	page := items[start:end]

	out := &dyn.ScanOutput{Count: int32(len(page)), LastEvaluatedKey: lastKey}
	if params.Select != types.SelectCount {
		out.Items = page
	}
	return out, nil
}

func (m *productsMock) TransactWriteItems(ctx context.Context, params *dyn.TransactWriteItemsInput, optFns ...func(*dyn.Options)) (*dyn.TransactWriteItemsOutput, error) {
	return nil, errors.New("not used by the products store")
}

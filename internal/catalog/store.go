package catalog

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/imrishuroy/go-shop-admin/internal/aws"
)

// Store encapsulates operations on the products table.
type Store struct {
	client    aws.DynamoDBAPI
	tableName string
	nowFunc   func() time.Time
}

// NewStore creates a new products Store.
func NewStore(client aws.DynamoDBAPI, tableName string) *Store {
	return &Store{
		client:    client,
		tableName: tableName,
		nowFunc:   time.Now,
	}
}

func productKey(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"product_id": &types.AttributeValueMemberS{Value: id},
	}
}

func numberAttr(n int64) *types.AttributeValueMemberN {
	return &types.AttributeValueMemberN{Value: strconv.FormatInt(n, 10)}
}

// Create puts a new product. It fails if the id is already taken.
func (s *Store) Create(ctx context.Context, p Product) error {
	item, err := attributevalue.MarshalMap(p)
	if err != nil {
		return fmt.Errorf("marshal product: %w", err)
	}
	_, err = s.client.PutItem(ctx, &dyn.PutItemInput{
		TableName:           &s.tableName,
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(product_id)"),
	})
	if err != nil {
		if aws.IsConditionalCheckFailed(err) {
			return fmt.Errorf("product %s already exists: %w", p.ID, ErrVersionConflict)
		}
		return fmt.Errorf("put item: %w", err)
	}
	return nil
}

// Get fetches a product by product_id. Returns (nil, nil) if not found.
func (s *Store) Get(ctx context.Context, id string) (*Product, error) {
	out, err := s.client.GetItem(ctx, &dyn.GetItemInput{
		TableName:      &s.tableName,
		Key:            productKey(id),
		ConsistentRead: sdkBool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	var p Product
	if err := attributevalue.UnmarshalMap(out.Item, &p); err != nil {
		return nil, fmt.Errorf("unmarshal product: %w", err)
	}
	normalize(&p)
	return &p, nil
}

// List scans the whole table. The catalog is small enough for a paginated Scan.
func (s *Store) List(ctx context.Context) ([]Product, error) {
	products := make([]Product, 0)
	var startKey map[string]types.AttributeValue
	for {
		out, err := s.client.Scan(ctx, &dyn.ScanInput{
			TableName:         &s.tableName,
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("scan products: %w", err)
		}
		var page []Product
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, fmt.Errorf("unmarshal products: %w", err)
		}
		for i := range page {
			normalize(&page[i])
		}
		products = append(products, page...)
		if len(out.LastEvaluatedKey) == 0 {
			return products, nil
		}
		startKey = out.LastEvaluatedKey
	}
}

// Save replaces the stored product if its version still equals expectedVersion.
// Returns ErrVersionConflict if the condition failed.
func (s *Store) Save(ctx context.Context, p Product, expectedVersion int64) (Product, error) {
	p.Version = expectedVersion + 1
	p.UpdatedAt = s.nowFunc().UTC()

	item, err := attributevalue.MarshalMap(p)
	if err != nil {
		return Product{}, fmt.Errorf("marshal product: %w", err)
	}
	_, err = s.client.PutItem(ctx, &dyn.PutItemInput{
		TableName:                &s.tableName,
		Item:                     item,
		ConditionExpression:      aws.String("attribute_exists(product_id) AND #v = :expected"),
		ExpressionAttributeNames: map[string]string{"#v": "version"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":expected": numberAttr(expectedVersion),
		},
	})
	if err != nil {
		if aws.IsConditionalCheckFailed(err) {
			return Product{}, ErrVersionConflict
		}
		return Product{}, fmt.Errorf("put item: %w", err)
	}
	return p, nil
}

// Delete removes the product and returns the deleted row.
func (s *Store) Delete(ctx context.Context, id string) (*Product, error) {
	out, err := s.client.DeleteItem(ctx, &dyn.DeleteItemInput{
		TableName:           &s.tableName,
		Key:                 productKey(id),
		ConditionExpression: aws.String("attribute_exists(product_id)"),
		ReturnValues:        types.ReturnValueAllOld,
	})
	if err != nil {
		if aws.IsConditionalCheckFailed(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("delete item: %w", err)
	}
	var p Product
	if err := attributevalue.UnmarshalMap(out.Attributes, &p); err != nil {
		return nil, fmt.Errorf("unmarshal product: %w", err)
	}
	normalize(&p)
	return &p, nil
}

// SetStock conditionally updates the stock from expected -> next and appends mv to
// the product's movements in the same write.
// Returns ErrStockMismatch if the stored stock is no longer expected.
func (s *Store) SetStock(ctx context.Context, id string, expected, next int, mv Movement) error {
	now := s.nowFunc().UTC()
	mvAttr, err := attributevalue.Marshal(mv)
	if err != nil {
		return fmt.Errorf("marshal movement: %w", err)
	}
	_, err = s.client.UpdateItem(ctx, &dyn.UpdateItemInput{
		TableName:           &s.tableName,
		Key:                 productKey(id),
		UpdateExpression:    aws.String("SET #st = :next, #v = if_not_exists(#v, :zero) + :one, updated_at = :ua, #mv = list_append(if_not_exists(#mv, :empty), :mv)"),
		ConditionExpression: aws.String("attribute_exists(product_id) AND #st = :expected"),
		ExpressionAttributeNames: map[string]string{
			"#st": "stock",
			"#v":  "version",
			"#mv": "movements",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":next":     numberAttr(int64(next)),
			":expected": numberAttr(int64(expected)),
			":zero":     numberAttr(0),
			":one":      numberAttr(1),
			":ua":       &types.AttributeValueMemberS{Value: now.Format(time.RFC3339Nano)},
			":empty":    &types.AttributeValueMemberL{Value: []types.AttributeValue{}},
			":mv":       &types.AttributeValueMemberL{Value: []types.AttributeValue{mvAttr}},
		},
	})
	if err != nil {
		if aws.IsConditionalCheckFailed(err) {
			return ErrStockMismatch
		}
		return fmt.Errorf("update stock: %w", err)
	}
	return nil
}

// SetFeatured sets or clears the featured flag. featured_at is removed when clearing.
func (s *Store) SetFeatured(ctx context.Context, id string, featured bool, at time.Time) error {
	values := map[string]types.AttributeValue{
		":f":    &types.AttributeValueMemberBOOL{Value: featured},
		":zero": numberAttr(0),
		":one":  numberAttr(1),
		":ua":   &types.AttributeValueMemberS{Value: at.UTC().Format(time.RFC3339Nano)},
	}
	expr := "SET is_featured = :f, #v = if_not_exists(#v, :zero) + :one, updated_at = :ua"
	if featured {
		expr = "SET is_featured = :f, featured_at = :fa, #v = if_not_exists(#v, :zero) + :one, updated_at = :ua"
		values[":fa"] = &types.AttributeValueMemberS{Value: at.UTC().Format(time.RFC3339Nano)}
	} else {
		expr += " REMOVE featured_at"
	}

	_, err := s.client.UpdateItem(ctx, &dyn.UpdateItemInput{
		TableName:                 &s.tableName,
		Key:                       productKey(id),
		UpdateExpression:          &expr,
		ConditionExpression:       aws.String("attribute_exists(product_id)"),
		ExpressionAttributeNames:  map[string]string{"#v": "version"},
		ExpressionAttributeValues: values,
	})
	if err != nil {
		if aws.IsConditionalCheckFailed(err) {
			return ErrNotFound
		}
		return fmt.Errorf("update featured: %w", err)
	}
	return nil
}

// CountFeatured returns the number of products with is_featured = true.
func (s *Store) CountFeatured(ctx context.Context) (int, error) {
	total := 0
	var startKey map[string]types.AttributeValue
	for {
		out, err := s.client.Scan(ctx, &dyn.ScanInput{
			TableName:        &s.tableName,
			Select:           types.SelectCount,
			FilterExpression: aws.String("is_featured = :t"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":t": &types.AttributeValueMemberBOOL{Value: true},
			},
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return 0, fmt.Errorf("count featured: %w", err)
		}
		total += int(out.Count)
		if len(out.LastEvaluatedKey) == 0 {
			return total, nil
		}
		startKey = out.LastEvaluatedKey
	}
}

func normalize(p *Product) {
	if p.Images == nil {
		p.Images = []ProductImage{}
	}
}

func sdkBool(b bool) *bool { return &b }

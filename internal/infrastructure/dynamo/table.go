package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-otp-verify/internal/domain"
)

type key = map[string]types.AttributeValue

// table holds the item round-trips every repo shares. kind names the item in errors.
type table[T any] struct {
	client *dynamodb.Client
	name   string
	kind   string
}

func newTable[T any](client *dynamodb.Client, name, kind string) table[T] {
	return table[T]{client: client, name: name, kind: kind}
}

func (t table[T]) put(ctx context.Context, item *T) error {
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", t.kind, err)
	}
	_, err = t.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(t.name),
		Item:      av,
	})
	return err
}

// get reads one item. consistent is used where a stale read could let a spent code through.
func (t table[T]) get(ctx context.Context, k key, consistent bool) (*T, error) {
	out, err := t.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(t.name),
		Key:            k,
		ConsistentRead: aws.Bool(consistent),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, t.notFound()
	}
	return t.decode(out.Item)
}

// set applies a SET update and returns the item as stored afterwards.
func (t table[T]) set(ctx context.Context, k key, updates map[string]any) (*T, error) {
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return nil, err
	}
	out, err := t.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(t.name),
		Key:                       k,
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		return nil, err
	}
	return t.decode(out.Attributes)
}

func (t table[T]) delete(ctx context.Context, k key) error {
	_, err := t.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(t.name),
		Key:       k,
	})
	return err
}

// query runs in against the table and decodes every item returned.
func (t table[T]) query(ctx context.Context, in *dynamodb.QueryInput) ([]T, error) {
	in.TableName = aws.String(t.name)
	out, err := t.client.Query(ctx, in)
	if err != nil {
		return nil, err
	}
	items := []T{}
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &items); err != nil {
		return nil, fmt.Errorf("unmarshal %s list: %w", t.kind, err)
	}
	return items, nil
}

func (t table[T]) decode(item key) (*T, error) {
	var v T
	if err := attributevalue.UnmarshalMap(item, &v); err != nil {
		return nil, fmt.Errorf("unmarshal %s: %w", t.kind, err)
	}
	return &v, nil
}

func (t table[T]) notFound() error {
	return fmt.Errorf("%s not found: %w", t.kind, domain.ErrNotFound)
}

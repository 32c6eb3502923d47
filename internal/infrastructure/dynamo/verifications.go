package dynamo

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-otp-verify/internal/domain"
)

// VerificationRepo holds at most one outstanding code per user and purpose.
// PK: user_id, SK: type ("email" | "phone" | "login"). expires_at is the table TTL,
// which only sweeps; callers still compare it against the clock.
type VerificationRepo struct {
	t table[domain.UserVerification]
}

func NewVerificationRepo(client *dynamodb.Client, tableName string) *VerificationRepo {
	return &VerificationRepo{t: newTable[domain.UserVerification](client, tableName, "verification")}
}

func verificationKey(userID, verType string) key {
	return compositeKey("user_id", userID, "type", verType)
}

// Put stores v, replacing any earlier code of the same type.
func (r *VerificationRepo) Put(ctx context.Context, v *domain.UserVerification) error {
	return r.t.put(ctx, v)
}

func (r *VerificationRepo) Get(ctx context.Context, userID, verType string) (*domain.UserVerification, error) {
	return r.t.get(ctx, verificationKey(userID, verType), true)
}

// IncrementAttempts bumps the wrong-code counter atomically and returns the new value.
// A code deleted in the meantime reports ErrNotFound.
func (r *VerificationRepo) IncrementAttempts(ctx context.Context, userID, verType string) (int, error) {
	out, err := r.t.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.t.name),
		Key:                       verificationKey(userID, verType),
		UpdateExpression:          aws.String("ADD #a :one"),
		ConditionExpression:       aws.String("attribute_exists(user_id)"),
		ExpressionAttributeNames:  map[string]string{"#a": fieldAttempts},
		ExpressionAttributeValues: key{":one": &types.AttributeValueMemberN{Value: "1"}},
		ReturnValues:              types.ReturnValueUpdatedNew,
	})
	if err != nil {
		if isConditionFailed(err) {
			return 0, r.t.notFound()
		}
		return 0, err
	}
	var updated struct {
		Attempts int `dynamodbav:"attempts"`
	}
	if err := attributevalue.UnmarshalMap(out.Attributes, &updated); err != nil {
		return 0, err
	}
	return updated.Attempts, nil
}

// Consume deletes the record only while it still holds codeHash. A record already
// consumed, or replaced by a newer code, reports ErrNotFound.
func (r *VerificationRepo) Consume(ctx context.Context, userID, verType, codeHash string) error {
	_, err := r.t.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:                 aws.String(r.t.name),
		Key:                       verificationKey(userID, verType),
		ConditionExpression:       aws.String("#h = :h"),
		ExpressionAttributeNames:  map[string]string{"#h": fieldCodeHash},
		ExpressionAttributeValues: key{":h": &types.AttributeValueMemberS{Value: codeHash}},
	})
	if isConditionFailed(err) {
		return r.t.notFound()
	}
	return err
}

func (r *VerificationRepo) Delete(ctx context.Context, userID, verType string) error {
	return r.t.delete(ctx, verificationKey(userID, verType))
}

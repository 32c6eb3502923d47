package dynamo

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-otp-verify/internal/domain"
)

// UserRepo stores accounts keyed by user_id, with email-index and a sparse phone-index.
type UserRepo struct {
	t table[domain.User]
}

func NewUserRepo(client *dynamodb.Client, tableName string) *UserRepo {
	return &UserRepo{t: newTable[domain.User](client, tableName, "user")}
}

func (r *UserRepo) Put(ctx context.Context, u *domain.User) error { return r.t.put(ctx, u) }

func (r *UserRepo) Get(ctx context.Context, userID string) (*domain.User, error) {
	return r.t.get(ctx, strKey("user_id", userID), false)
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.byIndex(ctx, indexEmail, "email", email)
}

func (r *UserRepo) GetByPhone(ctx context.Context, phone string) (*domain.User, error) {
	return r.byIndex(ctx, indexPhone, "phone", phone)
}

// MarkChannelConfirmed flips the confirmation flag for the verified channel.
func (r *UserRepo) MarkChannelConfirmed(ctx context.Context, userID string, ch domain.Channel) error {
	field := fieldEmailConfirmed
	if ch == domain.ChannelPhone {
		field = fieldPhoneConfirmed
	}
	_, err := r.t.set(ctx, strKey("user_id", userID), map[string]any{
		field:          true,
		fieldUpdatedAt: time.Now().UTC(),
	})
	return err
}

func (r *UserRepo) byIndex(ctx context.Context, index, attr, value string) (*domain.User, error) {
	users, err := r.t.query(ctx, &dynamodb.QueryInput{
		IndexName:                 aws.String(index),
		KeyConditionExpression:    aws.String("#a = :v"),
		ExpressionAttributeNames:  map[string]string{"#a": attr},
		ExpressionAttributeValues: key{":v": &types.AttributeValueMemberS{Value: value}},
		Limit:                     aws.Int32(1),
	})
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, r.t.notFound()
	}
	return &users[0], nil
}

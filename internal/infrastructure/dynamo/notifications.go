package dynamo

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-otp-verify/internal/domain"
)

type NotificationRepo struct {
	t table[domain.Notification]
}

func NewNotificationRepo(client *dynamodb.Client, tableName string) *NotificationRepo {
	return &NotificationRepo{t: newTable[domain.Notification](client, tableName, "notification")}
}

func (r *NotificationRepo) Put(ctx context.Context, n *domain.Notification) error {
	return r.t.put(ctx, n)
}

func (r *NotificationRepo) Get(ctx context.Context, notificationID string) (*domain.Notification, error) {
	return r.t.get(ctx, strKey("notification_id", notificationID), false)
}

// ListUnread returns the user's unread notifications, newest first.
func (r *NotificationRepo) ListUnread(ctx context.Context, userID string) ([]domain.Notification, error) {
	return r.t.query(ctx, &dynamodb.QueryInput{
		IndexName:                aws.String(indexUserCreated),
		KeyConditionExpression:   aws.String("user_id = :uid"),
		FilterExpression:         aws.String("#r = :zero"),
		ExpressionAttributeNames: map[string]string{"#r": fieldRead},
		ExpressionAttributeValues: key{
			":uid":  &types.AttributeValueMemberS{Value: userID},
			":zero": &types.AttributeValueMemberN{Value: "0"},
		},
		ScanIndexForward: aws.Bool(false),
	})
}

// MarkAsRead sets read=1 and returns the updated notification.
func (r *NotificationRepo) MarkAsRead(ctx context.Context, notificationID string) (*domain.Notification, error) {
	return r.t.set(ctx, strKey("notification_id", notificationID), map[string]any{
		fieldRead:      1,
		fieldUpdatedAt: time.Now().UTC(),
	})
}

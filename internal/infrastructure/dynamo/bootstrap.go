package dynamo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-otp-verify/internal/config"
)

// tableSpec describes one table: string hash (and optional range) key, GSIs, and TTL.
type tableSpec struct {
	name     string
	hash     string
	rng      string
	indexes  []indexSpec
	ttlField string
}

type indexSpec struct {
	name, hash, rng string
}

func tableSpecs(tables config.DynamoTables) []tableSpec {
	return []tableSpec{
		{
			name: tables.Users,
			hash: "user_id",
			indexes: []indexSpec{
				{name: indexEmail, hash: "email"},
				{name: indexPhone, hash: "phone"},
			},
		},
		{
			name:     tables.Sessions,
			hash:     "session_id",
			indexes:  []indexSpec{{name: indexUserID, hash: "user_id"}},
			ttlField: fieldExpiresAt,
		},
		{
			name:    tables.Notifications,
			hash:    "notification_id",
			indexes: []indexSpec{{name: indexUserCreated, hash: "user_id", rng: "created_at"}},
		},
		{
			name:     tables.UserVerifications,
			hash:     "user_id",
			rng:      "type",
			ttlField: fieldExpiresAt,
		},
	}
}

// Bootstrap creates any missing table, waits for it to become active and turns on TTL
// sweeping where the table has one. Existing tables are left alone, so it runs on every start.
func Bootstrap(ctx context.Context, client *dynamodb.Client, tables config.DynamoTables) {
	for _, spec := range tableSpecs(tables) {
		if err := ensureTable(ctx, client, spec); err != nil {
			slog.Warn("could not prepare table", "table", spec.name, "err", err)
		}
	}
}

func ensureTable(ctx context.Context, client *dynamodb.Client, spec tableSpec) error {
	_, err := client.CreateTable(ctx, spec.createInput())
	var inUse *types.ResourceInUseException
	switch {
	case errors.As(err, &inUse):
		return nil
	case err != nil:
		return fmt.Errorf("create: %w", err)
	}
	slog.Info("created table", "table", spec.name)

	waiter := dynamodb.NewTableExistsWaiter(client)
	if err := waiter.Wait(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(spec.name)}, time.Minute); err != nil {
		return fmt.Errorf("wait active: %w", err)
	}
	if spec.ttlField == "" {
		return nil
	}
	_, err = client.UpdateTimeToLive(ctx, &dynamodb.UpdateTimeToLiveInput{
		TableName: aws.String(spec.name),
		TimeToLiveSpecification: &types.TimeToLiveSpecification{
			Enabled:       aws.Bool(true),
			AttributeName: aws.String(spec.ttlField),
		},
	})
	if err != nil {
		return fmt.Errorf("enable ttl: %w", err)
	}
	return nil
}

func (s tableSpec) createInput() *dynamodb.CreateTableInput {
	attrs := map[string]struct{}{}
	var defs []types.AttributeDefinition
	define := func(name string) {
		if name == "" {
			return
		}
		if _, ok := attrs[name]; ok {
			return
		}
		attrs[name] = struct{}{}
		defs = append(defs, types.AttributeDefinition{
			AttributeName: aws.String(name),
			AttributeType: types.ScalarAttributeTypeS,
		})
	}

	define(s.hash)
	define(s.rng)
	in := &dynamodb.CreateTableInput{
		TableName:   aws.String(s.name),
		BillingMode: types.BillingModePayPerRequest,
		KeySchema:   keySchema(s.hash, s.rng),
	}
	for _, idx := range s.indexes {
		define(idx.hash)
		define(idx.rng)
		in.GlobalSecondaryIndexes = append(in.GlobalSecondaryIndexes, types.GlobalSecondaryIndex{
			IndexName:  aws.String(idx.name),
			KeySchema:  keySchema(idx.hash, idx.rng),
			Projection: &types.Projection{ProjectionType: types.ProjectionTypeAll},
		})
	}
	in.AttributeDefinitions = defs
	return in
}

func keySchema(hash, rng string) []types.KeySchemaElement {
	ks := []types.KeySchemaElement{{AttributeName: aws.String(hash), KeyType: types.KeyTypeHash}}
	if rng != "" {
		ks = append(ks, types.KeySchemaElement{AttributeName: aws.String(rng), KeyType: types.KeyTypeRange})
	}
	return ks
}

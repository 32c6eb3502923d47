package dynamo

import (
	"errors"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-otp-verify/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildUpdateExpr_SingleField(t *testing.T) {
	ue, err := buildUpdateExpr(map[string]any{"email_confirmed": true})
	require.NoError(t, err)
	assert.Equal(t, "SET #f0 = :v0", ue.Expr)
	assert.Equal(t, map[string]string{"#f0": "email_confirmed"}, ue.Names)
	_, ok := ue.Values[":v0"]
	assert.True(t, ok)
}

func TestBuildUpdateExpr_MultipleFields_Deterministic(t *testing.T) {
	updates := map[string]any{
		"phone_confirmed": true,
		"attempts":        2,
		"updated_at":      "2026-01-01T00:00:00Z",
	}
	ue1, err := buildUpdateExpr(updates)
	require.NoError(t, err)
	ue2, err := buildUpdateExpr(updates)
	require.NoError(t, err)

	assert.Equal(t, ue1.Expr, ue2.Expr)
	assert.Equal(t, "attempts", ue1.Names["#f0"])
	assert.Equal(t, "phone_confirmed", ue1.Names["#f1"])
	assert.Equal(t, "updated_at", ue1.Names["#f2"])
	assert.Equal(t, "SET #f0 = :v0, #f1 = :v1, #f2 = :v2", ue1.Expr)
}

func TestBuildUpdateExpr_ValuesMarshalledCorrectly(t *testing.T) {
	ue, err := buildUpdateExpr(map[string]any{"enable": true})
	require.NoError(t, err)
	av, ok := ue.Values[":v0"]
	require.True(t, ok)
	boolVal, isBool := av.(*types.AttributeValueMemberBOOL)
	require.True(t, isBool)
	assert.True(t, boolVal.Value)
}

func TestBuildUpdateExpr_EmptyMap_ReturnsError(t *testing.T) {
	_, err := buildUpdateExpr(map[string]any{})
	assert.ErrorContains(t, err, "no fields to update")
}

func TestCompositeKey(t *testing.T) {
	k := compositeKey("user_id", "u1", "type", "login")
	require.Len(t, k, 2)
	assert.Equal(t, "u1", k["user_id"].(*types.AttributeValueMemberS).Value)
	assert.Equal(t, "login", k["type"].(*types.AttributeValueMemberS).Value)
}

func TestTableSpecs_CreateInput(t *testing.T) {
	specs := tableSpecs(config.DynamoTables{
		Users: "users", Sessions: "sessions", Notifications: "notifications", UserVerifications: "codes",
	})
	require.Len(t, specs, 4)

	users := specs[0].createInput()
	assert.Equal(t, "users", *users.TableName)
	assert.Len(t, users.AttributeDefinitions, 3)
	assert.Len(t, users.GlobalSecondaryIndexes, 2)

	codes := specs[3].createInput()
	require.Len(t, codes.KeySchema, 2)
	assert.Equal(t, "type", *codes.KeySchema[1].AttributeName)
	assert.Equal(t, types.KeyTypeRange, codes.KeySchema[1].KeyType)
	assert.Equal(t, fieldExpiresAt, specs[3].ttlField)

	notes := specs[2].createInput()
	// user_id and created_at only appear through the index but must still be defined.
	assert.Len(t, notes.AttributeDefinitions, 3)
}

func TestIsConditionFailed(t *testing.T) {
	assert.True(t, isConditionFailed(fmt.Errorf("update: %w", &types.ConditionalCheckFailedException{})))
	assert.False(t, isConditionFailed(errors.New("boom")))
}

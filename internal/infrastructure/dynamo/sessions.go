package dynamo

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/go-otp-verify/internal/domain"
)

// SessionRepo stores signed-in sessions; expires_at doubles as the table TTL.
type SessionRepo struct {
	t table[domain.Session]
}

func NewSessionRepo(client *dynamodb.Client, tableName string) *SessionRepo {
	return &SessionRepo{t: newTable[domain.Session](client, tableName, "session")}
}

func (r *SessionRepo) Put(ctx context.Context, s *domain.Session) error { return r.t.put(ctx, s) }

func (r *SessionRepo) Get(ctx context.Context, sessionID string) (*domain.Session, error) {
	return r.t.get(ctx, strKey("session_id", sessionID), true)
}

// Disable marks a session as signed out.
func (r *SessionRepo) Disable(ctx context.Context, sessionID string) error {
	_, err := r.t.set(ctx, strKey("session_id", sessionID), map[string]any{
		fieldEnable:    false,
		fieldUpdatedAt: time.Now().UTC(),
	})
	return err
}

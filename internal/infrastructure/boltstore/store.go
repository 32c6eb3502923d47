package boltstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-otp-verify/internal/application/verification"
	"github.com/go-otp-verify/internal/domain"
	bolt "go.etcd.io/bbolt"
)

const (
	verificationBucket = "verification"
	authBucket         = "auth"

	sessionKey = "session"
	tokenKey   = "token"
	userKey    = "user"
)

// Store keeps the client's pending verification and issued credentials in one bbolt file.
type Store struct {
	db *bolt.DB
}

var _ verification.Store = (*Store)(nil)

// Open opens or creates the database at path. The file is readable by the owner only
// since a pending login keeps the account password.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create store dir: %w", err)
		}
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{verificationBucket, authBucket} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init store buckets: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Save replaces the pending verification.
func (s *Store) Save(session *domain.VerificationSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(verificationBucket)).Put([]byte(sessionKey), data)
	})
}

func (s *Store) Load() (*domain.VerificationSession, error) {
	var session *domain.VerificationSession
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket([]byte(verificationBucket)).Get([]byte(sessionKey))
		if data == nil {
			return verification.ErrNoSession
		}
		session = &domain.VerificationSession{}
		return json.Unmarshal(data, session)
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

func (s *Store) Clear() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(verificationBucket)).Delete([]byte(sessionKey))
	})
}

func (s *Store) SaveAuth(token string, user *domain.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(authBucket))
		if err := b.Put([]byte(tokenKey), []byte(token)); err != nil {
			return err
		}
		return b.Put([]byte(userKey), data)
	})
}

// LoadAuth returns the token and user saved by the last completed login.
func (s *Store) LoadAuth() (string, *domain.User, error) {
	var (
		token string
		user  domain.User
	)
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(authBucket))
		t := b.Get([]byte(tokenKey))
		if t == nil {
			return fmt.Errorf("not signed in: %w", domain.ErrNotFound)
		}
		token = string(t)
		return json.Unmarshal(b.Get([]byte(userKey)), &user)
	})
	if err != nil {
		return "", nil, err
	}
	return token, &user, nil
}

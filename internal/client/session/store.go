package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/AnthoniusHendriyanto/dashboard-auth/internal/client"
	"go.etcd.io/bbolt"
)

const stateBucket = "state"

var (
	keyToken      = []byte("token")
	keyUser       = []byte("user")
	keyResetEmail = []byte("resetEmail")
)

// Store keeps the client's local state in a BoltDB file. Missing keys read
// back as zero values.
type Store struct {
	db *bbolt.DB
}

func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("state path is required")
	}

	cleanPath := filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(cleanPath), 0o700); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}

	db, err := bbolt.Open(cleanPath, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open state db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(stateBucket))
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create state bucket: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Token() (string, error) {
	raw, err := s.get(keyToken)
	return string(raw), err
}

func (s *Store) SetToken(token string) error {
	return s.put(keyToken, []byte(token))
}

// User returns nil when no identity is cached.
func (s *Store) User() (*client.User, error) {
	raw, err := s.get(keyUser)
	if err != nil || raw == nil {
		return nil, err
	}
	var user client.User
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, fmt.Errorf("decode cached user: %w", err)
	}
	return &user, nil
}

func (s *Store) SetUser(user client.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	return s.put(keyUser, raw)
}

func (s *Store) ResetEmail() (string, error) {
	raw, err := s.get(keyResetEmail)
	return string(raw), err
}

func (s *Store) SetResetEmail(email string) error {
	return s.put(keyResetEmail, []byte(email))
}

func (s *Store) ClearResetEmail() error {
	return s.delete(keyResetEmail)
}

// ClearSession drops the token and cached identity together.
func (s *Store) ClearSession() error {
	return s.delete(keyToken, keyUser)
}

func (s *Store) get(key []byte) ([]byte, error) {
	var out []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(stateBucket))
		if bucket == nil {
			return fmt.Errorf("state bucket is missing")
		}
		if v := bucket.Get(key); v != nil {
			out = append([]byte(nil), v...)
		}
		return nil
	})
	return out, err
}

func (s *Store) put(key, value []byte) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(stateBucket))
		if bucket == nil {
			return fmt.Errorf("state bucket is missing")
		}
		return bucket.Put(key, value)
	})
}

func (s *Store) delete(keys ...[]byte) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(stateBucket))
		if bucket == nil {
			return fmt.Errorf("state bucket is missing")
		}
		for _, key := range keys {
			if err := bucket.Delete(key); err != nil {
				return err
			}
		}
		return nil
	})
}

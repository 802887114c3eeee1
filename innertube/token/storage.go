package token

import (
	"context"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

var (
	visitorBucketName  = []byte("visitor")
	tokenKeyName       = []byte("token")
	refreshedAtKeyName = []byte("refreshed_at")
)

// Stored is a persisted visitor token and when it was scraped.
type Stored struct {
	Token       string
	RefreshedAt time.Time
}

type Storage struct {
	db *bbolt.DB
}

func NewStorage(path string) (*Storage, error) {
	opts := &bbolt.Options{ //nolint:exhaustruct
		NoFreelistSync: true,
		ReadOnly:       false,
		Timeout:        1 * time.Second,
		NoGrowSync:     false,
		FreelistType:   bbolt.FreelistArrayType,
	}
	db, err := bbolt.Open(path, 0o600, opts)
	if nil != err {
		return nil, fmt.Errorf("failed to open database: %v", err)
	}

	if err := createBuckets(db); nil != err {
		return nil, fmt.Errorf("failed to create buckets: %v", err)
	}

	return &Storage{db: db}, nil
}

func createBuckets(db *bbolt.DB) error {
	err := db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(visitorBucketName); nil != err {
			return fmt.Errorf("failed to create visitor bucket: %v", err)
		}

		return nil
	})
	if nil != err {
		return fmt.Errorf("failed to create buckets: %v", err)
	}

	return nil
}

func (s *Storage) Close() error {
	if err := s.db.Close(); nil != err {
		return fmt.Errorf("failed to close database: %v", err)
	}

	return nil
}

// Load returns nil when no token was persisted yet.
func (s *Storage) Load(_ context.Context) (*Stored, error) {
	var out *Stored
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(visitorBucketName)

		tok := b.Get(tokenKeyName)
		if len(tok) == 0 {
			return nil
		}

		var refreshedAt time.Time
		if raw := b.Get(refreshedAtKeyName); len(raw) > 0 {
			if err := refreshedAt.UnmarshalText(raw); nil != err {
				return fmt.Errorf("failed to decode refresh time: %v", err)
			}
		}

		out = &Stored{Token: string(tok), RefreshedAt: refreshedAt}

		return nil
	})
	if nil != err {
		return nil, fmt.Errorf("failed to load visitor token: %v", err)
	}

	return out, nil
}

func (s *Storage) Store(_ context.Context, v Stored) error {
	refreshedAt, err := v.RefreshedAt.UTC().MarshalText()
	if nil != err {
		return fmt.Errorf("failed to encode refresh time: %v", err)
	}

	err = s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(visitorBucketName)
		if err := b.Put(tokenKeyName, []byte(v.Token)); nil != err {
			return fmt.Errorf("failed to store token: %v", err)
		}

		if err := b.Put(refreshedAtKeyName, refreshedAt); nil != err {
			return fmt.Errorf("failed to store refresh time: %v", err)
		}

		return nil
	})
	if nil != err {
		return fmt.Errorf("failed to store visitor token: %v", err)
	}

	return nil
}

func (s *Storage) Delete(_ context.Context) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(visitorBucketName)
		if err := b.Delete(tokenKeyName); nil != err {
			return fmt.Errorf("failed to delete token: %v", err)
		}

		if err := b.Delete(refreshedAtKeyName); nil != err {
			return fmt.Errorf("failed to delete refresh time: %v", err)
		}

		return nil
	})
	if nil != err {
		return fmt.Errorf("failed to delete visitor token: %v", err)
	}

	return nil
}

// Package store persists datasets under string keys.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/KaramelBytes/chartly-cli/internal/config"
	"github.com/KaramelBytes/chartly-cli/internal/dataset"
)

// Errors
var (
	ErrInvalidKey       = errors.New("store: invalid key")
	ErrNotFound         = errors.New("store: dataset not found")
	ErrConnectionFailed = errors.New("store: connection failed")
	ErrOperationTimeout = errors.New("store: operation timeout")
)

// Store saves and loads datasets.
type Store interface {
	Save(ctx context.Context, key string, ds *dataset.Dataset) error
	Load(ctx context.Context, key string) (*dataset.Dataset, error)
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) ([]string, error)
	Close() error
}

// record is the persisted form of a dataset. Columns are kept separately
// because row objects do not carry key order.
type record struct {
	Name     string        `json:"name,omitempty"`
	Columns  []string      `json:"columns"`
	Rows     []dataset.Row `json:"rows"`
	Warnings []string      `json:"warnings,omitempty"`
	SavedAt  time.Time     `json:"saved_at"`
}

func encode(ds *dataset.Dataset) ([]byte, error) {
	if ds == nil {
		return nil, errors.New("store: nil dataset")
	}
	rows := ds.Rows
	if rows == nil {
		rows = []dataset.Row{}
	}
	b, err := json.Marshal(record{
		Name:     ds.Name,
		Columns:  ds.Columns,
		Rows:     rows,
		Warnings: ds.Warnings,
		SavedAt:  time.Now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("encode dataset: %w", err)
	}
	return b, nil
}

func decode(b []byte) (*dataset.Dataset, error) {
	var rec record
	if err := json.Unmarshal(b, &rec); err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}
	ds := dataset.New(rec.Columns, rec.Rows)
	ds.Name = rec.Name
	ds.Warnings = append(rec.Warnings, ds.Warnings...)
	return ds, nil
}

// ValidateKey rejects keys that are empty or could escape a directory.
func ValidateKey(key string) error {
	switch {
	case strings.TrimSpace(key) == "":
		return fmt.Errorf("%w: empty", ErrInvalidKey)
	case strings.ContainsAny(key, `/\`), key == ".", key == "..":
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}

// Open returns the backend selected by cfg.StoreBackend.
func Open(cfg *config.Global) (Store, error) {
	switch strings.ToLower(cfg.StoreBackend) {
	case "", "file":
		return NewFileStore(cfg.StoreDir), nil
	case "badger":
		s, err := NewBadgerStore(BadgerConfig{Dir: cfg.StoreDir, KeyPrefix: cfg.StoreKeyPrefix})
		if err != nil {
			return nil, err
		}
		return s, nil
	case "redis":
		s, err := NewRedisStore(RedisConfig{
			Address:   cfg.RedisAddr,
			Password:  cfg.RedisPassword,
			DB:        cfg.RedisDB,
			KeyPrefix: cfg.StoreKeyPrefix,
		})
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	return nil, fmt.Errorf("unknown store backend %q (valid: file, badger, redis)", cfg.StoreBackend)
}

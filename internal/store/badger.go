package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/KaramelBytes/chartly-cli/internal/dataset"
)

// BadgerConfig configures the embedded BadgerDB backend.
type BadgerConfig struct {
	// Dir is the directory to store data in.
	Dir string
	// InMemory uses in-memory storage (useful for testing).
	InMemory bool
	// SyncWrites enables synchronous writes for durability.
	SyncWrites bool
	// KeyPrefix is added to all keys.
	KeyPrefix string
}

// BadgerStore is a BadgerDB-backed Store.
type BadgerStore struct {
	db        *badger.DB
	keyPrefix string
}

// NewBadgerStore opens a database with the given configuration.
func NewBadgerStore(cfg BadgerConfig) (*BadgerStore, error) {
	opts := badger.DefaultOptions(cfg.Dir)
	if cfg.InMemory {
		opts = opts.WithInMemory(true).WithDir("").WithValueDir("")
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites).WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Join(ErrConnectionFailed, err)
	}
	return NewBadgerStoreFromDB(db, cfg.KeyPrefix), nil
}

// NewBadgerStoreFromDB wraps an existing database.
func NewBadgerStoreFromDB(db *badger.DB, keyPrefix string) *BadgerStore {
	return &BadgerStore{db: db, keyPrefix: keyPrefix}
}

func (s *BadgerStore) namespace() []byte {
	return []byte(s.keyPrefix + "dataset:")
}

func (s *BadgerStore) prefixKey(key string) []byte {
	return append(s.namespace(), key...)
}

// Save stores the dataset, replacing any previous value.
func (s *BadgerStore) Save(ctx context.Context, key string, ds *dataset.Dataset) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := ValidateKey(key); err != nil {
		return err
	}
	b, err := encode(ds)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(s.prefixKey(key), b)
	})
}

// Load reads a dataset.
func (s *BadgerStore) Load(ctx context.Context, key string) (*dataset.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := ValidateKey(key); err != nil {
		return nil, err
	}
	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(s.prefixKey(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return nil, err
	}
	return decode(value)
}

// Delete removes a dataset.
func (s *BadgerStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := ValidateKey(key); err != nil {
		return err
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		k := s.prefixKey(key)
		if _, err := txn.Get(k); err != nil {
			return err
		}
		return txn.Delete(k)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return err
}

// List returns stored keys in key order.
func (s *BadgerStore) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	prefix := s.namespace()
	keys := []string{}
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, string(it.Item().Key()[len(prefix):]))
		}
		return nil
	})
	return keys, err
}

// Close closes the database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

var _ Store = (*BadgerStore)(nil)

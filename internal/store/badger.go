package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"newsdesk/internal/model"

	"github.com/dgraph-io/badger/v4"
)

var badgerPrefix = []byte("headlines:")

const badgerMemTableSize = 8 << 20

// BadgerStore keeps entries in an in-memory Badger instance. Nothing is
// written to disk. Badger expires entries on its own; the entry bound is
// enforced after each Put by dropping the entries closest to expiry.
type BadgerStore struct {
	db         *badger.DB
	maxEntries int
	writeMu    sync.Mutex
}

func NewBadgerStore(maxEntries int) (*BadgerStore, error) {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	// A few hundred small pages; badger's 64MB memtables are far too big.
	// MemTableSize must stay large enough that 15% of it exceeds the 1MB value threshold.
	opts := badger.DefaultOptions("").
		WithInMemory(true).
		WithMemTableSize(badgerMemTableSize).
		WithNumMemtables(2).
		WithBlockCacheSize(8 << 20)
	opts.Logger = nil // Silence default logger
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger: %w", err)
	}
	return &BadgerStore{db: db, maxEntries: maxEntries}, nil
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}

func (s *BadgerStore) Get(_ context.Context, key string) ([]model.Article, bool, error) {
	var val []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(badgerKey(key))
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	articles, err := decode(val)
	if err != nil {
		return nil, false, err
	}
	return articles, true, nil
}

func (s *BadgerStore) Put(_ context.Context, key string, articles []model.Article, ttl time.Duration) error {
	data, err := encode(articles)
	if err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry(badgerKey(key), data).WithTTL(ttl))
	})
	if err != nil {
		return err
	}
	return s.evict(badgerKey(key))
}

// Len counts live entries.
func (s *BadgerStore) Len() (int, error) {
	n := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = badgerPrefix
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			n++
		}
		return nil
	})
	return n, err
}

type badgerEntry struct {
	key       []byte
	expiresAt uint64
}

// evict trims the store to maxEntries, never dropping keep.
func (s *BadgerStore) evict(keep []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = badgerPrefix
		it := txn.NewIterator(opts)

		var entries []badgerEntry
		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			if string(item.Key()) == string(keep) {
				continue
			}
			entries = append(entries, badgerEntry{key: item.KeyCopy(nil), expiresAt: item.ExpiresAt()})
		}
		it.Close()

		excess := len(entries) + 1 - s.maxEntries
		if excess <= 0 {
			return nil
		}

		sort.Slice(entries, func(i, j int) bool {
			return entries[i].expiresAt < entries[j].expiresAt
		})
		for _, e := range entries[:excess] {
			if err := txn.Delete(e.key); err != nil {
				return err
			}
		}
		return nil
	})
}

func badgerKey(key string) []byte {
	return append(append([]byte{}, badgerPrefix...), key...)
}

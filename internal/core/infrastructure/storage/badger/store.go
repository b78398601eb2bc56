// Package badger implements the key/value store on BadgerDB.
package badger

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	badgerdb "github.com/dgraph-io/badger/v3"

	"github.com/hapi-protocol/hapi-core/pkg/interfaces/infrastructure/log"
	"github.com/hapi-protocol/hapi-core/pkg/interfaces/infrastructure/storage"
)

// Options configures the database
type Options struct {
	Path       string
	InMemory   bool
	SyncWrites bool
}

// Store is a storage.Store backed by a badger database
type Store struct {
	db     *badgerdb.DB
	logger log.Logger

	// writes in flight; Close waits for them before closing the db
	mu      sync.RWMutex
	closing bool
	writeWg sync.WaitGroup
}

var _ storage.Store = (*Store)(nil)

// New opens the database at opts.Path, or in memory
func New(opts Options, logger log.Logger) (*Store, error) {
	var dbOpts badgerdb.Options
	if opts.InMemory {
		dbOpts = badgerdb.DefaultOptions("").WithInMemory(true)
	} else {
		if opts.Path == "" {
			return nil, fmt.Errorf("badger: empty path")
		}
		if err := os.MkdirAll(opts.Path, 0o700); err != nil {
			return nil, fmt.Errorf("badger: create dir: %w", err)
		}
		dbOpts = badgerdb.DefaultOptions(opts.Path)
		dbOpts.SyncWrites = opts.SyncWrites
	}
	// the indexer state is a handful of small values
	dbOpts.ValueLogFileSize = 64 << 20
	dbOpts.MemTableSize = 8 << 20
	dbOpts.BlockCacheSize = 8 << 20
	dbOpts.IndexCacheSize = 8 << 20
	dbOpts.NumCompactors = 2
	dbOpts.Logger = &badgerLogger{logger: logger}

	db, err := badgerdb.Open(dbOpts)
	if err != nil {
		return nil, fmt.Errorf("badger: open %s: %w", opts.Path, err)
	}
	if logger != nil {
		if opts.InMemory {
			logger.Info("badger store in memory")
		} else {
			logger.Infof("badger store at %s", opts.Path)
		}
	}
	return &Store{db: db, logger: logger}, nil
}

func (s *Store) beginWrite() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closing {
		return fmt.Errorf("badger: store is closing")
	}
	s.writeWg.Add(1)
	return nil
}

func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.View(func(txn *badgerdb.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badgerdb.ErrKeyNotFound) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("badger: get %s: %w", key, err)
	}
	return value, nil
}

func (s *Store) Set(_ context.Context, key string, value []byte) error {
	if err := s.beginWrite(); err != nil {
		return err
	}
	defer s.writeWg.Done()
	if err := s.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Set([]byte(key), value)
	}); err != nil {
		return fmt.Errorf("badger: set %s: %w", key, err)
	}
	return nil
}

func (s *Store) Delete(_ context.Context, key string) error {
	if err := s.beginWrite(); err != nil {
		return err
	}
	defer s.writeWg.Done()
	if err := s.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Delete([]byte(key))
	}); err != nil {
		return fmt.Errorf("badger: delete %s: %w", key, err)
	}
	return nil
}

// Close rejects new writes, waits for running ones, then closes the db
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closing {
		s.mu.Unlock()
		return nil
	}
	s.closing = true
	s.mu.Unlock()

	s.writeWg.Wait()
	return s.db.Close()
}

// badgerLogger routes badger's own logging to ours, demoting info chatter to debug
type badgerLogger struct {
	logger log.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	if l.logger != nil {
		l.logger.Errorf("[badger] "+format, args...)
	}
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	if l.logger != nil {
		l.logger.Warnf("[badger] "+format, args...)
	}
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	if l.logger != nil {
		l.logger.Debugf("[badger] "+format, args...)
	}
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	if l.logger != nil {
		l.logger.Debugf("[badger] "+format, args...)
	}
}

package highscore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/dgraph-io/badger/v4"
)

var badgerKey = []byte("highscore")

// BadgerConfig holds configuration for the embedded BadgerDB store
type BadgerConfig struct {
	// Path is the database directory. Ignored when InMemory is true.
	Path string

	// InMemory keeps everything in RAM. Used by tests.
	InMemory bool

	// SyncWrites fsyncs every commit
	SyncWrites bool

	// Logger receives BadgerDB's internal logging. Nil disables it.
	Logger *slog.Logger
}

// badgerLogger adapts slog.Logger to BadgerDB's Logger interface
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

// BadgerStore keeps the high score under a single BadgerDB key
type BadgerStore struct {
	db *badger.DB
}

// OpenBadger opens (or creates) a BadgerDB database for the high score
func OpenBadger(cfg BadgerConfig) (*BadgerStore, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("path is required for persistent database")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0750); err != nil {
			return nil, fmt.Errorf("create database directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}

	opts = opts.WithSyncWrites(cfg.SyncWrites).WithNumVersionsToKeep(1)
	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

// NewBadgerStore wraps an already opened database. Close closes db.
func NewBadgerStore(db *badger.DB) *BadgerStore {
	return &BadgerStore{db: db}
}

func (s *BadgerStore) LoadHighScore(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	var score int
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		score, err = readScore(txn)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("load high score: %w", err)
	}
	return score, nil
}

// readScore returns the stored score, 0 when the key is missing
func readScore(txn *badger.Txn) (int, error) {
	item, err := txn.Get(badgerKey)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	score := 0
	err = item.Value(func(val []byte) error {
		v, err := strconv.Atoi(string(val))
		if err != nil {
			return fmt.Errorf("decode high score: %w", err)
		}
		score = v
		return nil
	})
	return score, err
}

func (s *BadgerStore) SaveHighScore(ctx context.Context, score int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if score < 0 {
		return ErrNegativeScore
	}

	// a conflicting commit means another writer got in first; retry against its value
	var err error
	for {
		if err = ctx.Err(); err != nil {
			break
		}
		err = s.db.Update(func(txn *badger.Txn) error {
			current, err := readScore(txn)
			if err != nil || score <= current {
				return err
			}
			return txn.Set(badgerKey, []byte(strconv.Itoa(score)))
		})
		if !errors.Is(err, badger.ErrConflict) {
			break
		}
	}
	if err != nil {
		return fmt.Errorf("save high score: %w", err)
	}
	return nil
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}

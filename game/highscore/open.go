package highscore

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Options selects and configures a Store for Open
type Options struct {
	Backend     string
	Path        string
	RedisAddr   string
	RedisPrefix string
}

// Open builds the store named by opts.Backend. An empty backend means file.
// For the file backend Path is the properties file; for badger it is the
// database directory.
func Open(ctx context.Context, opts Options, logger *slog.Logger) (Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	switch strings.ToLower(strings.TrimSpace(opts.Backend)) {
	case "", BackendFile:
		if opts.Path == "" {
			return nil, fmt.Errorf("%s backend: path is required", BackendFile)
		}
		return NewFileStore(opts.Path), nil
	case BackendBadger:
		store, err := OpenBadger(BadgerConfig{
			Path:       opts.Path,
			SyncWrites: true,
			Logger:     logger.With("component", "badger"),
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	case BackendRedis:
		if opts.RedisAddr == "" {
			return nil, fmt.Errorf("%s backend: address is required", BackendRedis)
		}
		store, err := NewRedisStore(ctx, opts.RedisAddr, opts.RedisPrefix)
		if err != nil {
			return nil, err
		}
		return store, nil
	case BackendMemory:
		return NewMemoryStore(0), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend)
	}
}

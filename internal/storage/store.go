// Package storage persists the loan portfolio in a key-value store. The
// portfolio is one opaque blob under a fixed key; backends only move bytes.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/iwvelando/loan-tracker/internal/config"
	"github.com/iwvelando/loan-tracker/pkg/constants"
	"go.uber.org/zap"
)

var (
	// ErrNotFound is returned by Store.Get for a missing key.
	ErrNotFound = errors.New("key not found")

	// ErrUnknownBackend is returned by Open for an unsupported backend.
	ErrUnknownBackend = errors.New("unknown storage backend")
)

// Store is a byte-oriented key-value store.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Open creates the store selected by cfg.Backend.
func Open(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	logger.Debug(fmt.Sprintf("opening %s store", cfg.Backend),
		zap.String("op", "storage.Open"),
	)

	switch cfg.Backend {
	case constants.StorageBackendMemory:
		return NewMemoryStore(), nil
	case constants.StorageBackendFile:
		return NewFileStore(cfg.Path)
	case constants.StorageBackendSQLite:
		return OpenSQLite(ctx, cfg.SQLitePath())
	case constants.StorageBackendPostgres:
		return OpenPostgres(ctx, cfg.DSN)
	case constants.StorageBackendRedis:
		return OpenRedis(ctx, cfg.Address, cfg.Password, cfg.DB)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
}

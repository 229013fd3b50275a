// Package storage keeps uploaded logo images in a blob store.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/diewo77/bill-ease/internal/config"
	"go.uber.org/zap"
)

// ErrNotFound is returned by Get for keys that were never stored.
var ErrNotFound = errors.New("storage: object not found")

// Blob stores opaque objects under slash-separated keys.
type Blob interface {
	Put(ctx context.Context, key, contentType string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
}

// New builds the blob store selected by cfg.Driver.
func New(cfg config.StorageConfig, log *zap.Logger) (Blob, error) {
	switch cfg.Driver {
	case "local":
		return NewLocal(cfg.Dir, log), nil
	case "s3":
		return NewS3(cfg, log)
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Driver)
	}
}

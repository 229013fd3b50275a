package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Local stores objects as files under baseDir.
type Local struct {
	baseDir string
	logger  *zap.Logger
}

func NewLocal(baseDir string, logger *zap.Logger) *Local {
	return &Local{baseDir: baseDir, logger: logger}
}

// path maps key below baseDir and rejects keys that would escape it.
func (s *Local) path(key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("empty storage key")
	}
	absBase, err := filepath.Abs(s.baseDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve base path: %w", err)
	}
	absPath, err := filepath.Abs(filepath.Join(absBase, filepath.FromSlash(key)))
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}
	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) {
		return "", fmt.Errorf("path escapes base directory: %s", key)
	}
	return absPath, nil
}

func (s *Local) Put(_ context.Context, key, _ string, data []byte) error {
	full, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		s.logger.Error("failed to create parent directories", zap.String("path", full), zap.Error(err))
		return fmt.Errorf("failed to create directories: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		s.logger.Error("failed to write file", zap.String("path", full), zap.Error(err))
		return fmt.Errorf("failed to write file: %w", err)
	}
	s.logger.Debug("object stored", zap.String("key", key), zap.Int("size", len(data)))
	return nil
}

func (s *Local) Get(_ context.Context, key string) ([]byte, error) {
	full, err := s.path(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(full)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return data, nil
}

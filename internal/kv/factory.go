package kv

import (
	"fmt"
	"path/filepath"

	"muse-go/internal/config"
	"muse-go/internal/muse"
)

// NewStoreFromConfig creates a Store implementation based on the storage
// config type.
func NewStoreFromConfig(cfg config.StorageConfig) (muse.Store, error) {
	switch cfg.Type {
	case "sqlite", "":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir required for sqlite storage")
		}
		return NewSQLiteStore(filepath.Join(cfg.DataDir, "muse.db"))
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}

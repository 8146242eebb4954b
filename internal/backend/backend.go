// Package backend selects and constructs the persistence store from
// configuration.
package backend

import (
	"fmt"
	"log/slog"

	"spendwise/internal/kv"
	kvfile "spendwise/internal/kv/file"
	kvmem "spendwise/internal/kv/memory"
	kvsqlite "spendwise/internal/kv/sqlite"
)

// Type names a persistence backend.
type Type string

const (
	Memory Type = "memory"
	File   Type = "file"
	SQLite Type = "sqlite"
)

func (t Type) String() string { return string(t) }

// IsValid reports whether t names a known backend.
func (t Type) IsValid() bool {
	switch t {
	case Memory, File, SQLite:
		return true
	default:
		return false
	}
}

// Types returns all valid backend types.
func Types() []Type {
	return []Type{Memory, File, SQLite}
}

// Config holds what each backend needs to start.
type Config struct {
	Type         Type
	DataDir      string // file backend
	SQLiteDBPath string // sqlite backend
}

// Open constructs the configured store. The returned store's Close is the
// only cleanup required.
func Open(cfg Config, logger *slog.Logger) (kv.Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if !cfg.Type.IsValid() {
		return nil, fmt.Errorf("invalid backend type: %s", cfg.Type)
	}

	switch cfg.Type {
	case SQLite:
		if cfg.SQLiteDBPath == "" {
			return nil, fmt.Errorf("sqlite backend requires a database path")
		}
		store, err := kvsqlite.New(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("initialize sqlite store: %w", err)
		}
		logger.Info("Initialized sqlite store", "db_path", cfg.SQLiteDBPath)
		return store, nil

	case File:
		dir := cfg.DataDir
		if dir == "" {
			dir = "data"
		}
		store, err := kvfile.New(dir)
		if err != nil {
			return nil, fmt.Errorf("initialize file store: %w", err)
		}
		logger.Info("Initialized file store", "data_directory", dir)
		return store, nil

	default:
		logger.Info("Initialized memory store")
		return kvmem.New(), nil
	}
}

// Package store is the durable key-value layer the pet engine persists its
// three records into. Backends: JSON files, SQLite and memory.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Backend names accepted by Open
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// ErrInvalidKey is returned for keys that cannot name a record
var ErrInvalidKey = errors.New("invalid store key")

// Entry is one key/value pair of a write batch
type Entry struct {
	Key   string
	Value []byte
}

// Store persists opaque values under string keys.
//
// Get reports absence as (nil, false, nil). Put applies its entries as one
// batch: either every entry is written or none is. Delete ignores keys that
// do not exist.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, entries ...Entry) error
	Delete(ctx context.Context, keys ...string) error
	Close() error
}

// Open returns the backend named by backend rooted at dir
func Open(backend, dir string) (Store, error) {
	switch backend {
	case BackendFile, "":
		return NewFileStore(dir)
	case BackendSQLite:
		return OpenSQLite(SQLitePath(dir))
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", backend)
	}
}

// ValidateKey rejects keys that are empty or could escape a directory
func ValidateKey(key string) error {
	if key == "" || key == "." || key == ".." || strings.ContainsAny(key, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}

func validateEntries(entries []Entry) error {
	for _, e := range entries {
		if err := ValidateKey(e.Key); err != nil {
			return err
		}
	}
	return nil
}

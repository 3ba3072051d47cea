package storage

import (
	"errors"
	"fmt"

	"lgpkit/internal/compress"
)

var errNotInitialized = errors.New("store is not initialized")

// NewStore builds the backend named by kind. codec only applies to backends
// that serialize payloads; nil selects no compression.
func NewStore(kind, sqlitePath string, codec compress.Codec) (Store, error) {
	if codec == nil {
		codec = compress.NewNoOpCompressor()
	}
	switch kind {
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		return newSQLiteStore(sqlitePath, codec)
	default:
		return nil, fmt.Errorf("unsupported store backend: %s", kind)
	}
}

// DefaultStoreKind prefers sqlite when the binary was built with it.
func DefaultStoreKind() string {
	if sqliteAvailable {
		return "sqlite"
	}
	return "memory"
}

func CloseIfSupported(store Store) error {
	closer, ok := store.(interface{ Close() error })
	if !ok {
		return nil
	}
	return closer.Close()
}

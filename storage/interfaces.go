package storage

import (
	"context"

	"github.com/poiesic/hymnal/core"
)

// VectorRepository persists embedding vectors keyed by content ID so an
// index can be rebuilt without re-embedding unchanged text.
// Implementations must be thread-safe and support concurrent access.
type VectorRepository interface {
	// GetVectors returns the vectors cached under namespace for the given IDs.
	// Missing IDs are absent from the result; they are not an error.
	GetVectors(ctx context.Context, namespace string, ids ...core.ID) (map[core.ID]*core.CachedVector, error)

	// PutVectors stores vectors, replacing any existing entry with the same ID.
	// Sets StoredAt if not already set.
	PutVectors(ctx context.Context, vectors ...*core.CachedVector) error

	// DeleteNamespace removes every vector stored under namespace and
	// returns how many were removed.
	DeleteNamespace(ctx context.Context, namespace string) (int, error)

	// CountVectors returns the number of vectors stored under namespace.
	CountVectors(ctx context.Context, namespace string) (int, error)

	// Close releases resources held by the repository.
	Close() error
}

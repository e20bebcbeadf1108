package badger

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/hymnal/core"
	"github.com/poiesic/hymnal/storage"
)

// VectorRepository implements storage.VectorRepository for BadgerDB.
type VectorRepository struct {
	backend   *Backend
	ownsStore bool
}

var _ storage.VectorRepository = (*VectorRepository)(nil)

// NewVectorRepository creates a vector repository on an open backend.
// The caller keeps ownership of the backend and must close it.
func NewVectorRepository(backend *Backend) (storage.VectorRepository, error) {
	return newVectorRepository(backend, false)
}

// OpenVectorRepository opens a backend at path and returns a repository
// that closes the backend when it is closed.
func OpenVectorRepository(path string) (storage.VectorRepository, error) {
	backend, err := OpenBackend(path, false)
	if err != nil {
		return nil, err
	}
	repo, err := newVectorRepository(backend, true)
	if err != nil {
		backend.Close()
		return nil, err
	}
	return repo, nil
}

func newVectorRepository(backend *Backend, owns bool) (*VectorRepository, error) {
	if backend == nil {
		return nil, errors.New("backend is required")
	}
	return &VectorRepository{
		backend:   backend,
		ownsStore: owns,
	}, nil
}

// Close releases the backend if this repository opened it.
func (r *VectorRepository) Close() error {
	if r.ownsStore {
		return r.backend.Close()
	}
	return nil
}

func (r *VectorRepository) checkOpen(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if r.backend.IsClosed() {
		return storage.ErrStorageClosed
	}
	return nil
}

// GetVectors retrieves the vectors cached under namespace for ids.
func (r *VectorRepository) GetVectors(ctx context.Context, namespace string, ids ...core.ID) (map[core.ID]*core.CachedVector, error) {
	if err := r.checkOpen(ctx); err != nil {
		return nil, err
	}
	result := make(map[core.ID]*core.CachedVector, len(ids))
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			v, err := readVector(tx, makeVectorKey(namespace, id))
			if err != nil {
				return err
			}
			if v != nil {
				result[id] = v
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// PutVectors stores vectors, overwriting existing entries.
func (r *VectorRepository) PutVectors(ctx context.Context, vectors ...*core.CachedVector) error {
	if err := r.checkOpen(ctx); err != nil {
		return err
	}
	for _, v := range vectors {
		if err := storage.ValidateCachedVector(v); err != nil {
			return err
		}
	}
	now := time.Now().UTC()
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, v := range vectors {
			if v.StoredAt.IsZero() {
				v.StoredAt = now
			}
			value, err := storage.MarshalCachedVector(v)
			if err != nil {
				return err
			}
			if err := tx.Set(makeVectorKey(v.Namespace, v.Id), value); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// CountVectors returns the number of vectors stored under namespace.
func (r *VectorRepository) CountVectors(ctx context.Context, namespace string) (int, error) {
	if err := r.checkOpen(ctx); err != nil {
		return 0, err
	}
	count := 0
	prefix := makeVectorNamespacePrefix(namespace)
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	return count, err
}

// DeleteNamespace removes every vector stored under namespace.
func (r *VectorRepository) DeleteNamespace(ctx context.Context, namespace string) (int, error) {
	count, err := r.CountVectors(ctx, namespace)
	if err != nil {
		return 0, err
	}
	if count == 0 {
		return 0, nil
	}
	if err := r.backend.DropPrefix(makeVectorNamespacePrefix(namespace)); err != nil {
		return 0, err
	}
	r.backend.logger.Debug("dropped cached vectors", "namespace", namespace, "count", count)
	return count, nil
}

// readVector reads a cached vector. A missing key yields nil, nil.
func readVector(tx *badger.Txn, key []byte) (*core.CachedVector, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var v *core.CachedVector
	err = item.Value(func(val []byte) error {
		var err error
		v, err = storage.UnmarshalCachedVector(val)
		return err
	})
	return v, err
}

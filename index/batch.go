package index

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/hymnal/ai"
	"github.com/poiesic/hymnal/core"
	"github.com/poiesic/hymnal/retry"
)

// builder embeds the hymns of one Build call.
type builder struct {
	embedder ai.Embedder
	opts     *options
	hymns    []*core.Hymn
	vectors  [][]float32
	progress *ProgressTracker

	cached   int
	embedded int

	mu   sync.Mutex
	errs []error
}

func newBuilder(embedder ai.Embedder, opts *options, hymns []*core.Hymn) *builder {
	return &builder{
		embedder: embedder,
		opts:     opts,
		hymns:    hymns,
		vectors:  make([][]float32, len(hymns)),
	}
}

// run fills b.vectors from the cache and the embedder.
func (b *builder) run(ctx context.Context) ([][]float32, error) {
	missing := b.loadCached(ctx)
	b.cached = len(b.hymns) - len(missing)
	if len(missing) == 0 {
		return b.vectors, nil
	}

	if b.opts.progress != nil {
		b.progress = NewProgressTracker(b.opts.progress, len(missing), b.opts.progressInterval)
		b.progress.Start()
		defer b.progress.Finish()
	}

	pool, err := ants.NewPool(b.opts.poolSize)
	if err != nil {
		return nil, err
	}
	defer pool.Release()

	var wg sync.WaitGroup
	for start := 0; start < len(missing); start += b.opts.batchSize {
		batch := missing[start:min(start+b.opts.batchSize, len(missing))]
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			if err := b.embedBatch(ctx, batch); err != nil {
				b.fail(err)
			}
		}); err != nil {
			wg.Done()
			b.fail(err)
		}
	}
	wg.Wait()

	if len(b.errs) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrEmbeddingFailed, errors.Join(b.errs...))
	}
	b.embedded = len(missing)
	b.storeCached(ctx, missing)
	return b.vectors, nil
}

// embedBatch embeds the bodies of the hymns at the given positions.
// Each batch writes only its own positions of b.vectors.
func (b *builder) embedBatch(ctx context.Context, positions []int) error {
	texts := make([]string, len(positions))
	for i, pos := range positions {
		texts[i] = b.hymns[pos].Body
	}

	var embeddings [][]float32
	err := retry.Do(ctx, func(ctx context.Context) error {
		var err error
		embeddings, err = b.embedder.EmbedTexts(ctx, texts)
		if err == nil && len(embeddings) != len(texts) {
			err = fmt.Errorf("embedding count mismatch: expected %d, got %d", len(texts), len(embeddings))
		}
		return err
	}, b.opts.maxAttempts, b.opts.retryDelay)
	if err != nil {
		b.opts.logger.Error("error generating embeddings", "hymns", len(texts),
			"first", b.hymns[positions[0]].Number, "err", err)
		return err
	}

	for i, pos := range positions {
		b.vectors[pos] = NormalizeVector(embeddings[i])
	}
	if b.progress != nil {
		b.progress.Increment(len(positions))
	}
	return nil
}

func (b *builder) fail(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.errs = append(b.errs, err)
}

// loadCached fills vectors found in the cache and returns the positions
// that still need embedding. Cache errors are logged and treated as misses.
func (b *builder) loadCached(ctx context.Context) []int {
	all := make([]int, len(b.hymns))
	for i := range all {
		all[i] = i
	}
	if b.opts.cache == nil {
		return all
	}

	ids := make([]core.ID, len(b.hymns))
	for i, h := range b.hymns {
		ids[i] = core.VectorID(b.opts.namespace, h.Body)
	}
	found, err := b.opts.cache.GetVectors(ctx, b.opts.namespace, ids...)
	if err != nil {
		b.opts.logger.Warn("vector cache unavailable", "err", err)
		return all
	}

	missing := all[:0]
	for i, id := range ids {
		if v, ok := found[id]; ok && len(v.Vector) > 0 {
			// Stored vectors are already unit length
			b.vectors[i] = v.Vector
			continue
		}
		missing = append(missing, i)
	}
	b.opts.logger.Debug("vector cache lookup", "hits", len(b.hymns)-len(missing), "misses", len(missing))
	return missing
}

// storeCached writes newly embedded vectors back to the cache.
func (b *builder) storeCached(ctx context.Context, positions []int) {
	if b.opts.cache == nil {
		return
	}
	entries := make([]*core.CachedVector, len(positions))
	for i, pos := range positions {
		entries[i] = &core.CachedVector{
			Id:        core.VectorID(b.opts.namespace, b.hymns[pos].Body),
			Namespace: b.opts.namespace,
			Vector:    b.vectors[pos],
		}
	}
	if err := b.opts.cache.PutVectors(ctx, entries...); err != nil {
		b.opts.logger.Warn("failed to store vectors in cache", "err", err)
	}
}

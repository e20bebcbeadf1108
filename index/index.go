package index

import (
	"context"
	"fmt"
	"slices"

	"github.com/poiesic/hymnal/ai"
	"github.com/poiesic/hymnal/core"
)

// Index holds one unit-length vector per hymn, in corpus order.
type Index struct {
	hymns   []*core.Hymn
	vectors [][]float32
	dim     int
}

// Neighbor is one nearest-neighbor result.
type Neighbor struct {
	Hymn  *core.Hymn
	Score float32 // Cosine similarity with the query
}

// Build embeds every hymn body in corpus and returns the finished index.
// An empty corpus yields an empty index without calling the embedder.
func Build(ctx context.Context, corpus *core.Corpus, embedder ai.Embedder, opts ...Option) (*Index, error) {
	if corpus == nil {
		return nil, ErrCorpusRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	hymns := corpus.Hymns()
	if len(hymns) == 0 {
		return &Index{}, nil
	}

	b := newBuilder(embedder, o, hymns)
	vectors, err := b.run(ctx)
	if err != nil {
		return nil, err
	}

	dim := len(vectors[0])
	for i, v := range vectors {
		if len(v) == 0 || len(v) != dim {
			return nil, fmt.Errorf("%w: hymn %s has %d components, expected %d",
				ErrDimensionMismatch, hymns[i].Number, len(v), dim)
		}
	}

	o.logger.Info("index built", "hymns", len(hymns), "dimensions", dim,
		"cached", b.cached, "embedded", b.embedded)

	return &Index{
		hymns:   slices.Clone(hymns),
		vectors: vectors,
		dim:     dim,
	}, nil
}

// Len returns the number of indexed hymns, equal to the corpus length.
func (ix *Index) Len() int {
	return len(ix.hymns)
}

// Dimensions returns the vector length, or 0 for an empty index.
func (ix *Index) Dimensions() int {
	return ix.dim
}

// Nearest returns up to k hymns ranked by cosine similarity to query,
// best first. Equal scores keep corpus order. A non-positive k, an empty
// index, or a query of the wrong length yields an empty result.
func (ix *Index) Nearest(query []float32, k int) []Neighbor {
	if k <= 0 || len(ix.hymns) == 0 || len(query) != ix.dim {
		return []Neighbor{}
	}

	q := NormalizeVector(query)
	scored := make([]Neighbor, len(ix.hymns))
	for i, h := range ix.hymns {
		scored[i] = Neighbor{Hymn: h, Score: DotProduct(q, ix.vectors[i])}
	}

	slices.SortStableFunc(scored, func(a, b Neighbor) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		default:
			return 0
		}
	})

	return scored[:min(k, len(scored))]
}

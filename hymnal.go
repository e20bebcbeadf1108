// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package hymnal

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/poiesic/hymnal/ai"
	"github.com/poiesic/hymnal/ai/openai"
	"github.com/poiesic/hymnal/core"
	"github.com/poiesic/hymnal/corpus"
	"github.com/poiesic/hymnal/index"
	"github.com/poiesic/hymnal/scripture"
	"github.com/poiesic/hymnal/search"
	"github.com/poiesic/hymnal/storage"
	"github.com/poiesic/hymnal/storage/badger"
)

// Hymnal ties a loaded corpus to its embedding index and query resolver.
// The corpus is loaded when the Hymnal is opened; the index is built on
// first use and reused for the rest of the process.
type Hymnal struct {
	corpus    *core.Corpus
	loadErr   error
	embedder  ai.Embedder
	namespace string
	vectors   storage.VectorRepository
	verses    *scripture.CachedResolver
	indexOpts []index.Option
	resolver  *search.Resolver
	logger    *slog.Logger

	mu    sync.Mutex
	index *index.Index
}

// Option configures a Hymnal.
type Option func(*options)

type options struct {
	aiConfig       *ai.Config
	embedder       ai.Embedder
	namespace      string
	verses         scripture.Resolver
	versesSet      bool
	scriptureOpts  []scripture.ClientOption
	vectorCacheDir string
	indexOpts      []index.Option
	searchOpts     []search.Option
	logger         *slog.Logger
}

// WithAIConfig sets the embedding service configuration.
// Default is ai.DefaultConfig().
func WithAIConfig(config *ai.Config) Option {
	return func(o *options) {
		if config != nil {
			o.aiConfig = config
		}
	}
}

// WithEmbedder uses embedder instead of one built from the AI config.
// model names the embedding model and scopes cached vectors.
func WithEmbedder(embedder ai.Embedder, model string) Option {
	return func(o *options) {
		o.embedder = embedder
		o.namespace = model
	}
}

// WithScriptureResolver sets the scripture lookup service. A nil resolver
// disables lookups, so references are removed from queries unresolved.
// Default is a cached bible-api.com client.
func WithScriptureResolver(resolver scripture.Resolver) Option {
	return func(o *options) {
		o.verses = resolver
		o.versesSet = true
	}
}

// WithScriptureOptions configures the default bible-api.com client.
// Ignored when WithScriptureResolver is used.
func WithScriptureOptions(opts ...scripture.ClientOption) Option {
	return func(o *options) {
		o.scriptureOpts = append(o.scriptureOpts, opts...)
	}
}

// WithVectorCacheDir persists embedding vectors in a BadgerDB database at dir.
func WithVectorCacheDir(dir string) Option {
	return func(o *options) {
		o.vectorCacheDir = dir
	}
}

// WithIndexOptions passes options to index.Build.
func WithIndexOptions(opts ...index.Option) Option {
	return func(o *options) {
		o.indexOpts = append(o.indexOpts, opts...)
	}
}

// WithSearchOptions passes options to search.NewResolver.
func WithSearchOptions(opts ...search.Option) Option {
	return func(o *options) {
		o.searchOpts = append(o.searchOpts, opts...)
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = slog.Default()
		}
		o.logger = logger
	}
}

// Open loads the corpus at corpusPath and prepares the resolver.
//
// An unreadable corpus is not an error here: the Hymnal opens with an empty
// corpus and LoadError reports why. Errors are returned only for invalid
// configuration.
func Open(corpusPath string, opts ...Option) (*Hymnal, error) {
	o := &options{
		aiConfig: ai.DefaultConfig(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}

	h := &Hymnal{
		logger: o.logger.With("component", "hymnal"),
	}

	h.corpus, h.loadErr = corpus.Load(corpusPath, corpus.WithLogger(o.logger))
	if h.corpus == nil {
		h.corpus = core.EmptyCorpus()
	}
	if h.loadErr != nil {
		h.logger.Error("hymn corpus unavailable, continuing with no hymns", "path", corpusPath, "err", h.loadErr)
	} else {
		h.logger.Info("hymn corpus loaded", "path", corpusPath, "hymns", h.corpus.Len())
	}

	h.embedder, h.namespace = o.embedder, o.namespace
	if h.embedder == nil {
		embedder, err := openai.NewEmbedder(o.aiConfig)
		if err != nil {
			return nil, err
		}
		h.embedder, h.namespace = embedder, o.aiConfig.EmbeddingModel
	}

	verses := o.verses
	if !o.versesSet {
		cached, err := scripture.NewCachedResolver(
			scripture.NewBibleAPI(append([]scripture.ClientOption{scripture.WithClientLogger(o.logger)}, o.scriptureOpts...)...),
			scripture.DefaultCacheSize,
		)
		if err != nil {
			return nil, err
		}
		h.verses = cached
		verses = cached
	}

	h.indexOpts = append([]index.Option{index.WithLogger(o.logger)}, o.indexOpts...)
	if o.vectorCacheDir != "" {
		repo, err := badger.OpenVectorRepository(o.vectorCacheDir)
		if err != nil {
			h.logger.Warn("vector cache unavailable, embedding without it", "dir", o.vectorCacheDir, "err", err)
		} else {
			h.vectors = repo
			h.indexOpts = append(h.indexOpts, index.WithVectorCache(repo, h.namespace))
		}
	}

	resolver, err := search.NewResolver(h.corpus, h, h.embedder, verses,
		append([]search.Option{search.WithLogger(o.logger)}, o.searchOpts...)...)
	if err != nil {
		h.Close()
		return nil, err
	}
	h.resolver = resolver

	return h, nil
}

// Corpus returns the loaded corpus. It is never nil.
func (h *Hymnal) Corpus() *core.Corpus {
	return h.corpus
}

// LoadError reports why the corpus could not be read, or nil.
func (h *Hymnal) LoadError() error {
	return h.loadErr
}

// Index returns the embedding index, building it on the first call.
// A failed build is not remembered, so a later call tries again.
func (h *Hymnal) Index(ctx context.Context) (*index.Index, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.index != nil {
		return h.index, nil
	}
	ix, err := index.Build(ctx, h.corpus, h.embedder, h.indexOpts...)
	if err != nil {
		return nil, err
	}
	h.index = ix
	return ix, nil
}

// Search resolves query against the corpus.
func (h *Hymnal) Search(ctx context.Context, query string) (*core.Result, error) {
	return h.resolver.Resolve(ctx, query)
}

// SearchWithMonitor resolves query and reports each stage to monitor.
func (h *Hymnal) SearchWithMonitor(ctx context.Context, query string, monitor search.SearchMonitor) (*core.Result, error) {
	return h.resolver.ResolveWithMonitor(ctx, query, monitor)
}

// Lookup returns the hymn with the given catalog number.
func (h *Hymnal) Lookup(number string) (*core.Hymn, bool) {
	return h.corpus.Lookup(number)
}

// VectorCache returns the persisted vector cache, or nil when none is open.
func (h *Hymnal) VectorCache() storage.VectorRepository {
	return h.vectors
}

// Namespace returns the embedding model name that scopes cached vectors.
func (h *Hymnal) Namespace() string {
	return h.namespace
}

// Close releases the vector cache and the scripture cache.
func (h *Hymnal) Close() error {
	var errs []error
	if h.vectors != nil {
		if err := h.vectors.Close(); err != nil {
			h.logger.Error("error closing vector cache", "err", err)
			errs = append(errs, err)
		}
		h.vectors = nil
	}
	if h.verses != nil {
		h.verses.Close()
		h.verses = nil
	}
	return errors.Join(errs...)
}

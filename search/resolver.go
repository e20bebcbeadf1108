package search

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"github.com/poiesic/hymnal/ai"
	"github.com/poiesic/hymnal/core"
	"github.com/poiesic/hymnal/index"
	"github.com/poiesic/hymnal/scripture"
)

// DefaultMaxHits bounds substring and semantic results.
const DefaultMaxHits = 3

// catalogNumber matches "25", "GHS 25" and "ghs25".
var catalogNumber = regexp.MustCompile(`(?i)^(?:` + core.CatalogPrefix + `\s*)?(\d+)$`)

// IndexProvider supplies the embedding index, building it on first use if
// needed. Implementations must be safe for concurrent use.
type IndexProvider interface {
	Index(ctx context.Context) (*index.Index, error)
}

// IndexFunc adapts a function to the IndexProvider interface.
type IndexFunc func(ctx context.Context) (*index.Index, error)

// Index calls f(ctx).
func (f IndexFunc) Index(ctx context.Context) (*index.Index, error) {
	return f(ctx)
}

// StaticIndex returns a provider for an index that is already built.
func StaticIndex(ix *index.Index) IndexProvider {
	return IndexFunc(func(context.Context) (*index.Index, error) {
		return ix, nil
	})
}

// Resolver runs the query resolution chain.
type Resolver struct {
	corpus   *core.Corpus
	indexes  IndexProvider
	embedder ai.Embedder
	rewriter *scripture.Rewriter
	maxHits  int
	logger   *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// WithMaxHits sets the cap on substring and semantic results.
// Values below 1 are treated as 1.
func WithMaxHits(n int) Option {
	return func(r *Resolver) error {
		r.maxHits = max(n, 1)
		return nil
	}
}

// NewResolver creates a resolver over corpus. The scripture resolver may be
// nil, in which case references are dropped from queries unresolved.
func NewResolver(
	corpus *core.Corpus,
	indexes IndexProvider,
	embedder ai.Embedder,
	verses scripture.Resolver,
	opts ...Option,
) (*Resolver, error) {
	if corpus == nil {
		return nil, ErrCorpusRequired
	}
	if indexes == nil {
		return nil, ErrIndexRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	r := &Resolver{
		corpus:   corpus,
		indexes:  indexes,
		embedder: embedder,
		maxHits:  DefaultMaxHits,
		logger:   slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	r.rewriter = scripture.NewRewriter(verses, scripture.WithLogger(r.logger))
	r.logger = r.logger.With("component", "search")

	return r, nil
}

// Resolve runs the resolution chain for query.
func (r *Resolver) Resolve(ctx context.Context, query string) (*core.Result, error) {
	return r.ResolveWithMonitor(ctx, query, nil)
}

// ResolveWithMonitor runs the resolution chain for query with monitoring.
// The monitor receives callbacks at each stage of the resolution.
func (r *Resolver) ResolveWithMonitor(ctx context.Context, query string, monitor SearchMonitor) (*core.Result, error) {
	// Use noop monitor if none provided
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	monitor.Start(query)

	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		monitor.Finish(nil)
		return nil, ErrEmptyQuery
	}

	result := &core.Result{Query: query, SearchText: trimmed}

	// 1. Catalog number
	if m := catalogNumber.FindStringSubmatch(trimmed); m != nil {
		hymn, ok := r.corpus.Lookup(m[1])
		if ok {
			monitor.AfterNumberLookup(m[1], hymn)
			result.Matches = []core.Match{exactMatch(hymn, core.MatchExactNumber)}
			monitor.Finish(result)
			return result, nil
		}
		monitor.AfterNumberLookup(m[1], nil)
	}

	// 2. Scripture expansion
	rewritten := r.rewriter.Rewrite(ctx, trimmed)
	monitor.AfterRewrite(rewritten)
	result.SearchText = strings.TrimSpace(rewritten.Text)

	// 3. Substring; an empty needle would match every hymn
	if result.SearchText != "" {
		matches := r.substringMatches(result.SearchText)
		monitor.AfterSubstringSearch(result.SearchText, matches)
		if len(matches) > 0 {
			result.Matches = matches
			monitor.Finish(result)
			return result, nil
		}
	}

	// A lyric may quote a chapter reference literally ("Sing Psalm 25
	// with me"); when nothing was resolved, try the query as typed.
	if rewritten.OnlyUnresolvedChapters() {
		matches := r.substringMatches(trimmed)
		monitor.AfterSubstringSearch(trimmed, matches)
		if len(matches) > 0 {
			result.SearchText = trimmed
			result.Matches = matches
			monitor.Finish(result)
			return result, nil
		}
	}

	// 4. Semantic
	neighbors := r.semanticNeighbors(ctx, result.SearchText)
	monitor.AfterSemanticSearch(neighbors)
	for _, n := range neighbors {
		result.Matches = append(result.Matches, core.Match{
			Hymn:  n.Hymn,
			Kind:  core.MatchSemantic,
			Text:  n.Hymn.Body,
			Score: max(n.Score, 0), // opposed vectors score below zero
		})
	}

	monitor.Finish(result)
	return result, nil
}

func exactMatch(h *core.Hymn, kind core.MatchKind) core.Match {
	return core.Match{Hymn: h, Kind: kind, Text: h.Body, Score: 1.0}
}

// substringMatches returns up to maxHits hymns whose body contains needle,
// ignoring case, in corpus order.
func (r *Resolver) substringMatches(needle string) []core.Match {
	needle = strings.ToLower(needle)
	var matches []core.Match
	for _, h := range r.corpus.Hymns() {
		if strings.Contains(strings.ToLower(h.Body), needle) {
			matches = append(matches, exactMatch(h, core.MatchExactSubstring))
			if len(matches) == r.maxHits {
				break
			}
		}
	}
	return matches
}

// semanticNeighbors embeds text and queries the index. Every failure is
// logged and yields no neighbors.
func (r *Resolver) semanticNeighbors(ctx context.Context, text string) []index.Neighbor {
	ix, err := r.indexes.Index(ctx)
	if err != nil {
		r.logger.Error("embedding index unavailable", "err", err)
		return nil
	}
	if ix == nil || ix.Len() == 0 {
		r.logger.Debug("embedding index is empty")
		return nil
	}

	vector, err := r.embedder.EmbedText(ctx, text)
	if err != nil {
		r.logger.Error("error generating embedding for query", "query", text, "err", err)
		return nil
	}
	if len(vector) != ix.Dimensions() {
		r.logger.Error("query embedding has wrong dimensions",
			"got", len(vector), "expected", ix.Dimensions())
		return nil
	}

	return ix.Nearest(vector, r.maxHits)
}

package scripture

import (
	"context"
	"log/slog"
	"strings"
)

// Substitution records what happened to one reference during a rewrite.
type Substitution struct {
	Reference Reference
	Resolved  bool
	Text      string // Resolved text spliced into the query; empty when unresolved
}

// Rewritten is the outcome of rewriting a query.
type Rewritten struct {
	Text          string // The query with every reference replaced or removed, untrimmed
	Substitutions []Substitution
}

// Changed reports whether any reference was found.
func (r Rewritten) Changed() bool {
	return len(r.Substitutions) > 0
}

// OnlyUnresolvedChapters reports whether every reference found was a
// chapter reference that could not be resolved.
func (r Rewritten) OnlyUnresolvedChapters() bool {
	if len(r.Substitutions) == 0 {
		return false
	}
	for _, sub := range r.Substitutions {
		if sub.Resolved || !sub.Reference.IsChapter() {
			return false
		}
	}
	return true
}

// Option configures a Rewriter.
type Option func(*Rewriter)

// WithLogger sets the logger used for lookup diagnostics.
// If logger is nil, slog.Default() is used.
func WithLogger(logger *slog.Logger) Option {
	return func(rw *Rewriter) {
		if logger == nil {
			logger = slog.Default()
		}
		rw.logger = logger.With("component", "scripture")
	}
}

// Rewriter expands scripture references inside queries.
type Rewriter struct {
	resolver Resolver
	logger   *slog.Logger
}

// NewRewriter creates a rewriter backed by resolver. A nil resolver is
// allowed; every reference is then removed from rewritten queries.
func NewRewriter(resolver Resolver, opts ...Option) *Rewriter {
	rw := &Rewriter{
		resolver: resolver,
		logger:   slog.Default().With("component", "scripture"),
	}
	for _, opt := range opts {
		opt(rw)
	}
	return rw
}

// Rewrite replaces each reference in query with its resolved text, or
// removes it when it cannot be resolved. Text outside references is kept
// byte for byte, so "topic X John 3:16" with an unresolvable reference
// becomes "topic X ", except that a reference removed from between two
// spaces leaves only one.
func (rw *Rewriter) Rewrite(ctx context.Context, query string) Rewritten {
	refs := FindReferences(query)
	if len(refs) == 0 {
		return Rewritten{Text: query}
	}

	var sb strings.Builder
	subs := make([]Substitution, 0, len(refs))
	last := 0
	for _, ref := range refs {
		sb.WriteString(query[last:ref.Span[0]])
		text, ok := Lookup(ctx, rw.resolver, ref, rw.logger)
		if ok {
			sb.WriteString(text)
		}
		subs = append(subs, Substitution{Reference: ref, Resolved: ok, Text: text})
		last = ref.Span[1]
		// A removed reference between two spaces leaves a single one.
		if !ok && endsInSpace(&sb) && last < len(query) && query[last] == ' ' {
			last++
		}
	}
	sb.WriteString(query[last:])

	return Rewritten{Text: sb.String(), Substitutions: subs}
}

func endsInSpace(sb *strings.Builder) bool {
	return sb.Len() > 0 && sb.String()[sb.Len()-1] == ' '
}

package search

import (
	"log/slog"

	"github.com/poiesic/hymnal/core"
	"github.com/poiesic/hymnal/index"
	"github.com/poiesic/hymnal/scripture"
)

// SearchMonitor provides hooks to observe query resolution.
// Implement this interface to track intermediate steps and results.
// Hooks for strategies that do not run are not called. Every Start is
// paired with one Finish; a rejected query finishes with a nil result.
type SearchMonitor interface {
	Start(query string)
	AfterNumberLookup(number string, hymn *core.Hymn)
	AfterRewrite(rewritten scripture.Rewritten)
	AfterSubstringSearch(needle string, matches []core.Match)
	AfterSemanticSearch(neighbors []index.Neighbor)
	Finish(result *core.Result)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                                {}
func (n *noopMonitor) AfterNumberLookup(_ string, _ *core.Hymn)      {}
func (n *noopMonitor) AfterRewrite(_ scripture.Rewritten)            {}
func (n *noopMonitor) AfterSubstringSearch(_ string, _ []core.Match) {}
func (n *noopMonitor) AfterSemanticSearch(_ []index.Neighbor)        {}
func (n *noopMonitor) Finish(_ *core.Result)                         {}

// logMonitor reports each stage at debug level.
type logMonitor struct {
	logger *slog.Logger
}

var _ SearchMonitor = (*logMonitor)(nil)

// NewLogMonitor returns a monitor that logs every stage of a resolution.
// If logger is nil, slog.Default() is used.
func NewLogMonitor(logger *slog.Logger) SearchMonitor {
	if logger == nil {
		logger = slog.Default()
	}
	return &logMonitor{logger: logger.With("component", "search")}
}

func (m *logMonitor) Start(query string) {
	m.logger.Debug("resolving query", "query", query)
}

func (m *logMonitor) AfterNumberLookup(number string, hymn *core.Hymn) {
	m.logger.Debug("catalog number lookup", "number", number, "found", hymn != nil)
}

func (m *logMonitor) AfterRewrite(rw scripture.Rewritten) {
	for _, sub := range rw.Substitutions {
		m.logger.Debug("scripture reference", "reference", sub.Reference.Text, "resolved", sub.Resolved)
	}
	if rw.Changed() {
		m.logger.Debug("query rewritten", "text", rw.Text)
	}
}

func (m *logMonitor) AfterSubstringSearch(needle string, matches []core.Match) {
	m.logger.Debug("substring search", "needle", needle, "matches", len(matches))
}

func (m *logMonitor) AfterSemanticSearch(neighbors []index.Neighbor) {
	for i, n := range neighbors {
		m.logger.Debug("semantic neighbor", "rank", i+1, "hymn", n.Hymn.Key(), "score", n.Score)
	}
}

func (m *logMonitor) Finish(result *core.Result) {
	if result == nil {
		m.logger.Debug("query rejected")
		return
	}
	m.logger.Debug("query resolved", "kind", result.Kind().String(), "matches", len(result.Matches))
}

package core

import (
	"encoding/binary"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for cached artifacts.
// It is generated using content-based hashing.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// CatalogPrefix is the catalog token that precedes hymn numbers in the
// corpus source and, optionally, in user queries.
const CatalogPrefix = "GHS"

// Hymn is one titled, numbered entry in the corpus.
type Hymn struct {
	Number string // Catalog label, unique within a corpus; not necessarily all digits
	Title  string
	Body   string // Trimmed non-empty lines joined with "\n"
}

// Key returns the display label used for the hymn, e.g. "GHS 25 - Amazing Grace".
func (h *Hymn) Key() string {
	return CatalogPrefix + " " + h.Number + " - " + h.Title
}

// Lines returns the body split back into its lines.
func (h *Hymn) Lines() []string {
	if h.Body == "" {
		return nil
	}
	return strings.Split(h.Body, "\n")
}

// Corpus is the immutable, ordered collection of hymns for one process
// lifetime, with an index by number for exact lookups.
type Corpus struct {
	hymns    []*Hymn
	byNumber map[string]*Hymn
}

// NewCorpus builds a corpus from hymns in source order.
//
// Duplicate numbers follow a last-writer-wins policy: a later hymn replaces
// the earlier one in both the lookup map and the ordered sequence, so the
// map keys always equal the numbers present in the sequence. The numbers
// that were replaced are returned so callers can report them.
func NewCorpus(hymns ...*Hymn) (*Corpus, []string) {
	c := &Corpus{
		hymns:    make([]*Hymn, 0, len(hymns)),
		byNumber: make(map[string]*Hymn, len(hymns)),
	}

	var replaced []string
	for _, h := range hymns {
		if h == nil {
			continue
		}
		if prev, ok := c.byNumber[h.Number]; ok {
			replaced = append(replaced, h.Number)
			for i, existing := range c.hymns {
				if existing == prev {
					c.hymns = append(c.hymns[:i], c.hymns[i+1:]...)
					break
				}
			}
		}
		c.hymns = append(c.hymns, h)
		c.byNumber[h.Number] = h
	}
	return c, replaced
}

// EmptyCorpus returns a corpus with no hymns.
func EmptyCorpus() *Corpus {
	c, _ := NewCorpus()
	return c
}

// Hymns returns the hymns in corpus order.
// The returned slice must not be modified.
func (c *Corpus) Hymns() []*Hymn {
	return c.hymns
}

// Len returns the number of hymns in the corpus.
func (c *Corpus) Len() int {
	return len(c.hymns)
}

// Lookup returns the hymn with the given number, if present.
func (c *Corpus) Lookup(number string) (*Hymn, bool) {
	h, ok := c.byNumber[number]
	return h, ok
}

// MatchKind identifies which resolution strategy produced a match.
type MatchKind int

const (
	// MatchExactNumber is a direct catalog number hit.
	MatchExactNumber MatchKind = iota + 1
	// MatchExactSubstring is a case-insensitive literal hit in a hymn body.
	MatchExactSubstring
	// MatchSemantic is a nearest-neighbor hit from the embedding index.
	MatchSemantic
)

// String returns a short name for the match kind.
func (k MatchKind) String() string {
	switch k {
	case MatchExactNumber:
		return "number"
	case MatchExactSubstring:
		return "substring"
	case MatchSemantic:
		return "semantic"
	default:
		return "unknown"
	}
}

// Exact reports whether matches of this kind always carry full confidence.
func (k MatchKind) Exact() bool {
	return k == MatchExactNumber || k == MatchExactSubstring
}

// Match is a single ranked search hit.
type Match struct {
	Hymn  *Hymn
	Kind  MatchKind
	Text  string  // Text displayed for the hit
	Score float32 // In [0, 1]: 1.0 for exact kinds, cosine similarity floored at 0 for semantic hits
}

// Result is the ranked outcome of resolving one query.
type Result struct {
	Query      string  // Raw query as received
	SearchText string  // Text used for substring and semantic matching, after rewriting
	Matches    []Match // Rank order, best first
}

// Kind returns the match kind of the result, or 0 when there are no matches.
func (r *Result) Kind() MatchKind {
	if len(r.Matches) == 0 {
		return 0
	}
	return r.Matches[0].Kind
}

// CachedVector is a persisted embedding for one piece of text.
// Namespace is the embedding model name; vectors from different models are
// never mixed.
type CachedVector struct {
	Id        ID        `msgpack:"id"`
	Namespace string    `msgpack:"ns"`
	Vector    []float32 `msgpack:"vec"`
	StoredAt  time.Time `msgpack:"at"`
}

// VectorID returns the cache key for text embedded under namespace.
func VectorID(namespace, text string) ID {
	return IDFromContent(namespace + "\x00" + text)
}

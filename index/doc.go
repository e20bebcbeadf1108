// Package index builds the in-memory semantic index over a hymn corpus and
// answers nearest-neighbor queries against it.
//
// Build embeds every hymn body in corpus order, normalizes the vectors to
// unit length, and keeps them in parallel with the hymns. Embedding runs in
// batches on a worker pool with retry and exponential backoff, and can be
// backed by a persisted vector cache so unchanged hymns are not embedded
// twice. Nearest ranks the whole corpus by cosine similarity with a linear
// scan; the corpus is small enough that an approximate index would buy
// nothing.
package index

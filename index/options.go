package index

import (
	"io"
	"log/slog"
	"runtime"
	"time"

	"github.com/poiesic/hymnal/storage"
)

const (
	// DefaultBatchSize is the number of hymn bodies sent per embedding call.
	DefaultBatchSize = 32
	// DefaultMaxAttempts is the number of tries per batch.
	DefaultMaxAttempts = 3
	// DefaultRetryDelay is the first backoff delay between tries.
	DefaultRetryDelay = 500 * time.Millisecond
)

type options struct {
	batchSize        int
	poolSize         int
	maxAttempts      int
	retryDelay       time.Duration
	cache            storage.VectorRepository
	namespace        string
	progress         io.Writer
	progressInterval int
	logger           *slog.Logger
}

func defaultOptions() *options {
	return &options{
		batchSize:   DefaultBatchSize,
		poolSize:    max(runtime.NumCPU()/2, 1),
		maxAttempts: DefaultMaxAttempts,
		retryDelay:  DefaultRetryDelay,
		logger:      slog.Default().With("component", "index"),
	}
}

// Option configures Build.
type Option func(*options)

// WithBatchSize sets how many bodies are embedded per call.
// Values below 1 are treated as 1.
func WithBatchSize(size int) Option {
	return func(o *options) {
		o.batchSize = max(size, 1)
	}
}

// WithPoolSize sets the number of batches embedded concurrently.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(o *options) {
		o.poolSize = max(size, 1)
	}
}

// WithRetry sets the attempts per batch and the initial backoff delay.
func WithRetry(maxAttempts int, baseDelay time.Duration) Option {
	return func(o *options) {
		o.maxAttempts = maxAttempts
		o.retryDelay = baseDelay
	}
}

// WithVectorCache reuses vectors persisted in repo under namespace and
// stores newly computed ones. The namespace should identify the embedding
// model so vectors from different models never mix.
func WithVectorCache(repo storage.VectorRepository, namespace string) Option {
	return func(o *options) {
		o.cache = repo
		o.namespace = namespace
	}
}

// WithProgress writes progress lines to w every interval hymns.
func WithProgress(w io.Writer, interval int) Option {
	return func(o *options) {
		o.progress = w
		o.progressInterval = interval
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = slog.Default()
		}
		o.logger = logger.With("component", "index")
	}
}

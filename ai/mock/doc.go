// Package mock provides test double implementations of AI service interfaces.
//
// MockEmbedder implements ai.Embedder so tests run without an embedding
// server and with controlled, deterministic vectors.
//
// # Usage in Tests
//
//	// Default behavior: deterministic vectors from a text hash
//	embedder := mock.NewMockEmbedder()
//	vector, err := embedder.EmbedText(ctx, "test")
//
//	// Custom behavior injection
//	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
//	    return []float32{0.1, 0.2, 0.3}, nil
//	}
//
//	// Check call counts
//	count := embedder.CallCount()
package mock

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

// Package storage provides the persistence abstraction for cached
// embedding vectors.
//
// Building the embedding index means embedding every hymn body, which is
// the slow part of startup. A VectorRepository lets the index reuse
// vectors from earlier runs: entries are keyed by core.VectorID, a
// content hash of the embedding model name and the embedded text, so a
// changed hymn or a different model simply misses the cache.
//
// # Constructor Return Type Pattern
//
// Public constructors return the VectorRepository interface:
//
//	repo, err := badger.NewVectorRepository(backend)  // returns storage.VectorRepository
//
// Internal constructors may return concrete types since they're only used
// within the implementation package.
//
// # Usage
//
//	backend, err := badger.OpenBackend("/path/to/cache", false)
//	if err != nil {
//	    return err
//	}
//	repo, err := badger.NewVectorRepository(backend)
//	if err != nil {
//	    return err
//	}
//	defer repo.Close()
//
// Use in tests with in-memory storage:
//
//	repo, err := badger.NewMemoryVectorRepository()
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
package storage

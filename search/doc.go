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

// Package search resolves free-form queries against a hymn corpus.
//
// The Resolver tries a fixed chain of strategies and stops at the first one
// that produces matches:
//
//  1. Catalog number: "25" or "GHS 25" returns exactly that hymn.
//  2. Scripture expansion: references such as "John 3:16" are replaced by
//     their passage text, or dropped when they cannot be resolved. This
//     step rewrites the query and never produces matches by itself.
//  3. Substring: hymns whose body contains the text, ignoring case, in
//     corpus order.
//  4. Semantic: the nearest hymns in the embedding index.
//
// Exact strategies report a score of 1.0; semantic matches report cosine
// similarity. Only an empty query is an error. Failures of the scripture
// service, the embedder, or the index are logged and leave fewer or no
// matches.
package search

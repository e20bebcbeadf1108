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

// Package scripture detects scripture references inside free-text queries
// and expands them into passage text through an external lookup service.
//
// A query such as "comfort in sorrow John 14:1-3" carries no useful literal
// or semantic signal in the reference tokens themselves. The Rewriter finds
// each reference, asks a Resolver for its text, and splices the text into
// the query in place of the reference. A reference that cannot be resolved
// is removed rather than left verbatim.
//
// # Detection
//
// References are found by scanning the query's tokens for an optional
// leading numeral 1-3, a name, a chapter number, and an optional ":verse"
// with an optional "-end" verse:
//
//	John 3:16
//	1 John 4:7-8
//	Psalm 23        (chapter only, recognized for known book names)
//
// # Resolution
//
// Resolver is the oracle contract. BibleAPI implements it against a
// bible-api.com compatible HTTP service, and CachedResolver memoizes any
// Resolver in memory. Every failure, whether transport, status, or decode,
// is reported as ErrNotFound so callers only ever see resolved or not.
package scripture

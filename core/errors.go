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


package core

import "errors"

// Domain validation errors
var (
	// ErrMalformedRecord indicates a hymn was missing its number or title
	// when it was finalized.
	ErrMalformedRecord = errors.New("malformed hymn record")

	// ErrMissingNumber indicates the hymn header carried no number token.
	ErrMissingNumber = errors.New("hymn number missing")

	// ErrMissingTitle indicates no title line was seen for the hymn.
	ErrMissingTitle = errors.New("hymn title missing")
)

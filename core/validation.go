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

import "fmt"

// ValidateHymn validates a Hymn according to domain rules.
//
// Validation rules:
//   - Number must not be empty
//   - Title must not be empty
//
// NOT validated:
//   - Body (a hymn with a title but no lyric lines is still well-formed)
func ValidateHymn(hymn *Hymn) error {
	if hymn == nil {
		return fmt.Errorf("%w: hymn is nil", ErrMalformedRecord)
	}

	if hymn.Number == "" {
		return fmt.Errorf("%w: %w", ErrMalformedRecord, ErrMissingNumber)
	}

	if hymn.Title == "" {
		return fmt.Errorf("%w: %w", ErrMalformedRecord, ErrMissingTitle)
	}

	return nil
}

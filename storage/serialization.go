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

package storage

import (
	"fmt"

	"github.com/poiesic/hymnal/core"
	"github.com/vmihailenco/msgpack/v5"
)

// MarshalCachedVector serializes a CachedVector to bytes.
func MarshalCachedVector(v *core.CachedVector) ([]byte, error) {
	if v == nil {
		return nil, fmt.Errorf("%w: nil vector", ErrSerializationFailed)
	}
	data, err := msgpack.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return data, nil
}

// UnmarshalCachedVector deserializes a CachedVector from bytes.
func UnmarshalCachedVector(data []byte) (*core.CachedVector, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty data", ErrSerializationFailed)
	}
	var v core.CachedVector
	if err := msgpack.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &v, nil
}

// ValidateCachedVector checks that v can be stored.
func ValidateCachedVector(v *core.CachedVector) error {
	switch {
	case v == nil:
		return fmt.Errorf("%w: nil vector", ErrInvalidVector)
	case v.Namespace == "":
		return fmt.Errorf("%w: missing namespace", ErrInvalidVector)
	case len(v.Vector) == 0:
		return fmt.Errorf("%w: no components", ErrInvalidVector)
	}
	return nil
}

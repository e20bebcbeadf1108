package storage

import (
	"testing"
	"time"

	"github.com/poiesic/hymnal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshalCachedVector(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	v := &core.CachedVector{
		Id:        core.VectorID("embeddinggemma", "Be thou my vision"),
		Namespace: "embeddinggemma",
		Vector:    []float32{0.25, -0.5, 0.75, 0},
		StoredAt:  now,
	}

	data, err := MarshalCachedVector(v)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	decoded, err := UnmarshalCachedVector(data)
	require.NoError(t, err)
	assert.Equal(t, v.Id, decoded.Id)
	assert.Equal(t, v.Namespace, decoded.Namespace)
	assert.Equal(t, v.Vector, decoded.Vector)
	assert.True(t, v.StoredAt.Equal(decoded.StoredAt))
}

func TestMarshalCachedVector_Nil(t *testing.T) {
	_, err := MarshalCachedVector(nil)
	assert.ErrorIs(t, err, ErrSerializationFailed)
}

func TestUnmarshalCachedVector_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty data", []byte{}},
		{"garbage", []byte{0xc1, 0xc1, 0xc1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalCachedVector(tt.data)
			assert.ErrorIs(t, err, ErrSerializationFailed)
		})
	}
}

func TestValidateCachedVector(t *testing.T) {
	tests := []struct {
		name    string
		vector  *core.CachedVector
		wantErr bool
	}{
		{"nil", nil, true},
		{"missing namespace", &core.CachedVector{Vector: []float32{1}}, true},
		{"no components", &core.CachedVector{Namespace: "m"}, true},
		{"valid", &core.CachedVector{Namespace: "m", Vector: []float32{1}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCachedVector(tt.vector)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidVector)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

package scripture

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// staticResolver resolves references from a fixed table keyed by Reference.String().
type staticResolver struct {
	texts map[string]string
	calls []string
}

func (s *staticResolver) Resolve(ctx context.Context, ref Reference) (string, error) {
	s.calls = append(s.calls, ref.String())
	if text, ok := s.texts[ref.String()]; ok {
		return text, nil
	}
	return "", fmt.Errorf("%w: %s", ErrNotFound, ref)
}

func TestRewrite_Resolved(t *testing.T) {
	r := &staticResolver{texts: map[string]string{"John 3:16": "For God so loved..."}}
	rw := NewRewriter(r)

	got := rw.Rewrite(context.Background(), "topic X John 3:16")
	assert.Equal(t, "topic X For God so loved...", got.Text)
	require.Len(t, got.Substitutions, 1)
	assert.True(t, got.Substitutions[0].Resolved)
	assert.Equal(t, "For God so loved...", got.Substitutions[0].Text)
	assert.True(t, got.Changed())
}

func TestRewrite_NotFoundRemovesReference(t *testing.T) {
	rw := NewRewriter(&staticResolver{})

	got := rw.Rewrite(context.Background(), "topic X John 3:16")
	assert.Equal(t, "topic X ", got.Text)
	require.Len(t, got.Substitutions, 1)
	assert.False(t, got.Substitutions[0].Resolved)
	assert.Empty(t, got.Substitutions[0].Text)
}

func TestRewrite_MultipleReferences(t *testing.T) {
	r := &staticResolver{texts: map[string]string{
		"John 3:16": "For God so loved the world",
		"Psalm 23":  "The Lord is my shepherd",
	}}
	rw := NewRewriter(r)

	got := rw.Rewrite(context.Background(), "John 3:16, Rom 8:28 and Psalm 23!")
	assert.Equal(t, "For God so loved the world, and The Lord is my shepherd!", got.Text)
	assert.Equal(t, []string{"John 3:16", "Rom 8:28", "Psalm 23"}, r.calls)
	require.Len(t, got.Substitutions, 3)
	assert.False(t, got.Substitutions[1].Resolved)
}

func TestRewrite_RemovedReferenceLeavesOneSpace(t *testing.T) {
	rw := NewRewriter(&staticResolver{})

	got := rw.Rewrite(context.Background(), "Sing Psalm 25 with me")
	assert.Equal(t, "Sing with me", got.Text)
	assert.True(t, got.OnlyUnresolvedChapters())

	got = rw.Rewrite(context.Background(), "Psalm 25 with me")
	assert.Equal(t, " with me", got.Text)
}

func TestRewritten_OnlyUnresolvedChapters(t *testing.T) {
	r := &staticResolver{texts: map[string]string{"Psalm 23": "The Lord is my shepherd"}}
	rw := NewRewriter(r)

	tests := []struct {
		query string
		want  bool
	}{
		{"amazing grace", false},
		{"Psalm 25", true},
		{"Psalm 25 and Isaiah 40", true},
		{"Psalm 23", false},
		{"Psalm 25 and John 3:16", false},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, rw.Rewrite(context.Background(), tt.query).OnlyUnresolvedChapters())
		})
	}
}

func TestRewrite_NoReferences(t *testing.T) {
	r := &staticResolver{}
	rw := NewRewriter(r)

	got := rw.Rewrite(context.Background(), "  amazing grace ")
	assert.Equal(t, "  amazing grace ", got.Text)
	assert.False(t, got.Changed())
	assert.Empty(t, r.calls)
}

func TestRewrite_OnlyReferenceUnresolved(t *testing.T) {
	rw := NewRewriter(&staticResolver{})

	got := rw.Rewrite(context.Background(), "John 3:16")
	assert.Empty(t, got.Text)
}

func TestRewrite_NilResolver(t *testing.T) {
	rw := NewRewriter(nil, WithLogger(nil))

	got := rw.Rewrite(context.Background(), "hope Romans 15:13")
	assert.Equal(t, "hope ", got.Text)
}

func TestLookup(t *testing.T) {
	ref := Reference{Name: "John", Chapter: 3, Verse: 16}
	ctx := context.Background()

	t.Run("trims resolved text", func(t *testing.T) {
		r := ResolverFunc(func(context.Context, Reference) (string, error) {
			return "  For God so loved  \n", nil
		})
		text, ok := Lookup(ctx, r, ref, nil)
		assert.True(t, ok)
		assert.Equal(t, "For God so loved", text)
	})

	t.Run("blank text is not found", func(t *testing.T) {
		r := ResolverFunc(func(context.Context, Reference) (string, error) {
			return " \n ", nil
		})
		_, ok := Lookup(ctx, r, ref, nil)
		assert.False(t, ok)
	})

	t.Run("arbitrary error collapses", func(t *testing.T) {
		r := ResolverFunc(func(context.Context, Reference) (string, error) {
			return "", errors.New("connection reset")
		})
		text, ok := Lookup(ctx, r, ref, nil)
		assert.False(t, ok)
		assert.Empty(t, text)
	})

	t.Run("nil resolver", func(t *testing.T) {
		_, ok := Lookup(ctx, nil, ref, nil)
		assert.False(t, ok)
	})
}

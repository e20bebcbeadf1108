package scripture

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBibleAPI_ResolveVerse(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"reference":"John 3:16","text":"For God so loved the world,\nthat he gave his one and only Son\n"}`))
	}))
	defer srv.Close()

	c := NewBibleAPI(WithBaseURL(srv.URL+"/"), WithTranslation("web"))
	text, err := c.Resolve(context.Background(), Reference{Name: "John", Chapter: 3, Verse: 16})
	require.NoError(t, err)
	assert.Equal(t, "For God so loved the world, that he gave his one and only Son", text)
	assert.Equal(t, "/John 3:16", gotPath)
	assert.Equal(t, "translation=web", gotQuery)
}

func TestBibleAPI_FieldPreference(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"text":"verse text","summary":"chapter summary"}`))
	}))
	defer srv.Close()

	c := NewBibleAPI(WithBaseURL(srv.URL))
	ctx := context.Background()

	text, err := c.Resolve(ctx, Reference{Name: "John", Chapter: 3, Verse: 16})
	require.NoError(t, err)
	assert.Equal(t, "verse text", text)

	text, err = c.Resolve(ctx, Reference{Name: "Psalm", Chapter: 23})
	require.NoError(t, err)
	assert.Equal(t, "chapter summary", text)
}

func TestBibleAPI_FallsBackToOtherField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"summary":"only a summary"}`))
	}))
	defer srv.Close()

	c := NewBibleAPI(WithBaseURL(srv.URL))
	text, err := c.Resolve(context.Background(), Reference{Name: "John", Chapter: 3, Verse: 16})
	require.NoError(t, err)
	assert.Equal(t, "only a summary", text)
}

func TestBibleAPI_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"not found status", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"not found"}`))
		}},
		{"malformed json", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"text":`))
		}},
		{"neither field", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"reference":"John 3:16"}`))
		}},
		{"error field", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"error":"invalid book"}`))
		}},
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			c := NewBibleAPI(WithBaseURL(srv.URL))
			text, err := c.Resolve(context.Background(), Reference{Name: "John", Chapter: 3, Verse: 16})
			assert.ErrorIs(t, err, ErrNotFound)
			assert.Empty(t, text)
		})
	}
}

func TestBibleAPI_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	c := NewBibleAPI(WithBaseURL(srv.URL), WithTimeout(50*time.Millisecond))
	_, err := c.Resolve(context.Background(), Reference{Name: "John", Chapter: 3, Verse: 16})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBibleAPI_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewBibleAPI(WithBaseURL(url), WithTimeout(time.Second))
	_, err := c.Resolve(context.Background(), Reference{Name: "John", Chapter: 3, Verse: 16})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBibleAPI_Retry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"text":"third time"}`))
	}))
	defer srv.Close()

	c := NewBibleAPI(WithBaseURL(srv.URL), WithRetry(3, time.Millisecond))
	text, err := c.Resolve(context.Background(), Reference{Name: "John", Chapter: 3, Verse: 16})
	require.NoError(t, err)
	assert.Equal(t, "third time", text)
	assert.Equal(t, int32(3), calls.Load())
}

func TestBibleAPI_NoRetryOnClientError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewBibleAPI(WithBaseURL(srv.URL), WithRetry(3, time.Millisecond))
	_, err := c.Resolve(context.Background(), Reference{Name: "Hezekiah", Chapter: 1, Verse: 1})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, int32(1), calls.Load())
}

func TestBibleAPI_NoRetryOnServiceError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"error":"not found"}`))
	}))
	defer srv.Close()

	c := NewBibleAPI(WithBaseURL(srv.URL), WithRetry(3, time.Millisecond))
	_, err := c.Resolve(context.Background(), Reference{Name: "John", Chapter: 99, Verse: 1})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "not found")
	assert.Equal(t, int32(1), calls.Load())
}

func TestBibleAPI_RetryStopsOnCancel(t *testing.T) {
	var calls atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		cancel()
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewBibleAPI(WithBaseURL(srv.URL), WithRetry(5, time.Millisecond))
	_, err := c.Resolve(ctx, Reference{Name: "John", Chapter: 3, Verse: 16})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, int32(1), calls.Load())
}

func TestBibleAPI_RewriteEndToEnd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/John 3:16" {
			_, _ = w.Write([]byte(`{"text":"For God so loved..."}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	rw := NewRewriter(NewBibleAPI(WithBaseURL(srv.URL)))
	assert.Equal(t, "topic X For God so loved...", rw.Rewrite(context.Background(), "topic X John 3:16").Text)
	assert.Equal(t, "topic X ", rw.Rewrite(context.Background(), "topic X Jude 9:99").Text)
}

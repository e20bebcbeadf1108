package scripture

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/poiesic/hymnal/retry"
)

const (
	// DefaultBaseURL is the public bible-api.com service.
	DefaultBaseURL = "https://bible-api.com"
	// DefaultTimeout bounds a single lookup attempt.
	DefaultTimeout = 10 * time.Second

	maxResponseSize = 4 << 20
)

// ClientOption configures a BibleAPI client.
type ClientOption func(*BibleAPI)

// WithBaseURL sets the service base URL.
func WithBaseURL(base string) ClientOption {
	return func(c *BibleAPI) {
		c.baseURL = strings.TrimRight(base, "/")
	}
}

// WithTimeout bounds each lookup attempt. Non-positive values are ignored.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *BibleAPI) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *BibleAPI) {
		if client != nil {
			c.client = client
		}
	}
}

// WithRetry sets how many attempts a lookup makes and the delay before the
// second one; the delay doubles after each attempt. Only transport errors
// and 5xx/429 responses are retried.
func WithRetry(attempts int, delay time.Duration) ClientOption {
	return func(c *BibleAPI) {
		if attempts < 1 {
			attempts = 1
		}
		c.attempts = attempts
		c.retryDelay = delay
	}
}

// WithTranslation requests a specific translation, e.g. "kjv" or "web".
func WithTranslation(translation string) ClientOption {
	return func(c *BibleAPI) {
		c.translation = translation
	}
}

// WithClientLogger sets the logger for request diagnostics.
// If logger is nil, slog.Default() is used.
func WithClientLogger(logger *slog.Logger) ClientOption {
	return func(c *BibleAPI) {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger.With("component", "bibleapi")
	}
}

// BibleAPI resolves references against a bible-api.com compatible service.
type BibleAPI struct {
	baseURL     string
	translation string
	timeout     time.Duration
	attempts    int
	retryDelay  time.Duration
	client      *http.Client
	logger      *slog.Logger
}

var _ Resolver = (*BibleAPI)(nil)

// NewBibleAPI creates a client with the given options.
func NewBibleAPI(opts ...ClientOption) *BibleAPI {
	c := &BibleAPI{
		baseURL:  DefaultBaseURL,
		timeout:  DefaultTimeout,
		attempts: 1,
		client:   http.DefaultClient,
		logger:   slog.Default().With("component", "bibleapi"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// passage is the subset of the service response that matters here.
type passage struct {
	Text    string `json:"text"`
	Summary string `json:"summary"`
	Error   string `json:"error"`
}

// Resolve fetches the text for ref. Verse references prefer the "text"
// field and chapter references prefer "summary"; either field is accepted.
func (c *BibleAPI) Resolve(ctx context.Context, ref Reference) (string, error) {
	var p *passage
	attempt := 0
	err := retry.Do(ctx, func(ctx context.Context) error {
		attempt++
		var err error
		p, err = c.fetch(ctx, ref)
		if err != nil {
			c.logger.Debug("lookup attempt failed", "reference", ref.String(), "attempt", attempt, "err", err)
		}
		return err
	}, c.attempts, c.retryDelay)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrNotFound, ref, err)
	}

	text := pickText(ref, p)
	if text == "" {
		return "", fmt.Errorf("%w: %s: empty response", ErrNotFound, ref)
	}
	return text, nil
}

// fetch performs one request. Failures that another attempt cannot fix
// are marked with retry.Permanent.
func (c *BibleAPI) fetch(ctx context.Context, ref Reference) (*passage, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	endpoint := c.baseURL + "/" + url.PathEscape(ref.String())
	if c.translation != "" {
		endpoint += "?translation=" + url.QueryEscape(c.translation)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, retry.Permanent(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		err := fmt.Errorf("bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			return nil, err
		}
		return nil, retry.Permanent(err)
	}

	var p passage
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(&p); err != nil {
		return nil, retry.Permanent(fmt.Errorf("failed to decode response: %w", err))
	}
	if p.Error != "" {
		return nil, retry.Permanent(errors.New(p.Error))
	}
	return &p, nil
}

// pickText chooses the response field for ref and flattens its whitespace.
func pickText(ref Reference, p *passage) string {
	first, second := p.Text, p.Summary
	if ref.IsChapter() {
		first, second = p.Summary, p.Text
	}
	if t := collapseSpace(first); t != "" {
		return t
	}
	return collapseSpace(second)
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

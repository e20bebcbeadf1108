package scripture

import (
	"context"
	"errors"
	"log/slog"
	"strings"
)

// Resolver looks up the text of a scripture reference.
// Implementations report every failure as an error wrapping ErrNotFound.
type Resolver interface {
	Resolve(ctx context.Context, ref Reference) (string, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(ctx context.Context, ref Reference) (string, error)

// Resolve calls f(ctx, ref).
func (f ResolverFunc) Resolve(ctx context.Context, ref Reference) (string, error) {
	return f(ctx, ref)
}

// Lookup resolves ref and collapses every failure into ok == false.
// Not-found results are logged at info level and any other failure at warn
// level. A nil resolver resolves nothing.
func Lookup(ctx context.Context, r Resolver, ref Reference, logger *slog.Logger) (string, bool) {
	if logger == nil {
		logger = slog.Default()
	}
	if r == nil {
		logger.Debug("no scripture resolver configured", "reference", ref.String())
		return "", false
	}
	text, err := r.Resolve(ctx, ref)
	if err != nil {
		level := slog.LevelWarn
		if errors.Is(err, ErrNotFound) {
			level = slog.LevelInfo
		}
		logger.Log(ctx, level, "scripture lookup failed", "reference", ref.String(), "err", err)
		return "", false
	}
	text = strings.TrimSpace(text)
	if text == "" {
		logger.Info("scripture lookup returned no text", "reference", ref.String())
		return "", false
	}
	return text, true
}

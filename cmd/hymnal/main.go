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

package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/poiesic/hymnal"
	"github.com/poiesic/hymnal/ai"
	"github.com/poiesic/hymnal/core"
	"github.com/poiesic/hymnal/index"
	"github.com/poiesic/hymnal/scripture"
	"github.com/poiesic/hymnal/search"
	"github.com/urfave/cli/v2"
)

func main() {
	// Values from .env become flag defaults through EnvVars.
	_ = godotenv.Load()

	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "hymnal",
		Usage: "Find hymns by number, scripture reference, lyric or topic",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "warn",
				EnvVars: []string{"HYMNAL_LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "corpus",
				Aliases: []string{"c"},
				Usage:   "Path to the hymn corpus file",
				Value:   "hymns.txt",
				EnvVars: []string{"HYMNAL_CORPUS"},
			},
			&cli.StringFlag{
				Name:    "embedding-host",
				Usage:   "Embedding service host URL",
				Value:   "http://localhost:11434/v1",
				EnvVars: []string{"HYMNAL_EMBEDDING_HOST"},
			},
			&cli.StringFlag{
				Name:    "embedding-model",
				Usage:   "Embedding model name",
				Value:   "embeddinggemma",
				EnvVars: []string{"HYMNAL_EMBEDDING_MODEL"},
			},
			&cli.StringFlag{
				Name:    "api-token",
				Usage:   "Bearer token for the embedding service",
				EnvVars: []string{"HYMNAL_API_TOKEN"},
			},
			&cli.StringFlag{
				Name:    "bible-api-url",
				Usage:   "Base URL of the scripture lookup service",
				Value:   scripture.DefaultBaseURL,
				EnvVars: []string{"HYMNAL_BIBLE_API_URL"},
			},
			&cli.DurationFlag{
				Name:    "scripture-timeout",
				Usage:   "Timeout for one scripture lookup",
				Value:   scripture.DefaultTimeout,
				EnvVars: []string{"HYMNAL_SCRIPTURE_TIMEOUT"},
			},
			&cli.BoolFlag{
				Name:    "no-scripture",
				Usage:   "Drop scripture references from queries instead of looking them up",
				EnvVars: []string{"HYMNAL_NO_SCRIPTURE"},
			},
			&cli.StringFlag{
				Name:    "cache-dir",
				Usage:   "BadgerDB directory for persisted embedding vectors",
				EnvVars: []string{"HYMNAL_CACHE_DIR"},
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "search",
				Usage:     "Resolve a query into ranked hymns",
				ArgsUsage: "<query>",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "max-hits",
						Usage: "Maximum number of substring or semantic hits",
						Value: search.DefaultMaxHits,
					},
					&cli.BoolFlag{
						Name:  "trace",
						Usage: "Log each resolution stage (shown with --log-level debug)",
					},
				},
			},
			{
				Name:      "show",
				Usage:     "Print one hymn by catalog number",
				ArgsUsage: "<number>",
				Action:    showCommand,
			},
			{
				Name:   "index",
				Usage:  "Embed the corpus and persist the vectors",
				Action: indexCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "rebuild",
						Usage: "Discard persisted vectors for the current model first",
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of hymns sent in each embedding request",
						Value: index.DefaultBatchSize,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N hymns",
						Value: 50,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum attempts for each embedding batch",
						Value: index.DefaultMaxAttempts,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				},
			},
		},
	}
}

// openHymnal builds a Hymnal from the global flags.
func openHymnal(c *cli.Context, extra ...hymnal.Option) (*hymnal.Hymnal, error) {
	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithAPIToken(c.String("api-token")),
	)
	if err := aiConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}

	opts := []hymnal.Option{hymnal.WithAIConfig(aiConfig)}
	if c.Bool("no-scripture") {
		opts = append(opts, hymnal.WithScriptureResolver(nil))
	} else {
		opts = append(opts, hymnal.WithScriptureOptions(
			scripture.WithBaseURL(c.String("bible-api-url")),
			scripture.WithTimeout(c.Duration("scripture-timeout")),
		))
	}
	if dir := c.String("cache-dir"); dir != "" {
		opts = append(opts, hymnal.WithVectorCacheDir(dir))
	}
	opts = append(opts, extra...)

	h, err := hymnal.Open(c.String("corpus"), opts...)
	if err != nil {
		return nil, err
	}
	if err := h.LoadError(); err != nil {
		fmt.Fprintf(c.App.ErrWriter, "warning: %v\n", err)
	}
	return h, nil
}

func searchCommand(c *cli.Context) error {
	ctx := context.Background()

	query := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("a query is required")
	}
	if c.Int("max-hits") <= 0 {
		return fmt.Errorf("max-hits must be greater than 0")
	}

	h, err := openHymnal(c, hymnal.WithSearchOptions(search.WithMaxHits(c.Int("max-hits"))))
	if err != nil {
		return err
	}
	defer h.Close()

	var result *core.Result
	if c.Bool("trace") {
		result, err = h.SearchWithMonitor(ctx, query, search.NewLogMonitor(slog.Default()))
	} else {
		result, err = h.Search(ctx, query)
	}
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	printResult(c.App.Writer, result)
	return nil
}

func printResult(w io.Writer, result *core.Result) {
	if result.SearchText != strings.TrimSpace(result.Query) {
		fmt.Fprintf(w, "Searching for: %q\n", result.SearchText)
	}
	if len(result.Matches) == 0 {
		fmt.Fprintln(w, "No hymns found")
		return
	}
	for i, m := range result.Matches {
		fmt.Fprintf(w, "%d. %s [%s %.3f]\n", i+1, m.Hymn.Key(), m.Kind, m.Score)
	}
}

func showCommand(c *cli.Context) error {
	number := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if len(number) >= len(core.CatalogPrefix) && strings.EqualFold(number[:len(core.CatalogPrefix)], core.CatalogPrefix) {
		number = strings.TrimSpace(number[len(core.CatalogPrefix):])
	}
	if number == "" {
		return fmt.Errorf("a hymn number is required")
	}

	h, err := openHymnal(c, hymnal.WithScriptureResolver(nil))
	if err != nil {
		return err
	}
	defer h.Close()

	hymn, ok := h.Lookup(number)
	if !ok {
		return fmt.Errorf("hymn %s not found", number)
	}
	printHymn(c.App.Writer, hymn)
	return nil
}

func printHymn(w io.Writer, hymn *core.Hymn) {
	fmt.Fprintln(w, hymn.Key())
	fmt.Fprintln(w)
	for _, line := range hymn.Lines() {
		fmt.Fprintln(w, line)
	}
}

func indexCommand(c *cli.Context) error {
	ctx := context.Background()

	if c.String("cache-dir") == "" {
		return fmt.Errorf("cache-dir is required to persist vectors")
	}
	if c.Int("batch-size") <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if c.Int("report-interval") <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if c.Int("max-retries") <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	h, err := openHymnal(c,
		hymnal.WithScriptureResolver(nil),
		hymnal.WithIndexOptions(
			index.WithBatchSize(c.Int("batch-size")),
			index.WithRetry(c.Int("max-retries"), c.Duration("retry-delay")),
			index.WithProgress(c.App.ErrWriter, c.Int("report-interval")),
		),
	)
	if err != nil {
		return err
	}
	defer h.Close()

	cache := h.VectorCache()
	if cache == nil {
		return fmt.Errorf("failed to open vector cache in %s", c.String("cache-dir"))
	}

	fmt.Fprintf(c.App.ErrWriter, "Corpus: %s (%d hymns)\n", c.String("corpus"), h.Corpus().Len())
	fmt.Fprintf(c.App.ErrWriter, "Embedding host: %s\n", c.String("embedding-host"))
	fmt.Fprintf(c.App.ErrWriter, "Embedding model: %s\n", h.Namespace())
	fmt.Fprintln(c.App.ErrWriter)

	if c.Bool("rebuild") {
		removed, err := cache.DeleteNamespace(ctx, h.Namespace())
		if err != nil {
			return fmt.Errorf("failed to clear vector cache: %w", err)
		}
		fmt.Fprintf(c.App.ErrWriter, "Discarded %d cached vectors\n", removed)
	}

	ix, err := h.Index(ctx)
	if err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}

	stored, err := cache.CountVectors(ctx, h.Namespace())
	if err != nil {
		return fmt.Errorf("failed to count cached vectors: %w", err)
	}
	fmt.Fprintf(c.App.Writer, "Indexed %d hymns (%d dimensions), %d vectors cached\n", ix.Len(), ix.Dimensions(), stored)
	return nil
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}

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
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/urfave/cli/v2"

	rumi "github.com/agamjn/rumi"
	"github.com/agamjn/rumi/ai"
	"github.com/agamjn/rumi/chunker"
	"github.com/agamjn/rumi/core"
	"github.com/agamjn/rumi/ingestion"
	"github.com/agamjn/rumi/vectorstore"
)

func main() {
	storeFlags := []cli.Flag{
		&cli.StringFlag{
			Name:  "db",
			Usage: "Path to embedded store directory (mutually exclusive with --qdrant)",
		},
		&cli.StringFlag{
			Name:  "qdrant",
			Usage: "Qdrant base URL, e.g. http://localhost:6333",
		},
		&cli.StringFlag{
			Name:  "collection",
			Usage: "Collection name",
			Value: "rumi_content",
		},
		&cli.IntFlag{
			Name:  "dimension",
			Usage: "Vector dimension (must match the embedding model)",
			Value: 1536,
		},
		&cli.StringFlag{
			Name:  "embedding-host",
			Usage: "Embedding service host URL",
			Value: "https://api.openai.com/v1",
		},
		&cli.StringFlag{
			Name:    "api-token",
			Usage:   "Embedding service API token",
			EnvVars: []string{"RUMI_API_TOKEN", "OPENAI_API_KEY"},
			Value:   "none",
		},
		&cli.StringFlag{
			Name:  "embedding-model",
			Usage: "Embedding model name",
			Value: "text-embedding-3-small",
		},
	}

	app := &cli.App{
		Name:  "rumi",
		Usage: "Content indexing and semantic retrieval over a vector store",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "init",
				Usage:  "Create the collection",
				Action: initCommand,
				Flags: append([]cli.Flag{
					&cli.BoolFlag{
						Name:  "recreate",
						Usage: "Drop and recreate the collection, destroying stored points",
					},
				}, storeFlags...),
			},
			{
				Name:      "ingest",
				Usage:     "Chunk, embed, and index text files as documents",
				ArgsUsage: "FILE [FILE...]",
				Action:    ingestCommand,
				Flags: append([]cli.Flag{
					&cli.IntFlag{
						Name:  "max-tokens",
						Usage: "Maximum tokens per chunk",
						Value: chunker.DefaultMaxTokens,
					},
					&cli.IntFlag{
						Name:  "pool-size",
						Usage: "Concurrent document workers",
						Value: 4,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for transient failures",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
					&cli.StringFlag{
						Name:  "category",
						Usage: "Category metadata attached to every document",
					},
				}, storeFlags...),
			},
			{
				Name:      "search",
				Usage:     "Search indexed content",
				ArgsUsage: "QUERY",
				Action:    searchCommand,
				Flags: append([]cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of results",
						Value: 5,
					},
					&cli.StringFlag{
						Name:  "category",
						Usage: "Only return chunks with this category",
					},
					&cli.StringSliceFlag{
						Name:  "tag",
						Usage: "Only return chunks carrying any of these tags",
					},
					&cli.Float64Flag{
						Name:  "min-score",
						Usage: "Drop results scoring below this threshold",
					},
				}, storeFlags...),
			},
			{
				Name:   "stats",
				Usage:  "Show collection point count and status",
				Action: statsCommand,
				Flags:  storeFlags,
			},
			{
				Name:      "delete",
				Usage:     "Delete points by chunk key",
				ArgsUsage: "CHUNK_KEY [CHUNK_KEY...]",
				Action:    deleteCommand,
				Flags:     storeFlags,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func openIndex(c *cli.Context, extra ...rumi.IndexOption) (*rumi.Index, error) {
	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithAPIToken(c.String("api-token")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithDimensions(c.Int("dimension")),
	)

	collection := vectorstore.CollectionConfig{
		Name:      c.String("collection"),
		Dimension: c.Int("dimension"),
		Distance:  vectorstore.DistanceCosine,
	}

	opts := append([]rumi.IndexOption{
		rumi.WithAIConfig(aiConfig),
		rumi.WithCollection(collection),
	}, extra...)

	qdrantURL := c.String("qdrant")
	dbPath := c.String("db")

	switch {
	case qdrantURL != "" && dbPath != "":
		return nil, fmt.Errorf("--db and --qdrant are mutually exclusive")
	case qdrantURL != "":
		return rumi.Connect(qdrantURL, opts...)
	case dbPath != "":
		return rumi.Open(dbPath, opts...)
	default:
		return nil, fmt.Errorf("one of --db or --qdrant is required")
	}
}

func initCommand(c *cli.Context) error {
	idx, err := openIndex(c)
	if err != nil {
		return err
	}
	defer idx.Close()

	if err := idx.CreateCollection(context.Background(), c.Bool("recreate")); err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Collection %q ready\n", c.String("collection"))
	return nil
}

func ingestCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("at least one file is required")
	}

	idx, err := openIndex(c,
		rumi.WithChunkerOptions(chunker.WithMaxTokens(c.Int("max-tokens"))))
	if err != nil {
		return err
	}
	defer idx.Close()

	pipeline, err := idx.NewIngestionPipeline(
		ingestion.WithPoolSize(c.Int("pool-size")),
		ingestion.WithRetry(c.Int("max-retries"), c.Duration("retry-delay")),
	)
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}
	defer pipeline.Release()

	docs := make([]*core.Document, 0, c.NArg())
	for _, path := range c.Args().Slice() {
		text, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		metadata := map[string]any{"source": path}
		if category := c.String("category"); category != "" {
			metadata["category"] = category
		}

		docs = append(docs, &core.Document{
			ID:       "file:" + strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
			Text:     string(text),
			Metadata: metadata,
		})
	}

	reports, err := pipeline.IngestAll(context.Background(), docs)
	if err != nil {
		return err
	}

	var failed int
	for _, report := range reports {
		switch {
		case report.Err != nil:
			failed++
			fmt.Fprintf(os.Stderr, "%s: FAILED: %v\n", report.DocumentID, report.Err)
		case report.Skipped:
			fmt.Fprintf(os.Stderr, "%s: already indexed, skipped\n", report.DocumentID)
		default:
			fmt.Fprintf(os.Stderr, "%s: %d chunks, %d tokens, $%.6f\n",
				report.DocumentID, report.ChunksWritten, report.Tokens, report.CostUSD)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed", failed, len(reports))
	}
	return nil
}

func searchCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("a query is required")
	}
	query := strings.Join(c.Args().Slice(), " ")

	idx, err := openIndex(c)
	if err != nil {
		return err
	}
	defer idx.Close()

	searcher, err := idx.NewSearcher()
	if err != nil {
		return fmt.Errorf("failed to create searcher: %w", err)
	}

	var filters *vectorstore.Filters
	if c.String("category") != "" || len(c.StringSlice("tag")) > 0 || c.Float64("min-score") > 0 {
		filters = &vectorstore.Filters{MinScore: float32(c.Float64("min-score"))}
		if category := c.String("category"); category != "" {
			filters.Match = map[string]any{"category": category}
		}
		if tags := c.StringSlice("tag"); len(tags) > 0 {
			filters.MatchAny = map[string][]string{"tags": tags}
		}
	}

	results, err := searcher.Query(context.Background(), query, c.Int("limit"), filters)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if len(results) == 0 {
		fmt.Println("No results.")
		return nil
	}

	for i, result := range results {
		fmt.Printf("%d. %s (score %.4f)\n", i+1, result.ChunkID, result.Score)
		if text, ok := result.Payload[core.PayloadText].(string); ok {
			fmt.Printf("   %s\n", previewText(text, 200))
		}
	}
	return nil
}

// previewText truncates text to at most max bytes, backing up to a rune
// boundary so a multi-byte character is never cut in half.
func previewText(text string, max int) string {
	if len(text) <= max {
		return text
	}

	cut := max
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + "..."
}

func statsCommand(c *cli.Context) error {
	idx, err := openIndex(c)
	if err != nil {
		return err
	}
	defer idx.Close()

	stats, err := idx.Stats(context.Background())
	if err != nil {
		return fmt.Errorf("failed to read stats: %w", err)
	}

	fmt.Printf("Collection: %s\n", c.String("collection"))
	fmt.Printf("Points:     %d\n", stats.PointCount)
	fmt.Printf("Status:     %s\n", stats.Status)
	return nil
}

func deleteCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("at least one chunk key is required")
	}

	idx, err := openIndex(c)
	if err != nil {
		return err
	}
	defer idx.Close()

	ctx := context.Background()
	for _, key := range c.Args().Slice() {
		if err := idx.Store().Delete(ctx, key); err != nil {
			return fmt.Errorf("failed to delete %s: %w", key, err)
		}
		fmt.Fprintf(os.Stderr, "deleted %s\n", key)
	}
	return nil
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
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

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}

// Copyright 2025 kenvexar
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
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"github.com/kenvexar/discord-obsidian-memo-bot/ai"
	aimock "github.com/kenvexar/discord-obsidian-memo-bot/ai/mock"
	"github.com/kenvexar/discord-obsidian-memo-bot/ai/openai"
	"github.com/kenvexar/discord-obsidian-memo-bot/cache"
	"github.com/kenvexar/discord-obsidian-memo-bot/classify"
	"github.com/kenvexar/discord-obsidian-memo-bot/core"
	"github.com/kenvexar/discord-obsidian-memo-bot/pipeline"
	"github.com/kenvexar/discord-obsidian-memo-bot/ratelimit"
	"github.com/kenvexar/discord-obsidian-memo-bot/retry"
	"github.com/kenvexar/discord-obsidian-memo-bot/storage"
	"github.com/kenvexar/discord-obsidian-memo-bot/storage/badger"
	"github.com/kenvexar/discord-obsidian-memo-bot/vault"
)

// indexSubdir is where the fingerprint index lives under the vault root.
const indexSubdir = ".memobot/index"

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "memobot",
		Usage: "Enrich chat memos with AI metadata and file them into a note vault",
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
				Name:   "ingest",
				Usage:  "Run one content item through the enrichment pipeline",
				Action: ingestCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "vault",
						Aliases:  []string{"v"},
						Usage:    "Path to the note vault root",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "text",
						Usage: "Content text (reads stdin when omitted)",
					},
					&cli.StringFlag{
						Name:  "channel",
						Usage: "Source channel hint for classification",
					},
					&cli.StringFlag{
						Name:  "rules",
						Usage: "Path to a YAML classifier rules file",
					},
					&cli.StringFlag{
						Name:  "host",
						Usage: "Enrichment service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:  "model",
						Usage: "Enrichment model name",
						Value: "qwen2.5:3b",
					},
					&cli.StringFlag{
						Name:  "token",
						Usage: "Enrichment service API token",
						Value: "none",
					},
					&cli.BoolFlag{
						Name:  "mock",
						Usage: "Use the mock enricher instead of a real AI backend",
					},
					&cli.DurationFlag{
						Name:  "timeout",
						Usage: "Per-call enrichment timeout",
						Value: 30 * time.Second,
					},
					&cli.IntFlag{
						Name:  "rate-per-minute",
						Usage: "Maximum enrichment calls per minute",
						Value: 15,
					},
					&cli.IntFlag{
						Name:  "rate-per-day",
						Usage: "Maximum enrichment calls per day",
						Value: 1500,
					},
					&cli.DurationFlag{
						Name:  "max-wait",
						Usage: "Maximum total rate-limit wait before degrading",
						Value: pipeline.DefaultMaxDeferralWait,
					},
					&cli.IntFlag{
						Name:  "cache-size",
						Usage: "Maximum cached enrichment results",
						Value: cache.DefaultCapacity,
					},
					&cli.DurationFlag{
						Name:  "cache-ttl",
						Usage: "Lifetime of a cached enrichment result",
						Value: cache.DefaultTTL,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum enrichment attempts per item",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				},
			},
			{
				Name:   "stats",
				Usage:  "Show note counts from the vault's fingerprint index",
				Action: statsCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "vault",
						Aliases:  []string{"v"},
						Usage:    "Path to the note vault root",
						Required: true,
					},
				},
			},
		},
	}
}

func ingestCommand(c *cli.Context) error {
	ctx := context.Background()

	text := c.String("text")
	if text == "" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		text = string(data)
	}

	rulesCfg := classify.DefaultConfig()
	if path := c.String("rules"); path != "" {
		var err error
		rulesCfg, err = classify.LoadConfig(path)
		if err != nil {
			return err
		}
	}
	classifier, err := classify.New(rulesCfg)
	if err != nil {
		return fmt.Errorf("invalid classifier rules: %w", err)
	}

	var enricher ai.Enricher
	if c.Bool("mock") {
		enricher = aimock.NewMockEnricher()
	} else {
		aiConfig := ai.NewConfig(
			ai.WithHost(c.String("host")),
			ai.WithModel(c.String("model")),
			ai.WithToken(c.String("token")),
			ai.WithTimeout(c.Duration("timeout")),
		)
		enricher, err = openai.NewEnricher(aiConfig)
		if err != nil {
			return fmt.Errorf("failed to create enricher: %w", err)
		}
	}

	vaultRoot := c.String("vault")
	backend, err := badger.OpenBackend(filepath.Join(vaultRoot, indexSubdir), false)
	if err != nil {
		return fmt.Errorf("failed to open fingerprint index: %w", err)
	}
	index := badger.NewNoteIndexRepository(backend)
	defer index.Close()

	writer, err := vault.NewWriter(vaultRoot, index)
	if err != nil {
		return err
	}

	p, err := pipeline.New(enricher, classifier, writer,
		pipeline.WithCache(cache.New(c.Int("cache-size"), c.Duration("cache-ttl"))),
		pipeline.WithLimiter(ratelimit.NewDualLimiter(c.Int("rate-per-minute"), c.Int("rate-per-day"))),
		pipeline.WithRetryPolicy(retry.Policy{
			MaxAttempts: c.Int("max-retries"),
			BaseDelay:   c.Duration("retry-delay"),
			MaxDelay:    30 * time.Second,
			Jitter:      true,
		}),
		pipeline.WithMaxDeferralWait(c.Duration("max-wait")),
	)
	if err != nil {
		return err
	}
	defer p.Release()

	item := &core.ContentItem{
		ID:            uuid.NewString(),
		Text:          text,
		SourceContext: c.String("channel"),
		ReceivedAt:    time.Now().UTC(),
	}

	outcome := p.Process(ctx, item)
	switch outcome.Status {
	case core.StatusFailed:
		return fmt.Errorf("ingestion failed: %w", outcome.Err)
	default:
		fmt.Printf("%s: %s\n", outcome.Status, outcome.Note.FilePath)
		return nil
	}
}

func statsCommand(c *cli.Context) error {
	ctx := context.Background()

	vaultRoot := c.String("vault")
	backend, err := badger.OpenBackend(filepath.Join(vaultRoot, indexSubdir), false)
	if err != nil {
		return fmt.Errorf("failed to open fingerprint index: %w", err)
	}
	index := badger.NewNoteIndexRepository(backend)
	defer index.Close()

	total := 0
	degraded := 0
	byFolder := make(map[string]int)
	err = index.ForEach(ctx, func(entry *storage.IndexEntry) error {
		total++
		byFolder[entry.Folder]++
		if !entry.AIProcessed {
			degraded++
		}
		return nil
	})
	if err != nil {
		return err
	}

	fmt.Printf("Notes: %d (%d without AI enrichment)\n", total, degraded)
	for folder, count := range byFolder {
		fmt.Printf("  %-20s %d\n", folder, count)
	}
	return nil
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
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

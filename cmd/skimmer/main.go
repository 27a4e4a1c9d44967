// Copyright 2026 Tamyla
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
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"mime"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	skimmer "github.com/tamylaa/content-skimmer"
	"github.com/tamylaa/content-skimmer/analysis"
	"github.com/tamylaa/content-skimmer/analysis/hybrid"
	"github.com/tamylaa/content-skimmer/content/s3store"
	"github.com/tamylaa/content-skimmer/metastore"
	"github.com/tamylaa/content-skimmer/reindex"
	"github.com/tamylaa/content-skimmer/search"
	"github.com/tamylaa/content-skimmer/trigger"
)

func main() {
	// Local runs keep their settings in a .env file; absence is fine.
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "skimmer",
		Usage: "Content analysis and search indexing service",
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
				Name:   "listen",
				Usage:  "Consume file registration events and process them",
				Action: listenCommand,
				Flags: append(configFlags(),
					&cli.StringSliceFlag{
						Name:    "brokers",
						Usage:   "Kafka broker addresses",
						EnvVars: []string{"SKIMMER_KAFKA_BROKERS"},
						Value:   cli.NewStringSlice("localhost:9092"),
					},
					&cli.StringFlag{
						Name:     "topic",
						Usage:    "Kafka topic carrying file registration events",
						EnvVars:  []string{"SKIMMER_KAFKA_TOPIC"},
						Required: true,
					},
					&cli.StringFlag{
						Name:    "group",
						Usage:   "Kafka consumer group ID",
						EnvVars: []string{"SKIMMER_KAFKA_GROUP"},
						Value:   "content-skimmer",
					},
				),
			},
			{
				Name:      "analyze",
				Usage:     "Analyze a local file and print the result",
				ArgsUsage: "<path>",
				Action:    analyzeCommand,
				Flags: append(analysisFlags(),
					&cli.StringFlag{
						Name:  "mime-type",
						Usage: "MIME type of the file (detected from the extension if empty)",
					},
				),
			},
			{
				Name:      "search",
				Usage:     "Query a configured search backend",
				ArgsUsage: "<query>",
				Action:    searchCommand,
				Flags: append(searchFlags(),
					&cli.StringFlag{
						Name:  "engine",
						Usage: "Engine name to query (defaults to the first configured backend)",
					},
					&cli.StringFlag{
						Name:  "user",
						Usage: "Restrict results to this user ID",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of results",
						Value: 20,
					},
				),
			},
			{
				Name:   "reindex",
				Usage:  "Rebuild every search backend from the metadata store",
				Action: reindexCommand,
				Flags: append(append(metaFlags(), searchFlags()...),
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of files to process in each batch",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N files",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed operations",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				),
			},
			{
				Name:   "health",
				Usage:  "Probe the configured dependencies and print a health report",
				Action: healthCommand,
				Flags: append(configFlags(),
					&cli.DurationFlag{
						Name:  "timeout",
						Usage: "Probe timeout",
						Value: 10 * time.Second,
					},
				),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func listenCommand(c *cli.Context) error {
	cfg, err := configFromFlags(c)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	s, err := skimmer.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to assemble service: %w", err)
	}
	defer s.Close()

	listener, err := s.NewListener(trigger.Config{
		Brokers: c.StringSlice("brokers"),
		Topic:   c.String("topic"),
		GroupID: c.String("group"),
	})
	if err != nil {
		return fmt.Errorf("failed to create listener: %w", err)
	}
	defer listener.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(os.Stderr, "Consuming topic %s as group %s\n", c.String("topic"), c.String("group"))

	if err := listener.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("listener stopped: %w", err)
	}
	return nil
}

func analyzeCommand(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		return fmt.Errorf("file path argument is required")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	mimeType := c.String("mime-type")
	if mimeType == "" {
		mimeType = mime.TypeByExtension(filepath.Ext(path))
	}
	if mimeType == "" {
		mimeType = "text/plain"
	}

	analysisCfg := analysisConfigFromFlags(c)
	if err := analysisCfg.Validate(); err != nil {
		return fmt.Errorf("invalid analysis configuration: %w", err)
	}

	provider, err := hybrid.NewProvider(analysisCfg)
	if err != nil {
		return fmt.Errorf("failed to create provider: %w", err)
	}

	engine, err := analysis.NewEngine([]analysis.Provider{provider})
	if err != nil {
		return fmt.Errorf("failed to create engine: %w", err)
	}

	result, err := engine.AnalyzeFile(c.Context, data, mimeType)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	return printJSON(result)
}

func searchCommand(c *cli.Context) error {
	query := strings.Join(c.Args().Slice(), " ")
	if query == "" {
		return fmt.Errorf("query argument is required")
	}

	searchCfg, err := searchConfigFromFlags(c)
	if err != nil {
		return err
	}

	backends, closers, err := skimmer.OpenBackends(searchCfg, slog.Default())
	if err != nil {
		return fmt.Errorf("failed to open search backends: %w", err)
	}
	defer func() {
		for _, cl := range closers {
			cl.Close()
		}
	}()

	backend := backends[0]
	if name := c.String("engine"); name != "" {
		backend = nil
		for _, b := range backends {
			if b.Name() == name {
				backend = b
				break
			}
		}
		if backend == nil {
			return fmt.Errorf("unknown search engine %q", name)
		}
	}

	docs, err := backend.Query(c.Context, query,
		search.Filters{UserID: c.String("user")}, c.Int("limit"))
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	return printJSON(docs)
}

func reindexCommand(c *cli.Context) error {
	store, err := metastore.NewClient(c.String("meta-url"), c.String("meta-token"))
	if err != nil {
		return fmt.Errorf("failed to create metadata client: %w", err)
	}

	searchCfg, err := searchConfigFromFlags(c)
	if err != nil {
		return err
	}

	backends, closers, err := skimmer.OpenBackends(searchCfg, slog.Default())
	if err != nil {
		return fmt.Errorf("failed to open search backends: %w", err)
	}
	defer func() {
		for _, cl := range closers {
			cl.Close()
		}
	}()

	reindexConfig := &reindex.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
	}

	// Validate config
	if reindexConfig.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if reindexConfig.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if reindexConfig.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	reindexer, err := reindex.NewReindexer(store, backends, reindexConfig, os.Stderr)
	if err != nil {
		return fmt.Errorf("failed to create reindexer: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Metadata store: %s\n", c.String("meta-url"))
	fmt.Fprintf(os.Stderr, "Backends: %d\n", len(backends))
	fmt.Fprintln(os.Stderr)

	if err := reindexer.Run(c.Context); err != nil {
		return fmt.Errorf("reindex failed: %w", err)
	}
	return nil
}

func healthCommand(c *cli.Context) error {
	cfg, err := configFromFlags(c)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	s, err := skimmer.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to assemble service: %w", err)
	}
	defer s.Close()

	ctx, cancel := context.WithTimeout(c.Context, c.Duration("timeout"))
	defer cancel()

	report := s.Health(ctx)
	if err := printJSON(report); err != nil {
		return err
	}

	if !report.Healthy {
		return fmt.Errorf("service unhealthy")
	}
	return nil
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

// storageFlags locate the file content source: the upload service, or an
// S3-compatible bucket for direct reads.
func storageFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "storage-url",
			Usage:   "Upload service base URL for signed-url content fetches",
			EnvVars: []string{"SKIMMER_STORAGE_URL"},
		},
		&cli.StringFlag{
			Name:    "storage-token",
			Usage:   "Bearer token for the upload service",
			EnvVars: []string{"SKIMMER_STORAGE_TOKEN"},
		},
		&cli.StringFlag{
			Name:    "s3-endpoint",
			Usage:   "S3-compatible endpoint (host:port) for direct bucket reads",
			EnvVars: []string{"SKIMMER_S3_ENDPOINT"},
		},
		&cli.StringFlag{
			Name:    "s3-access-key",
			Usage:   "S3 access key",
			EnvVars: []string{"SKIMMER_S3_ACCESS_KEY"},
		},
		&cli.StringFlag{
			Name:    "s3-secret-key",
			Usage:   "S3 secret key",
			EnvVars: []string{"SKIMMER_S3_SECRET_KEY"},
		},
		&cli.StringFlag{
			Name:    "s3-bucket",
			Usage:   "Bucket holding uploaded files (enables direct reads)",
			EnvVars: []string{"SKIMMER_S3_BUCKET"},
		},
		&cli.StringFlag{
			Name:    "s3-region",
			Usage:   "Optional S3 region",
			EnvVars: []string{"SKIMMER_S3_REGION"},
		},
		&cli.BoolFlag{
			Name:    "s3-ssl",
			Usage:   "Use TLS for the S3 connection",
			EnvVars: []string{"SKIMMER_S3_SSL"},
			Value:   true,
		},
	}
}

// metaFlags locate the metadata/result store.
func metaFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "meta-url",
			Usage:    "Metadata store base URL",
			EnvVars:  []string{"SKIMMER_META_URL"},
			Required: true,
		},
		&cli.StringFlag{
			Name:    "meta-token",
			Usage:   "Bearer token for the metadata store",
			EnvVars: []string{"SKIMMER_META_TOKEN"},
		},
	}
}

// analysisFlags configure the hybrid analysis provider.
func analysisFlags() []cli.Flag {
	defaults := hybrid.DefaultConfig()
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "analysis-host",
			Usage:   "OpenAI-compatible service host URL for the remote tier",
			EnvVars: []string{"SKIMMER_ANALYSIS_HOST"},
			Value:   defaults.Host,
		},
		&cli.StringFlag{
			Name:    "analysis-model",
			Usage:   "Model name for the remote tier",
			EnvVars: []string{"SKIMMER_ANALYSIS_MODEL"},
			Value:   defaults.Model,
		},
		&cli.StringFlag{
			Name:    "analysis-token",
			Usage:   "API token for the remote tier",
			EnvVars: []string{"SKIMMER_ANALYSIS_TOKEN"},
			Value:   defaults.Token,
		},
		&cli.Float64Flag{
			Name:    "analysis-budget",
			Usage:   "Daily remote analysis budget in dollars",
			EnvVars: []string{"SKIMMER_ANALYSIS_BUDGET"},
			Value:   defaults.DailyBudget,
		},
	}
}

// searchFlags enumerate the search backends to use.
func searchFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{
			Name:    "search-url",
			Usage:   "External search engine as name=url (repeatable)",
			EnvVars: []string{"SKIMMER_SEARCH_URLS"},
		},
		&cli.StringFlag{
			Name:    "search-token",
			Usage:   "Bearer token for the external search engines",
			EnvVars: []string{"SKIMMER_SEARCH_TOKEN"},
		},
		&cli.StringFlag{
			Name:    "badger-path",
			Usage:   "Directory for the embedded Badger engine (enables it)",
			EnvVars: []string{"SKIMMER_BADGER_PATH"},
		},
		&cli.StringFlag{
			Name:    "redis-url",
			Usage:   "Redis URL for the Redis engine (enables it)",
			EnvVars: []string{"SKIMMER_REDIS_URL"},
		},
	}
}

func configFlags() []cli.Flag {
	flags := storageFlags()
	flags = append(flags, metaFlags()...)
	flags = append(flags, analysisFlags()...)
	flags = append(flags, searchFlags()...)
	flags = append(flags,
		&cli.IntFlag{
			Name:    "index-retries",
			Usage:   "Delivery attempts per backend indexing operation",
			EnvVars: []string{"SKIMMER_INDEX_RETRIES"},
			Value:   3,
		},
	)
	return flags
}

func analysisConfigFromFlags(c *cli.Context) *hybrid.Config {
	cfg := hybrid.DefaultConfig()
	cfg.Host = c.String("analysis-host")
	cfg.Model = c.String("analysis-model")
	cfg.Token = c.String("analysis-token")
	cfg.DailyBudget = c.Float64("analysis-budget")
	return cfg
}

func searchConfigFromFlags(c *cli.Context) (skimmer.SearchConfig, error) {
	cfg := skimmer.SearchConfig{
		BadgerPath: c.String("badger-path"),
		RedisURL:   c.String("redis-url"),
	}
	for _, pair := range c.StringSlice("search-url") {
		name, url, ok := strings.Cut(pair, "=")
		if !ok || name == "" || url == "" {
			return skimmer.SearchConfig{}, fmt.Errorf("invalid --search-url %q: expected name=url", pair)
		}
		cfg.HTTP = append(cfg.HTTP, skimmer.HTTPEngine{
			Name:      name,
			BaseURL:   url,
			AuthToken: c.String("search-token"),
		})
	}
	return cfg, nil
}

func configFromFlags(c *cli.Context) (*skimmer.Config, error) {
	searchCfg, err := searchConfigFromFlags(c)
	if err != nil {
		return nil, err
	}

	cfg := skimmer.DefaultConfig()
	cfg.Storage.BaseURL = c.String("storage-url")
	cfg.Storage.AuthToken = c.String("storage-token")
	if c.String("s3-bucket") != "" {
		cfg.Storage.S3 = &s3store.Config{
			Endpoint:  c.String("s3-endpoint"),
			AccessKey: c.String("s3-access-key"),
			SecretKey: c.String("s3-secret-key"),
			Bucket:    c.String("s3-bucket"),
			Region:    c.String("s3-region"),
			UseSSL:    c.Bool("s3-ssl"),
		}
	}
	cfg.Metadata.BaseURL = c.String("meta-url")
	cfg.Metadata.AuthToken = c.String("meta-token")
	cfg.Analysis = analysisConfigFromFlags(c)
	cfg.Search = searchCfg
	cfg.IndexRetries = c.Int("index-retries")
	return cfg, nil
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

// Package main is the reviewcheck CLI entry point.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/hyperjump/reviewcheck/internal/analysis"
	"github.com/hyperjump/reviewcheck/internal/catalog"
	"github.com/hyperjump/reviewcheck/internal/cli"
	"github.com/hyperjump/reviewcheck/internal/config"
	"github.com/hyperjump/reviewcheck/internal/embedding"
	"github.com/hyperjump/reviewcheck/internal/models"
	"github.com/hyperjump/reviewcheck/internal/server"
	"github.com/hyperjump/reviewcheck/pkg/utils"
	"go.uber.org/zap"
)

var version = "dev"

const defaultServerURL = "http://localhost:8080"

// resolveConfigPath returns path when set. Otherwise it returns config.yaml in the
// current directory if one exists, or "" to run from environment variables alone.
func resolveConfigPath(path string) string {
	if path != "" {
		return path
	}
	if cwd, err := os.Getwd(); err == nil {
		fallback := filepath.Join(cwd, "config.yaml")
		if _, statErr := os.Stat(fallback); statErr == nil {
			return fallback
		}
	}
	return ""
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "analyze":
		runAnalyze()
	case "check":
		runCheck()
	case "entities":
		runEntities()
	case "config":
		runConfig()
	case "version", "--version", "-v":
		fmt.Printf("reviewcheck version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

// Components are the wired analysis dependencies.
type Components struct {
	Catalog  *catalog.Catalog
	Embedder *embedding.CachedEmbedder
	Analyzer *analysis.Analyzer
}

// initializeComponents builds provider → retry → cache → analyzer from cfg.
// The cache is created here, once per process, and injected downward.
func initializeComponents(cfg *config.Config, logger *zap.Logger) (*Components, error) {
	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	var provider embedding.Embedder = embedding.NewOpenAIEmbedder(embedding.OpenAIConfig{
		BaseURL: cfg.Embedding.BaseURL,
		APIKey:  cfg.Embedding.APIKey,
		Model:   cfg.Embedding.Model,
		Timeout: cfg.Embedding.Timeout,
	})
	if cfg.Embedding.MaxRetries > 0 {
		provider = embedding.NewRetryingEmbedder(provider, cfg.Embedding.MaxRetries, cfg.Embedding.RetryDelay,
			embedding.WithRetryLogger(logger))
	}
	cached := embedding.NewCachedEmbedder(provider, embedding.NewEmbeddingCache(cfg.Embedding.CacheSize))
	analyzer := analysis.NewAnalyzer(cat, cached, cfg.Analysis.ThresholdOrDefault(), logger)

	logger.Info("components initialized",
		zap.Int("entities", cat.Len()),
		zap.String("catalog", catalogName(cfg.Catalog.Path)),
		zap.String("model", cfg.Embedding.Model),
		zap.Float64("threshold", analyzer.Threshold()),
		zap.Int("cache_size", cfg.Embedding.CacheSize),
		zap.Int("max_retries", cfg.Embedding.MaxRetries),
	)
	return &Components{Catalog: cat, Embedder: cached, Analyzer: analyzer}, nil
}

func catalogName(path string) string {
	if path == "" {
		return "built-in"
	}
	return path
}

// loadRuntime loads config and creates the logger, exiting on failure.
func loadRuntime(configPath string, debugFlag bool) (*config.Config, *zap.Logger) {
	resolved := resolveConfigPath(configPath)
	cfg, err := config.Load(resolved)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || debugFlag
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	logger.Info("config loaded",
		zap.String("config_path", resolved),
		zap.Bool("debug", debugMode),
	)
	if cfg.Embedding.APIKey == "" {
		logger.Warn("no API key configured; set " + config.EnvAPIKey + " unless the provider needs none")
	}
	return cfg, logger
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", "", "config file path (default: ./config.yaml if present)")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, logger := loadRuntime(*configPath, *debug)
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}

	srv := server.NewServer(
		components.Analyzer,
		components.Catalog,
		components.Embedder,
		cfg.Embedding.Model,
		&cfg.Server,
		logger,
	)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...", zap.Any("cache", components.Embedder.Stats()))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

func runAnalyze() {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	configPath := fs.String("config", "", "config file path (direct mode)")
	serverURL := fs.String("server", defaultServerURL, "server URL (empty = analyze in-process)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(argsReorder(fs, os.Args[2:]))
	format := mustOutputFormat(*outputFormat)

	if fs.NArg() < 1 {
		fmt.Println("Usage: reviewcheck analyze [flags] <entity-id>")
		os.Exit(1)
	}
	id := fs.Arg(0)

	var report *models.AnalysisReport
	var err error
	if *serverURL != "" {
		report, err = analyzeViaHTTP(*serverURL, id)
	} else {
		cfg, logger := loadRuntime(*configPath, false)
		defer logger.Sync()
		components, initErr := initializeComponents(cfg, logger)
		if initErr != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", initErr)
			os.Exit(1)
		}
		report, err = components.Analyzer.AnalyzeEntity(context.Background(), id)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Analysis failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteReport(os.Stdout, report, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runCheck() {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	configPath := fs.String("config", "", "config file path (direct mode)")
	serverURL := fs.String("server", defaultServerURL, "server URL (empty = analyze in-process)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(argsReorder(fs, os.Args[2:]))
	format := mustOutputFormat(*outputFormat)

	if fs.NArg() < 2 {
		fmt.Println("Usage: reviewcheck check [flags] <entity-id> <review text...>")
		os.Exit(1)
	}
	req := &models.CustomReviewRequest{
		EntityID:   fs.Arg(0),
		ReviewText: strings.Join(fs.Args()[1:], " "),
	}

	var report *models.CustomReviewReport
	var err error
	if *serverURL != "" {
		report, err = customReviewViaHTTP(*serverURL, req)
	} else {
		cfg, logger := loadRuntime(*configPath, false)
		defer logger.Sync()
		components, initErr := initializeComponents(cfg, logger)
		if initErr != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", initErr)
			os.Exit(1)
		}
		report, err = components.Analyzer.AnalyzeCustomReview(context.Background(), req)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Check failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteCustomReport(os.Stdout, report, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runEntities() {
	fs := flag.NewFlagSet("entities", flag.ExitOnError)
	configPath := fs.String("config", "", "config file path (direct mode)")
	serverURL := fs.String("server", defaultServerURL, "server URL (empty = read the catalog directly)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])
	format := mustOutputFormat(*outputFormat)

	var entities []*models.Entity
	var err error
	if *serverURL != "" {
		entities, err = entitiesViaHTTP(*serverURL)
	} else {
		cfg, logger := loadRuntime(*configPath, false)
		defer logger.Sync()
		var cat *catalog.Catalog
		if cat, err = catalog.Load(cfg.Catalog.Path); err == nil {
			entities = cat.Entities()
		}
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Listing entities failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteEntities(os.Stdout, entities, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runConfig() {
	fs := flag.NewFlagSet("config", flag.ExitOnError)
	configPath := fs.String("config", "", "config file path (default: ./config.yaml if present)")
	_ = fs.Parse(os.Args[2:])

	cfg, err := config.Load(resolveConfigPath(*configPath))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	data, err := config.Marshal(cfg.Redacted())
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	os.Stdout.Write(data)
}

// argsReorder moves flags ahead of positional arguments so they can appear anywhere,
// as in "check hotel_1 great spa --output json". Flags must already be defined on fs
// so that value flags keep their argument. Positionals follow a "--" terminator.
func argsReorder(fs *flag.FlagSet, args []string) []string {
	var flags, positional []string
	for i := 0; i < len(args); i++ {
		a := args[i]
		if a == "--" {
			positional = append(positional, args[i+1:]...)
			break
		}
		if len(a) < 2 || a[0] != '-' {
			positional = append(positional, a)
			continue
		}
		flags = append(flags, a)
		name := strings.TrimLeft(a, "-")
		if strings.Contains(name, "=") {
			continue
		}
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if bf, ok := f.Value.(interface{ IsBoolFlag() bool }); ok && bf.IsBoolFlag() {
			continue
		}
		if i+1 < len(args) {
			i++
			flags = append(flags, args[i])
		}
	}
	out := append(flags, "--")
	return append(out, positional...)
}

func mustOutputFormat(s string) cli.OutputFormat {
	format, err := cli.ParseOutputFormat(s)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	return format
}

func printUsage() {
	fmt.Println(`reviewcheck - Flag reviews that do not match what a hotel claims to be

Usage:
  reviewcheck server [flags]                       Start the HTTP server
  reviewcheck analyze [flags] <entity-id>          Score the registered reviews of an entity
  reviewcheck check [flags] <entity-id> <review>   Score a single custom review
  reviewcheck entities [flags]                     List catalog entities
  reviewcheck config [flags]                       Print the effective configuration
  reviewcheck version                              Show version
  reviewcheck help                                 Show this help

Server Flags:
  --config string    Config file path (default: ./config.yaml if present, else environment only)
  --debug            Enable debug logging

Analyze / Check / Entities Flags:
  --server string    Server URL (default: http://localhost:8080). Use --server "" to run in-process.
  --config string    Config file path (in-process mode)
  --output string    Output format: text or json (default: text)

Environment:
  OPENAI_API_URL, OPENAI_API_KEY, EMBEDDING_MODEL, SIMILARITY_THRESHOLD,
  EMBEDDING_CACHE_SIZE, EMBEDDING_TIMEOUT, EMBEDDING_MAX_RETRIES, EMBEDDING_RETRY_DELAY,
  APP_HOST, APP_PORT, CATALOG_PATH, APP_DEBUG (a .env file is read if present)

Examples:
  reviewcheck server
  reviewcheck entities
  reviewcheck analyze hotel_1
  reviewcheck analyze --output json hotel_2
  reviewcheck check hotel_1 "Cheap and noisy, shared rooms"
  reviewcheck check --server "" hotel_3 "Great conference rooms and fast Wi-Fi"`)
}

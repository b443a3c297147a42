// Package main is the Scribe backend CLI entry point.
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

	"go.uber.org/zap"

	"github.com/joemacstevens/ohg-scribe/internal/cli"
	"github.com/joemacstevens/ohg-scribe/internal/config"
	"github.com/joemacstevens/ohg-scribe/internal/extract"
	"github.com/joemacstevens/ohg-scribe/internal/history"
	"github.com/joemacstevens/ohg-scribe/internal/server"
	"github.com/joemacstevens/ohg-scribe/internal/terms"
	"github.com/joemacstevens/ohg-scribe/internal/vocab"
	"github.com/joemacstevens/ohg-scribe/internal/watcher"
	"github.com/joemacstevens/ohg-scribe/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/ohg-scribe/config.yaml"

// apiKeyEnv is consulted when the config leaves the API key empty.
const apiKeyEnv = "OPENAI_API_KEY"

// loadConfig loads config from path. When path is the default, it first looks
// for config.yaml in the current directory (for development); if that exists
// it is used. Returns the config and the path that was actually loaded.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

// resolveAPIKey returns the configured API key, falling back to the
// environment.
func resolveAPIKey(cfg *config.TermsConfig) string {
	if cfg.APIKey != "" {
		return cfg.APIKey
	}
	return os.Getenv(apiKeyEnv)
}

// entryTitle derives a history title from a document path.
func entryTitle(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
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
	case "extract":
		runExtract()
	case "terms":
		runTerms()
	case "vocab":
		runVocab()
	case "history":
		runHistory()
	case "version", "--version", "-v":
		fmt.Printf("scribe version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Print(`Usage: scribe <command> [flags]

Commands:
  server     Run the HTTP API server
  extract    Extract text from a document (txt, md, docx, pdf, pptx)
  terms      Extract vocabulary terms from a document via the language model
  vocab      Manage vocabularies (list, import, export)
  history    Manage transcription history (list, search, delete)
  version    Print version
  help       Show this help
`)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func mustConfig(configPath string) (*config.Config, string) {
	cfg, resolved, err := loadConfig(configPath)
	if err != nil {
		fatalf("Failed to load config: %v", err)
	}
	return cfg, resolved
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fatalf("Failed to load config: %v", err)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	hist, err := history.NewStore(cfg.Storage.DatabasePath)
	if err != nil {
		logger.Fatal("failed to open history store", zap.Error(err))
	}
	defer hist.Close()
	histIndex, err := history.NewIndex(cfg.Storage.HistoryIndexPath)
	if err != nil {
		logger.Fatal("failed to open history index", zap.Error(err))
	}
	defer histIndex.Close()

	extractor := extract.NewExtractor()
	vocabStore := vocab.NewStore(cfg.Storage.VocabularyDir, cfg.Storage.SystemVocabularyDir)
	termsClient := terms.NewClient(resolveAPIKey(&cfg.Terms),
		terms.WithBaseURL(cfg.Terms.BaseURL),
		terms.WithModel(cfg.Terms.Model),
		terms.WithMaxTokens(cfg.Terms.MaxTokens),
	)

	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	if cfg.Watch.Directory != "" {
		onDocument := func(path string) {
			text, err := extractor.Extract(path)
			if err != nil {
				logger.Warn("inbox extraction failed", zap.String("path", path), zap.Error(err))
				return
			}
			entry, err := hist.Save(context.Background(), &history.Entry{
				Title:    entryTitle(path),
				Text:     text,
				Metadata: map[string]string{"source": "inbox", "path": path},
			})
			if err != nil {
				logger.Warn("inbox save failed", zap.String("path", path), zap.Error(err))
				return
			}
			if err := histIndex.Add(entry); err != nil {
				logger.Warn("inbox index failed", zap.String("id", entry.ID), zap.Error(err))
			}
			logger.Info("inbox document stored",
				zap.String("path", path), zap.String("id", entry.ID))
		}
		inboxOpts := []watcher.Option{}
		if debugMode {
			inboxOpts = append(inboxOpts, watcher.WithLogger(logger))
		}
		inbox := watcher.NewInbox(cfg.Watch.Directory, onDocument, inboxOpts...)
		if err := inbox.Start(watchCtx); err != nil {
			logger.Fatal("failed to start inbox watcher", zap.Error(err))
		}
		defer inbox.Stop()
	}

	srv := server.NewServer(extractor, vocabStore, hist, histIndex, termsClient, &cfg.Server, logger)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutting down...")
	watchCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

func runExtract() {
	fs := flag.NewFlagSet("extract", flag.ExitOnError)
	_ = fs.Parse(os.Args[2:])
	if fs.NArg() != 1 {
		fatalf("Usage: scribe extract <file>")
	}

	text, err := extract.NewExtractor().Extract(fs.Arg(0))
	if err != nil {
		fatalf("%v", err)
	}
	fmt.Print(text)
}

func runTerms() {
	fs := flag.NewFlagSet("terms", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	format := fs.String("format", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])
	if fs.NArg() != 1 {
		fatalf("Usage: scribe terms [flags] <file>")
	}

	cfg, _ := mustConfig(*configPath)
	text, err := extract.NewExtractor().Extract(fs.Arg(0))
	if err != nil {
		fatalf("%v", err)
	}

	client := terms.NewClient(resolveAPIKey(&cfg.Terms),
		terms.WithBaseURL(cfg.Terms.BaseURL),
		terms.WithModel(cfg.Terms.Model),
		terms.WithMaxTokens(cfg.Terms.MaxTokens),
	)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()
	extracted, err := client.ExtractTerms(ctx, text)
	if err != nil {
		fatalf("Term extraction failed: %v", err)
	}
	if err := cli.WriteTerms(os.Stdout, extracted, cli.OutputFormat(*format)); err != nil {
		fatalf("Failed to write output: %v", err)
	}
}

func runVocab() {
	fs := flag.NewFlagSet("vocab", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	format := fs.String("format", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])
	if fs.NArg() < 1 {
		fatalf("Usage: scribe vocab <list|import|export> [file]")
	}

	cfg, _ := mustConfig(*configPath)
	store := vocab.NewStore(cfg.Storage.VocabularyDir, cfg.Storage.SystemVocabularyDir)

	switch fs.Arg(0) {
	case "list":
		data, err := store.Load()
		if err != nil {
			fatalf("Failed to load vocabularies: %v", err)
		}
		if err := cli.WriteVocabularies(os.Stdout, data, cli.OutputFormat(*format)); err != nil {
			fatalf("Failed to write output: %v", err)
		}
	case "import":
		if fs.NArg() != 2 {
			fatalf("Usage: scribe vocab import <file.json|file.xlsx>")
		}
		path := fs.Arg(1)
		f, err := os.Open(path)
		if err != nil {
			fatalf("Failed to open %s: %v", path, err)
		}
		defer f.Close()
		if strings.EqualFold(filepath.Ext(path), ".xlsx") {
			created, err := store.ImportXLSX(f)
			if err != nil {
				fatalf("Import failed: %v", err)
			}
			fmt.Printf("Imported %d vocabularies\n", len(created))
			return
		}
		n, err := store.ImportJSON(f)
		if err != nil {
			fatalf("Import failed: %v", err)
		}
		fmt.Printf("Imported %d vocabularies\n", n)
	case "export":
		if fs.NArg() != 2 {
			fatalf("Usage: scribe vocab export <file.json|file.xlsx>")
		}
		path := fs.Arg(1)
		f, err := os.Create(path)
		if err != nil {
			fatalf("Failed to create %s: %v", path, err)
		}
		defer f.Close()
		if strings.EqualFold(filepath.Ext(path), ".xlsx") {
			err = store.ExportXLSX(f)
		} else {
			err = store.ExportJSON(f)
		}
		if err != nil {
			fatalf("Export failed: %v", err)
		}
		fmt.Printf("Exported vocabularies to %s\n", path)
	default:
		fatalf("Unknown vocab subcommand: %s", fs.Arg(0))
	}
}

func runHistory() {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	format := fs.String("format", "text", "output format: text or json")
	limit := fs.Int("limit", 10, "maximum search results")
	_ = fs.Parse(os.Args[2:])
	if fs.NArg() < 1 {
		fatalf("Usage: scribe history <list|search|delete> [args]")
	}

	cfg, _ := mustConfig(*configPath)
	store, err := history.NewStore(cfg.Storage.DatabasePath)
	if err != nil {
		fatalf("Failed to open history store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	switch fs.Arg(0) {
	case "list":
		summaries, err := store.List(ctx)
		if err != nil {
			fatalf("Failed to list history: %v", err)
		}
		if err := cli.WriteHistoryList(os.Stdout, summaries, cli.OutputFormat(*format)); err != nil {
			fatalf("Failed to write output: %v", err)
		}
	case "search":
		if fs.NArg() < 2 {
			fatalf("Usage: scribe history search <query>")
		}
		index, err := history.NewIndex(cfg.Storage.HistoryIndexPath)
		if err != nil {
			fatalf("Failed to open history index: %v", err)
		}
		defer index.Close()
		query := strings.Join(fs.Args()[1:], " ")
		hits, err := index.Search(query, *limit)
		if err != nil {
			fatalf("Search failed: %v", err)
		}
		for _, hit := range hits {
			entry, err := store.Get(ctx, hit.ID)
			if err != nil {
				continue
			}
			fmt.Printf("%.4f  %s  %s\n", hit.Score, entry.ID, utils.Truncate(entry.Title, 60))
		}
	case "delete":
		if fs.NArg() != 2 {
			fatalf("Usage: scribe history delete <id>")
		}
		id := fs.Arg(1)
		if err := store.Delete(ctx, id); err != nil {
			fatalf("Delete failed: %v", err)
		}
		index, err := history.NewIndex(cfg.Storage.HistoryIndexPath)
		if err == nil {
			_ = index.Remove(id)
			_ = index.Close()
		}
		fmt.Printf("Deleted %s\n", id)
	default:
		fatalf("Unknown history subcommand: %s", fs.Arg(0))
	}
}

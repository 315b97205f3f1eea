// Mira is a conversational assistant for a social-media account owner.
//
// It answers free-text questions about the account by orchestrating
// data-lookup and content-generation tools: post search, audience
// sentiment, growth analytics, content planning, and identity-preserving
// image generation. Configuration is loaded from a single YAML file
// discovered automatically (see [config.DefaultSearchPaths]).
//
// Usage:
//
//	mira serve             Start the API server
//	mira init [dir]        Initialize a working directory with defaults
//	mira ask <question>    Ask a single question (for testing)
//	mira version           Print version and build information
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fenwick/mira-agent/internal/agent"
	"github.com/fenwick/mira-agent/internal/analytics"
	"github.com/fenwick/mira-agent/internal/api"
	"github.com/fenwick/mira-agent/internal/buildinfo"
	"github.com/fenwick/mira-agent/internal/config"
	"github.com/fenwick/mira-agent/internal/defaults"
	"github.com/fenwick/mira-agent/internal/imagegen"
	"github.com/fenwick/mira-agent/internal/imagine"
	"github.com/fenwick/mira-agent/internal/llm"
	"github.com/fenwick/mira-agent/internal/photos"
	"github.com/fenwick/mira-agent/internal/store"
	"github.com/fenwick/mira-agent/internal/tools"

	_ "github.com/mattn/go-sqlite3" // SQLite driver for database/sql
)

// main is intentionally minimal. It constructs the OS-level environment
// and delegates immediately to [run], keeping os.Exit, os.Stdout, and
// os.Args out of the application logic.
func main() {
	ctx := context.Background()

	if err := run(ctx, os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}
}

// run is the real entry point. Arguments are parsed by hand: the flag
// package relies on package-level globals, which interferes with
// driving run() from tests, and the argument surface is small.
func run(ctx context.Context, stdout io.Writer, stderr io.Writer, args []string) error {
	var configPath string
	var outputFmt string
	var command string
	var cmdArgs []string

	for i := 0; i < len(args); i++ {
		switch {
		case args[i] == "-config" && i+1 < len(args):
			configPath = args[i+1]
			i++
		case strings.HasPrefix(args[i], "-config="):
			configPath = strings.TrimPrefix(args[i], "-config=")
		case (args[i] == "-o" || args[i] == "--output") && i+1 < len(args):
			outputFmt = args[i+1]
			i++
		case args[i] == "-h" || args[i] == "-help" || args[i] == "--help":
			return printUsage(stdout)
		case !strings.HasPrefix(args[i], "-") && command == "":
			command = args[i]
		default:
			if command != "" {
				cmdArgs = append(cmdArgs, args[i])
			} else {
				return fmt.Errorf("unknown flag: %s", args[i])
			}
		}
	}

	if outputFmt == "" {
		outputFmt = "text"
	}
	if outputFmt != "text" && outputFmt != "json" {
		return fmt.Errorf("unknown output format: %q (expected text or json)", outputFmt)
	}

	switch command {
	case "serve":
		return runServe(ctx, stdout, configPath)
	case "init":
		dir := "."
		if len(cmdArgs) > 0 {
			dir = cmdArgs[0]
		}
		return runInit(stdout, dir)
	case "ask":
		if len(cmdArgs) == 0 {
			return fmt.Errorf("usage: mira ask <question>")
		}
		return runAsk(ctx, stdout, configPath, cmdArgs)
	case "version":
		return runVersion(stdout, outputFmt)
	case "":
		return printUsage(stdout)
	default:
		return fmt.Errorf("unknown command: %s", command)
	}
}

func printUsage(w io.Writer) error {
	fmt.Fprintln(w, "Mira - Social Media Account Assistant")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage: mira [flags] <command> [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  serve        Start the API server")
	fmt.Fprintln(w, "  init [dir]   Initialize working directory with defaults (default: .)")
	fmt.Fprintln(w, "  ask          Ask a single question (for testing)")
	fmt.Fprintln(w, "  version      Show version information")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -config <path>    Path to config file (default: auto-discover)")
	fmt.Fprintln(w, "  -o, --output fmt  Output format: text (default) or json")
	return nil
}

func runVersion(w io.Writer, outputFmt string) error {
	info := buildinfo.Info()
	if outputFmt == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	}
	fmt.Fprintln(w, buildinfo.String())
	for _, k := range []string{"version", "git_commit", "build_time", "go_version", "os", "arch"} {
		if v, ok := info[k]; ok {
			fmt.Fprintf(w, "  %-12s %s\n", k+":", v)
		}
	}
	return nil
}

// runInit writes the default config into dir, refusing to overwrite
// an existing one.
func runInit(stdout io.Writer, dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	target := filepath.Join(dir, "config.yaml")
	if _, err := os.Stat(target); err == nil {
		return fmt.Errorf("%s already exists; not overwriting", target)
	}
	if err := os.WriteFile(target, defaults.ConfigYAML, 0600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	fmt.Fprintf(stdout, "Wrote %s\n", target)
	fmt.Fprintln(stdout, "Set MIRA_JWT_SECRET and OPENAI_API_KEY, then run: mira serve")
	return nil
}

// runAsk boots a minimal assistant and processes a single question.
// Useful for smoke tests without starting the server.
func runAsk(ctx context.Context, stdout io.Writer, configPath string, args []string) error {
	logger := newLogger(stdout, slog.LevelWarn)

	cfg, _, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	orch, st, err := buildOrchestrator(cfg, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	question := strings.Join(args, " ")
	reply, err := orch.Handle(ctx, []llm.Message{{Role: "user", Content: question}})
	if err != nil {
		return fmt.Errorf("ask: %w", err)
	}

	fmt.Fprintln(stdout, reply.Message)
	return nil
}

// runServe is the primary operating mode: it loads config, opens the
// database, wires the assistant, and serves until SIGINT or SIGTERM.
func runServe(ctx context.Context, stdout io.Writer, configPath string) error {
	logger := newLogger(stdout, slog.LevelInfo)
	logger.Info("starting Mira", "version", buildinfo.Version, "commit", buildinfo.GitCommit, "built", buildinfo.BuildTime)

	cfg, cfgPath, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	if cfg.LogLevel != "" {
		level, err := config.ParseLogLevel(cfg.LogLevel)
		if err != nil {
			return err
		}
		logger = newLogger(stdout, level)
	}
	slog.SetDefault(logger)

	logger.Info("config loaded", "path", cfgPath, "port", cfg.Listen.Port, "model", cfg.Reasoning.Model)

	if cfg.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is required; the chat endpoint cannot run unauthenticated")
	}

	orch, st, err := buildOrchestrator(cfg, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	listen := fmt.Sprintf("%s:%d", cfg.Listen.Address, cfg.Listen.Port)
	server := api.NewServer(listen, orch, api.NewAuthenticator(cfg.Auth.JWTSecret), logger)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		if err := server.Start(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// buildOrchestrator wires the full dependency graph from config. The
// caller owns closing the returned store.
func buildOrchestrator(cfg *config.Config, logger *slog.Logger) (*agent.Orchestrator, *store.Store, error) {
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, nil, fmt.Errorf("create data directory: %w", err)
	}

	st, err := store.Open(filepath.Join(cfg.DataDir, "mira.db"), logger)
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}

	reasoning := llm.NewOpenAIClient(cfg.Reasoning.BaseURL, cfg.Reasoning.APIKey, logger)

	// The image service defaults to the reasoning service's endpoint
	// and key; most deployments use one provider for both.
	imgBase := cfg.Images.BaseURL
	if imgBase == "" {
		imgBase = cfg.Reasoning.BaseURL
	}
	imgKey := cfg.Images.APIKey
	if imgKey == "" {
		imgKey = cfg.Reasoning.APIKey
	}
	images := imagegen.NewHTTPClient(imgBase, imgKey, cfg.Images.Model, logger)

	resolver := photos.NewResolver(st, logger)
	generator := imagine.NewGenerator(images, resolver, st, imagine.Options{
		Size:    cfg.Images.Size,
		Quality: cfg.Images.Quality,
		Style:   cfg.Images.Style,
	}, logger)

	registry := tools.NewRegistry(tools.Deps{
		Store:    st,
		Analyzer: analytics.NewAnalyzer(st, logger),
		LLM:      reasoning,
		Model:    cfg.Reasoning.Model,
		Photos:   resolver,
		Imagine:  generator,
	}, logger)

	toolTimeout := time.Duration(cfg.Tools.TimeoutSeconds) * time.Second
	orch := agent.New(reasoning, registry, cfg.Reasoning.Model, toolTimeout, logger)
	return orch, st, nil
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: config.ReplaceLogLevelNames,
	}))
}

func loadConfig(explicit string) (*config.Config, string, error) {
	cfgPath, err := config.FindConfig(explicit)
	if err != nil {
		return nil, "", err
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, cfgPath, fmt.Errorf("load config %s: %w", cfgPath, err)
	}
	return cfg, cfgPath, nil
}

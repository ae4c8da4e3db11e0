package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/marianadeem755/Taxation-agent/internal/assist"
	"github.com/marianadeem755/Taxation-agent/internal/autofill"
	"github.com/marianadeem755/Taxation-agent/internal/config"
	"github.com/marianadeem755/Taxation-agent/internal/fetch"
	"github.com/marianadeem755/Taxation-agent/internal/history"
	"github.com/marianadeem755/Taxation-agent/internal/llm"
	"github.com/marianadeem755/Taxation-agent/internal/mapper"
	"github.com/marianadeem755/Taxation-agent/internal/mcp"
	"github.com/marianadeem755/Taxation-agent/internal/ocr"
	"github.com/marianadeem755/Taxation-agent/internal/pdf"
	"github.com/marianadeem755/Taxation-agent/internal/search"
	"github.com/marianadeem755/Taxation-agent/internal/userdata"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

// setupLogging configures logging based on the run mode
func setupLogging(cfg *config.Config) {
	if cfg.IsStdioMode() {
		// In stdio mode, redirect log output to stderr to avoid interfering with MCP protocol
		log.SetOutput(os.Stderr)
		if !cfg.IsDebug() {
			log.SetOutput(io.Discard)
		}
	} else {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	}
}

// buildServices wires the agent's components from the configuration.
// Model-backed pieces come up nil when no API key is present; the rest
// of the agent still works.
func buildServices(cfg *config.Config) (mcp.Deps, *autofill.Service) {
	var completer mapper.Completer
	if cfg.GroqAPIKey != "" {
		client, err := llm.NewClient(cfg.LLMBaseURL, cfg.LLMModel, cfg.GroqAPIKey)
		if err != nil {
			log.Printf("Completion client unavailable, mapping will be empty: %v", err)
		} else {
			completer = client
		}
	} else {
		log.Printf("GROQ_API_KEY not set, running without a completion model")
	}

	ocrEngine := ocr.NewEngine(cfg.TessdataPrefix)
	pdfService := pdf.NewService(cfg.MaxFileSize, ocrEngine, cfg.IsDebug())
	parser := userdata.NewParser(cfg.IsDebug())
	proposer := mapper.NewLLMProposer(completer, cfg.IsDebug())
	fillService := autofill.NewService(pdfService, parser, proposer)

	deps := mcp.Deps{
		PDFService: pdfService,
		Autofill:   fillService,
		Parser:     parser,
		Fetcher:    fetch.NewClient(cfg.HTTPTimeout),
		History:    history.NewStore(),
	}
	if cfg.SerperAPIKey != "" {
		deps.Searcher = search.NewClient(cfg.SerperAPIKey, cfg.HTTPTimeout)
	}
	if completer != nil {
		deps.Assistant = assist.NewAssistant(completer)
	}

	return deps, fillService
}

// runFillMode runs a single local fill and exits
func runFillMode(ctx context.Context, cfg *config.Config, fillService *autofill.Service) error {
	formBytes, err := os.ReadFile(cfg.FormPath)
	if err != nil {
		return fmt.Errorf("failed to read form: %w", err)
	}
	profile, err := os.ReadFile(cfg.ProfilePath)
	if err != nil {
		return fmt.Errorf("failed to read profile: %w", err)
	}

	result, err := fillService.FillForm(ctx, autofill.Request{
		FormPDF: formBytes,
		Profile: string(profile),
	})
	if err != nil {
		return err
	}

	if err := os.WriteFile(cfg.OutputPath, result.Output, 0o600); err != nil {
		return fmt.Errorf("failed to write filled form: %w", err)
	}

	fmt.Printf("Wrote %s\n", cfg.OutputPath)
	fmt.Printf("Slots: %d, filled: %d, skipped: %d\n",
		len(result.Slots), len(result.Filled), len(result.Skipped))
	for _, name := range result.Filled {
		fmt.Printf("  %s = %s\n", name, result.Values[name])
	}
	if len(result.Skipped) > 0 {
		fmt.Println("Skipped:")
		for _, name := range result.Skipped {
			fmt.Printf("  %s\n", name)
		}
	}
	return nil
}

// runServerMode handles server mode execution with signal handling
func runServerMode(ctx context.Context, cancel context.CancelFunc, server *mcp.Server) {
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- server.Run(ctx)
	}()

	select {
	case sig := <-signalCh:
		log.Printf("Received signal: %s", sig)
		log.Println("Initiating graceful shutdown...")
		cancel()

		if err := <-serverErrCh; err != nil {
			log.Printf("Server shutdown with error: %v", err)
			os.Exit(1)
		}

	case err := <-serverErrCh:
		if err != nil {
			log.Printf("Server error: %v", err)
			os.Exit(1)
		}
	}

	log.Println("Server stopped successfully")
}

// runStdioMode handles stdio mode execution
func runStdioMode(ctx context.Context, _ context.CancelFunc, server *mcp.Server) {
	// The parent process controls our lifecycle in stdio mode
	if err := server.Run(ctx); err != nil {
		if os.Getenv("DEBUG") != "" {
			log.Printf("Server error: %v", err)
		}
		os.Exit(1)
	}
}

func main() {
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			printVersion()
			return
		}
	}

	cfg, err := config.LoadFromFlags()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	setupLogging(cfg)

	if version != "dev" {
		cfg.Version = version
	}

	if cfg.IsDebug() && cfg.IsServerMode() {
		log.Printf("Starting with configuration: %s", cfg.String())
	}

	deps, fillService := buildServices(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.IsFillMode() {
		if err := runFillMode(ctx, cfg, fillService); err != nil {
			log.Fatalf("Fill failed: %v", err)
		}
		return
	}

	server, err := mcp.NewServer(cfg, deps)
	if err != nil {
		log.Fatalf("Failed to create MCP server: %v", err)
	}

	if cfg.IsServerMode() {
		runServerMode(ctx, cancel, server)
	} else {
		runStdioMode(ctx, cancel, server)
	}
}

// printVersion prints version information
func printVersion() {
	fmt.Printf("Taxation Agent\n")
	fmt.Printf("Version: %s\n", version)
	fmt.Printf("Build Time: %s\n", buildTime)
	fmt.Printf("Git Commit: %s\n", gitCommit)
	fmt.Printf("Built with: %s\n", runtime.Version())
}

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"agentql-tools/internal/di"
	"agentql-tools/internal/domain/entity"
	"agentql-tools/internal/infrastructure/config"
	"agentql-tools/internal/infrastructure/env"

	"github.com/spf13/cobra"
)

var version = "dev"

// Exit codes per error category.
const (
	exitOK = iota
	exitError
	exitInvalidInput
	exitConfiguration
	exitAuthentication
	exitService
	exitTransport
)

var (
	configPath string
	logLevel   string
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return exitCode(err)
	}
	return exitOK
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "agentql",
		Short:   "Extract structured web data with AgentQL",
		Version: version,
		Long: `agentql extracts structured data from web pages through the AgentQL API,
either from a public URL or from a page loaded in a local Chromium, and
exposes the same tools to agents over MCP and an HTTP plugin endpoint.`,
		Example: `  # Extract with an AgentQL query
  agentql extract https://news.ycombinator.com -q "{ posts[] { title url } }"

  # Extract with a natural language prompt and save the screenshot
  agentql extract https://example.com -p "the page heading" --screenshot-out shot.jpg

  # Load as LangChain documents split into chunks
  agentql load https://example.com -p "all paragraphs" --chunk-size 500

  # Query a page in a live browser
  agentql browse https://example.com -q "{ heading }" --show-ui

  # Run an agent preset
  agentql agent --preset job_scraper --output-dir out

  # Serve tools to an MCP client
  agentql mcp --browser`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	root.AddCommand(
		newExtractCmd(),
		newLoadCmd(),
		newBrowseCmd(),
		newValidateCmd(),
		newSampleCmd(),
		newAgentCmd(),
		newMCPCmd(),
		newServeCmd(),
	)
	return root
}

func loadConfig() (*config.Config, *env.EnvService, error) {
	envService := env.NewEnvService()
	cfg, err := config.Load(configPath, envService)
	if err != nil {
		return nil, nil, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	return cfg, envService, nil
}

func newContainer(ctx context.Context, opts di.Options) (*di.Container, error) {
	cfg, envService, err := loadConfig()
	if err != nil {
		return nil, err
	}
	opts.Lookup = envService.Lookup
	return di.NewContainer(ctx, cfg, opts)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case entity.IsInvalidInputError(err):
		return exitInvalidInput
	case entity.IsConfigurationError(err):
		return exitConfiguration
	case entity.IsAuthenticationError(err):
		return exitAuthentication
	case entity.IsServiceError(err):
		return exitService
	case entity.IsTransportError(err), errors.Is(err, context.DeadlineExceeded):
		return exitTransport
	default:
		return exitError
	}
}

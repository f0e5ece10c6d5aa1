package di

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"agentql-tools/internal/adapter/httpapi"
	"agentql-tools/internal/adapter/mcpserver"
	"agentql-tools/internal/adapter/tool"
	"agentql-tools/internal/application/port/input"
	"agentql-tools/internal/application/port/output"
	"agentql-tools/internal/application/service"
	"agentql-tools/internal/domain/entity"
	"agentql-tools/internal/infrastructure/agentql"
	"agentql-tools/internal/infrastructure/browser/rod"
	"agentql-tools/internal/infrastructure/config"
	"agentql-tools/internal/infrastructure/llm/openrouter"
	"agentql-tools/internal/infrastructure/logger"
	"agentql-tools/internal/infrastructure/prompts"
	"agentql-tools/internal/infrastructure/query"
	"agentql-tools/internal/usecase/executor"
)

type Container struct {
	Config  *config.Config
	Logger  output.LoggerPort
	Client  *agentql.Client
	Browser *rod.BrowserAdapter
	Tools   *service.ToolRegistryImpl
}

type Options struct {
	// Browser launches Chromium and registers the browser-bound tools.
	Browser bool
	// OutputDir enables the write_file tool rooted at this directory.
	OutputDir string
	RunName   string
	// Lookup replaces os.LookupEnv for API key resolution.
	Lookup func(string) (string, bool)
	// HTTPClient replaces the default transport of the extraction client.
	HTTPClient agentql.Doer
	Logger     output.LoggerPort
}

func NewContainer(ctx context.Context, cfg *config.Config, opts Options) (*Container, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	log := opts.Logger
	if log == nil {
		l, err := logger.NewLoggerAdapter(logger.Config{
			Level:   cfg.Log.Level,
			Dir:     cfg.Log.Dir,
			RunName: opts.RunName,
			Stderr:  true,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create logger: %w", err)
		}
		log = l
	}

	clientOpts := []agentql.Option{
		agentql.WithLogger(log),
		agentql.WithEnvLookup(opts.Lookup),
		agentql.WithHTTPClient(opts.HTTPClient),
	}
	client, err := agentql.NewClient(cfg.AgentQL.ClientConfig(), clientOpts...)
	if err != nil {
		log.Close()
		return nil, err
	}

	c := &Container{
		Config: cfg,
		Logger: log,
		Client: client,
		Tools:  service.NewToolRegistry(),
	}

	c.Tools.Register(tool.NewExtractWebDataTool(client, log,
		tool.WithParams(cfg.AgentQL.Params()),
		tool.WithStealthMode(cfg.AgentQL.IsStealthModeEnabled),
	))
	if opts.OutputDir != "" {
		c.Tools.Register(tool.NewWriteFileTool(opts.OutputDir, log))
	}

	if opts.Browser {
		if err := c.startBrowser(ctx); err != nil {
			c.Close()
			return nil, err
		}
	}

	return c, nil
}

func (c *Container) startBrowser(ctx context.Context) error {
	browserCfg := rod.DefaultConfig()
	browserCfg.Headless = c.Config.Browser.Headless
	browserCfg.NoSandbox = c.Config.Browser.NoSandbox
	browserCfg.SlowMotion = time.Duration(c.Config.Browser.SlowMotionMs) * time.Millisecond
	browserCfg.Timeout = time.Duration(c.Config.Browser.TimeoutSeconds) * time.Second

	browser, err := rod.NewBrowserAdapter(ctx, browserCfg)
	if err != nil {
		return fmt.Errorf("failed to create browser: %w", err)
	}
	c.Browser = browser

	provider := rod.NewPageProvider(browser, c.Client)
	for _, t := range tool.NewBrowserToolkit(provider, c.Config.AgentQL.RequestOrigin) {
		c.Tools.Register(t)
	}
	for _, t := range tool.NewBrowserHelperTools(browser, c.Logger) {
		c.Tools.Register(t)
	}
	return nil
}

// PageProvider is nil when the container was built without a browser.
func (c *Container) PageProvider() output.PageProvider {
	if c.Browser == nil {
		return nil
	}
	return rod.NewPageProvider(c.Browser, c.Client)
}

// TaskExecutor builds the agent loop. The LLM settings are only required here.
// progress may be nil.
func (c *Container) TaskExecutor(maxIterations int, progress output.ProgressPort) (input.TaskExecutor, error) {
	if c.Config.LLM.APIKey == "" {
		return nil, entity.NewConfigurationError("OPENROUTER_API_KEY not set")
	}
	if c.Config.LLM.Model == "" {
		return nil, entity.NewConfigurationError("OPENROUTER_MODEL_NAME not set")
	}

	llmCfg := openrouter.DefaultConfig(c.Config.LLM.APIKey, c.Config.LLM.Model)
	llmCfg.BaseURL = c.Config.LLM.BaseURL
	llmCfg.Logger = c.Logger
	llm := openrouter.NewOpenRouterAdapter(llmCfg)

	systemPrompt, err := prompts.GenerateSystemPrompt(prompts.DefaultSystemPrompt, c.Tools)
	if err != nil {
		return nil, err
	}

	opts := []executor.Option{executor.WithMaxIterations(maxIterations)}
	if progress != nil {
		opts = append(opts, executor.WithProgress(progress))
	}
	return executor.New(llm, c.Tools, c.Logger, systemPrompt, opts...), nil
}

func (c *Container) MCPServer(version string) *mcpserver.Server {
	return mcpserver.NewServer(c.Tools, c.Logger, version)
}

// Router builds the HTTP plugin endpoint. Credential validation uses a fresh
// client per request so the submitted key is checked, not the configured one.
func (c *Container) Router() http.Handler {
	cfg := httpapi.DefaultConfig()
	cfg.LogLevel = c.Config.Log.Level

	return httpapi.NewRouter(cfg, httpapi.Deps{
		Registry: c.Tools,
		Validator: func(apiKey string) (output.CredentialValidator, error) {
			clientCfg := c.Config.AgentQL.ClientConfig()
			clientCfg.APIKey = apiKey
			return agentql.NewClient(clientCfg,
				agentql.WithLogger(c.Logger),
				agentql.WithEnvLookup(noEnv),
			)
		},
		Sampler: query.Sample,
		Logger:  c.Logger,
	})
}

func (c *Container) Close() {
	if c.Browser != nil {
		c.Browser.Close()
	}
	if c.Logger != nil {
		c.Logger.Close()
	}
}

func noEnv(string) (string, bool) { return "", false }

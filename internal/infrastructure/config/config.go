package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"agentql-tools/internal/application/port/output"
	"agentql-tools/internal/domain/entity"
	"agentql-tools/internal/infrastructure/agentql"

	"gopkg.in/yaml.v3"
)

const (
	DefaultEndpoint         = agentql.DefaultEndpoint
	DefaultValidateEndpoint = agentql.DefaultValidateEndpoint
	DefaultLLMBaseURL       = "https://openrouter.ai/api/v1"
	DefaultPluginAddr       = ":8080"
)

// Config is the optional YAML file merged with environment overrides. The
// AgentQL API key is deliberately absent from the environment merge: the
// extraction client resolves it itself (explicit value first, then AGENTQL_API_KEY).
type Config struct {
	AgentQL AgentQLConfig `yaml:"agentql"`
	Browser BrowserConfig `yaml:"browser"`
	LLM     LLMConfig     `yaml:"llm"`
	Plugin  PluginConfig  `yaml:"plugin"`
	Log     LogConfig     `yaml:"log"`
}

type AgentQLConfig struct {
	APIKey           string `yaml:"api_key"`
	Endpoint         string `yaml:"endpoint"`
	ValidateEndpoint string `yaml:"validate_endpoint"`
	TimeoutSeconds   int    `yaml:"timeout_seconds"`
	RequestOrigin    string `yaml:"request_origin"`

	Mode                    string `yaml:"mode"`
	WaitFor                 int    `yaml:"wait_for"`
	IsScrollToBottomEnabled bool   `yaml:"is_scroll_to_bottom_enabled"`
	IsScreenshotEnabled     bool   `yaml:"is_screenshot_enabled"`
	IsStealthModeEnabled    bool   `yaml:"is_stealth_mode_enabled"`
}

type BrowserConfig struct {
	Headless       bool `yaml:"headless"`
	SlowMotionMs   int  `yaml:"slow_motion_ms"`
	TimeoutSeconds int  `yaml:"timeout_seconds"`
	NoSandbox      bool `yaml:"no_sandbox"`
}

type LLMConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
}

type PluginConfig struct {
	Addr string `yaml:"addr"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	Dir   string `yaml:"dir"`
}

func Default() *Config {
	return (&Config{Browser: BrowserConfig{Headless: true}}).WithDefaults()
}

func (c *Config) WithDefaults() *Config {
	if c == nil {
		c = &Config{Browser: BrowserConfig{Headless: true}}
	}
	if c.AgentQL.Endpoint == "" {
		c.AgentQL.Endpoint = DefaultEndpoint
	}
	if c.AgentQL.ValidateEndpoint == "" {
		c.AgentQL.ValidateEndpoint = DefaultValidateEndpoint
	}
	if c.AgentQL.TimeoutSeconds <= 0 {
		c.AgentQL.TimeoutSeconds = int(entity.DefaultAPITimeout / time.Second)
	}
	if c.AgentQL.RequestOrigin == "" {
		c.AgentQL.RequestOrigin = entity.DefaultRequestOrigin
	}
	if c.AgentQL.Mode == "" {
		c.AgentQL.Mode = string(entity.DefaultResponseMode)
	}
	if c.Browser.TimeoutSeconds <= 0 {
		c.Browser.TimeoutSeconds = 10
	}
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = DefaultLLMBaseURL
	}
	if c.Plugin.Addr == "" {
		c.Plugin.Addr = DefaultPluginAddr
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	return c
}

// Load reads the YAML file at path (skipped when path is empty), applies
// environment overrides from env and fills defaults.
func Load(path string, env output.ConfigPort) (*Config, error) {
	cfg := &Config{Browser: BrowserConfig{Headless: true}}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if env != nil {
		applyEnv(cfg, env)
	}
	cfg.WithDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config, env output.ConfigPort) {
	cfg.AgentQL.Endpoint = envOr(cfg.AgentQL.Endpoint, env.Get("AGENTQL_ENDPOINT"))
	cfg.AgentQL.ValidateEndpoint = envOr(cfg.AgentQL.ValidateEndpoint, env.Get("AGENTQL_VALIDATE_ENDPOINT"))
	cfg.AgentQL.RequestOrigin = envOr(cfg.AgentQL.RequestOrigin, env.Get("AGENTQL_REQUEST_ORIGIN"))
	cfg.AgentQL.Mode = envOr(cfg.AgentQL.Mode, env.Get("AGENTQL_MODE"))
	cfg.AgentQL.TimeoutSeconds = env.GetInt("AGENTQL_TIMEOUT", cfg.AgentQL.TimeoutSeconds)

	cfg.Browser.Headless = env.GetBool("BROWSER_HEADLESS", cfg.Browser.Headless)

	cfg.LLM.APIKey = envOr(cfg.LLM.APIKey, env.Get("OPENROUTER_API_KEY"))
	cfg.LLM.Model = envOr(cfg.LLM.Model, env.Get("OPENROUTER_MODEL_NAME"))
	cfg.LLM.BaseURL = envOr(cfg.LLM.BaseURL, env.Get("OPENROUTER_BASE_URL"))

	cfg.Plugin.Addr = envOr(cfg.Plugin.Addr, env.Get("PLUGIN_ADDR"))
	cfg.Log.Level = envOr(cfg.Log.Level, env.Get("LOG_LEVEL"))
	cfg.Log.Dir = envOr(cfg.Log.Dir, env.Get("LOG_DIR"))
}

func (c *Config) Validate() error {
	if !entity.ResponseMode(c.AgentQL.Mode).Valid() {
		return entity.NewConfigurationError(fmt.Sprintf("agentql.mode must be 'fast' or 'standard', got %q", c.AgentQL.Mode))
	}
	if c.AgentQL.WaitFor < 0 || c.AgentQL.WaitFor > entity.MaxWaitForPageLoadSeconds {
		return entity.NewConfigurationError("agentql.wait_for must be between 0 and 10 seconds")
	}
	return nil
}

func (c AgentQLConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Params returns the REST extraction flags configured for tools and loaders.
func (c AgentQLConfig) Params() entity.Params {
	p := entity.DefaultParams()
	p.Mode = entity.ResponseMode(c.Mode)
	p.WaitFor = c.WaitFor
	p.IsScrollToBottomEnabled = c.IsScrollToBottomEnabled
	p.IsScreenshotEnabled = c.IsScreenshotEnabled
	return p
}

// ClientConfig maps the file settings onto the extraction client config.
func (c AgentQLConfig) ClientConfig() agentql.Config {
	return agentql.Config{
		APIKey:           c.APIKey,
		Endpoint:         c.Endpoint,
		ValidateEndpoint: c.ValidateEndpoint,
		Timeout:          c.Timeout(),
		RequestOrigin:    c.RequestOrigin,
	}
}

func (c AgentQLConfig) Metadata() entity.RequestMetadata {
	return entity.RequestMetadata{ExperimentalStealthModeEnabled: c.IsStealthModeEnabled}
}

func envOr(existing, value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return existing
	}
	return value
}

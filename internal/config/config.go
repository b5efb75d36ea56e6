package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/Mikele-Kochas/SmartNotebook/pkg/xerr"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Model     ModelConfig     `mapstructure:"model"`
	Gemini    GeminiConfig    `mapstructure:"gemini"`
	OpenAI    OpenAIConfig    `mapstructure:"openai"`
	Doubao    DoubaoConfig    `mapstructure:"doubao"`
	Qwen      QwenConfig      `mapstructure:"qwen"`
	Anthropic AnthropicConfig `mapstructure:"anthropic"`
	Prompt    PromptConfig    `mapstructure:"prompt"`
	CORS      CORSConfig      `mapstructure:"cors"`
	Security  SecurityConfig  `mapstructure:"security"`
	MCP       MCPConfig       `mapstructure:"mcp"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	MaxHeaderBytes int           `mapstructure:"max_header_bytes"`
}

// ModelConfig selects the provider and the generation parameters passed to it.
type ModelConfig struct {
	Provider    string        `mapstructure:"provider"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Temperature float32       `mapstructure:"temperature"`
	TopP        float32       `mapstructure:"top_p"`
	TopK        int           `mapstructure:"top_k"`
	MaxTokens   int           `mapstructure:"max_tokens"`

	// DebugRequest logs outbound provider requests with secrets redacted.
	DebugRequest bool `mapstructure:"debug_request"`
}

type GeminiConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	Model   string `mapstructure:"model"`
	// SafetyThreshold applies to every harm category, e.g. BLOCK_MEDIUM_AND_ABOVE.
	SafetyThreshold string `mapstructure:"safety_threshold"`
}

type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	Model   string `mapstructure:"model"`
}

type DoubaoConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	Model   string `mapstructure:"model"`
}

type QwenConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	Model   string `mapstructure:"model"`
}

type AnthropicConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	Model   string `mapstructure:"model"`
}

type PromptConfig struct {
	Language string `mapstructure:"language"`
}

type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

type SecurityConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// IsDevelopment disables the checks that break plain-HTTP local setups.
	IsDevelopment bool `mapstructure:"is_development"`
}

type MCPConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

const envPrefix = "NOTES"

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 90*time.Second)
	v.SetDefault("server.max_header_bytes", 1<<20)

	v.SetDefault("model.provider", "gemini")
	v.SetDefault("model.timeout", 60*time.Second)
	v.SetDefault("model.temperature", 0.7)
	v.SetDefault("model.top_p", 0.95)
	v.SetDefault("model.top_k", 64)
	v.SetDefault("model.max_tokens", 8192)
	v.SetDefault("model.debug_request", false)

	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.base_url", "https://generativelanguage.googleapis.com/v1beta")
	v.SetDefault("gemini.model", "gemini-1.5-flash")
	v.SetDefault("gemini.safety_threshold", "BLOCK_MEDIUM_AND_ABOVE")

	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.base_url", "")
	v.SetDefault("openai.model", "gpt-4o-mini")

	v.SetDefault("doubao.api_key", "")
	v.SetDefault("doubao.base_url", "")
	v.SetDefault("doubao.model", "")

	v.SetDefault("qwen.api_key", "")
	v.SetDefault("qwen.base_url", "https://dashscope.aliyuncs.com/compatible-mode/v1")
	v.SetDefault("qwen.model", "qwen-plus")

	v.SetDefault("anthropic.api_key", "")
	v.SetDefault("anthropic.base_url", "")
	v.SetDefault("anthropic.model", "claude-3-5-haiku-latest")

	v.SetDefault("prompt.language", "en")

	v.SetDefault("cors.allowed_origins", []string{
		"capacitor://localhost",
		"ionic://localhost",
		"http://localhost",
		"http://localhost:8100",
	})
	v.SetDefault("cors.allowed_methods", []string{"GET", "HEAD", "PUT", "PATCH", "POST", "DELETE"})
	v.SetDefault("cors.allowed_headers", []string{"Origin", "Content-Type", "Content-Length", "Accept", "X-Request-ID"})
	v.SetDefault("cors.exposed_headers", []string{"X-Request-ID"})
	v.SetDefault("cors.allow_credentials", true)
	v.SetDefault("cors.max_age", 600)

	v.SetDefault("security.enabled", true)
	v.SetDefault("security.is_development", false)

	v.SetDefault("mcp.enabled", false)
	v.SetDefault("mcp.path", "/mcp")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 50)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 28)
}

// Load reads configuration from the YAML file at configPath (optional; a
// missing file falls back to defaults), a .env file in the working directory
// and NOTES_* environment variables, in increasing order of precedence.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config %s: %w", configPath, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	applyKeyFallbacks(cfg)
	return cfg, nil
}

// Keys set in the file or NOTES_* win; the provider's conventional variables
// are only consulted when those are empty.
func applyKeyFallbacks(cfg *Config) {
	fallback := func(dst *string, names ...string) {
		if *dst != "" {
			return
		}
		for _, name := range names {
			if val := os.Getenv(name); val != "" {
				*dst = val
				return
			}
		}
	}
	fallback(&cfg.Gemini.APIKey, "GEMINI_API_KEY", "GOOGLE_API_KEY")
	fallback(&cfg.OpenAI.APIKey, "OPENAI_API_KEY")
	fallback(&cfg.Doubao.APIKey, "DOUBAO_API_KEY", "ARK_API_KEY")
	fallback(&cfg.Qwen.APIKey, "DASHSCOPE_API_KEY", "QWEN_API_KEY")
	fallback(&cfg.Anthropic.APIKey, "ANTHROPIC_API_KEY")
}

// APIKey returns the credential of the selected provider.
func (c *Config) APIKey() string {
	switch c.Model.Provider {
	case "gemini":
		return c.Gemini.APIKey
	case "openai":
		return c.OpenAI.APIKey
	case "doubao":
		return c.Doubao.APIKey
	case "qwen":
		return c.Qwen.APIKey
	case "anthropic":
		return c.Anthropic.APIKey
	}
	return ""
}

// Validate checks the settings required to serve requests. A missing provider
// credential is reported as xerr.ConfigurationMissing.
func (c *Config) Validate() error {
	switch c.Model.Provider {
	case "gemini", "openai", "doubao", "qwen", "anthropic":
	default:
		return xerr.Newf(xerr.ConfigurationMissing, "unsupported model provider %q", c.Model.Provider)
	}
	if strings.TrimSpace(c.APIKey()) == "" {
		return xerr.Newf(xerr.ConfigurationMissing, "API key for provider %q is not set", c.Model.Provider)
	}
	if c.Model.Provider == "doubao" && c.Doubao.Model == "" {
		return xerr.New(xerr.ConfigurationMissing, "doubao.model (endpoint id) is not set")
	}
	if c.Model.Timeout <= 0 {
		return fmt.Errorf("model.timeout must be positive, got %s", c.Model.Timeout)
	}
	return nil
}

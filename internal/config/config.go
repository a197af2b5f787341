package config

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/selda-cli/internal/model"
)

// Config holds the full application configuration.
type Config struct {
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Fetch     FetchConfig     `yaml:"fetch" mapstructure:"fetch"`
	Extract   ExtractConfig   `yaml:"extract" mapstructure:"extract"`
	Insight   InsightConfig   `yaml:"insight" mapstructure:"insight"`
	Pipeline  PipelineConfig  `yaml:"pipeline" mapstructure:"pipeline"`
	Report    ReportConfig    `yaml:"report" mapstructure:"report"`
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Batch     BatchConfig     `yaml:"batch" mapstructure:"batch"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// AnthropicConfig holds Anthropic API settings. An empty Key is allowed at
// load time; the insight requester reports it when a run needs the model.
type AnthropicConfig struct {
	Key         string   `yaml:"key" mapstructure:"key"`
	Model       string   `yaml:"model" mapstructure:"model"`
	MaxTokens   int64    `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature *float64 `yaml:"temperature" mapstructure:"temperature"`
	BaseURL     string   `yaml:"base_url" mapstructure:"base_url"`
	TimeoutSecs int      `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// FetchConfig configures the page fetcher.
type FetchConfig struct {
	TimeoutSecs  int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	UserAgent    string `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes int64  `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
}

// ExtractConfig configures snapshot extraction.
type ExtractConfig struct {
	MaxTextChars int    `yaml:"max_text_chars" mapstructure:"max_text_chars"`
	MaxKeywords  int    `yaml:"max_keywords" mapstructure:"max_keywords"`
	LexiconPath  string `yaml:"lexicon_path" mapstructure:"lexicon_path"`
}

// InsightConfig configures prompt construction and reconciliation.
type InsightConfig struct {
	PromptTextChars int    `yaml:"prompt_text_chars" mapstructure:"prompt_text_chars"`
	MaxHeadings     int    `yaml:"max_headings" mapstructure:"max_headings"`
	RequiredFields  string `yaml:"required_fields" mapstructure:"required_fields"`
	PrefillJSON     bool   `yaml:"prefill_json" mapstructure:"prefill_json"`
}

// PipelineConfig configures the orchestrator retry.
type PipelineConfig struct {
	MaxAttempts        int `yaml:"max_attempts" mapstructure:"max_attempts"`
	InitialBackoffSecs int `yaml:"initial_backoff_secs" mapstructure:"initial_backoff_secs"`
}

// ReportConfig holds the static blocks stamped onto every report.
type ReportConfig struct {
	Footer          model.Footer `yaml:"footer" mapstructure:"footer"`
	RevOpsChecklist []string     `yaml:"revops_checklist" mapstructure:"revops_checklist"`
}

// StoreConfig configures the optional run-history backend. An empty Driver
// disables recording.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// BatchConfig configures batch processing.
type BatchConfig struct {
	MaxConcurrent int     `yaml:"max_concurrent" mapstructure:"max_concurrent"`
	RatePerSec    float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// DefaultRevOpsChecklist is the operational checklist attached to reports
// when the config does not override it.
var DefaultRevOpsChecklist = []string{
	"Confirm ideal customer segments against closed-won CRM data.",
	"Map decision-maker personas to existing contacts and accounts.",
	"Set up alerts for the listed buying triggers.",
	"Load first-touch templates into the sequencing tool.",
	"Agree on success metrics before launching the campaign.",
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("SELDA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	footer := model.DefaultFooter()

	// Defaults
	v.SetDefault("anthropic.key", "")
	v.SetDefault("anthropic.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("anthropic.max_tokens", 4096)
	v.SetDefault("anthropic.base_url", "")
	v.SetDefault("anthropic.timeout_secs", 120)
	v.SetDefault("fetch.timeout_secs", 15)
	v.SetDefault("fetch.user_agent", "SeldaBot/1.0 (+https://selda.ai; hello@selda.ai)")
	v.SetDefault("fetch.max_body_bytes", 5<<20)
	v.SetDefault("extract.max_text_chars", 12000)
	v.SetDefault("extract.max_keywords", 20)
	v.SetDefault("extract.lexicon_path", "")
	v.SetDefault("insight.prompt_text_chars", 11000)
	v.SetDefault("insight.max_headings", 20)
	v.SetDefault("insight.required_fields", "default")
	v.SetDefault("insight.prefill_json", true)
	v.SetDefault("pipeline.max_attempts", 1)
	v.SetDefault("pipeline.initial_backoff_secs", 2)
	v.SetDefault("report.footer.tagline", footer.Tagline)
	v.SetDefault("report.footer.description", footer.Description)
	v.SetDefault("report.footer.note", footer.Note)
	v.SetDefault("report.footer.link", footer.Link)
	v.SetDefault("report.revops_checklist", DefaultRevOpsChecklist)
	v.SetDefault("store.driver", "")
	v.SetDefault("store.database_url", "")
	v.SetDefault("store.max_conns", 4)
	v.SetDefault("store.min_conns", 1)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("batch.max_concurrent", 4)
	v.SetDefault("batch.rate_per_sec", 1.0)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	_ = v.BindEnv("anthropic.temperature")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings a command mode depends on and reports every
// problem at once. Modes are analyze, batch, serve and runs.
func (c *Config) Validate(mode string) error {
	var errs []string

	switch mode {
	case "analyze", "batch", "serve":
		errs = append(errs, c.validateRun()...)
	case "runs":
		if c.Store.Driver == "" {
			errs = append(errs, "store.driver is required")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	errs = append(errs, c.validateStore()...)

	if mode == "batch" || mode == "serve" {
		if c.Batch.MaxConcurrent < 1 || c.Batch.MaxConcurrent > 50 {
			errs = append(errs, fmt.Sprintf("batch.max_concurrent must be between 1 and 50 (got %d)", c.Batch.MaxConcurrent))
		}
		if c.Batch.RatePerSec <= 0 {
			errs = append(errs, "batch.rate_per_sec must be > 0")
		}
	}
	if mode == "serve" && c.Server.Port <= 0 {
		errs = append(errs, "server.port must be > 0")
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

func (c *Config) validateRun() []string {
	var errs []string
	if c.Fetch.TimeoutSecs <= 0 {
		errs = append(errs, "fetch.timeout_secs must be > 0")
	}
	switch c.Insight.RequiredFields {
	case "", "default", "strict":
	default:
		errs = append(errs, fmt.Sprintf("insight.required_fields must be default or strict (got %q)", c.Insight.RequiredFields))
	}
	if c.Pipeline.MaxAttempts < 1 || c.Pipeline.MaxAttempts > 5 {
		errs = append(errs, fmt.Sprintf("pipeline.max_attempts must be between 1 and 5 (got %d)", c.Pipeline.MaxAttempts))
	}
	return errs
}

func (c *Config) validateStore() []string {
	switch c.Store.Driver {
	case "":
		return nil
	case "sqlite", "postgres":
		if c.Store.DatabaseURL == "" {
			return []string{"store.database_url is required when store.driver is set"}
		}
		return nil
	}
	return []string{fmt.Sprintf("store.driver must be sqlite or postgres (got %q)", c.Store.Driver)}
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}

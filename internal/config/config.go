package config

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Places    PlacesConfig    `yaml:"places" mapstructure:"places"`
	Instagram InstagramConfig `yaml:"instagram" mapstructure:"instagram"`
	WebReader WebReaderConfig `yaml:"webreader" mapstructure:"webreader"`
	Fetch     FetchConfig     `yaml:"fetch" mapstructure:"fetch"`
	Scrape    ScrapeConfig    `yaml:"scrape" mapstructure:"scrape"`
	Pipeline  PipelineConfig  `yaml:"pipeline" mapstructure:"pipeline"`
	Outreach  OutreachConfig  `yaml:"outreach" mapstructure:"outreach"`
	SMTP      SMTPConfig      `yaml:"smtp" mapstructure:"smtp"`
	Export    ExportConfig    `yaml:"export" mapstructure:"export"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend. MaxConns and MinConns only
// apply to the postgres driver.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	Path        string `yaml:"path" mapstructure:"path"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// PlacesConfig holds the map-listing provider settings. The endpoint is an
// actor-style search API with no usable default; the collector is skipped
// when it is unset.
type PlacesConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// InstagramConfig holds the profile-scraper provider settings. Same contract
// as Places: no endpoint, no collector.
type InstagramConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// WebReaderConfig holds the page reader/search API settings.
type WebReaderConfig struct {
	Key           string `yaml:"key" mapstructure:"key"`
	BaseURL       string `yaml:"base_url" mapstructure:"base_url"`
	SearchBaseURL string `yaml:"search_base_url" mapstructure:"search_base_url"`
}

// FetchConfig configures outbound HTTP politeness for the scrapers.
type FetchConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int     `yaml:"burst" mapstructure:"burst"`
	TimeoutSecs       int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries        int     `yaml:"max_retries" mapstructure:"max_retries"`
	UserAgent         string  `yaml:"user_agent" mapstructure:"user_agent"`
}

// ScrapeConfig configures the directory/government/university scrapers.
type ScrapeConfig struct {
	MaxPages      int `yaml:"max_pages" mapstructure:"max_pages"`
	MaxConcurrent int `yaml:"max_concurrent" mapstructure:"max_concurrent"`
}

// PipelineConfig configures lead processing.
type PipelineConfig struct {
	MinScore float64 `yaml:"min_score" mapstructure:"min_score"`
}

// OutreachConfig configures email generation and sending policy.
type OutreachConfig struct {
	TemplateDir        string   `yaml:"template_dir" mapstructure:"template_dir"`
	TargetingFile      string   `yaml:"targeting_file" mapstructure:"targeting_file"`
	SenderName         string   `yaml:"sender_name" mapstructure:"sender_name"`
	HourlyLimit        int      `yaml:"hourly_limit" mapstructure:"hourly_limit"`
	DailyLimit         int      `yaml:"daily_limit" mapstructure:"daily_limit"`
	BatchSize          int      `yaml:"batch_size" mapstructure:"batch_size"`
	SendDelaySecs      float64  `yaml:"send_delay_secs" mapstructure:"send_delay_secs"`
	MaxRetries         int      `yaml:"max_retries" mapstructure:"max_retries"`
	RetryDelaySecs     int      `yaml:"retry_delay_secs" mapstructure:"retry_delay_secs"`
	MaxGenerations     int      `yaml:"max_generations" mapstructure:"max_generations"`
	CooldownDays       int      `yaml:"cooldown_days" mapstructure:"cooldown_days"`
	BlacklistDomains   []string `yaml:"blacklist_domains" mapstructure:"blacklist_domains"`
	MaxAttachmentBytes int64    `yaml:"max_attachment_bytes" mapstructure:"max_attachment_bytes"`
}

// SMTPConfig holds SMTP credentials for the sender.
type SMTPConfig struct {
	Host     string `yaml:"host" mapstructure:"host"`
	Port     int    `yaml:"port" mapstructure:"port"`
	Username string `yaml:"username" mapstructure:"username"`
	Password string `yaml:"password" mapstructure:"password"`
	From     string `yaml:"from" mapstructure:"from"`
	FromName string `yaml:"from_name" mapstructure:"from_name"`
}

// ExportConfig configures file output.
type ExportConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// ServerConfig configures the REST API server.
type ServerConfig struct {
	Port  int    `yaml:"port" mapstructure:"port"`
	Token string `yaml:"token" mapstructure:"token"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("LEADGEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "leadgen.db")
	v.SetDefault("store.max_conns", 10)
	v.SetDefault("store.min_conns", 2)
	v.SetDefault("webreader.base_url", "https://r.jina.ai")
	v.SetDefault("webreader.search_base_url", "https://s.jina.ai")
	v.SetDefault("fetch.requests_per_second", 0.5)
	v.SetDefault("fetch.burst", 1)
	v.SetDefault("fetch.timeout_secs", 30)
	v.SetDefault("fetch.max_retries", 3)
	v.SetDefault("fetch.user_agent", "leadgen-cli/1.0")
	v.SetDefault("scrape.max_pages", 5)
	v.SetDefault("scrape.max_concurrent", 4)
	v.SetDefault("pipeline.min_score", 0.3)
	v.SetDefault("outreach.sender_name", "Lead Generator")
	v.SetDefault("outreach.hourly_limit", 100)
	v.SetDefault("outreach.daily_limit", 200)
	v.SetDefault("outreach.batch_size", 10)
	v.SetDefault("outreach.send_delay_secs", 2.0)
	v.SetDefault("outreach.max_retries", 3)
	v.SetDefault("outreach.retry_delay_secs", 60)
	v.SetDefault("outreach.max_generations", 3)
	v.SetDefault("outreach.cooldown_days", 30)
	v.SetDefault("outreach.blacklist_domains", []string{"example.com", "test.com", "invalid.com", "domain.com"})
	v.SetDefault("outreach.max_attachment_bytes", 10*1024*1024)
	v.SetDefault("smtp.host", "smtp.gmail.com")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.from_name", "Lead Generator")
	v.SetDefault("export.dir", "output")
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

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

// Validate checks the fields a run mode depends on. Modes: collect, store,
// outreach, serve. Bounds shared by every mode are always checked.
func (c *Config) Validate(mode string) error {
	var problems []string

	switch mode {
	case "collect":
		// Collectors degrade per-source when endpoints are unset.
	case "store":
		problems = append(problems, c.storeProblems()...)
	case "outreach":
		problems = append(problems, c.storeProblems()...)
		if c.SMTP.Host == "" {
			problems = append(problems, "smtp.host is required")
		}
		if c.SMTP.Username == "" {
			problems = append(problems, "smtp.username is required")
		}
		if c.SMTP.Password == "" {
			problems = append(problems, "smtp.password is required")
		}
		if c.SMTP.From == "" {
			problems = append(problems, "smtp.from is required")
		}
	case "serve":
		problems = append(problems, c.storeProblems()...)
		if c.Server.Port <= 0 {
			problems = append(problems, "server.port must be > 0")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if c.Pipeline.MinScore < 0 || c.Pipeline.MinScore > 1 {
		problems = append(problems, "pipeline.min_score must be between 0 and 1")
	}
	if c.Scrape.MaxPages < 1 || c.Scrape.MaxPages > 50 {
		problems = append(problems, "scrape.max_pages must be between 1 and 50")
	}
	if c.Scrape.MaxConcurrent < 1 || c.Scrape.MaxConcurrent > 16 {
		problems = append(problems, "scrape.max_concurrent must be between 1 and 16")
	}
	if c.Outreach.HourlyLimit < 1 {
		problems = append(problems, "outreach.hourly_limit must be >= 1")
	}
	if c.Outreach.DailyLimit < c.Outreach.HourlyLimit {
		problems = append(problems, "outreach.daily_limit must be >= outreach.hourly_limit")
	}

	if len(problems) > 0 {
		return eris.New("config: " + strings.Join(problems, "; "))
	}
	return nil
}

func (c *Config) storeProblems() []string {
	switch c.Store.Driver {
	case "sqlite":
		if c.Store.Path == "" {
			return []string{"store.path is required for the sqlite driver"}
		}
	case "postgres":
		if c.Store.DatabaseURL == "" {
			return []string{"store.database_url is required for the postgres driver"}
		}
	default:
		return []string{fmt.Sprintf("store.driver must be sqlite or postgres, got %q", c.Store.Driver)}
	}
	return nil
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

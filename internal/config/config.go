package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store        StoreConfig        `yaml:"store" mapstructure:"store"`
	Feed         FeedConfig         `yaml:"feed" mapstructure:"feed"`
	Oracle       OracleConfig       `yaml:"oracle" mapstructure:"oracle"`
	Brands       BrandsConfig       `yaml:"brands" mapstructure:"brands"`
	Spokesperson SpokespersonConfig `yaml:"spokesperson" mapstructure:"spokesperson"`
	Export       ExportConfig       `yaml:"export" mapstructure:"export"`
	Extract      ExtractConfig      `yaml:"extract" mapstructure:"extract"`
	Server       ServerConfig       `yaml:"server" mapstructure:"server"`
	Log          LogConfig          `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// FeedConfig configures the clipping feed client.
type FeedConfig struct {
	EndpointsFile  string  `yaml:"endpoints_file" mapstructure:"endpoints_file"`
	TimeoutSecs    int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries     int     `yaml:"max_retries" mapstructure:"max_retries"`
	RetryDelaySecs int     `yaml:"retry_delay_secs" mapstructure:"retry_delay_secs"`
	RatePerSec     float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
	ArchiveURL     string  `yaml:"archive_url" mapstructure:"archive_url"`
}

// OracleConfig configures the tier oracle.
type OracleConfig struct {
	Key            string `yaml:"key" mapstructure:"key"`
	Model          string `yaml:"model" mapstructure:"model"`
	MaxTokens      int64  `yaml:"max_tokens" mapstructure:"max_tokens"`
	TimeoutSecs    int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RetryDelaySecs int    `yaml:"retry_delay_secs" mapstructure:"retry_delay_secs"`
	ThrottleMillis int    `yaml:"throttle_millis" mapstructure:"throttle_millis"`
}

// BrandsConfig points at the brand spec file.
type BrandsConfig struct {
	File string `yaml:"file" mapstructure:"file"`
}

// SpokespersonConfig points at the registry snapshot directory.
type SpokespersonConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// ExportConfig configures spreadsheet output.
type ExportConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// ExtractConfig configures the exclusivity extraction consumer.
type ExtractConfig struct {
	GroupBrands  []string `yaml:"group_brands" mapstructure:"group_brands"`
	OutputDir    string   `yaml:"output_dir" mapstructure:"output_dir"`
	CacheEnabled bool     `yaml:"cache_enabled" mapstructure:"cache_enabled"`
}

// ServerConfig configures the dashboard backend.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
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
	v.SetEnvPrefix("BRANDWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "brandwatch.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("feed.endpoints_file", "feeds.json")
	v.SetDefault("feed.timeout_secs", 30)
	v.SetDefault("feed.max_retries", 2)
	v.SetDefault("feed.retry_delay_secs", 5)
	v.SetDefault("feed.rate_per_sec", 2.0)
	v.SetDefault("oracle.model", "claude-haiku-4-5-20251001")
	v.SetDefault("oracle.max_tokens", 16)
	v.SetDefault("oracle.timeout_secs", 30)
	v.SetDefault("oracle.retry_delay_secs", 5)
	v.SetDefault("oracle.throttle_millis", 500)
	v.SetDefault("brands.file", "brands.yaml")
	v.SetDefault("spokesperson.dir", ".")
	v.SetDefault("export.dir", "exports")
	v.SetDefault("extract.output_dir", "exclusives")
	v.SetDefault("extract.cache_enabled", true)

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

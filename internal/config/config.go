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
	Store          StoreConfig          `yaml:"store" mapstructure:"store"`
	Fetch          FetchConfig          `yaml:"fetch" mapstructure:"fetch"`
	CompaniesHouse CompaniesHouseConfig `yaml:"companies_house" mapstructure:"companies_house"`
	Discovery      DiscoveryConfig      `yaml:"discovery" mapstructure:"discovery"`
	Batch          BatchConfig          `yaml:"batch" mapstructure:"batch"`
	Log            LogConfig            `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the run database.
type StoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// FetchConfig configures website content fetching.
type FetchConfig struct {
	SubPaths      []string `yaml:"sub_paths" mapstructure:"sub_paths"`
	TimeoutSecs   int      `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxConcurrent int      `yaml:"max_concurrent" mapstructure:"max_concurrent"`
	MaxBodyBytes  int64    `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	CacheTTLHours int      `yaml:"cache_ttl_hours" mapstructure:"cache_ttl_hours"`
	UserAgent     string   `yaml:"user_agent" mapstructure:"user_agent"`
}

// CompaniesHouseConfig holds Companies House API settings. The rate limit
// default matches the documented budget of 600 requests per 5 minutes.
type CompaniesHouseConfig struct {
	Key            string  `yaml:"key" mapstructure:"key"`
	BaseURL        string  `yaml:"base_url" mapstructure:"base_url"`
	RatePerSecond  float64 `yaml:"rate_per_second" mapstructure:"rate_per_second"`
	TimeoutSecs    int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MinMatchScore  float64 `yaml:"min_match_score" mapstructure:"min_match_score"`
	MaxSearchItems int     `yaml:"max_search_items" mapstructure:"max_search_items"`
}

// DiscoveryConfig holds the extraction and merge tunables. The proximity
// window and similarity threshold were chosen empirically; treat them as
// parameters to validate against a labeled corpus, not fixed truths.
type DiscoveryConfig struct {
	ProximityWindow         int     `yaml:"proximity_window" mapstructure:"proximity_window"`
	NameSimilarityThreshold float64 `yaml:"name_similarity_threshold" mapstructure:"name_similarity_threshold"`
	MinConfidence           float64 `yaml:"min_confidence" mapstructure:"min_confidence"`
	RulesPath               string  `yaml:"rules_path" mapstructure:"rules_path"`
}

// BatchConfig configures batch processing.
type BatchConfig struct {
	MaxConcurrentCompanies int `yaml:"max_concurrent_companies" mapstructure:"max_concurrent_companies"`
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
	v.SetEnvPrefix("EXECDISCOVERY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.path", "execdiscovery.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("batch.max_concurrent_companies", 5)
	v.SetDefault("fetch.sub_paths", []string{"/about", "/about-us", "/team", "/our-team", "/people", "/contact", "/contact-us"})
	v.SetDefault("fetch.timeout_secs", 15)
	v.SetDefault("fetch.max_concurrent", 4)
	v.SetDefault("fetch.max_body_bytes", 512*1024)
	v.SetDefault("fetch.cache_ttl_hours", 24)
	v.SetDefault("fetch.user_agent", "Mozilla/5.0 (compatible; ExecDiscoveryBot/1.0)")
	// Empty defaults keep env-only keys visible to Unmarshal.
	v.SetDefault("companies_house.key", "")
	v.SetDefault("companies_house.base_url", "https://api.company-information.service.gov.uk")
	v.SetDefault("companies_house.rate_per_second", 2.0)
	v.SetDefault("companies_house.timeout_secs", 10)
	v.SetDefault("companies_house.min_match_score", 0.5)
	v.SetDefault("companies_house.max_search_items", 10)
	v.SetDefault("discovery.proximity_window", 250)
	v.SetDefault("discovery.name_similarity_threshold", 0.8)
	v.SetDefault("discovery.min_confidence", 0.5)
	v.SetDefault("discovery.rules_path", "")

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

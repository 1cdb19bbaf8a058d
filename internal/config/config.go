package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Provider ProviderConfig `mapstructure:"provider"`
	Search   SearchConfig   `mapstructure:"search"`
	Learning LearningConfig `mapstructure:"learning"`
	Database DatabaseConfig `mapstructure:"database"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Backup   BackupConfig   `mapstructure:"backup"`
}

type ServerConfig struct {
	Port int        `mapstructure:"port"`
	Mode string     `mapstructure:"mode"`
	CORS CORSConfig `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
	AllowAllOrigins bool     `mapstructure:"allow_all_origins"`
}

// SearchConfig holds the tunables of the progressive search cascade.
type SearchConfig struct {
	Tokenizer              string  `mapstructure:"tokenizer"` // rich, naive
	OverfetchFactor        int     `mapstructure:"overfetch_factor"`
	FallbackFactor         int     `mapstructure:"fallback_factor"`
	PhraseStopFactorVideo  int     `mapstructure:"phrase_stop_factor_video"`
	PhraseStopFactorImage  int     `mapstructure:"phrase_stop_factor_image"`
	MaxPhraseQueries       int     `mapstructure:"max_phrase_queries"`
	SimplifiedTerms        int     `mapstructure:"simplified_terms"`
	LearnedQueryConfidence float64 `mapstructure:"learned_query_confidence"`
	DefaultMinDuration     int     `mapstructure:"default_min_duration"` // seconds, video only
	KeywordLimit           int     `mapstructure:"keyword_limit"`
	LongPromptWords        int     `mapstructure:"long_prompt_words"`
}

// LearningConfig selects and tunes the outcome learning store.
type LearningConfig struct {
	Store                   string `mapstructure:"store"` // file, database
	Path                    string `mapstructure:"path"`
	SessionWindow           int    `mapstructure:"session_window"`
	FeedbackWindow          int    `mapstructure:"feedback_window"`
	HighConfidenceSuccesses int    `mapstructure:"high_confidence_successes"`
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"` // sqlite, postgres
	Path            string        `mapstructure:"path"`
	URL             string        `mapstructure:"url"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// DSN returns the connection string for the configured driver.
func (c *DatabaseConfig) DSN() string {
	if c.Driver == "postgres" {
		if c.URL != "" {
			return c.URL
		}
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
	}
	return c.Path
}

type StorageConfig struct {
	Type      string `mapstructure:"type"` // r2, s3, s3compatible
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
}

// BackupConfig schedules snapshots of the learning document to object storage.
type BackupConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	Schedule       string `mapstructure:"schedule"`
	Key            string `mapstructure:"key"`
	RestoreOnEmpty bool   `mapstructure:"restore_on_empty"`
}

func Load(configPath string) (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Secrets and deployment overrides
	v.BindEnv("provider.api_key", "PEXELS_API_KEY")
	v.BindEnv("provider.base_url", "PEXELS_BASE_URL")
	v.BindEnv("database.driver", "DATABASE_DRIVER")
	v.BindEnv("database.url", "DATABASE_URL")
	v.BindEnv("storage.endpoint", "S3_ENDPOINT")
	v.BindEnv("storage.access_key", "S3_ACCESS_KEY")
	v.BindEnv("storage.secret_key", "S3_SECRET_KEY")
	v.BindEnv("storage.bucket", "S3_BUCKET")
	v.BindEnv("learning.path", "LEARNING_DATA_PATH")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.Provider.ResolveEnvVars()

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.cors.allow_all_origins", true)
	v.SetDefault("server.cors.allowed_origins", []string{})

	v.SetDefault("provider.name", "pexels")
	v.SetDefault("provider.api_key_env", "PEXELS_API_KEY")
	v.SetDefault("provider.base_url", "https://api.pexels.com")
	v.SetDefault("provider.timeout", 15*time.Second)
	v.SetDefault("provider.per_page_max", 80)
	v.SetDefault("provider.staging_path", "./data/staging")
	v.SetDefault("provider.catalog", "default")

	v.SetDefault("search.tokenizer", "rich")
	v.SetDefault("search.overfetch_factor", 3)
	v.SetDefault("search.fallback_factor", 2)
	v.SetDefault("search.phrase_stop_factor_video", 3)
	v.SetDefault("search.phrase_stop_factor_image", 2)
	v.SetDefault("search.max_phrase_queries", 3)
	v.SetDefault("search.simplified_terms", 3)
	v.SetDefault("search.learned_query_confidence", 0.8)
	v.SetDefault("search.default_min_duration", 3)
	v.SetDefault("search.keyword_limit", 6)
	v.SetDefault("search.long_prompt_words", 8)

	v.SetDefault("learning.store", "file")
	v.SetDefault("learning.path", "./ai_training_data/learning_data.json")
	v.SetDefault("learning.session_window", 1000)
	v.SetDefault("learning.feedback_window", 1000)
	v.SetDefault("learning.high_confidence_successes", 5)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "./data/learning.db")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("storage.use_ssl", true)
	v.SetDefault("storage.bucket", "reelsearch")

	v.SetDefault("backup.enabled", false)
	v.SetDefault("backup.schedule", "@every 1h")
	v.SetDefault("backup.key", "learning/latest.json")
	v.SetDefault("backup.restore_on_empty", true)
}

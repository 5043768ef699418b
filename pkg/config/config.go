// Package config loads and validates application configuration from YAML files
// with environment-variable overrides. It provides typed structs for every
// subsystem (Server, Postgres, Kafka, Redis, Analyzer, Vocabulary, etc.).
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Postgres   PostgresConfig   `yaml:"postgres"`
	Kafka      KafkaConfig      `yaml:"kafka"`
	Redis      RedisConfig      `yaml:"redis"`
	Analyzer   AnalyzerConfig   `yaml:"analyzer"`
	Vocabulary VocabularyConfig `yaml:"vocabulary"`
	Logging    LoggingConfig    `yaml:"logging"`
	Tracing    TracingConfig    `yaml:"tracing"`
	Metrics    MetricsConfig    `yaml:"metrics"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
	RequestTimeout  time.Duration `yaml:"requestTimeout"`
	RateLimit       int           `yaml:"rateLimit"`
	RateWindow      time.Duration `yaml:"rateWindow"`
	// RPCPort serves the analysis service over the internal RPC protocol;
	// 0 disables it.
	RPCPort int `yaml:"rpcPort"`
	// AuthEnabled requires an API key from the api_keys table on every
	// route except health checks. It needs postgres.enabled.
	AuthEnabled bool `yaml:"authEnabled"`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	Enabled         bool          `yaml:"enabled"`
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Database        string        `yaml:"database"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	SSLMode         string        `yaml:"sslMode"`
	MaxOpenConns    int           `yaml:"maxOpenConns"`
	MaxIdleConns    int           `yaml:"maxIdleConns"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime"`
}

// DSN returns a lib/pq-compatible data source name.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// KafkaConfig holds Kafka broker and topic settings.
type KafkaConfig struct {
	Enabled       bool        `yaml:"enabled"`
	Brokers       []string    `yaml:"brokers"`
	ConsumerGroup string      `yaml:"consumerGroup"`
	Topics        KafkaTopics `yaml:"topics"`
}

// KafkaTopics maps logical topic names to their Kafka topic strings.
type KafkaTopics struct {
	AnalyzeRequests  string `yaml:"analyzeRequests"`
	AnalysisComplete string `yaml:"analysisComplete"`
}

// RedisConfig holds Redis connection and caching parameters.
type RedisConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	PoolSize int           `yaml:"poolSize"`
	CacheTTL time.Duration `yaml:"cacheTTL"`
}

// AnalyzerConfig bounds a single analysis session and the documents it
// accepts.
type AnalyzerConfig struct {
	MaxWordLen       int `yaml:"maxWordLen"`
	MaxTitleLen      int `yaml:"maxTitleLen"`
	MaxSections      int `yaml:"maxSections"`
	BucketCount      int `yaml:"bucketCount"`
	TopWords         int `yaml:"topWords"`
	MaxDocumentBytes int `yaml:"maxDocumentBytes"`
}

// VocabularyConfig says where stop, sensitive and redundant word lists come
// from. Source is "file" or "postgres".
type VocabularyConfig struct {
	Source         string        `yaml:"source"`
	StopFile       string        `yaml:"stopFile"`
	SensitiveFile  string        `yaml:"sensitiveFile"`
	RedundantFile  string        `yaml:"redundantFile"`
	BundleFile     string        `yaml:"bundleFile"`
	ReloadInterval time.Duration `yaml:"reloadInterval"`
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// TracingConfig controls span logging.
type TracingConfig struct {
	Enabled    bool    `yaml:"enabled"`
	SampleRate float64 `yaml:"sampleRate"`
}

// MetricsConfig controls the Prometheus metrics server.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// Load reads a YAML config file (if provided) and applies environment-variable
// overrides. It returns a Config populated with sensible defaults for any
// missing values.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the analyzer cannot run with.
func (c *Config) Validate() error {
	if c.Analyzer.MaxWordLen < 2 {
		return fmt.Errorf("analyzer.maxWordLen must be at least 2, got %d", c.Analyzer.MaxWordLen)
	}
	if c.Analyzer.MaxTitleLen < 2 {
		return fmt.Errorf("analyzer.maxTitleLen must be at least 2, got %d", c.Analyzer.MaxTitleLen)
	}
	if c.Analyzer.MaxSections < 1 {
		return fmt.Errorf("analyzer.maxSections must be positive, got %d", c.Analyzer.MaxSections)
	}
	if c.Analyzer.BucketCount < 1 {
		return fmt.Errorf("analyzer.bucketCount must be positive, got %d", c.Analyzer.BucketCount)
	}
	switch c.Vocabulary.Source {
	case "file", "postgres":
	default:
		return fmt.Errorf("vocabulary.source must be file or postgres, got %q", c.Vocabulary.Source)
	}
	if c.Server.RPCPort != 0 && c.Server.RPCPort == c.Server.Port {
		return fmt.Errorf("server.rpcPort must differ from server.port (%d)", c.Server.Port)
	}
	if c.Server.AuthEnabled && !c.Postgres.Enabled {
		return fmt.Errorf("server.authEnabled requires postgres.enabled")
	}
	if c.Vocabulary.Source == "postgres" && !c.Postgres.Enabled {
		return fmt.Errorf("vocabulary.source postgres requires postgres.enabled")
	}
	return nil
}

// defaultConfig returns a Config with production-ready defaults for local
// development.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			RequestTimeout:  10 * time.Second,
			RateLimit:       120,
			RateWindow:      time.Minute,
		},
		Postgres: PostgresConfig{
			Host:            "localhost",
			Port:            5432,
			Database:        "textanalyzer",
			User:            "textanalyzer",
			Password:        "localdev",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Kafka: KafkaConfig{
			Brokers:       []string{"localhost:9092"},
			ConsumerGroup: "textanalyzer-group",
			Topics: KafkaTopics{
				AnalyzeRequests:  "analyze-requests",
				AnalysisComplete: "analysis-complete",
			},
		},
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			Password: "",
			DB:       0,
			PoolSize: 10,
			CacheTTL: 10 * time.Minute,
		},
		Analyzer: AnalyzerConfig{
			MaxWordLen:       64,
			MaxTitleLen:      128,
			MaxSections:      100,
			BucketCount:      8192,
			TopWords:         20,
			MaxDocumentBytes: 1 << 20,
		},
		Vocabulary: VocabularyConfig{
			Source: "file",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Tracing: TracingConfig{
			Enabled:    false,
			SampleRate: 1,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Port:    9090,
		},
	}
}

// applyEnvOverrides reads TA_* environment variables and overrides the
// corresponding config fields.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("TA_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("TA_RPC_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.RPCPort = port
		}
	}
	if v := os.Getenv("TA_AUTH_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Server.AuthEnabled = b
		}
	}
	if v := os.Getenv("TA_POSTGRES_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Postgres.Enabled = b
		}
	}
	if v := os.Getenv("TA_POSTGRES_HOST"); v != "" {
		cfg.Postgres.Host = v
	}
	if v := os.Getenv("TA_POSTGRES_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.Port = port
		}
	}
	if v := os.Getenv("TA_POSTGRES_DATABASE"); v != "" {
		cfg.Postgres.Database = v
	}
	if v := os.Getenv("TA_POSTGRES_USER"); v != "" {
		cfg.Postgres.User = v
	}
	if v := os.Getenv("TA_POSTGRES_PASSWORD"); v != "" {
		cfg.Postgres.Password = v
	}
	if v := os.Getenv("TA_POSTGRES_SSLMODE"); v != "" {
		cfg.Postgres.SSLMode = v
	}
	if v := os.Getenv("TA_KAFKA_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Kafka.Enabled = b
		}
	}
	if v := os.Getenv("TA_KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("TA_REDIS_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Redis.Enabled = b
		}
	}
	if v := os.Getenv("TA_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("TA_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("TA_ANALYZER_MAX_SECTIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Analyzer.MaxSections = n
		}
	}
	if v := os.Getenv("TA_ANALYZER_TOP_WORDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Analyzer.TopWords = n
		}
	}
	if v := os.Getenv("TA_VOCABULARY_SOURCE"); v != "" {
		cfg.Vocabulary.Source = v
	}
	if v := os.Getenv("TA_VOCABULARY_STOP_FILE"); v != "" {
		cfg.Vocabulary.StopFile = v
	}
	if v := os.Getenv("TA_VOCABULARY_SENSITIVE_FILE"); v != "" {
		cfg.Vocabulary.SensitiveFile = v
	}
	if v := os.Getenv("TA_VOCABULARY_REDUNDANT_FILE"); v != "" {
		cfg.Vocabulary.RedundantFile = v
	}
	if v := os.Getenv("TA_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("TA_LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("TA_METRICS_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Metrics.Port = port
		}
	}
}

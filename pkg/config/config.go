package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"

	"github.com/ragno-ai/ragno/pkg/types"
)

// Config holds all configuration for the application
type Config struct {
	// Log configuration
	Log LogConfig `mapstructure:"log" yaml:"log"`

	// Server configuration
	Server ServerConfig `mapstructure:"server" yaml:"server"`

	// Store configuration
	Store StoreConfig `mapstructure:"store" yaml:"store"`

	// Index configuration
	Index IndexConfig `mapstructure:"index" yaml:"index"`

	// Search configuration
	Search SearchConfig `mapstructure:"search" yaml:"search"`

	// Embedding configuration
	Embedding EmbeddingConfig `mapstructure:"embedding" yaml:"embedding"`

	// Extraction configuration
	Extraction ExtractionConfig `mapstructure:"extraction" yaml:"extraction"`

	// Telemetry configuration
	Telemetry TelemetryConfig `mapstructure:"telemetry" yaml:"telemetry"`

	// CircuitBreaker configuration
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker" yaml:"circuit_breaker"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host string `mapstructure:"host" yaml:"host"`
	Port int    `mapstructure:"port" yaml:"port"`
	Mode string `mapstructure:"mode" yaml:"mode"` // gin mode: debug, release, test
}

// StoreConfig holds graph store configuration
type StoreConfig struct {
	Driver   string `mapstructure:"driver" yaml:"driver"` // neo4j, memory
	URI      string `mapstructure:"uri" yaml:"uri"`
	Username string `mapstructure:"username" yaml:"username"`
	Password string `mapstructure:"password" yaml:"password"`
	Database string `mapstructure:"database" yaml:"database"`
}

// IndexConfig holds vector index configuration
type IndexConfig struct {
	Dimension      int    `mapstructure:"dimension" yaml:"dimension"`
	M              int    `mapstructure:"m" yaml:"m"`
	EfConstruction int    `mapstructure:"ef_construction" yaml:"ef_construction"`
	EfSearch       int    `mapstructure:"ef_search" yaml:"ef_search"`
	Metric         string `mapstructure:"metric" yaml:"metric"` // cosine, dot
}

// SearchConfig holds query-time defaults
type SearchConfig struct {
	DefaultGraph     string   `mapstructure:"default_graph" yaml:"default_graph"`
	DefaultLimit     int      `mapstructure:"default_limit" yaml:"default_limit"`
	DefaultThreshold float64  `mapstructure:"default_threshold" yaml:"default_threshold"`
	AllowedTypes     []string `mapstructure:"allowed_types" yaml:"allowed_types"`
	MethodTimeout    int      `mapstructure:"method_timeout" yaml:"method_timeout"` // in seconds
	Alpha            float64  `mapstructure:"alpha" yaml:"alpha"`
	MaxIterations    int      `mapstructure:"max_iterations" yaml:"max_iterations"`
}

// EmbeddingConfig holds embedding configuration
type EmbeddingConfig struct {
	Provider   string `mapstructure:"provider" yaml:"provider"` // openai, etc.
	Model      string `mapstructure:"model" yaml:"model"`
	APIKey     string `mapstructure:"api_key" yaml:"api_key"`
	BaseURL    string `mapstructure:"base_url" yaml:"base_url"`
	Dimensions int    `mapstructure:"dimensions" yaml:"dimensions"`
	CachePath  string `mapstructure:"cache_path" yaml:"cache_path"`
}

// ExtractionConfig holds entity extraction configuration
type ExtractionConfig struct {
	Provider    string  `mapstructure:"provider" yaml:"provider"`
	Model       string  `mapstructure:"model" yaml:"model"`
	APIKey      string  `mapstructure:"api_key" yaml:"api_key"`
	BaseURL     string  `mapstructure:"base_url" yaml:"base_url"`
	Temperature float32 `mapstructure:"temperature" yaml:"temperature"`
}

// TelemetryConfig holds telemetry configuration
type TelemetryConfig struct {
	Enabled     bool   `mapstructure:"enabled" yaml:"enabled"`
	ParquetPath string `mapstructure:"parquet_path" yaml:"parquet_path"`
}

// CircuitBreakerConfig holds configuration for circuit breaking
type CircuitBreakerConfig struct {
	Enabled          bool    `mapstructure:"enabled" yaml:"enabled"`
	MaxRequests      uint32  `mapstructure:"max_requests" yaml:"max_requests"`
	Interval         int     `mapstructure:"interval" yaml:"interval"` // in seconds
	Timeout          int     `mapstructure:"timeout" yaml:"timeout"`   // in seconds
	ReadyToTripRatio float64 `mapstructure:"ready_to_trip_ratio" yaml:"ready_to_trip_ratio"`
}

// Load loads configuration from file and environment variables
func Load() (*Config, error) {
	// Set defaults
	setDefaults()

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Override with environment variables if present
	overrideWithEnv(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// Log defaults
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "text")

	// Server defaults
	viper.SetDefault("server.host", "localhost")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.mode", "debug")

	// Store defaults
	viper.SetDefault("store.driver", "memory")
	viper.SetDefault("store.uri", "")
	viper.SetDefault("store.username", "")
	viper.SetDefault("store.password", "")
	viper.SetDefault("store.database", "")

	// Index defaults
	viper.SetDefault("index.dimension", 1536)
	viper.SetDefault("index.m", 16)
	viper.SetDefault("index.ef_construction", 200)
	viper.SetDefault("index.ef_search", 64)
	viper.SetDefault("index.metric", "cosine")

	// Search defaults
	viper.SetDefault("search.default_limit", 10)
	viper.SetDefault("search.default_threshold", 0.7)
	viper.SetDefault("search.method_timeout", 10)
	viper.SetDefault("search.alpha", 0.15)
	viper.SetDefault("search.max_iterations", 50)

	// Embedding defaults
	viper.SetDefault("embedding.provider", "openai")
	viper.SetDefault("embedding.model", "text-embedding-3-small")
	viper.SetDefault("embedding.dimensions", 1536)

	// Extraction defaults
	viper.SetDefault("extraction.provider", "openai")
	viper.SetDefault("extraction.model", "gpt-4o-mini")
	viper.SetDefault("extraction.temperature", 0.0)

	// Telemetry defaults
	home, err := os.UserHomeDir()
	if err == nil {
		defaultPath := fmt.Sprintf("%s/.ragno/telemetry", home)
		viper.SetDefault("telemetry.parquet_path", defaultPath)
	}
}

// overrideWithEnv overrides config with environment variables
func overrideWithEnv(config *Config) {
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		if config.Embedding.APIKey == "" {
			config.Embedding.APIKey = apiKey
		}
		if config.Extraction.APIKey == "" {
			config.Extraction.APIKey = apiKey
		}
	}

	// Store credentials
	if uri := os.Getenv("NEO4J_URI"); uri != "" {
		config.Store.Driver = "neo4j"
		config.Store.URI = uri
	}
	if user := os.Getenv("NEO4J_USER"); user != "" {
		config.Store.Username = user
	}
	if pass := os.Getenv("NEO4J_PASSWORD"); pass != "" {
		config.Store.Password = pass
	}

	// Generic store settings
	if driver := os.Getenv("STORE_DRIVER"); driver != "" {
		config.Store.Driver = driver
	}
	if uri := os.Getenv("STORE_URI"); uri != "" {
		config.Store.URI = uri
	}

	// Server settings
	if host := os.Getenv("SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		viper.Set("server.port", port)
	}

	// Embedding cache
	if path := os.Getenv("EMBEDDING_CACHE_PATH"); path != "" {
		config.Embedding.CachePath = path
	}

	// Telemetry settings
	if path := os.Getenv("TELEMETRY_PARQUET_PATH"); path != "" {
		config.Telemetry.ParquetPath = path
	}
}

// Validate checks construction-time invariants. Violations are configuration
// errors: they abort startup rather than surfacing later per query.
func (c *Config) Validate() error {
	if c.Store.Driver == "neo4j" && c.Store.URI == "" {
		return &types.ConfigurationError{Field: "store.uri", Err: types.ErrNoStoreEndpoint}
	}
	if c.Index.Dimension <= 0 {
		return &types.ConfigurationError{Field: "index.dimension", Err: types.ErrInvalidDimension}
	}
	if c.Index.Metric != "" && c.Index.Metric != "cosine" && c.Index.Metric != "dot" {
		return &types.ConfigurationError{
			Field: "index.metric",
			Err:   fmt.Errorf("unknown metric %q", c.Index.Metric),
		}
	}
	if c.Search.DefaultThreshold < 0 || c.Search.DefaultThreshold > 1 {
		return &types.ConfigurationError{
			Field: "search.default_threshold",
			Err:   fmt.Errorf("threshold %v outside [0,1]", c.Search.DefaultThreshold),
		}
	}
	if c.Search.Alpha < 0 || c.Search.Alpha >= 1 {
		return &types.ConfigurationError{
			Field: "search.alpha",
			Err:   fmt.Errorf("restart probability %v outside [0,1)", c.Search.Alpha),
		}
	}
	for _, name := range c.Search.AllowedTypes {
		if !types.IsValidNodeType(types.NodeType(name)) {
			return &types.ConfigurationError{
				Field: "search.allowed_types",
				Err:   fmt.Errorf("unknown node type %q", name),
			}
		}
	}
	return nil
}

// NodeTypes converts the configured allowed-type names to typed values.
// An empty list means every known type.
func (c *SearchConfig) NodeTypes() []types.NodeType {
	if len(c.AllowedTypes) == 0 {
		return nil
	}
	out := make([]types.NodeType, 0, len(c.AllowedTypes))
	for _, name := range c.AllowedTypes {
		out = append(out, types.NodeType(name))
	}
	return out
}

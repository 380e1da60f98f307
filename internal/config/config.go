// Package config loads the service YAML configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/schemesearch/internal/catalog"
	"github.com/kailas-cloud/schemesearch/internal/domain"
)

// Config holds the schemesearch API configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	CORS      CORSConfig      `yaml:"cors"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Cache     CacheConfig     `yaml:"cache"`
	Search    SearchConfig    `yaml:"search"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int   `yaml:"port"`
	ReadTimeoutSec  int   `yaml:"read_timeout_sec"`
	WriteTimeoutSec int   `yaml:"write_timeout_sec"`
	ShutdownSec     int   `yaml:"shutdown_timeout_sec"`
	MaxBodyBytes    int64 `yaml:"max_body_bytes"`
}

// CORSConfig holds the browser origin allow-list.
type CORSConfig struct {
	AllowedOrigins   []string `yaml:"allowed_origins"`
	AllowCredentials *bool    `yaml:"allow_credentials"` // default: true
}

// CatalogConfig locates the prebuilt index and the row-aligned metadata table.
type CatalogConfig struct {
	IndexPath    string `yaml:"index_path"`
	MetadataPath string `yaml:"metadata_path"`
	Format       string `yaml:"format"`   // auto, csv, parquet (default: auto)
	BaseDir      string `yaml:"base_dir"` // default: directory of the config file
}

// EmbeddingConfig holds query encoder settings.
type EmbeddingConfig struct {
	Provider         string `yaml:"provider"` // openai, ollama
	BaseURL          string `yaml:"base_url"`
	APIKey           string `yaml:"api_key"`
	Model            string `yaml:"model"`
	Dimensions       int    `yaml:"dimensions"`
	QueryInstruction string `yaml:"query_instruction"`
	Warmup           *bool  `yaml:"warmup"` // default: true
	TimeoutSec       int    `yaml:"timeout_sec"`
}

// CacheConfig holds embedding cache settings.
type CacheConfig struct {
	Driver           string   `yaml:"driver"` // none, memory, redis (default: none)
	Size             int      `yaml:"size"`
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	TTLSec           int      `yaml:"ttl_sec"`
	KeyPrefix        string   `yaml:"key_prefix"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// SearchConfig holds query pipeline settings.
type SearchConfig struct {
	TopK       int `yaml:"top_k"`
	TimeoutSec int `yaml:"timeout_sec"`
}

// Load reads configuration from a YAML file by environment name (local, docker, prod).
// CONFIG_PATH, when set, overrides the lookup.
func Load(env string) (Config, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = findConfigPath(env)
	}
	return LoadFile(configPath)
}

// LoadFile reads, expands, defaults and validates the configuration at path.
// Relative catalog paths resolve against catalog.base_dir, which defaults to the file's directory.
func LoadFile(configPath string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	dir, err := filepath.Abs(filepath.Dir(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("resolve config dir: %w", err)
	}
	switch {
	case cfg.Catalog.BaseDir == "":
		cfg.Catalog.BaseDir = dir
	case !filepath.IsAbs(cfg.Catalog.BaseDir):
		cfg.Catalog.BaseDir = filepath.Join(dir, cfg.Catalog.BaseDir)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8000
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.HTTP.MaxBodyBytes <= 0 {
		c.HTTP.MaxBodyBytes = 64 << 10
	}
	if len(c.CORS.AllowedOrigins) == 0 {
		c.CORS.AllowedOrigins = []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	}
	if c.CORS.AllowCredentials == nil {
		c.CORS.AllowCredentials = boolPtr(true)
	}
	if c.Catalog.Format == "" {
		c.Catalog.Format = string(catalog.FormatAuto)
	}
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = "openai"
	}
	if c.Embedding.Warmup == nil {
		c.Embedding.Warmup = boolPtr(true)
	}
	if c.Embedding.TimeoutSec <= 0 {
		c.Embedding.TimeoutSec = 10
	}
	if c.Cache.Driver == "" {
		c.Cache.Driver = "none"
	}
	if c.Cache.Size <= 0 {
		c.Cache.Size = 10000
	}
	if c.Cache.KeyPrefix == "" {
		c.Cache.KeyPrefix = domain.KeyPrefix
	}
	if c.Cache.ReadinessTimeout <= 0 {
		c.Cache.ReadinessTimeout = 10
	}
	if c.Search.TopK <= 0 {
		c.Search.TopK = domain.DefaultTopK
	}
	if c.Search.TimeoutSec <= 0 {
		c.Search.TimeoutSec = 15
	}

	c.Catalog.IndexPath = c.resolve(c.Catalog.IndexPath)
	c.Catalog.MetadataPath = c.resolve(c.Catalog.MetadataPath)
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.Catalog.IndexPath == "" {
		return fmt.Errorf("catalog.index_path is required")
	}
	if c.Catalog.MetadataPath == "" {
		return fmt.Errorf("catalog.metadata_path is required")
	}
	if _, err := catalog.ParseFormat(c.Catalog.Format); err != nil {
		return fmt.Errorf("catalog.format: %w", err)
	}
	switch c.Embedding.Provider {
	case "openai":
		if c.Embedding.BaseURL == "" {
			return fmt.Errorf("embedding.base_url is required for provider openai")
		}
		if c.Embedding.Model == "" {
			return fmt.Errorf("embedding.model is required for provider openai")
		}
	case "ollama":
	default:
		return fmt.Errorf("embedding.provider must be \"openai\" or \"ollama\", got %q", c.Embedding.Provider)
	}
	if c.Embedding.Dimensions < 0 {
		return fmt.Errorf("embedding.dimensions must not be negative, got %d", c.Embedding.Dimensions)
	}
	switch c.Cache.Driver {
	case "none", "memory":
	case "redis", "valkey":
		if len(c.Cache.Addrs) == 0 {
			return fmt.Errorf("cache.addrs is required for driver %s", c.Cache.Driver)
		}
	default:
		return fmt.Errorf("cache.driver must be one of none, memory, redis, valkey; got %q", c.Cache.Driver)
	}
	if c.Search.TopK > domain.MaxTopK {
		return fmt.Errorf("search.top_k must be at most %d, got %d", domain.MaxTopK, c.Search.TopK)
	}
	return nil
}

// Credentials reports the effective CORS credentials setting.
func (c CORSConfig) Credentials() bool {
	return c.AllowCredentials == nil || *c.AllowCredentials
}

// WarmupEnabled reports the effective warm-up setting.
func (c EmbeddingConfig) WarmupEnabled() bool {
	return c.Warmup == nil || *c.Warmup
}

func (c *Config) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) || c.Catalog.BaseDir == "" {
		return p
	}
	return filepath.Join(c.Catalog.BaseDir, p)
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func boolPtr(b bool) *bool { return &b }

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}

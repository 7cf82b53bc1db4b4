package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/finance-dashboard/internal/generator"
	"github.com/dvloznov/finance-dashboard/internal/store"
	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"google.golang.org/api/option"
	"gopkg.in/yaml.v2"
)

// EnvPrefix prefixes every environment override, e.g. FINDASH_SERVER_PORT.
const EnvPrefix = "FINDASH"

// DefaultFile is read when FINDASH_CONFIG is unset and the file exists.
const DefaultFile = "config.yaml"

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Data      DataConfig      `yaml:"data" envconfig:"DATA"`
	Generator GeneratorConfig `yaml:"generator" envconfig:"GENERATOR"`
	BigQuery  BigQueryConfig  `yaml:"bigquery" envconfig:"BIGQUERY"`
	Notion    NotionConfig    `yaml:"notion" envconfig:"NOTION"`
	Gemini    GeminiConfig    `yaml:"gemini" envconfig:"GEMINI"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int             `yaml:"port" envconfig:"PORT" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration   `yaml:"read_timeout" envconfig:"READ_TIMEOUT" validate:"gt=0"`
	WriteTimeout    time.Duration   `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" validate:"gt=0"`
	IdleTimeout     time.Duration   `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" validate:"gt=0"`
	ShutdownTimeout time.Duration   `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" validate:"gt=0"`
	JobQueueSize    int             `yaml:"job_queue_size" envconfig:"JOB_QUEUE_SIZE" validate:"min=1"`
	RateLimit       RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" validate:"required_if=Enabled true,gte=0"`
	Burst   int     `yaml:"burst" envconfig:"BURST" validate:"required_if=Enabled true,gte=0"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" envconfig:"LEVEL" validate:"oneof=trace debug info warn error fatal panic disabled"`
	Format string `yaml:"format" envconfig:"FORMAT" validate:"oneof=console json"`
}

// DataConfig locates the tabular store.
type DataConfig struct {
	// Location is a local path or a gs://bucket/object URI.
	Location        string `yaml:"location" envconfig:"LOCATION" validate:"required"`
	CredentialsFile string `yaml:"credentials_file" envconfig:"CREDENTIALS_FILE"`
}

// GeneratorConfig overrides the generator's date range and seed.
type GeneratorConfig struct {
	StartDate string `yaml:"start_date" envconfig:"START_DATE" validate:"datetime=2006-01-02"`
	EndDate   string `yaml:"end_date" envconfig:"END_DATE" validate:"datetime=2006-01-02"`
	Seed      uint64 `yaml:"seed" envconfig:"SEED"`
}

// BigQueryConfig names the export table.
type BigQueryConfig struct {
	ProjectID string `yaml:"project_id" envconfig:"PROJECT_ID"`
	DatasetID string `yaml:"dataset_id" envconfig:"DATASET_ID"`
	TableID   string `yaml:"table_id" envconfig:"TABLE_ID"`
}

// NotionConfig holds the Notion integration credentials.
type NotionConfig struct {
	Token      string `yaml:"token" envconfig:"TOKEN"`
	DatabaseID string `yaml:"database_id" envconfig:"DATABASE_ID"`
}

// GeminiConfig holds the Gemini API settings.
type GeminiConfig struct {
	APIKey string `yaml:"api_key" envconfig:"API_KEY"`
	Model  string `yaml:"model" envconfig:"MODEL"`
}

// Default returns the built-in configuration.
func Default() Config {
	gen := generator.DefaultConfig()
	return Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			JobQueueSize:    100,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     50,
				Burst:   100,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Data: DataConfig{
			Location: store.DefaultPath,
		},
		Generator: GeneratorConfig{
			StartDate: gen.Start.String(),
			EndDate:   gen.End.String(),
			Seed:      gen.Seed,
		},
		BigQuery: BigQueryConfig{
			DatasetID: "finance",
			TableID:   "financial_data",
		},
		Gemini: GeminiConfig{
			Model: "gemini-2.5-flash",
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file and the
// environment, in that order of increasing precedence.
func Load() (*Config, error) {
	path := os.Getenv(EnvPrefix + "_CONFIG")
	if path == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			path = DefaultFile
		}
	}
	return LoadFile(path)
}

// LoadFile is Load with an explicit file path. An empty path skips the file.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	// Only variables that are set overwrite fields; nothing carries a default tag.
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// loadFromFile overlays the YAML file at path onto cfg.
func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

var validate = validator.New()

// Validate checks field constraints and the generator date range.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if _, err := c.Generation(); err != nil {
		return err
	}
	return nil
}

// Generation returns the default generator tables with this config's range and seed.
func (c *Config) Generation() (generator.Config, error) {
	start, err := civil.ParseDate(c.Generator.StartDate)
	if err != nil {
		return generator.Config{}, fmt.Errorf("generator start_date: %w", err)
	}
	end, err := civil.ParseDate(c.Generator.EndDate)
	if err != nil {
		return generator.Config{}, fmt.Errorf("generator end_date: %w", err)
	}

	gen := generator.DefaultConfig().WithRange(start, end).WithSeed(c.Generator.Seed)
	if err := gen.Validate(); err != nil {
		return generator.Config{}, err
	}
	return gen, nil
}

// ErrNotConfigured is returned when an optional integration lacks required settings.
var ErrNotConfigured = errors.New("integration not configured")

// RequireBigQuery checks that the BigQuery export is configured.
func (c *Config) RequireBigQuery() error {
	if c.BigQuery.ProjectID == "" || c.BigQuery.DatasetID == "" || c.BigQuery.TableID == "" {
		return fmt.Errorf("bigquery: set %s_BIGQUERY_PROJECT_ID, _DATASET_ID and _TABLE_ID: %w", EnvPrefix, ErrNotConfigured)
	}
	return nil
}

// RequireNotion checks that the Notion sync is configured.
func (c *Config) RequireNotion() error {
	if c.Notion.Token == "" || c.Notion.DatabaseID == "" {
		return fmt.Errorf("notion: set %s_NOTION_TOKEN and %s_NOTION_DATABASE_ID: %w", EnvPrefix, EnvPrefix, ErrNotConfigured)
	}
	return nil
}

// RequireGemini checks that the Gemini narrator is configured.
func (c *Config) RequireGemini() error {
	if c.Gemini.APIKey == "" {
		return fmt.Errorf("gemini: set %s_GEMINI_API_KEY: %w", EnvPrefix, ErrNotConfigured)
	}
	return nil
}

// ClientOptions returns Google Cloud client options for the configured credentials.
// Without a credentials file the clients fall back to Application Default Credentials.
func (c *Config) ClientOptions() []option.ClientOption {
	if c.Data.CredentialsFile == "" {
		return nil
	}
	return []option.ClientOption{option.WithCredentialsFile(c.Data.CredentialsFile)}
}

package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/jgrigorjeva/skoda-hackathon-2025/internal/aiclient"
	"github.com/jgrigorjeva/skoda-hackathon-2025/internal/dataset"
	"github.com/jgrigorjeva/skoda-hackathon-2025/internal/matching"
	"github.com/jgrigorjeva/skoda-hackathon-2025/internal/ranking"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Data    DataConfig        `yaml:"data"`
	SQLite  SQLiteConfig      `yaml:"sqlite"`
	AI      AIConfig          `yaml:"ai"`
	Ranking RankingConfig     `yaml:"ranking"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Data.Validate(); err != nil {
		return err
	}
	if err := c.SQLite.Validate(); err != nil {
		return err
	}
	if err := c.AI.Validate(); err != nil {
		return err
	}
	return c.Ranking.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
	// OverviewThrottle bounds how often overview.updated is pushed to SSE
	// clients.
	OverviewThrottle time.Duration `yaml:"overview_throttle"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&c.OverviewThrottle, validation.Min(time.Duration(0))),
	)
}

// DataConfig locates the input files.
type DataConfig struct {
	Dir   string        `yaml:"dir"`
	Files dataset.Files `yaml:"files"`
	// Watch enables reloading when a data file changes.
	Watch    bool          `yaml:"watch"`
	Debounce time.Duration `yaml:"debounce"`
}

// Validate validates the data configuration.
func (c *DataConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Dir, validation.Required),
		validation.Field(&c.Files, validation.By(requireFileNames)),
		validation.Field(&c.Debounce, validation.Min(time.Duration(0))),
	)
}

func requireFileNames(value any) error {
	f, _ := value.(dataset.Files)
	return validation.ValidateStruct(&f,
		validation.Field(&f.Skills, validation.Required),
		validation.Field(&f.Employees, validation.Required),
		validation.Field(&f.Learning, validation.Required),
		validation.Field(&f.Strategy, validation.Required),
		validation.Field(&f.Mapping, validation.Required),
		validation.Field(&f.Profiles, validation.Required),
	)
}

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// AIConfig addresses the reasoning service. Leaving URL empty disables it;
// the deterministic views keep working.
type AIConfig struct {
	URL        string        `yaml:"url"`
	Key        string        `yaml:"key"`
	APIVersion string        `yaml:"api_version"`
	Deployment string        `yaml:"deployment"`
	Timeout    time.Duration `yaml:"timeout"`
	MaxTokens  int           `yaml:"max_tokens"`
}

// Validate validates the reasoning-service configuration.
func (c *AIConfig) Validate() error {
	enabled := c.URL != ""
	return validation.ValidateStruct(c,
		validation.Field(&c.URL, is.URL),
		validation.Field(&c.Key, validation.When(enabled, validation.Required)),
		validation.Field(&c.APIVersion, validation.When(enabled, validation.Required)),
		validation.Field(&c.Deployment, validation.When(enabled, validation.Required)),
		validation.Field(&c.Timeout, validation.Min(time.Duration(0))),
		validation.Field(&c.MaxTokens, validation.Min(0)),
	)
}

// Enabled reports whether the reasoning service is configured.
func (c *AIConfig) Enabled() bool {
	return c.URL != ""
}

// Client returns the client settings.
func (c *AIConfig) Client() aiclient.Config {
	return aiclient.Config{
		URL:        c.URL,
		Key:        c.Key,
		APIVersion: c.APIVersion,
		Deployment: c.Deployment,
		Timeout:    c.Timeout,
		MaxTokens:  c.MaxTokens,
	}
}

// RankingConfig sizes the candidate selection.
type RankingConfig struct {
	TopN     int `yaml:"top_n"`
	PoolSize int `yaml:"pool_size"`
	// Workers bounds parallel scoring; 0 means one goroutine per employee.
	Workers int `yaml:"workers"`
}

// Validate validates the ranking configuration.
func (c *RankingConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.TopN, validation.Required, validation.Min(1), validation.Max(50)),
		validation.Field(&c.PoolSize, validation.Required, validation.Min(1)),
		validation.Field(&c.Workers, validation.Min(0)),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port:             8080,
				OverviewThrottle: 2 * time.Second,
			},
		},
		Data: DataConfig{
			Dir:      "./data",
			Files:    dataset.DefaultFiles(),
			Watch:    true,
			Debounce: 200 * time.Millisecond,
		},
		SQLite: SQLiteConfig{
			Path: "./skillgap.db",
		},
		AI: AIConfig{
			APIVersion: "2024-02-15-preview",
			Timeout:    aiclient.DefaultTimeout,
			MaxTokens:  2000,
		},
		Ranking: RankingConfig{
			TopN:     ranking.DefaultTopN,
			PoolSize: matching.DefaultTopN,
			Workers:  8,
		},
	}
}

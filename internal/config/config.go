package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/menta2k/bg-remover/pkg/padder"
	"github.com/menta2k/bg-remover/pkg/types"
	"github.com/menta2k/bg-remover/pkg/vectorizer"
)

// AppName names the XDG config directory.
const AppName = "bg-remover"

// Environment variables holding the service credentials.
const (
	EnvAPIKey    = "VECTORIZER_API_KEY"
	EnvAPISecret = "VECTORIZER_SECRET"
)

var (
	// ErrMissingCredentials is returned when the API key or secret is not set.
	ErrMissingCredentials = errors.New("API credentials not found: set " + EnvAPIKey + " and " + EnvAPISecret)

	// ErrConfigNotFound is returned when the configuration file does not exist.
	ErrConfigNotFound = errors.New("configuration file not found")
)

// Config holds the application configuration
type Config struct {
	Detection   DetectionConfig `yaml:"detection"`
	Canvas      CanvasConfig    `yaml:"canvas"`
	Service     ServiceConfig   `yaml:"service"`
	Input       InputConfig     `yaml:"input"`
	Output      OutputConfig    `yaml:"output"`
	Concurrency int             `yaml:"concurrency"`

	Credentials Credentials `yaml:"-"`
}

// DetectionConfig holds configuration for corner colour detection
type DetectionConfig struct {
	SampleSize int `yaml:"sample_size"`
}

// CanvasConfig holds configuration for optional pre-padding
type CanvasConfig struct {
	Width   int     `yaml:"width"`
	Height  int     `yaml:"height"`
	Pad     bool    `yaml:"pad"`
	AnchorX float64 `yaml:"anchor_x"`
	AnchorY float64 `yaml:"anchor_y"`
}

// ServiceConfig holds configuration for the background-removal API
type ServiceConfig struct {
	Endpoint      string        `yaml:"endpoint"`
	Mode          string        `yaml:"mode"`
	RetentionDays int           `yaml:"retention_days"`
	Tolerance     float64       `yaml:"tolerance"`
	MinAreaPx     float64       `yaml:"min_area_px"`
	Timeout       time.Duration `yaml:"timeout"`
}

// InputConfig holds configuration for input discovery
type InputConfig struct {
	Dir string `yaml:"dir"`
}

// OutputConfig holds configuration for output generation
type OutputConfig struct {
	Dir       string `yaml:"dir"`
	PaddedDir string `yaml:"padded_dir"`
	Format    string `yaml:"format"`
	Suffix    string `yaml:"suffix"`
}

// Credentials come from the environment only and are never written to disk.
type Credentials struct {
	APIKey    string
	APISecret string
}

// Default returns a configuration with default values
func Default() *Config {
	opts := vectorizer.DefaultOptions()
	return &Config{
		Detection: DetectionConfig{
			SampleSize: 3,
		},
		Canvas: CanvasConfig{
			Width:   4500,
			Height:  5400,
			Pad:     false,
			AnchorX: padder.NearTop.X,
			AnchorY: padder.NearTop.Y,
		},
		Service: ServiceConfig{
			Endpoint:      opts.Endpoint,
			Mode:          opts.Mode,
			RetentionDays: opts.RetentionDays,
			Tolerance:     opts.Tolerance,
			MinAreaPx:     opts.MinAreaPx,
			Timeout:       opts.Timeout,
		},
		Input: InputConfig{
			Dir: "./img",
		},
		Output: OutputConfig{
			Dir:    "./bgone-img",
			Format: "png",
		},
		Concurrency: 1,
	}
}

// LoadFromFile loads configuration from a YAML file. Fields missing from the
// file keep their defaults.
func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// Load reads filename if it exists, falling back to defaults when it does
// not, then fills the credentials from the environment.
func Load(filename string) (*Config, error) {
	config, err := LoadFromFile(filename)
	if errors.Is(err, ErrConfigNotFound) {
		config = Default()
	} else if err != nil {
		return nil, err
	}
	config.LoadCredentials()
	return config, nil
}

// LoadEnvFile loads variables from .env files without overriding values
// already present in the environment. Missing files are ignored.
func LoadEnvFile(filenames ...string) error {
	if len(filenames) == 0 {
		filenames = []string{".env"}
	}
	var existing []string
	for _, f := range filenames {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("failed to load env file: %w", err)
	}
	return nil
}

// LoadCredentials reads the API key and secret from the environment.
func (c *Config) LoadCredentials() {
	c.Credentials = Credentials{
		APIKey:    strings.TrimSpace(os.Getenv(EnvAPIKey)),
		APISecret: strings.TrimSpace(os.Getenv(EnvAPISecret)),
	}
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(filename string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid and reports every invalid field
func (c *Config) Validate() error {
	var errs []error

	if c.Detection.SampleSize < 1 || c.Detection.SampleSize > 10 {
		errs = append(errs, fmt.Errorf("detection.sample_size must be between 1 and 10"))
	}

	if err := (types.CanvasSpec{Width: c.Canvas.Width, Height: c.Canvas.Height}).Validate(); err != nil {
		errs = append(errs, fmt.Errorf("canvas: %w", err))
	}

	if c.Canvas.AnchorX < 0 || c.Canvas.AnchorX > 1 {
		errs = append(errs, fmt.Errorf("canvas.anchor_x must be between 0 and 1"))
	}

	if c.Canvas.AnchorY < 0 || c.Canvas.AnchorY > 1 {
		errs = append(errs, fmt.Errorf("canvas.anchor_y must be between 0 and 1"))
	}

	if c.Service.Endpoint == "" {
		errs = append(errs, fmt.Errorf("service.endpoint cannot be empty"))
	}

	if c.Service.RetentionDays < 0 {
		errs = append(errs, fmt.Errorf("service.retention_days cannot be negative"))
	}

	if c.Service.Tolerance < 0 {
		errs = append(errs, fmt.Errorf("service.tolerance cannot be negative"))
	}

	if c.Service.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("service.timeout must be positive"))
	}

	switch strings.ToLower(c.Output.Format) {
	case "png", "webp":
	default:
		errs = append(errs, fmt.Errorf("output.format must be png or webp, got %q", c.Output.Format))
	}

	if c.Output.Dir == "" {
		errs = append(errs, fmt.Errorf("output.dir cannot be empty"))
	}

	if c.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("concurrency must be at least 1"))
	}

	return errors.Join(errs...)
}

// ValidateCredentials reports ErrMissingCredentials when either half is unset.
func (c *Config) ValidateCredentials() error {
	if c.Credentials.APIKey == "" || c.Credentials.APISecret == "" {
		return ErrMissingCredentials
	}
	return nil
}

// CanvasSpec returns the configured target canvas.
func (c *Config) CanvasSpec() types.CanvasSpec {
	return types.CanvasSpec{Width: c.Canvas.Width, Height: c.Canvas.Height}
}

// Anchor returns the configured placement anchor.
func (c *Config) Anchor() padder.Anchor {
	return padder.Anchor{X: c.Canvas.AnchorX, Y: c.Canvas.AnchorY}
}

// VectorizerCredentials converts the credentials for the service client.
func (c *Config) VectorizerCredentials() vectorizer.Credentials {
	return vectorizer.Credentials{APIKey: c.Credentials.APIKey, APISecret: c.Credentials.APISecret}
}

// VectorizerOptions converts the service section for the client.
func (c *Config) VectorizerOptions() vectorizer.Options {
	return vectorizer.Options{
		Endpoint:      c.Service.Endpoint,
		Mode:          c.Service.Mode,
		RetentionDays: c.Service.RetentionDays,
		Tolerance:     c.Service.Tolerance,
		MinAreaPx:     c.Service.MinAreaPx,
		Timeout:       c.Service.Timeout,
	}
}

// XDGConfigDir returns the XDG config directory for bg-remover.
// On Linux: ~/.config/bg-remover
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	return filepath.Join(XDGConfigDir(), "config.yaml")
}

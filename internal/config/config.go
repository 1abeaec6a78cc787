package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config represents the complete gddoc configuration (v1 schema)
type Config struct {
	Version     int    `json:"version" mapstructure:"version"`
	ProjectRoot string `json:"projectRoot" mapstructure:"projectRoot"`

	Paths   PathsConfig   `json:"paths" mapstructure:"paths"`
	Scan    ScanConfig    `json:"scan" mapstructure:"scan"`
	Index   IndexConfig   `json:"index" mapstructure:"index"`
	Export  ExportConfig  `json:"export" mapstructure:"export"`
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`
}

// PathsConfig locates the documentation inputs and outputs relative to
// the project root.
type PathsConfig struct {
	ClassDocs string `json:"classDocs" mapstructure:"classDocs"`
	Output    string `json:"output" mapstructure:"output"`
	Report    string `json:"report" mapstructure:"report"`
}

// ScanConfig controls project file discovery.
type ScanConfig struct {
	Ignore     []string `json:"ignore" mapstructure:"ignore"`
	IgnoreNode string   `json:"ignoreNode" mapstructure:"ignoreNode"`
}

// IndexConfig contains the incremental index settings.
type IndexConfig struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	Path    string `json:"path" mapstructure:"path"`
}

// ExportConfig contains archive export settings.
type ExportConfig struct {
	Level int `json:"level" mapstructure:"level"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Format string `json:"format" mapstructure:"format"`
	Level  string `json:"level" mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version:     1,
		ProjectRoot: ".",
		Paths: PathsConfig{
			ClassDocs: "doc_classes",
			Output:    "docs/classes",
			Report:    "docs/report.yaml",
		},
		Scan: ScanConfig{
			Ignore:     []string{".git", ".import", ".godot", "addons"},
			IgnoreNode: "",
		},
		Index: IndexConfig{
			Enabled: true,
			Path:    ".gddoc/index.db",
		},
		Export: ExportConfig{
			Level: 3,
		},
		Logging: LoggingConfig{
			Format: "human",
			Level:  "info",
		},
	}
}

// LoadConfig loads configuration from .gddoc/config.json
func LoadConfig(projectRoot string) (*Config, error) {
	v := viper.New()

	v.SetDefault("version", 1)
	v.SetDefault("projectRoot", ".")

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(filepath.Join(projectRoot, ".gddoc"))

	if err := v.ReadInConfig(); err != nil {
		// If config doesn't exist, return default config
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the configuration to .gddoc/config.json
func (c *Config) Save(projectRoot string) error {
	dir := filepath.Join(projectRoot, ".gddoc")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(dir, "config.json"), data, 0644)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Version != 1 {
		return &ConfigError{Field: "version", Message: "unsupported config version"}
	}
	if c.Paths.Output == "" {
		return &ConfigError{Field: "paths.output", Message: "output directory must not be empty"}
	}
	if c.Export.Level < 1 || c.Export.Level > 22 {
		return &ConfigError{Field: "export.level", Message: "compression level out of range"}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}

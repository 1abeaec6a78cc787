package main

import (
	"os"
	"path/filepath"

	"gddoc/internal/config"
	"gddoc/internal/logging"
	"gddoc/internal/version"

	"github.com/spf13/cobra"
)

var (
	// projectFlag is the CLI --project flag value
	projectFlag string
	// logLevelFlag overrides the configured log level
	logLevelFlag string
	// logFormatFlag overrides the configured log format
	logFormatFlag string
)

var rootCmd = &cobra.Command{
	Use:   "gddoc",
	Short: "gddoc - Godot project documentation generator",
	Long: `gddoc generates reStructuredText reference documentation for a Godot
project: class pages from the engine XML class docs and scene pages from
the project's .tscn files, with cross-links between the two.`,
	Version: version.Version,
}

func init() {
	rootCmd.SetVersionTemplate("gddoc version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVarP(&projectFlag, "project", "p", "",
		"Godot project root (default: current directory)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "",
		"Log level: debug, info, warn, or error")
	rootCmd.PersistentFlags().StringVar(&logFormatFlag, "log-format", "",
		"Log format: human or json")
}

// resolveProjectRoot determines the project root from the CLI flag or
// the current directory, as an absolute path.
func resolveProjectRoot() (string, error) {
	root := projectFlag
	if root == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", err
		}
		root = cwd
	}
	return filepath.Abs(root)
}

// loadProjectConfig loads the project configuration and applies CLI
// logging overrides. Precedence: CLI flag > config file > defaults.
func loadProjectConfig() (*config.Config, error) {
	root, err := resolveProjectRoot()
	if err != nil {
		return nil, err
	}

	cfg, err := config.LoadConfig(root)
	if err != nil {
		return nil, err
	}
	cfg.ProjectRoot = root

	if logLevelFlag != "" {
		cfg.Logging.Level = logLevelFlag
	}
	if logFormatFlag != "" {
		cfg.Logging.Format = logFormatFlag
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) *logging.Logger {
	return logging.NewLogger(logging.Config{
		Format: logging.Format(cfg.Logging.Format),
		Level:  logging.LogLevel(cfg.Logging.Level),
	})
}

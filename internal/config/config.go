package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// Validation modes
	ModeEvent   = "event"
	ModePackage = "package"

	// Package subtypes
	PackageBasic     = "basic"
	PackageTherapies = "therapies"

	// Conventions
	ConventionStandard  = "standard"
	ConventionAlternate = "alternate"

	// Default values
	DefaultLogLevel    = "info"
	DefaultMaxFileSize = 100 * 1024 * 1024 // 100MB
)

// Config holds all configuration for the claims validator CLI
type Config struct {
	// Input configuration
	Directory string

	// Validation configuration
	Mode        string // "event" or "package"
	PackageType string // "basic" or "therapies", package mode only
	Convention  string // "standard" or "alternate"

	// Application configuration
	Version     string
	LogLevel    string
	MaxFileSize int64 // Maximum PDF file size in bytes
	Workers     int   // Parallel folder validations
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	currentDir, err := os.Getwd()
	if err != nil {
		// Fallback to current directory if working directory cannot be determined
		currentDir = "."
	}

	return &Config{
		Directory:   currentDir,
		Mode:        ModeEvent,
		PackageType: PackageBasic,
		Convention:  ConventionStandard,
		Version:     "1.0.0",
		LogLevel:    DefaultLogLevel,
		MaxFileSize: DefaultMaxFileSize,
		Workers:     runtime.NumCPU(),
	}
}

// LoadFromFlags parses command line flags and returns a configuration
func LoadFromFlags() (*Config, error) {
	cfg := DefaultConfig()

	setupViperEnvironment(cfg)
	defineCommandLineFlags(cfg)
	bindFlagsToViper()
	setupUsageMessage()

	pflag.Parse()

	populateConfigFromViper(cfg)

	if cfg.Directory != "" {
		if expandedPath, err := filepath.Abs(cfg.Directory); err == nil {
			cfg.Directory = expandedPath
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(cfg *Config) {
	viper.SetEnvPrefix("CLAIMS")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("dir", cfg.Directory)
	viper.SetDefault("mode", cfg.Mode)
	viper.SetDefault("package-type", cfg.PackageType)
	viper.SetDefault("convention", cfg.Convention)
	viper.SetDefault("loglevel", cfg.LogLevel)
	viper.SetDefault("maxfilesize", cfg.MaxFileSize)
	viper.SetDefault("workers", cfg.Workers)
}

// defineCommandLineFlags sets up all command line flags
func defineCommandLineFlags(cfg *Config) {
	pflag.String("dir", cfg.Directory, "Directory containing the patient folders to validate")
	pflag.String("mode", cfg.Mode, "Validation mode: 'event' for single events, 'package' for monthly packages")
	pflag.String("package-type", cfg.PackageType, "Package subtype: 'basic' or 'therapies' (package mode only)")
	pflag.String("convention", cfg.Convention, "Billing convention: 'standard' or 'alternate'")
	pflag.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	pflag.Int64("maxfilesize", cfg.MaxFileSize, "Maximum PDF file size in bytes")
	pflag.Int("workers", cfg.Workers, "Number of folders validated in parallel")
}

// bindFlagsToViper binds command line flags to viper configuration
func bindFlagsToViper() {
	_ = viper.BindPFlag("dir", pflag.Lookup("dir"))
	_ = viper.BindPFlag("mode", pflag.Lookup("mode"))
	_ = viper.BindPFlag("package-type", pflag.Lookup("package-type"))
	_ = viper.BindPFlag("convention", pflag.Lookup("convention"))
	_ = viper.BindPFlag("loglevel", pflag.Lookup("loglevel"))
	_ = viper.BindPFlag("maxfilesize", pflag.Lookup("maxfilesize"))
	_ = viper.BindPFlag("workers", pflag.Lookup("workers"))
}

// setupUsageMessage configures the custom usage message
func setupUsageMessage() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nClaims Validator - batch validation of home-care claim documentation\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s --dir=/path/to/batch                                  "+
			"# event mode, standard convention\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --dir=/path/to/batch --convention=alternate           "+
			"# alternate convention\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --dir=/path/to/batch --mode=package --package-type=therapies\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  CLAIMS_DIR          Input directory\n")
		fmt.Fprintf(os.Stderr, "  CLAIMS_MODE         Validation mode\n")
		fmt.Fprintf(os.Stderr, "  CLAIMS_PACKAGE_TYPE Package subtype\n")
		fmt.Fprintf(os.Stderr, "  CLAIMS_CONVENTION   Billing convention\n")
		fmt.Fprintf(os.Stderr, "  CLAIMS_LOGLEVEL     Log level\n")
		fmt.Fprintf(os.Stderr, "  CLAIMS_MAXFILESIZE  Maximum file size\n")
		fmt.Fprintf(os.Stderr, "  CLAIMS_WORKERS      Parallel folder validations\n")
	}
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(cfg *Config) {
	cfg.Directory = viper.GetString("dir")
	cfg.Mode = viper.GetString("mode")
	cfg.PackageType = viper.GetString("package-type")
	cfg.Convention = viper.GetString("convention")
	cfg.LogLevel = viper.GetString("loglevel")
	cfg.MaxFileSize = viper.GetInt64("maxfilesize")
	cfg.Workers = viper.GetInt("workers")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Mode != ModeEvent && c.Mode != ModePackage {
		return errors.New("mode must be either 'event' or 'package'")
	}

	if c.Mode == ModePackage && c.PackageType != PackageBasic && c.PackageType != PackageTherapies {
		return errors.New("package-type must be either 'basic' or 'therapies'")
	}

	if c.Convention != ConventionStandard && c.Convention != ConventionAlternate {
		return errors.New("convention must be either 'standard' or 'alternate'")
	}

	if c.Directory == "" {
		return errors.New("input directory cannot be empty")
	}
	if info, err := os.Stat(c.Directory); err != nil {
		return fmt.Errorf("cannot access input directory %s: %w", c.Directory, err)
	} else if !info.IsDir() {
		return fmt.Errorf("input path is not a directory: %s", c.Directory)
	}

	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}

	if c.Workers < 1 {
		return errors.New("workers must be at least 1")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	return nil
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// IsPackageMode returns true when folders are validated as monthly packages
func (c *Config) IsPackageMode() bool {
	return c.Mode == ModePackage
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{Directory: %s, Mode: %s, PackageType: %s, Convention: %s, LogLevel: %s, MaxFileSize: %d, Workers: %d}",
		c.Directory, c.Mode, c.PackageType, c.Convention, c.LogLevel, c.MaxFileSize, c.Workers)
}

package config

import (
	"os"
	"runtime"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Mode != ModeEvent {
		t.Errorf("Expected default mode to be 'event', got '%s'", cfg.Mode)
	}

	if cfg.PackageType != PackageBasic {
		t.Errorf("Expected default package type to be 'basic', got '%s'", cfg.PackageType)
	}

	if cfg.Convention != ConventionStandard {
		t.Errorf("Expected default convention to be 'standard', got '%s'", cfg.Convention)
	}

	if cfg.Version != "1.0.0" {
		t.Errorf("Expected default version to be '1.0.0', got '%s'", cfg.Version)
	}

	if cfg.LogLevel != "info" {
		t.Errorf("Expected default log level to be 'info', got '%s'", cfg.LogLevel)
	}

	if cfg.MaxFileSize != 100*1024*1024 {
		t.Errorf("Expected default max file size to be 100MB, got %d", cfg.MaxFileSize)
	}

	if cfg.Workers != runtime.NumCPU() {
		t.Errorf("Expected default workers to be %d, got %d", runtime.NumCPU(), cfg.Workers)
	}

	currentDir, _ := os.Getwd()
	if cfg.Directory != currentDir {
		t.Errorf("Expected default directory to be '%s', got '%s'", currentDir, cfg.Directory)
	}
}

func validConfig(t *testing.T) *Config {
	t.Helper()
	return &Config{
		Directory:   t.TempDir(),
		Mode:        ModeEvent,
		PackageType: PackageBasic,
		Convention:  ConventionStandard,
		LogLevel:    "info",
		MaxFileSize: 1024,
		Workers:     2,
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid event config",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name: "valid package config",
			mutate: func(c *Config) {
				c.Mode = ModePackage
				c.PackageType = PackageTherapies
				c.Convention = ConventionAlternate
			},
			wantErr: false,
		},
		{
			name:    "invalid mode",
			mutate:  func(c *Config) { c.Mode = "batch" },
			wantErr: true,
		},
		{
			name: "invalid package type",
			mutate: func(c *Config) {
				c.Mode = ModePackage
				c.PackageType = "acute"
			},
			wantErr: true,
		},
		{
			name: "package type ignored in event mode",
			mutate: func(c *Config) {
				c.Mode = ModeEvent
				c.PackageType = "acute"
			},
			wantErr: false,
		},
		{
			name:    "invalid convention",
			mutate:  func(c *Config) { c.Convention = "fomag" },
			wantErr: true,
		},
		{
			name:    "empty directory",
			mutate:  func(c *Config) { c.Directory = "" },
			wantErr: true,
		},
		{
			name:    "missing directory",
			mutate:  func(c *Config) { c.Directory = "/nonexistent/claims/batch" },
			wantErr: true,
		},
		{
			name:    "zero max file size",
			mutate:  func(c *Config) { c.MaxFileSize = 0 },
			wantErr: true,
		},
		{
			name:    "negative max file size",
			mutate:  func(c *Config) { c.MaxFileSize = -1 },
			wantErr: true,
		},
		{
			name:    "zero workers",
			mutate:  func(c *Config) { c.Workers = 0 },
			wantErr: true,
		},
		{
			name:    "invalid log level",
			mutate:  func(c *Config) { c.LogLevel = "trace" },
			wantErr: true,
		},
		{
			name:    "warn log level",
			mutate:  func(c *Config) { c.LogLevel = "warn" },
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDirectoryMustBeDirectory(t *testing.T) {
	cfg := validConfig(t)

	file, err := os.CreateTemp(t.TempDir(), "claims-*.pdf")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	file.Close()

	cfg.Directory = file.Name()
	if err := cfg.Validate(); err == nil {
		t.Error("Expected validation error when input path is a regular file")
	}
}

func TestIsDebug(t *testing.T) {
	cfg := validConfig(t)
	if cfg.IsDebug() {
		t.Error("Expected IsDebug to be false for info level")
	}

	cfg.LogLevel = "debug"
	if !cfg.IsDebug() {
		t.Error("Expected IsDebug to be true for debug level")
	}
}

func TestIsPackageMode(t *testing.T) {
	cfg := validConfig(t)
	if cfg.IsPackageMode() {
		t.Error("Expected IsPackageMode to be false in event mode")
	}

	cfg.Mode = ModePackage
	if !cfg.IsPackageMode() {
		t.Error("Expected IsPackageMode to be true in package mode")
	}
}

func TestConfigString(t *testing.T) {
	cfg := validConfig(t)
	s := cfg.String()

	for _, want := range []string{"event", "basic", "standard", "info"} {
		if !strings.Contains(s, want) {
			t.Errorf("Expected string representation to contain '%s', got '%s'", want, s)
		}
	}
}

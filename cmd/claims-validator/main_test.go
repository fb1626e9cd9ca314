package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/casalud/claims-validator/internal/config"
	"github.com/casalud/claims-validator/internal/engine"
)

func TestPrintVersion(t *testing.T) {
	// Save original stdout
	originalStdout := os.Stdout

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("Failed to create pipe: %v", err)
	}
	os.Stdout = w

	oldVersion := version
	oldBuildTime := buildTime
	oldGitCommit := gitCommit

	version = "1.2.3"
	buildTime = "2026-08-01_10:30:00"
	gitCommit = "abc123"

	defer func() {
		version = oldVersion
		buildTime = oldBuildTime
		gitCommit = oldGitCommit
		os.Stdout = originalStdout
	}()

	done := make(chan struct{})
	go func() {
		defer close(done)
		printVersion()
		w.Close()
	}()

	var buf bytes.Buffer
	io.Copy(&buf, r)
	<-done

	output := buf.String()
	expectedStrings := []string{
		"Claims Validator",
		"Version: 1.2.3",
		"Build Time: 2026-08-01_10:30:00",
		"Git Commit: abc123",
		"Built with:",
	}
	for _, expected := range expectedStrings {
		if !strings.Contains(output, expected) {
			t.Errorf("printVersion() output missing expected string: %s\nActual output:\n%s", expected, output)
		}
	}
}

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name     string
		logLevel string
		wantErr  bool
	}{
		{name: "info level", logLevel: "info", wantErr: false},
		{name: "debug level", logLevel: "debug", wantErr: false},
		{name: "warn level", logLevel: "warn", wantErr: false},
		{name: "invalid level", logLevel: "verbose", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{LogLevel: tt.logLevel}
			logger, err := newLogger(cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("newLogger() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && logger == nil {
				t.Error("newLogger() returned nil logger without error")
			}
		})
	}
}

func TestStatusLabel(t *testing.T) {
	tests := []struct {
		status engine.Status
		want   string
	}{
		{engine.StatusClean, "SIN ERRORES"},
		{engine.StatusWarned, "CON ALERTAS"},
		{engine.StatusErrored, "CON ERRORES"},
	}
	for _, tt := range tests {
		if got := statusLabel(tt.status); got != tt.want {
			t.Errorf("statusLabel(%s) = %s, want %s", tt.status, got, tt.want)
		}
	}
}

func TestCollectFiles(t *testing.T) {
	dir := t.TempDir()

	patientDir := filepath.Join(dir, "123456 VM")
	if err := os.MkdirAll(filepath.Join(patientDir, "nested"), 0o755); err != nil {
		t.Fatalf("Failed to create folder tree: %v", err)
	}
	for _, name := range []string{"2.pdf", "5.pdf", "desktop.ini"} {
		if err := os.WriteFile(filepath.Join(patientDir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("Failed to write file: %v", err)
		}
	}
	// A loose file at the top level belongs to no patient folder.
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	files, err := collectFiles(dir)
	if err != nil {
		t.Fatalf("collectFiles() error: %v", err)
	}

	if len(files) != 3 {
		t.Fatalf("Expected 3 files, got %d", len(files))
	}

	byName := make(map[string]bool)
	for _, f := range files {
		byName[f.Name] = true
		wantRel := "123456 VM/" + f.Name
		if f.RelPath != wantRel {
			t.Errorf("RelPath = %s, want %s", f.RelPath, wantRel)
		}
	}
	for _, name := range []string{"2.pdf", "5.pdf", "desktop.ini"} {
		if !byName[name] {
			t.Errorf("Expected collected files to include %s", name)
		}
	}

	// Lazy open returns the file's bytes.
	for _, f := range files {
		if f.Name != "2.pdf" {
			continue
		}
		data, err := f.Open()
		if err != nil {
			t.Fatalf("Open() error: %v", err)
		}
		if string(data) != "x" {
			t.Errorf("Open() = %q, want %q", data, "x")
		}
	}
}

func TestCollectFilesMissingDir(t *testing.T) {
	if _, err := collectFiles("/nonexistent/claims/batch"); err == nil {
		t.Error("Expected error for missing input directory")
	}
}

func TestCollectFilesPDFDetection(t *testing.T) {
	dir := t.TempDir()
	patientDir := filepath.Join(dir, "123456")
	if err := os.MkdirAll(patientDir, 0o755); err != nil {
		t.Fatalf("Failed to create folder: %v", err)
	}
	if err := os.WriteFile(filepath.Join(patientDir, "2.pdf"), []byte("x"), 0o644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	files, err := collectFiles(dir)
	if err != nil {
		t.Fatalf("collectFiles() error: %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("Expected 1 file, got %d", len(files))
	}
	if !files[0].IsPDF() {
		t.Errorf("Expected %s to be detected as a PDF", files[0].Name)
	}
}

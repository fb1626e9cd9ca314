package main

import (
	"context"
	"fmt"
	"log"
	"mime"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"sort"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/casalud/claims-validator/internal/config"
	"github.com/casalud/claims-validator/internal/engine"
	"github.com/casalud/claims-validator/internal/folder"
	"github.com/casalud/claims-validator/internal/pdftext"
	"github.com/casalud/claims-validator/internal/rules"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

// newLogger builds the structured logger for the run. Logs go to stderr
// so the validation report on stdout stays machine-readable.
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}

	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}
	if cfg.IsDebug() {
		zc.Development = true
		zc.Encoding = "console"
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	return zc.Build()
}

// collectFiles walks the first level of subdirectories under dir and
// returns one File per entry found inside them. Bytes are loaded lazily
// when the engine opens the file.
func collectFiles(dir string) ([]folder.File, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading input directory: %w", err)
	}

	var files []folder.File
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		folderName := entry.Name()
		sub, err := os.ReadDir(filepath.Join(dir, folderName))
		if err != nil {
			return nil, fmt.Errorf("reading folder %s: %w", folderName, err)
		}
		for _, fe := range sub {
			if fe.IsDir() {
				continue
			}
			name := fe.Name()
			path := filepath.Join(dir, folderName, name)
			files = append(files, folder.File{
				Name:     name,
				RelPath:  folderName + "/" + name,
				MIMEType: mime.TypeByExtension(filepath.Ext(name)),
				Open: func() ([]byte, error) {
					return os.ReadFile(path)
				},
			})
		}
	}
	return files, nil
}

// statusLabel maps a status to its report label.
func statusLabel(s engine.Status) string {
	switch s {
	case engine.StatusErrored:
		return "CON ERRORES"
	case engine.StatusWarned:
		return "CON ALERTAS"
	default:
		return "SIN ERRORES"
	}
}

// printResult writes one folder's findings to stdout, services in
// catalog order with the general bucket last.
func printResult(r *engine.FolderResult) {
	fmt.Printf("%s [%s]\n", r.Folder, statusLabel(r.Status()))

	order := append([]rules.Service{}, rules.Services()...)
	order = append(order, rules.General)
	for _, svc := range order {
		sr, ok := r.Services[svc]
		if !ok {
			continue
		}
		if len(sr.Errors) == 0 && len(sr.Warnings) == 0 {
			continue
		}
		fmt.Printf("  %s:\n", svc)
		for _, f := range sr.Errors {
			fmt.Printf("    ERROR  %s\n", f.Message)
		}
		for _, f := range sr.Warnings {
			fmt.Printf("    ALERTA %s\n", f.Message)
		}
	}
}

// printSummary writes the batch totals and returns the count of folders
// that ended with errors.
func printSummary(results map[string]*engine.FolderResult) int {
	var clean, warned, errored int
	for _, r := range results {
		switch r.Status() {
		case engine.StatusErrored:
			errored++
		case engine.StatusWarned:
			warned++
		default:
			clean++
		}
	}
	fmt.Printf("\nTotal: %d carpetas | %d sin errores | %d con alertas | %d con errores\n",
		len(results), clean, warned, errored)
	return errored
}

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			printVersion()
			return
		}
	}

	cfg, err := config.LoadFromFlags()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set version if it was provided during build
	if version != "dev" {
		cfg.Version = version
	}

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Debug("starting", zap.String("config", cfg.String()))

	files, err := collectFiles(cfg.Directory)
	if err != nil {
		logger.Fatal("collecting input files", zap.Error(err))
	}
	groups := folder.GroupByFolder(files)
	if len(groups) == 0 {
		logger.Warn("no patient folders found", zap.String("dir", cfg.Directory))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	eng := engine.New(pdftext.NewExtractor(cfg.MaxFileSize), logger, cfg.Workers)
	results := eng.ValidateBatch(ctx, groups, engine.Options{
		Convention:  rules.Convention(cfg.Convention),
		Mode:        engine.Mode(cfg.Mode),
		PackageType: engine.PackageType(cfg.PackageType),
	})

	names := make([]string, 0, len(results))
	for name := range results {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		printResult(results[name])
	}
	printSummary(results)

	// Validation findings are the report, not a process failure; only an
	// interrupted run exits non-zero.
	if ctx.Err() != nil {
		os.Exit(1)
	}
}

// printVersion prints version information
func printVersion() {
	fmt.Printf("Claims Validator\n")
	fmt.Printf("Version: %s\n", version)
	fmt.Printf("Build Time: %s\n", buildTime)
	fmt.Printf("Git Commit: %s\n", gitCommit)
	fmt.Printf("Built with: %s\n", runtime.Version())
}

package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths resolves every file location the application touches against one base
// directory.
type Paths struct {
	BaseDir string
	LogsDir string
}

// GetPaths returns paths anchored at baseDir. An empty baseDir means the
// current working directory.
func GetPaths(baseDir string) (*Paths, error) {
	if baseDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %v", err)
		}
		baseDir = wd
	}

	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory %s: %v", baseDir, err)
	}

	return &Paths{
		BaseDir: abs,
		LogsDir: filepath.Join(abs, "logs"),
	}, nil
}

// Resolve returns path unchanged when it is absolute or empty, otherwise
// joined to the base directory.
func (p *Paths) Resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(p.BaseDir, path)
}

// EnsureParent creates the directory holding path.
func (p *Paths) EnsureParent(path string) error {
	dir := filepath.Dir(p.Resolve(path))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %v", dir, err)
	}
	return nil
}

// ResolveConfig rewrites every relative path in cfg against the base directory.
func (p *Paths) ResolveConfig(cfg *Config) {
	cfg.Paths.BaseDir = p.BaseDir
	cfg.Source.WorkbookPath = p.Resolve(cfg.Source.WorkbookPath)
	cfg.Source.CredentialsFile = p.Resolve(cfg.Source.CredentialsFile)
	cfg.Output.WorkbookPath = p.Resolve(cfg.Output.WorkbookPath)
	cfg.Output.CSVDir = p.Resolve(cfg.Output.CSVDir)
	cfg.Output.SQLitePath = p.Resolve(cfg.Output.SQLitePath)
	cfg.Logging.FilePath = p.Resolve(cfg.Logging.FilePath)
	cfg.Telemetry.MetricsTextfile = p.Resolve(cfg.Telemetry.MetricsTextfile)
}

// LogPathResolution logs resolved paths for debugging
func (p *Paths) LogPathResolution(logger *slog.Logger, cfg *Config) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("Path resolution",
		slog.String("base_dir", p.BaseDir),
		slog.String("source_workbook", cfg.Source.WorkbookPath),
		slog.String("output_workbook", cfg.Output.WorkbookPath),
		slog.String("csv_dir", cfg.Output.CSVDir),
		slog.String("sqlite_path", cfg.Output.SQLitePath),
		slog.String("log_file", cfg.Logging.FilePath))
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

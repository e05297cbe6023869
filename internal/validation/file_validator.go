package validation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"ganttcli/internal/config"
	"ganttcli/internal/errors"
)

// WorkbookExtensions lists the file types the workbook source and sink accept.
var WorkbookExtensions = []string{".xlsx", ".xlsm", ".xltx", ".xltm"}

// FileValidator checks the files and directories a configuration points at
// before any run touches them.
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger,
	}
}

// ValidateFile checks if a specific file exists and is readable
func (v *FileValidator) ValidateFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.Debug("File does not exist", slog.String("file", path))
		return errors.NewNotFoundError("file " + path)
	}
	if err != nil {
		return errors.NewStorageError("failed to stat file", err).WithContext("file", path)
	}
	if info.IsDir() {
		return errors.NewAppValidationError(fmt.Sprintf("%s is a directory, not a file", path))
	}

	file, err := os.Open(path)
	if err != nil {
		return errors.NewStorageError("file is not readable", err).WithContext("file", path)
	}
	file.Close()

	v.logger.Debug("File validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateWorkbookName rejects paths that cannot hold a workbook: unknown
// extensions and Office lock files.
func (v *FileValidator) ValidateWorkbookName(path string) error {
	ext := strings.ToLower(filepath.Ext(path))
	supported := false
	for _, e := range WorkbookExtensions {
		if ext == e {
			supported = true
			break
		}
	}
	if !supported {
		return errors.NewAppValidationError(fmt.Sprintf("%s is not a workbook (extension %q)", path, ext))
	}
	if strings.HasPrefix(filepath.Base(path), "~$") {
		return errors.NewAppValidationError(fmt.Sprintf("%s is a workbook lock file", path))
	}
	return nil
}

// ValidateWorkbookFile checks that path names an existing, readable workbook.
func (v *FileValidator) ValidateWorkbookFile(path string) error {
	if err := v.ValidateWorkbookName(path); err != nil {
		return err
	}
	return v.ValidateFile(path)
}

// ValidateOutputDirectory ensures output directory exists or can be created
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.NewStorageError("failed to create output directory", err).WithContext("dir", dir)
	}

	// Verify it's writable by creating a probe file
	probe, err := os.CreateTemp(dir, ".write_test-*")
	if err != nil {
		return errors.NewStorageError("output directory is not writable", err).WithContext("dir", dir)
	}
	name := probe.Name()
	probe.Close()
	os.Remove(name)

	v.logger.Debug("Output directory validated", slog.String("directory", dir))
	return nil
}

// CheckConfig validates every path cfg reads from or writes to. Paths must
// already be resolved. It returns one entry per problem, keyed by config field.
func (v *FileValidator) CheckConfig(cfg *config.Config) []errors.ValidationError {
	var problems []errors.ValidationError
	add := func(field string, err error) {
		if err == nil {
			return
		}
		problems = append(problems, errors.ValidationError{Field: field, Message: err.Error()})
	}

	switch cfg.Source.Kind {
	case "workbook":
		add("source.workbook_path", v.ValidateWorkbookFile(cfg.Source.WorkbookPath))
	case "gsheets":
		if cfg.Source.CredentialsFile != "" {
			add("source.credentials_file", v.ValidateFile(cfg.Source.CredentialsFile))
		}
	}

	for _, target := range cfg.Output.Targets {
		switch target {
		case "workbook":
			if cfg.Output.WorkbookPath == "" {
				// Falls back to the source workbook, checked above.
				continue
			}
			if err := v.ValidateWorkbookName(cfg.Output.WorkbookPath); err != nil {
				add("output.workbook_path", err)
				continue
			}
			add("output.workbook_path", v.ValidateOutputDirectory(filepath.Dir(cfg.Output.WorkbookPath)))
		case "csv":
			add("output.csv_dir", v.ValidateOutputDirectory(cfg.Output.CSVDir))
		case "sqlite":
			add("output.sqlite_path", v.ValidateOutputDirectory(filepath.Dir(cfg.Output.SQLitePath)))
		}
	}

	if cfg.Logging.Output != "console" && cfg.Logging.FilePath != "" {
		add("logging.file_path", v.ValidateOutputDirectory(filepath.Dir(cfg.Logging.FilePath)))
	}
	if cfg.Telemetry.MetricsTextfile != "" {
		add("telemetry.metrics_textfile", v.ValidateOutputDirectory(filepath.Dir(cfg.Telemetry.MetricsTextfile)))
	}

	if len(problems) > 0 {
		v.logger.Warn("Configuration check found problems", slog.Int("problems", len(problems)))
	} else {
		v.logger.Info("Configuration check passed")
	}
	return problems
}

package config

import (
	"fmt"
	"os"
	"reflect"
	"regexp"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix namespaces every environment variable, e.g. GANTT_SOURCE_KIND.
const EnvPrefix = "GANTT"

// Config represents the complete application configuration
type Config struct {
	Source    SourceConfig    `yaml:"source" envconfig:"SOURCE"`
	Output    OutputConfig    `yaml:"output" envconfig:"OUTPUT"`
	Report    ReportConfig    `yaml:"report" envconfig:"REPORT"`
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Watch     WatchConfig     `yaml:"watch" envconfig:"WATCH"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
}

// SourceConfig locates the schedule and identifier sheets.
type SourceConfig struct {
	Kind            string `yaml:"kind" envconfig:"KIND" validate:"oneof=workbook gsheets"`
	WorkbookPath    string `yaml:"workbook_path" envconfig:"WORKBOOK_PATH" validate:"required_if=Kind workbook"`
	SpreadsheetID   string `yaml:"spreadsheet_id" envconfig:"SPREADSHEET_ID" validate:"required_if=Kind gsheets"`
	CredentialsFile string `yaml:"credentials_file" envconfig:"CREDENTIALS_FILE"`
	GanttSheet      string `yaml:"gantt_sheet" envconfig:"GANTT_SHEET" validate:"required"`
	GanttRange      string `yaml:"gantt_range" envconfig:"GANTT_RANGE" validate:"required,a1range"`
	IDSheet         string `yaml:"id_sheet" envconfig:"ID_SHEET" validate:"required"`
	IDRange         string `yaml:"id_range" envconfig:"ID_RANGE" validate:"required,a1range"`
}

// OutputConfig lists the sinks a run commits to and the output sheet names.
type OutputConfig struct {
	Targets             []string `yaml:"targets" envconfig:"TARGETS" validate:"required,min=1,dive,oneof=source workbook gsheets csv sqlite"`
	WorkbookPath        string   `yaml:"workbook_path" envconfig:"WORKBOOK_PATH"`
	SpreadsheetID       string   `yaml:"spreadsheet_id" envconfig:"SPREADSHEET_ID"`
	CSVDir              string   `yaml:"csv_dir" envconfig:"CSV_DIR"`
	SQLitePath          string   `yaml:"sqlite_path" envconfig:"SQLITE_PATH"`
	SummarySheet        string   `yaml:"summary_sheet" envconfig:"SUMMARY_SHEET" validate:"required"`
	TransitionsSheet    string   `yaml:"transitions_sheet" envconfig:"TRANSITIONS_SHEET" validate:"required"`
	CategoryReportSheet string   `yaml:"category_report_sheet" envconfig:"CATEGORY_REPORT_SHEET" validate:"required"`
	CounterSheet        string   `yaml:"counter_sheet" envconfig:"COUNTER_SHEET" validate:"required"`
}

// ReportConfig controls report derivation.
type ReportConfig struct {
	TrackedCategories     []string `yaml:"tracked_categories" envconfig:"TRACKED_CATEGORIES" validate:"required,min=1"`
	TimeZone              string   `yaml:"time_zone" envconfig:"TIME_ZONE" validate:"required,tzname"`
	RepeatCategoryColumns bool     `yaml:"repeat_category_columns" envconfig:"REPEAT_CATEGORY_COLUMNS"`
	// Today pins the report date (DD/MM/YY); empty means the current day.
	Today string `yaml:"today" envconfig:"TODAY" validate:"omitempty,ddmmyy"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int             `yaml:"port" envconfig:"PORT" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration   `yaml:"read_timeout" envconfig:"READ_TIMEOUT" validate:"gt=0"`
	WriteTimeout    time.Duration   `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" validate:"gt=0"`
	IdleTimeout     time.Duration   `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	ShutdownTimeout time.Duration   `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	RunTimeout      time.Duration   `yaml:"run_timeout" envconfig:"RUN_TIMEOUT" validate:"gt=0"`
	RateLimit       RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" validate:"gte=0"`
	Burst   int     `yaml:"burst" envconfig:"BURST" validate:"gte=0"`
}

// WatchConfig configures re-running on workbook changes.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce" envconfig:"DEBOUNCE" validate:"gte=0"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn error"`
	Format   string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json text"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// TelemetryConfig contains tracing and metrics export settings
type TelemetryConfig struct {
	ServiceName     string `yaml:"service_name" envconfig:"SERVICE_NAME"`
	Tracing         string `yaml:"tracing" envconfig:"TRACING" validate:"oneof=none stdout"`
	MetricsTextfile string `yaml:"metrics_textfile" envconfig:"METRICS_TEXTFILE"`
}

// PathsConfig contains file system paths configuration
type PathsConfig struct {
	// BaseDir anchors every relative path; empty means the working directory.
	BaseDir string `yaml:"base_dir" envconfig:"BASE_DIR"`
}

// Load builds the configuration from defaults, the YAML file at path (or the
// first config file found in the usual locations when path is empty) and
// GANTT_* environment variables, in that order of precedence.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = getConfigFilePath()
	}
	if path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file %s: %w", path, err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays the YAML file onto cfg. Keys missing from the file
// keep their current value.
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

var a1RangePattern = regexp.MustCompile(`^[A-Za-z]{1,3}[0-9]*(:[A-Za-z]{1,3}[0-9]*)?$`)

// NewValidator returns a validator with the custom tags used by Config:
// a1range, tzname (an IANA zone or "Local") and ddmmyy.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterValidation("a1range", func(fl validator.FieldLevel) bool {
		return a1RangePattern.MatchString(fl.Field().String())
	})
	v.RegisterValidation("tzname", func(fl validator.FieldLevel) bool {
		_, err := time.LoadLocation(fl.Field().String())
		return err == nil
	})
	v.RegisterValidation("ddmmyy", IsDDMMYY)
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// IsDDMMYY validates a DD/MM/YY date string.
func IsDDMMYY(fl validator.FieldLevel) bool {
	_, err := time.Parse(DateLayout, fl.Field().String())
	return err == nil
}

// Validate checks field constraints and the settings that depend on each other.
func (c *Config) Validate() error {
	if err := NewValidator().Struct(c); err != nil {
		return err
	}

	for _, target := range c.Output.Targets {
		switch target {
		case "csv":
			if c.Output.CSVDir == "" {
				return fmt.Errorf("output target csv requires output.csv_dir")
			}
		case "sqlite":
			if c.Output.SQLitePath == "" {
				return fmt.Errorf("output target sqlite requires output.sqlite_path")
			}
		case "workbook":
			if c.Output.WorkbookPath == "" && c.Source.WorkbookPath == "" {
				return fmt.Errorf("output target workbook requires output.workbook_path")
			}
		case "gsheets":
			if c.Output.SpreadsheetID == "" && c.Source.SpreadsheetID == "" {
				return fmt.Errorf("output target gsheets requires output.spreadsheet_id")
			}
		}
	}

	if c.Logging.Output != "console" && c.Logging.FilePath == "" {
		return fmt.Errorf("logging output %s requires logging.file_path", c.Logging.Output)
	}

	return nil
}

// Location returns the configured report time zone.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Report.TimeZone)
}

// SheetNames returns the output sheet names in table order.
func (c *Config) SheetNames() []string {
	return []string{
		c.Output.SummarySheet,
		c.Output.TransitionsSheet,
		c.Output.CategoryReportSheet,
		c.Output.CounterSheet,
	}
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Source: SourceConfig{
			Kind:       "workbook",
			GanttSheet: DefaultGanttSheet,
			GanttRange: DefaultGanttRange,
			IDSheet:    DefaultIDSheet,
			IDRange:    DefaultIDRange,
		},
		Output: OutputConfig{
			Targets:             []string{"source"},
			SummarySheet:        DefaultSummarySheet,
			TransitionsSheet:    DefaultTransitionsSheet,
			CategoryReportSheet: DefaultCategoryReportSheet,
			CounterSheet:        DefaultCounterSheet,
		},
		Report: ReportConfig{
			TrackedCategories: []string{"קו", "מפלג"},
			TimeZone:          "Local",
		},
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    DefaultRunTimeout + 15*time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			RunTimeout:      DefaultRunTimeout,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     1,
				Burst:   5,
			},
		},
		Watch: WatchConfig{
			Debounce: DefaultWatchDebounce,
		},
		Logging: LoggingConfig{
			Level:    DefaultLogLevel,
			Format:   DefaultLogFormat,
			Output:   "console",
			FilePath: "logs/ganttreport.log",
		},
		Telemetry: TelemetryConfig{
			ServiceName: AppName,
			Tracing:     "none",
		},
	}
}

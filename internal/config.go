package internal

import (
	"fmt"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Config represents the full batch configuration.
type Config struct {
	App       AppConfig       `yaml:"app"`
	Scan      ScanConfig      `yaml:"scan"`
	Snapshots SnapshotsConfig `yaml:"snapshots"`
	Export    ExportConfig    `yaml:"export"`
}

// Validate validates the configuration. The scan target (file vs.
// directory) is checked at batch start instead, because it is usually
// supplied by flags on top of the loaded file.
func (c *Config) Validate() error {
	if err := c.Scan.Validate(); err != nil {
		return err
	}
	if err := c.Snapshots.Validate(); err != nil {
		return err
	}
	return c.Export.Validate()
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	// Quiet suppresses per-record console narration. The batch summary
	// is always printed.
	Quiet bool `yaml:"quiet"`
}

// ScanConfig selects what gets discovered and decoded.
type ScanConfig struct {
	// File processes a single trace file; Dir recursively processes a
	// root. Exactly one must be set when the batch runs.
	File string `yaml:"file"`
	Dir  string `yaml:"dir"`
	// Extension matched (case-insensitively) during discovery,
	// including the dot.
	Extension string   `yaml:"extension"`
	Keywords  []string `yaml:"keywords"`
	// Dedup suppresses candidates whose content hash was already seen.
	Dedup bool `yaml:"dedup"`
}

// Validate validates the scan configuration.
func (c *ScanConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Extension, validation.Required),
	); err != nil {
		return err
	}
	if !strings.HasPrefix(c.Extension, ".") {
		return fmt.Errorf("scan: extension must include the leading dot: %q", c.Extension)
	}
	return nil
}

// SnapshotsConfig controls point-in-time snapshot correlation.
type SnapshotsConfig struct {
	Enabled bool `yaml:"enabled"`
	// Qualifier is the volume prefix live paths are relative to.
	Qualifier string `yaml:"qualifier"`
	// MountRoot is where a privileged mounter exposes snapshots.
	// Ignored by the default pre-mounted setup.
	MountRoot string `yaml:"mount_root"`
	// Roots lists pre-mounted snapshot directories, in mount order.
	Roots []string `yaml:"roots"`
}

// Validate validates the snapshot configuration.
func (c *SnapshotsConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Qualifier, validation.Required),
		validation.Field(&c.Roots, validation.Required),
	)
}

// ExportConfig enumerates active sinks. Empty names disable a sink.
type ExportConfig struct {
	Dir         string `yaml:"dir"`
	CSV         string `yaml:"csv"`
	TimelineCSV string `yaml:"timeline_csv"`
	JSONL       string `yaml:"jsonl"`
	XHTML       string `yaml:"xhtml"`
	SQLitePath  string `yaml:"sqlite_path"`
	// TimeLayout is a Go time layout for operator-facing timestamps.
	TimeLayout string `yaml:"time_layout"`
}

// Validate validates the export configuration.
func (c *ExportConfig) Validate() error {
	anyFile := c.CSV != "" || c.TimelineCSV != "" || c.JSONL != "" || c.XHTML != ""
	if anyFile && c.Dir == "" {
		return fmt.Errorf("export: dir is required when a file sink is configured")
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.TimeLayout, validation.Required),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: AppConfig{
			LogLevel: slog.LevelInfo,
		},
		Scan: ScanConfig{
			Extension: ".pf",
			Dedup:     true,
		},
		Snapshots: SnapshotsConfig{
			Qualifier: "/",
		},
		Export: ExportConfig{
			Dir:         "./reports",
			CSV:         "artifacts.csv",
			TimelineCSV: "timeline.csv",
			JSONL:       "artifacts.jsonl",
			XHTML:       "artifacts.xhtml",
			TimeLayout:  "2006-01-02 15:04:05",
		},
	}
}

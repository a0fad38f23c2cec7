package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and file location configuration.
type Paths struct {
	InboxDir     string `toml:"inbox_dir"`
	WorkspaceDir string `toml:"workspace_dir"`
	DatabaseDir  string `toml:"database_dir"`
	LogDir       string `toml:"log_dir"`
	RosterPath   string `toml:"roster_path"`
}

// Monitor contains daemon timing and threshold configuration. Deadline
// and UrgentAfter are local wall-clock times in HH:MM form.
type Monitor struct {
	StatusInterval   int    `toml:"status_interval_seconds"`
	Deadline         string `toml:"deadline"`
	UrgentAfter      string `toml:"urgent_after"`
	UrgentRemaining  int    `toml:"urgent_remaining"`
	EventBuffer      int    `toml:"event_buffer"`
	StabilizeMS      int    `toml:"stabilize_interval_ms"`
	StabilizeChecks  int    `toml:"stabilize_checks"`
	ReminderInterval int    `toml:"reminder_interval_seconds"`
}

// Matching contains identity matching configuration.
type Matching struct {
	FuzzyThreshold float64  `toml:"fuzzy_threshold"`
	PrefixBias     float64  `toml:"prefix_bias"`
	LookbackDays   int      `toml:"lookback_days"`
	ForwardDays    int      `toml:"forward_days"`
	Extensions     []string `toml:"extensions"`
	SearchWorkers  int      `toml:"search_workers"`
}

// Category defines one tracked deliverable kind.
type Category struct {
	Name        string   `toml:"name"`
	Keywords    []string `toml:"keywords"`
	Suffix      string   `toml:"suffix"`
	DirName     string   `toml:"dir_name"`
	FutureDated bool     `toml:"future_dated"`
}

// Notifications contains ntfy push notification settings.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Logging contains log output configuration.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for mapwatch.
type Config struct {
	Paths         Paths         `toml:"paths"`
	Monitor       Monitor       `toml:"monitor"`
	Matching      Matching      `toml:"matching"`
	Categories    []Category    `toml:"category"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default
// configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/mapwatch/config.toml")
}

// Load locates, parses, and validates a configuration file. The
// returned config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs("mapwatch.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for daemon operation.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.InboxDir, c.Paths.WorkspaceDir, c.Paths.DatabaseDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// StatusInterval returns the status tick as a duration.
func (c *Config) StatusInterval() time.Duration {
	return time.Duration(c.Monitor.StatusInterval) * time.Second
}

// ReminderInterval returns the urgent-reminder tick as a duration.
func (c *Config) ReminderInterval() time.Duration {
	return time.Duration(c.Monitor.ReminderInterval) * time.Second
}

// StabilizeInterval returns the inbox stabilization poll as a duration.
func (c *Config) StabilizeInterval() time.Duration {
	return time.Duration(c.Monitor.StabilizeMS) * time.Millisecond
}

// NotificationTimeout returns the ntfy request timeout as a duration.
func (c *Config) NotificationTimeout() time.Duration {
	return time.Duration(c.Notifications.RequestTimeout) * time.Second
}

// DeadlineFor places the configured deadline wall-clock on the given
// day, in the day's location.
func (c *Config) DeadlineFor(day time.Time) time.Time {
	h, m, _ := parseClock(c.Monitor.Deadline)
	return time.Date(day.Year(), day.Month(), day.Day(), h, m, 0, 0, day.Location())
}

// UrgentAfterFor places the configured urgent-mode wall-clock on the
// given day.
func (c *Config) UrgentAfterFor(day time.Time) time.Time {
	h, m, _ := parseClock(c.Monitor.UrgentAfter)
	return time.Date(day.Year(), day.Month(), day.Day(), h, m, 0, 0, day.Location())
}

func parseClock(value string) (hour, minute int, err error) {
	parts := strings.SplitN(strings.TrimSpace(value), ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("clock time %q must be HH:MM", value)
	}
	if _, err := fmt.Sscanf(parts[0], "%d", &hour); err != nil {
		return 0, 0, fmt.Errorf("clock time %q must be HH:MM", value)
	}
	if _, err := fmt.Sscanf(parts[1], "%d", &minute); err != nil {
		return 0, 0, fmt.Errorf("clock time %q must be HH:MM", value)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("clock time %q out of range", value)
	}
	return hour, minute, nil
}

// CreateSample writes a sample configuration file to the specified
// location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other
// packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

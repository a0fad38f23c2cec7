package testsupport

import (
	"path/filepath"
	"testing"

	"mapwatch/internal/config"
)

// ConfigOption allows callers to customize the generated test
// configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per
// test. It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.InboxDir = filepath.Join(base, "inbox")
	cfgVal.Paths.WorkspaceDir = filepath.Join(base, "archive")
	cfgVal.Paths.DatabaseDir = filepath.Join(base, "db")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.RosterPath = filepath.Join(base, "roster.toml")
	cfgVal.Monitor.StabilizeMS = 1
	cfgVal.Monitor.StabilizeChecks = 3

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithFuzzyThreshold overrides the fuzzy matching threshold.
func WithFuzzyThreshold(threshold float64) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Matching.FuzzyThreshold = threshold
	}
}

// WithCategories replaces the tracked categories.
func WithCategories(cats ...config.Category) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Categories = cats
	}
}

// WithNtfyTopic points notifications at a test server.
func WithNtfyTopic(topic string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Notifications.NtfyTopic = topic
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.InboxDir)
}

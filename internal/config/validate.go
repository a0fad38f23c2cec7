package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable. The first problem found
// is returned so startup fails fast with a single actionable message.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateMonitor(); err != nil {
		return err
	}
	if err := c.validateMatching(); err != nil {
		return err
	}
	if err := c.validateCategories(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if c.Paths.InboxDir == "" {
		return errors.New("paths.inbox_dir must be set")
	}
	if c.Paths.WorkspaceDir == "" {
		return errors.New("paths.workspace_dir must be set")
	}
	if c.Paths.InboxDir == c.Paths.WorkspaceDir {
		return errors.New("paths.inbox_dir and paths.workspace_dir must differ")
	}
	if c.Paths.RosterPath == "" {
		return errors.New("paths.roster_path must be set")
	}
	return nil
}

func (c *Config) validateMonitor() error {
	if c.Monitor.StatusInterval <= 0 {
		return errors.New("monitor.status_interval_seconds must be positive")
	}
	if _, _, err := parseClock(c.Monitor.Deadline); err != nil {
		return fmt.Errorf("monitor.deadline: %w", err)
	}
	if _, _, err := parseClock(c.Monitor.UrgentAfter); err != nil {
		return fmt.Errorf("monitor.urgent_after: %w", err)
	}
	if c.Monitor.UrgentRemaining < 0 {
		return errors.New("monitor.urgent_remaining must not be negative")
	}
	if c.Monitor.EventBuffer <= 0 {
		return errors.New("monitor.event_buffer must be positive")
	}
	if c.Monitor.StabilizeChecks <= 0 {
		return errors.New("monitor.stabilize_checks must be positive")
	}
	return nil
}

func (c *Config) validateMatching() error {
	if c.Matching.FuzzyThreshold <= 0 || c.Matching.FuzzyThreshold > 1 {
		return errors.New("matching.fuzzy_threshold must be within (0, 1]")
	}
	if c.Matching.PrefixBias < 0 || c.Matching.PrefixBias > 1 {
		return errors.New("matching.prefix_bias must be within [0, 1]")
	}
	if c.Matching.LookbackDays <= 0 {
		return errors.New("matching.lookback_days must be positive")
	}
	if c.Matching.ForwardDays <= 0 {
		return errors.New("matching.forward_days must be positive")
	}
	if len(c.Matching.Extensions) == 0 {
		return errors.New("matching.extensions must list at least one extension")
	}
	if c.Matching.SearchWorkers <= 0 {
		return errors.New("matching.search_workers must be positive")
	}
	return nil
}

func (c *Config) validateCategories() error {
	if len(c.Categories) == 0 {
		return errors.New("at least one [[category]] must be defined")
	}
	seen := make(map[string]struct{}, len(c.Categories))
	for i, cat := range c.Categories {
		label := fmt.Sprintf("category %d", i+1)
		if strings.TrimSpace(cat.Name) != "" {
			label = fmt.Sprintf("category %q", cat.Name)
		}
		if strings.TrimSpace(cat.Name) == "" {
			return fmt.Errorf("%s: name must be set", label)
		}
		if _, dup := seen[cat.Name]; dup {
			return fmt.Errorf("%s: name duplicated", label)
		}
		seen[cat.Name] = struct{}{}
		if len(cat.Keywords) == 0 {
			return fmt.Errorf("%s: keywords must list at least one entry", label)
		}
		if strings.TrimSpace(cat.Suffix) == "" {
			return fmt.Errorf("%s: suffix must be set", label)
		}
		if strings.TrimSpace(cat.DirName) == "" {
			return fmt.Errorf("%s: dir_name must be set", label)
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format %q must be console or json", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q must be debug, info, warn, or error", c.Logging.Level)
	}
	return nil
}

package main

import (
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"mapwatch/internal/config"
	"mapwatch/internal/resolve"
	"mapwatch/internal/roster"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// newResolver loads the roster and builds a resolver from the effective
// configuration. Used by the commands that classify filenames offline.
func (c *commandContext) newResolver() (*resolve.Resolver, *roster.Roster, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	unitRoster, err := roster.Load(cfg.Paths.RosterPath)
	if err != nil {
		return nil, nil, err
	}
	resolver, err := resolve.New(unitRoster, resolve.Options{
		Threshold:   cfg.Matching.FuzzyThreshold,
		PrefixBias:  cfg.Matching.PrefixBias,
		Extensions:  cfg.Matching.Extensions,
		ForwardDays: cfg.Matching.ForwardDays,
		Categories:  categoriesFromConfig(cfg),
	})
	if err != nil {
		return nil, nil, err
	}
	return resolver, unitRoster, nil
}

func categoriesFromConfig(cfg *config.Config) []resolve.Category {
	out := make([]resolve.Category, 0, len(cfg.Categories))
	for _, cat := range cfg.Categories {
		out = append(out, resolve.Category{
			Name:        cat.Name,
			Keywords:    append([]string(nil), cat.Keywords...),
			Suffix:      cat.Suffix,
			DirName:     cat.DirName,
			FutureDated: cat.FutureDated,
		})
	}
	return out
}

func categoryByName(categories []resolve.Category, name string) (resolve.Category, bool) {
	for _, cat := range categories {
		if cat.Name == name {
			return cat, true
		}
	}
	return resolve.Category{}, false
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for current := cmd; current != nil; current = current.Parent() {
		if current.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

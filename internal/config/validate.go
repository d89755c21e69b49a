package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks the configuration for values that cannot work at runtime.
func (c *Config) Validate() error {
	var problems []string

	if strings.TrimSpace(c.Paths.CatalogDir) == "" {
		problems = append(problems, "paths.catalog_dir must not be empty")
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		problems = append(problems, "paths.log_dir must not be empty")
	}
	if c.Autosave.DebounceMS < 100 {
		problems = append(problems, fmt.Sprintf("autosave.debounce_ms %d is below the 100ms floor", c.Autosave.DebounceMS))
	}
	if c.History.MaxDepth < 1 {
		problems = append(problems, "history.max_depth must be at least 1")
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		problems = append(problems, fmt.Sprintf("logging.format %q is not one of console, json", c.Logging.Format))
	}

	if len(problems) > 0 {
		return errors.New("invalid configuration: " + strings.Join(problems, "; "))
	}
	return nil
}

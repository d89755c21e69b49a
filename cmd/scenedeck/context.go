package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"scenedeck/internal/config"
	"scenedeck/internal/logging"
	"scenedeck/internal/session"
	"scenedeck/internal/vault"
)

type commandContext struct {
	configFlag *string
	vaultFlag  *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
}

func newCommandContext(configFlag, vaultFlag *string) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		vaultFlag:  vaultFlag,
	}
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
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() *slog.Logger {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		logger, err := logging.New(logging.Options{
			Level:  cfg.Logging.Level,
			Format: cfg.Logging.Format,
		})
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		c.logger = logger
	})
	return c.logger
}

// vaultRoot resolves the vault the command operates on: the --vault flag
// when set, otherwise the current directory when it looks like a vault.
func (c *commandContext) vaultRoot() (string, error) {
	if c.vaultFlag != nil && strings.TrimSpace(*c.vaultFlag) != "" {
		return config.ExpandPath(strings.TrimSpace(*c.vaultFlag))
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("resolve working directory: %w", err)
	}
	if _, err := vault.Validate(cwd); err != nil {
		return "", fmt.Errorf("%s is not a vault (use --vault to point at one): %w", cwd, err)
	}
	return cwd, nil
}

// withSession opens the vault for the duration of fn and closes it after.
func (c *commandContext) withSession(ctx context.Context, fn func(*session.Session) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	root, err := c.vaultRoot()
	if err != nil {
		return err
	}
	s, err := session.Open(ctx, cfg, root, c.ensureLogger(), session.Options{})
	if err != nil {
		return err
	}
	defer func() {
		_ = s.Close(ctx)
	}()
	return fn(s)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}

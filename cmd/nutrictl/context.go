package main

import (
	"context"
	"strings"

	"stealthcompany.com/nutrireg/internal/app"
	"stealthcompany.com/nutrireg/internal/config"
)

type commandContext struct {
	configFlag  string
	storageFlag string
	sqliteFlag  string
	ocrFlag     string
	jsonFlag    bool
	verboseFlag bool

	config *config.Config
	app    *app.App
}

func (c *commandContext) overrides(cfg *config.Config) {
	if v := strings.TrimSpace(c.storageFlag); v != "" {
		cfg.Storage.Backend = v
	}
	if v := strings.TrimSpace(c.sqliteFlag); v != "" {
		cfg.Storage.SQLite.Path = v
	}
	if v := strings.TrimSpace(c.ocrFlag); v != "" {
		cfg.OCR.Backend = v
	}
	// Keep the terminal for command output
	cfg.Logging.Level = "warn"
	if c.verboseFlag {
		cfg.Logging.Level = "debug"
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	if c.config != nil {
		return c.config, nil
	}
	cfg, err := config.Load(strings.TrimSpace(c.configFlag), c.overrides)
	if err != nil {
		return nil, err
	}
	if err := app.StartLogging("nutrictl", cfg.Logging); err != nil {
		return nil, err
	}
	c.config = cfg
	return cfg, nil
}

func (c *commandContext) ensureApp(ctx context.Context) (*app.App, error) {
	if c.app != nil {
		return c.app, nil
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	a, err := app.New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	c.app = a
	return a, nil
}

func (c *commandContext) close() error {
	if c.app == nil {
		return nil
	}
	err := c.app.Close()
	c.app = nil
	return err
}

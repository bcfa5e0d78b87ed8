package config

import (
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateTelegram(); err != nil {
		return err
	}
	if err := c.validateStorage(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateTelegram() error {
	if c.Telegram.BotToken == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/onboardbot/config.toml"
		}
		return fmt.Errorf("telegram.bot_token is required. Edit %s (create with 'onboardd config init')", defaultPath)
	}
	if !strings.HasPrefix(c.Telegram.APIBaseURL, "http://") && !strings.HasPrefix(c.Telegram.APIBaseURL, "https://") {
		return fmt.Errorf("telegram.api_base_url must be an http(s) URL, got %q", c.Telegram.APIBaseURL)
	}
	return nil
}

func (c *Config) validateStorage() error {
	if c.Storage.Bucket == "" {
		return fmt.Errorf("storage.bucket is required")
	}
	if c.Storage.MoveRetryAttempts > 10 {
		return fmt.Errorf("storage.move_retry_attempts must be at most 10, got %d", c.Storage.MoveRetryAttempts)
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if c.Workflow.Lanes > 256 {
		return fmt.Errorf("workflow.lanes must be at most 256, got %d", c.Workflow.Lanes)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "auto", "console", "json":
	default:
		return fmt.Errorf("logging.format must be auto, console, or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}

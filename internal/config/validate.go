package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateBuckets(); err != nil {
		return err
	}
	if err := c.validateSchedule(); err != nil {
		return err
	}
	if err := c.validatePipeline(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateBuckets() error {
	required := []struct {
		key   string
		value string
	}{
		{"buckets.assets", c.Buckets.Assets},
		{"buckets.long_videos", c.Buckets.LongVideos},
		{"buckets.shorts_reels", c.Buckets.ShortsReels},
		{"buckets.config", c.Buckets.Config},
	}
	for _, entry := range required {
		if strings.TrimSpace(entry.value) == "" {
			defaultPath, err := DefaultConfigPath()
			if err != nil {
				defaultPath = "~/.config/autopost/config.toml"
			}
			return fmt.Errorf("%s is required. Edit %s (create with 'autopost config init')", entry.key, defaultPath)
		}
	}
	return nil
}

func (c *Config) validateSchedule() error {
	if c.Schedule.Hour < 0 || c.Schedule.Hour > 23 {
		return errors.New("schedule.hour must be between 0 and 23")
	}
	if c.Schedule.Minute < 0 || c.Schedule.Minute > 59 {
		return errors.New("schedule.minute must be between 0 and 59")
	}
	return nil
}

func (c *Config) validatePipeline() error {
	if c.Pipeline.SourcePrefix == c.Pipeline.DestPrefix {
		return errors.New("pipeline.source_prefix and pipeline.dest_prefix must differ, otherwise published renditions are rediscovered as sources")
	}
	if c.Pipeline.TransformTimeout <= 0 {
		return errors.New("pipeline.transform_timeout must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}

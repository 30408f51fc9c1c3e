package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeBuckets()
	c.normalizePipeline()
	c.normalizeFFmpeg()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.WorkRoot, err = expandPath(c.Paths.WorkRoot); err != nil {
		return fmt.Errorf("paths.work_root: %w", err)
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	return nil
}

func (c *Config) normalizeBuckets() {
	c.Buckets.Assets = strings.TrimSpace(c.Buckets.Assets)
	c.Buckets.LongVideos = strings.TrimSpace(c.Buckets.LongVideos)
	c.Buckets.ShortsReels = strings.TrimSpace(c.Buckets.ShortsReels)
	c.Buckets.Config = strings.TrimSpace(c.Buckets.Config)
	c.Buckets.Region = strings.TrimSpace(c.Buckets.Region)
	c.Buckets.Endpoint = strings.TrimSpace(c.Buckets.Endpoint)
	if c.Buckets.Region == "" {
		if value, ok := os.LookupEnv("AWS_REGION"); ok {
			c.Buckets.Region = strings.TrimSpace(value)
		}
	}
	// The config role defaults to the assets bucket, matching the original
	// deployment where both lived in one static bucket.
	if c.Buckets.Config == "" {
		c.Buckets.Config = c.Buckets.Assets
	}
}

func (c *Config) normalizePipeline() {
	c.Pipeline.SourcePrefix = normalizePrefix(c.Pipeline.SourcePrefix, defaultSourcePrefix)
	c.Pipeline.DestPrefix = normalizePrefix(c.Pipeline.DestPrefix, defaultDestPrefix)
	if c.Pipeline.TransformTimeout <= 0 {
		c.Pipeline.TransformTimeout = defaultTransformTimeout
	}
	if c.Pipeline.MaxAssetsPerRun < 0 {
		c.Pipeline.MaxAssetsPerRun = 0
	}
}

func (c *Config) normalizeFFmpeg() {
	if strings.TrimSpace(c.FFmpeg.Binary) == "" {
		c.FFmpeg.Binary = defaultFFmpegBinary
	}
	if strings.TrimSpace(c.FFmpeg.ProbeBinary) == "" {
		c.FFmpeg.ProbeBinary = defaultProbeBinary
	}
	if c.FFmpeg.ShortWidth <= 0 {
		c.FFmpeg.ShortWidth = defaultShortWidth
	}
	if c.FFmpeg.ShortHeight <= 0 {
		c.FFmpeg.ShortHeight = defaultShortHeight
	}
	if strings.TrimSpace(c.FFmpeg.VideoCodec) == "" {
		c.FFmpeg.VideoCodec = defaultVideoCodec
	}
	if strings.TrimSpace(c.FFmpeg.AudioCodec) == "" {
		c.FFmpeg.AudioCodec = defaultAudioCodec
	}
	if strings.TrimSpace(c.FFmpeg.Preset) == "" {
		c.FFmpeg.Preset = defaultPreset
	}
	if c.FFmpeg.CRF <= 0 {
		c.FFmpeg.CRF = defaultCRF
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func normalizePrefix(value, fallback string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		value = fallback
	}
	value = strings.TrimPrefix(value, "/")
	if value != "" && !strings.HasSuffix(value, "/") {
		value += "/"
	}
	return value
}

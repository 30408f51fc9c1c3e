package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and bind address configuration.
type Paths struct {
	WorkRoot string `toml:"work_root"`
	StateDir string `toml:"state_dir"`
	LogDir   string `toml:"log_dir"`
	APIBind  string `toml:"api_bind"`
	APIToken string `toml:"api_token"`
}

// Buckets maps logical storage roles to physical bucket names. The mapping
// is loaded once at process start and treated as immutable afterwards.
type Buckets struct {
	Assets      string `toml:"assets"`
	LongVideos  string `toml:"long_videos"`
	ShortsReels string `toml:"shorts_reels"`
	Config      string `toml:"config"`
	Region      string `toml:"region"`
	// Endpoint overrides the S3 endpoint, for S3-compatible stores.
	Endpoint string `toml:"endpoint"`
}

// Schedule contains the daily fire time for the scheduled run.
type Schedule struct {
	Hour   int `toml:"hour"`
	Minute int `toml:"minute"`
}

// Pipeline contains settings for one publishing run.
type Pipeline struct {
	SourcePrefix string `toml:"source_prefix"`
	DestPrefix   string `toml:"dest_prefix"`
	// TransformTimeout bounds a single ffmpeg invocation, in seconds.
	TransformTimeout int `toml:"transform_timeout"`
	// MaxAssetsPerRun caps how many assets one run processes. Zero means
	// no cap.
	MaxAssetsPerRun int `toml:"max_assets_per_run"`
}

// FFmpeg contains configuration for the external media tool.
type FFmpeg struct {
	Binary      string `toml:"binary"`
	ProbeBinary string `toml:"probe_binary"`
	ShortWidth  int    `toml:"short_width"`
	ShortHeight int    `toml:"short_height"`
	VideoCodec  string `toml:"video_codec"`
	AudioCodec  string `toml:"audio_codec"`
	Preset      string `toml:"preset"`
	CRF         int    `toml:"crf"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for autopost.
//
// Configuration sections by subsystem:
//   - Paths: working directories, state, logs, API bind address
//   - Buckets: logical role to bucket name mapping
//   - Schedule: daily UTC fire time
//   - Pipeline: per-run prefixes, caps, and timeouts
//   - FFmpeg: external tool binaries and rendition parameters
//   - Logging: log format and level
type Config struct {
	Paths    Paths    `toml:"paths"`
	Buckets  Buckets  `toml:"buckets"`
	Schedule Schedule `toml:"schedule"`
	Pipeline Pipeline `toml:"pipeline"`
	FFmpeg   FFmpeg   `toml:"ffmpeg"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/autopost/config.toml")
}

// SampleConfig returns the embedded sample configuration document.
func SampleConfig() string {
	return sampleConfig
}

// ExpandPath expands a leading ~ and returns an absolute, cleaned path.
func ExpandPath(path string) (string, error) {
	return expandPath(path)
}

// CreateSample writes the embedded sample configuration to the target path.
func CreateSample(target string) error {
	if err := os.WriteFile(target, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. The boolean reports
// whether the file existed.
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

	if env := strings.TrimSpace(os.Getenv("AUTOPOST_CONFIG")); env != "" {
		return resolveConfigPath(env)
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs("autopost.toml")
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
	for _, dir := range []string{c.Paths.WorkRoot, c.Paths.StateDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
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

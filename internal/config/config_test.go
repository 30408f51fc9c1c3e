package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"autopost/internal/config"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadParsesFile(t *testing.T) {
	path := writeConfig(t, `
[paths]
work_root = "~/autopost-work"
api_bind = "127.0.0.1:9000"

[buckets]
assets = "brand-assets"
long_videos = "brand-long"
shorts_reels = "brand-shorts"
region = "eu-west-1"

[pipeline]
source_prefix = "raw"
dest_prefix = "/done/"

[schedule]
hour = 9
minute = 30
`)

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to exist")
	}
	if resolved != path {
		t.Fatalf("resolved path = %q, want %q", resolved, path)
	}
	if cfg.Buckets.LongVideos != "brand-long" {
		t.Fatalf("long_videos bucket = %q", cfg.Buckets.LongVideos)
	}
	if cfg.Buckets.Config != "brand-assets" {
		t.Fatalf("config bucket should default to assets bucket, got %q", cfg.Buckets.Config)
	}
	if cfg.Pipeline.SourcePrefix != "raw/" {
		t.Fatalf("source prefix = %q, want %q", cfg.Pipeline.SourcePrefix, "raw/")
	}
	if cfg.Pipeline.DestPrefix != "done/" {
		t.Fatalf("dest prefix = %q, want %q", cfg.Pipeline.DestPrefix, "done/")
	}
	if cfg.Schedule.Hour != 9 || cfg.Schedule.Minute != 30 {
		t.Fatalf("schedule = %02d:%02d", cfg.Schedule.Hour, cfg.Schedule.Minute)
	}
	if cfg.Paths.APIBind != "127.0.0.1:9000" {
		t.Fatalf("api bind = %q", cfg.Paths.APIBind)
	}
	if !filepath.IsAbs(cfg.Paths.WorkRoot) {
		t.Fatalf("work root not expanded: %q", cfg.Paths.WorkRoot)
	}
}

func TestLoadRequiresBuckets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.toml")
	_, _, _, err := config.Load(path)
	if err == nil {
		t.Fatal("expected error for missing bucket configuration")
	}
	if !strings.Contains(err.Error(), "buckets.assets") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadRejectsMatchingPrefixes(t *testing.T) {
	path := writeConfig(t, `
[buckets]
assets = "a"
long_videos = "b"
shorts_reels = "c"

[pipeline]
source_prefix = "media/"
dest_prefix = "media/"
`)
	_, _, _, err := config.Load(path)
	if err == nil || !strings.Contains(err.Error(), "must differ") {
		t.Fatalf("expected prefix conflict error, got %v", err)
	}
}

func TestLoadRejectsBadSchedule(t *testing.T) {
	path := writeConfig(t, `
[buckets]
assets = "a"
long_videos = "b"
shorts_reels = "c"

[schedule]
hour = 24
`)
	_, _, _, err := config.Load(path)
	if err == nil || !strings.Contains(err.Error(), "schedule.hour") {
		t.Fatalf("expected schedule error, got %v", err)
	}
}

func TestSampleConfigParsesButNeedsBuckets(t *testing.T) {
	path := writeConfig(t, config.SampleConfig())
	_, _, _, err := config.Load(path)
	if err == nil || !strings.Contains(err.Error(), "buckets.assets") {
		t.Fatalf("sample config should parse and then demand bucket names, got %v", err)
	}
}

package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"autopost/internal/config"
)

var commandContext = exec.CommandContext

// Profile selects the rendition an input is transformed into.
type Profile string

const (
	// ProfileLong remuxes long-form content without re-encoding.
	ProfileLong Profile = "long"
	// ProfileShort produces a vertical 9:16 rendition for shorts/reels.
	ProfileShort Profile = "short"
)

// Transformer converts one downloaded source into a rendition file.
type Transformer interface {
	Transform(ctx context.Context, inputPath, outputDir string, profile Profile) (string, error)
}

// Option configures the CLI client.
type Option func(*CLI)

// WithBinary overrides the default ffmpeg binary name.
func WithBinary(binary string) Option {
	return func(c *CLI) {
		if binary != "" {
			c.binary = binary
		}
	}
}

// WithProbeBinary overrides the default ffprobe binary name.
func WithProbeBinary(binary string) Option {
	return func(c *CLI) {
		if binary != "" {
			c.probeBinary = binary
		}
	}
}

// WithTimeout bounds each transform invocation.
func WithTimeout(timeout time.Duration) Option {
	return func(c *CLI) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// CLI wraps the ffmpeg command-line tool.
type CLI struct {
	binary      string
	probeBinary string
	timeout     time.Duration

	shortWidth  int
	shortHeight int
	videoCodec  string
	audioCodec  string
	preset      string
	crf         int
}

// NewCLI constructs a CLI client using defaults.
func NewCLI(opts ...Option) *CLI {
	cli := &CLI{
		binary:      "ffmpeg",
		probeBinary: "ffprobe",
		timeout:     10 * time.Minute,
		shortWidth:  1080,
		shortHeight: 1920,
		videoCodec:  "libx264",
		audioCodec:  "aac",
		preset:      "veryfast",
		crf:         23,
	}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// NewCLIFromConfig constructs a CLI client from application configuration.
func NewCLIFromConfig(cfg *config.Config) *CLI {
	cli := NewCLI(
		WithBinary(cfg.FFmpeg.Binary),
		WithProbeBinary(cfg.FFmpeg.ProbeBinary),
		WithTimeout(time.Duration(cfg.Pipeline.TransformTimeout)*time.Second),
	)
	cli.shortWidth = cfg.FFmpeg.ShortWidth
	cli.shortHeight = cfg.FFmpeg.ShortHeight
	cli.videoCodec = cfg.FFmpeg.VideoCodec
	cli.audioCodec = cfg.FFmpeg.AudioCodec
	cli.preset = cfg.FFmpeg.Preset
	cli.crf = cfg.FFmpeg.CRF
	return cli
}

// Transform runs ffmpeg against inputPath and returns the produced file in
// outputDir. A non-zero exit, a timeout, or a missing output file is
// reported as an error; the caller treats these as per-asset failures.
func (c *CLI) Transform(ctx context.Context, inputPath, outputDir string, profile Profile) (string, error) {
	if strings.TrimSpace(inputPath) == "" {
		return "", errors.New("input path required")
	}
	if strings.TrimSpace(outputDir) == "" {
		return "", errors.New("output directory required")
	}

	base := filepath.Base(inputPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" {
		stem = base
	}
	outputPath := filepath.Join(outputDir, stem+".mp4")

	args, err := c.buildArgs(ctx, inputPath, outputPath, profile)
	if err != nil {
		return "", err
	}

	runCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	cmd := commandContext(runCtx, c.binary, args...) //nolint:gosec
	output, err := cmd.CombinedOutput()
	if err != nil {
		if runCtx.Err() == context.DeadlineExceeded {
			return "", fmt.Errorf("ffmpeg timed out after %s", c.timeout)
		}
		return "", fmt.Errorf("ffmpeg transform failed: %w: %s", err, tail(string(output), 400))
	}

	info, err := os.Stat(outputPath)
	if err != nil {
		return "", fmt.Errorf("ffmpeg produced no output at %s: %w", outputPath, err)
	}
	if info.Size() == 0 {
		return "", fmt.Errorf("ffmpeg produced empty output at %s", outputPath)
	}
	return outputPath, nil
}

func (c *CLI) buildArgs(ctx context.Context, inputPath, outputPath string, profile Profile) ([]string, error) {
	args := []string{"-hide_banner", "-y", "-i", inputPath}

	switch profile {
	case ProfileLong:
		args = append(args, "-c", "copy", "-movflags", "+faststart")
	case ProfileShort:
		filter := c.verticalFilter(ctx, inputPath)
		args = append(args,
			"-vf", filter,
			"-c:v", c.videoCodec,
			"-preset", c.preset,
			"-crf", strconv.Itoa(c.crf),
			"-c:a", c.audioCodec,
			"-movflags", "+faststart",
		)
	default:
		return nil, fmt.Errorf("unknown transform profile %q", profile)
	}

	return append(args, outputPath), nil
}

// verticalFilter picks between cropping and padding based on the source
// aspect ratio. Probe failures fall back to scale-and-pad, which is safe
// for any input geometry.
func (c *CLI) verticalFilter(ctx context.Context, inputPath string) string {
	w, h := c.shortWidth, c.shortHeight
	padded := fmt.Sprintf(
		"scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2:black",
		w, h, w, h,
	)

	result, err := Probe(ctx, c.probeBinary, inputPath)
	if err != nil {
		return padded
	}
	srcW, srcH := result.Dimensions()
	if srcW <= 0 || srcH <= 0 {
		return padded
	}
	// Already taller than the target ratio: crop the excess instead of
	// shrinking the subject behind letterbox bars.
	if srcW*h <= srcH*w {
		return fmt.Sprintf("scale=%d:-2,crop=%d:%d", w, w, h)
	}
	return padded
}

func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n:]
}

var _ Transformer = (*CLI)(nil)

package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"autopost/internal/testsupport"
)

func TestNewCLIWithBinary(t *testing.T) {
	cli := NewCLI(WithBinary("/opt/ffmpeg"), WithProbeBinary("/opt/ffprobe"), WithTimeout(time.Minute))
	if cli.binary != "/opt/ffmpeg" {
		t.Fatalf("expected binary override to be applied, got %q", cli.binary)
	}
	if cli.probeBinary != "/opt/ffprobe" {
		t.Fatalf("expected probe binary override to be applied, got %q", cli.probeBinary)
	}
	if cli.timeout != time.Minute {
		t.Fatalf("expected timeout override to be applied, got %s", cli.timeout)
	}
}

func TestTransformRequiresInput(t *testing.T) {
	cli := NewCLI()
	if _, err := cli.Transform(context.Background(), "", t.TempDir(), ProfileLong); err == nil {
		t.Fatal("expected error when input path is empty")
	}
}

func TestTransformRequiresOutputDir(t *testing.T) {
	cli := NewCLI()
	if _, err := cli.Transform(context.Background(), "/media/clip.mp4", "", ProfileLong); err == nil {
		t.Fatal("expected error when output directory is empty")
	}
}

func TestTransformRejectsUnknownProfile(t *testing.T) {
	cli := NewCLI()
	if _, err := cli.Transform(context.Background(), "/media/clip.mp4", t.TempDir(), Profile("square")); err == nil {
		t.Fatal("expected error for unknown profile")
	}
}

func TestTransformLongRemuxes(t *testing.T) {
	args := setHelperCommand(t, "success")

	cli := NewCLI()
	outputDir := t.TempDir()
	output, err := cli.Transform(context.Background(), "/media/episode.mkv", outputDir, ProfileLong)
	if err != nil {
		t.Fatalf("Transform returned error: %v", err)
	}
	if output != filepath.Join(outputDir, "episode.mp4") {
		t.Fatalf("unexpected output path %q", output)
	}

	captured := *args
	if findArg(captured, "-c") == -1 || findArg(captured, "copy") == -1 {
		t.Fatalf("long profile should stream-copy, got args %v", captured)
	}
	if findArg(captured, "-crf") != -1 {
		t.Fatalf("long profile should not re-encode, got args %v", captured)
	}
	if captured[len(captured)-1] != output {
		t.Fatalf("output path should be the final argument, got %v", captured)
	}
}

func TestTransformShortFallsBackToPadFilter(t *testing.T) {
	args := setHelperCommand(t, "success")

	// The probe binary does not exist, so filter selection falls back to
	// scale-and-pad.
	cli := NewCLI(WithProbeBinary(filepath.Join(t.TempDir(), "missing-ffprobe")))
	if _, err := cli.Transform(context.Background(), "/media/clip.mov", t.TempDir(), ProfileShort); err != nil {
		t.Fatalf("Transform returned error: %v", err)
	}

	captured := *args
	idx := findArg(captured, "-vf")
	if idx == -1 || idx+1 >= len(captured) {
		t.Fatalf("short profile should set a video filter, got args %v", captured)
	}
	filter := captured[idx+1]
	if !strings.Contains(filter, "pad=1080:1920") {
		t.Fatalf("expected pad fallback filter, got %q", filter)
	}
	if findArg(captured, "-crf") == -1 || findArg(captured, "libx264") == -1 {
		t.Fatalf("short profile should re-encode, got args %v", captured)
	}
}

func TestTransformReportsFailure(t *testing.T) {
	setHelperCommand(t, "failure")

	cli := NewCLI()
	_, err := cli.Transform(context.Background(), "/media/clip.mp4", t.TempDir(), ProfileLong)
	if err == nil {
		t.Fatal("expected error from failing ffmpeg")
	}
	if !strings.Contains(err.Error(), "ffmpeg transform failed") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestTransformRejectsMissingOutput(t *testing.T) {
	setHelperCommand(t, "silent")

	cli := NewCLI()
	_, err := cli.Transform(context.Background(), "/media/clip.mp4", t.TempDir(), ProfileLong)
	if err == nil || !strings.Contains(err.Error(), "produced no output") {
		t.Fatalf("expected missing output error, got %v", err)
	}
}

// TestTransformWithStubbedBinary drives the real exec path against a stub
// ffmpeg that exits cleanly without writing the rendition.
func TestTransformWithStubbedBinary(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	cli := NewCLIFromConfig(cfg)

	_, err := cli.Transform(context.Background(), "/media/clip.mp4", t.TempDir(), ProfileLong)
	if err == nil || !strings.Contains(err.Error(), "produced no output") {
		t.Fatalf("expected missing output error from stub, got %v", err)
	}
}

// setHelperCommand swaps the exec hook for the test binary and returns a
// pointer to the most recently captured argument list.
func setHelperCommand(t *testing.T, mode string) *[]string {
	t.Helper()
	var captured []string
	original := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		captured = append([]string(nil), args...)
		cmd := exec.CommandContext(ctx, os.Args[0], "-test.run=TestHelperProcess")
		cmd.Env = append(os.Environ(),
			"GO_WANT_HELPER_PROCESS=1",
			fmt.Sprintf("FFMPEG_HELPER_MODE=%s", mode),
			fmt.Sprintf("FFMPEG_HELPER_OUTPUT=%s", args[len(args)-1]),
		)
		return cmd
	}
	t.Cleanup(func() {
		commandContext = original
	})
	return &captured
}

func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}

	switch os.Getenv("FFMPEG_HELPER_MODE") {
	case "success":
		if err := os.WriteFile(os.Getenv("FFMPEG_HELPER_OUTPUT"), []byte("rendition"), 0o644); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		os.Exit(0)
	case "failure":
		fmt.Fprintln(os.Stderr, "Conversion failed!")
		os.Exit(1)
	case "silent":
		os.Exit(0)
	default:
		os.Exit(0)
	}
}

func findArg(args []string, target string) int {
	for i, arg := range args {
		if arg == target {
			return i
		}
	}
	return -1
}

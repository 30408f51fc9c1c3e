package ffmpeg

import (
	"context"
	"testing"
)

func TestProbeRequiresPath(t *testing.T) {
	if _, err := Probe(context.Background(), "ffprobe", ""); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestDimensionsPicksVideoStream(t *testing.T) {
	result := ProbeResult{Streams: []ProbeStream{
		{Index: 0, CodecType: "audio"},
		{Index: 1, CodecType: "video", Width: 1920, Height: 1080},
		{Index: 2, CodecType: "video", Width: 640, Height: 480},
	}}
	w, h := result.Dimensions()
	if w != 1920 || h != 1080 {
		t.Fatalf("Dimensions = %dx%d", w, h)
	}
}

func TestDimensionsWithoutVideo(t *testing.T) {
	result := ProbeResult{Streams: []ProbeStream{{CodecType: "audio"}}}
	if w, h := result.Dimensions(); w != 0 || h != 0 {
		t.Fatalf("Dimensions = %dx%d, want zeros", w, h)
	}
}

func TestDurationSeconds(t *testing.T) {
	result := ProbeResult{Format: ProbeFormat{Duration: "93.5"}}
	if got := result.DurationSeconds(); got != 93.5 {
		t.Fatalf("DurationSeconds = %v", got)
	}
	if got := (ProbeResult{}).DurationSeconds(); got != 0 {
		t.Fatalf("empty DurationSeconds = %v", got)
	}
	bad := ProbeResult{Format: ProbeFormat{Duration: "n/a"}}
	if got := bad.DurationSeconds(); got != 0 {
		t.Fatalf("invalid DurationSeconds = %v", got)
	}
}

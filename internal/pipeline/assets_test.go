package pipeline

import (
	"testing"

	"autopost/internal/services/ffmpeg"
	"autopost/internal/storage"
)

func TestLocalNameIsUniquePerRole(t *testing.T) {
	long := localName(storage.RoleLongVideos, "incoming/clip.mp4")
	short := localName(storage.RoleShortsReels, "incoming/clip.mp4")
	if long == short {
		t.Fatalf("same local name for different roles: %q", long)
	}
	if long != "long_videos__incoming%2Fclip.mp4" {
		t.Fatalf("localName = %q", long)
	}
}

func TestLocalNameIsUniquePerKey(t *testing.T) {
	a := localName(storage.RoleLongVideos, "a/b_c.mp4")
	b := localName(storage.RoleLongVideos, "a_b/c.mp4")
	if a == b {
		t.Fatalf("distinct keys mapped to the same local name: %q", a)
	}
}

func TestIsVideoKey(t *testing.T) {
	cases := map[string]bool{
		"incoming/a.mp4":   true,
		"incoming/b.MOV":   true,
		"incoming/c.mkv":   true,
		"incoming/d.webm":  true,
		"incoming/e.txt":   false,
		"incoming/f.jpg":   false,
		"incoming/noext":   false,
		"incoming/g.mp4.b": false,
	}
	for key, want := range cases {
		if got := isVideoKey(key); got != want {
			t.Errorf("isVideoKey(%q) = %v, want %v", key, got, want)
		}
	}
}

func TestProfileForRole(t *testing.T) {
	if profileForRole(storage.RoleLongVideos) != ffmpeg.ProfileLong {
		t.Fatal("long videos should use the long profile")
	}
	if profileForRole(storage.RoleShortsReels) != ffmpeg.ProfileShort {
		t.Fatal("shorts should use the short profile")
	}
}

package workspace_test

import (
	"os"
	"path/filepath"
	"testing"

	"autopost/internal/fileutil"
	"autopost/internal/logging"
	"autopost/internal/workspace"
)

func TestAcquireCreatesDirectories(t *testing.T) {
	root := filepath.Join(t.TempDir(), "work")
	manager := workspace.NewManager(root, logging.NewNop())

	ws, err := manager.Acquire()
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	for _, dir := range ws.Dirs() {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("stat %s: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("%s is not a directory", dir)
		}
	}
}

func TestAcquireIsIdempotent(t *testing.T) {
	manager := workspace.NewManager(filepath.Join(t.TempDir(), "work"), logging.NewNop())
	first, err := manager.Acquire()
	if err != nil {
		t.Fatalf("first Acquire: %v", err)
	}
	second, err := manager.Acquire()
	if err != nil {
		t.Fatalf("second Acquire: %v", err)
	}
	if first != second {
		t.Fatalf("working sets differ: %+v vs %+v", first, second)
	}
}

func TestReleaseEmptiesButKeepsDirectories(t *testing.T) {
	manager := workspace.NewManager(filepath.Join(t.TempDir(), "work"), logging.NewNop())
	ws, err := manager.Acquire()
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}

	for _, dir := range ws.Dirs() {
		if err := os.WriteFile(filepath.Join(dir, "leftover.mp4"), []byte("data"), 0o644); err != nil {
			t.Fatalf("seed %s: %v", dir, err)
		}
	}

	manager.Release(ws)

	for _, dir := range ws.Dirs() {
		empty, err := fileutil.IsEmptyDir(dir)
		if err != nil {
			t.Fatalf("dir %s should survive release: %v", dir, err)
		}
		if !empty {
			t.Fatalf("dir %s not emptied", dir)
		}
	}
}

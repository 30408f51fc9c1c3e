// Package workspace owns the scratch directories used by a publishing run.
//
// Every run works out of three directories under a fixed root: download/
// for fetched sources, temp/ for in-flight transforms, and output/ for
// finalized renditions. Acquire creates them before any network I/O and
// Release empties them afterwards, on success and failure alike.
package workspace

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"autopost/internal/fileutil"
	"autopost/internal/logging"
)

// WorkingSet holds the three scratch directories scoped to one run.
type WorkingSet struct {
	DownloadDir string
	TempDir     string
	OutputDir   string
}

// Dirs returns the directories in creation order.
func (ws WorkingSet) Dirs() []string {
	return []string{ws.DownloadDir, ws.TempDir, ws.OutputDir}
}

// Manager creates and cleans working sets under a fixed root.
type Manager struct {
	root   string
	logger *slog.Logger
}

// NewManager constructs a workspace manager rooted at root.
func NewManager(root string, logger *slog.Logger) *Manager {
	return &Manager{
		root:   root,
		logger: logging.NewComponentLogger(logger, "workspace"),
	}
}

// Acquire creates the download, temp, and output directories if absent.
// Safe to call every run. A failure here is fatal for the run: no network
// I/O should happen without scratch space.
func (m *Manager) Acquire() (WorkingSet, error) {
	ws := WorkingSet{
		DownloadDir: filepath.Join(m.root, "download"),
		TempDir:     filepath.Join(m.root, "temp"),
		OutputDir:   filepath.Join(m.root, "output"),
	}
	for _, dir := range ws.Dirs() {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return WorkingSet{}, fmt.Errorf("create working directory %q: %w", dir, err)
		}
	}
	return ws, nil
}

// Release removes everything beneath the working directories, keeping the
// directories themselves. Removal failures are logged, never escalated: a
// run outcome that is already recorded must not be overwritten by cleanup
// trouble.
func (m *Manager) Release(ws WorkingSet) {
	for _, dir := range ws.Dirs() {
		if dir == "" {
			continue
		}
		if err := fileutil.RemoveContents(dir); err != nil {
			m.logger.Warn("failed to clean working directory",
				logging.String("dir", dir),
				logging.Error(err),
			)
		}
	}
}

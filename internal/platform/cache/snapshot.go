package cache

import (
	"os"
	"path/filepath"
	"time"

	sonic "github.com/bytedance/sonic"

	"github.com/goalsnapth/goalsnap.v1/internal/platform/logging"
)

// SnapshotStore persists JSON snapshots on disk so cached upstream data
// survives restarts. Staleness is judged from the file's modification time
// against a caller-supplied window, so one store can back tiers with
// different lifetimes.
type SnapshotStore struct {
	dir    string
	logger *logging.Logger
}

func NewSnapshotStore(dir string, logger *logging.Logger) (*SnapshotStore, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &SnapshotStore{
		dir:    dir,
		logger: logger,
	}, nil
}

// Load decodes the named snapshot into target when the file exists and is
// younger than maxAge. Any read or decode problem counts as a miss.
func (s *SnapshotStore) Load(name string, maxAge time.Duration, target any) bool {
	path := s.path(name)
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	if maxAge > 0 && time.Since(info.ModTime()) > maxAge {
		return false
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	if err := sonic.Unmarshal(raw, target); err != nil {
		s.logger.Warn("discard unreadable snapshot", "name", name, "error", err)
		return false
	}
	return true
}

// Save writes the snapshot, replacing any previous one. Failures are logged
// and swallowed: a missing snapshot only costs an upstream refetch.
func (s *SnapshotStore) Save(name string, value any) {
	raw, err := sonic.Marshal(value)
	if err != nil {
		s.logger.Warn("encode snapshot failed", "name", name, "error", err)
		return
	}

	path := s.path(name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		s.logger.Warn("write snapshot failed", "name", name, "error", err)
		return
	}
	if err := os.Rename(tmp, path); err != nil {
		s.logger.Warn("replace snapshot failed", "name", name, "error", err)
	}
}

// Names lists snapshot files currently on disk, base names only.
func (s *SnapshotStore) Names() []string {
	items, err := os.ReadDir(s.dir)
	if err != nil {
		return nil
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		if item.IsDir() {
			continue
		}
		out = append(out, item.Name())
	}
	return out
}

func (s *SnapshotStore) path(name string) string {
	// Snapshot names are internal cache keys, never user input, but keep
	// them pinned inside the cache dir regardless.
	return filepath.Join(s.dir, filepath.Base(name))
}

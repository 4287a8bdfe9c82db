package project

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/piwi3910/CutLearn/internal/policy"
)

// CheckpointExt is appended to checkpoint filenames that lack it.
const CheckpointExt = ".ckpt"

// CheckpointPath normalizes a checkpoint filename, appending the extension
// when missing.
func CheckpointPath(path string) string {
	if strings.HasSuffix(path, CheckpointExt) {
		return path
	}
	return path + CheckpointExt
}

// SaveCheckpoint writes a training snapshot to path, auto-suffixing the
// checkpoint extension.
func SaveCheckpoint(path string, snap *policy.Snapshot) error {
	return SaveJSON(CheckpointPath(path), snap)
}

// LoadCheckpoint reads a training snapshot from path. Success is reported
// as a boolean; a missing or corrupt file yields (nil, false) and a log
// line rather than an error, so callers can fall back to fresh training.
func LoadCheckpoint(path string) (*policy.Snapshot, bool) {
	full := CheckpointPath(path)
	var snap policy.Snapshot
	if err := LoadJSON(full, &snap); err != nil {
		logrus.Warnf("[project] checkpoint %s not loaded: %v", full, err)
		return nil, false
	}
	return &snap, true
}

// RotateCheckpoints keeps the keep most recently modified checkpoint files
// in dir and deletes the rest.
func RotateCheckpoints(dir string, keep int) error {
	if keep < 1 {
		keep = 1
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	type ckpt struct {
		path string
		mod  int64
	}
	var found []ckpt
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), CheckpointExt) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		found = append(found, ckpt{
			path: filepath.Join(dir, e.Name()),
			mod:  info.ModTime().UnixNano(),
		})
	}
	sort.Slice(found, func(i, j int) bool { return found[i].mod > found[j].mod })

	for _, c := range found[min(keep, len(found)):] {
		if err := os.Remove(c.path); err != nil {
			return err
		}
		logrus.Debugf("[project] rotated out checkpoint %s", c.path)
	}
	return nil
}

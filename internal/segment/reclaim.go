package segment

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Reclaim deletes segment files under dir that are not the one named by the
// current manifest. It is called after a new segment has been published
// and the tenant runtime has swapped its reader pointer, so any file this
// removes is guaranteed to have no active reader left that opened it by
// path (readers hold their own *os file handle once opened; deleting the
// path doesn't disturb them, this just keeps disk usage bounded).
func Reclaim(dir string) (removed []string, err error) {
	m, err := ReadManifest(dir)
	if err != nil && err != ErrIndexMissing {
		return nil, err
	}
	keep := ""
	if err == nil {
		keep = filepath.Base(SegmentPath(dir, m.Fingerprint))
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("segment: list segment dir: %w", err)
	}

	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".db") {
			continue
		}
		if name == keep {
			continue
		}
		if err := os.Remove(filepath.Join(dir, name)); err != nil {
			return removed, fmt.Errorf("segment: remove orphaned segment %s: %w", name, err)
		}
		removed = append(removed, name)
	}
	return removed, nil
}

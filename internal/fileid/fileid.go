// Package fileid derives a stable identifier from a filesystem path,
// independent of the document key used for fetch/search (which is the path
// itself). Callers surface it in stored metadata so external consumers can
// correlate a document across a rename without depending on key stability.
package fileid

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
)

const prefix = "file:"

// FileDocID returns a stable identifier for the given path. Same path
// always yields the same ID.
func FileDocID(absolutePath string) string {
	normalized := filepath.Clean(absolutePath)
	hash := sha256.Sum256([]byte(normalized))
	return prefix + hex.EncodeToString(hash[:])
}

// Package fingerprint computes the content-derived identifier that names a
// segment, per spec §4.1: SHA-256 over the ordered concatenation of
// (unique_key_bytes || ':' || sha256(body_bytes)) for each document, in the
// order the documents were streamed. The same algorithm is used by the
// indexer to name a new segment and by the audit to detect drift.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"hash"
)

// Hasher accumulates documents into a single deterministic fingerprint. It
// is not safe for concurrent use; callers stream documents through Add in
// the same order on every host to get a stable result.
type Hasher struct {
	h hash.Hash
}

// New returns an empty Hasher.
func New() *Hasher {
	return &Hasher{h: sha256.New()}
}

// Add folds one document's key and body into the running hash.
func (f *Hasher) Add(key string, body []byte) {
	bodyDigest := sha256.Sum256(body)
	f.h.Write([]byte(key))
	f.h.Write([]byte(":"))
	f.h.Write(bodyDigest[:])
}

// Sum returns the final 32-byte fingerprint without modifying the Hasher.
func (f *Hasher) Sum() [32]byte {
	var out [32]byte
	copy(out[:], f.h.Sum(nil))
	return out
}

// Hex returns the lowercase hex encoding of Sum, the form used in segment
// file names (__search_segments/<64-hex-char-fingerprint>.db).
func (f *Hasher) Hex() string {
	sum := f.Sum()
	return hex.EncodeToString(sum[:])
}

// Of is a convenience wrapper for fingerprinting a small, already-materialized
// ordered list of (key, body) pairs; most callers should stream through a
// Hasher instead to avoid holding every body in memory at once.
func Of(docs []struct {
	Key  string
	Body []byte
}) string {
	h := New()
	for _, d := range docs {
		h.Add(d.Key, d.Body)
	}
	return h.Hex()
}

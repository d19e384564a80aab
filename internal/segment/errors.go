package segment

import "errors"

// ErrIndexMissing means the tenant has never published a segment.
var ErrIndexMissing = errors.New("segment: index missing")

// ErrIndexCorrupt means a segment file exists but failed to open or its
// schema/meta rows don't match what this build of the reader expects.
var ErrIndexCorrupt = errors.New("segment: index corrupt")

// ErrNotFound means a lookup (document key, term) found no match within an
// otherwise healthy segment.
var ErrNotFound = errors.New("segment: not found")

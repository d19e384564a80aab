// Package segment implements the on-disk segment format: a single SQLite
// file per published index generation, built once and never mutated after
// publish. Readers open it read-only and hold an LRU cache of decoded postings in front of
// it; writers only ever produce a brand new file and rename it into place.
package segment

// schemaDDL creates the segment's tables. A segment is append-only from the
// builder's perspective: every table is fully populated in one pass and the
// file is never opened for writes again after the builder closes it.
const schemaDDL = `
CREATE TABLE IF NOT EXISTS segment_meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS stored_docs (
	doc_id        INTEGER PRIMARY KEY,
	key           TEXT NOT NULL,
	title         TEXT NOT NULL,
	body          TEXT NOT NULL,
	metadata_json TEXT NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_stored_docs_key ON stored_docs(key);

CREATE TABLE IF NOT EXISTS field_lengths (
	field  TEXT NOT NULL,
	doc_id INTEGER NOT NULL,
	length INTEGER NOT NULL,
	PRIMARY KEY (field, doc_id)
);

CREATE TABLE IF NOT EXISTS term_doc_freq (
	field     TEXT NOT NULL,
	term      TEXT NOT NULL,
	doc_freq  INTEGER NOT NULL,
	PRIMARY KEY (field, term)
);

CREATE TABLE IF NOT EXISTS postings (
	field     TEXT NOT NULL,
	term      TEXT NOT NULL,
	doc_id    INTEGER NOT NULL,
	term_freq INTEGER NOT NULL,
	positions BLOB NOT NULL,
	PRIMARY KEY (field, term, doc_id)
);

CREATE TABLE IF NOT EXISTS collection_stats (
	field     TEXT NOT NULL PRIMARY KEY,
	doc_count INTEGER NOT NULL,
	avg_len   REAL NOT NULL
);
`

// Meta keys stored in segment_meta.
const (
	metaKeyFingerprint = "fingerprint"
	metaKeyBuiltAtUnix = "built_at_unix"
	metaKeySchemaHash  = "schema_hash"
	metaKeyDocCount    = "doc_count"
)

// collStatsAllField is the pseudo-field collection_stats row that holds the
// corpus-wide document count (as opposed to a per-field average length).
const collStatsAllField = "_all"

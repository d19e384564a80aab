package segment

import (
	"database/sql"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	_ "github.com/mattn/go-sqlite3"

	"github.com/arcdocs/docsearch/internal/vbyte"
)

// mmapSizeBytes is the SQLite mmap_size pragma value; large enough that a
// typical per-tenant segment's postings and stored_docs tables stay
// memory-mapped rather than re-read through the page cache on every query.
const mmapSizeBytes = 64 << 20 // 64 MiB

// postingCacheSize bounds the decoded-position LRU so repeated term lookups
// within one query (title field then body field for the same term, or
// phrase-proximity re-checks) skip vbyte decoding.
const postingCacheSize = 4096

// Posting is one decoded (field, term, doc) entry.
type Posting struct {
	DocID     int64
	TermFreq  int
	Positions []int
}

// StoredDoc is a document's stored fields as recorded at build time.
type StoredDoc struct {
	DocID        int64
	Key          string
	Title        string
	Body         string
	MetadataJSON string
}

// Reader is a read-only handle onto one published segment file. It is safe
// for concurrent use by multiple goroutines (database/sql pools connections
// internally; the posting cache has its own lock).
type Reader struct {
	db          *sql.DB
	path        string
	fingerprint string

	postingCache *lru.Cache[string, []Posting]
}

// Open opens path read-only. It fails with ErrIndexCorrupt if the file
// cannot be opened or its segment_meta table is missing the fingerprint
// this reader was asked to verify (pass "" to skip verification, used when
// the caller is discovering the fingerprint rather than confirming it).
func Open(path string, wantFingerprint string) (*Reader, error) {
	dsn := fmt.Sprintf("file:%s?mode=ro&_query_only=true&cache=shared", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrIndexCorrupt, path, err)
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA mmap_size=%d", mmapSizeBytes)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: set mmap_size: %v", ErrIndexCorrupt, err)
	}

	var fp string
	err = db.QueryRow(`SELECT value FROM segment_meta WHERE key = ?`, metaKeyFingerprint).Scan(&fp)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: read fingerprint: %v", ErrIndexCorrupt, err)
	}
	if wantFingerprint != "" && fp != wantFingerprint {
		_ = db.Close()
		return nil, fmt.Errorf("%w: fingerprint mismatch, manifest says %s, file has %s", ErrIndexCorrupt, wantFingerprint, fp)
	}

	cache, err := lru.New[string, []Posting](postingCacheSize)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("segment: create posting cache: %w", err)
	}

	return &Reader{db: db, path: path, fingerprint: fp, postingCache: cache}, nil
}

// Fingerprint returns the fingerprint this segment was built with.
func (r *Reader) Fingerprint() string { return r.fingerprint }

// Close releases the underlying database handle.
func (r *Reader) Close() error { return r.db.Close() }

func cacheKey(field, term string) string { return field + "\x00" + term }

// Postings returns every (doc, term_freq, positions) entry for one
// (field, term) pair, decoding the vbyte position blobs on first access and
// caching the decoded result.
func (r *Reader) Postings(field, term string) ([]Posting, error) {
	key := cacheKey(field, term)
	if cached, ok := r.postingCache.Get(key); ok {
		return cached, nil
	}

	rows, err := r.db.Query(
		`SELECT doc_id, term_freq, positions FROM postings WHERE field = ? AND term = ?`,
		field, term,
	)
	if err != nil {
		return nil, fmt.Errorf("segment: query postings: %w", err)
	}
	defer rows.Close()

	var out []Posting
	for rows.Next() {
		var p Posting
		var blob []byte
		if err := rows.Scan(&p.DocID, &p.TermFreq, &blob); err != nil {
			return nil, fmt.Errorf("segment: scan posting: %w", err)
		}
		p.Positions = vbyte.DecodePositions(blob)
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	r.postingCache.Add(key, out)
	return out, nil
}

// DocFrequency returns the number of documents containing term in field,
// or 0 if the term never occurs in that field.
func (r *Reader) DocFrequency(field, term string) (int, error) {
	var df int
	err := r.db.QueryRow(`SELECT doc_freq FROM term_doc_freq WHERE field = ? AND term = ?`, field, term).Scan(&df)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("segment: query term_doc_freq: %w", err)
	}
	return df, nil
}

// FieldLength returns a document's token count for field.
func (r *Reader) FieldLength(field string, docID int64) (int, error) {
	var length int
	err := r.db.QueryRow(`SELECT length FROM field_lengths WHERE field = ? AND doc_id = ?`, field, docID).Scan(&length)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("segment: query field_lengths: %w", err)
	}
	return length, nil
}

// CollectionStats is the corpus-wide document count and average field
// length for one field, the denominators BM25F needs.
type CollectionStats struct {
	DocCount   int64
	AvgFieldLen float64
}

// Stats returns collection-wide statistics for field ("" selects the total
// document count row, with AvgFieldLen left at 0).
func (r *Reader) Stats(field string) (CollectionStats, error) {
	if field == "" {
		field = collStatsAllField
	}
	var s CollectionStats
	err := r.db.QueryRow(`SELECT doc_count, avg_len FROM collection_stats WHERE field = ?`, field).Scan(&s.DocCount, &s.AvgFieldLen)
	if err == sql.ErrNoRows {
		return CollectionStats{}, nil
	}
	if err != nil {
		return CollectionStats{}, fmt.Errorf("segment: query collection_stats: %w", err)
	}
	return s, nil
}

// StoredDocument fetches a document's stored fields by its internal doc_id.
func (r *Reader) StoredDocument(docID int64) (StoredDoc, error) {
	var d StoredDoc
	d.DocID = docID
	err := r.db.QueryRow(
		`SELECT key, title, body, metadata_json FROM stored_docs WHERE doc_id = ?`, docID,
	).Scan(&d.Key, &d.Title, &d.Body, &d.MetadataJSON)
	if err == sql.ErrNoRows {
		return StoredDoc{}, ErrNotFound
	}
	if err != nil {
		return StoredDoc{}, fmt.Errorf("segment: query stored_docs: %w", err)
	}
	return d, nil
}

// StoredDocumentByKey fetches a document's stored fields by its external
// unique key, used by the fetch tool operation.
func (r *Reader) StoredDocumentByKey(key string) (StoredDoc, error) {
	var d StoredDoc
	err := r.db.QueryRow(
		`SELECT doc_id, key, title, body, metadata_json FROM stored_docs WHERE key = ?`, key,
	).Scan(&d.DocID, &d.Key, &d.Title, &d.Body, &d.MetadataJSON)
	if err == sql.ErrNoRows {
		return StoredDoc{}, ErrNotFound
	}
	if err != nil {
		return StoredDoc{}, fmt.Errorf("segment: query stored_docs by key: %w", err)
	}
	return d, nil
}

// Terms returns every distinct term indexed for field, for fuzzy-match
// dictionary expansion. Segments in this system are sized for a single
// tenant's documentation set, not a web-scale corpus, so holding the term
// list in memory during expansion is acceptable.
func (r *Reader) Terms(field string) ([]string, error) {
	rows, err := r.db.Query(`SELECT term FROM term_doc_freq WHERE field = ?`, field)
	if err != nil {
		return nil, fmt.Errorf("segment: query terms: %w", err)
	}
	defer rows.Close()

	var terms []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("segment: scan term: %w", err)
		}
		terms = append(terms, t)
	}
	return terms, rows.Err()
}

// DocCount returns the total number of documents in the segment.
func (r *Reader) DocCount() (int64, error) {
	s, err := r.Stats("")
	return s.DocCount, err
}

// KeyTitle is one document's stored key and title, the minimum needed to
// list a segment's documents without fetching full bodies.
type KeyTitle struct {
	Key   string
	Title string
}

// Keys returns every stored document's key and title, for callers (e.g.
// browse) that need the full set rather than one lookup by key.
func (r *Reader) Keys() ([]KeyTitle, error) {
	rows, err := r.db.Query(`SELECT key, title FROM stored_docs`)
	if err != nil {
		return nil, fmt.Errorf("segment: query stored_docs keys: %w", err)
	}
	defer rows.Close()

	var out []KeyTitle
	for rows.Next() {
		var kt KeyTitle
		if err := rows.Scan(&kt.Key, &kt.Title); err != nil {
			return nil, fmt.Errorf("segment: scan key: %w", err)
		}
		out = append(out, kt)
	}
	return out, rows.Err()
}

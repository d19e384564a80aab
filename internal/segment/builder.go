package segment

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/arcdocs/docsearch/internal/vbyte"
)

// docRecord is one document's accumulated indexing state, held in memory
// across the whole build since a tenant's corpus is expected to fit
// comfortably (the spec's size budget is per-tenant, not global).
type docRecord struct {
	docID        int64
	key          string
	title        string
	body         string
	metadataJSON string
	fieldLengths map[string]int
}

// posting accumulates term_freq/positions for one (field, term, doc_id).
type posting struct {
	positions []int
}

// Builder accumulates one generation's worth of documents and writes them
// to a single segment file in one pass over memory, per spec §4.1: the
// expensive analysis work happens before any file I/O, so the on-disk phase
// is a single transaction writing pre-computed rows.
type Builder struct {
	dir  string
	docs []docRecord

	// postings[field][term][docID] -> posting
	postings map[string]map[string]map[int64]*posting

	nextDocID int64
}

// NewBuilder returns a Builder that will place its finished segment file
// under dir (the tenant's __search_segments directory).
func NewBuilder(dir string) *Builder {
	return &Builder{
		dir:      dir,
		postings: make(map[string]map[string]map[int64]*posting),
	}
}

// AddDocument records one document's stored fields and per-field analyzed
// token streams. tokensByField positions must already account for FieldGap
// separation between list entries; the builder does not renumber them.
func (b *Builder) AddDocument(key, title, body string, metadata map[string]string, tokensByField map[string][]Token) error {
	metaJSON, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("segment: marshal metadata for %q: %w", key, err)
	}

	docID := b.nextDocID
	b.nextDocID++

	rec := docRecord{
		docID:        docID,
		key:          key,
		title:        title,
		body:         body,
		metadataJSON: string(metaJSON),
		fieldLengths: make(map[string]int, len(tokensByField)),
	}

	for field, toks := range tokensByField {
		rec.fieldLengths[field] = len(toks)
		if b.postings[field] == nil {
			b.postings[field] = make(map[string]map[int64]*posting)
		}
		byTerm := b.postings[field]
		for _, tok := range toks {
			byDoc := byTerm[tok.Term]
			if byDoc == nil {
				byDoc = make(map[int64]*posting)
				byTerm[tok.Term] = byDoc
			}
			p := byDoc[docID]
			if p == nil {
				p = &posting{}
				byDoc[docID] = p
			}
			p.positions = append(p.positions, tok.Position)
		}
	}

	b.docs = append(b.docs, rec)
	return nil
}

// Token mirrors analyzer.Token without importing the analyzer package, so
// segment stays a storage-only leaf package (indexer does the analysis and
// hands the builder plain (term, position) pairs).
type Token struct {
	Term     string
	Position int
}

// Build writes the accumulated documents to a new segment file named after
// fingerprint and publishes it atomically: write to a .tmp path, fsync the
// file, rename into place, fsync the containing directory. It returns the
// final path. The Builder must not be reused after Build returns.
func (b *Builder) Build(fingerprint string) (string, error) {
	if err := os.MkdirAll(b.dir, 0o755); err != nil {
		return "", fmt.Errorf("segment: create segment dir: %w", err)
	}

	final := filepath.Join(b.dir, fingerprint+".db")
	tmp := final + ".tmp"
	_ = os.Remove(tmp)

	db, err := sql.Open("sqlite3", tmp)
	if err != nil {
		return "", fmt.Errorf("segment: open tmp segment: %w", err)
	}

	if err := b.writeAll(db, fingerprint); err != nil {
		_ = db.Close()
		_ = os.Remove(tmp)
		return "", err
	}

	if err := db.Close(); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("segment: close tmp segment: %w", err)
	}

	if err := fsyncPath(tmp); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("segment: fsync tmp segment: %w", err)
	}

	if err := os.Rename(tmp, final); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("segment: rename into place: %w", err)
	}

	if err := fsyncPath(b.dir); err != nil {
		return "", fmt.Errorf("segment: fsync segment dir: %w", err)
	}

	return final, nil
}

func (b *Builder) writeAll(db *sql.DB, fingerprint string) error {
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return fmt.Errorf("segment: enable WAL: %w", err)
	}
	if _, err := db.Exec("PRAGMA synchronous=FULL"); err != nil {
		return fmt.Errorf("segment: set synchronous: %w", err)
	}
	if _, err := db.Exec(schemaDDL); err != nil {
		return fmt.Errorf("segment: create schema: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("segment: begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := b.writeStoredDocs(tx); err != nil {
		return err
	}
	if err := b.writeFieldLengthsAndStats(tx); err != nil {
		return err
	}
	if err := b.writePostingsAndDocFreq(tx); err != nil {
		return err
	}
	if err := b.writeMeta(tx, fingerprint); err != nil {
		return err
	}

	return tx.Commit()
}

func (b *Builder) writeStoredDocs(tx *sql.Tx) error {
	stmt, err := tx.Prepare(`INSERT INTO stored_docs(doc_id, key, title, body, metadata_json) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("segment: prepare stored_docs insert: %w", err)
	}
	defer stmt.Close()

	for _, d := range b.docs {
		if _, err := stmt.Exec(d.docID, d.key, d.title, d.body, d.metadataJSON); err != nil {
			return fmt.Errorf("segment: insert stored_docs %q: %w", d.key, err)
		}
	}
	return nil
}

func (b *Builder) writeFieldLengthsAndStats(tx *sql.Tx) error {
	flStmt, err := tx.Prepare(`INSERT INTO field_lengths(field, doc_id, length) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("segment: prepare field_lengths insert: %w", err)
	}
	defer flStmt.Close()

	sums := make(map[string]int64)
	counts := make(map[string]int64)

	for _, d := range b.docs {
		for field, length := range d.fieldLengths {
			if _, err := flStmt.Exec(field, d.docID, length); err != nil {
				return fmt.Errorf("segment: insert field_lengths: %w", err)
			}
			sums[field] += int64(length)
			counts[field]++
		}
	}

	statStmt, err := tx.Prepare(`INSERT INTO collection_stats(field, doc_count, avg_len) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("segment: prepare collection_stats insert: %w", err)
	}
	defer statStmt.Close()

	for field, count := range counts {
		avg := float64(sums[field]) / float64(count)
		if _, err := statStmt.Exec(field, count, avg); err != nil {
			return fmt.Errorf("segment: insert collection_stats: %w", err)
		}
	}
	if _, err := statStmt.Exec(collStatsAllField, int64(len(b.docs)), 0.0); err != nil {
		return fmt.Errorf("segment: insert collection_stats total: %w", err)
	}

	return nil
}

func (b *Builder) writePostingsAndDocFreq(tx *sql.Tx) error {
	postStmt, err := tx.Prepare(`INSERT INTO postings(field, term, doc_id, term_freq, positions) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("segment: prepare postings insert: %w", err)
	}
	defer postStmt.Close()

	dfStmt, err := tx.Prepare(`INSERT INTO term_doc_freq(field, term, doc_freq) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("segment: prepare term_doc_freq insert: %w", err)
	}
	defer dfStmt.Close()

	for field, byTerm := range b.postings {
		for term, byDoc := range byTerm {
			for docID, p := range byDoc {
				blob := vbyte.EncodePositions(p.positions)
				if _, err := postStmt.Exec(field, term, docID, len(p.positions), blob); err != nil {
					return fmt.Errorf("segment: insert postings: %w", err)
				}
			}
			if _, err := dfStmt.Exec(field, term, len(byDoc)); err != nil {
				return fmt.Errorf("segment: insert term_doc_freq: %w", err)
			}
		}
	}
	return nil
}

func (b *Builder) writeMeta(tx *sql.Tx, fingerprint string) error {
	stmt, err := tx.Prepare(`INSERT INTO segment_meta(key, value) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("segment: prepare segment_meta insert: %w", err)
	}
	defer stmt.Close()

	rows := map[string]string{
		metaKeyFingerprint: fingerprint,
		metaKeyBuiltAtUnix: fmt.Sprintf("%d", time.Now().Unix()),
		metaKeySchemaHash:  "1",
		metaKeyDocCount:    fmt.Sprintf("%d", len(b.docs)),
	}
	for k, v := range rows {
		if _, err := stmt.Exec(k, v); err != nil {
			return fmt.Errorf("segment: insert segment_meta: %w", err)
		}
	}
	return nil
}

func fsyncPath(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Sync()
}

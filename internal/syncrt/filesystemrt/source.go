package filesystemrt

import (
	"bufio"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/arcdocs/docsearch/internal/docmodel"
	"github.com/arcdocs/docsearch/internal/fileid"
)

var markdownExtensions = map[string]bool{
	".md":       true,
	".markdown": true,
	".mdx":      true,
	".txt":      true,
}

// DirectorySource is an indexer.DocumentSource over every markdown/text file
// under root, visited in a deterministic (lexical path) order so that
// build(schema, docs) stays a pure function of the directory's contents.
type DirectorySource struct {
	root  string
	paths []string
	pos   int
}

// NewDirectorySource walks root once, collecting every file with a
// recognized extension. The walk itself is eager (not streamed) because the
// fingerprint must be computed over a stable, sorted order; a lazy walk
// would tie document order to the filesystem's readdir order instead.
func NewDirectorySource(root string) (*DirectorySource, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), "__") {
				return filepath.SkipDir
			}
			return nil
		}
		if markdownExtensions[strings.ToLower(filepath.Ext(path))] {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return &DirectorySource{root: root, paths: paths}, nil
}

// Next implements indexer.DocumentSource.
func (s *DirectorySource) Next() (docmodel.Document, bool, error) {
	if s.pos >= len(s.paths) {
		return docmodel.Document{}, false, nil
	}
	path := s.paths[s.pos]
	s.pos++

	data, err := os.ReadFile(path)
	if err != nil {
		return docmodel.Document{}, false, err
	}

	key := path
	if rel, err := filepath.Rel(s.root, path); err == nil {
		key = filepath.ToSlash(rel)
	}

	doc := parseMarkdown(string(data))
	doc.Key = key
	doc.Metadata = map[string]string{
		"file_id": fileid.FileDocID(path),
		"path":    path,
	}
	return doc, true, nil
}

// Close implements indexer.DocumentSource.
func (s *DirectorySource) Close() error { return nil }

// parseMarkdown does a light, heading-aware parse of a markdown file: the
// first "# " heading becomes the title (falling back to the first non-empty
// line), "## " and deeper headings are split across HeadingsH1/H2/Other, and
// fenced code blocks are collected separately so the code-friendly analyzer
// profile can be applied to them.
func parseMarkdown(content string) docmodel.Document {
	var doc docmodel.Document
	var body strings.Builder
	var codeBlock strings.Builder
	inCode := false

	scanner := bufio.NewScanner(strings.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "```") {
			if inCode {
				doc.CodeBlocks = append(doc.CodeBlocks, codeBlock.String())
				codeBlock.Reset()
			}
			inCode = !inCode
			continue
		}
		if inCode {
			codeBlock.WriteString(line)
			codeBlock.WriteByte('\n')
			continue
		}

		switch {
		case strings.HasPrefix(trimmed, "# "):
			heading := strings.TrimSpace(strings.TrimPrefix(trimmed, "# "))
			if doc.Title == "" {
				doc.Title = heading
			}
			doc.HeadingsH1 = append(doc.HeadingsH1, heading)
		case strings.HasPrefix(trimmed, "## "):
			doc.HeadingsH2 = append(doc.HeadingsH2, strings.TrimSpace(strings.TrimPrefix(trimmed, "## ")))
		case strings.HasPrefix(trimmed, "### ") || strings.HasPrefix(trimmed, "#### "):
			doc.HeadingsOther = append(doc.HeadingsOther, strings.TrimLeft(trimmed, "# "))
		default:
			if doc.Title == "" && trimmed != "" {
				doc.Title = trimmed
			}
		}
		body.WriteString(line)
		body.WriteByte('\n')
	}
	doc.Body = body.String()
	return doc
}

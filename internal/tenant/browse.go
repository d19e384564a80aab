package tenant

import (
	"sort"
	"strings"

	"github.com/arcdocs/docsearch/internal/apierr"
	"github.com/arcdocs/docsearch/internal/config"
)

// maxBrowseDepth is the hard ceiling on browse(path, depth): a caller asking
// for more is silently clamped rather than rejected.
const maxBrowseDepth = 5

// EntryKind distinguishes a browsed document from a subdirectory.
type EntryKind string

const (
	EntryFile EntryKind = "file"
	EntryDir  EntryKind = "dir"
)

// DirectoryEntry is one node under a DirectoryTree: a document (Kind=file,
// Title set) or a subdirectory (Kind=dir, Children populated).
type DirectoryEntry struct {
	Name     string
	Path     string
	Kind     EntryKind
	Title    string
	Children []DirectoryEntry
}

// DirectoryTree is the browse(path, depth) response.
type DirectoryTree struct {
	Path    string
	Entries []DirectoryEntry
}

type browseNode struct {
	path     string
	kind     EntryKind
	title    string
	children map[string]*browseNode
}

// Browse reconstructs the directory structure under path, to at most depth
// levels, from the current segment's indexed document keys rather than a
// live filesystem walk: a git tenant's staging checkout is removed right
// after each sync, so the segment's own record of document keys is the only
// stable source for this across both filesystem and git sources.
func (rt *Runtime) Browse(path string, depth int) (DirectoryTree, error) {
	if rt.Identity.SourceKind == config.SourceOnline {
		return DirectoryTree{}, apierr.Newf(apierr.NotSupported, "browse is not supported for tenant %q: online sources have no stable path", rt.Identity.Codename)
	}
	if depth <= 0 || depth > maxBrowseDepth {
		depth = maxBrowseDepth
	}

	r, err := rt.currentReader()
	if err != nil {
		return DirectoryTree{}, err
	}
	keys, err := r.Keys()
	if err != nil {
		return DirectoryTree{}, apierr.Newf(apierr.FetchFailed, "browse %q: %v", path, err)
	}

	prefix := strings.Trim(path, "/")
	root := &browseNode{kind: EntryDir, children: make(map[string]*browseNode)}

	for _, kt := range keys {
		key := strings.Trim(kt.Key, "/")
		rel := key
		if prefix != "" {
			if key == prefix || !strings.HasPrefix(key, prefix+"/") {
				continue
			}
			rel = strings.TrimPrefix(key, prefix+"/")
		}
		insertBrowsePath(root, prefix, strings.Split(rel, "/"), depth, kt.Title)
	}

	return DirectoryTree{Path: prefix, Entries: flattenBrowseNode(root)}, nil
}

func insertBrowsePath(root *browseNode, basePath string, segments []string, depth int, title string) {
	cur := root
	curPath := basePath
	for i, seg := range segments {
		if i >= depth {
			break
		}
		if curPath == "" {
			curPath = seg
		} else {
			curPath = curPath + "/" + seg
		}

		child, ok := cur.children[seg]
		if !ok {
			child = &browseNode{path: curPath}
			cur.children[seg] = child
		}

		isLeaf := i == len(segments)-1
		if isLeaf {
			child.kind = EntryFile
			child.title = title
		} else {
			child.kind = EntryDir
			if child.children == nil {
				child.children = make(map[string]*browseNode)
			}
		}
		cur = child
	}
}

func flattenBrowseNode(n *browseNode) []DirectoryEntry {
	if len(n.children) == 0 {
		return nil
	}
	names := make([]string, 0, len(n.children))
	for name := range n.children {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]DirectoryEntry, 0, len(names))
	for _, name := range names {
		child := n.children[name]
		out = append(out, DirectoryEntry{
			Name:     name,
			Path:     child.path,
			Kind:     child.kind,
			Title:    child.title,
			Children: flattenBrowseNode(child),
		})
	}
	return out
}

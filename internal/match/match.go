// Package match resolves request paths against a page tree whose files and
// directories may use bracketed dynamic segments.
//
// Resolution walks the tree one segment at a time. A static entry always
// beats a dynamic sibling, the first suitable dynamic entry in listing order
// captures the segment, and a failed segment ends the walk: there is no
// backtracking into an earlier choice.
package match

import (
	"net/url"
	"path"
	"strings"

	"github.com/spf13/afero"

	"github.com/rafbgarcia/flatsite/internal/conventions"
)

// Result is a resolved request path.
type Result struct {
	Page   string            // Page-tree path relative to the root, e.g. "product/[id].html"
	Params map[string]string // Dynamic segment name → captured value
}

// Matcher resolves request paths against a read-only page tree.
// It holds no mutable state and is safe for concurrent use.
type Matcher struct {
	fs  afero.Fs
	ext string
}

// New creates a Matcher for the page tree rooted at pages. ext is the page
// file extension including the dot.
func New(pages afero.Fs, ext string) *Matcher {
	if ext == "" {
		ext = conventions.DefaultPageExt
	}
	return &Matcher{fs: pages, ext: ext}
}

// Ext returns the page file extension.
func (m *Matcher) Ext() string {
	return m.ext
}

// FS returns the page tree.
func (m *Matcher) FS() afero.Fs {
	return m.fs
}

// Match resolves reqPath (slash-separated, no scheme, query or fragment).
// The second result is false when no page serves the path.
func (m *Matcher) Match(reqPath string) (Result, bool) {
	trimmed := strings.Trim(reqPath, "/")
	if trimmed == "" {
		trimmed = conventions.IndexName
	}

	index := conventions.IndexName + m.ext
	if trimmed == conventions.IndexName && m.isFile(index) {
		return Result{Page: index, Params: map[string]string{}}, true
	}

	segments := strings.Split(trimmed, "/")
	params := map[string]string{}
	cur := ""

	for i, seg := range segments {
		if seg == "" || seg == "." || seg == ".." {
			return Result{}, false
		}
		last := i == len(segments)-1

		if last {
			if p := join(cur, seg+m.ext); m.isFile(p) {
				return Result{Page: p, Params: params}, true
			}
			if p := join(cur, seg); conventions.IsPageFile(seg, m.ext) && m.isFile(p) {
				return Result{Page: p, Params: params}, true
			}
			if p := join(cur, seg, index); m.isFile(p) {
				return Result{Page: p, Params: params}, true
			}
		}

		if p := join(cur, seg); m.isDir(p) {
			cur = p
			continue
		}

		e, ok := m.dynamicEntry(cur, last)
		if !ok {
			return Result{}, false
		}
		params[e.name] = segmentValue(seg)
		if !e.dir {
			return Result{Page: join(cur, e.file), Params: params}, true
		}
		cur = join(cur, e.file)
	}

	if p := join(cur, index); m.isFile(p) {
		return Result{Page: p, Params: params}, true
	}
	return Result{}, false
}

type dynamicEntry struct {
	file string // Entry name on disk, e.g. "[id].html" or "[id]"
	name string // Parameter name, e.g. "id"
	dir  bool
}

// dynamicEntry returns the first dynamic entry of dir that can consume a
// segment. For the last segment a page file is preferred over a directory;
// otherwise only directories qualify.
func (m *Matcher) dynamicEntry(dir string, last bool) (dynamicEntry, bool) {
	var firstDir *dynamicEntry
	for _, e := range m.dynamicEntries(dir) {
		if !e.dir {
			if last {
				return e, true
			}
			continue
		}
		if firstDir == nil {
			firstDir = &e
		}
	}
	if firstDir == nil {
		return dynamicEntry{}, false
	}
	return *firstDir, true
}

// dynamicEntries lists the bracketed directories and page files of dir in
// name order.
func (m *Matcher) dynamicEntries(dir string) []dynamicEntry {
	infos, err := afero.ReadDir(m.fs, rootPath(dir))
	if err != nil {
		return nil
	}
	var out []dynamicEntry
	for _, info := range infos {
		name := info.Name()
		base := name
		if !info.IsDir() {
			if !conventions.IsPageFile(name, m.ext) {
				continue
			}
			base = strings.TrimSuffix(name, m.ext)
		}
		param, ok := conventions.DynamicName(base)
		if !ok {
			continue
		}
		out = append(out, dynamicEntry{file: name, name: param, dir: info.IsDir()})
	}
	return out
}

func (m *Matcher) isFile(p string) bool {
	info, err := m.fs.Stat(rootPath(p))
	return err == nil && !info.IsDir()
}

func (m *Matcher) isDir(p string) bool {
	info, err := m.fs.Stat(rootPath(p))
	return err == nil && info.IsDir()
}

// segmentValue decodes a captured segment, keeping it verbatim when it is
// not valid percent-encoding.
func segmentValue(seg string) string {
	if v, err := url.PathUnescape(seg); err == nil {
		return v
	}
	return seg
}

func join(elem ...string) string {
	return strings.TrimPrefix(path.Join(elem...), "/")
}

// rootPath anchors a tree-relative path at the root of the page filesystem.
func rootPath(p string) string {
	return "/" + p
}

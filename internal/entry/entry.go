// Package entry maps page-tree paths to the flat build files they compile
// to. A page with dynamic segments is emitted once; its parameters travel in
// the query string instead of the path.
package entry

import (
	"path"
	"strings"

	"github.com/rafbgarcia/flatsite/internal/conventions"
)

// Entry is the build destination of a page.
type Entry struct {
	Dest   string   // Build path relative to the output root, e.g. "product.html"
	Params []string // Dynamic segment names in left-to-right order
}

// Mapper maps page-tree paths to entries. PageExt is stripped from the input
// and OutExt is appended to the destination.
type Mapper struct {
	PageExt string
	OutExt  string
}

// Default maps .html pages to .html entries.
var Default = Mapper{PageExt: conventions.DefaultPageExt, OutExt: conventions.DefaultPageExt}

// Map maps pagePath with the Default mapper.
func Map(pagePath string) Entry {
	return Default.Map(pagePath)
}

// Map returns the entry for a page-tree path. The extension is optional.
//
// Examples with .html pages:
//
//	"about.html"               → "about.html", []
//	"[id].html"                → "index.html", [id]
//	"product/[id].html"        → "product.html", [id]
//	"shop/product/[id].html"   → "shop/product/index.html", [id]
//	"users/[id]/[tab].html"    → "users/index.html", [id tab]
func (m Mapper) Map(pagePath string) Entry {
	p := strings.Trim(strings.ReplaceAll(pagePath, "\\", "/"), "/")
	hasExt := m.PageExt != "" && strings.HasSuffix(p, m.PageExt)
	stem := p
	if hasExt {
		stem = strings.TrimSuffix(p, m.PageExt)
	}

	var statics, params []string
	for _, seg := range strings.Split(stem, "/") {
		s := conventions.ParseSegment(seg)
		if s.Dynamic {
			params = append(params, s.Name)
		} else {
			statics = append(statics, s.Name)
		}
	}

	switch {
	case len(params) == 0:
		if hasExt {
			return Entry{Dest: stem + m.OutExt, Params: []string{}}
		}
		return Entry{Dest: p, Params: []string{}}
	case len(statics) == 0:
		return Entry{Dest: conventions.IndexName + m.OutExt, Params: params}
	case len(statics) == 1 && len(params) == 1:
		return Entry{Dest: statics[0] + m.OutExt, Params: params}
	default:
		return Entry{Dest: path.Join(append(statics, conventions.IndexName+m.OutExt)...), Params: params}
	}
}

// Package flatsite compiles a page tree with bracketed dynamic segments
// (product/[id].html) into flat, statically servable files, and rewrites the
// links inside rendered pages so they keep working without server-side
// rewrite rules.
//
// A Site bundles the three pieces involved: the route matcher that resolves
// a request path against the page tree, the mapper that names each page's
// build file, and the rewriter that turns links into relative links between
// build files.
package flatsite

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/afero"

	"github.com/rafbgarcia/flatsite/internal/conventions"
	"github.com/rafbgarcia/flatsite/internal/entry"
	"github.com/rafbgarcia/flatsite/internal/match"
	"github.com/rafbgarcia/flatsite/internal/rewrite"
)

// Options configures a Site. Zero values select the defaults.
type Options struct {
	PageExt   string   // Page file extension, default ".html"
	OutExt    string   // Build file extension, default ".html"
	AssetDirs []string // Build directories never resolved as pages; nil means api and public, empty means none
}

// Site is a page tree ready for resolution and link rewriting. It is safe
// for concurrent use as long as the tree is not modified.
type Site struct {
	pages    afero.Fs
	opts     Options
	matcher  *match.Matcher
	mapper   entry.Mapper
	rewriter *rewrite.Rewriter
}

// Route describes a resolved request path.
type Route struct {
	Page   string            // Page-tree path, e.g. "product/[id].html"
	Dest   string            // Build file, e.g. "product.html"
	Params map[string]string // Captured values by parameter name
}

// PageEntry pairs a page with its build file and parameter names.
type PageEntry struct {
	Page       string
	Dest       string
	ParamNames []string
}

// Open creates a Site for the page tree rooted at dir on disk.
func Open(dir string, opts Options) (*Site, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("opening pages: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("opening pages: %s is not a directory", dir)
	}
	return New(afero.NewReadOnlyFs(afero.NewBasePathFs(afero.NewOsFs(), dir)), opts), nil
}

// New creates a Site for an arbitrary page filesystem.
func New(pages afero.Fs, opts Options) *Site {
	if opts.PageExt == "" {
		opts.PageExt = conventions.DefaultPageExt
	}
	if opts.OutExt == "" {
		opts.OutExt = conventions.DefaultPageExt
	}
	if opts.AssetDirs == nil {
		opts.AssetDirs = conventions.DefaultAssetDirs
	}

	m := match.New(pages, opts.PageExt)
	mp := entry.Mapper{PageExt: opts.PageExt, OutExt: opts.OutExt}
	return &Site{
		pages:    pages,
		opts:     opts,
		matcher:  m,
		mapper:   mp,
		rewriter: rewrite.New(m, mp, rewrite.WithAssetDirs(opts.AssetDirs...)),
	}
}

// Pages returns the page filesystem.
func (s *Site) Pages() afero.Fs {
	return s.pages
}

// Options returns the effective options.
func (s *Site) Options() Options {
	return s.opts
}

// Resolve matches a request path against the page tree.
func (s *Site) Resolve(reqPath string) (Route, bool) {
	res, ok := s.matcher.Match(reqPath)
	if !ok {
		return Route{}, false
	}
	return Route{
		Page:   res.Page,
		Dest:   s.mapper.Map(res.Page).Dest,
		Params: res.Params,
	}, true
}

// Entry returns the build file and parameter names of a page.
func (s *Site) Entry(page string) PageEntry {
	e := s.mapper.Map(page)
	return PageEntry{Page: page, Dest: e.Dest, ParamNames: e.Params}
}

// Entries lists every page of the tree with its build file, sorted by page
// path.
func (s *Site) Entries() ([]PageEntry, error) {
	pages, err := match.Pages(s.pages, s.opts.PageExt)
	if err != nil {
		return nil, err
	}
	sort.Strings(pages)
	out := make([]PageEntry, 0, len(pages))
	for _, p := range pages {
		out = append(out, s.Entry(p))
	}
	return out, nil
}

// Validate reports sibling dynamic segments that would make resolution
// depend on directory listing order.
func (s *Site) Validate() error {
	return match.Validate(s.pages, s.opts.PageExt)
}

// RewriteURL rewrites a single attribute URL as seen from the build file
// current.
func (s *Site) RewriteURL(current, raw string) string {
	return s.rewriter.URL(current, raw)
}

// RewriteHTML rewrites every href, action and src value in html as seen from
// the build file current.
func (s *Site) RewriteHTML(current, html string) string {
	return s.rewriter.HTML(current, html)
}

// Package rewrite turns the internal links of a rendered page into relative
// links between flat build files, so the exported site works when served as
// plain files.
package rewrite

import (
	"net/url"
	"strings"

	"github.com/rafbgarcia/flatsite/internal/conventions"
	"github.com/rafbgarcia/flatsite/internal/entry"
	"github.com/rafbgarcia/flatsite/internal/match"
	"github.com/rafbgarcia/flatsite/internal/relpath"
)

// Rewriter rewrites URLs found in documents of one page tree. It holds no
// mutable state and is safe for concurrent use.
type Rewriter struct {
	matcher   *match.Matcher
	mapper    entry.Mapper
	assetDirs []string
}

// Option configures a Rewriter.
type Option func(*Rewriter)

// WithAssetDirs replaces the top-level directories whose URLs bypass route
// resolution.
func WithAssetDirs(dirs ...string) Option {
	return func(r *Rewriter) {
		r.assetDirs = dirs
	}
}

// New creates a Rewriter that resolves paths with m and names build files
// with mp.
func New(m *match.Matcher, mp entry.Mapper, opts ...Option) *Rewriter {
	r := &Rewriter{
		matcher:   m,
		mapper:    mp,
		assetDirs: conventions.DefaultAssetDirs,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// URL rewrites raw as it appears in the document whose build path is
// current. Whenever rewriting does not apply, raw is returned unchanged.
//
// From "index.html", with a page tree holding "product/[id].html":
//
//	"/product/123"        → "product.html?id=123"
//	"/public/logo.png"    → "public/logo.png"
//	"https://example.com" → "https://example.com"
func (r *Rewriter) URL(current, raw string) string {
	if Classify(raw) != KindLocal {
		return raw
	}
	parts := Split(raw)

	if parts.Path == "" || parts.Path == "/" {
		index := conventions.IndexName + r.mapper.OutExt
		return relpath.Rel(current, index) + parts.suffix()
	}

	rooted := strings.HasPrefix(parts.Path, "/")
	stripped := strings.TrimLeft(parts.Path, "/")

	if conventions.IsAssetPath(stripped, r.assetDirs) {
		return relpath.Rel(current, stripped) + parts.suffix()
	}

	res, ok := r.matcher.Match(stripped)
	if !ok {
		if rooted {
			return relpath.Rel(current, stripped) + parts.suffix()
		}
		return raw
	}

	query, err := mergeQuery(res.Params, parts.Query)
	if err != nil {
		return raw
	}

	out := relpath.Rel(current, r.mapper.Map(res.Page).Dest)
	if query != "" {
		out += "?" + query
	}
	if parts.HasFragment {
		out += "#" + parts.Fragment
	}
	return out
}

// mergeQuery overlays the URL's own query on the captured route parameters.
// A key present in the query replaces the route value.
func mergeQuery(params map[string]string, rawQuery string) (string, error) {
	merged := url.Values{}
	for k, v := range params {
		merged.Set(k, v)
	}
	if rawQuery != "" {
		q, err := url.ParseQuery(rawQuery)
		if err != nil {
			return "", err
		}
		for k, vs := range q {
			merged[k] = vs
		}
	}
	return merged.Encode(), nil
}

// Package conventions defines the file conventions and rules that map the
// page tree to routes: bracketed dynamic segments, index pages and the
// asset directories that are copied verbatim into the build.
package conventions

import (
	"fmt"
	"path"
	"strings"
)

const (
	// IndexName is the base name of the page served for a directory.
	IndexName = "index"

	// DefaultPageExt is the page-file extension used when none is configured.
	DefaultPageExt = ".html"
)

// DefaultAssetDirs are the top-level build directories whose URLs are never
// resolved against the page tree.
var DefaultAssetDirs = []string{"api", "public"}

// Segment is a single parsed page-tree path segment.
type Segment struct {
	Name    string // Literal name, or the parameter name when Dynamic
	Dynamic bool
}

// ParseSegment classifies a path segment. A segment is dynamic when it is a
// bracketed, non-empty identifier:
//
//	"product" → {Name: "product"}
//	"[id]"    → {Name: "id", Dynamic: true}
//	"[]"      → {Name: "[]"}
func ParseSegment(seg string) Segment {
	if name, ok := DynamicName(seg); ok {
		return Segment{Name: name, Dynamic: true}
	}
	return Segment{Name: seg}
}

// DynamicName returns the parameter name of a bracketed segment such as
// "[id]". The second result is false for static segments.
func DynamicName(seg string) (string, bool) {
	if len(seg) < 3 || seg[0] != '[' || seg[len(seg)-1] != ']' {
		return "", false
	}
	name := seg[1 : len(seg)-1]
	for _, r := range name {
		if !isIdentRune(r) {
			return "", false
		}
	}
	return name, true
}

func isIdentRune(r rune) bool {
	return r == '_' || r == '-' ||
		(r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9')
}

// IsPageFile reports whether a file name carries the page extension.
func IsPageFile(name, ext string) bool {
	return strings.HasSuffix(name, ext) && len(name) > len(ext)
}

// PagePattern converts a page-tree path to a chi URL pattern. Brackets
// become {param} and index pages map to their directory.
//
// Examples:
//
//	"index.html"              → "/"
//	"about.html"              → "/about"
//	"product/[id].html"       → "/product/{id}"
//	"docs/index.html"         → "/docs"
//	"org/[org]/[member].html" → "/org/{org}/{member}"
//	"a/[id]/b/[id].html"      → "/a/{id_1}/b/{id}"
func PagePattern(pagePath, ext string) string {
	pattern, _ := PageRoute(pagePath, ext)
	return pattern
}

// RouteParam ties a key of a chi pattern to the page parameter it fills.
type RouteParam struct {
	Key  string // Key in the chi pattern
	Name string // Parameter name in the page tree
}

// PageRoute is PagePattern plus its parameters in left-to-right order.
// chi rejects duplicate keys, so a name repeated at different depths keeps
// its own key only at its last occurrence; earlier ones become name_N, N
// being the segment index. Filling values in order then gives the later
// segment precedence, as matching does.
func PageRoute(pagePath, ext string) (string, []RouteParam) {
	p := strings.TrimSuffix(strings.Trim(path.Clean("/"+pagePath), "/"), ext)
	segments := strings.Split(p, "/")
	if segments[len(segments)-1] == IndexName {
		segments = segments[:len(segments)-1]
	}

	last := map[string]int{}
	for i, seg := range segments {
		if name, ok := DynamicName(seg); ok {
			last[name] = i
		}
	}

	used := map[string]bool{}
	for name := range last {
		used[name] = true
	}
	var params []RouteParam
	for i, seg := range segments {
		name, ok := DynamicName(seg)
		if !ok {
			continue
		}
		key := name
		if last[name] != i {
			key = fmt.Sprintf("%s_%d", name, i)
			for used[key] {
				key += "_"
			}
			used[key] = true
		}
		segments[i] = "{" + key + "}"
		params = append(params, RouteParam{Key: key, Name: name})
	}
	return "/" + strings.Join(segments, "/"), params
}

// IsAssetPath reports whether a slash-separated build path (no leading
// slash) lives under one of the asset directories.
func IsAssetPath(p string, assetDirs []string) bool {
	for _, dir := range assetDirs {
		if p == dir || strings.HasPrefix(p, dir+"/") {
			return true
		}
	}
	return false
}

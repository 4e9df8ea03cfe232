// Package relpath computes links between build outputs that keep working
// when the output directory is opened from disk or served from any prefix.
package relpath

import "strings"

// Rel returns the path that reaches the build file to from the directory
// containing the build file from. Both are slash-separated and relative to
// the output root.
//
//	Rel("index.html", "product.html")      → "product.html"
//	Rel("games/index.html", "index.html")  → "../index.html"
//	Rel("about.html", "about.html")        → "about.html"
//
// The result is never empty, so callers can append "?query" or "#fragment".
func Rel(from, to string) string {
	src := split(from)
	if len(src) > 0 {
		src = src[:len(src)-1]
	}
	dst := split(to)

	// The destination's file name never takes part in the common prefix.
	limit := min(len(src), max(len(dst)-1, 0))
	common := 0
	for common < limit && src[common] == dst[common] {
		common++
	}

	parts := make([]string, 0, len(src)-common+len(dst)-common)
	for range src[common:] {
		parts = append(parts, "..")
	}
	parts = append(parts, dst[common:]...)

	if len(parts) == 0 {
		if len(dst) > 0 {
			return dst[len(dst)-1]
		}
		return "."
	}
	return strings.Join(parts, "/")
}

// split breaks p into its meaningful segments, ignoring empty and "."
// segments.
func split(p string) []string {
	raw := strings.Split(strings.ReplaceAll(p, "\\", "/"), "/")
	segs := raw[:0]
	for _, s := range raw {
		if s == "" || s == "." {
			continue
		}
		segs = append(segs, s)
	}
	return segs
}

package rewrite

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// attrRe matches href, action and src assignments with a single- or
// double-quoted value. The leading group keeps names like data-src or
// x-href from matching.
//
// Groups: 1 = boundary character, 2 = name and "=", 3 = double-quoted
// value, 4 = single-quoted value.
var attrRe = regexp.MustCompile(`(?i)(^|[^\w-])((?:href|action|src)\s*=\s*)(?:"([^"]*)"|'([^']*)')`)

// HTML rewrites every href, action and src attribute value in doc as seen
// from the document at build path current. Everything outside the attribute
// values is copied verbatim, as is every value that is not rewritten. The
// scan is not tag-aware.
//
// Values are entity-decoded before rewriting, so "/p/1?a=1&amp;b=2" is read
// as "/p/1?a=1&b=2"; a rewritten value is escaped again when its source was.
func (r *Rewriter) HTML(current, doc string) string {
	matches := attrRe.FindAllStringSubmatchIndex(doc, -1)
	if len(matches) == 0 {
		return doc
	}

	var b strings.Builder
	b.Grow(len(doc))
	last := 0
	for _, m := range matches {
		// m[6:8] is the double-quoted value, m[8:10] the single-quoted one.
		start, end, quote := m[6], m[7], `"`
		if start < 0 {
			start, end, quote = m[8], m[9], `'`
		}
		b.WriteString(doc[last:start])
		b.WriteString(r.attrValue(current, doc[start:end], quote))
		last = end
	}
	b.WriteString(doc[last:])
	return b.String()
}

func (r *Rewriter) attrValue(current, raw, quote string) string {
	value := unescapeAttr(raw, quote)
	out := r.URL(current, value)
	if out == value {
		return raw
	}
	if value != raw {
		return html.EscapeString(out)
	}
	return out
}

// unescapeAttr decodes character references in an attribute value the way
// a browser does, e.g. "&copy=1" followed by "=" stays literal.
func unescapeAttr(raw, quote string) string {
	if !strings.Contains(raw, "&") {
		return raw
	}
	z := html.NewTokenizer(strings.NewReader("<a v=" + quote + raw + quote + ">"))
	if z.Next() != html.StartTagToken {
		return raw
	}
	if _, hasAttr := z.TagName(); !hasAttr {
		return raw
	}
	_, val, _ := z.TagAttr()
	return string(val)
}

// Links returns the raw href, action and src values of doc in document
// order.
func Links(doc string) []string {
	var out []string
	for _, m := range attrRe.FindAllStringSubmatch(doc, -1) {
		// Only one of the two value groups participates in a match.
		out = append(out, m[3]+m[4])
	}
	return out
}

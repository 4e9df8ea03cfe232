package rewrite

import (
	"regexp"
	"strings"
)

// Kind is the classification of a raw attribute URL.
type Kind int

const (
	// KindAnchor is an empty URL or an in-page "#fragment".
	KindAnchor Kind = iota
	// KindExternal is an absolute or protocol-relative http(s) URL.
	KindExternal
	// KindScheme is a non-HTTP URI such as mailto: or data:.
	KindScheme
	// KindLocal is a path, optionally with query and fragment, that may point
	// into the site.
	KindLocal
)

func (k Kind) String() string {
	switch k {
	case KindAnchor:
		return "anchor"
	case KindExternal:
		return "external"
	case KindScheme:
		return "scheme"
	case KindLocal:
		return "local"
	}
	return "unknown"
}

var (
	externalRe = regexp.MustCompile(`(?i)^(?:https?:)?//`)
	schemeRe   = regexp.MustCompile(`(?i)^(?:mailto|tel|javascript|data):`)

	// otherSchemeRe catches any remaining "scheme:" prefix (ftp:, sms:, ...).
	otherSchemeRe = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9+.-]*:`)
)

// Classify reports how a raw URL is treated. Only KindLocal URLs are
// candidates for rewriting.
func Classify(raw string) Kind {
	switch {
	case raw == "" || strings.HasPrefix(raw, "#"):
		return KindAnchor
	case externalRe.MatchString(raw):
		return KindExternal
	case schemeRe.MatchString(raw), otherSchemeRe.MatchString(raw):
		return KindScheme
	}
	return KindLocal
}

// Parts is a local URL split into its raw components. HasQuery and
// HasFragment distinguish "page?" from "page".
type Parts struct {
	Path        string
	Query       string
	Fragment    string
	HasQuery    bool
	HasFragment bool
}

// Split separates a local URL into path, query and fragment without
// decoding anything.
func Split(raw string) Parts {
	var p Parts
	if idx := strings.Index(raw, "#"); idx >= 0 {
		p.Fragment = raw[idx+1:]
		p.HasFragment = true
		raw = raw[:idx]
	}
	if idx := strings.Index(raw, "?"); idx >= 0 {
		p.Query = raw[idx+1:]
		p.HasQuery = true
		raw = raw[:idx]
	}
	p.Path = raw
	return p
}

// suffix rebuilds the original "?query#fragment" tail.
func (p Parts) suffix() string {
	var b strings.Builder
	if p.HasQuery {
		b.WriteString("?")
		b.WriteString(p.Query)
	}
	if p.HasFragment {
		b.WriteString("#")
		b.WriteString(p.Fragment)
	}
	return b.String()
}

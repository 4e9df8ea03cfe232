package render

import (
	"strings"
	"testing"
)

func TestForExtension(t *testing.T) {
	tests := []struct {
		ext     string
		wantErr bool
	}{
		{".html", false},
		{".HTML", false},
		{".md", false},
		{".markdown", false},
		{".vue", true},
	}
	for _, tt := range tests {
		_, err := For(tt.ext)
		if (err != nil) != tt.wantErr {
			t.Errorf("For(%q) error = %v, wantErr %v", tt.ext, err, tt.wantErr)
		}
	}
}

func TestHTMLPassthrough(t *testing.T) {
	src := []byte(`<a href="/about">About</a>`)
	got, err := HTML{}.Render(src)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(src) {
		t.Errorf("got %q, want %q", got, src)
	}
}

func TestMarkdownLinks(t *testing.T) {
	src := []byte("# Shop & Co\n\nSee [product](/product/1) and ![logo](/public/logo.png).\n")
	got, err := NewMarkdown().Render(src)
	if err != nil {
		t.Fatal(err)
	}
	html := string(got)

	for _, want := range []string{
		`<title>Shop &amp; Co</title>`,
		`href="/product/1"`,
		`src="/public/logo.png"`,
		`<!DOCTYPE html>`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("missing %q in:\n%s", want, html)
		}
	}
}

func TestMarkdownRawHTML(t *testing.T) {
	src := []byte("<form action=\"/search\"></form>\n")
	got, err := NewMarkdown().Render(src)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(got), `action="/search"`) {
		t.Errorf("raw HTML dropped:\n%s", got)
	}
}

package export

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/rafbgarcia/flatsite"
)

func testSiteRoot() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "testdata", "site")
}

// exportTestSite exports testdata/site into a temp dir and returns its path.
func exportTestSite(t *testing.T) string {
	t.Helper()
	root := testSiteRoot()
	outDir := t.TempDir()

	site, err := flatsite.Open(filepath.Join(root, "pages"), flatsite.Options{})
	require.NoError(t, err)

	osfs := afero.NewOsFs()
	_, err = Run(context.Background(), Options{
		Site: site,
		Assets: map[string]afero.Fs{
			"public": afero.NewReadOnlyFs(afero.NewBasePathFs(osfs, filepath.Join(root, "public"))),
			"api":    afero.NewReadOnlyFs(afero.NewBasePathFs(osfs, filepath.Join(root, "api"))),
		},
		Out:         afero.NewBasePathFs(osfs, outDir),
		Concurrency: 3,
	})
	require.NoError(t, err)
	return outDir
}

// documentLinks extracts href, src and action values from an HTML document.
func documentLinks(t *testing.T, doc string) []string {
	t.Helper()
	var links []string
	z := html.NewTokenizer(strings.NewReader(doc))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return links
		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			for _, a := range tok.Attr {
				switch a.Key {
				case "href", "src", "action":
					links = append(links, a.Val)
				}
			}
		}
	}
}

func isLocalLink(link string) bool {
	if link == "" || strings.HasPrefix(link, "#") || strings.HasPrefix(link, "//") {
		return false
	}
	return !strings.Contains(strings.SplitN(link, "/", 2)[0], ":")
}

func TestExportedLinksResolveOnDisk(t *testing.T) {
	outDir := exportTestSite(t)

	for _, want := range []string{
		"index.html",
		"about.html",
		"product.html",
		"games.html",
		"games/index.html",
		"docs/index.html",
		"public/css/site.css",
		"public/logo.svg",
		"api/products.json",
	} {
		assert.FileExists(t, filepath.Join(outDir, filepath.FromSlash(want)))
	}

	checked := 0
	err := filepath.WalkDir(outDir, func(p string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() || filepath.Ext(p) != ".html" {
			return err
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(outDir, p)
		doc := filepath.ToSlash(rel)

		for _, link := range documentLinks(t, string(data)) {
			if !isLocalLink(link) {
				continue
			}
			assert.False(t, strings.HasPrefix(link, "/"), "%s: root-relative link %q left in place", doc, link)

			target := link
			if i := strings.IndexAny(target, "?#"); i >= 0 {
				target = target[:i]
			}
			resolved := path.Join(path.Dir(doc), target)
			assert.FileExists(t, filepath.Join(outDir, filepath.FromSlash(resolved)), "%s: link %q", doc, link)
			checked++
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 20, checked)
}

func TestExportedLinkValues(t *testing.T) {
	outDir := exportTestSite(t)

	read := func(name string) string {
		data, err := os.ReadFile(filepath.Join(outDir, filepath.FromSlash(name)))
		require.NoError(t, err)
		return string(data)
	}

	index := read("index.html")
	for _, want := range []string{
		`href="public/css/site.css"`,
		`href="product.html?id=123"`,
		`href="about.html"`,
		`href="games/index.html"`,
		`href="docs/index.html?page=install&section=guide#linux"`,
		`href="api/products.json"`,
		`href="https://example.com/elsewhere"`,
		`href="mailto:hello@example.com"`,
		`href="#top"`,
		`action="games/index.html"`,
	} {
		assert.Contains(t, index, want)
	}

	about := read("about.html")
	assert.Contains(t, about, `href="index.html"`)
	assert.Contains(t, about, `href='product.html?id=7&ref=about#specs'`)

	games := read("games/index.html")
	assert.Contains(t, games, `href="../index.html"`)
	assert.Contains(t, games, `href="../games.html?slug=mario"`)
	assert.Contains(t, games, `href="../games.html?difficulty=hard&slug=zelda"`)

	docs := read("docs/index.html")
	assert.Contains(t, docs, `href="../index.html"`)
	assert.Contains(t, docs, `href="index.html?page=upgrade&section=guide"`)
	assert.Contains(t, docs, `href="../public/css/site.css"`)
}

func TestExportedSiteInBrowser(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}
	outDir := exportTestSite(t)

	u := launcher.New().Headless(true).MustLaunch()
	browser := rod.New().ControlURL(u).MustConnect()
	t.Cleanup(func() { browser.MustClose() })

	page := browser.MustPage("file://" + filepath.Join(outDir, "index.html"))
	page.MustWaitStable()

	page.MustElement("a#product").MustClick()
	page.MustWaitStable()

	info := page.MustInfo()
	if !strings.HasSuffix(info.URL, "/product.html?id=123") {
		t.Fatalf("expected to land on product.html?id=123, got %s", info.URL)
	}
	if got := page.MustElement("#product-id").MustText(); got != "123" {
		t.Errorf("expected the page to read id=123 from the query string, got %q", got)
	}

	// Back home through the rewritten relative link.
	page.MustElement(`a[href="index.html"]`).MustClick()
	page.MustWaitStable()
	if body := page.MustElement("h1").MustText(); body != "Home" {
		t.Errorf("expected to be back on Home, got %q", body)
	}
}

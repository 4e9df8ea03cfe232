package flatsite_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rafbgarcia/flatsite"
)

func writePages(t *testing.T, dir string, files ...string) {
	t.Helper()
	for _, f := range files {
		p := filepath.Join(dir, filepath.FromSlash(f))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte("<html></html>"), 0644))
	}
}

func TestOpenAndRewrite(t *testing.T) {
	dir := t.TempDir()
	writePages(t, dir, "index.html", "product/[id].html", "games/index.html")

	site, err := flatsite.Open(dir, flatsite.Options{})
	require.NoError(t, err)

	assert.Equal(t, "product.html?id=123", site.RewriteURL("index.html", "/product/123"))
	assert.Equal(t, "../index.html", site.RewriteURL("games/index.html", "/"))
	assert.Equal(t,
		`<a href="product.html?id=999&sort=asc">x</a>`,
		site.RewriteHTML("index.html", `<a href="/product/123?id=999&sort=asc">x</a>`),
	)
}

func TestAssetDirsEmptyMeansNone(t *testing.T) {
	pages := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(pages, "/api/[id].html", []byte("x"), 0644))

	defaults := flatsite.New(pages, flatsite.Options{})
	assert.Equal(t, "api/5", defaults.RewriteURL("index.html", "/api/5"))

	none := flatsite.New(pages, flatsite.Options{AssetDirs: []string{}})
	assert.Equal(t, "api.html?id=5", none.RewriteURL("index.html", "/api/5"))
}

func TestOpenMissingDir(t *testing.T) {
	_, err := flatsite.Open(filepath.Join(t.TempDir(), "nope"), flatsite.Options{})
	assert.Error(t, err)

	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0644))
	_, err = flatsite.Open(file, flatsite.Options{})
	assert.Error(t, err)
}

func TestResolve(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/shop/[category]/[item].html", nil, 0644))
	site := flatsite.New(fs, flatsite.Options{})

	route, ok := site.Resolve("/shop/shoes/boot")
	require.True(t, ok)
	assert.Equal(t, flatsite.Route{
		Page:   "shop/[category]/[item].html",
		Dest:   "shop/index.html",
		Params: map[string]string{"category": "shoes", "item": "boot"},
	}, route)

	_, ok = site.Resolve("/nowhere")
	assert.False(t, ok)
}

func TestEntries(t *testing.T) {
	fs := afero.NewMemMapFs()
	for _, f := range []string{"/index.md", "/post/[slug].md", "/public/a.css"} {
		require.NoError(t, afero.WriteFile(fs, f, nil, 0644))
	}
	site := flatsite.New(fs, flatsite.Options{PageExt: ".md"})

	entries, err := site.Entries()
	require.NoError(t, err)
	assert.Equal(t, []flatsite.PageEntry{
		{Page: "index.md", Dest: "index.html", ParamNames: []string{}},
		{Page: "post/[slug].md", Dest: "post.html", ParamNames: []string{"slug"}},
	}, entries)
}

func TestValidate(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/[a].html", nil, 0644))
	require.NoError(t, afero.WriteFile(fs, "/[b].html", nil, 0644))

	assert.Error(t, flatsite.New(fs, flatsite.Options{}).Validate())
}

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	log := flatsite.NewLoggerTo(&buf, slog.LevelInfo).With("component", "test")

	log.Debug("hidden")
	log.Info("shown", "pages", 3)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "shown", rec["msg"])
	assert.Equal(t, "test", rec["component"])
	assert.EqualValues(t, 3, rec["pages"])
}

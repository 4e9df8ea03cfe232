// Package export builds a page tree into a flat static site: every page is
// rendered once to its entry file, its links are rewritten relative to that
// file, and asset directories are copied alongside.
package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/rafbgarcia/flatsite"
	"github.com/rafbgarcia/flatsite/internal/bundler"
	"github.com/rafbgarcia/flatsite/internal/render"
)

// ErrDuplicateEntry is returned when two pages build to the same file.
var ErrDuplicateEntry = errors.New("duplicate build destination")

// Options configures a single export run.
type Options struct {
	Site        *flatsite.Site
	Assets      map[string]afero.Fs // Build directory name → source tree, copied verbatim
	Out         afero.Fs            // Output root
	Minify      bool                // Minify .js and .css assets
	Concurrency int                 // Parallel page and asset writes, default 1
	Log         *flatsite.Logger
}

// Result summarizes an export.
type Result struct {
	Pages   int
	Assets  int
	Entries []flatsite.PageEntry
}

// Run exports the site. The output tree is written into, not cleared.
func Run(ctx context.Context, opts Options) (Result, error) {
	log := opts.Log
	if log == nil {
		log = flatsite.Discard()
	}
	limit := opts.Concurrency
	if limit < 1 {
		limit = 1
	}
	site := opts.Site

	entries, err := Check(site)
	if err != nil {
		return Result{}, err
	}

	renderer, err := render.For(site.Options().PageExt)
	if err != nil {
		return Result{}, err
	}

	type assetJob struct {
		dir  string
		src  afero.Fs
		file string
	}
	var jobs []assetJob
	for _, name := range sortedKeys(opts.Assets) {
		src := opts.Assets[name]
		files, err := listFiles(src)
		if err != nil {
			return Result{}, fmt.Errorf("listing %s assets: %w", name, err)
		}
		for _, f := range files {
			jobs = append(jobs, assetJob{dir: name, src: src, file: f})
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for _, e := range entries {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := exportPage(site, renderer, opts.Out, e); err != nil {
				return err
			}
			log.Debug("page exported", "page", e.Page, "dest", e.Dest, "params", e.ParamNames)
			return nil
		})
	}

	var assets atomic.Int64
	for _, job := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			dest := path.Join(job.dir, job.file)
			if err := copyAsset(job.src, job.file, opts.Out, dest, opts.Minify); err != nil {
				return err
			}
			assets.Add(1)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	res := Result{Pages: len(entries), Assets: int(assets.Load()), Entries: entries}
	log.Info("export complete", "pages", res.Pages, "assets", res.Assets)
	return res, nil
}

// Check validates the page tree and returns its entries. It fails on
// ambiguous sibling parameters and on pages sharing a build file, without
// touching any output.
func Check(site *flatsite.Site) ([]flatsite.PageEntry, error) {
	if err := site.Validate(); err != nil {
		return nil, fmt.Errorf("validating page tree: %w", err)
	}
	entries, err := site.Entries()
	if err != nil {
		return nil, err
	}
	if err := checkDuplicates(entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// exportPage renders one page and writes it, with rewritten links, to its
// entry file.
func exportPage(site *flatsite.Site, r render.Renderer, out afero.Fs, e flatsite.PageEntry) error {
	src, err := afero.ReadFile(site.Pages(), "/"+e.Page)
	if err != nil {
		return fmt.Errorf("reading %s: %w", e.Page, err)
	}
	html, err := r.Render(src)
	if err != nil {
		return fmt.Errorf("rendering %s: %w", e.Page, err)
	}
	rewritten := site.RewriteHTML(e.Dest, string(html))
	if err := writeFile(out, e.Dest, []byte(rewritten)); err != nil {
		return fmt.Errorf("writing %s: %w", e.Dest, err)
	}
	return nil
}

func copyAsset(src afero.Fs, name string, out afero.Fs, dest string, minify bool) error {
	data, err := afero.ReadFile(src, "/"+name)
	if err != nil {
		return fmt.Errorf("reading asset %s: %w", dest, err)
	}
	if minify && bundler.CanMinify(name) {
		data, err = bundler.Minify(dest, data)
		if err != nil {
			return err
		}
	}
	if err := writeFile(out, dest, data); err != nil {
		return fmt.Errorf("writing asset %s: %w", dest, err)
	}
	return nil
}

func writeFile(fs afero.Fs, name string, data []byte) error {
	p := "/" + name
	if err := fs.MkdirAll(path.Dir(p), 0755); err != nil {
		return err
	}
	return afero.WriteFile(fs, p, data, 0644)
}

// checkDuplicates rejects page trees where several pages share an entry,
// e.g. "product.html" and "product/[id].html".
func checkDuplicates(entries []flatsite.PageEntry) error {
	byDest := map[string][]string{}
	for _, e := range entries {
		byDest[e.Dest] = append(byDest[e.Dest], e.Page)
	}

	var errs []error
	for _, dest := range sortedKeys(byDest) {
		pages := byDest[dest]
		if len(pages) < 2 {
			continue
		}
		errs = append(errs, fmt.Errorf("%w: %s all build to %s", ErrDuplicateEntry, strings.Join(pages, ", "), dest))
	}
	return errors.Join(errs...)
}

// listFiles returns every regular file of fs relative to its root.
func listFiles(fs afero.Fs) ([]string, error) {
	var files []string
	err := afero.Walk(fs, "/", func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		files = append(files, strings.TrimPrefix(filepath.ToSlash(p), "/"))
		return nil
	})
	return files, err
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

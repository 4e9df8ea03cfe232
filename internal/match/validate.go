package match

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"github.com/rafbgarcia/flatsite/internal/conventions"
)

// AmbiguityError reports a directory whose dynamic entries use different
// parameter names. Which one captures a segment would depend on listing
// order, so such trees are rejected before building.
type AmbiguityError struct {
	Dir     string   // Directory relative to the page root ("" for the root)
	Entries []string // Conflicting entry names, sorted
}

func (e *AmbiguityError) Error() string {
	dir := e.Dir
	if dir == "" {
		dir = "."
	}
	return fmt.Sprintf("ambiguous dynamic segments in %s: %s", dir, strings.Join(e.Entries, ", "))
}

// Validate walks the page tree and returns an *AmbiguityError for every
// directory with sibling dynamic entries of different names. A "[id]"
// directory next to an "[id]" page file is fine. Multiple problems are
// combined with errors.Join.
func Validate(pages afero.Fs, ext string) error {
	m := New(pages, ext)

	var errs []error
	err := afero.Walk(pages, "/", func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		dir := strings.Trim(filepath.ToSlash(p), "/")

		entries := m.dynamicEntries(dir)
		names := map[string]bool{}
		for _, e := range entries {
			names[e.name] = true
		}
		if len(names) < 2 {
			return nil
		}

		files := make([]string, 0, len(entries))
		for _, e := range entries {
			files = append(files, e.file)
		}
		sort.Strings(files)
		errs = append(errs, &AmbiguityError{Dir: dir, Entries: files})
		return nil
	})
	if err != nil {
		return fmt.Errorf("walking page tree: %w", err)
	}
	return errors.Join(errs...)
}

// Pages returns every page file in the tree as a slash-separated path
// relative to the root, in walk order.
func Pages(pages afero.Fs, ext string) ([]string, error) {
	var out []string
	err := afero.Walk(pages, "/", func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !conventions.IsPageFile(info.Name(), ext) {
			return nil
		}
		out = append(out, strings.Trim(filepath.ToSlash(p), "/"))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking page tree: %w", err)
	}
	return out, nil
}

// Package bundler minifies the JavaScript and CSS assets copied into an
// export using esbuild's Go API (in-process, no child processes).
package bundler

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
)

// loaders maps minifiable extensions to esbuild loaders.
var loaders = map[string]api.Loader{
	".js":  api.LoaderJS,
	".mjs": api.LoaderJS,
	".css": api.LoaderCSS,
}

// CanMinify reports whether Minify understands the file's extension.
func CanMinify(path string) bool {
	_, ok := loaders[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Minify returns the minified form of a JavaScript or CSS file. path is only
// used to pick the loader and to label errors.
func Minify(path string, source []byte) ([]byte, error) {
	loader, ok := loaders[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return nil, fmt.Errorf("minifying %s: unsupported file type", path)
	}

	result := api.Transform(string(source), api.TransformOptions{
		Loader:            loader,
		Sourcefile:        path,
		MinifyWhitespace:  true,
		MinifyIdentifiers: true,
		MinifySyntax:      true,
	})

	if len(result.Errors) > 0 {
		var msgs []string
		for _, msg := range result.Errors {
			text := msg.Text
			if msg.Location != nil {
				text = fmt.Sprintf("%s:%d:%d: %s", msg.Location.File, msg.Location.Line, msg.Location.Column, msg.Text)
			}
			msgs = append(msgs, text)
		}
		return nil, fmt.Errorf("esbuild errors:\n%s", strings.Join(msgs, "\n"))
	}

	return result.Code, nil
}

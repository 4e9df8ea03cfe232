// Package server previews an exported site over HTTP. Build files are served
// as they are on disk, and every page's pretty URL (/product/123) redirects to
// its flat build file with the captured parameters in the query string
// (/product.html?id=123), the same links the rewriter emits.
package server

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"path"
	"time"

	"github.com/spf13/afero"

	"github.com/rafbgarcia/flatsite"
	"github.com/rafbgarcia/flatsite/internal/conventions"
	"github.com/rafbgarcia/flatsite/router"
)

// ShutdownTimeout bounds how long ListenAndServe waits for open requests
// once its context is canceled.
const ShutdownTimeout = 5 * time.Second

// Server serves an output tree and redirects page routes into it.
type Server struct {
	site   *flatsite.Site
	out    afero.Fs
	log    *flatsite.Logger
	router *router.Router
	index  string
}

// New creates a Server for site whose build lives in out. The page tree is
// validated first since chi rejects ambiguous sibling parameters.
func New(site *flatsite.Site, out afero.Fs, log *flatsite.Logger) (*Server, error) {
	if log == nil {
		log = flatsite.Discard()
	}
	if err := site.Validate(); err != nil {
		return nil, err
	}
	entries, err := site.Entries()
	if err != nil {
		return nil, err
	}

	s := &Server{
		site:   site,
		out:    out,
		log:    log,
		router: router.New(logRequests(log)),
		index:  conventions.IndexName + site.Options().OutExt,
	}

	seen := map[string]string{}
	for _, e := range entries {
		pattern, params := conventions.PageRoute(e.Page, site.Options().PageExt)
		if pattern == "/" {
			// Served directly by the index lookup.
			continue
		}
		if prev, ok := seen[pattern]; ok {
			log.Warn("route shadowed", "pattern", pattern, "page", e.Page, "by", prev)
			continue
		}
		seen[pattern] = e.Page
		s.router.Handle(pattern, s.pageHandler(e, params))
	}
	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		if !s.serveFile(w, r) {
			http.NotFound(w, r)
		}
	})
	return s, nil
}

// Routes returns the registered page patterns.
func (s *Server) Routes() []string {
	return s.router.Routes()
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// pageHandler redirects a page route to the page's build file. A request
// for a file that exists in the build is served as is, so "/games/index.html"
// is not captured by "/games/{slug}".
func (s *Server) pageHandler(e flatsite.PageEntry, params []conventions.RouteParam) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.serveFile(w, r) {
			return
		}

		q := url.Values{}
		for _, p := range params {
			q.Set(p.Name, r.PathValue(p.Key))
		}
		for k, vs := range r.URL.Query() {
			q[k] = vs
		}

		target := "/" + e.Dest
		if enc := q.Encode(); enc != "" {
			target += "?" + enc
		}
		http.Redirect(w, r, target, http.StatusFound)
	}
}

// serveFile writes the build file named by the request path, using the
// directory's index file for directories. It reports false when there is
// no such file.
func (s *Server) serveFile(w http.ResponseWriter, r *http.Request) bool {
	name := path.Clean("/" + r.URL.Path)
	info, err := s.out.Stat(name)
	if err == nil && info.IsDir() {
		name = path.Join(name, s.index)
		info, err = s.out.Stat(name)
	}
	if err != nil || info.IsDir() {
		return false
	}

	f, err := s.out.Open(name)
	if err != nil {
		return false
	}
	defer f.Close()
	http.ServeContent(w, r, name, info.ModTime(), f)
	return true
}

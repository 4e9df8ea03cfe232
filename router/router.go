// Package router provides the HTTP router used by the flatsite preview
// server. It wraps chi and bridges chi URL params to Go's
// Request.PathValue() so handlers can call req.PathValue("id") without
// importing chi.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Middleware is a standard Go HTTP middleware.
// It is a type alias so any func(http.Handler) http.Handler is compatible
// without casting.
type Middleware = func(http.Handler) http.Handler

// Router is the HTTP router for the preview server.
type Router struct {
	mux chi.Router
}

// New creates a Router with mws applied to every request, including those
// that match no route.
func New(mws ...Middleware) *Router {
	mux := chi.NewRouter()
	for _, mw := range mws {
		mux.Use(mw)
	}
	return &Router{mux: mux}
}

// bridge copies chi URL params to Go's Request.PathValue(). It wraps each
// handler rather than the mux since params are only known once chi has
// routed the request.
func bridge(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if rctx := chi.RouteContext(req.Context()); rctx != nil {
			for i, key := range rctx.URLParams.Keys {
				if key == "*" {
					continue
				}
				req.SetPathValue(key, rctx.URLParams.Values[i])
			}
		}
		next.ServeHTTP(w, req)
	})
}

// Get registers a handler for GET requests at the given pattern.
func (r *Router) Get(pattern string, handler http.HandlerFunc) {
	r.mux.Get(pattern, bridge(handler).ServeHTTP)
}

// Handle registers an http.Handler at the given pattern.
func (r *Router) Handle(pattern string, handler http.Handler) {
	r.mux.Handle(pattern, bridge(handler))
}

// NotFound sets the handler for requests no pattern matches.
func (r *Router) NotFound(handler http.HandlerFunc) {
	r.mux.NotFound(handler)
}

// Routes returns the registered patterns.
func (r *Router) Routes() []string {
	var out []string
	for _, route := range r.mux.Routes() {
		out = append(out, route.Pattern)
	}
	return out
}

// ServeHTTP implements http.Handler.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

package router

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestPathValueBridge(t *testing.T) {
	r := New()
	var got string
	r.Get("/product/{id}", func(w http.ResponseWriter, req *http.Request) {
		got = req.PathValue("id")
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/product/123", nil))
	if got != "123" {
		t.Fatalf("PathValue(id) = %q, want %q", got, "123")
	}
}

func TestMiddlewareRunsForUnmatched(t *testing.T) {
	var calls int
	count := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			calls++
			next.ServeHTTP(w, req)
		})
	}

	r := New(count)
	r.Get("/about", func(w http.ResponseWriter, req *http.Request) {})
	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/about", nil))

	if rec.Code != http.StatusTeapot {
		t.Errorf("expected the NotFound handler, got status %d", rec.Code)
	}
	if calls != 2 {
		t.Errorf("middleware ran %d times, want 2", calls)
	}
}

func TestRoutes(t *testing.T) {
	r := New()
	r.Get("/a", func(http.ResponseWriter, *http.Request) {})
	r.Handle("/b/{id}", http.NotFoundHandler())

	routes := r.Routes()
	if len(routes) != 2 {
		t.Fatalf("expected 2 routes, got %v", routes)
	}
}

package conventions

import "testing"

func TestParseSegment(t *testing.T) {
	tests := []struct {
		seg  string
		want Segment
	}{
		{"product", Segment{Name: "product"}},
		{"[id]", Segment{Name: "id", Dynamic: true}},
		{"[user_id]", Segment{Name: "user_id", Dynamic: true}},
		{"[post-slug]", Segment{Name: "post-slug", Dynamic: true}},
		{"[]", Segment{Name: "[]"}},
		{"[a b]", Segment{Name: "[a b]"}},
		{"[id", Segment{Name: "[id"}},
		{"id]", Segment{Name: "id]"}},
		{"x[id]", Segment{Name: "x[id]"}},
		{"", Segment{Name: ""}},
	}
	for _, tt := range tests {
		got := ParseSegment(tt.seg)
		if got != tt.want {
			t.Errorf("ParseSegment(%q) = %+v, want %+v", tt.seg, got, tt.want)
		}
	}
}

func TestPagePattern(t *testing.T) {
	tests := []struct {
		page string
		want string
	}{
		{"index.html", "/"},
		{"about.html", "/about"},
		{"product/[id].html", "/product/{id}"},
		{"docs/index.html", "/docs"},
		{"users/[id]/index.html", "/users/{id}"},
		{"users/[id]/edit.html", "/users/{id}/edit"},
		{"org/[org]/members/[member].html", "/org/{org}/members/{member}"},
		{"a/[id]/b/[id].html", "/a/{id_1}/b/{id}"},
		{"[id]/[id]/[id]/index.html", "/{id_0}/{id_1}/{id}"},
	}
	for _, tt := range tests {
		got := PagePattern(tt.page, ".html")
		if got != tt.want {
			t.Errorf("PagePattern(%q) = %q, want %q", tt.page, got, tt.want)
		}
	}
}

func TestPageRouteRepeatedNames(t *testing.T) {
	pattern, params := PageRoute("a/[id]/b/[id]/[slug].html", ".html")

	if pattern != "/a/{id_1}/b/{id}/{slug}" {
		t.Errorf("pattern = %q", pattern)
	}
	want := []RouteParam{
		{Key: "id_1", Name: "id"},
		{Key: "id", Name: "id"},
		{Key: "slug", Name: "slug"},
	}
	if len(params) != len(want) {
		t.Fatalf("params = %v, want %v", params, want)
	}
	for i := range want {
		if params[i] != want[i] {
			t.Errorf("params[%d] = %v, want %v", i, params[i], want[i])
		}
	}
}

func TestPageRouteKeyCollision(t *testing.T) {
	// A real parameter already named id_0 must not be reused.
	pattern, _ := PageRoute("[id]/[id_0]/[id].html", ".html")
	if pattern != "/{id_0_}/{id_0}/{id}" {
		t.Errorf("pattern = %q", pattern)
	}
}

func TestIsPageFile(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"index.html", true},
		{"[id].html", true},
		{".html", false},
		{"style.css", false},
		{"index.htm", false},
	}
	for _, tt := range tests {
		got := IsPageFile(tt.name, ".html")
		if got != tt.want {
			t.Errorf("IsPageFile(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestIsAssetPath(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"public", true},
		{"public/logo.png", true},
		{"api/products.json", true},
		{"publicity/index.html", false},
		{"product/1", false},
		{"", false},
	}
	for _, tt := range tests {
		got := IsAssetPath(tt.path, DefaultAssetDirs)
		if got != tt.want {
			t.Errorf("IsAssetPath(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

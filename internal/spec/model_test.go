package spec

import "testing"

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "trailing slash", in: "/users/", want: "/users"},
		{name: "double trailing slash", in: "/users//", want: "/users"},
		{name: "root", in: "/", want: "/"},
		{name: "empty", in: "", want: "/"},
		{name: "missing leading slash", in: "users", want: "/users"},
		{name: "case preserved", in: "/Users/Active/", want: "/Users/Active"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizePath(tt.in); got != tt.want {
				t.Errorf("NormalizePath(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestIdentity(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
		want   string
	}{
		{name: "simple", method: "get", path: "/users", want: "GET /users"},
		{name: "placeholder collapsed", method: "GET", path: "/users/{id}", want: "GET /users/{}"},
		{name: "param name irrelevant", method: "GET", path: "/users/{userId}", want: "GET /users/{}"},
		{name: "trailing slash stripped", method: "POST", path: "/users/", want: "POST /users"},
		{name: "nested placeholders", method: "put", path: "/a/{x}/b/{y}", want: "PUT /a/{}/b/{}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Identity(tt.method, tt.path); got != tt.want {
				t.Errorf("Identity(%q, %q) = %q, want %q", tt.method, tt.path, got, tt.want)
			}
		})
	}
}

func TestSegments(t *testing.T) {
	got := Segments("/users/{id}/posts")
	want := []string{"users", "{id}", "posts"}
	if len(got) != len(want) {
		t.Fatalf("Segments() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Segments()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	if Segments("/") != nil {
		t.Errorf("Segments(\"/\") = %v, want nil", Segments("/"))
	}
}

func TestSchemaNodeHelpers(t *testing.T) {
	node := &SchemaNode{
		Type:     "object",
		Fields:   map[string]*SchemaNode{"b": {Type: "string"}, "a": {Type: "integer"}},
		Required: []string{"a"},
	}

	names := node.FieldNames()
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Errorf("FieldNames() = %v, want [a b]", names)
	}
	if !node.IsRequired("a") || node.IsRequired("b") {
		t.Errorf("IsRequired: got a=%v b=%v, want true false", node.IsRequired("a"), node.IsRequired("b"))
	}
}

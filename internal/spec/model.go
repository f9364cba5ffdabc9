package spec

import (
	"sort"
	"strings"
)

// Parameter locations.
const (
	InPath   = "path"
	InQuery  = "query"
	InHeader = "header"
	InBody   = "body"
)

// SchemaNode is the resolved, reference-free representation of a type.
// Exactly one of Fields/Items is populated for object/array types;
// primitives carry Type and optionally Format.
type SchemaNode struct {
	Type      string                 `json:"type"`
	Format    string                 `json:"format,omitempty"`
	Fields    map[string]*SchemaNode `json:"fields,omitempty"`
	Required  []string               `json:"required,omitempty"`
	Items     *SchemaNode            `json:"items,omitempty"`
	Ref       string                 `json:"ref,omitempty"`
	Recursive bool                   `json:"recursive,omitempty"`
}

// FieldNames returns the object field names in sorted order.
func (n *SchemaNode) FieldNames() []string {
	names := make([]string, 0, len(n.Fields))
	for name := range n.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsRequired reports whether the named field is in the required list.
func (n *SchemaNode) IsRequired(field string) bool {
	for _, r := range n.Required {
		if r == field {
			return true
		}
	}
	return false
}

// Parameter represents a single operation parameter.
type Parameter struct {
	Name     string      `json:"name"`
	In       string      `json:"in"`
	Required bool        `json:"required"`
	Schema   *SchemaNode `json:"schema,omitempty"`
}

// Endpoint is a unique (method, path template) pair with its schemas.
// Path keeps the original parameter names for display and generation;
// Identity collapses every placeholder to "{}" and is the uniqueness key.
type Endpoint struct {
	Method      string              `json:"method"`
	Path        string              `json:"path"`
	Identity    string              `json:"identity"`
	Summary     string              `json:"summary,omitempty"`
	Parameters  []Parameter         `json:"parameters,omitempty"`
	RequestBody *SchemaNode         `json:"request_body,omitempty"`
	Responses   map[int]*SchemaNode `json:"responses,omitempty"`
}

// Model is the canonical, reference-resolved view of a specification.
// It is immutable once built; downstream consumers only read it.
type Model struct {
	Title     string               `json:"title"`
	Version   string               `json:"version"`
	Endpoints map[string]*Endpoint `json:"endpoints"`
}

// Keys returns all endpoint identities in sorted order.
func (m *Model) Keys() []string {
	keys := make([]string, 0, len(m.Endpoints))
	for k := range m.Endpoints {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of declared endpoints.
func (m *Model) Len() int {
	return len(m.Endpoints)
}

// NormalizePath strips trailing slashes from a path template, keeping
// the root path intact.
func NormalizePath(path string) string {
	if path == "" {
		return "/"
	}
	for len(path) > 1 && strings.HasSuffix(path, "/") {
		path = strings.TrimSuffix(path, "/")
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return path
}

// IdentityPath collapses every {param} segment of a normalized path
// template to a bare "{}" placeholder token.
func IdentityPath(path string) string {
	segments := Segments(path)
	for i, seg := range segments {
		if IsPlaceholder(seg) {
			segments[i] = "{}"
		}
	}
	return "/" + strings.Join(segments, "/")
}

// Identity builds the endpoint identity key for a method and path template.
func Identity(method, path string) string {
	return strings.ToUpper(method) + " " + IdentityPath(NormalizePath(path))
}

// Segments splits a path into its slash-delimited segments. The root
// path yields an empty slice.
func Segments(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

// IsPlaceholder reports whether a path segment is a {param} placeholder.
func IsPlaceholder(segment string) bool {
	return strings.HasPrefix(segment, "{") && strings.HasSuffix(segment, "}")
}

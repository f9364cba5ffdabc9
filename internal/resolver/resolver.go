// Package resolver inlines schema references into self-contained nodes.
// A node resolved from a named reference keeps the reference token, so
// exporters can reconstruct the component it came from.
//
// Cycles are handled with an explicit resolution stack: once a reference
// token has been entered MaxCycleDepth times, further expansion stops and
// a terminal placeholder node tagged recursive is substituted, so the
// resolver always terminates. Each distinct reference is converted at most
// once via memoization.
package resolver

import (
	"sort"

	"github.com/getkin/kin-openapi/openapi3"

	"swagger-surface/internal/spec"
)

// Options configures reference resolution.
type Options struct {
	// MaxCycleDepth is how many times a cyclic reference is expanded
	// before the recursive placeholder is substituted.
	MaxCycleDepth int
}

// DefaultOptions returns the default resolution options.
func DefaultOptions() Options {
	return Options{MaxCycleDepth: 1}
}

// Resolver converts openapi3 schema references into canonical schema nodes.
type Resolver struct {
	opts  Options
	memo  map[string]*spec.SchemaNode
	stack []string
}

// New creates a resolver with the given options.
func New(opts Options) *Resolver {
	if opts.MaxCycleDepth < 1 {
		opts.MaxCycleDepth = 1
	}
	return &Resolver{
		opts: opts,
		memo: make(map[string]*spec.SchemaNode),
	}
}

// Resolve converts a schema reference into a fully inlined schema node.
// A dangling reference yields a spec.RefError. A nil reference resolves
// to nil (no schema declared).
func (r *Resolver) Resolve(ref *openapi3.SchemaRef) (*spec.SchemaNode, error) {
	if ref == nil {
		return nil, nil
	}

	token := ref.Ref
	if token == "" {
		if ref.Value == nil {
			return nil, nil
		}
		return r.convert(ref.Value)
	}

	if ref.Value == nil {
		return nil, &spec.RefError{Ref: token}
	}
	if node, ok := r.memo[token]; ok {
		return node, nil
	}
	if r.occurrences(token) >= r.opts.MaxCycleDepth {
		return &spec.SchemaNode{Type: "object", Ref: token, Recursive: true}, nil
	}

	r.stack = append(r.stack, token)
	node, err := r.convert(ref.Value)
	r.stack = r.stack[:len(r.stack)-1]
	if err != nil {
		return nil, err
	}
	node.Ref = token

	// Memoize only once the token is fully off the stack; a node resolved
	// inside its own cycle has a truncated shape.
	if r.occurrences(token) == 0 {
		r.memo[token] = node
	}
	return node, nil
}

// occurrences counts how many times a token is currently on the
// resolution stack.
func (r *Resolver) occurrences(token string) int {
	count := 0
	for _, t := range r.stack {
		if t == token {
			count++
		}
	}
	return count
}

// convert maps one openapi3 schema onto a canonical node, resolving
// nested references along the way.
func (r *Resolver) convert(schema *openapi3.Schema) (*spec.SchemaNode, error) {
	if len(schema.AllOf) > 0 {
		return r.mergeAllOf(schema)
	}

	node := &spec.SchemaNode{
		Type:   schemaType(schema),
		Format: schema.Format,
	}

	switch node.Type {
	case "object":
		if len(schema.Properties) > 0 {
			node.Fields = make(map[string]*spec.SchemaNode, len(schema.Properties))
			for name, prop := range schema.Properties {
				field, err := r.Resolve(prop)
				if err != nil {
					return nil, err
				}
				node.Fields[name] = field
			}
		}
		if len(schema.Required) > 0 {
			node.Required = append([]string(nil), schema.Required...)
			sort.Strings(node.Required)
		}
	case "array":
		items, err := r.Resolve(schema.Items)
		if err != nil {
			return nil, err
		}
		node.Items = items
	}

	return node, nil
}

// mergeAllOf flattens an allOf composition into a single object node.
// openapi2conv produces these for v2 schema inheritance.
func (r *Resolver) mergeAllOf(schema *openapi3.Schema) (*spec.SchemaNode, error) {
	node := &spec.SchemaNode{
		Type:   "object",
		Fields: make(map[string]*spec.SchemaNode),
	}

	members := make([]*openapi3.SchemaRef, 0, len(schema.AllOf)+1)
	members = append(members, schema.AllOf...)
	if len(schema.Properties) > 0 || len(schema.Required) > 0 {
		own := *schema
		own.AllOf = nil
		members = append(members, &openapi3.SchemaRef{Value: &own})
	}

	for _, member := range members {
		part, err := r.Resolve(member)
		if err != nil {
			return nil, err
		}
		if part == nil {
			continue
		}
		for name, field := range part.Fields {
			node.Fields[name] = field
		}
		node.Required = append(node.Required, part.Required...)
	}

	if len(node.Fields) == 0 {
		node.Fields = nil
	}
	if len(node.Required) > 0 {
		sort.Strings(node.Required)
		node.Required = dedupe(node.Required)
	}
	return node, nil
}

func dedupe(sorted []string) []string {
	out := sorted[:0]
	for i, s := range sorted {
		if i == 0 || s != sorted[i-1] {
			out = append(out, s)
		}
	}
	return out
}

// schemaType picks the canonical type name for a schema, inferring
// object/array when the document omits an explicit type.
func schemaType(schema *openapi3.Schema) string {
	if schema.Type != nil {
		for _, t := range schema.Type.Slice() {
			if t != "null" {
				return t
			}
		}
	}
	if schema.Items != nil {
		return "array"
	}
	return "object"
}

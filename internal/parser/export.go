package parser

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"

	"swagger-surface/internal/spec"
)

const schemaRefPrefix = "#/components/schemas/"

// Export serializes a canonical model back into a minimal OpenAPI 3.0
// JSON document. Schemas resolved from a named reference are hoisted
// into components/schemas and referenced from every use site, so cyclic
// shapes survive and re-parsing the output yields an identical model.
func Export(m *spec.Model) ([]byte, error) {
	e := &exporter{
		schemas: make(map[string]interface{}),
		open:    make(map[string]bool),
	}

	paths := make(map[string]interface{})
	for _, key := range m.Keys() {
		endpoint := m.Endpoints[key]
		item, ok := paths[endpoint.Path].(map[string]interface{})
		if !ok {
			item = make(map[string]interface{})
			paths[endpoint.Path] = item
		}
		item[strings.ToLower(endpoint.Method)] = e.operation(endpoint)
	}

	doc := map[string]interface{}{
		"openapi": "3.0.3",
		"info": map[string]interface{}{
			"title":   m.Title,
			"version": m.Version,
		},
		"paths": paths,
	}
	if len(e.schemas) > 0 {
		doc["components"] = map[string]interface{}{"schemas": e.schemas}
	}
	return json.MarshalIndent(doc, "", "  ")
}

// exporter accumulates the component definitions referenced by the
// exported paths.
type exporter struct {
	schemas map[string]interface{}
	open    map[string]bool
}

func (e *exporter) operation(endpoint *spec.Endpoint) map[string]interface{} {
	op := make(map[string]interface{})
	if endpoint.Summary != "" {
		op["summary"] = endpoint.Summary
	}

	if len(endpoint.Parameters) > 0 {
		params := make([]interface{}, 0, len(endpoint.Parameters))
		for _, param := range endpoint.Parameters {
			entry := map[string]interface{}{
				"name":     param.Name,
				"in":       param.In,
				"required": param.Required,
			}
			if schema := e.schema(param.Schema); schema != nil {
				entry["schema"] = schema
			}
			params = append(params, entry)
		}
		op["parameters"] = params
	}

	if body := e.schema(endpoint.RequestBody); body != nil {
		op["requestBody"] = map[string]interface{}{
			"content": map[string]interface{}{
				"application/json": map[string]interface{}{"schema": body},
			},
		}
	}

	responses := make(map[string]interface{})
	var codes []int
	for code := range endpoint.Responses {
		codes = append(codes, code)
	}
	sort.Ints(codes)
	for _, code := range codes {
		entry := map[string]interface{}{"description": ""}
		if schema := e.schema(endpoint.Responses[code]); schema != nil {
			entry["content"] = map[string]interface{}{
				"application/json": map[string]interface{}{"schema": schema},
			}
		}
		responses[strconv.Itoa(code)] = entry
	}
	op["responses"] = responses

	return op
}

// schema renders one node; named nodes become a $ref with their
// definition registered under components. A node whose definition is
// already being rendered (a cycle, including the recursion placeholder
// itself) emits only the $ref.
func (e *exporter) schema(node *spec.SchemaNode) map[string]interface{} {
	if node == nil {
		return nil
	}
	name, named := strings.CutPrefix(node.Ref, schemaRefPrefix)
	if !named || name == "" || strings.Contains(name, "/") {
		return e.definition(node)
	}
	if _, defined := e.schemas[name]; !defined && !e.open[name] && !node.Recursive {
		e.open[name] = true
		e.schemas[name] = e.definition(node)
		delete(e.open, name)
	}
	return map[string]interface{}{"$ref": node.Ref}
}

// definition renders a node's own structure, dispatching nested nodes
// back through schema so named children stay references.
func (e *exporter) definition(node *spec.SchemaNode) map[string]interface{} {
	out := map[string]interface{}{"type": node.Type}
	if node.Format != "" {
		out["format"] = node.Format
	}
	if len(node.Fields) > 0 {
		props := make(map[string]interface{}, len(node.Fields))
		for _, name := range node.FieldNames() {
			props[name] = e.schema(node.Fields[name])
		}
		out["properties"] = props
	}
	if len(node.Required) > 0 {
		required := make([]interface{}, len(node.Required))
		for i, name := range node.Required {
			required[i] = name
		}
		out["required"] = required
	}
	if node.Items != nil {
		out["items"] = e.schema(node.Items)
	}
	return out
}

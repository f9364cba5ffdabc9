// Package testdata synthesizes deterministic sample values from the
// canonical model, used to pre-fill generated test stubs.
package testdata

import (
	"swagger-surface/internal/spec"
)

// EndpointData holds ready-to-edit sample inputs for one endpoint.
type EndpointData struct {
	PathParams  map[string]interface{} `json:"path_params,omitempty"`
	QueryParams map[string]interface{} `json:"query_params,omitempty"`
	Headers     map[string]string      `json:"headers,omitempty"`
	Body        interface{}            `json:"body,omitempty"`
}

// Template maps endpoint identities to sample inputs for a whole model.
type Template struct {
	Endpoints map[string]EndpointData `json:"endpoints"`
}

// ForModel builds a template entry for every endpoint in the model.
func ForModel(m *spec.Model) *Template {
	template := &Template{
		Endpoints: make(map[string]EndpointData, m.Len()),
	}
	for _, key := range m.Keys() {
		template.Endpoints[key] = ForEndpoint(m.Endpoints[key])
	}
	return template
}

// ForEndpoint builds sample inputs for one endpoint.
func ForEndpoint(endpoint *spec.Endpoint) EndpointData {
	data := EndpointData{
		Headers: map[string]string{"Content-Type": "application/json"},
	}
	for _, param := range endpoint.Parameters {
		switch param.In {
		case spec.InPath:
			if data.PathParams == nil {
				data.PathParams = make(map[string]interface{})
			}
			data.PathParams[param.Name] = Sample(param.Schema)
		case spec.InQuery:
			if data.QueryParams == nil {
				data.QueryParams = make(map[string]interface{})
			}
			data.QueryParams[param.Name] = Sample(param.Schema)
		case spec.InHeader:
			data.Headers[param.Name] = ""
		}
	}
	if endpoint.RequestBody != nil {
		data.Body = Sample(endpoint.RequestBody)
	}
	return data
}

// Sample produces a zero-ish value of the node's shape: empty string,
// zero numbers, false booleans, single-element arrays, objects built
// field by field. Recursion placeholders collapse to an empty object.
func Sample(node *spec.SchemaNode) interface{} {
	if node == nil || node.Recursive {
		return map[string]interface{}{}
	}
	switch node.Type {
	case "string":
		return ""
	case "integer", "int", "long":
		return 0
	case "number":
		return 0.0
	case "boolean":
		return false
	case "array":
		return []interface{}{Sample(node.Items)}
	case "object":
		sample := make(map[string]interface{}, len(node.Fields))
		for _, name := range node.FieldNames() {
			sample[name] = Sample(node.Fields[name])
		}
		return sample
	default:
		return map[string]interface{}{}
	}
}

package testdata

import (
	"reflect"
	"testing"

	"swagger-surface/internal/spec"
)

func TestSample(t *testing.T) {
	tests := []struct {
		name string
		node *spec.SchemaNode
		want interface{}
	}{
		{name: "nil", node: nil, want: map[string]interface{}{}},
		{name: "string", node: &spec.SchemaNode{Type: "string"}, want: ""},
		{name: "integer", node: &spec.SchemaNode{Type: "integer"}, want: 0},
		{name: "number", node: &spec.SchemaNode{Type: "number"}, want: 0.0},
		{name: "boolean", node: &spec.SchemaNode{Type: "boolean"}, want: false},
		{
			name: "array of strings",
			node: &spec.SchemaNode{Type: "array", Items: &spec.SchemaNode{Type: "string"}},
			want: []interface{}{""},
		},
		{
			name: "nested object",
			node: &spec.SchemaNode{
				Type: "object",
				Fields: map[string]*spec.SchemaNode{
					"name": {Type: "string"},
					"tags": {Type: "array", Items: &spec.SchemaNode{Type: "string"}},
					"address": {
						Type:   "object",
						Fields: map[string]*spec.SchemaNode{"city": {Type: "string"}},
					},
				},
			},
			want: map[string]interface{}{
				"name": "",
				"tags": []interface{}{""},
				"address": map[string]interface{}{
					"city": "",
				},
			},
		},
		{
			name: "recursion placeholder",
			node: &spec.SchemaNode{Type: "object", Ref: "#/components/schemas/Node", Recursive: true},
			want: map[string]interface{}{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sample(tt.node); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Sample() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestForEndpoint(t *testing.T) {
	endpoint := &spec.Endpoint{
		Method:   "POST",
		Path:     "/users/{id}/notes",
		Identity: "POST /users/{}/notes",
		Parameters: []spec.Parameter{
			{Name: "id", In: spec.InPath, Required: true, Schema: &spec.SchemaNode{Type: "integer"}},
			{Name: "draft", In: spec.InQuery, Schema: &spec.SchemaNode{Type: "boolean"}},
			{Name: "X-Request-ID", In: spec.InHeader},
		},
		RequestBody: &spec.SchemaNode{
			Type:   "object",
			Fields: map[string]*spec.SchemaNode{"text": {Type: "string"}},
		},
	}

	data := ForEndpoint(endpoint)

	if !reflect.DeepEqual(data.PathParams, map[string]interface{}{"id": 0}) {
		t.Errorf("path params = %#v", data.PathParams)
	}
	if !reflect.DeepEqual(data.QueryParams, map[string]interface{}{"draft": false}) {
		t.Errorf("query params = %#v", data.QueryParams)
	}
	if data.Headers["Content-Type"] != "application/json" {
		t.Errorf("headers = %#v, want a json content type", data.Headers)
	}
	if _, ok := data.Headers["X-Request-ID"]; !ok {
		t.Errorf("headers = %#v, want declared header present", data.Headers)
	}
	if !reflect.DeepEqual(data.Body, map[string]interface{}{"text": ""}) {
		t.Errorf("body = %#v", data.Body)
	}
}

func TestForEndpointNoInputs(t *testing.T) {
	data := ForEndpoint(&spec.Endpoint{Method: "GET", Path: "/status", Identity: "GET /status"})

	if data.PathParams != nil || data.QueryParams != nil || data.Body != nil {
		t.Errorf("data = %#v, want only default headers", data)
	}
}

func TestForModel(t *testing.T) {
	m := &spec.Model{Endpoints: map[string]*spec.Endpoint{
		"GET /users":  {Method: "GET", Path: "/users", Identity: "GET /users"},
		"POST /users": {Method: "POST", Path: "/users", Identity: "POST /users"},
	}}

	template := ForModel(m)

	if len(template.Endpoints) != 2 {
		t.Fatalf("entries = %d, want 2", len(template.Endpoints))
	}
	for _, id := range []string{"GET /users", "POST /users"} {
		if _, ok := template.Endpoints[id]; !ok {
			t.Errorf("missing entry for %s", id)
		}
	}
}

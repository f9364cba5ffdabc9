// Package parser normalizes Swagger/OpenAPI documents into the canonical
// endpoint model.
package parser

import (
	"encoding/json"
	"errors"
	"sort"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi2"
	"github.com/getkin/kin-openapi/openapi2conv"
	"github.com/getkin/kin-openapi/openapi3"

	"swagger-surface/internal/logger"
	"swagger-surface/internal/resolver"
	"swagger-surface/internal/spec"
)

// Options configures the normalizer.
type Options struct {
	Resolver resolver.Options
	Logger   *logger.Logger
}

// Parser turns raw specification documents into canonical models.
type Parser struct {
	opts Options
	log  *logger.Logger
}

// New creates a parser with the given options.
func New(opts Options) *Parser {
	log := opts.Logger
	if log == nil {
		log = logger.NewDefault()
	}
	if opts.Resolver.MaxCycleDepth < 1 {
		opts.Resolver = resolver.DefaultOptions()
	}
	return &Parser{
		opts: opts,
		log:  log.WithComponent("parser"),
	}
}

// Parse normalizes a raw specification document into a canonical model.
// The format is an explicit input; the only sniffing performed is reading
// the top-level swagger/openapi version field. On structural violations
// every invalid endpoint found in the document is reported, and no
// partial model is returned.
func (p *Parser) Parse(data []byte, format Format) (*spec.Model, error) {
	codec, err := CodecFor(format)
	if err != nil {
		return nil, err
	}

	tree, normalized, err := codec.Decode(data)
	if err != nil {
		return nil, &spec.ParseError{Format: codec.Name(), Err: err}
	}

	doc, err := p.loadDocument(tree, normalized, codec.Name())
	if err != nil {
		return nil, err
	}

	return p.normalize(doc)
}

// loadDocument dispatches on the declared specification version and
// produces a reference-resolved openapi3 document.
func (p *Parser) loadDocument(tree map[string]interface{}, normalized []byte, format string) (*openapi3.T, error) {
	if v, ok := tree["openapi"].(string); ok {
		if !strings.HasPrefix(v, "3.") {
			return nil, &spec.VersionError{Version: v}
		}
		doc, err := openapi3.NewLoader().LoadFromData(normalized)
		if err != nil {
			return nil, &spec.ParseError{Format: format, Err: err}
		}
		return doc, nil
	}

	if v, ok := tree["swagger"].(string); ok {
		if v != "2.0" {
			return nil, &spec.VersionError{Version: v}
		}
		var doc2 openapi2.T
		if err := json.Unmarshal(normalized, &doc2); err != nil {
			return nil, &spec.ParseError{Format: format, Err: err}
		}
		doc3, err := openapi2conv.ToV3(&doc2)
		if err != nil {
			return nil, &spec.ParseError{Format: format, Err: err}
		}
		// Round-trip the converted document through the loader so every
		// internal reference carries a resolved value.
		converted, err := doc3.MarshalJSON()
		if err != nil {
			return nil, &spec.ParseError{Format: format, Err: err}
		}
		doc, err := openapi3.NewLoader().LoadFromData(converted)
		if err != nil {
			return nil, &spec.ParseError{Format: format, Err: err}
		}
		return doc, nil
	}

	return nil, &spec.VersionError{}
}

// normalize walks the document's path-item table into endpoint records.
func (p *Parser) normalize(doc *openapi3.T) (*spec.Model, error) {
	model := &spec.Model{
		Endpoints: make(map[string]*spec.Endpoint),
	}
	if doc.Info != nil {
		model.Title = doc.Info.Title
		model.Version = doc.Info.Version
	}

	violations := &spec.SchemaError{}
	res := resolver.New(p.opts.Resolver)

	// Tracked separately from model.Endpoints: an endpoint skipped for a
	// dangling reference still claims its identity, so a later duplicate
	// is flagged rather than silently taking the slot.
	seen := make(map[string]struct{})

	var pathKeys []string
	pathItems := map[string]*openapi3.PathItem{}
	if doc.Paths != nil {
		pathItems = doc.Paths.Map()
	}
	for path := range pathItems {
		pathKeys = append(pathKeys, path)
	}
	sort.Strings(pathKeys)

	for _, rawPath := range pathKeys {
		pathItem := pathItems[rawPath]
		if pathItem == nil {
			continue
		}

		ops := pathItem.Operations()
		var methods []string
		for method := range ops {
			methods = append(methods, method)
		}
		sort.Strings(methods)

		for _, method := range methods {
			op := ops[method]
			if op == nil {
				continue
			}

			path := spec.NormalizePath(rawPath)
			identity := spec.Identity(method, path)

			if _, dup := seen[identity]; dup {
				violations.Add(identity, "duplicate endpoint after path normalization")
				continue
			}
			seen[identity] = struct{}{}
			if op.Responses == nil || op.Responses.Len() == 0 {
				violations.Add(identity, "operation declares no responses")
				continue
			}

			endpoint, err := p.buildEndpoint(res, identity, method, path, pathItem, op)
			if err != nil {
				var refErr *spec.RefError
				if errors.As(err, &refErr) {
					// Fatal to this endpoint only.
					p.log.WithError(err).Warnf("skipping %s", identity)
					continue
				}
				return nil, err
			}
			model.Endpoints[identity] = endpoint
		}
	}

	if !violations.Empty() {
		return nil, violations
	}

	p.log.Infof("normalized %d endpoints from %s %s", model.Len(), model.Title, model.Version)
	return model, nil
}

// buildEndpoint extracts parameters and request/response schemas for one
// (method, path) operation.
func (p *Parser) buildEndpoint(res *resolver.Resolver, identity, method, path string, pathItem *openapi3.PathItem, op *openapi3.Operation) (*spec.Endpoint, error) {
	endpoint := &spec.Endpoint{
		Method:   strings.ToUpper(method),
		Path:     path,
		Identity: identity,
		Summary:  op.Summary,
	}

	for _, param := range mergeParameters(pathItem.Parameters, op.Parameters) {
		if param.Value == nil {
			return nil, &spec.RefError{Ref: param.Ref}
		}
		schema, err := res.Resolve(param.Value.Schema)
		if err != nil {
			return nil, err
		}
		endpoint.Parameters = append(endpoint.Parameters, spec.Parameter{
			Name:     param.Value.Name,
			In:       param.Value.In,
			Required: param.Value.Required || param.Value.In == spec.InPath,
			Schema:   schema,
		})
	}

	if op.RequestBody != nil && op.RequestBody.Value != nil {
		schema, err := res.Resolve(bodySchema(op.RequestBody.Value.Content))
		if err != nil {
			return nil, err
		}
		endpoint.RequestBody = schema
	}

	endpoint.Responses = make(map[int]*spec.SchemaNode)
	for status, response := range op.Responses.Map() {
		code, err := strconv.Atoi(status)
		if err != nil || response.Value == nil {
			// "default" and other non-numeric response keys are skipped.
			continue
		}
		schema, err := res.Resolve(bodySchema(response.Value.Content))
		if err != nil {
			return nil, err
		}
		endpoint.Responses[code] = schema
	}

	return endpoint, nil
}

// mergeParameters combines path-item level parameters with operation
// level ones; the operation wins on a (name, location) collision.
func mergeParameters(shared, own openapi3.Parameters) openapi3.Parameters {
	merged := make(openapi3.Parameters, 0, len(shared)+len(own))
	overridden := func(param *openapi3.ParameterRef) bool {
		if param.Value == nil {
			return false
		}
		for _, o := range own {
			if o.Value != nil && o.Value.Name == param.Value.Name && o.Value.In == param.Value.In {
				return true
			}
		}
		return false
	}
	for _, param := range shared {
		if !overridden(param) {
			merged = append(merged, param)
		}
	}
	return append(merged, own...)
}

// bodySchema picks the schema of the preferred media type, favoring
// application/json and falling back to the first content type in sorted
// order for determinism.
func bodySchema(content openapi3.Content) *openapi3.SchemaRef {
	if content == nil {
		return nil
	}
	if mt, ok := content["application/json"]; ok && mt != nil {
		return mt.Schema
	}
	var types []string
	for name := range content {
		types = append(types, name)
	}
	sort.Strings(types)
	for _, name := range types {
		if mt := content[name]; mt != nil && mt.Schema != nil {
			return mt.Schema
		}
	}
	return nil
}

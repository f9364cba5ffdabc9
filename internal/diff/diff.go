// Package diff compares two canonical models and produces a structured
// change set.
package diff

import (
	"fmt"
	"sort"

	"swagger-surface/internal/spec"
)

// Change classifications.
const (
	Added    = "ADDED"
	Removed  = "REMOVED"
	Modified = "MODIFIED"
)

// Delta kinds for MODIFIED records.
const (
	ParamAdded           = "param_added"
	ParamRemoved         = "param_removed"
	ParamRetyped         = "param_retyped"
	ParamMoved           = "param_moved"
	ParamRequiredFlipped = "param_required_flipped"
	FieldAdded           = "field_added"
	FieldRemoved         = "field_removed"
	FieldRetyped         = "field_retyped"
	FieldRequiredFlipped = "field_required_flipped"
	BodyAdded            = "request_body_added"
	BodyRemoved          = "request_body_removed"
	ResponseAdded        = "response_added"
	ResponseRemoved      = "response_removed"
)

// Delta is one field-level divergence inside a modified endpoint.
type Delta struct {
	Kind string `json:"kind"`
	Path string `json:"path"`
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`
}

// Change is one classified record in a change set.
type Change struct {
	Type     string  `json:"type"`
	Identity string  `json:"identity"`
	Deltas   []Delta `json:"deltas,omitempty"`
}

// ChangeSet is the full structured difference between two models.
type ChangeSet struct {
	Base    string   `json:"base"`
	Head    string   `json:"head"`
	Changes []Change `json:"changes"`
}

// Empty reports whether the two models were identical.
func (cs *ChangeSet) Empty() bool {
	return len(cs.Changes) == 0
}

// ByType returns the changes of one classification, in identity order.
func (cs *ChangeSet) ByType(kind string) []Change {
	var out []Change
	for _, c := range cs.Changes {
		if c.Type == kind {
			out = append(out, c)
		}
	}
	return out
}

// Compare diffs base against head. The result is deterministic and
// order-independent: it iterates the sorted union of endpoint identities.
func Compare(base, head *spec.Model) *ChangeSet {
	cs := &ChangeSet{
		Base: tag(base),
		Head: tag(head),
	}

	identities := map[string]struct{}{}
	for k := range base.Endpoints {
		identities[k] = struct{}{}
	}
	for k := range head.Endpoints {
		identities[k] = struct{}{}
	}
	keys := make([]string, 0, len(identities))
	for k := range identities {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, identity := range keys {
		b, inBase := base.Endpoints[identity]
		h, inHead := head.Endpoints[identity]
		switch {
		case !inBase:
			cs.Changes = append(cs.Changes, Change{Type: Added, Identity: identity})
		case !inHead:
			cs.Changes = append(cs.Changes, Change{Type: Removed, Identity: identity})
		default:
			if deltas := compareEndpoints(b, h); len(deltas) > 0 {
				cs.Changes = append(cs.Changes, Change{Type: Modified, Identity: identity, Deltas: deltas})
			}
		}
	}

	return cs
}

func tag(m *spec.Model) string {
	if m.Title == "" && m.Version == "" {
		return ""
	}
	return fmt.Sprintf("%s %s", m.Title, m.Version)
}

// compareEndpoints lists every divergence between two endpoints sharing
// an identity, not just the first.
func compareEndpoints(base, head *spec.Endpoint) []Delta {
	var deltas []Delta

	deltas = append(deltas, compareParams(base.Parameters, head.Parameters)...)

	switch {
	case base.RequestBody == nil && head.RequestBody != nil:
		deltas = append(deltas, Delta{Kind: BodyAdded, Path: "request_body"})
	case base.RequestBody != nil && head.RequestBody == nil:
		deltas = append(deltas, Delta{Kind: BodyRemoved, Path: "request_body"})
	case base.RequestBody != nil:
		deltas = append(deltas, compareSchemas("request_body", base.RequestBody, head.RequestBody)...)
	}

	codes := map[int]struct{}{}
	for code := range base.Responses {
		codes[code] = struct{}{}
	}
	for code := range head.Responses {
		codes[code] = struct{}{}
	}
	sorted := make([]int, 0, len(codes))
	for code := range codes {
		sorted = append(sorted, code)
	}
	sort.Ints(sorted)

	for _, code := range sorted {
		path := fmt.Sprintf("responses.%d", code)
		b, inBase := base.Responses[code]
		h, inHead := head.Responses[code]
		switch {
		case !inBase:
			deltas = append(deltas, Delta{Kind: ResponseAdded, Path: path})
		case !inHead:
			deltas = append(deltas, Delta{Kind: ResponseRemoved, Path: path})
		case b == nil && h != nil:
			deltas = append(deltas, Delta{Kind: FieldAdded, Path: path, To: typeLabel(h)})
		case b != nil && h == nil:
			deltas = append(deltas, Delta{Kind: FieldRemoved, Path: path, From: typeLabel(b)})
		case b != nil:
			deltas = append(deltas, compareSchemas(path, b, h)...)
		}
	}

	return deltas
}

// compareParams matches parameters by name; order is irrelevant.
func compareParams(base, head []spec.Parameter) []Delta {
	baseByName := map[string]spec.Parameter{}
	for _, p := range base {
		baseByName[p.Name] = p
	}
	headByName := map[string]spec.Parameter{}
	for _, p := range head {
		headByName[p.Name] = p
	}

	names := map[string]struct{}{}
	for name := range baseByName {
		names[name] = struct{}{}
	}
	for name := range headByName {
		names[name] = struct{}{}
	}
	sorted := make([]string, 0, len(names))
	for name := range names {
		sorted = append(sorted, name)
	}
	sort.Strings(sorted)

	var deltas []Delta
	for _, name := range sorted {
		path := "parameters." + name
		b, inBase := baseByName[name]
		h, inHead := headByName[name]
		switch {
		case !inBase:
			deltas = append(deltas, Delta{Kind: ParamAdded, Path: path, To: typeLabel(h.Schema)})
		case !inHead:
			deltas = append(deltas, Delta{Kind: ParamRemoved, Path: path, From: typeLabel(b.Schema)})
		default:
			if b.In != h.In {
				deltas = append(deltas, Delta{Kind: ParamMoved, Path: path, From: b.In, To: h.In})
			}
			if b.Required != h.Required {
				deltas = append(deltas, Delta{Kind: ParamRequiredFlipped, Path: path, From: requiredLabel(b.Required), To: requiredLabel(h.Required)})
			}
			deltas = append(deltas, compareSchemas(path, b.Schema, h.Schema)...)
		}
	}
	return deltas
}

// compareSchemas walks two schema trees by field path. Field order never
// matters: two schemas are equal iff their field-name sets match and
// every shared field is recursively equal.
func compareSchemas(path string, base, head *spec.SchemaNode) []Delta {
	if base == nil && head == nil {
		return nil
	}
	if base == nil {
		return []Delta{{Kind: FieldAdded, Path: path, To: typeLabel(head)}}
	}
	if head == nil {
		return []Delta{{Kind: FieldRemoved, Path: path, From: typeLabel(base)}}
	}
	if typeLabel(base) != typeLabel(head) {
		return []Delta{{Kind: FieldRetyped, Path: path, From: typeLabel(base), To: typeLabel(head)}}
	}

	var deltas []Delta
	switch base.Type {
	case "object":
		names := map[string]struct{}{}
		for name := range base.Fields {
			names[name] = struct{}{}
		}
		for name := range head.Fields {
			names[name] = struct{}{}
		}
		sorted := make([]string, 0, len(names))
		for name := range names {
			sorted = append(sorted, name)
		}
		sort.Strings(sorted)

		for _, name := range sorted {
			fieldPath := path + "." + name
			b, inBase := base.Fields[name]
			h, inHead := head.Fields[name]
			switch {
			case !inBase:
				deltas = append(deltas, Delta{Kind: FieldAdded, Path: fieldPath, To: typeLabel(h)})
			case !inHead:
				deltas = append(deltas, Delta{Kind: FieldRemoved, Path: fieldPath, From: typeLabel(b)})
			default:
				if base.IsRequired(name) != head.IsRequired(name) {
					deltas = append(deltas, Delta{Kind: FieldRequiredFlipped, Path: fieldPath, From: requiredLabel(base.IsRequired(name)), To: requiredLabel(head.IsRequired(name))})
				}
				deltas = append(deltas, compareSchemas(fieldPath, b, h)...)
			}
		}
	case "array":
		deltas = append(deltas, compareSchemas(path+"[]", base.Items, head.Items)...)
	}
	return deltas
}

// typeLabel renders a node's type for delta records, carrying format and
// recursion markers so a format change also surfaces as a retype.
func typeLabel(node *spec.SchemaNode) string {
	if node == nil {
		return "none"
	}
	label := node.Type
	if label == "" {
		label = "object"
	}
	if node.Format != "" {
		label = fmt.Sprintf("%s(%s)", label, node.Format)
	}
	if node.Recursive {
		label += "(recursive)"
	}
	return label
}

func requiredLabel(required bool) string {
	if required {
		return "required"
	}
	return "optional"
}

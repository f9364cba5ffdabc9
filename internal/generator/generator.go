// Package generator emits client-wrapper and test-stub skeletons from
// the canonical model.
//
// Output is a set of named text artifacts; persisting them is the
// caller's concern. Identifiers already present in the supplied existing
// set are skipped and reported, never overwritten, so user-written code
// survives regeneration. Naming is deterministic, making repeated runs
// on an unchanged model byte-identical.
package generator

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"swagger-surface/internal/logger"
	"swagger-surface/internal/spec"
	"swagger-surface/internal/testdata"
)

// ReasonExists marks an artifact skipped because its identifier was
// already taken.
const ReasonExists = "ALREADY_EXISTS"

// Artifact is one generated text blob with a suggested relative path.
type Artifact struct {
	ID      string `json:"id"`
	Path    string `json:"path"`
	Content string `json:"content"`
}

// Skip records an artifact that was not emitted and why.
type Skip struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// Output is the full result of one generation run.
type Output struct {
	Artifacts []Artifact `json:"artifacts"`
	Skipped   []Skip     `json:"skipped,omitempty"`
}

// Generator emits skeletons from canonical models.
type Generator struct {
	log *logger.Logger
}

// New creates a generator.
func New(log *logger.Logger) *Generator {
	if log == nil {
		log = logger.NewDefault()
	}
	return &Generator{log: log.WithComponent("generator")}
}

// Generate produces one client wrapper per resource group and one test
// stub per endpoint.
func (g *Generator) Generate(m *spec.Model, existing map[string]struct{}) *Output {
	out := &Output{}

	groups := make(map[string][]*spec.Endpoint)
	for _, key := range m.Keys() {
		endpoint := m.Endpoints[key]
		group := groupKey(endpoint.Path)
		groups[group] = append(groups[group], endpoint)
	}

	groupNames := make([]string, 0, len(groups))
	for name := range groups {
		groupNames = append(groupNames, name)
	}
	sort.Strings(groupNames)

	for _, group := range groupNames {
		endpoints := groups[group]
		symbols := assignSymbols(endpoints)

		clientID := group + "_client"
		clientPath := fmt.Sprintf("api/%s/client.go", group)
		g.emit(out, existing, Artifact{
			ID:      clientID,
			Path:    clientPath,
			Content: clientSource(m, group, endpoints, symbols),
		})

		for i, endpoint := range endpoints {
			symbol := symbols[i]
			stubID := "test_" + pascalToSnake(symbol)
			stubPath := fmt.Sprintf("api/%s/%s_test.go", group, pascalToSnake(symbol))
			g.emit(out, existing, Artifact{
				ID:      stubID,
				Path:    stubPath,
				Content: stubSource(m, group, endpoint, symbol),
			})
		}
	}

	g.log.Infof("generated %d artifacts, skipped %d", len(out.Artifacts), len(out.Skipped))
	return out
}

// emit appends the artifact unless its identifier already exists, in
// which case the skip is recorded instead.
func (g *Generator) emit(out *Output, existing map[string]struct{}, artifact Artifact) {
	if _, taken := existing[artifact.ID]; taken {
		out.Skipped = append(out.Skipped, Skip{ID: artifact.ID, Reason: ReasonExists})
		return
	}
	out.Artifacts = append(out.Artifacts, artifact)
}

// assignSymbols names every endpoint in a group, deduplicating
// collisions (placeholders are elided, so GET /users and GET /users/{id}
// both want GetUsers) with a numeric suffix in identity order.
func assignSymbols(endpoints []*spec.Endpoint) []string {
	used := make(map[string]int)
	symbols := make([]string, len(endpoints))
	for i, endpoint := range endpoints {
		name := symbolName(endpoint)
		used[name]++
		if n := used[name]; n > 1 {
			name += strconv.Itoa(n)
		}
		symbols[i] = name
	}
	return symbols
}

func header(m *spec.Model) string {
	title := m.Title
	if title == "" {
		title = "API"
	}
	if m.Version != "" {
		title += " " + m.Version
	}
	return fmt.Sprintf("// Generated skeleton for %s.\n", title)
}

// clientSource renders the client wrapper file for one resource group.
func clientSource(m *spec.Model, group string, endpoints []*spec.Endpoint, symbols []string) string {
	var b strings.Builder
	b.WriteString(header(m))
	b.WriteString(fmt.Sprintf("\n// Package %s wraps the /%s resource family.\npackage %s\n", group, group, group))

	needsFmt := false
	for _, endpoint := range endpoints {
		if strings.Contains(endpoint.Path, "{") {
			needsFmt = true
			break
		}
	}
	if needsFmt {
		b.WriteString("\nimport \"fmt\"\n")
	}

	b.WriteString(fmt.Sprintf("\n// Client issues requests for the %s endpoints. Attach a transport\n// via Do before use.\ntype Client struct {\n\tBaseURL string\n\tDo      func(method, path string, query map[string]interface{}, body interface{}) (interface{}, error)\n}\n", group))

	for i, endpoint := range endpoints {
		b.WriteString(methodSource(endpoint, symbols[i]))
	}
	return b.String()
}

// methodSource renders one wrapper method.
func methodSource(endpoint *spec.Endpoint, symbol string) string {
	var b strings.Builder

	pathParams := paramsIn(endpoint, spec.InPath)
	queryParams := requiredIn(endpoint, spec.InQuery)

	var args []string
	for _, p := range pathParams {
		args = append(args, fmt.Sprintf("%s %s", argName(p.Name), goType(p.Schema)))
	}
	for _, p := range queryParams {
		args = append(args, fmt.Sprintf("%s %s", argName(p.Name), goType(p.Schema)))
	}
	if endpoint.RequestBody != nil {
		args = append(args, "body interface{}")
	}

	b.WriteString(fmt.Sprintf("\n// %s calls %s %s.\n", symbol, endpoint.Method, endpoint.Path))
	if endpoint.Summary != "" {
		b.WriteString(fmt.Sprintf("// %s\n", strings.TrimSpace(endpoint.Summary)))
	}
	b.WriteString(fmt.Sprintf("func (c *Client) %s(%s) (interface{}, error) {\n", symbol, strings.Join(args, ", ")))

	if len(pathParams) > 0 {
		format := endpoint.Path
		var formatArgs []string
		for _, segment := range spec.Segments(endpoint.Path) {
			if spec.IsPlaceholder(segment) {
				name := strings.Trim(segment, "{}")
				format = strings.Replace(format, segment, "%v", 1)
				formatArgs = append(formatArgs, argName(name))
			}
		}
		b.WriteString(fmt.Sprintf("\tpath := fmt.Sprintf(%q, %s)\n", format, strings.Join(formatArgs, ", ")))
	} else {
		b.WriteString(fmt.Sprintf("\tpath := %q\n", endpoint.Path))
	}

	queryExpr := "nil"
	if len(queryParams) > 0 {
		b.WriteString("\tquery := map[string]interface{}{\n")
		for _, p := range queryParams {
			b.WriteString(fmt.Sprintf("\t\t%q: %s,\n", p.Name, argName(p.Name)))
		}
		b.WriteString("\t}\n")
		queryExpr = "query"
	}

	bodyExpr := "nil"
	if endpoint.RequestBody != nil {
		bodyExpr = "body"
	}

	b.WriteString(fmt.Sprintf("\treturn c.Do(%q, path, %s, %s)\n}\n", endpoint.Method, queryExpr, bodyExpr))
	return b.String()
}

// stubSource renders one test stub, pre-filled with sample input data.
func stubSource(m *spec.Model, group string, endpoint *spec.Endpoint, symbol string) string {
	var b strings.Builder
	b.WriteString(header(m))
	b.WriteString(fmt.Sprintf("\npackage %s\n\nimport \"testing\"\n", group))
	b.WriteString(fmt.Sprintf("\n// Test%s exercises %s %s.\n", symbol, endpoint.Method, endpoint.Path))
	b.WriteString(fmt.Sprintf("func Test%s(t *testing.T) {\n", symbol))
	b.WriteString("\tt.Skip(\"pending: wire a transport and review the sample data\")\n")

	sample, err := json.MarshalIndent(testdata.ForEndpoint(endpoint), "", "  ")
	if err == nil {
		b.WriteString("\n\t// Sample input:\n")
		for _, line := range strings.Split(string(sample), "\n") {
			b.WriteString("\t// " + line + "\n")
		}
	}
	b.WriteString("}\n")
	return b.String()
}

func argName(name string) string {
	return avoidKeywords(pascalToSnake(name))
}

func paramsIn(endpoint *spec.Endpoint, location string) []spec.Parameter {
	var out []spec.Parameter
	for _, p := range endpoint.Parameters {
		if p.In == location {
			out = append(out, p)
		}
	}
	return out
}

func requiredIn(endpoint *spec.Endpoint, location string) []spec.Parameter {
	var out []spec.Parameter
	for _, p := range paramsIn(endpoint, location) {
		if p.Required {
			out = append(out, p)
		}
	}
	return out
}

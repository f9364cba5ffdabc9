package generator

import (
	"go/token"
	"regexp"
	"strings"

	"swagger-surface/internal/spec"
)

var wordPattern = regexp.MustCompile(`[A-Z]+[a-z\d]*|[a-z]+\d*`)

// pascalToSnake converts PascalCase or camelCase to snake_case.
func pascalToSnake(name string) string {
	words := wordPattern.FindAllString(name, -1)
	for i, w := range words {
		words[i] = strings.ToLower(w)
	}
	return strings.Join(words, "_")
}

// snakeToPascal converts snake_case to PascalCase.
func snakeToPascal(name string) string {
	words := strings.Split(name, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, "")
}

// avoidKeywords renames identifiers that collide with Go keywords.
func avoidKeywords(name string) string {
	if token.IsKeyword(name) {
		return name + "Param"
	}
	return name
}

// groupKey picks the resource group of a path template: its leading
// static segment, or "root" for purely parameterized paths.
func groupKey(path string) string {
	for _, segment := range spec.Segments(path) {
		if !spec.IsPlaceholder(segment) {
			return pascalToSnake(segment)
		}
	}
	return "root"
}

// symbolName derives the deterministic method name for an endpoint:
// the HTTP method plus the static path segments, placeholders elided.
// GET /users/{id} becomes GetUsers.
func symbolName(endpoint *spec.Endpoint) string {
	parts := []string{snakeToPascal(strings.ToLower(endpoint.Method))}
	for _, segment := range spec.Segments(endpoint.Path) {
		if spec.IsPlaceholder(segment) {
			continue
		}
		parts = append(parts, snakeToPascal(pascalToSnake(segment)))
	}
	if len(parts) == 1 {
		parts = append(parts, "Root")
	}
	return strings.Join(parts, "")
}

// goType maps a schema node onto a Go parameter type.
func goType(node *spec.SchemaNode) string {
	if node == nil {
		return "interface{}"
	}
	switch node.Type {
	case "string":
		return "string"
	case "integer", "int", "long":
		return "int"
	case "number":
		return "float64"
	case "boolean":
		return "bool"
	case "array":
		return "[]" + goType(node.Items)
	case "object":
		return "map[string]interface{}"
	default:
		return "interface{}"
	}
}

package spec

import (
	"fmt"
	"strings"
)

// ParseError reports a document that could not be decoded at all.
// It aborts normalization before any model is built.
type ParseError struct {
	Format string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse %s document: %v", e.Format, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// VersionError reports an unsupported specification version.
type VersionError struct {
	Version string
}

func (e *VersionError) Error() string {
	if e.Version == "" {
		return "document declares no swagger/openapi version"
	}
	return fmt.Sprintf("unsupported specification version %q", e.Version)
}

// Violation is one structural problem found while normalizing.
type Violation struct {
	Identity string `json:"identity"`
	Reason   string `json:"reason"`
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s", v.Identity, v.Reason)
}

// SchemaError collects every structural violation found in one pass over
// the document, so callers get the complete fix list at once.
type SchemaError struct {
	Violations []Violation
}

func (e *SchemaError) Error() string {
	items := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		items[i] = v.String()
	}
	return fmt.Sprintf("%d invalid endpoint(s): %s", len(e.Violations), strings.Join(items, "; "))
}

// Add records a violation against an endpoint identity.
func (e *SchemaError) Add(identity, reason string) {
	e.Violations = append(e.Violations, Violation{Identity: identity, Reason: reason})
}

// Empty reports whether no violations were collected.
func (e *SchemaError) Empty() bool {
	return len(e.Violations) == 0
}

// RefError reports a dangling schema reference. It is fatal only to the
// endpoint that references it.
type RefError struct {
	Ref string
}

func (e *RefError) Error() string {
	return fmt.Sprintf("dangling schema reference %q", e.Ref)
}

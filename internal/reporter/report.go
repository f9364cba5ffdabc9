// Package reporter persists change sets, coverage reports, and
// generated artifacts as plain JSON/text files for external rendering.
package reporter

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"swagger-surface/internal/coverage"
	"swagger-surface/internal/diff"
	"swagger-surface/internal/generator"
	"swagger-surface/internal/spec"
)

// Envelope wraps every written report with run metadata.
type Envelope struct {
	RunID       string      `json:"run_id"`
	GeneratedAt time.Time   `json:"generated_at"`
	Kind        string      `json:"kind"`
	Data        interface{} `json:"data"`
}

// Reporter writes reports under a single output directory.
type Reporter struct {
	outputDir string
}

// New creates a reporter rooted at outputDir.
func New(outputDir string) *Reporter {
	return &Reporter{outputDir: outputDir}
}

// WriteModel dumps a canonical model.
func (r *Reporter) WriteModel(m *spec.Model) (string, error) {
	return r.write("model", m)
}

// WriteChangeSet dumps a diff result.
func (r *Reporter) WriteChangeSet(cs *diff.ChangeSet) (string, error) {
	return r.write("changeset", cs)
}

// WriteCoverage dumps a coverage report.
func (r *Reporter) WriteCoverage(report *coverage.Report) (string, error) {
	return r.write("coverage", report)
}

func (r *Reporter) write(kind string, data interface{}) (string, error) {
	if err := os.MkdirAll(r.outputDir, 0755); err != nil {
		return "", err
	}

	envelope := Envelope{
		RunID:       uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		Kind:        kind,
		Data:        data,
	}
	payload, err := json.MarshalIndent(envelope, "", "  ")
	if err != nil {
		return "", err
	}

	path := filepath.Join(r.outputDir, fmt.Sprintf("%s_%s.json", kind, envelope.GeneratedAt.Format("20060102_150405")))
	if err := os.WriteFile(path, payload, 0644); err != nil {
		return "", err
	}
	return path, nil
}

// WriteArtifacts persists generated artifacts under their suggested
// relative paths, plus a manifest of skipped identifiers.
func (r *Reporter) WriteArtifacts(out *generator.Output) error {
	for _, artifact := range out.Artifacts {
		path := filepath.Join(r.outputDir, filepath.FromSlash(artifact.Path))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return err
		}
		if err := os.WriteFile(path, []byte(artifact.Content), 0644); err != nil {
			return err
		}
	}

	if len(out.Skipped) == 0 {
		return nil
	}
	manifest, err := json.MarshalIndent(out.Skipped, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(r.outputDir, "skipped.json"), manifest, 0644)
}

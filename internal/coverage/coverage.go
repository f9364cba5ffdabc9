// Package coverage correlates recorded request logs against the
// declared API surface.
package coverage

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"swagger-surface/internal/logger"
	"swagger-surface/internal/spec"
)

// Signature is the (method, path, query keys) tuple extracted from one
// log line.
type Signature struct {
	Method    string   `json:"method"`
	Path      string   `json:"path"`
	QueryKeys []string `json:"query_keys,omitempty"`
}

func (s Signature) String() string {
	return s.Method + " " + s.Path
}

// EndpointCoverage is the per-endpoint measurement.
type EndpointCoverage struct {
	Matched bool `json:"matched"`
	Hits    int  `json:"hits"`
}

// Warning records a concrete path that matched more than one template
// with the same static-prefix length. All tied endpoints are counted.
type Warning struct {
	Signature  Signature `json:"signature"`
	Candidates []string  `json:"candidates"`
}

// Report is the outcome of scanning one request log.
type Report struct {
	Total        int                          `json:"total"`
	MatchedCount int                          `json:"matched"`
	Coverage     float64                      `json:"coverage"`
	Endpoints    map[string]*EndpointCoverage `json:"endpoints"`
	Unmatched    []Signature                  `json:"unmatched,omitempty"`
	Warnings     []Warning                    `json:"warnings,omitempty"`
	SkippedLines int                          `json:"skipped_lines"`
}

// template is a precompiled endpoint path for matching.
type template struct {
	identity     string
	method       string
	segments     []string
	staticPrefix int
}

// Correlator matches request signatures against a canonical model.
type Correlator struct {
	model     *spec.Model
	templates []template
	log       *logger.Logger
}

// New precompiles the model's path templates for matching.
func New(m *spec.Model, log *logger.Logger) *Correlator {
	if log == nil {
		log = logger.NewDefault()
	}
	c := &Correlator{
		model: m,
		log:   log.WithComponent("coverage"),
	}
	for _, key := range m.Keys() {
		endpoint := m.Endpoints[key]
		segments := spec.Segments(endpoint.Path)
		prefix := 0
		for _, segment := range segments {
			if spec.IsPlaceholder(segment) {
				break
			}
			prefix++
		}
		c.templates = append(c.templates, template{
			identity:     endpoint.Identity,
			method:       endpoint.Method,
			segments:     segments,
			staticPrefix: prefix,
		})
	}
	return c
}

// ParseLine extracts a request signature from a log line of the form
// "METHOD PATH [status] ...". Excess trailing tokens are ignored.
func ParseLine(line string) (Signature, error) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return Signature{}, fmt.Errorf("expected METHOD PATH, got %d token(s)", len(fields))
	}

	method := strings.ToUpper(strings.Trim(fields[0], "[]"))
	for _, r := range method {
		if r < 'A' || r > 'Z' {
			return Signature{}, fmt.Errorf("invalid method token %q", fields[0])
		}
	}

	rawPath := fields[1]
	if !strings.Contains(rawPath, "/") {
		return Signature{}, fmt.Errorf("invalid path token %q", rawPath)
	}

	sig := Signature{Method: method}
	if i := strings.Index(rawPath, "?"); i >= 0 {
		for _, pair := range strings.Split(rawPath[i+1:], "&") {
			if pair == "" {
				continue
			}
			key := pair
			if j := strings.Index(pair, "="); j >= 0 {
				key = pair[:j]
			}
			sig.QueryKeys = append(sig.QueryKeys, key)
		}
		sort.Strings(sig.QueryKeys)
		rawPath = rawPath[:i]
	}
	sig.Path = spec.NormalizePath(rawPath)
	return sig, nil
}

// Scan processes the whole log single-threaded.
func (c *Correlator) Scan(lines []string) *Report {
	partial := c.scanChunk(lines)
	return c.assemble([]*partialReport{partial})
}

// ScanParallel splits the log across workers; per-line processing has no
// cross-line dependency, and partial hit counts merge by summing, so the
// result is identical for any worker count.
func (c *Correlator) ScanParallel(lines []string, workers int) *Report {
	if workers < 1 {
		workers = 1
	}
	if workers > len(lines) {
		workers = len(lines)
	}
	if workers <= 1 {
		return c.Scan(lines)
	}

	partials := make([]*partialReport, workers)
	chunk := (len(lines) + workers - 1) / workers

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := w * chunk
		end := start + chunk
		if end > len(lines) {
			end = len(lines)
		}
		wg.Add(1)
		go func(w int, lines []string) {
			defer wg.Done()
			partials[w] = c.scanChunk(lines)
		}(w, lines[start:end])
	}
	wg.Wait()

	return c.assemble(partials)
}

// partialReport is one worker's share of the scan.
type partialReport struct {
	hits      map[string]int
	unmatched []Signature
	warnings  []Warning
	skipped   int
}

func (c *Correlator) scanChunk(lines []string) *partialReport {
	partial := &partialReport{hits: make(map[string]int)}

	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		sig, err := ParseLine(line)
		if err != nil {
			// Per-line failures never abort the scan.
			partial.skipped++
			c.log.Debugf("skipping log line: %v", err)
			continue
		}

		winners := c.match(sig)
		switch {
		case len(winners) == 0:
			partial.unmatched = append(partial.unmatched, sig)
		case len(winners) == 1:
			partial.hits[winners[0]]++
		default:
			partial.warnings = append(partial.warnings, Warning{Signature: sig, Candidates: winners})
			for _, identity := range winners {
				partial.hits[identity]++
			}
		}
	}
	return partial
}

// match returns the identities the signature counts toward: the
// template(s) with equal segment count, byte-equal static segments, and
// the longest static prefix among all candidates.
func (c *Correlator) match(sig Signature) []string {
	segments := spec.Segments(sig.Path)

	best := -1
	var winners []string
	for _, tpl := range c.templates {
		if tpl.method != sig.Method || len(tpl.segments) != len(segments) {
			continue
		}
		if !segmentsMatch(tpl.segments, segments) {
			continue
		}
		switch {
		case tpl.staticPrefix > best:
			best = tpl.staticPrefix
			winners = winners[:0]
			winners = append(winners, tpl.identity)
		case tpl.staticPrefix == best:
			winners = append(winners, tpl.identity)
		}
	}
	return winners
}

func segmentsMatch(tpl, concrete []string) bool {
	for i, segment := range tpl {
		if spec.IsPlaceholder(segment) {
			if concrete[i] == "" {
				return false
			}
			continue
		}
		if segment != concrete[i] {
			return false
		}
	}
	return true
}

// assemble merges partial reports into the final one; merge order is
// commutative for every count.
func (c *Correlator) assemble(partials []*partialReport) *Report {
	report := &Report{
		Total:     c.model.Len(),
		Endpoints: make(map[string]*EndpointCoverage, c.model.Len()),
	}
	for _, key := range c.model.Keys() {
		report.Endpoints[key] = &EndpointCoverage{}
	}

	for _, partial := range partials {
		for identity, hits := range partial.hits {
			entry := report.Endpoints[identity]
			entry.Hits += hits
			entry.Matched = true
		}
		report.Unmatched = append(report.Unmatched, partial.unmatched...)
		report.Warnings = append(report.Warnings, partial.warnings...)
		report.SkippedLines += partial.skipped
	}

	for _, entry := range report.Endpoints {
		if entry.Matched {
			report.MatchedCount++
		}
	}
	if report.Total > 0 {
		report.Coverage = float64(report.MatchedCount) / float64(report.Total)
	}

	c.log.Infof("coverage %.2f%% (%d/%d endpoints, %d lines skipped)",
		report.Coverage*100, report.MatchedCount, report.Total, report.SkippedLines)
	return report
}

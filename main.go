package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"swagger-surface/internal/config"
	"swagger-surface/internal/coverage"
	"swagger-surface/internal/diff"
	"swagger-surface/internal/generator"
	"swagger-surface/internal/history"
	"swagger-surface/internal/llm"
	"swagger-surface/internal/logger"
	"swagger-surface/internal/parser"
	"swagger-surface/internal/reporter"
	"swagger-surface/internal/resolver"
	"swagger-surface/internal/spec"
)

var (
	version = "1.0.0"

	// Global flags
	configFile string
	verbose    bool

	// Spec flags
	specFile   string
	specFormat string

	// Diff flags
	baseFile string
	headFile string

	// Generate flags
	existingFile string
	useLLM       bool

	// Coverage flags
	logFile string
	workers int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "swagger-surface",
		Short: "Swagger-driven test surface synthesizer",
		Long: `swagger-surface parses OpenAPI/Swagger specifications into a canonical
endpoint model, diffs specification versions, generates client and test
skeletons, and computes API coverage from recorded request logs.`,
		Version: version,
	}

	parseCmd := &cobra.Command{
		Use:   "parse",
		Short: "Normalize a specification into the canonical model",
		RunE:  runParse,
	}

	diffCmd := &cobra.Command{
		Use:   "diff",
		Short: "Diff two specification versions",
		RunE:  runDiff,
	}

	generateCmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate client and test-stub skeletons",
		RunE:  runGenerate,
	}

	coverageCmd := &cobra.Command{
		Use:   "coverage",
		Short: "Correlate a request log against the declared surface",
		RunE:  runCoverage,
	}

	scanCmd := &cobra.Command{
		Use:   "scan",
		Short: "Diff the spec against its last stored snapshot",
		RunE:  runScan,
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().StringVarP(&specFile, "spec", "s", "", "Specification file")
	rootCmd.PersistentFlags().StringVarP(&specFormat, "format", "f", "", "Specification format (json|yaml)")

	diffCmd.Flags().StringVar(&baseFile, "base", "", "Base specification file")
	diffCmd.Flags().StringVar(&headFile, "head", "", "Head specification file")

	generateCmd.Flags().StringVar(&existingFile, "existing", "", "File listing identifiers that must not be overwritten")
	generateCmd.Flags().BoolVar(&useLLM, "llm", false, "Suggest example payloads with the configured LLM")

	coverageCmd.Flags().StringVar(&logFile, "log", "", "Request log file")
	coverageCmd.Flags().IntVarP(&workers, "workers", "w", 0, "Parallel scan workers")

	rootCmd.AddCommand(parseCmd, diffCmd, generateCmd, coverageCmd, scanCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setup loads configuration and builds the shared logger and parser.
func setup() (*config.Config, *logger.Logger, *parser.Parser, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, nil, nil, err
	}

	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logger.InfoLevel
	}
	if verbose {
		level = logger.DebugLevel
	}
	log := logger.New(logger.Config{Level: level, Pretty: true, Output: os.Stderr})

	p := parser.New(parser.Options{
		Resolver: resolver.Options{MaxCycleDepth: cfg.Spec.CycleDepth},
		Logger:   log,
	})
	return cfg, log, p, nil
}

func formatFor(cfg *config.Config) parser.Format {
	if specFormat != "" {
		return parser.Format(specFormat)
	}
	return parser.Format(cfg.Spec.Format)
}

func loadModel(p *parser.Parser, cfg *config.Config, path string) (*spec.Model, error) {
	if path == "" {
		return nil, fmt.Errorf("no specification file given (use --spec)")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return p.Parse(data, formatFor(cfg))
}

func runParse(cmd *cobra.Command, args []string) error {
	cfg, log, p, err := setup()
	if err != nil {
		return err
	}

	model, err := loadModel(p, cfg, specFile)
	if err != nil {
		return err
	}

	path, err := reporter.New(cfg.Reporting.OutputDir).WriteModel(model)
	if err != nil {
		return err
	}
	log.Infof("canonical model written to %s", path)
	return nil
}

func runDiff(cmd *cobra.Command, args []string) error {
	cfg, log, p, err := setup()
	if err != nil {
		return err
	}
	if baseFile == "" || headFile == "" {
		return fmt.Errorf("both --base and --head are required")
	}

	base, err := loadModel(p, cfg, baseFile)
	if err != nil {
		return fmt.Errorf("base spec: %w", err)
	}
	head, err := loadModel(p, cfg, headFile)
	if err != nil {
		return fmt.Errorf("head spec: %w", err)
	}

	cs := diff.Compare(base, head)
	if cs.Empty() {
		log.Info("specifications are identical")
		return nil
	}

	path, err := reporter.New(cfg.Reporting.OutputDir).WriteChangeSet(cs)
	if err != nil {
		return err
	}
	log.Infof("%d change(s) written to %s", len(cs.Changes), path)
	return nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, log, p, err := setup()
	if err != nil {
		return err
	}

	model, err := loadModel(p, cfg, specFile)
	if err != nil {
		return err
	}

	existing, err := readExisting(existingFile)
	if err != nil {
		return err
	}

	out := generator.New(log).Generate(model, existing)
	rep := reporter.New(cfg.Reporting.OutputDir)
	if err := rep.WriteArtifacts(out); err != nil {
		return err
	}
	for _, skip := range out.Skipped {
		log.Warnf("skipped %s: %s", skip.ID, skip.Reason)
	}
	log.Infof("%d artifact(s) written to %s", len(out.Artifacts), cfg.Reporting.OutputDir)

	if useLLM || cfg.LLM.Enabled {
		if err := suggestExamples(log, cfg, model); err != nil {
			// Enrichment only; the generated skeletons stand on their own.
			log.WithError(err).Warn("example suggestion failed")
		}
	}
	return nil
}

// suggestExamples asks the configured LLM for realistic request bodies
// and logs them alongside the generated stubs.
func suggestExamples(log *logger.Logger, cfg *config.Config, model *spec.Model) error {
	client, err := llm.NewClient(&cfg.LLM.Client, log)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	for _, key := range model.Keys() {
		endpoint := model.Endpoints[key]
		if endpoint.RequestBody == nil {
			continue
		}
		example, err := client.SuggestExample(ctx, endpoint)
		if err != nil {
			continue
		}
		log.Event(logger.InfoLevel).
			Str("endpoint", endpoint.Identity).
			Interface("example", example).
			Msg("suggested request body")
	}
	return nil
}

func runCoverage(cmd *cobra.Command, args []string) error {
	cfg, log, p, err := setup()
	if err != nil {
		return err
	}
	if logFile == "" {
		return fmt.Errorf("no request log given (use --log)")
	}

	model, err := loadModel(p, cfg, specFile)
	if err != nil {
		return err
	}

	lines, err := readLines(logFile)
	if err != nil {
		return err
	}

	n := workers
	if n == 0 {
		n = cfg.Coverage.Workers
	}
	report := coverage.New(model, log).ScanParallel(lines, n)

	path, err := reporter.New(cfg.Reporting.OutputDir).WriteCoverage(report)
	if err != nil {
		return err
	}
	log.Infof("coverage report written to %s", path)
	return nil
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, log, p, err := setup()
	if err != nil {
		return err
	}

	model, err := loadModel(p, cfg, specFile)
	if err != nil {
		return err
	}

	store, err := history.Open(cfg.History.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	cs, err := store.Scan(model)
	if err != nil {
		return err
	}
	if cs == nil {
		log.Info("first snapshot stored")
		return nil
	}
	if cs.Empty() {
		log.Info("surface unchanged since last snapshot")
		return nil
	}

	path, err := reporter.New(cfg.Reporting.OutputDir).WriteChangeSet(cs)
	if err != nil {
		return err
	}
	log.Infof("surface changed: %d change(s) written to %s", len(cs.Changes), path)
	return nil
}

func readExisting(path string) (map[string]struct{}, error) {
	existing := make(map[string]struct{})
	if path == "" {
		return existing, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	for _, line := range splitLines(string(data)) {
		if line = strings.TrimSpace(line); line != "" {
			existing[line] = struct{}{}
		}
	}
	return existing, nil
}

func readLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return splitLines(string(data)), nil
}

func splitLines(s string) []string {
	return strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
}

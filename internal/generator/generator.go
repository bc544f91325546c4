package generator

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/sirupsen/logrus"

	"github.com/frherrer/fdcompat/internal/config"
	"github.com/frherrer/fdcompat/internal/converter"
	"github.com/frherrer/fdcompat/internal/domain"
	"github.com/frherrer/fdcompat/internal/extract"
	"github.com/frherrer/fdcompat/internal/parser"
	"github.com/frherrer/fdcompat/internal/scanner"
	tmpl "github.com/frherrer/fdcompat/internal/template"
)

// Collection is everything extracted and converted from the configured inputs.
type Collection struct {
	Sources []*domain.ParsedSource
	Specs   []domain.CompatSpec
	Skipped []domain.SkipDiagnostic
}

// Cases returns every extracted case in extraction order.
func (c *Collection) Cases() []domain.Case {
	var cases []domain.Case
	for _, src := range c.Sources {
		cases = append(cases, src.Cases...)
	}
	return cases
}

// Steps returns every converted step in extraction order.
func (c *Collection) Steps() []domain.CompatStep {
	return converter.Steps(c.Specs)
}

// Generator is the top-level orchestrator.
type Generator interface {
	Collect(cfg *config.Config) (*Collection, error)
	Generate(cfg *config.Config) error
}

// DefaultGenerator implements Generator by wiring all components together.
type DefaultGenerator struct {
	scanner   scanner.Scanner
	registry  parser.ParserRegistry
	converter converter.Converter
	engine    tmpl.TemplateEngine
	log       *logrus.Logger
}

// NewGenerator creates a new DefaultGenerator with all dependencies. engine
// may be nil when only Collect is used.
func NewGenerator(
	s scanner.Scanner,
	r parser.ParserRegistry,
	c converter.Converter,
	e tmpl.TemplateEngine,
	log *logrus.Logger,
) *DefaultGenerator {
	return &DefaultGenerator{
		scanner:   s,
		registry:  r,
		converter: c,
		engine:    e,
		log:       log,
	}
}

// Collect runs scan → parse → convert over the configured inputs.
func (g *DefaultGenerator) Collect(cfg *config.Config) (*Collection, error) {
	files, err := g.scanner.Resolve(cfg.Input.Paths, cfg.Input.Include, cfg.Input.Exclude)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		g.log.Warn("No test sources found")
		return &Collection{}, nil
	}
	g.log.Debugf("Found %d test source(s)", len(files))

	allowlist := extract.NewAllowlist(cfg.Extract.Functions...)
	coll := &Collection{}
	seenFns := make(map[string]bool)
	var allFns []string

	for _, filePath := range files {
		g.log.Debugf("Processing: %s", filePath)

		content, err := os.ReadFile(filePath)
		if err != nil {
			return nil, domain.NewErrorWithSuggestion("parse", domain.ReadFailure, filePath, 0,
				"failed to read file",
				"check that the file exists and has read permissions",
				err)
		}

		p, err := g.registry.ParserFor(filepath.Ext(filePath))
		if err != nil {
			g.log.Warnf("No parser for %s, skipping", filePath)
			continue
		}

		src, err := p.Parse(filePath, content, allowlist)
		if err != nil {
			return nil, err
		}
		g.log.Debugf("Extracted %d case(s) from %s (%d skipped)", len(src.Cases), filePath, len(src.Skipped))

		for _, fn := range src.Functions {
			if !seenFns[fn] {
				seenFns[fn] = true
				allFns = append(allFns, fn)
			}
		}
		coll.add(src, g.converter.Convert(src, len(coll.Cases())))
	}

	g.warnMissing(allowlist, seenFns, allFns)
	return coll, nil
}

// FromCases builds a Collection from cases loaded outside the scanner, such
// as a JSONL file written by a previous extract.
func (g *DefaultGenerator) FromCases(name string, cases []domain.Case) *Collection {
	src := &domain.ParsedSource{FilePath: name, FileType: "jsonl", Cases: cases}
	coll := &Collection{}
	coll.add(src, g.converter.Convert(src, 0))
	return coll
}

func (c *Collection) add(src *domain.ParsedSource, specs []domain.CompatSpec) {
	c.Sources = append(c.Sources, src)
	c.Specs = append(c.Specs, specs...)
	c.Skipped = append(c.Skipped, src.Skipped...)
}

// warnMissing logs allowlisted functions that no input defines, with the
// closest defined name as a hint.
func (g *DefaultGenerator) warnMissing(allowlist extract.Allowlist, seen map[string]bool, defined []string) {
	for _, name := range allowlist.Names() {
		if seen[name] {
			continue
		}
		entry := g.log.WithField("function", name)
		if s := suggest(name, defined); s != "" {
			entry.Warnf("Allowlisted function not found in input; did you mean %q?", s)
			continue
		}
		entry.Warn("Allowlisted function not found in input")
	}
}

// suggest returns the defined name closest to name, or "".
func suggest(name string, defined []string) string {
	ranks := fuzzy.RankFindNormalizedFold(name, defined)
	if len(ranks) == 0 {
		// Try the other direction: a defined name contained in a mistyped one.
		for _, d := range defined {
			if strings.Contains(name, d) {
				return d
			}
		}
		return ""
	}
	best := ranks[0]
	for _, r := range ranks[1:] {
		if r.Distance < best.Distance {
			best = r
		}
	}
	return best.Target
}

// Generate writes one Ginkgo test file per input source plus a suite file.
func (g *DefaultGenerator) Generate(cfg *config.Config) error {
	if g.engine == nil {
		return fmt.Errorf("generator: no template engine configured")
	}

	suiteName := cfg.Output.FilePrefix + "suite" + cfg.Output.FileSuffix

	// Step 1: Clean output directory if configured
	if cfg.Output.CleanBeforeGenerate && !cfg.DryRun {
		g.log.Debugf("Cleaning output directory: %s", cfg.Output.Directory)
		if err := cleanOutputDir(cfg.Output.Directory, cfg.Output.FilePrefix, cfg.Output.FileSuffix, suiteName); err != nil {
			return domain.NewErrorWithSuggestion("write", domain.ReadFailure, cfg.Output.Directory, 0,
				"failed to clean output directory",
				"check file permissions or set output.clean_before_generate to false in fdcompat.yaml",
				err)
		}
	}

	// Step 2: Extract and convert
	coll, err := g.Collect(cfg)
	if err != nil {
		return err
	}
	if len(coll.Specs) == 0 {
		g.log.Warn("No cases extracted; nothing to generate")
		return nil
	}
	g.log.Infof("Generated %d compat spec(s)", len(coll.Specs))

	// Step 3: Group specs by source file
	var keyOrder []string
	specsByKey := make(map[string][]domain.CompatSpec)
	for _, spec := range coll.Specs {
		if _, seen := specsByKey[spec.SourceFile]; !seen {
			keyOrder = append(keyOrder, spec.SourceFile)
		}
		specsByKey[spec.SourceFile] = append(specsByKey[spec.SourceFile], spec)
	}

	// Step 4: Ensure output directory exists
	if !cfg.DryRun {
		if err := os.MkdirAll(cfg.Output.Directory, 0755); err != nil {
			return domain.NewErrorWithSuggestion("write", domain.ReadFailure, cfg.Output.Directory, 0,
				"failed to create output directory",
				"check that the parent directory exists and has write permissions",
				err)
		}
	}

	opts := tmpl.Options{
		PackageName: cfg.Output.PackageName,
		SourceBin:   cfg.Tools.SourceBin,
		TargetBin:   cfg.Tools.TargetBin,
		Fixture:     cfg.Run.Fixture,
		Env:         cfg.Run.Env,
	}

	// Step 5: Render and write output. An existing suite file is kept so it
	// can be customised.
	if _, err := os.Stat(filepath.Join(cfg.Output.Directory, suiteName)); err == nil {
		g.log.Infof("Keeping existing suite file: %s", suiteName)
	} else {
		suite, err := g.engine.RenderSuite(opts)
		if err != nil {
			return err
		}
		if err := g.write(cfg, suiteName, suite); err != nil {
			return err
		}
	}

	for _, key := range keyOrder {
		rendered, err := g.engine.Render(key, specsByKey[key], opts)
		if err != nil {
			return err
		}
		if err := g.write(cfg, buildOutputFilename(key, cfg.Output), rendered); err != nil {
			return err
		}
	}

	g.log.Info("Generation complete")
	return nil
}

func (g *DefaultGenerator) write(cfg *config.Config, name, rendered string) error {
	outputPath := filepath.Join(cfg.Output.Directory, name)
	if cfg.DryRun {
		g.log.Infof("[DRY-RUN] Would write: %s", outputPath)
		g.log.Debugf("[DRY-RUN] Content:\n%s", rendered)
		return nil
	}

	g.log.Infof("Writing: %s", outputPath)
	if err := os.WriteFile(outputPath, []byte(rendered), 0644); err != nil {
		return domain.NewErrorWithSuggestion("write", domain.ReadFailure, outputPath, 0,
			"failed to write output file",
			"check disk space and write permissions for the output directory",
			err)
	}
	return nil
}

// buildOutputFilename derives the output name from the source's base name,
// e.g. tests/tests.rs → fdcompat_tests_test.go.
func buildOutputFilename(sourceFile string, output config.OutputConfig) string {
	base := filepath.Base(sourceFile)
	name := sanitizeFileName(strings.TrimSuffix(base, filepath.Ext(base)))
	return fmt.Sprintf("%s%s%s", output.FilePrefix, name, output.FileSuffix)
}

// sanitizeFileName converts a source base name into a valid filename
// component: lowercase, non-alphanumerics collapsed to single underscores.
func sanitizeFileName(name string) string {
	name = strings.ToLower(name)
	var b strings.Builder
	for _, c := range name {
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') {
			b.WriteRune(c)
		} else {
			b.WriteRune('_')
		}
	}
	result := b.String()
	for strings.Contains(result, "__") {
		result = strings.ReplaceAll(result, "__", "_")
	}
	result = strings.Trim(result, "_")
	if result == "" {
		result = "cases"
	}
	return result
}

// cleanOutputDir removes previously generated files from the output directory,
// except keep.
func cleanOutputDir(dir, prefix, suffix, keep string) error {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil // Nothing to clean
	}
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		name := entry.Name()
		if name == keep {
			continue
		}
		if !entry.IsDir() && strings.HasPrefix(name, prefix) && strings.HasSuffix(name, suffix) {
			if err := os.Remove(filepath.Join(dir, name)); err != nil {
				return err
			}
		}
	}

	return nil
}

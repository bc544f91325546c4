package config

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/frherrer/fdcompat/internal/domain"
)

const maxConcurrency = 64

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Validate checks the Config for required fields and valid values.
func Validate(cfg *Config) error {
	var errs []string

	// Input validation
	if len(cfg.Input.Paths) == 0 {
		errs = append(errs, "input.paths must not be empty")
	}
	if len(cfg.Input.Include) == 0 {
		errs = append(errs, "input.include must not be empty")
	}

	// Extraction
	if !identPattern.MatchString(cfg.Extract.CallName) {
		errs = append(errs, fmt.Sprintf("extract.call_name must be an identifier (got %q)", cfg.Extract.CallName))
	}
	if len(cfg.Extract.Functions) == 0 {
		errs = append(errs, "extract.functions must not be empty")
	}
	for _, fn := range cfg.Extract.Functions {
		if !identPattern.MatchString(strings.TrimSpace(fn)) {
			errs = append(errs, fmt.Sprintf("extract.functions contains invalid name %q", fn))
		}
	}

	// Tools
	if cfg.Tools.SourceBin == "" {
		errs = append(errs, "tools.source_bin must not be empty")
	}
	if cfg.Tools.TargetBin == "" {
		errs = append(errs, "tools.target_bin must not be empty")
	}

	// Run
	if cfg.Run.Concurrency < 1 || cfg.Run.Concurrency > maxConcurrency {
		errs = append(errs, fmt.Sprintf("run.concurrency must be between 1 and %d (got %d)", maxConcurrency, cfg.Run.Concurrency))
	}
	if d, err := cfg.Run.TimeoutDuration(); err != nil {
		errs = append(errs, fmt.Sprintf("run.timeout is not a valid duration: %v", err))
	} else if d < 0 {
		errs = append(errs, "run.timeout must not be negative")
	}

	// Output validation
	if cfg.Output.Directory == "" {
		errs = append(errs, "output.directory must not be empty")
	}
	if cfg.Output.PackageName == "" {
		errs = append(errs, "output.package_name must not be empty")
	}
	if !strings.HasSuffix(cfg.Output.FileSuffix, ".go") {
		errs = append(errs, "output.file_suffix must end with .go")
	}

	if cfg.Templates.Default == "" {
		errs = append(errs, "templates.default must not be empty")
	}

	// Report
	if cfg.Report.MaxSkipped < 0 {
		errs = append(errs, "report.max_skipped must not be negative")
	}
	switch cfg.Report.Color {
	case "", "auto", "always", "never":
	default:
		errs = append(errs, fmt.Sprintf("report.color must be one of: auto, always, never (got %q)", cfg.Report.Color))
	}

	// Validate logging level
	if cfg.Logging.Level != "" {
		validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
		if !validLevels[cfg.Logging.Level] {
			errs = append(errs, fmt.Sprintf("logging.level must be one of: debug, info, warn, error (got %q)", cfg.Logging.Level))
		}
	}

	if len(errs) > 0 {
		return domain.NewError("config", domain.ConfigError, "", 0, fmt.Sprintf("validation failed: %s", strings.Join(errs, "; ")), nil)
	}

	return nil
}

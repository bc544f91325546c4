package config

import (
	"os"
	"path/filepath"

	"github.com/frherrer/fdcompat/internal/extract"
)

// DefaultFunctions is the curated allowlist: glob-focused or simple regex
// cases that fit the tests/fixtures/fd_default tree.
var DefaultFunctions = []string{
	"test_simple",
	"test_case_insensitive",
	"test_glob_searches",
	"test_full_path_glob_searches",
	"test_hidden",
	"test_no_ignore",
	"test_case_sensitive_glob_searches",
	"test_regex_overrides_glob",
	"test_smart_case_glob_searches",
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	recursive := true
	return &Config{
		Input: InputConfig{
			Paths:     []string{defaultFdTestsPath()},
			Include:   []string{"*.rs", "*.md"},
			Exclude:   []string{"target/**"},
			Recursive: &recursive,
		},
		Extract: ExtractConfig{
			CallName:  extract.DefaultCallName,
			Functions: append([]string(nil), DefaultFunctions...),
		},
		Tools: ToolsConfig{
			SourceBin: "fd",
			TargetBin: "f",
		},
		Run: RunConfig{
			Fixture:     filepath.Join("tests", "fixtures", "fd_default"),
			Env:         map[string]string{"LC_ALL": "C"},
			Concurrency: 4,
			Timeout:     "30s",
		},
		Output: OutputConfig{
			Directory:           filepath.Join("tests", "compat", "generated"),
			FilePrefix:          "fdcompat_",
			FileSuffix:          "_test.go",
			PackageName:         "compat_generated",
			CleanBeforeGenerate: true,
		},
		Templates: TemplateConfig{
			Default: "ginkgo_compat",
		},
		Report: ReportConfig{
			MaxSkipped: 20,
			Color:      "auto",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// defaultFdTestsPath points at a local fd checkout's integration tests.
func defaultFdTestsPath() string {
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		return filepath.Join(home, "p", "my", "fd", "tests", "tests.rs")
	}
	return filepath.Join("tests", "tests.rs")
}

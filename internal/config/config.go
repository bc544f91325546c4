package config

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/frherrer/fdcompat/internal/domain"
)

// Config is the top-level configuration struct.
type Config struct {
	Input     InputConfig    `yaml:"input"`
	Extract   ExtractConfig  `yaml:"extract"`
	Tools     ToolsConfig    `yaml:"tools"`
	Run       RunConfig      `yaml:"run"`
	Output    OutputConfig   `yaml:"output"`
	Templates TemplateConfig `yaml:"templates"`
	Report    ReportConfig   `yaml:"report"`
	Logging   LoggingConfig  `yaml:"logging"`
	DryRun    bool           `yaml:"dry_run"`
}

type InputConfig struct {
	Paths     []string `yaml:"paths"` // files or directories
	Include   []string `yaml:"include"`
	Exclude   []string `yaml:"exclude"`
	Recursive *bool    `yaml:"recursive"` // pointer to distinguish unset from false
}

type ExtractConfig struct {
	CallName  string   `yaml:"call_name"`
	Functions []string `yaml:"functions"`
}

type ToolsConfig struct {
	SourceBin string `yaml:"source_bin"`
	TargetBin string `yaml:"target_bin"`
}

type RunConfig struct {
	Fixture     string            `yaml:"fixture"`
	Env         map[string]string `yaml:"env"`
	Concurrency int               `yaml:"concurrency"`
	Timeout     string            `yaml:"timeout"`
}

// TimeoutDuration parses Timeout; an empty or zero value means no timeout.
func (r RunConfig) TimeoutDuration() (time.Duration, error) {
	if r.Timeout == "" {
		return 0, nil
	}
	return time.ParseDuration(r.Timeout)
}

type OutputConfig struct {
	Directory           string `yaml:"directory"`
	FilePrefix          string `yaml:"file_prefix"`
	FileSuffix          string `yaml:"file_suffix"`
	PackageName         string `yaml:"package_name"`
	CleanBeforeGenerate bool   `yaml:"clean_before_generate"`
	BuildTag            string `yaml:"build_tag"`
}

type TemplateConfig struct {
	Directory string `yaml:"directory"`
	Default   string `yaml:"default"`
}

type ReportConfig struct {
	MaxSkipped int    `yaml:"max_skipped"`
	Color      string `yaml:"color"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Load reads a YAML configuration file and returns a Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.NewError("config", domain.ConfigError, path, 0, "failed to read config file", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, domain.NewError("config", domain.ConfigError, path, 0, "failed to parse config file", err)
	}

	return cfg, nil
}

// LoadOrDefault behaves like Load but returns DefaultConfig when path does
// not exist and required is false.
func LoadOrDefault(path string, required bool) (*Config, error) {
	cfg, err := Load(path)
	if err != nil && !required && errors.Is(err, fs.ErrNotExist) {
		return DefaultConfig(), nil
	}
	return cfg, err
}

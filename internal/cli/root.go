package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/frherrer/fdcompat/internal/config"
	"github.com/frherrer/fdcompat/internal/converter"
	"github.com/frherrer/fdcompat/internal/extract"
	"github.com/frherrer/fdcompat/internal/generator"
	"github.com/frherrer/fdcompat/internal/parser"
	"github.com/frherrer/fdcompat/internal/report"
	"github.com/frherrer/fdcompat/internal/scanner"
	tmpl "github.com/frherrer/fdcompat/internal/template"
)

const defaultConfigFile = "fdcompat.yaml"

var (
	cfgFile string
	verbose bool
	dryRun  bool
	log     = logrus.New()
	logFile io.Closer
)

// rootCmd is the base command for fdcompat.
var rootCmd = &cobra.Command{
	Use:   "fdcompat",
	Short: "Extract fd's test invocations and check f against them",
	Long: `fdcompat reads fd's Rust integration tests, extracts the argument
arrays passed to assert_output, translates each fd invocation into the
equivalent f invocation, and compares the output of both tools.

Defaults come from fdcompat.yaml when present; flags override them.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log.SetOutput(os.Stderr)
		if verbose {
			log.SetLevel(logrus.DebugLevel)
		}
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logFile != nil {
			_ = logFile.Close()
			logFile = nil
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", defaultConfigFile, "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "extract and convert but don't write files")

	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig reads the config file, falling back to defaults when the default
// file is absent, applies global flags and reconfigures the logger.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.LoadOrDefault(cfgFile, cmd.Flags().Changed("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if dryRun {
		cfg.DryRun = true
	}
	if err := configureLogger(cfg.Logging); err != nil {
		return nil, err
	}
	return cfg, nil
}

func configureLogger(lc config.LoggingConfig) error {
	if lc.Level != "" && !verbose {
		level, err := logrus.ParseLevel(lc.Level)
		if err != nil {
			return fmt.Errorf("invalid logging.level: %w", err)
		}
		log.SetLevel(level)
	}
	if lc.File != "" {
		f, err := os.OpenFile(lc.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		log.SetOutput(f)
		logFile = f
	}
	return nil
}

// newGenerator wires scanner, parsers and converter. engine may be nil for
// commands that only collect cases.
func newGenerator(cfg *config.Config, engine tmpl.TemplateEngine) (*generator.DefaultGenerator, error) {
	recursive := true
	if cfg.Input.Recursive != nil {
		recursive = *cfg.Input.Recursive
	}
	s := scanner.NewScanner(recursive)

	ex, err := extract.NewExtractor(cfg.Extract.CallName)
	if err != nil {
		return nil, err
	}
	registry := parser.NewDefaultRegistry(ex)
	conv := converter.NewConverter(nil)

	return generator.NewGenerator(s, registry, conv, engine, log), nil
}

func newReporter(cmd *cobra.Command, cfg *config.Config) *report.Reporter {
	return report.NewReporter(cmd.OutOrStdout(), cmd.ErrOrStderr(),
		report.ColorMode(cfg.Report.Color), cfg.Report.MaxSkipped)
}

// applyInputFlags overrides the configured inputs and allowlist.
func applyInputFlags(cfg *config.Config, fdTests, functions string) {
	if fdTests != "" {
		cfg.Input.Paths = []string{fdTests}
	}
	if functions != "" {
		cfg.Extract.Functions = extract.ParseAllowlist(functions).Names()
	}
}

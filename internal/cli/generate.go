package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/frherrer/fdcompat/internal/config"
	tmpl "github.com/frherrer/fdcompat/internal/template"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate Ginkgo regression tests from the extracted cases",
	Long: `Extracts cases from fd's test sources and writes one Ginkgo test file per
source, where every case runs fd and f in the fixture and compares output.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if err := config.Validate(cfg); err != nil {
			return fmt.Errorf("config validation failed: %w", err)
		}

		log.Debug("Configuration loaded successfully")
		log.WithField("paths", cfg.Input.Paths).Info("Scanning inputs")
		log.WithField("path", cfg.Output.Directory).Info("Output directory")

		return runGenerate(cfg)
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)
}

// runGenerate wires all components and runs the generator.
func runGenerate(cfg *config.Config) error {
	// Generated specs run inside the fixture, like the run command.
	target, err := filepath.Abs(cfg.Tools.TargetBin)
	if err != nil {
		return err
	}
	cfg.Tools.TargetBin = target

	engine, err := tmpl.NewEngine(cfg.Templates.Directory, cfg.Templates.Default, cfg.Output.BuildTag)
	if err != nil {
		return fmt.Errorf("failed to create template engine: %w", err)
	}

	gen, err := newGenerator(cfg, engine)
	if err != nil {
		return err
	}
	return gen.Generate(cfg)
}

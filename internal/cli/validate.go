package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/frherrer/fdcompat/internal/config"
	tmpl "github.com/frherrer/fdcompat/internal/template"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the fdcompat.yaml configuration file",
	Long: `Loads the configuration file, checks required fields and values, and
resolves the default template. Missing inputs or fixture are reported as
warnings since they may be created later.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := config.Validate(cfg); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		if _, err := tmpl.NewEngine(cfg.Templates.Directory, cfg.Templates.Default, cfg.Output.BuildTag); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		warnMissingPaths(cfg)

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Configuration file %q is valid.\n", cfgFile)
		fmt.Fprintf(out, "  functions: %s\n", strings.Join(cfg.Extract.Functions, ", "))
		fmt.Fprintf(out, "  compare:   %s vs %s in %s\n", cfg.Tools.SourceBin, cfg.Tools.TargetBin, cfg.Run.Fixture)
		log.Debugf("Loaded config: %+v", cfg)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func warnMissingPaths(cfg *config.Config) {
	for _, p := range cfg.Input.Paths {
		if _, err := os.Stat(p); err != nil {
			log.WithField("path", p).Warn("Input path does not exist")
		}
	}
	if info, err := os.Stat(cfg.Run.Fixture); err != nil || !info.IsDir() {
		log.WithField("fixture", cfg.Run.Fixture).Warn("Fixture directory does not exist; run will fail")
	}
}

package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/frherrer/fdcompat/internal/config"
	"github.com/frherrer/fdcompat/internal/domain"
	"github.com/frherrer/fdcompat/internal/jsonl"
)

type extractOptions struct {
	fdTests   string
	functions string
	out       string
}

func newExtractCmd() *cobra.Command {
	opts := &extractOptions{}
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract assert_output argument arrays as JSONL",
		Long: `Scans fd's test sources for assert_output(&[...]) calls inside the
allowlisted functions and prints one JSON record per case. Calls that could
not be extracted are listed on stderr.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			applyInputFlags(cfg, opts.fdTests, opts.functions)
			if err := config.Validate(cfg); err != nil {
				return err
			}
			return runExtract(cmd, cfg, opts.out)
		},
	}
	cmd.Flags().StringVar(&opts.fdTests, "fd-tests", "", "path to fd's tests/tests.rs (or a directory of sources)")
	cmd.Flags().StringVar(&opts.functions, "functions", "", "comma-separated allowlist of function names")
	cmd.Flags().StringVar(&opts.out, "out", "", "output path (JSONL); stdout when omitted")
	return cmd
}

func init() {
	rootCmd.AddCommand(newExtractCmd())
}

func runExtract(cmd *cobra.Command, cfg *config.Config, out string) error {
	gen, err := newGenerator(cfg, nil)
	if err != nil {
		return err
	}
	coll, err := gen.Collect(cfg)
	if err != nil {
		return err
	}

	cases := coll.Cases()
	if out == "" {
		if err := jsonl.Write(cmd.OutOrStdout(), cases); err != nil {
			return err
		}
	} else if cfg.DryRun {
		log.Infof("[DRY-RUN] Would write %d case(s) to %s", len(cases), out)
	} else {
		if err := writeCases(out, cases); err != nil {
			return err
		}
		log.Infof("Wrote %d case(s) to %s", len(cases), out)
	}

	newReporter(cmd, cfg).Skipped(coll.Skipped)
	return nil
}

func writeCases(path string, cases []domain.Case) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return domain.NewError("write", domain.ReadFailure, path, 0, "failed to create output file", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()
	return jsonl.Write(f, cases)
}

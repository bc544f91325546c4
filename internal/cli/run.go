package cli

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/frherrer/fdcompat/internal/config"
	"github.com/frherrer/fdcompat/internal/domain"
	"github.com/frherrer/fdcompat/internal/generator"
	"github.com/frherrer/fdcompat/internal/harness"
	"github.com/frherrer/fdcompat/internal/jsonl"
	"github.com/frherrer/fdcompat/internal/runner"
)

type runOptions struct {
	fdTests     string
	target      string
	sourceBin   string
	fixture     string
	functions   string
	cases       string
	concurrency int
}

func newRunCmd() *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Compare fd <args> with the translated f <args> for every case",
		Long: `Extracts cases (or loads them from --cases), translates each fd
invocation for f, runs both tools in the fixture directory and compares their
normalized output. Exits non-zero when any case fails.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			opts.apply(cmd, cfg)
			if err := config.Validate(cfg); err != nil {
				return err
			}
			return runRun(cmd, cfg, opts.cases)
		},
	}
	cmd.Flags().StringVar(&opts.fdTests, "fd-tests", "", "path to fd's tests/tests.rs (or a directory of sources)")
	cmd.Flags().StringVar(&opts.target, "f", "", "path to the f script")
	cmd.Flags().StringVar(&opts.sourceBin, "fd-bin", "", "fd binary to execute")
	cmd.Flags().StringVar(&opts.fixture, "fixture", "", "fixture directory to run in")
	cmd.Flags().StringVar(&opts.functions, "functions", "", "comma-separated allowlist of function names")
	cmd.Flags().StringVar(&opts.cases, "cases", "", "read cases from a JSONL file instead of extracting")
	cmd.Flags().IntVarP(&opts.concurrency, "concurrency", "j", 0, "number of cases run in parallel")
	return cmd
}

func init() {
	rootCmd.AddCommand(newRunCmd())
}

func (o *runOptions) apply(cmd *cobra.Command, cfg *config.Config) {
	applyInputFlags(cfg, o.fdTests, o.functions)
	if o.target != "" {
		cfg.Tools.TargetBin = o.target
	}
	if o.sourceBin != "" {
		cfg.Tools.SourceBin = o.sourceBin
	}
	if o.fixture != "" {
		cfg.Run.Fixture = o.fixture
	}
	if cmd.Flags().Changed("concurrency") {
		cfg.Run.Concurrency = o.concurrency
	}
}

func runRun(cmd *cobra.Command, cfg *config.Config, casesFile string) error {
	if info, err := os.Stat(cfg.Run.Fixture); err != nil || !info.IsDir() {
		return fmt.Errorf("fixture directory does not exist: %s", cfg.Run.Fixture)
	}
	// The tools run inside the fixture, so the script path must not be
	// relative to it.
	target, err := filepath.Abs(cfg.Tools.TargetBin)
	if err != nil {
		return err
	}
	if info, err := os.Stat(target); err != nil || info.IsDir() {
		return fmt.Errorf("f script does not exist: %s", target)
	}

	gen, err := newGenerator(cfg, nil)
	if err != nil {
		return err
	}
	coll, err := collect(gen, cfg, casesFile)
	if err != nil {
		return err
	}
	if len(coll.Skipped) > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "note: skipped %d cases (see `extract` for details)\n", len(coll.Skipped))
	}
	steps := coll.Steps()
	if len(steps) == 0 {
		return fmt.Errorf("no cases extracted (check allowlist and fd_tests path)")
	}

	timeout, err := cfg.Run.TimeoutDuration()
	if err != nil {
		return err
	}
	h := harness.New(runner.OSRunner{}, newReporter(cmd, cfg), log, harness.Options{
		SourceBin:   cfg.Tools.SourceBin,
		TargetBin:   target,
		Fixture:     cfg.Run.Fixture,
		Env:         cfg.Run.Env,
		Concurrency: cfg.Run.Concurrency,
		Timeout:     timeout,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	_, err = h.Run(ctx, steps)
	return err
}

func collect(gen *generator.DefaultGenerator, cfg *config.Config, casesFile string) (*generator.Collection, error) {
	if casesFile == "" {
		return gen.Collect(cfg)
	}
	f, err := os.Open(casesFile)
	if err != nil {
		return nil, domain.NewError("parse", domain.ReadFailure, casesFile, 0, "failed to open cases file", err)
	}
	defer f.Close()

	rd, err := jsonl.NewReader()
	if err != nil {
		return nil, err
	}
	cases, err := rd.Read(f, casesFile)
	if err != nil {
		return nil, err
	}
	return gen.FromCases(casesFile, cases), nil
}

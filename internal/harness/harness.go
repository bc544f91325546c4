// Package harness runs converted compat steps against the reference tool and
// its reimplementation and reports how their outputs compare.
package harness

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/frherrer/fdcompat/internal/domain"
	"github.com/frherrer/fdcompat/internal/report"
	"github.com/frherrer/fdcompat/internal/runner"
)

// Options configures how both tools are executed.
type Options struct {
	SourceBin   string
	TargetBin   string
	Fixture     string
	Env         map[string]string
	Concurrency int
	// Timeout bounds each case; zero means no limit.
	Timeout time.Duration
}

// Harness executes steps and feeds outcomes to a Reporter.
type Harness struct {
	runner   runner.CommandRunner
	reporter *report.Reporter
	log      *logrus.Logger
	opts     Options
}

// New creates a Harness.
func New(r runner.CommandRunner, rep *report.Reporter, log *logrus.Logger, opts Options) *Harness {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	return &Harness{runner: r, reporter: rep, log: log, opts: opts}
}

// FailuresError is returned when at least one case produced different output.
type FailuresError struct {
	Failed int
}

func (e *FailuresError) Error() string {
	return fmt.Sprintf("%d failing cases", e.Failed)
}

// Run executes every non-skipped step. Results are reported in step order
// once all cases have finished, followed by a summary. A tool that cannot be
// executed aborts the run after reporting the cases that already finished.
// Differing output is surfaced as a *FailuresError.
func (h *Harness) Run(ctx context.Context, steps []domain.CompatStep) (report.Summary, error) {
	runID := uuid.NewString()
	log := h.log.WithField("run_id", runID)
	log.Infof("Running %d case(s) with concurrency %d", len(steps), h.opts.Concurrency)

	results := make([]domain.CaseResult, len(steps))
	g, gctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, h.opts.Concurrency)

	for i, step := range steps {
		if step.Skipped() {
			results[i] = domain.CaseResult{Step: step, Status: domain.StatusSkip}
			continue
		}
		i, step := i, step // per-iteration copies (go 1.21 loop semantics)
		g.Go(func() error {
			select {
			case sem <- struct{}{}:
			case <-gctx.Done():
				return gctx.Err()
			}
			defer func() { <-sem }()

			res, err := h.runStep(gctx, step)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		// Cases that finished before the failure are still reported.
		h.reportResults(results)
		return report.Summary{RunID: runID}, err
	}

	summary := h.reportResults(results)
	summary.RunID = runID
	h.reporter.Summary(summary)

	if summary.Failed > 0 {
		return summary, &FailuresError{Failed: summary.Failed}
	}
	return summary, nil
}

// reportResults prints every finished result in step order and counts them.
// Unfinished entries have no status and are left out.
func (h *Harness) reportResults(results []domain.CaseResult) report.Summary {
	var summary report.Summary
	for _, res := range results {
		switch res.Status {
		case domain.StatusPass:
			summary.Passed++
		case domain.StatusFail:
			summary.Failed++
		case domain.StatusSkip:
			summary.Skipped++
		default:
			continue
		}
		h.reporter.Result(res)
	}
	return summary
}

func (h *Harness) runStep(ctx context.Context, step domain.CompatStep) (domain.CaseResult, error) {
	if h.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.opts.Timeout)
		defer cancel()
	}

	h.log.WithFields(logrus.Fields{
		"function": step.Case.Function,
		"line":     step.Case.StartLine,
	}).Debugf("Comparing %v with %v", step.SourceArgs, step.TargetArgs)

	sourceOut, err := h.runner.Run(ctx, h.command(h.opts.SourceBin, step.SourceArgs))
	if err != nil {
		return domain.CaseResult{}, err
	}
	targetOut, err := h.runner.Run(ctx, h.command(h.opts.TargetBin, step.TargetArgs))
	if err != nil {
		return domain.CaseResult{}, err
	}

	res := domain.CaseResult{
		Step:         step,
		Status:       domain.StatusPass,
		SourceOutput: runner.Normalize(sourceOut),
		TargetOutput: runner.Normalize(targetOut),
	}
	if res.SourceOutput != res.TargetOutput {
		res.Status = domain.StatusFail
	}
	return res, nil
}

func (h *Harness) command(bin string, args []string) runner.Command {
	return runner.Command{Name: bin, Args: args, Dir: h.opts.Fixture, Env: h.opts.Env}
}

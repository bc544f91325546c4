// Package report renders per-case outcomes, diffs and run summaries.
package report

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"

	"github.com/frherrer/fdcompat/internal/domain"
)

// ColorMode selects when status words are coloured.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// Labels name the two sides of a comparison in diffs.
const (
	SourceLabel = "fd"
	TargetLabel = "f"
)

// Summary counts the outcomes of a run.
type Summary struct {
	RunID   string
	Passed  int
	Failed  int
	Skipped int
}

// Total is the number of cases considered.
func (s Summary) Total() int {
	return s.Passed + s.Failed + s.Skipped
}

// Reporter writes PASS lines to out and FAIL/SKIP detail to errOut. Each
// writer gets its own colour decision.
type Reporter struct {
	out        io.Writer
	errOut     io.Writer
	maxSkipped int
	pass       lipgloss.Style
	fail       lipgloss.Style
	skip       lipgloss.Style
	failCount  lipgloss.Style
	skipCount  lipgloss.Style
}

// NewReporter creates a Reporter. maxSkipped bounds the skip listing; zero or
// less lists everything.
func NewReporter(out, errOut io.Writer, mode ColorMode, maxSkipped int) *Reporter {
	r := &Reporter{out: out, errOut: errOut, maxSkipped: maxSkipped}

	outR := newRenderer(out, mode)
	errR := newRenderer(errOut, mode)
	r.pass = outR.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	r.fail = errR.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	r.skip = errR.NewStyle().Foreground(lipgloss.Color("3"))
	r.failCount = outR.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	r.skipCount = outR.NewStyle().Foreground(lipgloss.Color("3"))
	return r
}

func newRenderer(w io.Writer, mode ColorMode) *lipgloss.Renderer {
	renderer := lipgloss.NewRenderer(w)
	if useColor(w, mode) {
		renderer.SetColorProfile(termenv.ANSI)
	} else {
		renderer.SetColorProfile(termenv.Ascii)
	}
	return renderer
}

func useColor(w io.Writer, mode ColorMode) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}
	return isTerminal(w)
}

// isTerminal reports whether w is an interactive terminal.
var isTerminal = func(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Result reports one case outcome.
func (r *Reporter) Result(res domain.CaseResult) {
	step := res.Step
	switch res.Status {
	case domain.StatusPass:
		fmt.Fprintf(r.out, "%s %s\n", r.pass.Render("PASS"), location(step.Case))
	case domain.StatusSkip:
		fmt.Fprintf(r.errOut, "%s %s (%d) %s\n", r.skip.Render("SKIP"), location(step.Case), step.Index, step.SkipReason)
	case domain.StatusFail:
		fmt.Fprintf(r.errOut, "%s %s\n  %s: %s\n  %s:  %s\n%s",
			r.fail.Render("FAIL"), location(step.Case),
			SourceLabel, strings.Join(step.SourceArgs, " "),
			TargetLabel, strings.Join(step.TargetArgs, " "),
			DiffLines(SourceLabel, res.SourceOutput, TargetLabel, res.TargetOutput))
	}
}

// Skipped lists extraction diagnostics, truncated to the configured bound.
func (r *Reporter) Skipped(diags []domain.SkipDiagnostic) {
	if len(diags) == 0 {
		return
	}
	fmt.Fprintf(r.errOut, "skipped %d cases:\n", len(diags))
	shown := diags
	if r.maxSkipped > 0 && len(diags) > r.maxSkipped {
		shown = diags[:r.maxSkipped]
	}
	for _, d := range shown {
		fmt.Fprintf(r.errOut, "  %s\n", d)
	}
	if len(shown) < len(diags) {
		fmt.Fprintln(r.errOut, "  ...")
	}
}

// Summary prints the final counts.
func (r *Reporter) Summary(s Summary) {
	line := fmt.Sprintf("%d cases: %s passed, %s failed, %s skipped",
		s.Total(),
		r.pass.Render(fmt.Sprint(s.Passed)),
		r.failCount.Render(fmt.Sprint(s.Failed)),
		r.skipCount.Render(fmt.Sprint(s.Skipped)))
	if s.RunID != "" {
		line = fmt.Sprintf("run %s: %s", s.RunID, line)
	}
	fmt.Fprintln(r.out, line)
}

func location(c domain.Case) string {
	return fmt.Sprintf("%s:%d", c.Function, c.StartLine)
}

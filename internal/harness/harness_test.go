package harness_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus"

	"github.com/frherrer/fdcompat/internal/domain"
	"github.com/frherrer/fdcompat/internal/harness"
	"github.com/frherrer/fdcompat/internal/report"
	"github.com/frherrer/fdcompat/internal/runner"
)

// fakeRunner answers each command from a table keyed by "<bin> <args>".
type fakeRunner struct {
	mu       sync.Mutex
	outputs  map[string]string
	fail     map[string]error
	hooks    map[string]func()
	commands []runner.Command
	running  int32
	peak     int32
}

func (f *fakeRunner) Run(_ context.Context, cmd runner.Command) (string, error) {
	n := atomic.AddInt32(&f.running, 1)
	defer atomic.AddInt32(&f.running, -1)
	for {
		p := atomic.LoadInt32(&f.peak)
		if n <= p || atomic.CompareAndSwapInt32(&f.peak, p, n) {
			break
		}
	}

	key := cmd.String()
	if hook, ok := f.hooks[key]; ok {
		hook()
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.commands = append(f.commands, cmd)
	if err, ok := f.fail[key]; ok {
		return "", err
	}
	return f.outputs[key], nil
}

func step(index int, fn string, line int, source, target []string) domain.CompatStep {
	return domain.CompatStep{
		Index:      index,
		Case:       domain.Case{Function: fn, StartLine: line, Args: source},
		SourceArgs: source,
		TargetArgs: target,
	}
}

var _ = Describe("Harness", func() {
	var (
		fake        *fakeRunner
		out, errOut *bytes.Buffer
		log         *logrus.Logger
		opts        harness.Options
	)

	BeforeEach(func() {
		fake = &fakeRunner{outputs: map[string]string{}, fail: map[string]error{}, hooks: map[string]func(){}}
		out, errOut = &bytes.Buffer{}, &bytes.Buffer{}
		log = logrus.New()
		log.SetOutput(io.Discard)
		opts = harness.Options{
			SourceBin:   "fd",
			TargetBin:   "/repo/f",
			Fixture:     "/repo/tests/fixtures/fd_default",
			Env:         map[string]string{"LC_ALL": "C"},
			Concurrency: 2,
		}
	})

	newHarness := func() *harness.Harness {
		return harness.New(fake, report.NewReporter(out, errOut, report.ColorNever, 20), log, opts)
	}

	It("passes when normalized outputs match", func() {
		fake.outputs["fd a.foo"] = "one/a.foo\na.foo\n"
		fake.outputs["/repo/f -w -O -G -n -r a.foo"] = "a.foo\none/a.foo  \n\n"

		summary, err := newHarness().Run(context.Background(), []domain.CompatStep{
			step(0, "test_simple", 19, []string{"a.foo"}, []string{"-w", "-O", "-G", "-n", "-r", "a.foo"}),
		})
		Expect(err).ToNot(HaveOccurred())
		Expect(summary.Passed).To(Equal(1))
		Expect(summary.RunID).ToNot(BeEmpty())
		Expect(out.String()).To(HavePrefix("PASS test_simple:19\n"))
		Expect(out.String()).To(ContainSubstring("1 cases: 1 passed, 0 failed, 0 skipped"))
	})

	It("runs both tools in the fixture with the configured env", func() {
		_, err := newHarness().Run(context.Background(), []domain.CompatStep{
			step(0, "test_simple", 1, []string{"x"}, []string{"-w", "x"}),
		})
		Expect(err).ToNot(HaveOccurred())
		Expect(fake.commands).To(HaveLen(2))
		for _, c := range fake.commands {
			Expect(c.Dir).To(Equal(opts.Fixture))
			Expect(c.Env).To(HaveKeyWithValue("LC_ALL", "C"))
		}
		Expect(fake.commands[0].Name).To(Equal("fd"))
		Expect(fake.commands[1].Name).To(Equal("/repo/f"))
	})

	It("reports failures with a diff and returns a failure count", func() {
		fake.outputs["fd foo"] = "a.foo\n"
		fake.outputs["/repo/f foo"] = "a.foo\nb.foo\n"

		summary, err := newHarness().Run(context.Background(), []domain.CompatStep{
			step(0, "test_simple", 22, []string{"foo"}, []string{"foo"}),
		})
		var failures *harness.FailuresError
		Expect(errors.As(err, &failures)).To(BeTrue())
		Expect(err.Error()).To(Equal("1 failing cases"))
		Expect(summary.Failed).To(Equal(1))
		Expect(errOut.String()).To(ContainSubstring("FAIL test_simple:22"))
		Expect(errOut.String()).To(ContainSubstring("+b.foo"))
	})

	It("reports skipped steps without running them", func() {
		skipped := step(4, "test_no_ignore", 59, []string{"-t"}, nil)
		skipped.SkipReason = "parse fd args: -t missing value"

		summary, err := newHarness().Run(context.Background(), []domain.CompatStep{skipped})
		Expect(err).ToNot(HaveOccurred())
		Expect(summary.Skipped).To(Equal(1))
		Expect(fake.commands).To(BeEmpty())
		Expect(errOut.String()).To(Equal("SKIP test_no_ignore:59 (4) parse fd args: -t missing value\n"))
	})

	It("reports results in step order regardless of completion order", func() {
		opts.Concurrency = 8
		var steps []domain.CompatStep
		for i := 0; i < 20; i++ {
			steps = append(steps, step(i, "test_simple", i+1, []string{"p"}, []string{"p"}))
		}
		_, err := newHarness().Run(context.Background(), steps)
		Expect(err).ToNot(HaveOccurred())

		lines := strings.Split(strings.TrimSpace(out.String()), "\n")
		Expect(lines).To(HaveLen(21))
		for i := 0; i < 20; i++ {
			Expect(lines[i]).To(Equal("PASS test_simple:" + strconv.Itoa(i+1)))
		}
	})

	It("never exceeds the configured concurrency", func() {
		opts.Concurrency = 3
		var steps []domain.CompatStep
		for i := 0; i < 30; i++ {
			steps = append(steps, step(i, "test_simple", i+1, []string{"p"}, []string{"p"}))
		}
		_, err := newHarness().Run(context.Background(), steps)
		Expect(err).ToNot(HaveOccurred())
		Expect(atomic.LoadInt32(&fake.peak)).To(BeNumerically("<=", 3))
	})

	It("aborts the run when a tool cannot be executed", func() {
		boom := domain.NewError("run", domain.Execution, "", 0, "command failed: fd foo", errors.New("exit status 2"))
		fake.fail["fd foo"] = boom

		_, err := newHarness().Run(context.Background(), []domain.CompatStep{
			step(0, "test_simple", 1, []string{"foo"}, []string{"foo"}),
		})
		Expect(domain.KindOf(err)).To(Equal(domain.Execution))
		Expect(out.String()).To(BeEmpty())
	})

	It("reports cases that finished before an execution failure", func() {
		ran := make(chan struct{})
		fake.outputs["fd ok"] = "a.foo\n"
		fake.outputs["/repo/f ok"] = "a.foo\n"
		fake.hooks["/repo/f ok"] = func() { close(ran) }
		fake.hooks["fd broken"] = func() { <-ran }
		fake.fail["fd broken"] = domain.NewError("run", domain.Execution, "", 0, "command failed: fd broken", errors.New("exit status 2"))

		_, err := newHarness().Run(context.Background(), []domain.CompatStep{
			step(0, "test_simple", 19, []string{"ok"}, []string{"ok"}),
			step(1, "test_simple", 20, []string{"broken"}, []string{"broken"}),
		})
		Expect(domain.KindOf(err)).To(Equal(domain.Execution))
		Expect(out.String()).To(Equal("PASS test_simple:19\n"))
	})
})

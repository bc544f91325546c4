// Package extract finds test-case invocations such as
//
//	te.assert_output(&["--hidden", "foo"], "...");
//
// in Rust test sources without parsing Rust. Enclosing fn names are tracked
// with a line-anchored regex, and call text is accumulated from the call-site
// line up to the first line containing ");".
package extract

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/frherrer/fdcompat/internal/domain"
)

// DefaultCallName is the call-site marker used by fd's integration tests.
const DefaultCallName = "assert_output"

const callTerminator = ");"

var fnPattern = regexp.MustCompile(`^\s*(?:pub\s+)?fn\s+([A-Za-z0-9_]+)\s*\(`)

// Allowlist is the set of enclosing fn names whose cases are wanted.
type Allowlist map[string]struct{}

// NewAllowlist builds an Allowlist from names, ignoring blanks.
func NewAllowlist(names ...string) Allowlist {
	a := make(Allowlist, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n != "" {
			a[n] = struct{}{}
		}
	}
	return a
}

// ParseAllowlist splits a comma-separated list of fn names.
func ParseAllowlist(s string) Allowlist {
	return NewAllowlist(strings.Split(s, ",")...)
}

// Contains reports whether name is allowlisted.
func (a Allowlist) Contains(name string) bool {
	_, ok := a[name]
	return ok
}

// Names returns the allowlisted names in sorted order.
func (a Allowlist) Names() []string {
	names := make([]string, 0, len(a))
	for n := range a {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Result is what one Extract call found.
type Result struct {
	Cases     []domain.Case
	Skipped   []domain.SkipDiagnostic
	Functions []string // Every fn name seen, in source order
}

// Extractor locates call sites of one marker name.
type Extractor struct {
	callName    string
	callPattern *regexp.Regexp
}

// NewExtractor creates an Extractor for calls to callName.
func NewExtractor(callName string) (*Extractor, error) {
	if callName == "" {
		callName = DefaultCallName
	}
	re, err := regexp.Compile(`\b` + regexp.QuoteMeta(callName) + `\s*\(`)
	if err != nil {
		return nil, fmt.Errorf("invalid call name %q: %w", callName, err)
	}
	return &Extractor{callName: callName, callPattern: re}, nil
}

// CallName returns the marker this extractor looks for.
func (e *Extractor) CallName() string {
	return e.callName
}

// Extract scans content and returns the cases whose enclosing fn is in
// allowlist. Calls in other fns are dropped silently; allowlisted calls whose
// argument array cannot be decoded are reported in Result.Skipped.
func (e *Extractor) Extract(content string, allowlist Allowlist) *Result {
	res := &Result{}
	seen := make(map[string]bool)

	var (
		currentFn  string
		collecting bool
		callFn     string
		startLine  int
		buf        strings.Builder
	)

	for idx, line := range splitLines(content) {
		lineNo := idx + 1
		if m := fnPattern.FindStringSubmatch(line); m != nil {
			currentFn = m[1]
			if !seen[currentFn] {
				seen[currentFn] = true
				res.Functions = append(res.Functions, currentFn)
			}
		}

		if !collecting {
			if !e.callPattern.MatchString(line) {
				continue
			}
			collecting = true
			callFn = currentFn
			startLine = lineNo
			buf.Reset()
		}

		buf.WriteString(line)
		buf.WriteByte('\n')

		if strings.Contains(line, callTerminator) {
			collecting = false
			e.finishCall(res, callFn, startLine, buf.String(), allowlist)
		}
	}

	if collecting {
		e.finishCall(res, callFn, startLine, buf.String(), allowlist)
	}
	return res
}

func (e *Extractor) finishCall(res *Result, fn string, startLine int, callText string, allowlist Allowlist) {
	if fn == "" {
		res.Skipped = append(res.Skipped, domain.SkipDiagnostic{
			LineNumber: startLine,
			Reason:     "no current fn",
			Kind:       domain.NoEnclosingFunction,
		})
		return
	}

	args, err := ParseArray(callText)
	if !allowlist.Contains(fn) {
		return
	}
	if err != nil {
		res.Skipped = append(res.Skipped, domain.SkipDiagnostic{
			LineNumber: startLine,
			Function:   fn,
			Reason:     reason(err),
			Kind:       domain.KindOf(err),
		})
		return
	}

	res.Cases = append(res.Cases, domain.Case{
		Function:  fn,
		StartLine: startLine,
		Args:      args,
	})
}

// reason strips the phase prefix so diagnostics read "file:line: message".
func reason(err error) string {
	if ce, ok := err.(*domain.CompatError); ok {
		return ce.Message
	}
	return err.Error()
}

// splitLines splits on '\n', dropping a trailing '\r' from each line and the
// empty element after a final newline.
func splitLines(content string) []string {
	if content == "" {
		return nil
	}
	lines := strings.Split(strings.TrimSuffix(content, "\n"), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

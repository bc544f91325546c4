package report

import (
	"bytes"
	"sort"
	"strings"

	"github.com/sourcegraph/go-diff/diff"
)

// DiffLines renders the lines only in expected as removals and the lines only
// in actual as additions, each side sorted, as a single-hunk unified diff.
// Inputs are treated as sets; line order and duplicates do not matter.
func DiffLines(expectedName, expected, actualName, actual string) string {
	exp := lineSet(expected)
	act := lineSet(actual)

	removed := difference(exp, act)
	added := difference(act, exp)
	if len(removed) == 0 && len(added) == 0 {
		return ""
	}

	var body bytes.Buffer
	for _, l := range removed {
		body.WriteString("-" + l + "\n")
	}
	for _, l := range added {
		body.WriteString("+" + l + "\n")
	}

	fd := &diff.FileDiff{
		OrigName: expectedName,
		NewName:  actualName,
		Hunks: []*diff.Hunk{{
			OrigStartLine: 1,
			OrigLines:     int32(len(removed)),
			NewStartLine:  1,
			NewLines:      int32(len(added)),
			Body:          body.Bytes(),
		}},
	}
	out, err := diff.PrintFileDiff(fd)
	if err != nil {
		return "--- " + expectedName + "\n+++ " + actualName + "\n" + body.String()
	}
	return string(out)
}

func lineSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, l := range strings.Split(s, "\n") {
		if l != "" {
			set[l] = true
		}
	}
	return set
}

func difference(a, b map[string]bool) []string {
	var out []string
	for l := range a {
		if !b[l] {
			out = append(out, l)
		}
	}
	sort.Strings(out)
	return out
}

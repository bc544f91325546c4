// Package runner executes the tools under comparison and normalizes their
// output.
package runner

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"sort"
	"strings"

	"github.com/frherrer/fdcompat/internal/domain"
)

// Command is one program invocation.
type Command struct {
	Name string
	Args []string
	Dir  string
	Env  map[string]string
}

func (c Command) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// CommandRunner abstracts command execution so both tools are run the same way.
type CommandRunner interface {
	Run(ctx context.Context, cmd Command) (string, error)
}

// OSRunner executes commands on the host and captures stdout.
type OSRunner struct{}

// Run executes cmd with its environment merged over the current one. A
// non-zero exit is an error carrying the captured stderr.
func (OSRunner) Run(ctx context.Context, cmd Command) (string, error) {
	if cmd.Name == "" {
		return "", domain.NewError("run", domain.Execution, "", 0, "empty command name", nil)
	}
	// #nosec G204 -- program and args come from the extracted test suite.
	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.Dir = cmd.Dir
	if len(cmd.Env) != 0 {
		keys := make([]string, 0, len(cmd.Env))
		for k := range cmd.Env {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		merged := c.Environ()
		for _, k := range keys {
			merged = append(merged, fmt.Sprintf("%s=%s", k, cmd.Env[k]))
		}
		c.Env = merged
	}

	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr
	if err := c.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			err = fmt.Errorf("%w:\n%s", err, msg)
		}
		return stdout.String(), domain.NewError("run", domain.Execution, "", 0,
			fmt.Sprintf("command failed: %s", cmd), err)
	}
	return stdout.String(), nil
}

// Normalize makes tool output comparable: trailing whitespace is trimmed,
// empty lines dropped and the remaining lines sorted, each newline-terminated.
func Normalize(stdout string) string {
	var lines []string
	for _, l := range strings.Split(stdout, "\n") {
		l = strings.TrimRight(l, " \t\r\v\f")
		if l != "" {
			lines = append(lines, l)
		}
	}
	sort.Strings(lines)
	return strings.Join(lines, "\n") + "\n"
}

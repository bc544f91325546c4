// Package invocation parses an fd argument vector into a domain.Invocation.
package invocation

import (
	"fmt"
	"strings"

	"github.com/frherrer/fdcompat/internal/domain"
)

const (
	optionPrefix = "-"
	andOption    = "--and"
)

// valueOptions are the fd options that consume the following token.
var valueOptions = map[string]bool{
	"-t":          true,
	"--type":      true,
	"-e":          true,
	"--extension": true,
}

// Parse splits args into options, --and patterns, the primary pattern and
// trailing paths in a single left-to-right pass. Every token ends up in
// exactly one field of the result.
func Parse(args []string) (*domain.Invocation, error) {
	inv := &domain.Invocation{}

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if arg == andOption {
			v, err := valueAt(args, i)
			if err != nil {
				return nil, err
			}
			inv.AndPatterns = append(inv.AndPatterns, v)
			i++
			continue
		}

		if strings.HasPrefix(arg, optionPrefix) {
			if name, v, ok := splitInline(arg); ok {
				inv.Options = append(inv.Options, domain.Option{Name: name, Value: v, HasValue: true})
				continue
			}
			if valueOptions[arg] {
				v, err := valueAt(args, i)
				if err != nil {
					return nil, err
				}
				inv.Options = append(inv.Options, domain.Option{Name: arg, Value: v, HasValue: true})
				i++
				continue
			}
			inv.Options = append(inv.Options, domain.Option{Name: arg})
			continue
		}

		if !inv.HasPattern {
			inv.Pattern = arg
			inv.HasPattern = true
		} else {
			inv.Paths = append(inv.Paths, arg)
		}
	}

	return inv, nil
}

// valueAt returns the token following the option at args[i].
func valueAt(args []string, i int) (string, error) {
	if i+1 >= len(args) {
		return "", domain.NewError("parse", domain.MissingOptionValue, "", 0,
			fmt.Sprintf("%s missing value", args[i]), nil)
	}
	return args[i+1], nil
}

// splitInline handles the --name=value spelling of a value-consuming long
// option.
func splitInline(arg string) (name, value string, ok bool) {
	if !strings.HasPrefix(arg, "--") {
		return "", "", false
	}
	name, value, found := strings.Cut(arg, "=")
	if !found || !valueOptions[name] {
		return "", "", false
	}
	return name, value, true
}

// Package translate maps an fd invocation onto the equivalent f invocation.
//
// The mapping is an ordered list of rules. Each rule looks at the immutable
// invocation and the full pattern set and contributes zero or more f
// arguments; rules never remove what an earlier rule emitted.
package translate

import (
	"fmt"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/frherrer/fdcompat/internal/domain"
)

// f flags.
const (
	NoWrap        = "-w"
	NoHidden      = "-O"
	UseIgnore     = "-G"
	BaseName      = "-n"
	FixedStrings  = "-F"
	Regex         = "-r"
	CaseSensitive = "-C"
	Type          = "-t"
	Extension     = "-e"
	AndPattern    = "-P"
)

// fd flags.
const (
	fdHidden        = "--hidden"
	fdNoIgnore      = "--no-ignore"
	fdNoIgnoreVCS   = "--no-ignore-vcs"
	fdFullPath      = "--full-path"
	fdFixedStrings  = "--fixed-strings"
	fdRegex         = "--regex"
	fdGlob          = "--glob"
	fdIgnoreCase    = "--ignore-case"
	fdCaseSensitive = "--case-sensitive"
	fdType          = "--type"
	fdExtension     = "--extension"
)

// shortNames maps fd short options to their long spelling.
var shortNames = map[string]string{
	"-H": fdHidden,
	"-I": fdNoIgnore,
	"-p": fdFullPath,
	"-F": fdFixedStrings,
	"-g": fdGlob,
	"-i": fdIgnoreCase,
	"-s": fdCaseSensitive,
	"-t": fdType,
	"-e": fdExtension,
}

// modeFlags are consumed by the default/syntax/case rules and produce nothing
// in the filter rule.
var modeFlags = map[string]bool{
	fdHidden:        true,
	fdNoIgnore:      true,
	fdNoIgnoreVCS:   true,
	fdFullPath:      true,
	fdFixedStrings:  true,
	fdRegex:         true,
	fdGlob:          true,
	fdIgnoreCase:    true,
	fdCaseSensitive: true,
}

// filterOptions maps value-consuming fd options to their f equivalent.
var filterOptions = map[string]string{
	fdType:      Type,
	fdExtension: Extension,
}

// Rule contributes f arguments for one concern.
type Rule struct {
	Name  string
	Apply func(inv *domain.Invocation, patterns []string) ([]string, error)
}

// DefaultRules is the fd -> f decision table, in evaluation order.
var DefaultRules = []Rule{
	{Name: "wrap", Apply: WrapRule},
	{Name: "hidden", Apply: HiddenRule},
	{Name: "ignore", Apply: IgnoreRule},
	{Name: "path", Apply: PathRule},
	{Name: "syntax", Apply: SyntaxRule},
	{Name: "case", Apply: CaseRule},
	{Name: "filters", Apply: FilterRule},
	{Name: "and", Apply: AndRule},
	{Name: "positionals", Apply: PositionalRule},
}

// Translator applies a rule list.
type Translator struct {
	rules []Rule
}

// NewTranslator creates a Translator over rules, or DefaultRules when none
// are given.
func NewTranslator(rules ...Rule) *Translator {
	if len(rules) == 0 {
		rules = DefaultRules
	}
	return &Translator{rules: rules}
}

// Translate produces the f argument list for inv. patterns is the full
// pattern set in play (primary plus every --and value).
func (t *Translator) Translate(inv *domain.Invocation, patterns []string) ([]string, error) {
	if !inv.HasPattern {
		return nil, domain.NewError("translate", domain.MissingPattern, "", 0, "no pattern", nil)
	}

	var out []string
	for _, r := range t.rules {
		args, err := r.Apply(inv, patterns)
		if err != nil {
			return nil, err
		}
		out = append(out, args...)
	}
	return out, nil
}

// Translate runs the default decision table.
func Translate(inv *domain.Invocation, patterns []string) ([]string, error) {
	return NewTranslator().Translate(inv, patterns)
}

// WrapRule always disables f's automatic wrapping; fd never wraps.
func WrapRule(*domain.Invocation, []string) ([]string, error) {
	return []string{NoWrap}, nil
}

// HiddenRule restores fd's hidden-excluded default unless --hidden was given.
func HiddenRule(inv *domain.Invocation, _ []string) ([]string, error) {
	if has(inv, fdHidden) {
		return nil, nil
	}
	return []string{NoHidden}, nil
}

// IgnoreRule applies ignore files unless fd was told to skip them.
func IgnoreRule(inv *domain.Invocation, _ []string) ([]string, error) {
	if has(inv, fdNoIgnore) || has(inv, fdNoIgnoreVCS) {
		return nil, nil
	}
	return []string{UseIgnore}, nil
}

// PathRule restricts matching to the base name unless --full-path was given.
func PathRule(inv *domain.Invocation, _ []string) ([]string, error) {
	if has(inv, fdFullPath) {
		return nil, nil
	}
	return []string{BaseName}, nil
}

// SyntaxRule picks the pattern syntax. fd defaults to regex, f to glob.
func SyntaxRule(inv *domain.Invocation, _ []string) ([]string, error) {
	switch {
	case has(inv, fdFixedStrings):
		return []string{FixedStrings}, nil
	case has(inv, fdRegex):
		return []string{Regex}, nil
	case has(inv, fdGlob):
		return nil, nil
	default:
		return []string{Regex}, nil
	}
}

// CaseRule picks case sensitivity. --ignore-case wins over --case-sensitive;
// without either, any ASCII uppercase letter in any pattern makes the search
// case-sensitive (fd's smart case). f ignores case by default.
func CaseRule(inv *domain.Invocation, patterns []string) ([]string, error) {
	switch {
	case has(inv, fdIgnoreCase):
		return nil, nil
	case has(inv, fdCaseSensitive):
		return []string{CaseSensitive}, nil
	case anyUpper(patterns):
		return []string{CaseSensitive}, nil
	default:
		return nil, nil
	}
}

// FilterRule re-emits type and extension filters in their original order and
// rejects any option the table does not know.
func FilterRule(inv *domain.Invocation, _ []string) ([]string, error) {
	var out []string
	for _, o := range inv.Options {
		name := canonical(o.Name)
		if !o.HasValue {
			if modeFlags[name] {
				continue
			}
			return nil, unsupported(o.Name)
		}
		target, ok := filterOptions[name]
		if !ok {
			return nil, unsupported(o.Name)
		}
		out = append(out, target, o.Value)
	}
	return out, nil
}

// AndRule emits every --and pattern as -P.
func AndRule(inv *domain.Invocation, _ []string) ([]string, error) {
	var out []string
	for _, p := range inv.AndPatterns {
		out = append(out, AndPattern, p)
	}
	return out, nil
}

// PositionalRule emits the pattern followed by the search paths.
func PositionalRule(inv *domain.Invocation, _ []string) ([]string, error) {
	out := make([]string, 0, 1+len(inv.Paths))
	out = append(out, inv.Pattern)
	return append(out, inv.Paths...), nil
}

// SupportedOptions lists every fd option the table accepts.
func SupportedOptions() []string {
	names := make([]string, 0, len(modeFlags)+len(filterOptions)+len(shortNames))
	for n := range modeFlags {
		names = append(names, n)
	}
	for n := range filterOptions {
		names = append(names, n)
	}
	for n := range shortNames {
		names = append(names, n)
	}
	return names
}

func has(inv *domain.Invocation, long string) bool {
	for _, o := range inv.Options {
		if !o.HasValue && canonical(o.Name) == long {
			return true
		}
	}
	return false
}

func canonical(name string) string {
	if long, ok := shortNames[name]; ok {
		return long
	}
	return name
}

func anyUpper(patterns []string) bool {
	for _, p := range patterns {
		for i := 0; i < len(p); i++ {
			if p[i] >= 'A' && p[i] <= 'Z' {
				return true
			}
		}
	}
	return false
}

func unsupported(name string) error {
	msg := fmt.Sprintf("unsupported flag in fd case: %s", name)
	if s := closest(name); s != "" {
		return domain.NewErrorWithSuggestion("translate", domain.UnsupportedFlag, "", 0, msg,
			fmt.Sprintf("did you mean %s?", s), nil)
	}
	return domain.NewError("translate", domain.UnsupportedFlag, "", 0, msg, nil)
}

// closest returns the supported long option nearest to name, if any is close.
func closest(name string) string {
	var longs []string
	for _, n := range SupportedOptions() {
		if len(n) > 2 {
			longs = append(longs, n)
		}
	}
	ranks := fuzzy.RankFindFold(name, longs)
	if len(ranks) == 0 {
		return ""
	}
	best := ranks[0]
	for _, r := range ranks[1:] {
		if r.Distance < best.Distance || (r.Distance == best.Distance && r.Target < best.Target) {
			best = r
		}
	}
	return best.Target
}

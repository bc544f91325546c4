package domain

// Case is one extracted test invocation.
type Case struct {
	Function  string   `json:"function"`   // Enclosing fn name
	StartLine int      `json:"start_line"` // 1-based line where the call began
	Args      []string `json:"args"`       // Decoded argument vector, order significant
}

// SkipDiagnostic describes a call that matched the call-site shape but could
// not be decoded.
type SkipDiagnostic struct {
	File       string
	LineNumber int
	Function   string
	Reason     string
	Kind       ErrorKind
}

func (d SkipDiagnostic) String() string {
	return formatLocation(d.File, d.LineNumber, d.Reason)
}

// ParsedSource holds everything extracted from one input file.
type ParsedSource struct {
	FilePath  string
	FileType  string // "rust" or "markdown"
	Cases     []Case
	Skipped   []SkipDiagnostic
	Functions []string // Every enclosing fn name seen, in source order
}

// Option is a single option token as it appeared on the command line. Value
// is only meaningful when HasValue is set.
type Option struct {
	Name     string
	Value    string
	HasValue bool
}

// OptionValue is an option that consumed a following value.
type OptionValue struct {
	Name  string
	Value string
}

// Invocation is the structured form of an fd argument vector.
type Invocation struct {
	Options     []Option // Plain flags and option-value pairs, in original order
	AndPatterns []string // Values of the repeatable --and option
	Pattern     string
	HasPattern  bool
	Paths       []string // Trailing positional paths
}

// Flags returns the plain option flags in original order.
func (inv *Invocation) Flags() []string {
	var flags []string
	for _, o := range inv.Options {
		if !o.HasValue {
			flags = append(flags, o.Name)
		}
	}
	return flags
}

// Values returns the option-value pairs in original order.
func (inv *Invocation) Values() []OptionValue {
	var values []OptionValue
	for _, o := range inv.Options {
		if o.HasValue {
			values = append(values, OptionValue{Name: o.Name, Value: o.Value})
		}
	}
	return values
}

// HasFlag reports whether the plain flag name is present.
func (inv *Invocation) HasFlag(name string) bool {
	for _, o := range inv.Options {
		if !o.HasValue && o.Name == name {
			return true
		}
	}
	return false
}

// AllPatterns returns the primary pattern followed by every --and pattern.
func (inv *Invocation) AllPatterns() []string {
	var patterns []string
	if inv.HasPattern {
		patterns = append(patterns, inv.Pattern)
	}
	return append(patterns, inv.AndPatterns...)
}

// CompatSpec groups the steps extracted from one enclosing fn.
type CompatSpec struct {
	SourceFile string
	Function   string
	Steps      []CompatStep
}

// CompatStep is a single case ready to be run against both tools.
type CompatStep struct {
	Index      int // Position in extraction order across the whole run
	Case       Case
	SourceArgs []string
	TargetArgs []string
	SkipReason string // Non-empty when parse or translate failed
}

// Skipped reports whether the step cannot be executed.
func (s CompatStep) Skipped() bool {
	return s.SkipReason != ""
}

// Status is the outcome of running one step.
type Status string

const (
	StatusPass Status = "PASS"
	StatusFail Status = "FAIL"
	StatusSkip Status = "SKIP"
)

// CaseResult is the outcome of one executed (or skipped) step.
type CaseResult struct {
	Step         CompatStep
	Status       Status
	SourceOutput string // Normalized
	TargetOutput string // Normalized
	Err          error
}

package converter

import (
	"errors"
	"sort"

	"github.com/frherrer/fdcompat/internal/domain"
	"github.com/frherrer/fdcompat/internal/invocation"
	"github.com/frherrer/fdcompat/internal/translate"
)

// Converter turns extracted sources into runnable compat specs.
type Converter interface {
	Convert(src *domain.ParsedSource, firstIndex int) []domain.CompatSpec
}

// DefaultConverter implements Converter.
type DefaultConverter struct {
	translator *translate.Translator
}

// NewConverter creates a new DefaultConverter. A nil translator uses the
// default decision table.
func NewConverter(t *translate.Translator) *DefaultConverter {
	if t == nil {
		t = translate.NewTranslator()
	}
	return &DefaultConverter{translator: t}
}

// Convert groups the source's cases by enclosing fn, in order of first
// appearance. Steps are numbered from firstIndex in extraction order. Cases
// that cannot be parsed or translated become skipped steps; they never abort
// the conversion of the rest.
func (c *DefaultConverter) Convert(src *domain.ParsedSource, firstIndex int) []domain.CompatSpec {
	if len(src.Cases) == 0 {
		return nil
	}

	var order []string
	byFn := make(map[string][]domain.CompatStep)
	for i, cs := range src.Cases {
		step := c.Step(cs)
		step.Index = firstIndex + i
		if _, seen := byFn[cs.Function]; !seen {
			order = append(order, cs.Function)
		}
		byFn[cs.Function] = append(byFn[cs.Function], step)
	}

	specs := make([]domain.CompatSpec, 0, len(order))
	for _, fn := range order {
		specs = append(specs, domain.CompatSpec{
			SourceFile: src.FilePath,
			Function:   fn,
			Steps:      byFn[fn],
		})
	}
	return specs
}

// Step parses and translates a single case.
func (c *DefaultConverter) Step(cs domain.Case) domain.CompatStep {
	step := domain.CompatStep{
		Case:       cs,
		SourceArgs: cs.Args,
	}

	inv, err := invocation.Parse(cs.Args)
	if err != nil {
		step.SkipReason = "parse fd args: " + message(err)
		return step
	}
	if !inv.HasPattern {
		step.SkipReason = "no pattern"
		return step
	}

	args, err := c.translator.Translate(inv, inv.AllPatterns())
	if err != nil {
		step.SkipReason = "translate: " + message(err)
		return step
	}
	step.TargetArgs = args
	return step
}

// Steps flattens specs back into extraction order.
func Steps(specs []domain.CompatSpec) []domain.CompatStep {
	var steps []domain.CompatStep
	for _, s := range specs {
		steps = append(steps, s.Steps...)
	}
	sort.SliceStable(steps, func(i, j int) bool {
		return steps[i].Index < steps[j].Index
	})
	return steps
}

// message drops the "[phase]" prefix of a CompatError but keeps any hint.
func message(err error) string {
	var ce *domain.CompatError
	if errors.As(err, &ce) {
		if ce.Suggestion != "" {
			return ce.Message + " (" + ce.Suggestion + ")"
		}
		return ce.Message
	}
	return err.Error()
}

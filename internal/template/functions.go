package template

import (
	"fmt"
	"strconv"
	"strings"
	"text/template"

	"github.com/frherrer/fdcompat/internal/domain"
)

// CustomFuncMap returns the custom template functions available in templates.
func CustomFuncMap() template.FuncMap {
	return template.FuncMap{
		"quote":     strconv.Quote,
		"goStrings": goStrings,
		"stepName":  stepName,
		"join":      strings.Join,
		"toLower":   strings.ToLower,
	}
}

// goStrings renders args as a Go []string literal.
func goStrings(args []string) string {
	quoted := make([]string, len(args))
	for i, a := range args {
		quoted[i] = strconv.Quote(a)
	}
	return "[]string{" + strings.Join(quoted, ", ") + "}"
}

// stepName names an It block after the case location and its fd arguments.
func stepName(step domain.CompatStep) string {
	return fmt.Sprintf("line %d: fd %s", step.Case.StartLine, strings.Join(step.SourceArgs, " "))
}

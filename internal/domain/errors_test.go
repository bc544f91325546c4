package domain_test

import (
	"errors"
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frherrer/fdcompat/internal/domain"
)

var _ = Describe("CompatError", func() {
	It("renders phase, location, cause and suggestion", func() {
		err := domain.NewErrorWithSuggestion("scan", domain.ReadFailure, "tests.rs", 12,
			"input path does not exist", "pass --fd-tests", errors.New("no such file"))
		Expect(err.Error()).To(Equal("[scan] tests.rs:12: input path does not exist: no such file (pass --fd-tests)"))
	})

	It("omits missing location parts", func() {
		err := domain.NewError("parse", domain.MissingOptionValue, "", 0, "-t missing value", nil)
		Expect(err.Error()).To(Equal("[parse]: -t missing value"))
	})

	It("unwraps to its cause", func() {
		cause := errors.New("boom")
		err := domain.NewError("run", domain.Execution, "", 0, "command failed", cause)
		Expect(errors.Is(err, cause)).To(BeTrue())
	})

	It("recovers the kind through wrapping", func() {
		err := fmt.Errorf("outer: %w", domain.NewError("translate", domain.UnsupportedFlag, "", 0, "x", nil))
		Expect(domain.KindOf(err)).To(Equal(domain.UnsupportedFlag))
		Expect(domain.IsKind(err, domain.UnsupportedFlag)).To(BeTrue())
		Expect(domain.KindOf(errors.New("plain"))).To(BeEmpty())
	})
})

var _ = Describe("SkipDiagnostic", func() {
	It("formats as file:line: reason", func() {
		d := domain.SkipDiagnostic{File: "tests.rs", LineNumber: 58, Reason: "no string literal args found"}
		Expect(d.String()).To(Equal("tests.rs:58: no string literal args found"))
	})
})

var _ = Describe("Invocation", func() {
	It("separates flags from option values", func() {
		inv := &domain.Invocation{Options: []domain.Option{
			{Name: "-H"},
			{Name: "-e", Value: "rs", HasValue: true},
		}}
		Expect(inv.Flags()).To(Equal([]string{"-H"}))
		Expect(inv.Values()).To(Equal([]domain.OptionValue{{Name: "-e", Value: "rs"}}))
		Expect(inv.HasFlag("-e")).To(BeFalse())
	})
})

package generator_test

import (
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/frherrer/fdcompat/internal/config"
	"github.com/frherrer/fdcompat/internal/converter"
	"github.com/frherrer/fdcompat/internal/domain"
	"github.com/frherrer/fdcompat/internal/extract"
	"github.com/frherrer/fdcompat/internal/generator"
	"github.com/frherrer/fdcompat/internal/parser"
	"github.com/frherrer/fdcompat/internal/scanner"
	tmpl "github.com/frherrer/fdcompat/internal/template"
)

var _ = Describe("Generator", func() {
	var (
		gen       *generator.DefaultGenerator
		cfg       *config.Config
		outputDir string
		hook      *test.Hook
	)

	BeforeEach(func() {
		var log *logrus.Logger
		log, hook = test.NewNullLogger()
		log.SetLevel(logrus.DebugLevel)

		outputDir = filepath.Join(GinkgoT().TempDir(), "generated")

		cfg = config.DefaultConfig()
		cfg.Input.Paths = []string{
			filepath.Join("..", "..", "testdata", "fd"),
			filepath.Join("..", "..", "testdata", "docs"),
		}
		cfg.Output.Directory = outputDir
		cfg.Output.PackageName = "compat_test"

		ex, err := extract.NewExtractor(cfg.Extract.CallName)
		Expect(err).ToNot(HaveOccurred())
		engine, err := tmpl.NewEngine(cfg.Templates.Directory, cfg.Templates.Default, cfg.Output.BuildTag)
		Expect(err).ToNot(HaveOccurred())

		gen = generator.NewGenerator(
			scanner.NewScanner(true),
			parser.NewDefaultRegistry(ex),
			converter.NewConverter(nil),
			engine,
			log,
		)
	})

	Describe("Collect", func() {
		It("should extract and convert every input in order", func() {
			coll, err := gen.Collect(cfg)
			Expect(err).ToNot(HaveOccurred())
			Expect(coll.Sources).To(HaveLen(2))
			Expect(coll.Sources[0].FileType).To(Equal("rust"))
			Expect(coll.Sources[1].FileType).To(Equal("markdown"))

			cases := coll.Cases()
			Expect(cases).To(HaveLen(10))
			Expect(cases[0].Args).To(Equal([]string{"a.foo"}))
			Expect(cases[9].Args).To(Equal([]string{`a"b`}))

			steps := coll.Steps()
			Expect(steps).To(HaveLen(10))
			for i, s := range steps {
				Expect(s.Index).To(Equal(i))
			}

			Expect(coll.Skipped).To(HaveLen(1))
			Expect(coll.Skipped[0].LineNumber).To(Equal(58))
		})

		It("should turn unparseable and untranslatable cases into skipped steps", func() {
			coll, err := gen.Collect(cfg)
			Expect(err).ToNot(HaveOccurred())

			reasons := map[string]string{}
			for _, s := range coll.Steps() {
				if s.Skipped() {
					reasons[strings.Join(s.SourceArgs, " ")] = s.SkipReason
				}
			}
			Expect(reasons).To(HaveLen(2))
			Expect(reasons).To(HaveKeyWithValue("-t", "parse fd args: -t missing value"))
			Expect(reasons["--hidden --exec echo foo"]).To(HavePrefix("translate: unsupported flag in fd case: --exec"))
		})

		It("should warn about allowlisted functions that never appear", func() {
			cfg.Extract.Functions = []string{"test_simple", "test_hiden"}
			_, err := gen.Collect(cfg)
			Expect(err).ToNot(HaveOccurred())

			var warned bool
			for _, e := range hook.AllEntries() {
				if e.Level == logrus.WarnLevel && e.Data["function"] == "test_hiden" {
					warned = true
					Expect(e.Message).To(ContainSubstring(`did you mean "test_hidden"?`))
				}
			}
			Expect(warned).To(BeTrue())
		})

		It("should fail for a missing input path", func() {
			cfg.Input.Paths = []string{"does/not/exist.rs"}
			_, err := gen.Collect(cfg)
			Expect(domain.KindOf(err)).To(Equal(domain.ReadFailure))
		})

		It("should handle an empty directory gracefully", func() {
			cfg.Input.Paths = []string{GinkgoT().TempDir()}
			coll, err := gen.Collect(cfg)
			Expect(err).ToNot(HaveOccurred())
			Expect(coll.Specs).To(BeEmpty())
		})
	})

	Describe("FromCases", func() {
		It("should convert cases loaded from elsewhere", func() {
			coll := gen.FromCases("cases.jsonl", []domain.Case{
				{Function: "test_simple", StartLine: 1, Args: []string{"foo"}},
				{Function: "test_hidden", StartLine: 2, Args: []string{"-H", "bar"}},
			})
			Expect(coll.Specs).To(HaveLen(2))
			Expect(coll.Steps()[1].TargetArgs).To(Equal([]string{"-w", "-G", "-n", "-r", "bar"}))
		})
	})

	Describe("Generate", func() {
		It("should write one file per source plus the suite", func() {
			Expect(gen.Generate(cfg)).To(Succeed())

			entries, err := os.ReadDir(outputDir)
			Expect(err).ToNot(HaveOccurred())
			var names []string
			for _, e := range entries {
				names = append(names, e.Name())
			}
			Expect(names).To(ConsistOf(
				"fdcompat_guide_test.go",
				"fdcompat_suite_test.go",
				"fdcompat_tests_test.go",
			))
		})

		It("should generate Ginkgo specs for the extracted cases", func() {
			Expect(gen.Generate(cfg)).To(Succeed())

			content, err := os.ReadFile(filepath.Join(outputDir, "fdcompat_tests_test.go"))
			Expect(err).ToNot(HaveOccurred())
			out := string(content)
			Expect(out).To(ContainSubstring("package compat_test"))
			Expect(out).To(ContainSubstring(`Describe("test_simple"`))
			Expect(out).To(ContainSubstring(`Describe("test_no_ignore"`))
			Expect(out).To(ContainSubstring(`Skip("parse fd args: -t missing value")`))
			Expect(out).To(ContainSubstring(`[]string{"-w", "-O", "-G", "-n", "-C", "C.Foo*"}`))
		})

		It("should remove stale generated files but keep others", func() {
			Expect(os.MkdirAll(outputDir, 0755)).To(Succeed())
			stale := filepath.Join(outputDir, "fdcompat_old_test.go")
			other := filepath.Join(outputDir, "helpers_test.go")
			Expect(os.WriteFile(stale, []byte("package x\n"), 0644)).To(Succeed())
			Expect(os.WriteFile(other, []byte("package x\n"), 0644)).To(Succeed())

			Expect(gen.Generate(cfg)).To(Succeed())
			Expect(stale).ToNot(BeAnExistingFile())
			Expect(other).To(BeAnExistingFile())
		})

		DescribeTable("should not overwrite an existing suite file",
			func(clean bool) {
				cfg.Output.CleanBeforeGenerate = clean
				Expect(os.MkdirAll(outputDir, 0755)).To(Succeed())
				suitePath := filepath.Join(outputDir, "fdcompat_suite_test.go")
				custom := "// custom suite file\npackage compat_test\n"
				Expect(os.WriteFile(suitePath, []byte(custom), 0644)).To(Succeed())

				Expect(gen.Generate(cfg)).To(Succeed())
				content, err := os.ReadFile(suitePath)
				Expect(err).ToNot(HaveOccurred())
				Expect(string(content)).To(Equal(custom))
				Expect(filepath.Join(outputDir, "fdcompat_tests_test.go")).To(BeAnExistingFile())
			},
			Entry("with cleaning", true),
			Entry("without cleaning", false),
		)

		It("should respect dry-run mode", func() {
			cfg.DryRun = true
			Expect(gen.Generate(cfg)).To(Succeed())
			Expect(outputDir).ToNot(BeADirectory())
		})

		It("should write nothing when no cases are found", func() {
			cfg.Input.Paths = []string{GinkgoT().TempDir()}
			Expect(gen.Generate(cfg)).To(Succeed())
			Expect(outputDir).ToNot(BeADirectory())
		})
	})
})

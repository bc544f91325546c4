package parser_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frherrer/fdcompat/internal/domain"
	"github.com/frherrer/fdcompat/internal/extract"
	"github.com/frherrer/fdcompat/internal/parser"
)

func newExtractor() *extract.Extractor {
	ex, err := extract.NewExtractor(extract.DefaultCallName)
	Expect(err).ToNot(HaveOccurred())
	return ex
}

var _ = Describe("Registry", func() {
	var registry *parser.DefaultRegistry

	BeforeEach(func() {
		registry = parser.NewDefaultRegistry(newExtractor())
	})

	DescribeTable("should pick a parser by extension",
		func(ext string, want interface{}) {
			p, err := registry.ParserFor(ext)
			Expect(err).ToNot(HaveOccurred())
			Expect(p).To(BeAssignableToTypeOf(want))
		},
		Entry("rust", ".rs", &parser.RustParser{}),
		Entry("markdown", ".md", &parser.MarkdownParser{}),
		Entry("markdown without dot", "markdown", &parser.MarkdownParser{}),
		Entry("asciidoc", ".adoc", &parser.AsciiDocParser{}),
		Entry("unknown falls back to rust", ".txt", &parser.RustParser{}),
	)

	It("should fail without a fallback", func() {
		_, err := parser.NewRegistry().ParserFor(".rs")
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("RustParser", func() {
	It("should extract cases and stamp the file on skips", func() {
		content, err := os.ReadFile(filepath.Join("..", "..", "testdata", "fd", "tests.rs"))
		Expect(err).ToNot(HaveOccurred())

		src, err := parser.NewRustParser(newExtractor()).Parse("tests.rs", content,
			extract.NewAllowlist("test_simple", "test_no_ignore"))
		Expect(err).ToNot(HaveOccurred())
		Expect(src.FileType).To(Equal("rust"))
		Expect(src.Cases).To(HaveLen(4))
		Expect(src.Cases[0]).To(Equal(domain.Case{Function: "test_simple", StartLine: 19, Args: []string{"a.foo"}}))
		Expect(src.Skipped).To(HaveLen(1))
		Expect(src.Skipped[0].String()).To(Equal("tests.rs:58: unsupported non-literal arg(s) in &[...]"))
	})
})

var _ = Describe("MarkdownParser", func() {
	var p *parser.MarkdownParser

	BeforeEach(func() {
		p = parser.NewMarkdownParser(newExtractor())
	})

	It("should support .md and .markdown", func() {
		Expect(p.SupportedExtensions()).To(ContainElements(".md", ".markdown"))
	})

	It("should extract from rust fences only, keeping document line numbers", func() {
		content, err := os.ReadFile(filepath.Join("..", "..", "testdata", "docs", "guide.md"))
		Expect(err).ToNot(HaveOccurred())

		src, err := p.Parse("guide.md", content, extract.NewAllowlist("test_hidden", "test_simple"))
		Expect(err).ToNot(HaveOccurred())
		Expect(src.FileType).To(Equal("markdown"))
		Expect(src.Cases).To(Equal([]domain.Case{
			{Function: "test_hidden", StartLine: 7, Args: []string{"--hidden", "foo"}},
			{Function: "test_simple", StartLine: 19, Args: []string{`a"b`}},
		}))
		Expect(src.Functions).To(Equal([]string{"test_hidden", "test_simple"}))
	})

	It("should ignore calls outside code fences", func() {
		content := []byte("fn test_simple() {\n    te.assert_output(&[\"a\"], \"\");\n}\n")
		src, err := p.Parse("prose.md", content, extract.NewAllowlist("test_simple"))
		Expect(err).ToNot(HaveOccurred())
		Expect(src.Cases).To(BeEmpty())
	})
})

var _ = Describe("AsciiDocParser", func() {
	It("should extract from [source,rust] listings", func() {
		content := []byte(`= Guide

[source,rust]
----
fn test_hidden() {
    te.assert_output(&["-H", "foo"], "");
}
----

[source,bash]
----
fn test_simple() {
    te.assert_output(&["bar"], "");
}
----
`)
		src, err := parser.NewAsciiDocParser(newExtractor()).Parse("guide.adoc", content,
			extract.NewAllowlist("test_hidden", "test_simple"))
		Expect(err).ToNot(HaveOccurred())
		Expect(src.FileType).To(Equal("asciidoc"))
		Expect(src.Cases).To(Equal([]domain.Case{
			{Function: "test_hidden", StartLine: 6, Args: []string{"-H", "foo"}},
		}))
	})
})

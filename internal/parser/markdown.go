package parser

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/frherrer/fdcompat/internal/domain"
	"github.com/frherrer/fdcompat/internal/extract"
)

// MarkdownParser scans fenced Rust code blocks in Markdown documents.
type MarkdownParser struct {
	extractor *extract.Extractor
}

// NewMarkdownParser creates a new MarkdownParser.
func NewMarkdownParser(ex *extract.Extractor) *MarkdownParser {
	return &MarkdownParser{extractor: ex}
}

// SupportedExtensions returns the file extensions this parser handles.
func (p *MarkdownParser) SupportedExtensions() []string {
	return []string{".md", ".markdown"}
}

// Parse walks the Markdown AST and runs the extractor over every fenced block
// tagged rust. Line numbers refer to the Markdown file.
func (p *MarkdownParser) Parse(filePath string, content []byte, allowlist extract.Allowlist) (*domain.ParsedSource, error) {
	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(content))

	masked := newMaskedLines(content)
	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		block, ok := n.(*ast.FencedCodeBlock)
		if !ok || !isRustTag(string(block.Language(content))) {
			return ast.WalkContinue, nil
		}

		lines := block.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			masked.set(lineNumber(content, seg.Start), string(seg.Value(content)))
		}
		return ast.WalkSkipChildren, nil
	})
	if err != nil {
		return nil, domain.NewErrorWithSuggestion("parse", domain.ReadFailure, filePath, 0,
			"failed to walk markdown AST",
			"check the markdown file for syntax issues; fenced code blocks need triple backticks",
			err)
	}

	return extractFrom(p.extractor, filePath, "markdown", masked.String(), allowlist), nil
}

// lineNumber calculates the 1-based line number for a byte offset.
func lineNumber(content []byte, offset int) int {
	return bytes.Count(content[:offset], []byte("\n")) + 1
}

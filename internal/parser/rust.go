package parser

import (
	"github.com/frherrer/fdcompat/internal/domain"
	"github.com/frherrer/fdcompat/internal/extract"
)

// RustParser scans a Rust test file as a whole.
type RustParser struct {
	extractor *extract.Extractor
}

// NewRustParser creates a new RustParser.
func NewRustParser(ex *extract.Extractor) *RustParser {
	return &RustParser{extractor: ex}
}

// SupportedExtensions returns the file extensions this parser handles.
func (p *RustParser) SupportedExtensions() []string {
	return []string{".rs"}
}

// Parse extracts allowlisted cases from the file content.
func (p *RustParser) Parse(filePath string, content []byte, allowlist extract.Allowlist) (*domain.ParsedSource, error) {
	return extractFrom(p.extractor, filePath, "rust", string(content), allowlist), nil
}

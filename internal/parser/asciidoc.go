package parser

import (
	"regexp"
	"strings"

	"github.com/frherrer/fdcompat/internal/domain"
	"github.com/frherrer/fdcompat/internal/extract"
)

// AsciiDocParser scans [source,rust] listing blocks in AsciiDoc documents.
type AsciiDocParser struct {
	extractor *extract.Extractor
}

// NewAsciiDocParser creates a new AsciiDocParser.
func NewAsciiDocParser(ex *extract.Extractor) *AsciiDocParser {
	return &AsciiDocParser{extractor: ex}
}

// SupportedExtensions returns the file extensions this parser handles.
func (p *AsciiDocParser) SupportedExtensions() []string {
	return []string{".adoc", ".asciidoc"}
}

var (
	// Matches [source,lang] and [source,lang,attr=...]
	asciidocSourceRe = regexp.MustCompile(`^\[source,([^,\]]+)(?:,.*)?\]\s*$`)
	// Matches ---- delimiter
	asciidocDelimRe = regexp.MustCompile(`^----+\s*$`)
)

// Parse runs the extractor over every Rust listing block. Line numbers refer
// to the AsciiDoc file.
func (p *AsciiDocParser) Parse(filePath string, content []byte, allowlist extract.Allowlist) (*domain.ParsedSource, error) {
	lines := strings.Split(string(content), "\n")
	masked := newMaskedLines(content)

	for i := 0; i < len(lines); i++ {
		m := asciidocSourceRe.FindStringSubmatch(strings.TrimRight(lines[i], "\r"))
		if m == nil || !isRustTag(m[1]) {
			continue
		}

		// Expect ---- delimiter on next line
		if i+1 >= len(lines) || !asciidocDelimRe.MatchString(lines[i+1]) {
			continue
		}
		i += 2
		for i < len(lines) && !asciidocDelimRe.MatchString(lines[i]) {
			masked.set(i+1, lines[i])
			i++
		}
	}

	return extractFrom(p.extractor, filePath, "asciidoc", masked.String(), allowlist), nil
}

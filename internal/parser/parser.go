package parser

import (
	"fmt"
	"strings"
	"sync"

	"github.com/frherrer/fdcompat/internal/domain"
	"github.com/frherrer/fdcompat/internal/extract"
)

// Parser extracts test cases from one kind of source file.
type Parser interface {
	Parse(filePath string, content []byte, allowlist extract.Allowlist) (*domain.ParsedSource, error)
	SupportedExtensions() []string
}

// ParserRegistry maps file extensions to parsers.
type ParserRegistry interface {
	Register(parser Parser)
	ParserFor(extension string) (Parser, error)
}

// DefaultRegistry is a thread-safe parser registry with fallback support.
type DefaultRegistry struct {
	mu       sync.RWMutex
	parsers  map[string]Parser
	fallback Parser
}

// NewRegistry creates a new DefaultRegistry.
func NewRegistry() *DefaultRegistry {
	return &DefaultRegistry{
		parsers: make(map[string]Parser),
	}
}

// NewDefaultRegistry registers the Rust, Markdown and AsciiDoc parsers around
// ex, with Rust as the fallback for unknown extensions.
func NewDefaultRegistry(ex *extract.Extractor) *DefaultRegistry {
	r := NewRegistry()
	rust := NewRustParser(ex)
	r.Register(rust)
	r.Register(NewMarkdownParser(ex))
	r.Register(NewAsciiDocParser(ex))
	r.SetFallback(rust)
	return r
}

// Register adds a parser to the registry for each of its supported extensions.
func (r *DefaultRegistry) Register(p Parser) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ext := range p.SupportedExtensions() {
		ext = strings.TrimPrefix(ext, ".")
		r.parsers[ext] = p
	}
}

// SetFallback sets the fallback parser for unregistered extensions.
func (r *DefaultRegistry) SetFallback(p Parser) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallback = p
}

// ParserFor returns the parser registered for the given file extension.
// If no parser is found, it returns the fallback parser if set.
func (r *DefaultRegistry) ParserFor(extension string) (Parser, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ext := strings.TrimPrefix(extension, ".")
	if p, ok := r.parsers[ext]; ok {
		return p, nil
	}
	if r.fallback != nil {
		return r.fallback, nil
	}
	return nil, fmt.Errorf("no parser registered for extension %q", extension)
}

// extractFrom runs ex over text and stamps filePath on the result.
func extractFrom(ex *extract.Extractor, filePath, fileType, text string, allowlist extract.Allowlist) *domain.ParsedSource {
	res := ex.Extract(text, allowlist)
	for i := range res.Skipped {
		res.Skipped[i].File = filePath
	}
	return &domain.ParsedSource{
		FilePath:  filePath,
		FileType:  fileType,
		Cases:     res.Cases,
		Skipped:   res.Skipped,
		Functions: res.Functions,
	}
}

// maskedLines holds a copy of a document where only embedded Rust code
// survives, each code line at its original line number.
type maskedLines []string

func newMaskedLines(content []byte) maskedLines {
	return make(maskedLines, strings.Count(string(content), "\n")+1)
}

func (m maskedLines) set(lineNo int, text string) {
	if lineNo >= 1 && lineNo <= len(m) {
		m[lineNo-1] = strings.TrimRight(text, "\r\n")
	}
}

func (m maskedLines) String() string {
	return strings.Join(m, "\n")
}

// isRustTag reports whether a code block language tag denotes Rust, allowing
// rustdoc-style suffixes such as "rust,ignore".
func isRustTag(tag string) bool {
	tag, _, _ = strings.Cut(strings.TrimSpace(tag), ",")
	switch strings.ToLower(tag) {
	case "rust", "rs":
		return true
	}
	return false
}

// Package literal decodes Rust string literals found in raw source text.
//
// Two forms are understood: ordinary quoted literals ("...") with the common
// escape set, and raw literals (r"...", r#"..."#, ...) whose content is taken
// verbatim. Both decoders take the whole buffer plus the offset of the
// literal's first byte and return the offset of the first byte after it, so
// callers can keep scanning without re-tokenizing.
package literal

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/frherrer/fdcompat/internal/domain"
)

const (
	quote     = '"'
	backslash = '\\'
	rawMarker = 'r'
	fence     = '#'
)

// Decode decodes the quoted literal whose opening quote is at buf[start].
func Decode(buf string, start int) (string, int, error) {
	if start >= len(buf) || buf[start] != quote {
		return "", start, fmt.Errorf("literal: expected '\"' at byte %d", start)
	}

	var out strings.Builder
	i := start + 1
	for i < len(buf) {
		c := buf[i]
		switch c {
		case quote:
			return out.String(), i + 1, nil
		case backslash:
			next, err := decodeEscape(buf, i, &out)
			if err != nil {
				return "", start, err
			}
			i = next
		default:
			out.WriteByte(c)
			i++
		}
	}
	return "", start, unterminated(start, "string literal")
}

// decodeEscape decodes the escape whose backslash is at buf[at], writes the
// result to out and returns the offset just past the escape.
func decodeEscape(buf string, at int, out *strings.Builder) (int, error) {
	i := at + 1
	if i >= len(buf) {
		return 0, unterminated(at, "escape")
	}

	switch c := buf[i]; c {
	case backslash:
		out.WriteByte(backslash)
	case quote:
		out.WriteByte(quote)
	case 'n':
		out.WriteByte('\n')
	case 'r':
		out.WriteByte('\r')
	case 't':
		out.WriteByte('\t')
	case '0':
		out.WriteByte(0)
	case 'x':
		if i+3 > len(buf) {
			return 0, unterminated(at, `\x escape`)
		}
		v, err := strconv.ParseUint(buf[i+1:i+3], 16, 8)
		if err != nil {
			return 0, invalidEscape(at, fmt.Sprintf(`bad \x escape %q`, buf[at:i+3]))
		}
		out.WriteRune(rune(v))
		return i + 3, nil
	case 'u':
		if i+1 >= len(buf) || buf[i+1] != '{' {
			return 0, invalidEscape(at, `unsupported \u escape, expected \u{...}`)
		}
		end := strings.IndexByte(buf[i+2:], '}')
		if end < 0 {
			return 0, invalidEscape(at, `unterminated \u{..} escape`)
		}
		hex := buf[i+2 : i+2+end]
		v, err := strconv.ParseUint(hex, 16, 32)
		if err != nil || !utf8.ValidRune(rune(v)) {
			return 0, invalidEscape(at, fmt.Sprintf(`bad \u{%s} escape`, hex))
		}
		out.WriteRune(rune(v))
		return i + 2 + end + 1, nil
	default:
		// Unknown escapes are kept as written.
		out.WriteByte(backslash)
		out.WriteByte(c)
	}
	return i + 1, nil
}

// DecodeRaw decodes the raw literal whose marker is at buf[start]. ok is false
// when buf[start] does not open a raw literal; the caller should then treat the
// byte as ordinary text.
func DecodeRaw(buf string, start int) (s string, next int, ok bool, err error) {
	if start >= len(buf) || buf[start] != rawMarker {
		return "", start, false, nil
	}

	i := start + 1
	hashes := 0
	for i < len(buf) && buf[i] == fence {
		hashes++
		i++
	}
	if i >= len(buf) || buf[i] != quote {
		return "", start, false, nil
	}
	i++

	contentStart := i
	for ; i < len(buf); i++ {
		if buf[i] != quote {
			continue
		}
		if closesRaw(buf, i+1, hashes) {
			return buf[contentStart:i], i + 1 + hashes, true, nil
		}
	}
	return "", start, true, unterminated(start, "raw string literal")
}

func closesRaw(buf string, at, hashes int) bool {
	if at+hashes > len(buf) {
		return false
	}
	for j := 0; j < hashes; j++ {
		if buf[at+j] != fence {
			return false
		}
	}
	return true
}

func unterminated(offset int, what string) error {
	return domain.NewError("extract", domain.UnterminatedLiteral, "", 0,
		fmt.Sprintf("unterminated %s starting at byte %d", what, offset), nil)
}

func invalidEscape(offset int, msg string) error {
	return domain.NewError("extract", domain.InvalidEscape, "", 0,
		fmt.Sprintf("%s at byte %d", msg, offset), nil)
}

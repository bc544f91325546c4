package extract

import (
	"strings"

	"github.com/frherrer/fdcompat/internal/domain"
	"github.com/frherrer/fdcompat/internal/literal"
)

const arrayOpen = "&["

// arrayState is the scanner state while walking a call's text.
type arrayState int

const (
	seekingOpen arrayState = iota
	inArray
	closed
)

// ParseArray decodes the first &[...] literal array in callText into its
// string arguments.
//
// Literals at any nesting depth are collected. Any other non-whitespace,
// non-comma byte at depth 1 marks the array as containing a non-literal
// argument; scanning still continues so the closing bracket is found.
func ParseArray(callText string) ([]string, error) {
	var (
		state      = seekingOpen
		depth      int
		i          int
		args       []string
		nonLiteral bool
	)

	for state != closed {
		switch state {
		case seekingOpen:
			open := strings.Index(callText, arrayOpen)
			if open < 0 {
				return nil, arrayError(domain.NoLiteralArray, "no &[...] in call")
			}
			i = open + len(arrayOpen)
			depth = 1
			state = inArray

		case inArray:
			if i >= len(callText) {
				return nil, arrayError(domain.UnbalancedArray, "unterminated &[...] array")
			}
			switch c := callText[i]; c {
			case '[':
				depth++
				i++
			case ']':
				depth--
				i++
				if depth == 0 {
					state = closed
				}
			case '"':
				s, next, err := literal.Decode(callText, i)
				if err != nil {
					return nil, err
				}
				args = append(args, s)
				i = next
			case 'r':
				s, next, ok, err := literal.DecodeRaw(callText, i)
				if err != nil {
					return nil, err
				}
				if ok {
					args = append(args, s)
					i = next
					continue
				}
				if depth == 1 {
					nonLiteral = true
				}
				i++
			default:
				if depth == 1 && !isSpaceOrComma(c) {
					nonLiteral = true
				}
				i++
			}
		}
	}

	if nonLiteral {
		return nil, arrayError(domain.NonLiteralArgument, "unsupported non-literal arg(s) in &[...]")
	}
	if len(args) == 0 {
		return nil, arrayError(domain.EmptyArray, "no string literal args found")
	}
	return args, nil
}

func isSpaceOrComma(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', ',':
		return true
	}
	return false
}

func arrayError(kind domain.ErrorKind, msg string) error {
	return domain.NewError("extract", kind, "", 0, msg, nil)
}

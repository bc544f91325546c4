// Package jsonl reads and writes extracted cases as JSON lines, one case per
// line with fields in the order function, start_line, args.
package jsonl

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/frherrer/fdcompat/internal/domain"
)

const schemaURL = "schema://fdcompat/case.json"

// caseSchema describes one JSONL record.
const caseSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["function", "start_line", "args"],
  "additionalProperties": false,
  "properties": {
    "function":   {"type": "string", "minLength": 1},
    "start_line": {"type": "integer", "minimum": 1},
    "args": {
      "type": "array",
      "minItems": 1,
      "items": {"type": "string"}
    }
  }
}`

// maxLine bounds a single record.
const maxLine = 1 << 20

// Marshal renders one case as a single JSON line without the trailing newline.
func Marshal(c domain.Case) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(c); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Write writes every case as one line. An empty case list still produces a
// single newline so the output is never a zero-byte file.
func Write(w io.Writer, cases []domain.Case) error {
	if len(cases) == 0 {
		_, err := io.WriteString(w, "\n")
		return err
	}
	for _, c := range cases {
		line, err := Marshal(c)
		if err != nil {
			return fmt.Errorf("encode case %s:%d: %w", c.Function, c.StartLine, err)
		}
		if _, err := w.Write(append(line, '\n')); err != nil {
			return err
		}
	}
	return nil
}

// Reader decodes and validates JSONL case records.
type Reader struct {
	schema *jsonschema.Schema
}

// NewReader compiles the record schema.
func NewReader() (*Reader, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(schemaURL, strings.NewReader(caseSchema)); err != nil {
		return nil, err
	}
	schema, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, err
	}
	return &Reader{schema: schema}, nil
}

// Read decodes every non-blank line of r. name is used in error messages.
func (rd *Reader) Read(r io.Reader, name string) ([]domain.Case, error) {
	var cases []domain.Case
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLine)

	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}

		var raw interface{}
		if err := json.Unmarshal(line, &raw); err != nil {
			return nil, domain.NewError("parse", domain.ReadFailure, name, lineNo, "invalid JSON", err)
		}
		if err := rd.schema.Validate(raw); err != nil {
			return nil, domain.NewError("parse", domain.ReadFailure, name, lineNo,
				"record does not match case schema", err)
		}

		var c domain.Case
		if err := json.Unmarshal(line, &c); err != nil {
			return nil, domain.NewError("parse", domain.ReadFailure, name, lineNo, "invalid case record", err)
		}
		cases = append(cases, c)
	}
	if err := sc.Err(); err != nil {
		return nil, domain.NewError("parse", domain.ReadFailure, name, 0, "failed to read cases", err)
	}
	return cases, nil
}

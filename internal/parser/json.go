package parser

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/xeipuuv/gojsonschema"
)

// CleanJSON strips markdown fences and any conversational text around the
// outermost JSON object or array.
func CleanJSON(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if idx := strings.Index(text, "\n"); idx >= 0 {
			firstLine := text[:idx]
			if len(firstLine) < 20 && !strings.ContainsAny(firstLine, " {[") {
				text = text[idx+1:]
			}
		}
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		text = strings.TrimSpace(text)
	}

	start := strings.IndexAny(text, "{[")
	if start < 0 {
		return text
	}
	closer := byte('}')
	if text[start] == '[' {
		closer = ']'
	}
	end := strings.LastIndexByte(text, closer)
	if end < start {
		return text[start:]
	}
	return text[start : end+1]
}

// ParseJSON strictly decodes text after CleanJSON. An empty array is a
// successful parse; anything that is not exactly one JSON value is a
// *ParseError carrying the raw text.
func ParseJSON(text string) (any, error) {
	cleaned := CleanJSON(text)
	if cleaned == "" {
		return nil, &ParseError{Raw: text, Reason: "empty response"}
	}

	dec := json.NewDecoder(strings.NewReader(cleaned))
	var value any
	if err := dec.Decode(&value); err != nil {
		return nil, &ParseError{Raw: text, Reason: "invalid json", Err: err}
	}
	if err := dec.Decode(new(any)); err != io.EOF {
		return nil, &ParseError{Raw: text, Reason: "trailing data after json value", Err: err}
	}

	return value, nil
}

// Schema is a compiled JSON Schema used by Decode.
type Schema struct {
	name   string
	schema *gojsonschema.Schema
}

// CompileSchema compiles a JSON Schema document.
func CompileSchema(name, source string) (*Schema, error) {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(source))
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", name, err)
	}
	return &Schema{name: name, schema: s}, nil
}

// MustSchema is CompileSchema for embedded schemas that are known to be valid.
func MustSchema(name, source string) *Schema {
	s, err := CompileSchema(name, source)
	if err != nil {
		panic(err)
	}
	return s
}

// Validate checks a parsed value against the schema.
func (s *Schema) Validate(value any) ([]string, error) {
	result, err := s.schema.Validate(gojsonschema.NewGoLoader(value))
	if err != nil {
		return nil, fmt.Errorf("validate against %s: %w", s.name, err)
	}
	if result.Valid() {
		return nil, nil
	}

	violations := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		violations = append(violations, field+": "+desc.Description())
	}
	return violations, nil
}

// Decode parses text, validates it against schema (when non-nil) and decodes
// it into out. Scalars are converted loosely, so "4" fills a float field.
func Decode(text string, schema *Schema, out any) error {
	value, err := ParseJSON(text)
	if err != nil {
		return err
	}
	return DecodeValue(text, value, schema, out)
}

// DecodeValue is Decode for a value already produced by ParseJSON.
func DecodeValue(raw string, value any, schema *Schema, out any) error {
	if schema != nil {
		violations, err := schema.Validate(value)
		if err != nil {
			return &ParseError{Raw: raw, Reason: "schema validation failed", Err: err}
		}
		if len(violations) > 0 {
			return &ParseError{Raw: raw, Reason: "response does not match " + schema.name, Violations: violations}
		}
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		TagName:          "json",
		Result:           out,
	})
	if err != nil {
		return fmt.Errorf("create decoder: %w", err)
	}
	if err := decoder.Decode(value); err != nil {
		return &ParseError{Raw: raw, Reason: "unexpected field types", Err: err}
	}
	return nil
}

package mappers

import (
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"github.com/turbot/elb-access-log-collector/helpers"
	"github.com/turbot/elb-access-log-collector/schema"
)

// AccessLogMapper parses raw access log lines into FieldVectors for a schema variant.
// Lines are tokenized strictly first; when that fails on malformed quoting the
// fallback recovers the request and the trailing fields by position.
type AccessLogMapper struct {
	schema *schema.RowSchema
}

func NewAccessLogMapper(s *schema.RowSchema) *AccessLogMapper {
	return &AccessLogMapper{schema: s}
}

func (m *AccessLogMapper) Identifier() string {
	return "elb_access_log_mapper_" + m.schema.Variant.String()
}

// Parse returns the FieldVector for line. An empty line returns a nil vector and no error.
func (m *AccessLogMapper) Parse(line string) (FieldVector, error) {
	if line == "" {
		return nil, nil
	}

	fields, strictErr := m.tokenize(line)
	if strictErr == nil {
		return fields, nil
	}

	fields, fallbackErr := m.parseFallback(line)
	if fallbackErr != nil {
		return nil, &LineParseError{Line: line, StrictErr: strictErr, FallbackErr: fallbackErr}
	}
	return fields, nil
}

// tokenize splits a space delimited line honouring double quote grouping
func (m *AccessLogMapper) tokenize(line string) (FieldVector, error) {
	r := csv.NewReader(strings.NewReader(line))
	r.Comma = ' '
	r.FieldsPerRecord = -1

	tokens, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return make(FieldVector, m.schema.FieldCount()), nil
		}
		return nil, &TokenizeError{Err: err}
	}

	fields := make(FieldVector, m.schema.FieldCount())
	for i := 0; i < len(tokens) && i < len(fields); i++ {
		fields[i] = field(tokens[i])
	}
	return fields, nil
}

func (m *AccessLogMapper) parseFallback(line string) (FieldVector, error) {
	leading := m.schema.LeadingFieldCount
	fields := make(FieldVector, m.schema.FieldCount())

	parts := helpers.SplitWhitespaceN(line, leading+1)
	for i := 0; i < len(parts) && i < leading; i++ {
		fields[i] = field(parts[i])
	}

	var rest string
	if len(parts) > leading {
		rest = parts[leading]
	}
	rest = strings.TrimPrefix(rest, `"`)
	end := strings.Index(rest, `"`)
	if end < 0 {
		return nil, errNoClosingQuote
	}
	fields[leading] = field(rest[:end])

	tail := strings.TrimSpace(rest[end+1:])
	for i, v := range helpers.RSplit(tail, " ", m.schema.TrailingFieldCount) {
		fields[leading+1+i] = unquote(v)
	}
	return fields, nil
}

// unquote strips exactly one pair of wrapping double quotes; an empty result is null
func unquote(s string) *string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	return field(s)
}

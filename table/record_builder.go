package table

import (
	"strings"

	"github.com/turbot/elb-access-log-collector/constants"
	"github.com/turbot/elb-access-log-collector/mappers"
	"github.com/turbot/elb-access-log-collector/schema"
)

type RecordBuilderOption func(*RecordBuilder)

// WithTypeCast controls numeric conversion; when disabled every value stays a string
func WithTypeCast(typeCast bool) RecordBuilderOption {
	return func(b *RecordBuilder) {
		b.typeCast = typeCast
	}
}

// WithSplitAddrPort controls splitting "address:port" fields into {prefix} and {prefix}_port
func WithSplitAddrPort(split bool) RecordBuilderOption {
	return func(b *RecordBuilder) {
		b.splitAddrPort = split
	}
}

// WithParseRequest controls adding the request.* fields
func WithParseRequest(parse bool) RecordBuilderOption {
	return func(b *RecordBuilder) {
		b.parseRequest = parse
	}
}

// RecordBuilder turns FieldVectors into Records for one schema
type RecordBuilder struct {
	schema        *schema.RowSchema
	typeCast      bool
	splitAddrPort bool
	parseRequest  bool
}

func NewRecordBuilder(s *schema.RowSchema, opts ...RecordBuilderOption) *RecordBuilder {
	b := &RecordBuilder{
		schema:        s,
		typeCast:      true,
		splitAddrPort: true,
		parseRequest:  true,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build zips the fields with the schema columns and adds the derived fields.
// A *URIParseError may be returned alongside the record; the record is still complete
// apart from the request.uri.* sub-fields.
func (b *RecordBuilder) Build(fields mappers.FieldVector) (Record, error) {
	record := make(Record, len(b.schema.Columns)+12)

	for i, c := range b.schema.Columns {
		value := fields.Value(i)
		switch {
		case !b.typeCast || c.Conversion == schema.ConversionNone:
			record[c.ColumnName] = nullablePtr(value)
		case c.Conversion == schema.ConversionFloat:
			record[c.ColumnName] = toFloat(value)
		case c.Conversion == schema.ConversionInteger:
			record[c.ColumnName] = toInteger(value)
		}
	}

	if b.splitAddrPort {
		for _, prefix := range b.schema.AddressColumns {
			b.splitAddressPort(record, prefix)
		}
	}

	if b.parseRequest {
		if request, ok := record[constants.FieldRequest].(string); ok {
			return record, b.addRequestFields(record, request)
		}
	}
	return record, nil
}

func (b *RecordBuilder) splitAddressPort(record Record, prefix string) {
	addressPort, ok := record[prefix].(string)
	if !ok {
		return
	}
	address, port, found := strings.Cut(addressPort, ":")
	record[prefix] = address
	if found {
		record[prefix+constants.PortSuffix] = b.castInteger(&port)
	} else {
		record[prefix+constants.PortSuffix] = b.castInteger(nil)
	}
}

func (b *RecordBuilder) castInteger(s *string) any {
	if !b.typeCast {
		return nullablePtr(s)
	}
	return toInteger(s)
}

package table

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/turbot/elb-access-log-collector/constants"
)

// RecordFilter matches records against per-field regular expressions
type RecordFilter struct {
	fields   []string
	patterns map[string]*regexp.Regexp
	any      bool
}

// NewRecordFilter compiles the field patterns. operator is "and" (all must match) or "or" (any).
// An empty pattern map matches every record.
func NewRecordFilter(patterns map[string]string, operator string) (*RecordFilter, error) {
	f := &RecordFilter{patterns: make(map[string]*regexp.Regexp, len(patterns))}

	switch operator {
	case "", constants.FilterOperatorAnd:
	case constants.FilterOperatorOr:
		f.any = true
	default:
		return nil, fmt.Errorf("invalid filter_operator %q, must be %q or %q", operator, constants.FilterOperatorAnd, constants.FilterOperatorOr)
	}

	for field, pattern := range patterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid filter for field %s: %w", field, err)
		}
		f.patterns[field] = re
		f.fields = append(f.fields, field)
	}
	sort.Strings(f.fields)
	return f, nil
}

func (f *RecordFilter) Match(record Record) bool {
	if f == nil || len(f.fields) == 0 {
		return true
	}
	for _, field := range f.fields {
		matched := f.patterns[field].MatchString(record.StringValue(field))
		if f.any && matched {
			return true
		}
		if !f.any && !matched {
			return false
		}
	}
	return !f.any
}

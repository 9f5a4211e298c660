package schema

import (
	"errors"
	"fmt"
	"regexp"
)

var validColumnNameRegex = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// IsValidColumnName checks a column name starts with a letter or underscore and contains only letters, digits, or underscores
func IsValidColumnName(name string) bool {
	return len(name) <= 255 && validColumnNameRegex.MatchString(name)
}

// Validate checks the column names are valid and unique, the field counts add up
// and every address column is a column of the schema
func (r *RowSchema) Validate() error {
	var errs []error

	seen := make(map[string]struct{}, len(r.Columns))
	for _, c := range r.Columns {
		if !IsValidColumnName(c.ColumnName) {
			errs = append(errs, fmt.Errorf("invalid column name %q", c.ColumnName))
		}
		if _, ok := seen[c.ColumnName]; ok {
			errs = append(errs, fmt.Errorf("duplicate column %q", c.ColumnName))
		}
		seen[c.ColumnName] = struct{}{}
	}

	// leading fields, the request, then the trailing fields
	if want := r.LeadingFieldCount + 1 + r.TrailingFieldCount; want != len(r.Columns) {
		errs = append(errs, fmt.Errorf("schema has %d columns but %d leading and %d trailing fields", len(r.Columns), r.LeadingFieldCount, r.TrailingFieldCount))
	}

	for _, a := range r.AddressColumns {
		if _, ok := seen[a]; !ok {
			errs = append(errs, fmt.Errorf("address column %q is not a column", a))
		}
	}
	return errors.Join(errs...)
}

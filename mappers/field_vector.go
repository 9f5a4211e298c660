package mappers

// FieldVector holds the positional tokens of one parsed line; a nil entry is a null field
type FieldVector []*string

// Value returns the field at index i, or nil when the field is null or out of range
func (v FieldVector) Value(i int) *string {
	if i < 0 || i >= len(v) {
		return nil
	}
	return v[i]
}

func (v FieldVector) Strings() []any {
	res := make([]any, len(v))
	for i, f := range v {
		if f != nil {
			res[i] = *f
		}
	}
	return res
}

func field(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

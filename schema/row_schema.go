package schema

// RowSchema is the positional field layout of one access log variant
type RowSchema struct {
	Variant Variant         `json:"variant"`
	Columns []*ColumnSchema `json:"columns"`
	// number of space separated fields preceding the quoted request
	LeadingFieldCount int `json:"leading_field_count"`
	// number of fields following the quoted request
	TrailingFieldCount int `json:"trailing_field_count"`
	// fields holding "address:port" values
	AddressColumns []string `json:"address_columns"`
}

func (r *RowSchema) FieldCount() int {
	return len(r.Columns)
}

func (r *RowSchema) ColumnNames() []string {
	res := make([]string, len(r.Columns))
	for i, c := range r.Columns {
		res[i] = c.ColumnName
	}
	return res
}

func (r *RowSchema) AsMap() map[string]*ColumnSchema {
	var res = make(map[string]*ColumnSchema, len(r.Columns))
	for _, c := range r.Columns {
		res[c.ColumnName] = c
	}
	return res
}

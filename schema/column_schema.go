package schema

// Conversion is the coercion applied to a raw field when building a record
type Conversion int

const (
	ConversionNone Conversion = iota
	ConversionFloat
	ConversionInteger
)

func (c Conversion) String() string {
	switch c {
	case ConversionFloat:
		return "to_float"
	case ConversionInteger:
		return "to_integer"
	default:
		return "none"
	}
}

type ColumnSchema struct {
	ColumnName string     `json:"name"`
	Conversion Conversion `json:"conversion"`
}

func column(name string) *ColumnSchema {
	return &ColumnSchema{ColumnName: name}
}

func floatColumn(name string) *ColumnSchema {
	return &ColumnSchema{ColumnName: name, Conversion: ConversionFloat}
}

func intColumn(name string) *ColumnSchema {
	return &ColumnSchema{ColumnName: name, Conversion: ConversionInteger}
}

package table

import (
	"strconv"
)

// Record is one structured access log entry. Values are string, int64, float64 or nil.
type Record map[string]any

// StringValue returns the string form of a record value; nil is the empty string
func (r Record) StringValue(key string) string {
	switch v := r[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	default:
		return ""
	}
}

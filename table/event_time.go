package table

import (
	"time"

	"github.com/turbot/elb-access-log-collector/constants"
)

// EventTime returns the instant in the record's timestamp field
func EventTime(record Record) (time.Time, error) {
	value := record.StringValue(constants.FieldTimestamp)
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, &TimestampParseError{Value: value, Err: err}
	}
	return t, nil
}

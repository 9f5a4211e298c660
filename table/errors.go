package table

import "fmt"

// URIParseError reports a request URI that could not be decomposed; the record is still usable
type URIParseError struct {
	URI string
	Err error
}

func (e *URIParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err, e.URI)
}

func (e *URIParseError) Unwrap() error {
	return e.Err
}

// TimestampParseError reports a record whose timestamp field is not a valid instant
type TimestampParseError struct {
	Value string
	Err   error
}

func (e *TimestampParseError) Error() string {
	return fmt.Sprintf("no time information in %q: %s", e.Value, e.Err)
}

func (e *TimestampParseError) Unwrap() error {
	return e.Err
}

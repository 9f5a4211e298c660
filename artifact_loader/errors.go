package artifact_loader

import "fmt"

const previewLength = 64

// DecodeError is returned when an object is not in the format its key claims
type DecodeError struct {
	Key     string
	Err     error
	Preview string
}

func newDecodeError(key string, data []byte, err error) *DecodeError {
	preview := data
	if len(preview) > previewLength {
		preview = preview[:previewLength]
	}
	return &DecodeError{Key: key, Err: err, Preview: fmt.Sprintf("%q", preview)}
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err, e.Preview)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

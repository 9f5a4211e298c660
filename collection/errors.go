package collection

import (
	"errors"
	"fmt"
	"strings"

	"github.com/turbot/elb-access-log-collector/emitter"
)

// ErrCycleInProgress is returned when a cycle is triggered while another is running
var ErrCycleInProgress = errors.New("collection cycle already in progress")

// PartialListError is returned by a cycle in which some prefixes could not be listed.
// Objects from the other prefixes were collected but the watermark was not advanced.
type PartialListError struct {
	Prefixes []string
	Err      error
}

func (e *PartialListError) Error() string {
	return fmt.Sprintf("failed to list %s: %s", strings.Join(e.Prefixes, ", "), e.Err)
}

func (e *PartialListError) Unwrap() error {
	return e.Err
}

// EmitError is returned when the records of an object could not all be emitted
type EmitError struct {
	Key string
	// records accepted by the emitter before the failure
	Delivered int
	Total     int
	Err       error
}

// Partial reports whether any record of the object reached an output
func (e *EmitError) Partial() bool {
	return e.Delivered > 0 || errors.Is(e.Err, emitter.ErrPartialDelivery)
}

func (e *EmitError) Error() string {
	return fmt.Sprintf("failed to emit records of %s after %d of %d: %s", e.Key, e.Delivered, e.Total, e.Err)
}

func (e *EmitError) Unwrap() error {
	return e.Err
}

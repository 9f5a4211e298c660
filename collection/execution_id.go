package collection

import "github.com/rs/xid"

// newExecutionId returns a unique, time ordered id for a collection cycle
func newExecutionId() string {
	return xid.New().String()
}

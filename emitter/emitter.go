package emitter

import (
	"context"

	"github.com/turbot/elb-access-log-collector/table"
)

// Event is a single emitted access log record
type Event struct {
	Tag string
	// unix seconds of the record timestamp
	Time   int64
	Record table.Record
}

// Emitter receives the records produced by a collection cycle
type Emitter interface {
	Identifier() string
	Emit(ctx context.Context, event Event) error
	Close() error
}

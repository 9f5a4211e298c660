package emitter

import (
	"context"
	"sync"
)

const MemoryEmitterIdentifier = "memory"

// MemoryEmitter keeps events in memory, for tests and dry runs
type MemoryEmitter struct {
	lock   sync.Mutex
	events []Event
}

func NewMemoryEmitter() *MemoryEmitter {
	return &MemoryEmitter{}
}

func (e *MemoryEmitter) Identifier() string {
	return MemoryEmitterIdentifier
}

func (e *MemoryEmitter) Emit(_ context.Context, event Event) error {
	e.lock.Lock()
	e.events = append(e.events, event)
	e.lock.Unlock()
	return nil
}

// Events returns a copy of the events emitted so far
func (e *MemoryEmitter) Events() []Event {
	e.lock.Lock()
	defer e.lock.Unlock()
	return append([]Event(nil), e.events...)
}

func (e *MemoryEmitter) Reset() {
	e.lock.Lock()
	e.events = nil
	e.lock.Unlock()
}

func (e *MemoryEmitter) Close() error {
	return nil
}

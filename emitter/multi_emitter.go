package emitter

import (
	"context"
	"errors"
	"sync"
)

const MultiEmitterIdentifier = "multi"

// ErrPartialDelivery is returned by MultiEmitter when some but not all of its emitters accepted an event
var ErrPartialDelivery = errors.New("event delivered to some outputs only")

// MultiEmitter fans every event out to all of its emitters
type MultiEmitter struct {
	lock     sync.RWMutex
	emitters []Emitter
}

func NewMultiEmitter(emitters ...Emitter) *MultiEmitter {
	return &MultiEmitter{emitters: emitters}
}

func (m *MultiEmitter) Identifier() string {
	return MultiEmitterIdentifier
}

func (m *MultiEmitter) Add(e Emitter) {
	m.lock.Lock()
	m.emitters = append(m.emitters, e)
	m.lock.Unlock()
}

func (m *MultiEmitter) Len() int {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return len(m.emitters)
}

// Emit sends the event to every emitter, even if an earlier one fails.
// If only some emitters fail the returned error wraps [ErrPartialDelivery].
func (m *MultiEmitter) Emit(ctx context.Context, event Event) error {
	m.lock.RLock()
	defer m.lock.RUnlock()

	var emitErrors []error
	for _, e := range m.emitters {
		if err := e.Emit(ctx, event); err != nil {
			emitErrors = append(emitErrors, err)
		}
	}
	if len(emitErrors) > 0 && len(emitErrors) < len(m.emitters) {
		return errors.Join(ErrPartialDelivery, errors.Join(emitErrors...))
	}
	return errors.Join(emitErrors...)
}

func (m *MultiEmitter) Close() error {
	m.lock.Lock()
	defer m.lock.Unlock()

	var closeErrors []error
	for _, e := range m.emitters {
		if err := e.Close(); err != nil {
			closeErrors = append(closeErrors, err)
		}
	}
	return errors.Join(closeErrors...)
}

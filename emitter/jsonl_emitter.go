package emitter

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	json "github.com/goccy/go-json"
	"github.com/mitchellh/go-homedir"
)

const JSONLEmitterIdentifier = "jsonl"

// StdoutPath selects standard output as the JSONL destination
const StdoutPath = "-"

// jsonLine is the serialized form of an event
type jsonLine struct {
	Tag    string         `json:"tag"`
	Time   int64          `json:"time"`
	Record map[string]any `json:"record"`
}

// JSONLEmitter writes one JSON object per event, each in a single write
type JSONLEmitter struct {
	lock   sync.Mutex
	enc    *json.Encoder
	closer io.Closer
}

// NewJSONLEmitter appends to the file at path, or writes to stdout when path is [StdoutPath]
func NewJSONLEmitter(path string) (*JSONLEmitter, error) {
	if path == "" || path == StdoutPath {
		return NewJSONLWriterEmitter(os.Stdout), nil
	}

	path, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("failed to expand jsonl output path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create jsonl output directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open jsonl output %s: %w", path, err)
	}
	e := NewJSONLWriterEmitter(f)
	e.closer = f
	return e, nil
}

// NewJSONLWriterEmitter writes to w. Closing the emitter does not close w.
func NewJSONLWriterEmitter(w io.Writer) *JSONLEmitter {
	return &JSONLEmitter{enc: json.NewEncoder(w)}
}

func (e *JSONLEmitter) Identifier() string {
	return JSONLEmitterIdentifier
}

func (e *JSONLEmitter) Emit(_ context.Context, event Event) error {
	e.lock.Lock()
	defer e.lock.Unlock()

	if err := e.enc.Encode(jsonLine{Tag: event.Tag, Time: event.Time, Record: event.Record}); err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	return nil
}

func (e *JSONLEmitter) Close() error {
	e.lock.Lock()
	defer e.lock.Unlock()
	if e.closer == nil {
		return nil
	}
	return e.closer.Close()
}

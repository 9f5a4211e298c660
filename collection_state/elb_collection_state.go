package collection_state

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/mitchellh/go-homedir"
)

// watermark file formats accepted on read, the first is used for writing
var watermarkLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05 MST",
	"2006-01-02 15:04:05 -0700",
	// zoneless forms are read as UTC
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ElbCollectionState tracks the watermark and the history of collected object keys,
// persisted to a plain text watermark file and a newline delimited history file.
// NOTE: the state is loaded once at startup and saved after every completed cycle
type ElbCollectionState struct {
	Mut sync.RWMutex

	// all objects with a key timestamp at or before this (less the buffer) are collected
	Watermark time.Time
	History   *History

	historyLength  int
	tsPath         string
	histPath       string
	savedWatermark time.Time
}

func NewElbCollectionState(tsPath, histPath string, historyLength int) *ElbCollectionState {
	return &ElbCollectionState{
		History:       NewHistory(),
		historyLength: historyLength,
		tsPath:        tsPath,
		histPath:      histPath,
	}
}

// Init loads the persisted state, creating empty state files if they do not exist.
// The watermark is seeded from the watermark file, falling back to startDatetime and then now.
func (s *ElbCollectionState) Init(startDatetime *time.Time, now time.Time) error {
	s.Mut.Lock()
	defer s.Mut.Unlock()

	var err error
	if s.tsPath, err = expandPath(s.tsPath); err != nil {
		return err
	}
	if s.histPath, err = expandPath(s.histPath); err != nil {
		return err
	}

	for _, p := range []string{s.tsPath, s.histPath} {
		if err := touch(p); err != nil {
			return err
		}
	}

	fileWatermark, err := s.loadWatermark()
	if err != nil {
		return err
	}

	switch {
	case fileWatermark != nil:
		if startDatetime != nil {
			slog.Warn("start_datetime is set but the watermark file is used", "start_datetime", startDatetime.UTC(), "watermark", fileWatermark)
		}
		s.Watermark = *fileWatermark
	case startDatetime != nil:
		s.Watermark = startDatetime.UTC()
	default:
		s.Watermark = now.UTC()
	}
	s.savedWatermark = s.Watermark

	keys, err := s.loadHistory()
	if err != nil {
		return err
	}
	s.History = NewHistory(keys...)

	slog.Info("Loaded collection state", "watermark", s.Watermark, "history", s.History.Len())
	return nil
}

func (s *ElbCollectionState) GetWatermark() time.Time {
	s.Mut.RLock()
	defer s.Mut.RUnlock()
	return s.Watermark
}

// Advance moves the watermark forward; an earlier timestamp is ignored
func (s *ElbCollectionState) Advance(watermark time.Time) {
	s.Mut.Lock()
	defer s.Mut.Unlock()
	if watermark.After(s.Watermark) {
		s.Watermark = watermark
	}
}

// ShouldCollect returns whether the object has not been collected yet
func (s *ElbCollectionState) ShouldCollect(key string) bool {
	s.Mut.RLock()
	defer s.Mut.RUnlock()
	return !s.History.Contains(key)
}

// OnCollected records that the object has been collected
func (s *ElbCollectionState) OnCollected(key string) {
	s.Mut.Lock()
	defer s.Mut.Unlock()
	s.History.Add(key)
}

// Save trims the history and writes both files. The watermark file is only rewritten when the watermark increased.
func (s *ElbCollectionState) Save() error {
	s.Mut.Lock()
	defer s.Mut.Unlock()

	s.History.Trim(s.historyLength)

	if s.Watermark.After(s.savedWatermark) {
		if err := os.WriteFile(s.tsPath, []byte(s.Watermark.UTC().Format(watermarkLayouts[0])), 0644); err != nil {
			return fmt.Errorf("failed to write watermark file: %w", err)
		}
		s.savedWatermark = s.Watermark
	}

	if err := os.WriteFile(s.histPath, []byte(strings.Join(s.History.Keys(), "\n")), 0644); err != nil {
		return fmt.Errorf("failed to write history file: %w", err)
	}
	return nil
}

func (s *ElbCollectionState) loadWatermark() (*time.Time, error) {
	data, err := os.ReadFile(s.tsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read watermark file: %w", err)
	}
	value := strings.TrimSpace(string(data))
	if value == "" {
		return nil, nil
	}
	t, err := ParseTime(value)
	if err != nil {
		slog.Warn("Ignoring unparseable watermark file", "path", s.tsPath, "error", err)
		return nil, nil
	}
	return &t, nil
}

func (s *ElbCollectionState) loadHistory() ([]string, error) {
	data, err := os.ReadFile(s.histPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read history file: %w", err)
	}
	var keys []string
	for _, k := range strings.Split(string(data), "\n") {
		if k != "" {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

// ParseTime parses a timestamp in any of the accepted watermark formats, returning UTC
func ParseTime(value string) (time.Time, error) {
	var errs []error
	for _, layout := range watermarkLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t.UTC(), nil
		}
		errs = append(errs, err)
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", value, errors.Join(errs...))
}

func expandPath(p string) (string, error) {
	expanded, err := homedir.Expand(p)
	if err != nil {
		return "", fmt.Errorf("failed to expand path %s: %w", p, err)
	}
	return expanded, nil
}

func touch(p string) error {
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", p, err)
	}
	f, err := os.OpenFile(p, os.O_CREATE|os.O_RDONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", p, err)
	}
	return f.Close()
}

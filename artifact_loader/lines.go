package artifact_loader

import (
	"bufio"
	"errors"
	"io"
)

const (
	initialLineBufferSize = 64 * 1024
	maxLineSize           = 1024 * 1024
)

// Lines is a single pass reader over the lines of a decoded object.
// Line terminators are removed. Lines longer than maxLineSize are skipped and counted.
// Reset rewinds to the first line.
type Lines struct {
	open    func() (io.Reader, error)
	reader  *bufio.Reader
	line    []byte
	err     error
	skipped int
}

func newLines(open func() (io.Reader, error)) (*Lines, error) {
	l := &Lines{open: open}
	if err := l.Reset(); err != nil {
		return nil, err
	}
	return l, nil
}

// Reset rewinds the reader to the start of the object
func (l *Lines) Reset() error {
	r, err := l.open()
	if err != nil {
		return err
	}
	l.reader = bufio.NewReaderSize(r, initialLineBufferSize)
	l.line = l.line[:0]
	l.err = nil
	l.skipped = 0
	return nil
}

// Scan advances to the next line, skipping overlong lines. It returns false at the end of the object or on error.
func (l *Lines) Scan() bool {
	for l.err == nil {
		ok, err := l.readLine()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				l.err = err
			}
			return false
		}
		if ok {
			return true
		}
		l.skipped++
	}
	return false
}

// readLine reads one line into l.line; ok is false when the line exceeded maxLineSize and was discarded
func (l *Lines) readLine() (bool, error) {
	l.line = l.line[:0]
	tooLong := false
	for {
		chunk, isPrefix, err := l.reader.ReadLine()
		if err != nil {
			return false, err
		}
		if !tooLong && len(l.line)+len(chunk) > maxLineSize {
			tooLong = true
			l.line = l.line[:0]
		}
		if !tooLong {
			l.line = append(l.line, chunk...)
		}
		if !isPrefix {
			break
		}
	}
	if tooLong {
		return false, nil
	}
	// a final line without a newline keeps its carriage return
	if n := len(l.line); n > 0 && l.line[n-1] == '\r' {
		l.line = l.line[:n-1]
	}
	return true, nil
}

func (l *Lines) Text() string {
	return string(l.line)
}

// Err returns the first non-EOF error encountered while reading, e.g. a corrupt gzip member
func (l *Lines) Err() error {
	return l.err
}

// Skipped returns the number of lines discarded for exceeding the maximum line length
func (l *Lines) Skipped() int {
	return l.skipped
}

// All reads every remaining line
func (l *Lines) All() ([]string, error) {
	var res []string
	for l.Scan() {
		res = append(res, l.Text())
	}
	return res, l.Err()
}

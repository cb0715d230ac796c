// Package errlog keeps the entries a conversion could not handle, so they can
// be inspected and re-run later.
package errlog

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// Sink appends one record per failed entry: the error on a single line,
// then the raw entry text verbatim, then a blank line.
type Sink struct {
	mu     sync.Mutex
	w      *bufio.Writer
	closer io.Closer
	count  int
}

// New returns a Sink writing to w. Close flushes but does not close w.
func New(w io.Writer) *Sink {
	return &Sink{w: bufio.NewWriter(w)}
}

// Create truncates or creates the file at path and returns a Sink that owns it.
func Create(path string) (*Sink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("errlog: create %s: %w", path, err)
	}
	s := New(f)
	s.closer = f
	return s, nil
}

// Record appends a failed entry.
func (s *Sink) Record(_ context.Context, raw string, err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg := strings.ReplaceAll(err.Error(), "\n", " ")
	if _, werr := fmt.Fprintf(s.w, "%s\n", msg); werr != nil {
		return fmt.Errorf("errlog: write: %w", werr)
	}
	if _, werr := s.w.WriteString(raw); werr != nil {
		return fmt.Errorf("errlog: write: %w", werr)
	}
	if !strings.HasSuffix(raw, "\n") {
		s.w.WriteByte('\n')
	}
	if werr := s.w.WriteByte('\n'); werr != nil {
		return fmt.Errorf("errlog: write: %w", werr)
	}
	s.count++
	return nil
}

// Count returns the number of records written.
func (s *Sink) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

// Close flushes buffered records and closes the file opened by Create.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.w.Flush(); err != nil {
		return fmt.Errorf("errlog: flush: %w", err)
	}
	if s.closer != nil {
		c := s.closer
		s.closer = nil
		return c.Close()
	}
	return nil
}

// Package segment splits a dictionary dump into the metadata preamble and
// per-entry text blocks.
package segment

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"
)

// EntryMarker starts every entry header line.
const EntryMarker = "<INDENT=1>"

// maxLineSize is the buffer size for bufio.Scanner (16 MB).
const maxLineSize = 16 << 20

// Block is the text of one entry: its header line and every line up to the
// next header.
type Block struct {
	// Seq numbers blocks from 0 in input order.
	Seq int
	// Line is the 1-based input line of the header.
	Line int
	// Text has every line terminated by a single "\n".
	Text string
	// Raw is the decoded input exactly as read, line endings included.
	Raw string
}

// Segmenter reads a dump in a single forward pass. Usage follows
// bufio.Scanner:
//
//	seg := segment.New(r)
//	meta, err := seg.Metadata()
//	for seg.Scan() {
//		b := seg.Block()
//	}
//	err = seg.Err()
type Segmenter struct {
	sc      *bufio.Scanner
	counter *CountingReader

	line     int
	metaDone bool
	metadata []string

	// next holds a header line read ahead while closing the previous block.
	next     string
	nextRaw  string
	nextLine int
	hasNext  bool

	seq   int
	block Block
	err   error
	done  bool
}

// New returns a Segmenter reading UTF-8 text from r.
func New(r io.Reader) *Segmenter {
	counter, ok := r.(*CountingReader)
	if !ok {
		counter = NewCountingReader(r)
	}
	sc := bufio.NewScanner(counter)
	sc.Split(scanRawLines)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &Segmenter{sc: sc, counter: counter}
}

// NewDecoding returns a Segmenter reading text in the named encoding from r.
// BytesConsumed counts bytes of r, before decoding.
func NewDecoding(r io.Reader, encoding string) (*Segmenter, error) {
	counter := NewCountingReader(r)
	decoded, err := Decode(counter, encoding)
	if err != nil {
		return nil, err
	}
	seg := New(decoded)
	seg.counter = counter
	return seg, nil
}

// Metadata returns the lines preceding the first entry header. It reads
// ahead to that header on first call.
func (s *Segmenter) Metadata() ([]string, error) {
	if s.metaDone {
		return s.metadata, s.err
	}
	s.metaDone = true

	for {
		line, raw, ok := s.readLine()
		if !ok {
			return s.metadata, s.err
		}
		if isEntryHeader(line) {
			s.next, s.nextRaw, s.nextLine, s.hasNext = line, raw, s.line, true
			return s.metadata, nil
		}
		s.metadata = append(s.metadata, line)
	}
}

// Scan advances to the next entry block. It returns false at the end of the
// input or on a read error.
func (s *Segmenter) Scan() bool {
	if !s.metaDone {
		if _, err := s.Metadata(); err != nil {
			return false
		}
	}
	if s.done || !s.hasNext {
		return false
	}

	var b, raw strings.Builder
	b.WriteString(s.next)
	b.WriteByte('\n')
	raw.WriteString(s.nextRaw)
	headerLine := s.nextLine
	s.hasNext = false

	for {
		line, lineRaw, ok := s.readLine()
		if !ok {
			s.done = true
			break
		}
		if isEntryHeader(line) {
			s.next, s.nextRaw, s.nextLine, s.hasNext = line, lineRaw, s.line, true
			break
		}
		b.WriteString(line)
		b.WriteByte('\n')
		raw.WriteString(lineRaw)
	}
	if s.err != nil {
		return false
	}

	s.block = Block{Seq: s.seq, Line: headerLine, Text: b.String(), Raw: raw.String()}
	s.seq++
	return true
}

// Block returns the block produced by the last successful Scan.
func (s *Segmenter) Block() Block {
	return s.block
}

// Err returns the first read error.
func (s *Segmenter) Err() error {
	return s.err
}

// BytesConsumed reports how many input bytes have been read so far.
func (s *Segmenter) BytesConsumed() int64 {
	return s.counter.Count()
}

// readLine returns the next line without its ending, and the same line as
// read.
func (s *Segmenter) readLine() (line, raw string, ok bool) {
	if !s.sc.Scan() {
		if err := s.sc.Err(); err != nil && s.err == nil {
			s.err = fmt.Errorf("read dump line %d: %w", s.line+1, err)
		}
		return "", "", false
	}
	s.line++
	raw = s.sc.Text()
	line = strings.TrimSuffix(strings.TrimSuffix(raw, "\n"), "\r")
	return line, raw, true
}

// scanRawLines is bufio.ScanLines keeping the line ending in the token.
func scanRawLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		return i + 1, data[:i+1], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

func isEntryHeader(line string) bool {
	return strings.HasPrefix(line, EntryMarker)
}

package segment

import (
	"fmt"
	"io"
	"strings"
	"sync/atomic"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Supported input encodings.
const (
	EncodingUTF8     = "utf-8"
	EncodingShiftJIS = "shift_jis"
	EncodingEUCJP    = "euc-jp"
)

// Encodings lists the accepted values of the input encoding setting.
var Encodings = []string{EncodingUTF8, EncodingShiftJIS, EncodingEUCJP}

// LookupEncoding resolves an encoding name. UTF-8 input may start with a
// byte order mark, which is dropped.
func LookupEncoding(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case EncodingUTF8, "utf8", "":
		return unicode.UTF8BOM, nil
	case EncodingShiftJIS, "sjis", "shift-jis":
		return japanese.ShiftJIS, nil
	case EncodingEUCJP, "eucjp", "euc_jp":
		return japanese.EUCJP, nil
	default:
		return nil, fmt.Errorf("unsupported input encoding %q", name)
	}
}

// Decode wraps r so that it yields UTF-8 text.
func Decode(r io.Reader, name string) (io.Reader, error) {
	enc, err := LookupEncoding(name)
	if err != nil {
		return nil, err
	}
	return transform.NewReader(r, enc.NewDecoder()), nil
}

// CountingReader counts the raw bytes read through it. Count is safe to call
// from another goroutine while reads are in progress.
type CountingReader struct {
	r io.Reader
	n atomic.Int64
}

func NewCountingReader(r io.Reader) *CountingReader {
	return &CountingReader{r: r}
}

func (c *CountingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n.Add(int64(n))
	return n, err
}

// Count returns the number of bytes read so far.
func (c *CountingReader) Count() int64 {
	return c.n.Load()
}

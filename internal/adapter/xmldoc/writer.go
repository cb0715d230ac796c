// Package xmldoc serializes converted entries into the importable XML
// dictionary document.
package xmldoc

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/heartmarshall/daijirin-converter/internal/domain"
)

const (
	Namespace     = "http://www.naturalorderjapanese.com"
	SchemaVersion = "1.0.0a"

	xsiNamespace = "http://www.w3.org/2001/XMLSchema-instance"
)

// SchemaLocation is the xsi:schemaLocation value of the root element.
const SchemaLocation = Namespace + " dictionary_schema-" + SchemaVersion + ".xsd"

var (
	errNotStarted = errors.New("xmldoc: entry written before dictionary metadata")
	errClosed     = errors.New("xmldoc: writer is closed")
)

var rootName = xml.Name{Local: "dictionary"}

// Writer streams one dictionary document: the metadata element first, then
// one element per entry. Close writes the end of the document. Nothing
// is buffered beyond the current entry.
type Writer struct {
	mu      sync.Mutex
	enc     *xml.Encoder
	started bool
	closed  bool
}

// New returns a Writer producing indented UTF-8 XML on w.
func New(w io.Writer) *Writer {
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	return &Writer{enc: enc}
}

// WriteMetadata writes the XML declaration, the root element start and the
// dictionary_meta element. It must be called exactly once, first.
func (w *Writer) WriteMetadata(_ context.Context, meta domain.DictionaryMetadata) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return errClosed
	}
	if w.started {
		return errors.New("xmldoc: dictionary metadata written twice")
	}

	decl := xml.ProcInst{Target: "xml", Inst: []byte(`version="1.0" encoding="UTF-8"`)}
	if err := w.enc.EncodeToken(decl); err != nil {
		return fmt.Errorf("xmldoc: write declaration: %w", err)
	}
	root := xml.StartElement{
		Name: rootName,
		Attr: []xml.Attr{
			{Name: xml.Name{Local: "xmlns"}, Value: Namespace},
			{Name: xml.Name{Local: "xmlns:xsi"}, Value: xsiNamespace},
			{Name: xml.Name{Local: "xsi:schemaLocation"}, Value: SchemaLocation},
			{Name: xml.Name{Local: "schema_version"}, Value: SchemaVersion},
		},
	}
	if err := w.enc.EncodeToken(root); err != nil {
		return fmt.Errorf("xmldoc: write root: %w", err)
	}
	if err := w.enc.Encode(toXMLMeta(meta)); err != nil {
		return fmt.Errorf("xmldoc: write metadata: %w", err)
	}
	w.started = true
	return nil
}

// WriteEntry appends one entry element.
func (w *Writer) WriteEntry(_ context.Context, entry domain.NormalizedEntry) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	switch {
	case w.closed:
		return errClosed
	case !w.started:
		return errNotStarted
	}
	if err := w.enc.Encode(toXMLEntry(entry)); err != nil {
		return fmt.Errorf("xmldoc: write entry %q: %w", entry.Kana, err)
	}
	return nil
}

// Close ends the root element and flushes. It does not close the
// underlying io.Writer. Calling Close twice is a no-op.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true
	if !w.started {
		return w.enc.Flush()
	}
	if err := w.enc.EncodeToken(xml.EndElement{Name: rootName}); err != nil {
		return fmt.Errorf("xmldoc: close root: %w", err)
	}
	if err := w.enc.EncodeToken(xml.CharData("\n")); err != nil {
		return fmt.Errorf("xmldoc: close root: %w", err)
	}
	return w.enc.Flush()
}

// Package convert drives a dump through the entry grammar and hands the
// resulting documents to writers.
package convert

import (
	"context"
	"errors"

	"github.com/heartmarshall/daijirin-converter/internal/domain"
	"github.com/heartmarshall/daijirin-converter/internal/segment"
)

// Source yields the metadata preamble and entry blocks of a dump.
// Implemented by segment.Segmenter.
type Source interface {
	Metadata() ([]string, error)
	Scan() bool
	Block() segment.Block
	Err() error
	BytesConsumed() int64
}

// Writer receives converted documents in input order. It is called from a
// single goroutine.
type Writer interface {
	WriteMetadata(ctx context.Context, meta domain.DictionaryMetadata) error
	WriteEntry(ctx context.Context, entry domain.NormalizedEntry) error
}

// ErrorSink records every entry that failed to convert together with the
// reason. A sink error aborts the run.
type ErrorSink interface {
	Record(ctx context.Context, raw string, err error) error
}

// MultiWriter duplicates every write to all of its writers, in order. The
// first failing writer stops the call.
type MultiWriter []Writer

func (m MultiWriter) WriteMetadata(ctx context.Context, meta domain.DictionaryMetadata) error {
	for _, w := range m {
		if err := w.WriteMetadata(ctx, meta); err != nil {
			return err
		}
	}
	return nil
}

func (m MultiWriter) WriteEntry(ctx context.Context, entry domain.NormalizedEntry) error {
	for _, w := range m {
		if err := w.WriteEntry(ctx, entry); err != nil {
			return err
		}
	}
	return nil
}

// Close closes every writer that implements Close, joining their errors.
func (m MultiWriter) Close() error {
	var errs []error
	for _, w := range m {
		if c, ok := w.(interface{ Close() error }); ok {
			errs = append(errs, c.Close())
		}
	}
	return errors.Join(errs...)
}

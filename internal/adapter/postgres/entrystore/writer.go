package entrystore

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/heartmarshall/daijirin-converter/internal/domain"
)

// Writer stores a conversion run: WriteMetadata registers the dictionary,
// every WriteEntry appends the next entry in input order. Not safe for
// concurrent use; the converter calls it from one goroutine.
type Writer struct {
	log          *slog.Logger
	repo         *Repo
	dictionaryID uuid.UUID
	position     int
}

func NewWriter(log *slog.Logger, repo *Repo) *Writer {
	return &Writer{log: log, repo: repo}
}

func (w *Writer) WriteMetadata(ctx context.Context, meta domain.DictionaryMetadata) error {
	if w.dictionaryID != uuid.Nil {
		return errors.New("entrystore: dictionary metadata written twice")
	}
	id, err := w.repo.CreateDictionary(ctx, meta)
	if err != nil {
		return err
	}
	w.dictionaryID = id
	w.log.Info("dictionary registered",
		slog.String("dictionary_id", id.String()),
		slog.String("title", meta.Title),
	)
	return nil
}

func (w *Writer) WriteEntry(ctx context.Context, entry domain.NormalizedEntry) error {
	if w.dictionaryID == uuid.Nil {
		return errors.New("entrystore: entry written before dictionary metadata")
	}
	if _, err := w.repo.InsertEntry(ctx, w.dictionaryID, w.position, entry); err != nil {
		return err
	}
	w.position++
	return nil
}

// DictionaryID returns the id assigned by WriteMetadata, or uuid.Nil.
func (w *Writer) DictionaryID() uuid.UUID {
	return w.dictionaryID
}

// Written returns the number of entries stored so far.
func (w *Writer) Written() int {
	return w.position
}

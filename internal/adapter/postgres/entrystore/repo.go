// Package entrystore keeps converted dictionary entries in PostgreSQL and
// reads them back as domain.NormalizedEntry trees. An entry and its kanji,
// definition nodes and usage examples are written as one aggregate.
package entrystore

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/heartmarshall/daijirin-converter/internal/adapter/postgres"
	"github.com/heartmarshall/daijirin-converter/internal/domain"
)

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// Repo provides entry persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
	txm  *postgres.TxManager
}

func New(pool *pgxpool.Pool, txm *postgres.TxManager) *Repo {
	return &Repo{pool: pool, txm: txm}
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// CreateDictionary registers one converted dump and returns its id.
func (r *Repo) CreateDictionary(ctx context.Context, meta domain.DictionaryMetadata) (uuid.UUID, error) {
	id := uuid.New()
	q := postgres.QuerierFromCtx(ctx, r.pool)
	_, err := q.Exec(ctx,
		`INSERT INTO dictionaries (id, title, dump_version, converter_version)
		 VALUES ($1, $2, $3, $4)`,
		id, meta.Title, meta.DumpVersion, meta.ConverterVersion,
	)
	if err != nil {
		return uuid.Nil, postgres.MapError(err, "dictionary", meta.Title)
	}
	return id, nil
}

// InsertEntry stores entry at position within the dictionary, in one
// transaction and one round trip. Definition nodes are numbered in
// pre-order so the tree can be rebuilt from a single ordered scan.
func (r *Repo) InsertEntry(ctx context.Context, dictionaryID uuid.UUID, position int, entry domain.NormalizedEntry) (uuid.UUID, error) {
	entryID := uuid.New()

	batch := &pgx.Batch{}
	batch.Queue(
		`INSERT INTO entries (id, dictionary_id, position, format, kana, kana_normalized, accent)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		entryID, dictionaryID, position, entry.Format, entry.Kana, domain.NormalizeKana(entry.Kana), entry.Accent,
	)
	for i, k := range entry.Kanji {
		batch.Queue(
			`INSERT INTO entry_kanji (entry_id, position, kanji) VALUES ($1, $2, $3)`,
			entryID, i, k,
		)
	}
	queueDefinitions(batch, entryID, &entry.Definition)

	err := r.txm.RunInTx(ctx, func(txCtx context.Context) error {
		return sendBatchExec(txCtx, postgres.QuerierFromCtx(txCtx, r.pool), batch)
	})
	if err != nil {
		return uuid.Nil, postgres.MapError(err, "entry", entry.Kana)
	}
	return entryID, nil
}

func queueDefinitions(batch *pgx.Batch, entryID uuid.UUID, root *domain.Definition) {
	position := 0
	var queue func(d *domain.Definition, parentID *uuid.UUID)
	queue = func(d *domain.Definition, parentID *uuid.UUID) {
		id := uuid.New()
		batch.Queue(
			`INSERT INTO definitions (id, entry_id, parent_id, position, group_tag, number, text)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			id, entryID, parentID, position, string(d.Group), d.Number, d.Text,
		)
		position++
		for i, ex := range d.Examples {
			batch.Queue(
				`INSERT INTO usage_examples (definition_id, position, type, expression)
				 VALUES ($1, $2, $3, $4)`,
				id, i, ex.Type, ex.Expression,
			)
		}
		for i := range d.Children {
			queue(&d.Children[i], &id)
		}
	}
	queue(root, nil)
}

// sendBatchExec sends a pgx.Batch and checks every statement result.
func sendBatchExec(ctx context.Context, q postgres.Querier, batch *pgx.Batch) (err error) {
	results := q.SendBatch(ctx, batch)
	defer func() {
		err = errors.Join(err, results.Close())
	}()

	for i := range batch.Len() {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("batch statement %d: %w", i, err)
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// Find returns the entries matching f in dictionary order. An empty filter
// returns an empty result without a query.
func (r *Repo) Find(ctx context.Context, f Filter) ([]domain.NormalizedEntry, error) {
	f.normalize()
	if f.empty() {
		return []domain.NormalizedEntry{}, nil
	}

	query := psql.
		Select("e.id", "e.format", "e.kana", "e.accent").
		From("entries e").
		Join("dictionaries d ON d.id = e.dictionary_id").
		Where(f.where()).
		OrderBy("d.created_at", "e.dictionary_id", "e.position").
		Limit(uint64(f.Limit))

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build entry query: %w", err)
	}

	q := postgres.QuerierFromCtx(ctx, r.pool)
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}

	var (
		ids     []uuid.UUID
		entries []domain.NormalizedEntry
	)
	for rows.Next() {
		var (
			id uuid.UUID
			e  domain.NormalizedEntry
		)
		if err := rows.Scan(&id, &e.Format, &e.Kana, &e.Accent); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		ids = append(ids, id)
		entries = append(entries, e)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	if len(entries) == 0 {
		return []domain.NormalizedEntry{}, nil
	}

	if err := r.loadTrees(ctx, q, ids, entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// FindByKana is Find with only a reading.
func (r *Repo) FindByKana(ctx context.Context, kana string, limit int) ([]domain.NormalizedEntry, error) {
	return r.Find(ctx, Filter{Kana: &kana, Limit: limit})
}

// FindByKanji is Find with only a surface spelling.
func (r *Repo) FindByKanji(ctx context.Context, kanji string, limit int) ([]domain.NormalizedEntry, error) {
	return r.Find(ctx, Filter{Kanji: &kanji, Limit: limit})
}

// CountEntries returns the number of entries stored for a dictionary.
func (r *Repo) CountEntries(ctx context.Context, dictionaryID uuid.UUID) (int, error) {
	var n int
	err := postgres.QuerierFromCtx(ctx, r.pool).QueryRow(ctx,
		`SELECT count(*) FROM entries WHERE dictionary_id = $1`, dictionaryID,
	).Scan(&n)
	if err != nil {
		return 0, postgres.MapError(err, "dictionary", dictionaryID)
	}
	return n, nil
}

package entrystore

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	postgres "github.com/heartmarshall/daijirin-converter/internal/adapter/postgres"
	"github.com/heartmarshall/daijirin-converter/internal/domain"
)

// node is a definition row while its tree is being assembled.
type node struct {
	def      domain.Definition
	children []*node
}

func (n *node) build() domain.Definition {
	d := n.def
	if len(n.children) > 0 {
		d.Children = make([]domain.Definition, len(n.children))
		for i, c := range n.children {
			d.Children[i] = c.build()
		}
	}
	return d
}

// loadTrees fills Kanji and Definition of entries; ids[i] is the row id of
// entries[i].
func (r *Repo) loadTrees(ctx context.Context, q postgres.Querier, ids []uuid.UUID, entries []domain.NormalizedEntry) error {
	index := make(map[uuid.UUID]int, len(ids))
	for i, id := range ids {
		index[id] = i
	}

	if err := loadKanji(ctx, q, ids, func(entryID uuid.UUID, kanji string) {
		e := &entries[index[entryID]]
		e.Kanji = append(e.Kanji, kanji)
	}); err != nil {
		return err
	}

	nodes, roots, err := loadDefinitions(ctx, q, ids)
	if err != nil {
		return err
	}
	if err := loadExamples(ctx, q, ids, nodes); err != nil {
		return err
	}

	for entryID, root := range roots {
		entries[index[entryID]].Definition = root.build()
	}
	return nil
}

func loadKanji(ctx context.Context, q postgres.Querier, ids []uuid.UUID, add func(entryID uuid.UUID, kanji string)) error {
	sql, args, err := psql.
		Select("entry_id", "kanji").
		From("entry_kanji").
		Where(squirrel.Expr("entry_id = ANY(?)", ids)).
		OrderBy("entry_id", "position").
		ToSql()
	if err != nil {
		return fmt.Errorf("build kanji query: %w", err)
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("query kanji: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			entryID uuid.UUID
			kanji   string
		)
		if err := rows.Scan(&entryID, &kanji); err != nil {
			return fmt.Errorf("scan kanji: %w", err)
		}
		add(entryID, kanji)
	}
	return rows.Err()
}

// loadDefinitions reads definition rows in pre-order, so every parent is
// seen before its children and siblings arrive in order.
func loadDefinitions(ctx context.Context, q postgres.Querier, ids []uuid.UUID) (map[uuid.UUID]*node, map[uuid.UUID]*node, error) {
	sql, args, err := psql.
		Select("id", "entry_id", "parent_id", "group_tag", "number", "text").
		From("definitions").
		Where(squirrel.Expr("entry_id = ANY(?)", ids)).
		OrderBy("entry_id", "position").
		ToSql()
	if err != nil {
		return nil, nil, fmt.Errorf("build definition query: %w", err)
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("query definitions: %w", err)
	}
	defer rows.Close()

	nodes := make(map[uuid.UUID]*node)
	roots := make(map[uuid.UUID]*node, len(ids))
	for rows.Next() {
		var (
			id, entryID uuid.UUID
			parentID    *uuid.UUID
			group       string
			n           node
		)
		if err := rows.Scan(&id, &entryID, &parentID, &group, &n.def.Number, &n.def.Text); err != nil {
			return nil, nil, fmt.Errorf("scan definition: %w", err)
		}
		n.def.Group = domain.GroupTag(group)
		if !n.def.Group.IsValid() {
			return nil, nil, fmt.Errorf("definition %s: unknown group tag %q", id, group)
		}
		nodes[id] = &n

		if parentID == nil {
			roots[entryID] = &n
			continue
		}
		parent, ok := nodes[*parentID]
		if !ok {
			return nil, nil, fmt.Errorf("definition %s: parent %s not loaded before child", id, *parentID)
		}
		parent.children = append(parent.children, &n)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("query definitions: %w", err)
	}
	return nodes, roots, nil
}

func loadExamples(ctx context.Context, q postgres.Querier, ids []uuid.UUID, nodes map[uuid.UUID]*node) error {
	sql, args, err := psql.
		Select("x.definition_id", "x.type", "x.expression").
		From("usage_examples x").
		Join("definitions d ON d.id = x.definition_id").
		Where(squirrel.Expr("d.entry_id = ANY(?)", ids)).
		OrderBy("x.definition_id", "x.position").
		ToSql()
	if err != nil {
		return fmt.Errorf("build example query: %w", err)
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("query examples: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			defID uuid.UUID
			ex    domain.Example
		)
		if err := rows.Scan(&defID, &ex.Type, &ex.Expression); err != nil {
			return fmt.Errorf("scan example: %w", err)
		}
		if n, ok := nodes[defID]; ok {
			n.def.Examples = append(n.def.Examples, ex)
		}
	}
	return rows.Err()
}

package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Shivanand-hulikatti/campus-events/internal/gateway"
)

const docColumns = `id, data, created_at, updated_at`

func scanDocument(row pgx.Row, collection string) (*gateway.Document, error) {
	d := gateway.Document{Collection: collection}
	var data map[string]any
	if err := row.Scan(&d.ID, &data, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, err
	}
	d.Fields = gateway.Fields(data)
	if d.Fields == nil {
		d.Fields = gateway.Fields{}
	}
	d.CreatedAt = d.CreatedAt.UTC()
	d.UpdatedAt = d.UpdatedAt.UTC()
	return &d, nil
}

// Create inserts a document; an empty id gets a UUID.
func (s *Store) Create(ctx context.Context, collection, id string, fields gateway.Fields) (*gateway.Document, error) {
	if id == "" {
		id = uuid.New().String()
	}
	now := s.timestamp()
	doc, err := scanDocument(s.db.QueryRow(ctx,
		`INSERT INTO documents (collection, id, data, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $4)
		 RETURNING `+docColumns,
		collection, id, map[string]any(gateway.Normalize(fields)), now,
	), collection)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, gateway.ErrConflict
		}
		return nil, fmt.Errorf("insert %s document: %w", collection, err)
	}
	return doc, nil
}

// Get returns one document or gateway.ErrNotFound.
func (s *Store) Get(ctx context.Context, collection, id string) (*gateway.Document, error) {
	doc, err := scanDocument(s.db.QueryRow(ctx,
		`SELECT `+docColumns+` FROM documents WHERE collection = $1 AND id = $2`,
		collection, id,
	), collection)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, gateway.ErrNotFound
		}
		return nil, fmt.Errorf("get %s document: %w", collection, err)
	}
	return doc, nil
}

// List returns the documents of collection matching queries.
func (s *Store) List(ctx context.Context, collection string, queries ...gateway.Query) ([]gateway.Document, error) {
	plan, err := gateway.Compile(queries)
	if err != nil {
		return nil, err
	}
	sql, args := listSQL(collection, plan)

	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list %s documents: %w", collection, err)
	}
	defer rows.Close()

	docs := []gateway.Document{}
	for rows.Next() {
		d, err := scanDocument(rows, collection)
		if err != nil {
			return nil, fmt.Errorf("scan %s document: %w", collection, err)
		}
		docs = append(docs, *d)
	}
	return docs, rows.Err()
}

// Update merges fields into the stored document with the jsonb || operator.
func (s *Store) Update(ctx context.Context, collection, id string, fields gateway.Fields) (*gateway.Document, error) {
	doc, err := scanDocument(s.db.QueryRow(ctx,
		`UPDATE documents
		 SET data = data || $3::jsonb, updated_at = $4
		 WHERE collection = $1 AND id = $2
		 RETURNING `+docColumns,
		collection, id, map[string]any(gateway.Normalize(fields)), s.timestamp(),
	), collection)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, gateway.ErrNotFound
		}
		return nil, fmt.Errorf("update %s document: %w", collection, err)
	}
	return doc, nil
}

// Delete removes one document.
func (s *Store) Delete(ctx context.Context, collection, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM documents WHERE collection = $1 AND id = $2`, collection, id)
	if err != nil {
		return fmt.Errorf("delete %s document: %w", collection, err)
	}
	if tag.RowsAffected() == 0 {
		return gateway.ErrNotFound
	}
	return nil
}

// listSQL renders plan as a SELECT. Field names are always bound as
// parameters; only the sort direction is spliced in.
func listSQL(collection string, plan gateway.Plan) (string, []any) {
	var b strings.Builder
	args := []any{collection}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	b.WriteString(`SELECT ` + docColumns + ` FROM documents WHERE collection = $1`)
	for _, f := range plan.Filters {
		b.WriteString(" AND ")
		switch f.Field {
		case gateway.FieldID:
			b.WriteString("id = ANY(" + arg(f.Values) + "::text[])")
		case gateway.FieldCreatedAt:
			b.WriteString("created_at = ANY(" + arg(parseTimes(f.Values)) + "::timestamptz[])")
		case gateway.FieldUpdatedAt:
			b.WriteString("updated_at = ANY(" + arg(parseTimes(f.Values)) + "::timestamptz[])")
		default:
			b.WriteString("data->>" + arg(f.Field) + "::text = ANY(" + arg(f.Values) + "::text[])")
		}
	}

	dir := "ASC"
	if plan.Desc {
		dir = "DESC"
	}
	b.WriteString(" ORDER BY ")
	switch plan.OrderBy {
	case gateway.FieldID:
		b.WriteString("id " + dir)
	case gateway.FieldCreatedAt:
		b.WriteString("created_at " + dir + ", id " + dir)
	case gateway.FieldUpdatedAt:
		b.WriteString("updated_at " + dir + ", id " + dir)
	default:
		b.WriteString("data->" + arg(plan.OrderBy) + "::text " + dir + ", created_at ASC")
	}

	if plan.Limit > 0 {
		b.WriteString(" LIMIT " + arg(plan.Limit))
	}
	return b.String(), args
}

func parseTimes(values []string) []time.Time {
	out := make([]time.Time, 0, len(values))
	for _, v := range values {
		if t, err := time.Parse(gateway.TimeLayout, v); err == nil {
			out = append(out, t)
		}
	}
	return out
}

package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"wtrfll/server/internal/lyrics/domain"
)

// PostgresRepository implements Repository on a Postgres database.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a Repository backed by db.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new catalog entry.
func (r *PostgresRepository) Create(ctx context.Context, e *domain.Entry) error {
	style, err := marshalStyle(e.Style)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO lyrics_entries (id, title, author, chordpro, style, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		e.ID, e.Title, e.Author, e.ChordPro, style, e.CreatedAt, e.UpdatedAt,
	)
	return err
}

// Update rewrites an existing entry, returning ErrEntryNotFound for an
// unknown id.
func (r *PostgresRepository) Update(ctx context.Context, e *domain.Entry) error {
	style, err := marshalStyle(e.Style)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE lyrics_entries
		SET title = $2, author = $3, chordpro = $4, style = $5, updated_at = $6
		WHERE id = $1`,
		e.ID, e.Title, e.Author, e.ChordPro, style, e.UpdatedAt,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// Delete removes an entry, returning ErrEntryNotFound for an unknown id.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM lyrics_entries WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// GetByID returns the entry for id, or nil if not found.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Entry, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, title, author, chordpro, style, created_at, updated_at
		FROM lyrics_entries WHERE id = $1`, id)

	var e domain.Entry
	var style []byte
	err := row.Scan(&e.ID, &e.Title, &e.Author, &e.ChordPro, &style, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(style) > 0 {
		if err := json.Unmarshal(style, &e.Style); err != nil {
			return nil, err
		}
	}
	return &e, nil
}

// Search lists entries whose title or author matches query, newest first.
// A blank query lists everything up to limit.
func (r *PostgresRepository) Search(ctx context.Context, query string, limit int) ([]*domain.Summary, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title, author, updated_at
		FROM lyrics_entries
		WHERE $1 = '' OR title ILIKE '%' || $1 || '%' OR author ILIKE '%' || $1 || '%'
		ORDER BY updated_at DESC
		LIMIT $2`, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Summary
	for rows.Next() {
		var s domain.Summary
		if err := rows.Scan(&s.ID, &s.Title, &s.Author, &s.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, &s)
	}
	return out, rows.Err()
}

func marshalStyle(s *domain.Style) ([]byte, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrEntryNotFound
	}
	return nil
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"wtrfll/server/internal/session/domain"
)

// PostgresRepository persists sessions and participants in Postgres.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a session repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// CreateSession persists the session. The session must have ID and tokens set.
func (r *PostgresRepository) CreateSession(ctx context.Context, s *domain.Session) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sessions (id, short_code, controller_join_token, display_join_token, status, name, created_at, scheduled_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		s.ID, s.ShortCode, s.ControllerJoinToken, s.DisplayJoinToken, string(s.Status), s.Name, s.CreatedAt, s.ScheduledAt,
	)
	return err
}

// GetSessionByID returns the session for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetSessionByID(ctx context.Context, id string) (*domain.Session, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, short_code, controller_join_token, display_join_token, status, name, created_at, scheduled_at
		FROM sessions WHERE id = $1`, id)
	return scanSession(row)
}

// ShortCodeExists reports whether any session already uses the short code.
func (r *PostgresRepository) ShortCodeExists(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM sessions WHERE short_code = $1)`, code).Scan(&exists)
	return exists, err
}

// ListRecent returns up to limit sessions scheduled (or, when unscheduled,
// created) at or after since, ordered by scheduled-or-created time.
func (r *PostgresRepository) ListRecent(ctx context.Context, since time.Time, limit int) ([]*domain.Session, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, short_code, controller_join_token, display_join_token, status, name, created_at, scheduled_at
		FROM sessions
		WHERE (scheduled_at IS NOT NULL AND scheduled_at >= $1)
		   OR (scheduled_at IS NULL AND created_at >= $1)
		ORDER BY COALESCE(scheduled_at, created_at)
		LIMIT $2`, since, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// AddParticipant inserts a participant row. The owning session row is locked
// for the duration of the transaction so a concurrent controller join cannot
// slip between the exists-check and the insert. Joins to different sessions
// proceed in parallel; only same-session joins contend on the row lock.
func (r *PostgresRepository) AddParticipant(ctx context.Context, p *domain.Participant) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var sessionID string
	err = tx.QueryRowContext(ctx, `SELECT id FROM sessions WHERE id = $1 FOR UPDATE`, p.SessionID).Scan(&sessionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrSessionNotFound
		}
		return err
	}

	if p.Role == domain.RoleController {
		var taken bool
		err = tx.QueryRowContext(ctx, `
			SELECT EXISTS (SELECT 1 FROM session_participants WHERE session_id = $1 AND role = $2)`,
			p.SessionID, string(domain.RoleController)).Scan(&taken)
		if err != nil {
			return err
		}
		if taken {
			return ErrControllerSeatTaken
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO session_participants (id, session_id, role, joined_at)
		VALUES ($1, $2, $3, $4)`,
		p.ID, p.SessionID, string(p.Role), p.JoinedAt)
	if err != nil {
		return err
	}
	return tx.Commit()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*domain.Session, error) {
	var s domain.Session
	var status string
	var scheduledAt sql.NullTime
	err := row.Scan(&s.ID, &s.ShortCode, &s.ControllerJoinToken, &s.DisplayJoinToken, &status, &s.Name, &s.CreatedAt, &scheduledAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	s.Status = domain.Status(status)
	if scheduledAt.Valid {
		t := scheduledAt.Time
		s.ScheduledAt = &t
	}
	return &s, nil
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sidesales/sidesales-backend/internal/apperrors"
	"github.com/sidesales/sidesales-backend/internal/model"
)

// SessionRepository provides data access methods for the sessions table.
// A session row exists for every access token that has not been revoked.
type SessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new SessionRepository with the provided database connection.
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// InsertSession records an issued token.
func (r *SessionRepository) InsertSession(ctx context.Context, s *model.Session) error {
	query := `
		INSERT INTO sessions (id, user_id, token_id, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		s.ID,
		s.UserID,
		s.TokenID,
		formatTimestamp(s.ExpiresAt),
		formatTimestamp(s.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", mapConstraintError(err, apperrors.ErrUserNotFound))
	}
	return nil
}

// GetSessionByTokenID returns the unexpired session for a token ID.
// Returns ErrSessionNotFound when the session was revoked or has expired.
func (r *SessionRepository) GetSessionByTokenID(ctx context.Context, tokenID string, now time.Time) (model.Session, error) {
	query := `
		SELECT id, user_id, token_id, expires_at, created_at
		FROM sessions
		WHERE token_id = ? AND expires_at > ?
	`

	var s model.Session
	var expiresAt, createdAt string
	err := r.db.QueryRowContext(ctx, query, tokenID, formatTimestamp(now)).Scan(
		&s.ID,
		&s.UserID,
		&s.TokenID,
		&expiresAt,
		&createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Session{}, apperrors.ErrSessionNotFound
	}
	if err != nil {
		return model.Session{}, fmt.Errorf("failed to query session: %w", err)
	}

	if s.ExpiresAt, err = ParseTime(expiresAt); err != nil {
		return model.Session{}, err
	}
	if s.CreatedAt, err = ParseTime(createdAt); err != nil {
		return model.Session{}, err
	}
	return s, nil
}

// DeleteSessionByTokenID revokes a token. Returns ErrSessionNotFound if it was already gone.
func (r *SessionRepository) DeleteSessionByTokenID(ctx context.Context, tokenID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE token_id = ?`, tokenID)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return checkRowsAffected(result, apperrors.ErrSessionNotFound)
}

// DeleteSessionsForUser revokes every token of a user.
func (r *SessionRepository) DeleteSessionsForUser(ctx context.Context, userID string) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE user_id = ?`, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete sessions: %w", err)
	}
	return result.RowsAffected()
}

// DeleteExpiredSessions removes sessions that expired before now and returns how many were removed.
func (r *SessionRepository) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= ?`, formatTimestamp(now))
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return result.RowsAffected()
}

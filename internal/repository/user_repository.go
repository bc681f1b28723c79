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

// UserRepository provides data access methods for the users table.
type UserRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewUserRepository creates a new UserRepository with the provided database connection.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// WithTx returns a new UserRepository scoped to the provided transaction.
func (r *UserRepository) WithTx(tx *sql.Tx) *UserRepository {
	return &UserRepository{
		db: r.db,
		tx: tx,
	}
}

// getQuerier returns the active transaction if one is set, otherwise the database connection.
func (r *UserRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

const userColumns = `id, username, email, first_name, last_name, role, is_active, password_hash, created_at, updated_at`

func scanUser(row rowScanner) (model.User, error) {
	var u model.User
	var createdAt, updatedAt string

	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.FirstName,
		&u.LastName,
		&u.Role,
		&u.IsActive,
		&u.PasswordHash,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return model.User{}, err
	}

	if u.CreatedAt, err = ParseTime(createdAt); err != nil {
		return model.User{}, err
	}
	if u.UpdatedAt, err = ParseTime(updatedAt); err != nil {
		return model.User{}, err
	}
	return u, nil
}

// ListUsers returns users ordered by username. Inactive users are only included
// when includeInactive is set.
func (r *UserRepository) ListUsers(ctx context.Context, includeInactive bool) ([]model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users`
	if !includeInactive {
		query += ` WHERE is_active = 1`
	}
	query += ` ORDER BY username COLLATE NOCASE`

	rows, err := r.getQuerier().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query users table: %w", err)
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan users table results: %w", err)
		}
		users = append(users, u)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users table: %w", err)
	}

	return users, nil
}

// GetUser retrieves a user by ID.
// Returns ErrUserNotFound if no user with the given ID exists.
func (r *UserRepository) GetUser(ctx context.Context, userID string) (model.User, error) {
	row := r.getQuerier().QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, userID)

	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, apperrors.ErrUserNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("failed to query user: %w", err)
	}
	return u, nil
}

// GetUserByUsername retrieves a user by username, case-insensitively.
// Returns ErrUserNotFound if no user matches.
func (r *UserRepository) GetUserByUsername(ctx context.Context, username string) (model.User, error) {
	row := r.getQuerier().QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = ? COLLATE NOCASE`, username)

	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, apperrors.ErrUserNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("failed to query user: %w", err)
	}
	return u, nil
}

// CountUsers returns the number of users, active or not.
func (r *UserRepository) CountUsers(ctx context.Context) (int, error) {
	var count int
	if err := r.getQuerier().QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

// CountActiveAdmins returns the number of active users holding the ADMIN role.
func (r *UserRepository) CountActiveAdmins(ctx context.Context) (int, error) {
	var count int
	err := r.getQuerier().QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE role = ? AND is_active = 1`, string(model.RoleAdmin)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count active admins: %w", err)
	}
	return count, nil
}

// InsertUser creates a new user. Returns ErrDuplicateEntry when the username is taken.
func (r *UserRepository) InsertUser(ctx context.Context, u *model.User) error {
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.getQuerier().ExecContext(ctx, query,
		u.ID,
		u.Username,
		u.Email,
		u.FirstName,
		u.LastName,
		u.Role,
		u.IsActive,
		u.PasswordHash,
		formatTimestamp(u.CreatedAt),
		formatTimestamp(u.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", mapConstraintError(err, nil))
	}
	return nil
}

// UpdateUser overwrites the profile, role and active flag of a user.
// The password hash is left untouched.
func (r *UserRepository) UpdateUser(ctx context.Context, u *model.User) error {
	query := `
		UPDATE users
		SET username = ?, email = ?, first_name = ?, last_name = ?, role = ?, is_active = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.getQuerier().ExecContext(ctx, query,
		u.Username,
		u.Email,
		u.FirstName,
		u.LastName,
		u.Role,
		u.IsActive,
		formatTimestamp(u.UpdatedAt),
		u.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", mapConstraintError(err, nil))
	}
	return checkRowsAffected(result, apperrors.ErrUserNotFound)
}

// UpdatePasswordHash replaces the stored password hash of a user.
func (r *UserRepository) UpdatePasswordHash(ctx context.Context, userID, hash string, updatedAt time.Time) error {
	result, err := r.getQuerier().ExecContext(ctx,
		`UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`, hash, formatTimestamp(updatedAt), userID)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return checkRowsAffected(result, apperrors.ErrUserNotFound)
}

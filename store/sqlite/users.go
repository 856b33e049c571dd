package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/warp/library-engine/members"
)

// =============================================================================
// USER STORE (members.UserStore interface)
// =============================================================================

type userRow struct {
	ID             string `db:"id"`
	Email          string `db:"email"`
	HashedPassword string `db:"hashed_password"`
	FullName       string `db:"full_name"`
	IsActive       bool   `db:"is_active"`
	IsAdmin        bool   `db:"is_admin"`
	CreatedAt      string `db:"created_at"`
}

func (r userRow) toUser() (*members.User, error) {
	createdAt, err := parseTime(r.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &members.User{
		ID:             r.ID,
		Email:          r.Email,
		HashedPassword: r.HashedPassword,
		FullName:       r.FullName,
		IsActive:       r.IsActive,
		IsAdmin:        r.IsAdmin,
		CreatedAt:      createdAt,
	}, nil
}

// CreateUser inserts a user. Maps the email uniqueness constraint to
// members.ErrDuplicateEmail.
func (s *Store) CreateUser(ctx context.Context, user *members.User) error {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO users (id, email, hashed_password, full_name, is_active, is_admin, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.ext.ExecContext(ctx, query,
		user.ID, user.Email, user.HashedPassword, user.FullName,
		user.IsActive, user.IsAdmin, fmtTime(user.CreatedAt))
	if err != nil {
		if isUniqueConstraintError(err, "users.email") {
			return members.ErrDuplicateEmail
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetUser returns a user by id.
func (s *Store) GetUser(ctx context.Context, id string) (*members.User, error) {
	var row userRow
	if err := sqlx.GetContext(ctx, s.ext, &row, `SELECT * FROM users WHERE id = ?`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, members.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return row.toUser()
}

// GetUserByEmail returns a user by email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*members.User, error) {
	var row userRow
	if err := sqlx.GetContext(ctx, s.ext, &row, `SELECT * FROM users WHERE email = ?`, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, members.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return row.toUser()
}

// ListUsers returns all users ordered by creation time.
func (s *Store) ListUsers(ctx context.Context) ([]members.User, error) {
	var rows []userRow
	if err := sqlx.SelectContext(ctx, s.ext, &rows, `SELECT * FROM users ORDER BY created_at ASC, id ASC`); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	users := make([]members.User, 0, len(rows))
	for _, r := range rows {
		u, err := r.toUser()
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, nil
}

// UpdateUser rewrites a user record.
func (s *Store) UpdateUser(ctx context.Context, user *members.User) error {
	query := `
		UPDATE users
		SET email = ?, hashed_password = ?, full_name = ?, is_active = ?, is_admin = ?
		WHERE id = ?
	`
	res, err := s.ext.ExecContext(ctx, query,
		user.Email, user.HashedPassword, user.FullName,
		user.IsActive, user.IsAdmin, user.ID)
	if err != nil {
		if isUniqueConstraintError(err, "users.email") {
			return members.ErrDuplicateEmail
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if n == 0 {
		return members.ErrUserNotFound
	}
	return nil
}

// DeleteUser removes a user.
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	res, err := s.ext.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		if isForeignKeyError(err) {
			return members.ErrUserInUse
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if n == 0 {
		return members.ErrUserNotFound
	}
	return nil
}

// UserExists reports whether a user id is present.
func (s *Store) UserExists(ctx context.Context, id string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM users WHERE id = ?)`
	if err := sqlx.GetContext(ctx, s.ext, &exists, query, id); err != nil {
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}
	return exists, nil
}

/*
Package members manages library user accounts.

PURPOSE:
  Plain CRUD over user records with two rules: emails are unique, and
  the raw password never touches storage - only its bcrypt hash does.
  Users are loan parties, nothing more; authentication and sessions are
  out of scope.

SEE ALSO:
  - lending package: loans reference users by id
  - store/sqlite/users.go: constraint-backed email uniqueness
*/
package members

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Sentinel errors for user operations. Use with errors.Is().
var (
	// ErrUserNotFound is returned when a referenced user id or email is absent.
	ErrUserNotFound = errors.New("user not found")

	// ErrDuplicateEmail is returned when a create/update collides with an
	// existing user's email.
	ErrDuplicateEmail = errors.New("email already registered")

	// ErrWeakPassword is returned when the supplied password is too short.
	ErrWeakPassword = errors.New("password too short")

	// ErrUserInUse is returned when deleting a user that loan rows still
	// reference.
	ErrUserInUse = errors.New("user referenced by loans")
)

const minPasswordLength = 8

// User is a library member.
type User struct {
	ID             string
	Email          string
	HashedPassword string
	FullName       string
	IsActive       bool
	IsAdmin        bool
	CreatedAt      time.Time
}

// UserStore handles persistence of user records.
type UserStore interface {
	CreateUser(ctx context.Context, user *User) error
	GetUser(ctx context.Context, id string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	ListUsers(ctx context.Context) ([]User, error)
	UpdateUser(ctx context.Context, user *User) error
	DeleteUser(ctx context.Context, id string) error
}

// Service provides user CRUD.
type Service struct {
	users UserStore
}

// NewService creates a members service over the given store.
func NewService(users UserStore) *Service {
	return &Service{users: users}
}

// CreateUser registers a new member. The account starts active and
// non-admin; the password is stored as a bcrypt hash.
func (s *Service) CreateUser(ctx context.Context, email, password, fullName string) (*User, error) {
	if strings.TrimSpace(email) == "" {
		return nil, fmt.Errorf("create user: email is required")
	}
	if len(password) < minPasswordLength {
		return nil, ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &User{
		ID:             uuid.NewString(),
		Email:          email,
		HashedPassword: string(hash),
		FullName:       fullName,
		IsActive:       true,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// GetUser returns a user by id.
func (s *Service) GetUser(ctx context.Context, id string) (*User, error) {
	return s.users.GetUser(ctx, id)
}

// GetUserByEmail returns a user by email.
func (s *Service) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return s.users.GetUserByEmail(ctx, email)
}

// ListUsers returns all users.
func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	return s.users.ListUsers(ctx)
}

// UpdateUserInput carries user updates. Nil fields are unchanged.
type UpdateUserInput struct {
	FullName *string
	IsActive *bool
	IsAdmin  *bool
	Password *string // rehashed when present
}

// UpdateUser rewrites fields of an existing user.
func (s *Service) UpdateUser(ctx context.Context, id string, in UpdateUserInput) (*User, error) {
	user, err := s.users.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.FullName != nil {
		user.FullName = *in.FullName
	}
	if in.IsActive != nil {
		user.IsActive = *in.IsActive
	}
	if in.IsAdmin != nil {
		user.IsAdmin = *in.IsAdmin
	}
	if in.Password != nil {
		if len(*in.Password) < minPasswordLength {
			return nil, ErrWeakPassword
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.HashedPassword = string(hash)
	}

	if err := s.users.UpdateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteUser removes a user.
func (s *Service) DeleteUser(ctx context.Context, id string) error {
	return s.users.DeleteUser(ctx, id)
}

// VerifyPassword reports whether password matches the stored hash.
func VerifyPassword(hashedPassword, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)) == nil
}

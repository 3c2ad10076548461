// Package records is the boundary to the hosted auth and row store backing
// the dashboard. Callers work with typed rows; table and column names are
// validated here before anything reaches the backend.
package records

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	ErrNotFound           = errors.New("row not found")
	ErrUnknownTable       = errors.New("unknown table")
	ErrUnknownColumn      = errors.New("unknown column")
	ErrRowType            = errors.New("row type does not match table")
	ErrOwnerRequired      = errors.New("owner filter required")
	ErrEmptyChanges       = errors.New("no columns to update")
	ErrImmutableColumn    = errors.New("column cannot be updated")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserAlreadyExists  = errors.New("a user with this email already exists")
	ErrInvalidSession     = errors.New("session is invalid or has expired")
)

// BackendError wraps a failure reported by the backend itself, as opposed to
// a request rejected at this boundary.
type BackendError struct {
	Op    string
	Table Table
	Err   error
}

func (e *BackendError) Error() string {
	if e.Table != "" {
		return fmt.Sprintf("records: %s %s: %v", e.Op, e.Table, e.Err)
	}
	return fmt.Sprintf("records: %s: %v", e.Op, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// Filter matches rows whose columns equal the given values.
type Filter map[string]any

// Changes maps columns to their new values.
type Changes map[string]any

type Order struct {
	Column     string
	Descending bool
}

type Query struct {
	Filter Filter
	Order  *Order
	Limit  int
}

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// Session is an authenticated user's handle, created at sign-in and revoked
// at sign-out.
type Session struct {
	ID        string    `json:"id"`
	Token     string    `json:"token"`
	User      User      `json:"user"`
	Profile   *Profile  `json:"profile,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
	Demo      bool      `json:"demo"`
}

type SignUpParams struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

type Client interface {
	GetSession(ctx context.Context, token string) (*Session, error)
	SignIn(ctx context.Context, email, password string) (*Session, error)
	SignUp(ctx context.Context, params SignUpParams) (*Session, error)
	SignOut(ctx context.Context, token string) error
	ResetPassword(ctx context.Context, email string) error
	UpdatePassword(ctx context.Context, resetToken, password string) error

	// GetRow loads the first row matching filter into dest, a pointer to the
	// table's row struct.
	GetRow(ctx context.Context, table Table, filter Filter, dest any) error
	// ListRows loads matching rows into dest, a pointer to a slice of the
	// table's row struct.
	ListRows(ctx context.Context, table Table, q Query, dest any) error
	// InsertRow stores row, a pointer to the table's row struct. Empty ids and
	// zero creation times are filled in.
	InsertRow(ctx context.Context, table Table, row any) error
	UpdateRow(ctx context.Context, table Table, filter Filter, changes Changes) error

	Demo() bool
}

// ResetNotifier delivers a password reset token to the account owner.
type ResetNotifier func(ctx context.Context, email, token string)

func stringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

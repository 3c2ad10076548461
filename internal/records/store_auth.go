package records

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"claudehub/internal/auth"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

type authUser struct {
	ID           string    `db:"id"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
}

func (u *authUser) public() User {
	return User{ID: u.ID, Email: u.Email, CreatedAt: u.CreatedAt}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Store) userByEmail(ctx context.Context, email string) (*authUser, error) {
	query := `
		SELECT id, email, password_hash, created_at
		FROM auth_users
		WHERE email = $1
	`
	var user authUser
	err := s.db.GetContext(ctx, &user, query, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, &BackendError{Op: "get user by email", Err: err}
	}
	return &user, nil
}

func (s *Store) userByID(ctx context.Context, id string) (*authUser, error) {
	query := `
		SELECT id, email, password_hash, created_at
		FROM auth_users
		WHERE id = $1
	`
	var user authUser
	err := s.db.GetContext(ctx, &user, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, &BackendError{Op: "get user by id", Err: err}
	}
	return &user, nil
}

// profile loads the user's profile; a missing or unreadable profile does not
// fail the session.
func (s *Store) profile(ctx context.Context, userID string) *Profile {
	var p Profile
	err := s.GetRow(ctx, TableProfiles, Filter{"id": userID}, &p)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			logrus.Warnf("Failed to load profile for user %s: %v", userID, err)
		}
		return nil
	}
	return &p
}

func (s *Store) openSession(ctx context.Context, user *authUser) (*Session, error) {
	sessionID := uuid.New().String()
	token, expiresAt, err := auth.GenerateJWTToken(user.ID, user.Email, sessionID, s.signingKey, s.sessionTTL)
	if err != nil {
		return nil, &BackendError{Op: "sign session", Err: err}
	}

	query := `
		INSERT INTO auth_sessions (id, user_id, created_at, expires_at)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := s.db.ExecContext(ctx, query, sessionID, user.ID, s.now(), expiresAt); err != nil {
		return nil, &BackendError{Op: "create session", Err: err}
	}

	return &Session{
		ID:        sessionID,
		Token:     token,
		User:      user.public(),
		Profile:   s.profile(ctx, user.ID),
		ExpiresAt: expiresAt,
	}, nil
}

func (s *Store) SignIn(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.userByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if user == nil || !auth.CheckPasswordHash(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return s.openSession(ctx, user)
}

func (s *Store) SignUp(ctx context.Context, params SignUpParams) (*Session, error) {
	email := normalizeEmail(params.Email)
	existing, err := s.userByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUserAlreadyExists
	}

	hash, err := auth.HashPassword(params.Password)
	if err != nil {
		return nil, &BackendError{Op: "hash password", Err: err}
	}

	user := &authUser{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    s.now(),
	}
	profile := &Profile{
		ID:        user.ID,
		CreatedAt: user.CreatedAt,
		Email:     email,
		FirstName: stringPtr(params.FirstName),
		LastName:  stringPtr(params.LastName),
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, &BackendError{Op: "sign up", Err: err}
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO auth_users (id, email, password_hash, created_at) VALUES ($1, $2, $3, $4)`,
		user.ID, user.Email, user.PasswordHash, user.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, ErrUserAlreadyExists
		}
		return nil, &BackendError{Op: "sign up", Err: err}
	}
	if _, err := tx.NamedExecContext(ctx, buildInsert(schemas[TableProfiles]), profile); err != nil {
		return nil, &BackendError{Op: "insert", Table: TableProfiles, Err: err}
	}
	if err := tx.Commit(); err != nil {
		return nil, &BackendError{Op: "sign up", Err: err}
	}

	logrus.Infof("Registered user %s", user.ID)
	return s.openSession(ctx, user)
}

func (s *Store) SignOut(ctx context.Context, token string) error {
	claims, err := auth.ValidateJWTToken(token, s.signingKey)
	if err != nil {
		return ErrInvalidSession
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM auth_sessions WHERE id = $1`, claims.SessionID()); err != nil {
		return &BackendError{Op: "sign out", Err: err}
	}
	return nil
}

func (s *Store) GetSession(ctx context.Context, token string) (*Session, error) {
	claims, err := auth.ValidateJWTToken(token, s.signingKey)
	if err != nil {
		logrus.Debugf("Rejected session token: %v", err)
		return nil, ErrInvalidSession
	}

	var expiresAt time.Time
	err = s.db.GetContext(ctx, &expiresAt,
		`SELECT expires_at FROM auth_sessions WHERE id = $1 AND user_id = $2`,
		claims.SessionID(), claims.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidSession
		}
		return nil, &BackendError{Op: "get session", Err: err}
	}
	if s.now().After(expiresAt) {
		return nil, ErrInvalidSession
	}

	user, err := s.userByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidSession
	}

	return &Session{
		ID:        claims.SessionID(),
		Token:     token,
		User:      user.public(),
		Profile:   s.profile(ctx, user.ID),
		ExpiresAt: expiresAt,
	}, nil
}

func (s *Store) ResetPassword(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	user, err := s.userByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil {
		logrus.Infof("Password reset requested for unknown email")
		return nil
	}

	token, err := s.resets.Issue(user.ID)
	if err != nil {
		return err
	}
	s.notify(ctx, email, token)
	return nil
}

func (s *Store) UpdatePassword(ctx context.Context, resetToken, password string) error {
	userID, err := s.resets.Consume(resetToken)
	if err != nil {
		return err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return &BackendError{Op: "hash password", Err: err}
	}
	if _, err := s.db.ExecContext(ctx, `UPDATE auth_users SET password_hash = $1 WHERE id = $2`, hash, userID); err != nil {
		return &BackendError{Op: "update password", Err: err}
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM auth_sessions WHERE user_id = $1`, userID); err != nil {
		logrus.Warnf("Failed to revoke sessions of user %s after password change: %v", userID, err)
	}
	return nil
}

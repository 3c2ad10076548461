package records

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"reflect"
	"time"

	"claudehub/internal/auth"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

//go:embed schema.sql
var schemaSQL string

// Store is the Postgres-backed records client.
type Store struct {
	db         *sqlx.DB
	signingKey string
	sessionTTL time.Duration
	privileged bool
	resets     *auth.ResetTokens
	notify     ResetNotifier
	now        func() time.Time
}

type StoreOption func(*Store)

func WithSessionTTL(ttl time.Duration) StoreOption {
	return func(s *Store) {
		if ttl > 0 {
			s.sessionTTL = ttl
		}
	}
}

func WithResetNotifier(notify ResetNotifier) StoreOption {
	return func(s *Store) {
		s.notify = notify
	}
}

// Privileged lifts the owner-filter requirement on row operations. It is
// meant for server-side maintenance holding the service key.
func Privileged() StoreOption {
	return func(s *Store) {
		s.privileged = true
	}
}

func NewStore(db *sqlx.DB, signingKey string, opts ...StoreOption) *Store {
	s := &Store{
		db:         db,
		signingKey: signingKey,
		sessionTTL: 24 * time.Hour,
		resets:     auth.NewResetTokens(),
		notify:     LogResetNotifier,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LogResetNotifier records the reset link in the server log in place of mail delivery.
func LogResetNotifier(_ context.Context, email, token string) {
	logrus.WithField("email", email).Infof("Password reset requested, link: /reset-password?token=%s", token)
}

func (s *Store) Demo() bool {
	return false
}

func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return &BackendError{Op: "migrate", Err: err}
	}
	return nil
}

func (s *Store) GetRow(ctx context.Context, table Table, filter Filter, dest any) error {
	sc, err := schemaFor(table)
	if err != nil {
		return err
	}
	if _, err := sc.checkRow(dest); err != nil {
		return err
	}
	if !s.privileged {
		if err := sc.checkOwner(filter); err != nil {
			return err
		}
	}

	query, args, err := buildSelect(sc, Query{Filter: filter, Limit: 1})
	if err != nil {
		return err
	}
	if err := s.db.GetContext(ctx, dest, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return &BackendError{Op: "get", Table: table, Err: err}
	}
	return nil
}

func (s *Store) ListRows(ctx context.Context, table Table, q Query, dest any) error {
	sc, err := schemaFor(table)
	if err != nil {
		return err
	}
	if _, err := sc.checkSlice(dest); err != nil {
		return err
	}
	if !s.privileged {
		if err := sc.checkOwner(q.Filter); err != nil {
			return err
		}
	}

	query, args, err := buildSelect(sc, q)
	if err != nil {
		return err
	}
	if err := s.db.SelectContext(ctx, dest, query, args...); err != nil {
		return &BackendError{Op: "list", Table: table, Err: err}
	}
	return nil
}

func (s *Store) InsertRow(ctx context.Context, table Table, row any) error {
	sc, err := schemaFor(table)
	if err != nil {
		return err
	}
	v, err := sc.checkRow(row)
	if err != nil {
		return err
	}
	if !s.privileged && ownerOf(sc, v) == "" {
		return fmt.Errorf("%w: %s needs %s", ErrOwnerRequired, table, sc.owner)
	}
	fillDefaults(v, s.now())

	if _, err := s.db.NamedExecContext(ctx, buildInsert(sc), row); err != nil {
		return &BackendError{Op: "insert", Table: table, Err: err}
	}
	return nil
}

func (s *Store) UpdateRow(ctx context.Context, table Table, filter Filter, changes Changes) error {
	sc, err := schemaFor(table)
	if err != nil {
		return err
	}
	if !s.privileged {
		if err := sc.checkOwner(filter); err != nil {
			return err
		}
	}

	query, args, err := buildUpdate(sc, filter, changes)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return &BackendError{Op: "update", Table: table, Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return &BackendError{Op: "update", Table: table, Err: err}
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func ownerOf(sc *schema, row reflect.Value) string {
	field := mapper.FieldByName(row, sc.owner)
	if !field.IsValid() {
		return ""
	}
	return field.String()
}

// fillDefaults assigns a fresh id and creation time when the row leaves them empty.
func fillDefaults(row reflect.Value, now time.Time) {
	if id := mapper.FieldByName(row, "id"); id.IsValid() && id.Kind() == reflect.String && id.String() == "" {
		id.SetString(uuid.New().String())
	}
	if created := mapper.FieldByName(row, "created_at"); created.IsValid() {
		if t, ok := created.Interface().(time.Time); ok && t.IsZero() {
			created.Set(reflect.ValueOf(now))
		}
	}
}

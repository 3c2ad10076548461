package records

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"claudehub/internal/auth"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSigningKey = "test-anon-key"

var testNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

var (
	authUserColumns = []string{"id", "email", "password_hash", "created_at"}
	profileColumns  = []string{"id", "created_at", "email", "first_name", "last_name", "avatar_url", "phone"}
)

func newMockStore(t *testing.T, opts ...StoreOption) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})

	store := NewStore(sqlx.NewDb(db, "postgres"), testSigningKey, opts...)
	store.now = func() time.Time { return testNow }
	return store, mock
}

func sqlText(s string) string {
	return regexp.QuoteMeta(s)
}

func expectNoProfile(mock sqlmock.Sqlmock, userID any) {
	mock.ExpectQuery(sqlText(`FROM "profiles" WHERE "id" = $1 LIMIT 1`)).
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows(profileColumns))
}

func expectUserByEmail(mock sqlmock.Sqlmock, email string, rows *sqlmock.Rows) {
	mock.ExpectQuery(sqlText("FROM auth_users WHERE email = $1")).
		WithArgs(email).
		WillReturnRows(rows)
}

func TestStoreSignUp(t *testing.T) {
	store, mock := newMockStore(t)

	expectUserByEmail(mock, "ada@example.com", sqlmock.NewRows(authUserColumns))
	mock.ExpectBegin()
	mock.ExpectExec(sqlText("INSERT INTO auth_users (id, email, password_hash, created_at) VALUES ($1, $2, $3, $4)")).
		WithArgs(sqlmock.AnyArg(), "ada@example.com", sqlmock.AnyArg(), testNow).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(sqlText(`INSERT INTO "profiles"`)).
		WithArgs(sqlmock.AnyArg(), testNow, "ada@example.com", "Ada", "Lovelace", nil, nil).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectExec(sqlText("INSERT INTO auth_sessions (id, user_id, created_at, expires_at)")).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), testNow, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(sqlText(`FROM "profiles" WHERE "id" = $1 LIMIT 1`)).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(profileColumns).
			AddRow("u-1", testNow, "ada@example.com", "Ada", "Lovelace", nil, nil))

	session, err := store.SignUp(context.Background(), SignUpParams{
		Email:     "  Ada@Example.com ",
		Password:  "secret1",
		FirstName: "Ada",
		LastName:  "Lovelace",
	})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", session.User.Email)
	assert.NotEmpty(t, session.ID)
	assert.False(t, session.Demo)
	require.NotNil(t, session.Profile)
	assert.Equal(t, "Ada", *session.Profile.FirstName)

	claims, err := auth.ValidateJWTToken(session.Token, testSigningKey)
	require.NoError(t, err)
	assert.Equal(t, session.ID, claims.SessionID())
	assert.Equal(t, session.User.ID, claims.UserID)
}

func TestStoreSignUpExistingEmail(t *testing.T) {
	store, mock := newMockStore(t)

	expectUserByEmail(mock, "ada@example.com", sqlmock.NewRows(authUserColumns).
		AddRow("u-1", "ada@example.com", "hash", testNow))

	_, err := store.SignUp(context.Background(), SignUpParams{Email: "ada@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestStoreSignUpUniqueViolation(t *testing.T) {
	store, mock := newMockStore(t)

	expectUserByEmail(mock, "ada@example.com", sqlmock.NewRows(authUserColumns))
	mock.ExpectBegin()
	mock.ExpectExec(sqlText("INSERT INTO auth_users")).
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"})
	mock.ExpectRollback()

	_, err := store.SignUp(context.Background(), SignUpParams{Email: "ada@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestStoreSignUpProfileFailureRollsBack(t *testing.T) {
	store, mock := newMockStore(t)

	expectUserByEmail(mock, "ada@example.com", sqlmock.NewRows(authUserColumns))
	mock.ExpectBegin()
	mock.ExpectExec(sqlText("INSERT INTO auth_users")).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(sqlText(`INSERT INTO "profiles"`)).WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	_, err := store.SignUp(context.Background(), SignUpParams{Email: "ada@example.com", Password: "secret1"})
	var backendErr *BackendError
	require.ErrorAs(t, err, &backendErr)
	assert.Equal(t, TableProfiles, backendErr.Table)
}

func TestStoreSignIn(t *testing.T) {
	hash, err := auth.HashPassword("secret1")
	require.NoError(t, err)

	t.Run("valid credentials", func(t *testing.T) {
		store, mock := newMockStore(t)
		expectUserByEmail(mock, "ada@example.com", sqlmock.NewRows(authUserColumns).
			AddRow("u-1", "ada@example.com", hash, testNow))
		mock.ExpectExec(sqlText("INSERT INTO auth_sessions")).
			WithArgs(sqlmock.AnyArg(), "u-1", testNow, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		expectNoProfile(mock, "u-1")

		session, err := store.SignIn(context.Background(), "ADA@example.com", "secret1")
		require.NoError(t, err)
		assert.Equal(t, "u-1", session.User.ID)
		assert.Nil(t, session.Profile)
	})

	t.Run("wrong password", func(t *testing.T) {
		store, mock := newMockStore(t)
		expectUserByEmail(mock, "ada@example.com", sqlmock.NewRows(authUserColumns).
			AddRow("u-1", "ada@example.com", hash, testNow))

		_, err := store.SignIn(context.Background(), "ada@example.com", "wrong")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		store, mock := newMockStore(t)
		expectUserByEmail(mock, "nobody@example.com", sqlmock.NewRows(authUserColumns))

		_, err := store.SignIn(context.Background(), "nobody@example.com", "secret1")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestStoreGetSession(t *testing.T) {
	token, _, err := auth.GenerateJWTToken("u-1", "ada@example.com", "s-1", testSigningKey, time.Hour)
	require.NoError(t, err)

	expectSessionRow := func(mock sqlmock.Sqlmock, rows *sqlmock.Rows) {
		mock.ExpectQuery(sqlText("SELECT expires_at FROM auth_sessions WHERE id = $1 AND user_id = $2")).
			WithArgs("s-1", "u-1").
			WillReturnRows(rows)
	}

	t.Run("active", func(t *testing.T) {
		store, mock := newMockStore(t)
		expires := testNow.Add(time.Hour)
		expectSessionRow(mock, sqlmock.NewRows([]string{"expires_at"}).AddRow(expires))
		mock.ExpectQuery(sqlText("FROM auth_users WHERE id = $1")).
			WithArgs("u-1").
			WillReturnRows(sqlmock.NewRows(authUserColumns).AddRow("u-1", "ada@example.com", "hash", testNow))
		expectNoProfile(mock, "u-1")

		session, err := store.GetSession(context.Background(), token)
		require.NoError(t, err)
		assert.Equal(t, "s-1", session.ID)
		assert.Equal(t, "ada@example.com", session.User.Email)
		assert.True(t, expires.Equal(session.ExpiresAt))
	})

	t.Run("revoked", func(t *testing.T) {
		store, mock := newMockStore(t)
		expectSessionRow(mock, sqlmock.NewRows([]string{"expires_at"}))

		_, err := store.GetSession(context.Background(), token)
		assert.ErrorIs(t, err, ErrInvalidSession)
	})

	t.Run("expired", func(t *testing.T) {
		store, mock := newMockStore(t)
		expectSessionRow(mock, sqlmock.NewRows([]string{"expires_at"}).AddRow(testNow.Add(-time.Minute)))

		_, err := store.GetSession(context.Background(), token)
		assert.ErrorIs(t, err, ErrInvalidSession)
	})

	t.Run("user deleted", func(t *testing.T) {
		store, mock := newMockStore(t)
		expectSessionRow(mock, sqlmock.NewRows([]string{"expires_at"}).AddRow(testNow.Add(time.Hour)))
		mock.ExpectQuery(sqlText("FROM auth_users WHERE id = $1")).
			WithArgs("u-1").
			WillReturnRows(sqlmock.NewRows(authUserColumns))

		_, err := store.GetSession(context.Background(), token)
		assert.ErrorIs(t, err, ErrInvalidSession)
	})

	t.Run("backend failure", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectQuery(sqlText("FROM auth_sessions")).WillReturnError(errors.New("connection refused"))

		_, err := store.GetSession(context.Background(), token)
		var backendErr *BackendError
		assert.ErrorAs(t, err, &backendErr)
	})

	t.Run("foreign token", func(t *testing.T) {
		store, _ := newMockStore(t)
		forged, _, err := auth.GenerateJWTToken("u-1", "ada@example.com", "s-1", "other-key", time.Hour)
		require.NoError(t, err)

		_, err = store.GetSession(context.Background(), forged)
		assert.ErrorIs(t, err, ErrInvalidSession)
	})
}

func TestStoreSignOut(t *testing.T) {
	store, mock := newMockStore(t)
	token, _, err := auth.GenerateJWTToken("u-1", "ada@example.com", "s-1", testSigningKey, time.Hour)
	require.NoError(t, err)

	mock.ExpectExec(sqlText("DELETE FROM auth_sessions WHERE id = $1")).
		WithArgs("s-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.SignOut(context.Background(), token))
	assert.ErrorIs(t, store.SignOut(context.Background(), "not-a-token"), ErrInvalidSession)
}

func TestStorePasswordReset(t *testing.T) {
	var email, resetToken string
	store, mock := newMockStore(t, WithResetNotifier(func(_ context.Context, to, token string) {
		email, resetToken = to, token
	}))
	ctx := context.Background()

	expectUserByEmail(mock, "ada@example.com", sqlmock.NewRows(authUserColumns).
		AddRow("u-1", "ada@example.com", "hash", testNow))
	require.NoError(t, store.ResetPassword(ctx, "Ada@example.com"))
	assert.Equal(t, "ada@example.com", email)
	require.NotEmpty(t, resetToken)

	mock.ExpectExec(sqlText("UPDATE auth_users SET password_hash = $1 WHERE id = $2")).
		WithArgs(sqlmock.AnyArg(), "u-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(sqlText("DELETE FROM auth_sessions WHERE user_id = $1")).
		WithArgs("u-1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	require.NoError(t, store.UpdatePassword(ctx, resetToken, "newsecret"))

	assert.ErrorIs(t, store.UpdatePassword(ctx, resetToken, "again123"), auth.ErrTokenAlreadyUsed)
	assert.ErrorIs(t, store.UpdatePassword(ctx, "unknown", "again123"), auth.ErrTokenNotFound)
}

func TestStorePasswordResetUnknownEmail(t *testing.T) {
	notified := false
	store, mock := newMockStore(t, WithResetNotifier(func(context.Context, string, string) {
		notified = true
	}))

	expectUserByEmail(mock, "nobody@example.com", sqlmock.NewRows(authUserColumns))
	require.NoError(t, store.ResetPassword(context.Background(), "nobody@example.com"))
	assert.False(t, notified)
}

func TestStoreGetRow(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectQuery(sqlText(`SELECT "id", "created_at", "amount", "description", "type", "user_id" FROM "transactions" WHERE "id" = $1 AND "user_id" = $2 LIMIT 1`)).
			WithArgs("t-1", "u-1").
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "amount", "description", "type", "user_id"}).
				AddRow("t-1", testNow, "12.50", "Coffee", TransactionExpense, "u-1"))

		var tx Transaction
		require.NoError(t, store.GetRow(ctx, TableTransactions, Filter{"id": "t-1", "user_id": "u-1"}, &tx))
		assert.Equal(t, "Coffee", tx.Description)
		assert.True(t, tx.Amount.Equal(decimal.RequireFromString("12.5")))
	})

	t.Run("not found", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectQuery(sqlText(`FROM "transactions" WHERE "id" = $1 AND "user_id" = $2 LIMIT 1`)).
			WithArgs("t-1", "u-1").
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "amount", "description", "type", "user_id"}))

		var tx Transaction
		err := store.GetRow(ctx, TableTransactions, Filter{"id": "t-1", "user_id": "u-1"}, &tx)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("backend failure", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectQuery(sqlText(`FROM "transactions"`)).WillReturnError(sql.ErrConnDone)

		var tx Transaction
		err := store.GetRow(ctx, TableTransactions, Filter{"user_id": "u-1"}, &tx)
		var backendErr *BackendError
		require.ErrorAs(t, err, &backendErr)
		assert.Equal(t, "get", backendErr.Op)
		assert.ErrorIs(t, err, sql.ErrConnDone)
	})

	t.Run("owner filter required", func(t *testing.T) {
		store, _ := newMockStore(t)

		var tx Transaction
		err := store.GetRow(ctx, TableTransactions, Filter{"id": "t-1"}, &tx)
		assert.ErrorIs(t, err, ErrOwnerRequired)
	})
}

func TestStoreListRows(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery(sqlText(`FROM "transactions" WHERE "user_id" = $1 ORDER BY "created_at" DESC LIMIT 2`)).
		WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "amount", "description", "type", "user_id"}).
			AddRow("t-2", testNow, "40", "Invoice", TransactionIncome, "u-1").
			AddRow("t-1", testNow.Add(-time.Hour), "12.50", "Coffee", TransactionExpense, "u-1"))

	var txs []Transaction
	require.NoError(t, store.ListRows(context.Background(), TableTransactions, Query{
		Filter: Filter{"user_id": "u-1"},
		Order:  &Order{Column: "created_at", Descending: true},
		Limit:  2,
	}, &txs))
	require.Len(t, txs, 2)
	assert.Equal(t, "t-2", txs[0].ID)
}

func TestStoreUpdateRow(t *testing.T) {
	ctx := context.Background()

	t.Run("updated", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectExec(sqlText(`UPDATE "profiles" SET "phone" = $1 WHERE "id" = $2`)).
			WithArgs("555", "u-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, store.UpdateRow(ctx, TableProfiles, Filter{"id": "u-1"}, Changes{"phone": "555"}))
	})

	t.Run("no matching row", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectExec(sqlText(`UPDATE "profiles" SET "phone" = $1 WHERE "id" = $2`)).
			WithArgs("555", "u-1").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := store.UpdateRow(ctx, TableProfiles, Filter{"id": "u-1"}, Changes{"phone": "555"})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("owner filter required", func(t *testing.T) {
		store, _ := newMockStore(t)

		err := store.UpdateRow(ctx, TableProjects, Filter{"id": "p-1"}, Changes{"status": "completed"})
		assert.ErrorIs(t, err, ErrOwnerRequired)
	})

	t.Run("privileged", func(t *testing.T) {
		store, mock := newMockStore(t, Privileged())
		mock.ExpectExec(sqlText(`UPDATE "projects" SET "status" = $1 WHERE "id" = $2`)).
			WithArgs("completed", "p-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, store.UpdateRow(ctx, TableProjects, Filter{"id": "p-1"}, Changes{"status": "completed"}))
	})
}

func TestStoreInsertRow(t *testing.T) {
	ctx := context.Background()

	t.Run("fills defaults", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectExec(sqlText(`INSERT INTO "transactions" ("id", "created_at", "amount", "description", "type", "user_id") VALUES ($1, $2, $3, $4, $5, $6)`)).
			WithArgs(sqlmock.AnyArg(), testNow, sqlmock.AnyArg(), "Coffee", TransactionExpense, "u-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		tx := Transaction{Amount: decimal.NewFromInt(4), Description: "Coffee", Type: TransactionExpense, UserID: "u-1"}
		require.NoError(t, store.InsertRow(ctx, TableTransactions, &tx))
		assert.NotEmpty(t, tx.ID)
		assert.Equal(t, testNow, tx.CreatedAt)
	})

	t.Run("keeps given id", func(t *testing.T) {
		store, mock := newMockStore(t)
		created := testNow.Add(-24 * time.Hour)
		mock.ExpectExec(sqlText(`INSERT INTO "transactions"`)).
			WithArgs("t-9", created, sqlmock.AnyArg(), "Coffee", TransactionExpense, "u-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		tx := Transaction{ID: "t-9", CreatedAt: created, Description: "Coffee", Type: TransactionExpense, UserID: "u-1"}
		require.NoError(t, store.InsertRow(ctx, TableTransactions, &tx))
	})

	t.Run("owner required", func(t *testing.T) {
		store, _ := newMockStore(t)

		tx := Transaction{Description: "Coffee", Type: TransactionExpense}
		err := store.InsertRow(ctx, TableTransactions, &tx)
		assert.ErrorIs(t, err, ErrOwnerRequired)
		assert.Empty(t, tx.ID)
	})

	t.Run("wrong row type", func(t *testing.T) {
		store, _ := newMockStore(t)

		err := store.InsertRow(ctx, TableTransactions, &Project{UserID: "u-1"})
		assert.ErrorIs(t, err, ErrRowType)
	})

	t.Run("backend failure", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectExec(sqlText(`INSERT INTO "transactions"`)).WillReturnError(errors.New("disk full"))

		tx := Transaction{Description: "Coffee", Type: TransactionExpense, UserID: "u-1"}
		err := store.InsertRow(ctx, TableTransactions, &tx)
		var backendErr *BackendError
		require.ErrorAs(t, err, &backendErr)
		assert.Equal(t, "insert", backendErr.Op)
		assert.Equal(t, TableTransactions, backendErr.Table)
	})
}

func TestStoreMigrate(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectExec(sqlText("CREATE TABLE IF NOT EXISTS auth_users")).WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, store.Migrate(context.Background()))

	mock.ExpectExec(sqlText("CREATE TABLE")).WillReturnError(errors.New("permission denied"))
	var backendErr *BackendError
	assert.ErrorAs(t, store.Migrate(context.Background()), &backendErr)
}

package records

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDemoStoreSessions(t *testing.T) {
	ctx := context.Background()
	store := NewDemoStore()
	assert.True(t, store.Demo())

	session, err := store.SignIn(ctx, "anyone@example.com", "whatever")
	require.NoError(t, err)
	assert.True(t, session.Demo)
	assert.Equal(t, DemoUserID, session.User.ID)
	assert.Equal(t, DemoEmail, session.User.Email)
	require.NotNil(t, session.Profile)
	assert.Equal(t, "Demo", *session.Profile.FirstName)

	got, err := store.GetSession(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, session.ID, got.ID)

	require.NoError(t, store.SignOut(ctx, session.Token))
	_, err = store.GetSession(ctx, session.Token)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestDemoStoreSessionExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	store := NewDemoStore()
	store.now = func() time.Time { return now }

	session, err := store.SignIn(ctx, "", "")
	require.NoError(t, err)

	now = now.Add(25 * time.Hour)
	_, err = store.GetSession(ctx, session.Token)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestDemoStoreSweepsExpiredSessions(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	store := NewDemoStore()
	store.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		_, err := store.SignIn(ctx, "", "")
		require.NoError(t, err)
	}
	assert.Len(t, store.sessions, 3)

	now = now.Add(25 * time.Hour)
	fresh, err := store.SignIn(ctx, "", "")
	require.NoError(t, err)
	assert.Len(t, store.sessions, 1)

	_, err = store.GetSession(ctx, fresh.Token)
	assert.NoError(t, err)
}

func TestDemoStoreRowsAreDetached(t *testing.T) {
	ctx := context.Background()
	store := NewDemoStore()

	var p Profile
	require.NoError(t, store.GetRow(ctx, TableProfiles, Filter{"id": DemoUserID}, &p))
	require.NotNil(t, p.FirstName)
	*p.FirstName = "Mallory"

	var list []Profile
	require.NoError(t, store.ListRows(ctx, TableProfiles, Query{Filter: Filter{"id": DemoUserID}}, &list))
	require.Len(t, list, 1)
	assert.Equal(t, "Demo", *list[0].FirstName)
	*list[0].Phone = "000"

	session, err := store.SignIn(ctx, "", "")
	require.NoError(t, err)
	*session.Profile.LastName = "Changed"

	var again Profile
	require.NoError(t, store.GetRow(ctx, TableProfiles, Filter{"id": DemoUserID}, &again))
	assert.Equal(t, "Demo", *again.FirstName)
	assert.Equal(t, "User", *again.LastName)
	assert.Equal(t, "+1 (555) 123-4567", *again.Phone)

	first := "Grace"
	row := Profile{ID: "user-2", Email: "grace@example.com", FirstName: &first}
	require.NoError(t, store.InsertRow(ctx, TableProfiles, &row))
	first = "Edited"
	var inserted Profile
	require.NoError(t, store.GetRow(ctx, TableProfiles, Filter{"id": "user-2"}, &inserted))
	assert.Equal(t, "Grace", *inserted.FirstName)
}

func TestDemoStoreSignUpUsesNames(t *testing.T) {
	ctx := context.Background()
	store := NewDemoStore()

	session, err := store.SignUp(ctx, SignUpParams{Email: "ada@example.com", Password: "secret", FirstName: "Ada"})
	require.NoError(t, err)
	require.NotNil(t, session.Profile)
	assert.Equal(t, "Ada", *session.Profile.FirstName)
	assert.Equal(t, "User", *session.Profile.LastName)
}

func TestDemoStoreGetRow(t *testing.T) {
	ctx := context.Background()
	store := NewDemoStore()

	var stats SalesStats
	require.NoError(t, store.GetRow(ctx, TableSalesStats, Filter{"user_id": DemoUserID}, &stats))
	assert.True(t, stats.Revenue.Equal(decimal.NewFromInt(124500)))

	err := store.GetRow(ctx, TableSalesStats, Filter{"user_id": "someone-else"}, &stats)
	assert.ErrorIs(t, err, ErrNotFound)

	var wrong Project
	err = store.GetRow(ctx, TableSalesStats, Filter{"user_id": DemoUserID}, &wrong)
	assert.ErrorIs(t, err, ErrRowType)

	err = store.GetRow(ctx, TableSalesStats, Filter{"nope": 1}, &stats)
	assert.ErrorIs(t, err, ErrUnknownColumn)
}

func TestDemoStoreListRowsOrderAndLimit(t *testing.T) {
	ctx := context.Background()
	store := NewDemoStore()

	var txs []Transaction
	err := store.ListRows(ctx, TableTransactions, Query{
		Filter: Filter{"user_id": DemoUserID},
		Order:  &Order{Column: "created_at", Descending: false},
		Limit:  3,
	}, &txs)
	require.NoError(t, err)
	require.Len(t, txs, 3)
	assert.Equal(t, "Client retainer", txs[0].Description)
	assert.True(t, txs[0].CreatedAt.Before(txs[1].CreatedAt))

	var byAmount []Transaction
	err = store.ListRows(ctx, TableTransactions, Query{
		Filter: Filter{"type": TransactionIncome},
		Order:  &Order{Column: "amount", Descending: true},
	}, &byAmount)
	require.NoError(t, err)
	require.Len(t, byAmount, 3)
	assert.Equal(t, "Consulting fee", byAmount[0].Description)
	assert.Equal(t, "Project Alpha payment", byAmount[1].Description)

	var none []Transaction
	require.NoError(t, store.ListRows(ctx, TableTransactions, Query{Filter: Filter{"user_id": "nobody"}}, &none))
	assert.Empty(t, none)
}

func TestDemoStoreInsertAndUpdate(t *testing.T) {
	ctx := context.Background()
	store := NewDemoStore()

	ticket := &Ticket{Name: "Ada Lovelace", Initials: "AL", UserID: DemoUserID}
	require.NoError(t, store.InsertRow(ctx, TableTickets, ticket))
	assert.NotEmpty(t, ticket.ID)
	assert.False(t, ticket.CreatedAt.IsZero())

	var stored Ticket
	require.NoError(t, store.GetRow(ctx, TableTickets, Filter{"id": ticket.ID}, &stored))
	assert.Equal(t, "Ada Lovelace", stored.Name)

	require.NoError(t, store.UpdateRow(ctx, TableProfiles, Filter{"id": DemoUserID}, Changes{"first_name": "Grace", "phone": nil}))
	var profile Profile
	require.NoError(t, store.GetRow(ctx, TableProfiles, Filter{"id": DemoUserID}, &profile))
	require.NotNil(t, profile.FirstName)
	assert.Equal(t, "Grace", *profile.FirstName)
	assert.Nil(t, profile.Phone)

	err := store.UpdateRow(ctx, TableProfiles, Filter{"id": "missing"}, Changes{"first_name": "X"})
	assert.ErrorIs(t, err, ErrNotFound)

	err = store.UpdateRow(ctx, TableProjects, Filter{"user_id": DemoUserID}, Changes{"progress": "lots"})
	assert.ErrorIs(t, err, ErrRowType)

	err = store.UpdateRow(ctx, TableProjects, Filter{"id": "1"}, Changes{"user_id": "thief"})
	assert.ErrorIs(t, err, ErrImmutableColumn)
}

func TestDemoStoreUpdateDecimal(t *testing.T) {
	ctx := context.Background()
	store := NewDemoStore()

	require.NoError(t, store.UpdateRow(ctx, TableProjects, Filter{"id": "1"}, Changes{"amount": 13000.5, "progress": 80}))

	var p Project
	require.NoError(t, store.GetRow(ctx, TableProjects, Filter{"id": "1"}, &p))
	assert.Equal(t, "13000.5", p.Amount.String())
	assert.Equal(t, 80, p.Progress)

	var found Project
	require.NoError(t, store.GetRow(ctx, TableProjects, Filter{"amount": "13000.50"}, &found))
	assert.Equal(t, "1", found.ID)
}

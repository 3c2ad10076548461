package records

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColumnsFollowStructTags(t *testing.T) {
	cols, err := Columns(TableTransactions)
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "created_at", "amount", "description", "type", "user_id"}, cols)

	_, err = Columns(Table("users"))
	assert.ErrorIs(t, err, ErrUnknownTable)
}

func TestEveryTableRegistered(t *testing.T) {
	for _, table := range Tables() {
		cols, err := Columns(table)
		require.NoError(t, err, table)
		assert.Contains(t, cols, "id", table)
		assert.Contains(t, cols, "created_at", table)
	}
}

func TestBuildSelect(t *testing.T) {
	sc, err := schemaFor(TableTransactions)
	require.NoError(t, err)

	query, args, err := buildSelect(sc, Query{
		Filter: Filter{"user_id": "u1", "type": "income"},
		Order:  &Order{Column: "created_at", Descending: true},
		Limit:  5,
	})
	require.NoError(t, err)
	assert.Equal(t,
		`SELECT "id", "created_at", "amount", "description", "type", "user_id" FROM "transactions"`+
			` WHERE "type" = $1 AND "user_id" = $2 ORDER BY "created_at" DESC LIMIT 5`,
		query)
	assert.Equal(t, []any{"income", "u1"}, args)
}

func TestBuildSelectRejectsUnknownColumns(t *testing.T) {
	sc, err := schemaFor(TableProjects)
	require.NoError(t, err)

	_, _, err = buildSelect(sc, Query{Filter: Filter{"user_id = user_id; --": "x"}})
	assert.ErrorIs(t, err, ErrUnknownColumn)

	_, _, err = buildSelect(sc, Query{Order: &Order{Column: "price"}})
	assert.ErrorIs(t, err, ErrUnknownColumn)
}

func TestBuildInsert(t *testing.T) {
	sc, err := schemaFor(TableTickets)
	require.NoError(t, err)

	assert.Equal(t,
		`INSERT INTO "tickets" ("id", "created_at", "date", "destination", "initials", "name", "place", "status", "time", "user_id")`+
			` VALUES (:id, :created_at, :date, :destination, :initials, :name, :place, :status, :time, :user_id)`,
		buildInsert(sc))
}

func TestBuildUpdate(t *testing.T) {
	sc, err := schemaFor(TableProfiles)
	require.NoError(t, err)

	query, args, err := buildUpdate(sc, Filter{"id": "u1"}, Changes{"phone": "555", "first_name": "Ada"})
	require.NoError(t, err)
	assert.Equal(t, `UPDATE "profiles" SET "first_name" = $1, "phone" = $2 WHERE "id" = $3`, query)
	assert.Equal(t, []any{"Ada", "555", "u1"}, args)
}

func TestBuildUpdateValidation(t *testing.T) {
	sc, err := schemaFor(TableProfiles)
	require.NoError(t, err)

	_, _, err = buildUpdate(sc, Filter{"id": "u1"}, nil)
	assert.ErrorIs(t, err, ErrEmptyChanges)

	_, _, err = buildUpdate(sc, Filter{"id": "u1"}, Changes{"id": "u2"})
	assert.ErrorIs(t, err, ErrImmutableColumn)

	_, _, err = buildUpdate(sc, Filter{"id": "u1"}, Changes{"password": "x"})
	assert.ErrorIs(t, err, ErrUnknownColumn)
}

func TestCheckOwner(t *testing.T) {
	sc, err := schemaFor(TableProjects)
	require.NoError(t, err)

	assert.ErrorIs(t, sc.checkOwner(Filter{"status": "Completed"}), ErrOwnerRequired)
	assert.NoError(t, sc.checkOwner(Filter{"user_id": "u1"}))
}

package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"claudehub/internal/assistant"
	"claudehub/internal/records"
	"claudehub/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedReplier struct {
	calls   []string
	history [][]assistant.HistoryItem
	err     error
}

func (r *scriptedReplier) Reply(_ context.Context, message string, history []assistant.HistoryItem) (assistant.Response, error) {
	r.calls = append(r.calls, message)
	r.history = append(r.history, history)
	if r.err != nil {
		return assistant.Response{}, r.err
	}
	return assistant.Response{Text: "echo: " + message, Mode: assistant.ModeFallback}, nil
}

func TestREPLConversation(t *testing.T) {
	replier := &scriptedReplier{}
	session := assistant.NewSession(replier)
	in := strings.NewReader("hello\n\n   \nsecond\n/quit\nignored\n")
	var out bytes.Buffer

	require.NoError(t, runREPL(context.Background(), in, &out, session))

	assert.Equal(t, []string{"hello", "second"}, replier.calls)
	assert.Len(t, replier.history[1], 2)
	assert.Contains(t, out.String(), "echo: hello")
	assert.Contains(t, out.String(), "echo: second")
	assert.Contains(t, out.String(), "(demo mode)")
	assert.NotContains(t, out.String(), "ignored")
	assert.Len(t, session.Transcript(), 4)
}

func TestREPLClear(t *testing.T) {
	replier := &scriptedReplier{}
	session := assistant.NewSession(replier)
	in := strings.NewReader("first\n/clear\nafter\n")
	var out bytes.Buffer

	require.NoError(t, runREPL(context.Background(), in, &out, session))

	assert.Contains(t, out.String(), "Conversation cleared.")
	require.Len(t, replier.history, 2)
	assert.Empty(t, replier.history[1])
	assert.Len(t, session.Transcript(), 2)
}

func TestREPLFailurePrintsApology(t *testing.T) {
	replier := &scriptedReplier{err: errors.New("connection refused")}
	session := assistant.NewSession(replier)
	var out bytes.Buffer

	require.NoError(t, runREPL(context.Background(), strings.NewReader("hi\n"), &out, session))

	assert.Contains(t, out.String(), assistant.ErrorReply)
}

func TestSeedUser(t *testing.T) {
	ctx := context.Background()
	store := records.NewDemoStore()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	n, err := seedUser(ctx, store, "user-42", now)
	require.NoError(t, err)

	txs := records.SampleTransactions("user-42", now)
	projects := records.SampleProjects("user-42", now)
	assert.Equal(t, 1+len(txs)+len(projects), n)

	var seeded []records.Transaction
	require.NoError(t, store.ListRows(ctx, records.TableTransactions, records.Query{
		Filter: records.Filter{"user_id": "user-42"},
	}, &seeded))
	require.Len(t, seeded, len(txs))
	for _, tx := range seeded {
		assert.NotEmpty(t, tx.ID)
		assert.Equal(t, "user-42", tx.UserID)
	}

	var stats records.SalesStats
	require.NoError(t, store.GetRow(ctx, records.TableSalesStats, records.Filter{"user_id": "user-42"}, &stats))
	assert.NotEqual(t, "demo-stats", stats.ID)
}

func TestCheckSeedConfig(t *testing.T) {
	live := config.Config{RecordsURL: "postgres://localhost/claudehub", RecordsAnonKey: "anon"}

	demo := live
	demo.RecordsURL = ""
	assert.Error(t, checkSeedConfig(&demo))

	assert.Error(t, checkSeedConfig(&live))

	placeholder := live
	placeholder.RecordsServiceKey = "service-placeholder"
	assert.Error(t, checkSeedConfig(&placeholder))

	ready := live
	ready.RecordsServiceKey = "service-key"
	assert.NoError(t, checkSeedConfig(&ready))
}

// Package dashboard assembles the data behind the dashboard pages. Reads that
// fail or come back empty are replaced with sample rows so the pages always
// have something to show; writes report their errors.
package dashboard

import (
	"context"
	"errors"
	"strings"
	"time"

	"claudehub/internal/records"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const recentTransactions = 5

type Service struct {
	records records.Client
	now     func() time.Time
}

func NewService(client records.Client) *Service {
	return &Service{
		records: client,
		now:     time.Now,
	}
}

type StatCard struct {
	Title  string  `json:"title"`
	Value  string  `json:"value"`
	Change float64 `json:"change"`
}

type Summary struct {
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
	Balance  decimal.Decimal `json:"balance"`
	Count    int             `json:"count"`
}

type Overview struct {
	Stats        records.SalesStats    `json:"stats"`
	Cards        []StatCard            `json:"cards"`
	Transactions []records.Transaction `json:"transactions"`
	Summary      Summary               `json:"summary"`
	SampleStats  bool                  `json:"sample_stats"`
	SampleTxs    bool                  `json:"sample_transactions"`
}

func (s *Service) Overview(ctx context.Context, userID string) *Overview {
	now := s.now()
	out := &Overview{}

	if err := s.records.GetRow(ctx, records.TableSalesStats, records.Filter{"user_id": userID}, &out.Stats); err != nil {
		if !errors.Is(err, records.ErrNotFound) {
			logrus.Errorf("Error fetching sales stats for user %s: %v", userID, err)
		}
		out.Stats = records.SampleStats(userID, now)
		out.SampleStats = true
	}

	err := s.records.ListRows(ctx, records.TableTransactions, records.Query{
		Filter: records.Filter{"user_id": userID},
		Order:  &records.Order{Column: "created_at", Descending: true},
		Limit:  recentTransactions,
	}, &out.Transactions)
	if err != nil {
		logrus.Errorf("Error fetching transactions for user %s: %v", userID, err)
	}
	if err != nil || len(out.Transactions) == 0 {
		out.Transactions = records.SampleTransactions(userID, now)
		out.SampleTxs = true
	}

	out.Cards = statCards(out.Stats)
	out.Summary = Summarize(out.Transactions)
	return out
}

// Summarize totals income and expense transactions. Expense amounts count
// against the balance whatever their sign.
func Summarize(txs []records.Transaction) Summary {
	sum := Summary{
		Income:   decimal.Zero,
		Expenses: decimal.Zero,
		Balance:  decimal.Zero,
	}
	for _, tx := range txs {
		amount := tx.Amount.Abs()
		switch tx.Type {
		case records.TransactionIncome:
			sum.Income = sum.Income.Add(amount)
		case records.TransactionExpense:
			sum.Expenses = sum.Expenses.Add(amount)
		default:
			continue
		}
		sum.Count++
	}
	sum.Balance = sum.Income.Sub(sum.Expenses)
	return sum
}

func statCards(stats records.SalesStats) []StatCard {
	return []StatCard{
		{Title: "Total Revenue", Value: "$" + groupThousands(stats.Revenue.Round(2).String()), Change: 12.5},
		{Title: "Active Users", Value: groupThousands(decimal.NewFromInt(stats.Users).String()), Change: 8.2},
		{Title: "Invoices", Value: groupThousands(decimal.NewFromInt(stats.Invoices).String()), Change: -2.4},
		{Title: "Projects", Value: groupThousands(decimal.NewFromInt(stats.Projects).String()), Change: 23.1},
	}
}

// groupThousands inserts comma separators into the integer part of a
// decimal string.
func groupThousands(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	whole, frac, hasFrac := strings.Cut(s, ".")

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if hasFrac {
		return sign + b.String() + "." + frac
	}
	return sign + b.String()
}

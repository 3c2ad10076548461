package records

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Sample rows shown when the records backend is unconfigured or a read comes
// back empty.

const (
	DemoUserID = "demo-user-id"
	DemoEmail  = "demo@claudehub.com"
)

func SampleProfile(now time.Time) Profile {
	return Profile{
		ID:        DemoUserID,
		CreatedAt: now,
		Email:     DemoEmail,
		FirstName: stringPtr("Demo"),
		LastName:  stringPtr("User"),
		Phone:     stringPtr("+1 (555) 123-4567"),
	}
}

func SampleStats(userID string, now time.Time) SalesStats {
	return SalesStats{
		ID:        "demo-stats",
		CreatedAt: now,
		Invoices:  156,
		Offline:   3420,
		Online:    5000,
		Projects:  89,
		Queries:   1250,
		Returns:   23,
		Revenue:   decimal.NewFromInt(124500),
		Users:     8420,
		UserID:    userID,
	}
}

func SampleTransactions(userID string, now time.Time) []Transaction {
	day := 24 * time.Hour
	rows := []struct {
		amount      int64
		description string
		kind        string
	}{
		{2500, "Project Alpha payment", TransactionIncome},
		{1200, "Software subscription", TransactionExpense},
		{4800, "Consulting fee", TransactionIncome},
		{350, "Office supplies", TransactionExpense},
		{1800, "Client retainer", TransactionIncome},
	}

	txs := make([]Transaction, len(rows))
	for i, r := range rows {
		txs[i] = Transaction{
			ID:          strconv.Itoa(i + 1),
			CreatedAt:   now.Add(-time.Duration(i) * day),
			Amount:      decimal.NewFromInt(r.amount),
			Description: r.description,
			Type:        r.kind,
			UserID:      userID,
		}
	}
	return txs
}

func SampleProjects(userID string, now time.Time) []Project {
	rows := []struct {
		amount   int64
		deadline string
		owner    string
		product  string
		progress int
		status   string
	}{
		{12500, "2024-03-15", "John Smith", "Website Redesign", 75, "In Progress"},
		{8200, "2024-03-20", "Sarah Johnson", "Mobile App", 45, "In Progress"},
		{15000, "2024-02-28", "Mike Wilson", "E-commerce Platform", 100, "Completed"},
		{5500, "2024-04-01", "Emily Davis", "Dashboard UI", 20, "Planning"},
		{9800, "2024-03-25", "Alex Brown", "API Integration", 60, "In Progress"},
	}

	projects := make([]Project, len(rows))
	for i, r := range rows {
		projects[i] = Project{
			ID:        strconv.Itoa(i + 1),
			CreatedAt: now,
			Amount:    decimal.NewFromInt(r.amount),
			Deadline:  r.deadline,
			FirstName: r.owner,
			Product:   r.product,
			Progress:  r.progress,
			Status:    r.status,
			UserID:    userID,
		}
	}
	return projects
}

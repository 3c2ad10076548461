package records

import (
	"time"

	"github.com/shopspring/decimal"
)

type Profile struct {
	ID        string    `db:"id" json:"id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	Email     string    `db:"email" json:"email"`
	FirstName *string   `db:"first_name" json:"first_name"`
	LastName  *string   `db:"last_name" json:"last_name"`
	AvatarURL *string   `db:"avatar_url" json:"avatar_url"`
	Phone     *string   `db:"phone" json:"phone"`
}

type Project struct {
	ID        string          `db:"id" json:"id"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
	Amount    decimal.Decimal `db:"amount" json:"amount"`
	Deadline  string          `db:"deadline" json:"deadline"`
	FirstName string          `db:"first_name" json:"first_name"`
	ImageURL  *string         `db:"image_url" json:"image_url"`
	Product   string          `db:"product" json:"product"`
	Progress  int             `db:"progress" json:"progress"`
	Status    string          `db:"status" json:"status"`
	UserID    string          `db:"user_id" json:"user_id"`
}

type Transaction struct {
	ID          string          `db:"id" json:"id"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	Amount      decimal.Decimal `db:"amount" json:"amount"`
	Description string          `db:"description" json:"description"`
	Type        string          `db:"type" json:"type"`
	UserID      string          `db:"user_id" json:"user_id"`
}

const (
	TransactionIncome  = "income"
	TransactionExpense = "expense"
)

type SalesStats struct {
	ID        string          `db:"id" json:"id"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
	Invoices  int64           `db:"invoices" json:"invoices"`
	Offline   int64           `db:"offline" json:"offline"`
	Online    int64           `db:"online" json:"online"`
	Projects  int64           `db:"projects" json:"projects"`
	Queries   int64           `db:"queries" json:"queries"`
	Returns   int64           `db:"returns" json:"returns"`
	Revenue   decimal.Decimal `db:"revenue" json:"revenue"`
	Users     int64           `db:"users" json:"users"`
	UserID    string          `db:"user_id" json:"user_id"`
}

type ChatMessage struct {
	ID             string    `db:"id" json:"id"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UserID         string    `db:"user_id" json:"user_id"`
	Role           string    `db:"role" json:"role"`
	Content        string    `db:"content" json:"content"`
	ConversationID string    `db:"conversation_id" json:"conversation_id"`
}

type Group struct {
	ID        string          `db:"id" json:"id"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
	FirstName string          `db:"first_name" json:"first_name"`
	Product   string          `db:"product" json:"product"`
	Sale      decimal.Decimal `db:"sale" json:"sale"`
	Status    string          `db:"status" json:"status"`
	UserName  string          `db:"user_name" json:"user_name"`
	VatNo     string          `db:"vat_no" json:"vat_no"`
	UserID    string          `db:"user_id" json:"user_id"`
}

type Invoice struct {
	ID            string          `db:"id" json:"id"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
	Customer      string          `db:"customer" json:"customer"`
	InvoiceNumber string          `db:"invoice_number" json:"invoice_number"`
	ProductPrice  string          `db:"product_price" json:"product_price"`
	Price         decimal.Decimal `db:"price" json:"price"`
	Shipping      string          `db:"shipping" json:"shipping"`
	Status        int             `db:"status" json:"status"`
	UserID        string          `db:"user_id" json:"user_id"`
}

type Ticket struct {
	ID          string    `db:"id" json:"id"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	Date        string    `db:"date" json:"date"`
	Destination string    `db:"destination" json:"destination"`
	Initials    string    `db:"initials" json:"initials"`
	Name        string    `db:"name" json:"name"`
	Place       string    `db:"place" json:"place"`
	Status      string    `db:"status" json:"status"`
	Time        string    `db:"time" json:"time"`
	UserID      string    `db:"user_id" json:"user_id"`
}

type ChartPoint struct {
	ID         string    `db:"id" json:"id"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	DataNumber float64   `db:"data_number" json:"data_number"`
	Label      string    `db:"label" json:"label"`
	UserID     string    `db:"user_id" json:"user_id"`
}

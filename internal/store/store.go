package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"retail-dashboard/internal/models"
)

var ErrNotFound = errors.New("store: transaction not found")

// DefaultListLimit caps unbounded listings, matching the original backend.
const DefaultListLimit = 1000

// MaxLoadLimit bounds how many rows analytics rollups will pull into memory.
const MaxLoadLimit = 100000

// Filter narrows a transaction listing. Zero times and empty slices mean
// "no constraint". End is an inclusive date: implementations filter with an
// exclusive bound at End + 24h.
type Filter struct {
	Start     time.Time
	End       time.Time
	Countries []string
	Invoice   string
	Limit     int
}

// Matches reports whether tx passes the filter, ignoring Limit.
func (f Filter) Matches(tx models.Transaction) bool {
	if f.Invoice != "" && tx.Invoice != f.Invoice {
		return false
	}
	if len(f.Countries) > 0 {
		found := false
		for _, c := range f.Countries {
			if tx.Country == c {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if !f.Start.IsZero() {
		if tx.InvoiceDate.IsZero() || tx.InvoiceDate.Before(f.Start) {
			return false
		}
	}
	if !f.End.IsZero() {
		if tx.InvoiceDate.IsZero() || !tx.InvoiceDate.Before(f.End.AddDate(0, 0, 1)) {
			return false
		}
	}
	return true
}

// TransactionUpdate carries the parsed partial update; nil fields are left
// untouched.
type TransactionUpdate struct {
	Invoice     *string
	InvoiceDate *time.Time
	StockCode   *string
	Description *string
	Quantity    *int64
	Price       *float64
	CustomerID  *int64
	Country     *string
}

func (u TransactionUpdate) Empty() bool {
	return u.Invoice == nil && u.InvoiceDate == nil && u.StockCode == nil &&
		u.Description == nil && u.Quantity == nil && u.Price == nil &&
		u.CustomerID == nil && u.Country == nil
}

// TransactionStore is the system of record for retail transactions.
type TransactionStore interface {
	List(ctx context.Context, f Filter) ([]models.Transaction, error)
	Insert(ctx context.Context, tx models.Transaction) error
	Update(ctx context.Context, id uuid.UUID, u TransactionUpdate) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
	Countries(ctx context.Context) ([]string, error)
	Ping(ctx context.Context) error
}

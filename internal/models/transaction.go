package models

import (
	"time"

	"github.com/google/uuid"
)

// Transaction is a single retail line item. Several line items sharing an
// Invoice make up one order. Revenue is always derived, never stored.
type Transaction struct {
	ID          uuid.UUID `json:"id"`
	Invoice     string    `json:"Invoice"`
	InvoiceDate time.Time `json:"InvoiceDate"`
	StockCode   string    `json:"StockCode"`
	Description string    `json:"Description"`
	Quantity    int64     `json:"Quantity"`
	Price       float64   `json:"Price"`
	CustomerID  *int64    `json:"CustomerID"`
	Country     string    `json:"Country"`
}

func (t Transaction) Revenue() float64 {
	return float64(t.Quantity) * t.Price
}

// TransactionInput is the partial CRUD payload. Only fields present in the
// request body are applied on update.
type TransactionInput struct {
	Invoice     *string  `json:"Invoice,omitempty"`
	InvoiceDate *string  `json:"InvoiceDate,omitempty"`
	StockCode   *string  `json:"StockCode,omitempty"`
	Description *string  `json:"Description,omitempty"`
	Quantity    *int64   `json:"Quantity,omitempty"`
	Price       *float64 `json:"Price,omitempty"`
	CustomerID  *int64   `json:"CustomerID,omitempty"`
	Country     *string  `json:"Country,omitempty"`
}

func (in TransactionInput) Empty() bool {
	return in.Invoice == nil && in.InvoiceDate == nil && in.StockCode == nil &&
		in.Description == nil && in.Quantity == nil && in.Price == nil &&
		in.CustomerID == nil && in.Country == nil
}

package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"retail-dashboard/internal/models"
)

func seedTx(invoice, country string, date time.Time) models.Transaction {
	return models.Transaction{
		ID:          uuid.New(),
		Invoice:     invoice,
		StockCode:   "S1",
		Description: "WIDGET",
		Quantity:    1,
		Price:       10,
		InvoiceDate: date,
		Country:     country,
	}
}

func TestMemoryListDateFilter(t *testing.T) {
	jan := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	feb := time.Date(2024, 2, 10, 12, 0, 0, 0, time.UTC)

	m := NewMemory()
	m.Seed([]models.Transaction{
		seedTx("I1", "France", jan),
		seedTx("I2", "France", feb),
	})

	// End bound is inclusive for the whole end day.
	got, err := m.List(context.Background(), Filter{
		Start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(got) != 1 || got[0].Invoice != "I1" {
		t.Errorf("got %d rows, want just I1", len(got))
	}
}

func TestMemoryListCountryAndInvoiceFilter(t *testing.T) {
	date := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	m := NewMemory()
	m.Seed([]models.Transaction{
		seedTx("I1", "France", date),
		seedTx("I2", "Germany", date),
		seedTx("I3", "France", date),
	})

	byCountry, _ := m.List(context.Background(), Filter{Countries: []string{"Germany"}})
	if len(byCountry) != 1 || byCountry[0].Invoice != "I2" {
		t.Errorf("country filter returned %d rows", len(byCountry))
	}

	byInvoice, _ := m.List(context.Background(), Filter{Invoice: "I3"})
	if len(byInvoice) != 1 || byInvoice[0].Invoice != "I3" {
		t.Errorf("invoice filter returned %d rows", len(byInvoice))
	}
}

func TestMemoryListLimit(t *testing.T) {
	date := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	m := NewMemory()
	txs := make([]models.Transaction, 5)
	for i := range txs {
		txs[i] = seedTx("I1", "France", date)
	}
	m.Seed(txs)

	got, _ := m.List(context.Background(), Filter{Limit: 3})
	if len(got) != 3 {
		t.Errorf("limit 3 returned %d rows", len(got))
	}
}

func TestMemoryUpdate(t *testing.T) {
	date := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	tx := seedTx("I1", "France", date)

	m := NewMemory()
	m.Seed([]models.Transaction{tx})

	qty := int64(42)
	country := "Spain"
	n, err := m.Update(context.Background(), tx.ID, TransactionUpdate{Quantity: &qty, Country: &country})
	if err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	if n != 1 {
		t.Fatalf("matched %d rows, want 1", n)
	}

	got, _ := m.List(context.Background(), Filter{})
	if got[0].Quantity != 42 || got[0].Country != "Spain" {
		t.Errorf("updated row = %+v", got[0])
	}
	// Untouched fields survive.
	if got[0].Invoice != "I1" || got[0].Price != 10 {
		t.Errorf("partial update clobbered other fields: %+v", got[0])
	}
}

func TestMemoryUpdateMissing(t *testing.T) {
	m := NewMemory()
	qty := int64(1)
	n, err := m.Update(context.Background(), uuid.New(), TransactionUpdate{Quantity: &qty})
	if err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	if n != 0 {
		t.Errorf("matched %d rows for unknown id, want 0", n)
	}
}

func TestMemoryDelete(t *testing.T) {
	date := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	tx := seedTx("I1", "France", date)

	m := NewMemory()
	m.Seed([]models.Transaction{tx})

	n, err := m.Delete(context.Background(), tx.ID)
	if err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if n != 1 {
		t.Errorf("deleted %d rows, want 1", n)
	}

	if n, _ := m.Delete(context.Background(), tx.ID); n != 0 {
		t.Errorf("second delete removed %d rows, want 0", n)
	}
}

func TestMemoryCountries(t *testing.T) {
	date := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	m := NewMemory()
	m.Seed([]models.Transaction{
		seedTx("I1", "Germany", date),
		seedTx("I2", "France", date),
		seedTx("I3", "France", date),
		seedTx("I4", "", date),
	})

	countries, err := m.Countries(context.Background())
	if err != nil {
		t.Fatalf("Countries() error: %v", err)
	}
	if len(countries) != 2 || countries[0] != "France" || countries[1] != "Germany" {
		t.Errorf("countries = %v, want sorted distinct non-empty", countries)
	}
}

package main

import (
	"testing"
	"time"
)

func TestMapColumns(t *testing.T) {
	header := []string{"Invoice", "StockCode", "Description", "Quantity", "InvoiceDate", "Price", "Customer ID", "Country"}
	cols, err := mapColumns(header)
	if err != nil {
		t.Fatalf("mapColumns() error: %v", err)
	}
	if cols.invoice != 0 || cols.invoiceDate != 4 || cols.customerID != 6 {
		t.Errorf("cols = %+v", cols)
	}
}

func TestMapColumnsLegacyNames(t *testing.T) {
	header := []string{"InvoiceNo", "UnitPrice", "Quantity", "InvoiceDate"}
	cols, err := mapColumns(header)
	if err != nil {
		t.Fatalf("mapColumns() error: %v", err)
	}
	if cols.invoice != 0 || cols.price != 1 {
		t.Errorf("cols = %+v", cols)
	}
}

func TestMapColumnsMissingRequired(t *testing.T) {
	if _, err := mapColumns([]string{"Invoice", "Quantity"}); err == nil {
		t.Error("expected error for header without dates or prices")
	}
}

func TestParseRow(t *testing.T) {
	cols, err := mapColumns([]string{"Invoice", "StockCode", "Description", "Quantity", "InvoiceDate", "Price", "CustomerID", "Country"})
	if err != nil {
		t.Fatalf("mapColumns() error: %v", err)
	}

	record := []string{"536365", "85123A", "WHITE HANGING HEART", "6", "01-12-2010 08:26", "2.55", "17850.0", "United Kingdom"}
	tx, ok := parseRow(record, cols)
	if !ok {
		t.Fatal("parseRow() rejected a valid row")
	}

	if tx.Invoice != "536365" || tx.StockCode != "85123A" {
		t.Errorf("tx = %+v", tx)
	}
	want := time.Date(2010, 12, 1, 8, 26, 0, 0, time.UTC)
	if !tx.InvoiceDate.Equal(want) {
		t.Errorf("InvoiceDate = %v, want %v", tx.InvoiceDate, want)
	}
	if tx.CustomerID == nil || *tx.CustomerID != 17850 {
		t.Errorf("CustomerID = %v, want 17850 from float-formatted field", tx.CustomerID)
	}
}

func TestParseRowSkipsInvalid(t *testing.T) {
	cols, _ := mapColumns([]string{"Invoice", "Quantity", "InvoiceDate", "Price"})

	tests := []struct {
		name   string
		record []string
	}{
		{"bad date", []string{"I1", "1", "not-a-date", "2.5"}},
		{"bad quantity", []string{"I1", "lots", "01-12-2010 08:26", "2.5"}},
		{"bad price", []string{"I1", "1", "01-12-2010 08:26", "free"}},
		{"empty date", []string{"I1", "1", "", "2.5"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := parseRow(tt.record, cols); ok {
				t.Errorf("parseRow() accepted row %v", tt.record)
			}
		})
	}
}

func TestParseRowAnonymousCustomer(t *testing.T) {
	cols, _ := mapColumns([]string{"Invoice", "Quantity", "InvoiceDate", "Price", "CustomerID"})

	tx, ok := parseRow([]string{"I1", "1", "01-12-2010 08:26", "2.5", ""}, cols)
	if !ok {
		t.Fatal("parseRow() rejected a row with empty customer")
	}
	if tx.CustomerID != nil {
		t.Errorf("CustomerID = %v, want nil", tx.CustomerID)
	}
}

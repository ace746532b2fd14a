package dashboard

import (
	"encoding/csv"
	"errors"
	"io"
	"strconv"
	"time"

	"retail-dashboard/internal/models"
)

// ErrPDFNotImplemented marks the PDF export stub.
var ErrPDFNotImplemented = errors.New("dashboard: pdf export not implemented")

var csvHeader = []string{"Invoice", "InvoiceDate", "StockCode", "Description", "Quantity", "Price", "CustomerID", "Country"}

// WriteTransactionsCSV emits the client-held transaction list with the
// fixed header row the dashboard download has always used.
func WriteTransactionsCSV(w io.Writer, txs []models.Transaction) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write(csvHeader); err != nil {
		return err
	}
	for _, tx := range txs {
		customer := ""
		if tx.CustomerID != nil {
			customer = strconv.FormatInt(*tx.CustomerID, 10)
		}
		date := ""
		if !tx.InvoiceDate.IsZero() {
			date = tx.InvoiceDate.Format(time.RFC3339)
		}
		record := []string{
			tx.Invoice,
			date,
			tx.StockCode,
			tx.Description,
			strconv.FormatInt(tx.Quantity, 10),
			strconv.FormatFloat(tx.Price, 'f', 2, 64),
			customer,
			tx.Country,
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteTransactionsPDF is the unimplemented PDF export.
func WriteTransactionsPDF(w io.Writer, txs []models.Transaction) error {
	return ErrPDFNotImplemented
}

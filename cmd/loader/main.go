package main

import (
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"retail-dashboard/internal/config"
	"retail-dashboard/internal/models"
	"retail-dashboard/internal/observability"
	"retail-dashboard/internal/store"
)

const batchSize = 1000

// Date layouts seen in retail exports, most common first.
var dateLayouts = []string{
	"02-01-2006 15:04",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

type columnIndex struct {
	invoice     int
	stockCode   int
	description int
	quantity    int
	invoiceDate int
	price       int
	customerID  int
	country     int
}

func main() {
	var (
		file = flag.String("file", "", "CSV file to import")
		dsn  = flag.String("dsn", "", "Postgres DSN (defaults to PG_DSN)")
	)
	flag.Parse()

	logger := observability.NewLogger(config.LoggerConfig{Level: "info", Format: "text"})
	slog.SetDefault(logger)

	if *file == "" {
		logger.Error("missing -file argument")
		os.Exit(1)
	}
	if *dsn == "" {
		*dsn = os.Getenv("PG_DSN")
	}
	if *dsn == "" || *dsn == "memory" {
		logger.Error("loader requires a postgres DSN via -dsn or PG_DSN")
		os.Exit(1)
	}

	ctx := context.Background()

	pg, err := store.NewPostgres(ctx, *dsn)
	if err != nil {
		logger.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer pg.Close()

	if err := pg.EnsureSchema(ctx); err != nil {
		logger.Error("failed to ensure schema", "error", err)
		os.Exit(1)
	}

	f, err := os.Open(*file)
	if err != nil {
		logger.Error("failed to open csv", "file", *file, "error", err)
		os.Exit(1)
	}
	defer f.Close()

	start := time.Now()
	loaded, skipped, err := load(ctx, pg, f, logger)
	if err != nil {
		logger.Error("import failed", "error", err)
		os.Exit(1)
	}

	logger.Info("import complete",
		"file", *file,
		"loaded", loaded,
		"skipped", skipped,
		"duration", time.Since(start),
	)
}

// load streams the CSV through a parser goroutine feeding batched COPY
// writes. Rows missing a parseable date, quantity or price are counted
// and skipped rather than aborting the import.
func load(ctx context.Context, pg *store.Postgres, r io.Reader, logger *slog.Logger) (int64, int64, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return 0, 0, err
	}
	cols, err := mapColumns(header)
	if err != nil {
		return 0, 0, err
	}

	batches := make(chan []models.Transaction, 4)

	var loaded, skipped int64

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(batches)

		batch := make([]models.Transaction, 0, batchSize)
		for {
			record, err := reader.Read()
			if err == io.EOF {
				break
			}
			if err != nil {
				// Malformed line, not a fatal condition.
				skipped++
				continue
			}

			tx, ok := parseRow(record, cols)
			if !ok {
				skipped++
				continue
			}

			batch = append(batch, tx)
			if len(batch) == batchSize {
				select {
				case batches <- batch:
				case <-ctx.Done():
					return ctx.Err()
				}
				batch = make([]models.Transaction, 0, batchSize)
			}
		}
		if len(batch) > 0 {
			select {
			case batches <- batch:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	g.Go(func() error {
		for batch := range batches {
			n, err := pg.CopyTransactions(ctx, batch)
			if err != nil {
				return err
			}
			loaded += n
			logger.Debug("batch copied", "rows", n, "total", loaded)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return loaded, skipped, err
	}
	return loaded, skipped, nil
}

func mapColumns(header []string) (columnIndex, error) {
	cols := columnIndex{
		invoice: -1, stockCode: -1, description: -1, quantity: -1,
		invoiceDate: -1, price: -1, customerID: -1, country: -1,
	}

	for i, name := range header {
		switch normalizeHeader(name) {
		case "invoice", "invoiceno":
			cols.invoice = i
		case "stockcode":
			cols.stockCode = i
		case "description":
			cols.description = i
		case "quantity":
			cols.quantity = i
		case "invoicedate":
			cols.invoiceDate = i
		case "price", "unitprice":
			cols.price = i
		case "customerid", "customer":
			cols.customerID = i
		case "country":
			cols.country = i
		}
	}

	if cols.invoice == -1 || cols.invoiceDate == -1 || cols.quantity == -1 || cols.price == -1 {
		return cols, errMissingColumns
	}
	return cols, nil
}

var errMissingColumns = errors.New("csv header missing one of Invoice, InvoiceDate, Quantity, Price")

func normalizeHeader(name string) string {
	name = strings.TrimPrefix(name, "\ufeff")
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.ReplaceAll(name, " ", "")
	name = strings.ReplaceAll(name, "_", "")
	return name
}

func field(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

func parseRow(record []string, cols columnIndex) (models.Transaction, bool) {
	var tx models.Transaction

	date, ok := parseDate(field(record, cols.invoiceDate))
	if !ok {
		return tx, false
	}
	quantity, err := strconv.ParseInt(field(record, cols.quantity), 10, 64)
	if err != nil {
		return tx, false
	}
	price, err := strconv.ParseFloat(field(record, cols.price), 64)
	if err != nil {
		return tx, false
	}

	tx = models.Transaction{
		ID:          uuid.New(),
		Invoice:     field(record, cols.invoice),
		StockCode:   field(record, cols.stockCode),
		Description: field(record, cols.description),
		InvoiceDate: date,
		Quantity:    quantity,
		Price:       price,
		Country:     field(record, cols.country),
	}

	if raw := field(record, cols.customerID); raw != "" {
		// Some exports carry customer ids as floats ("17850.0").
		raw = strings.TrimSuffix(raw, ".0")
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			tx.CustomerID = &id
		}
	}

	return tx, true
}

func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

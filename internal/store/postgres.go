package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"retail-dashboard/internal/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS transactions (
	id UUID PRIMARY KEY,
	invoice TEXT NOT NULL DEFAULT '',
	invoice_date TIMESTAMPTZ NOT NULL,
	stock_code TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	quantity BIGINT NOT NULL DEFAULT 0,
	price DOUBLE PRECISION NOT NULL DEFAULT 0,
	customer_id BIGINT,
	country TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_transactions_invoice ON transactions (invoice);
CREATE INDEX IF NOT EXISTS idx_transactions_customer_id ON transactions (customer_id);
CREATE INDEX IF NOT EXISTS idx_transactions_invoice_date ON transactions (invoice_date);
`

const listColumns = "id, invoice, invoice_date, stock_code, description, quantity, price, customer_id, country"

// Postgres implements TransactionStore on a pgx connection pool.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("store: parse config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("store: new pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}

	return &Postgres{pool: pool}, nil
}

// EnsureSchema creates the transactions table and its indexes when missing.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("store: ensure schema: %w", err)
	}
	return nil
}

func (p *Postgres) Close() {
	p.pool.Close()
}

func (p *Postgres) List(ctx context.Context, f Filter) ([]models.Transaction, error) {
	var (
		where []string
		args  []any
	)

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Invoice != "" {
		where = append(where, "invoice = "+arg(f.Invoice))
	}
	if len(f.Countries) > 0 {
		where = append(where, "country = ANY("+arg(f.Countries)+")")
	}
	if !f.Start.IsZero() {
		where = append(where, "invoice_date >= "+arg(f.Start))
	}
	if !f.End.IsZero() {
		where = append(where, "invoice_date < "+arg(f.End.AddDate(0, 0, 1)))
	}

	limit := f.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}

	query := "SELECT " + listColumns + " FROM transactions"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY invoice_date LIMIT " + arg(limit)

	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: list: %w", err)
	}
	defer rows.Close()

	out := make([]models.Transaction, 0)
	for rows.Next() {
		var tx models.Transaction
		if err := rows.Scan(&tx.ID, &tx.Invoice, &tx.InvoiceDate, &tx.StockCode,
			&tx.Description, &tx.Quantity, &tx.Price, &tx.CustomerID, &tx.Country); err != nil {
			return nil, fmt.Errorf("store: scan: %w", err)
		}
		out = append(out, tx)
	}
	return out, rows.Err()
}

func (p *Postgres) Insert(ctx context.Context, tx models.Transaction) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO transactions (`+listColumns+`) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		tx.ID, tx.Invoice, tx.InvoiceDate, tx.StockCode, tx.Description,
		tx.Quantity, tx.Price, tx.CustomerID, tx.Country)
	if err != nil {
		return fmt.Errorf("store: insert: %w", err)
	}
	return nil
}

func (p *Postgres) Update(ctx context.Context, id uuid.UUID, u TransactionUpdate) (int64, error) {
	var (
		sets []string
		args []any
	)

	set := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if u.Invoice != nil {
		set("invoice", *u.Invoice)
	}
	if u.InvoiceDate != nil {
		set("invoice_date", *u.InvoiceDate)
	}
	if u.StockCode != nil {
		set("stock_code", *u.StockCode)
	}
	if u.Description != nil {
		set("description", *u.Description)
	}
	if u.Quantity != nil {
		set("quantity", *u.Quantity)
	}
	if u.Price != nil {
		set("price", *u.Price)
	}
	if u.CustomerID != nil {
		set("customer_id", *u.CustomerID)
	}
	if u.Country != nil {
		set("country", *u.Country)
	}

	if len(sets) == 0 {
		return 0, nil
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE transactions SET %s WHERE id = $%d",
		strings.Join(sets, ", "), len(args))

	tag, err := p.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("store: update: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (p *Postgres) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	tag, err := p.pool.Exec(ctx, "DELETE FROM transactions WHERE id = $1", id)
	if err != nil {
		return 0, fmt.Errorf("store: delete: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (p *Postgres) Countries(ctx context.Context) ([]string, error) {
	rows, err := p.pool.Query(ctx,
		"SELECT DISTINCT country FROM transactions WHERE country <> '' ORDER BY country")
	if err != nil {
		return nil, fmt.Errorf("store: countries: %w", err)
	}
	defer rows.Close()

	out := make([]string, 0)
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("store: scan country: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (p *Postgres) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// CopyTransactions bulk-inserts a batch using the Postgres COPY protocol.
// Used by the CSV loader.
func (p *Postgres) CopyTransactions(ctx context.Context, txs []models.Transaction) (int64, error) {
	cols := []string{"id", "invoice", "invoice_date", "stock_code", "description",
		"quantity", "price", "customer_id", "country"}

	n, err := p.pool.CopyFrom(ctx, pgx.Identifier{"transactions"}, cols,
		pgx.CopyFromSlice(len(txs), func(i int) ([]any, error) {
			tx := txs[i]
			return []any{tx.ID, tx.Invoice, tx.InvoiceDate, tx.StockCode,
				tx.Description, tx.Quantity, tx.Price, tx.CustomerID, tx.Country}, nil
		}))
	if err != nil {
		return n, fmt.Errorf("store: copy: %w", err)
	}
	return n, nil
}

package store

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"

	"retail-dashboard/internal/models"
)

// Memory is an in-process TransactionStore used by tests and by the
// no-database demo mode.
type Memory struct {
	mu  sync.RWMutex
	txs []models.Transaction
}

func NewMemory() *Memory {
	return &Memory{}
}

// Seed replaces the whole dataset.
func (m *Memory) Seed(txs []models.Transaction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.txs = slices.Clone(txs)
}

func (m *Memory) List(ctx context.Context, f Filter) ([]models.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	limit := f.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}

	out := make([]models.Transaction, 0)
	for _, tx := range m.txs {
		if !f.Matches(tx) {
			continue
		}
		out = append(out, tx)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (m *Memory) Insert(ctx context.Context, tx models.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.txs = append(m.txs, tx)
	return nil
}

func (m *Memory) Update(ctx context.Context, id uuid.UUID, u TransactionUpdate) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.txs {
		if m.txs[i].ID != id {
			continue
		}
		tx := &m.txs[i]
		if u.Invoice != nil {
			tx.Invoice = *u.Invoice
		}
		if u.InvoiceDate != nil {
			tx.InvoiceDate = *u.InvoiceDate
		}
		if u.StockCode != nil {
			tx.StockCode = *u.StockCode
		}
		if u.Description != nil {
			tx.Description = *u.Description
		}
		if u.Quantity != nil {
			tx.Quantity = *u.Quantity
		}
		if u.Price != nil {
			tx.Price = *u.Price
		}
		if u.CustomerID != nil {
			cid := *u.CustomerID
			tx.CustomerID = &cid
		}
		if u.Country != nil {
			tx.Country = *u.Country
		}
		return 1, nil
	}
	return 0, nil
}

func (m *Memory) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.txs {
		if m.txs[i].ID == id {
			m.txs = append(m.txs[:i], m.txs[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

func (m *Memory) Countries(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, tx := range m.txs {
		if tx.Country == "" {
			continue
		}
		if _, ok := seen[tx.Country]; ok {
			continue
		}
		seen[tx.Country] = struct{}{}
		out = append(out, tx.Country)
	}
	slices.Sort(out)
	return out, nil
}

func (m *Memory) Ping(ctx context.Context) error {
	return nil
}

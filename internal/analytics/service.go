package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"retail-dashboard/internal/models"
	"retail-dashboard/internal/store"
)

const DefaultTopProducts = 10

// Range scopes rollups the same way the transaction listing is scoped:
// optional date bounds (End inclusive) and an optional country set.
type Range struct {
	Start     time.Time
	End       time.Time
	Countries []string
}

func (r Range) storeFilter() store.Filter {
	return store.Filter{
		Start:     r.Start,
		End:       r.End,
		Countries: r.Countries,
		Limit:     store.MaxLoadLimit,
	}
}

func (r Range) token() string {
	start, end := "-", "-"
	if !r.Start.IsZero() {
		start = r.Start.Format("2006-01-02")
	}
	if !r.End.IsZero() {
		end = r.End.Format("2006-01-02")
	}
	countries := "-"
	if len(r.Countries) > 0 {
		countries = strings.Join(r.Countries, "+")
	}
	return strings.Join([]string{start, end, countries}, ":")
}

// Service computes the server-side rollups the dashboard consumes. Rollups
// load the matching transactions and aggregate in memory, behind a
// versioned cache that CRUD writes invalidate.
type Service struct {
	store  store.TransactionStore
	cache  *Cache
	logger *slog.Logger
	now    func() time.Time
}

func NewService(st store.TransactionStore, cache *Cache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: st, cache: cache, logger: logger, now: time.Now}
}

func (s *Service) load(ctx context.Context, r Range) ([]models.Transaction, error) {
	return s.store.List(ctx, r.storeFilter())
}

func cached[T any](ctx context.Context, s *Service, key string, loader func(context.Context) (T, error)) (T, error) {
	var zero T
	if s.cache == nil {
		return loader(ctx)
	}
	full, err := s.cache.BuildKey(ctx, "retail", key)
	if err != nil {
		return zero, err
	}
	var out T
	err = s.cache.FetchJSON(ctx, full, &out, func(ctx context.Context) (any, error) {
		return loader(ctx)
	})
	if err != nil {
		return zero, err
	}
	return out, nil
}

// Summary returns the KPI rollup: total revenue, distinct orders, distinct
// customers and average order value.
func (s *Service) Summary(ctx context.Context, r Range) (models.Summary, error) {
	return cached(ctx, s, "summary:"+r.token(), func(ctx context.Context) (models.Summary, error) {
		txs, err := s.load(ctx, r)
		if err != nil {
			return models.Summary{}, err
		}

		invoices := make(map[string]struct{})
		customers := make(map[int64]struct{})
		var revenue float64
		for _, tx := range txs {
			revenue += tx.Revenue()
			if tx.Invoice != "" {
				invoices[tx.Invoice] = struct{}{}
			}
			if tx.CustomerID != nil {
				customers[*tx.CustomerID] = struct{}{}
			}
		}

		summary := models.Summary{
			TotalRevenue:    revenue,
			TotalOrders:     len(invoices),
			UniqueCustomers: len(customers),
		}
		if summary.TotalOrders > 0 {
			summary.AvgOrderValue = revenue / float64(summary.TotalOrders)
		}
		return summary, nil
	})
}

// RevenueByCountry groups revenue per country, sorted descending.
func (s *Service) RevenueByCountry(ctx context.Context, r Range) ([]models.CountryRevenue, error) {
	return cached(ctx, s, "revenue_by_country:"+r.token(), func(ctx context.Context) ([]models.CountryRevenue, error) {
		txs, err := s.load(ctx, r)
		if err != nil {
			return nil, err
		}

		groups := make(map[string]float64)
		for _, tx := range txs {
			groups[tx.Country] += tx.Revenue()
		}

		out := make([]models.CountryRevenue, 0, len(groups))
		for country, revenue := range groups {
			out = append(out, models.CountryRevenue{Country: country, Revenue: revenue})
		}
		slices.SortFunc(out, func(a, b models.CountryRevenue) int {
			if a.Revenue > b.Revenue {
				return -1
			}
			if a.Revenue < b.Revenue {
				return 1
			}
			return strings.Compare(a.Country, b.Country)
		})
		return out, nil
	})
}

// TopProducts rolls up revenue and quantity per stock code, sorted by
// revenue descending and limited.
func (s *Service) TopProducts(ctx context.Context, r Range, limit int) ([]models.ProductAggregate, error) {
	if limit <= 0 {
		limit = DefaultTopProducts
	}
	key := fmt.Sprintf("top_products:%d:%s", limit, r.token())
	return cached(ctx, s, key, func(ctx context.Context) ([]models.ProductAggregate, error) {
		txs, err := s.load(ctx, r)
		if err != nil {
			return nil, err
		}

		groups := make(map[string]*models.ProductAggregate)
		for _, tx := range txs {
			key := tx.StockCode + "\x00" + tx.Description
			agg := groups[key]
			if agg == nil {
				agg = &models.ProductAggregate{StockCode: tx.StockCode, Description: tx.Description}
				groups[key] = agg
			}
			agg.Quantity += tx.Quantity
			agg.Revenue += tx.Revenue()
		}

		out := make([]models.ProductAggregate, 0, len(groups))
		for _, agg := range groups {
			out = append(out, *agg)
		}
		slices.SortFunc(out, func(a, b models.ProductAggregate) int {
			if a.Revenue > b.Revenue {
				return -1
			}
			if a.Revenue < b.Revenue {
				return 1
			}
			return strings.Compare(a.StockCode, b.StockCode)
		})
		if len(out) > limit {
			out = out[:limit]
		}
		return out, nil
	})
}

// MonthlyTrend sums revenue per calendar month, ascending by month.
func (s *Service) MonthlyTrend(ctx context.Context, r Range) ([]models.MonthlyPoint, error) {
	return cached(ctx, s, "monthly_trend:"+r.token(), func(ctx context.Context) ([]models.MonthlyPoint, error) {
		txs, err := s.load(ctx, r)
		if err != nil {
			return nil, err
		}

		groups := make(map[string]float64)
		for _, tx := range txs {
			if tx.InvoiceDate.IsZero() {
				continue
			}
			groups[tx.InvoiceDate.Format("2006-01")] += tx.Revenue()
		}

		out := make([]models.MonthlyPoint, 0, len(groups))
		for month, revenue := range groups {
			out = append(out, models.MonthlyPoint{Month: month, Revenue: revenue})
		}
		slices.SortFunc(out, func(a, b models.MonthlyPoint) int {
			return strings.Compare(a.Month, b.Month)
		})
		return out, nil
	})
}

// Countries lists the distinct countries present in the store.
func (s *Service) Countries(ctx context.Context) ([]string, error) {
	return cached(ctx, s, "countries", func(ctx context.Context) ([]string, error) {
		return s.store.Countries(ctx)
	})
}

// Transactions is an uncached pass-through to the store listing.
func (s *Service) Transactions(ctx context.Context, f store.Filter) ([]models.Transaction, error) {
	return s.store.List(ctx, f)
}

// Create inserts a transaction and invalidates cached rollups.
func (s *Service) Create(ctx context.Context, tx models.Transaction) error {
	if err := s.store.Insert(ctx, tx); err != nil {
		return err
	}
	s.bump(ctx)
	return nil
}

// Update applies a partial update; the returned count is the number of
// matched rows.
func (s *Service) Update(ctx context.Context, id uuid.UUID, u store.TransactionUpdate) (int64, error) {
	n, err := s.store.Update(ctx, id, u)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.bump(ctx)
	}
	return n, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	n, err := s.store.Delete(ctx, id)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.bump(ctx)
	}
	return n, nil
}

func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func (s *Service) bump(ctx context.Context) {
	if err := s.cache.Bump(ctx); err != nil {
		s.logger.Warn("cache bump failed", "error", err)
	}
}

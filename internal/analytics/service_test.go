package analytics

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"retail-dashboard/internal/models"
	"retail-dashboard/internal/store"
)

func seedStore(t *testing.T) *store.Memory {
	t.Helper()

	jan := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	feb := time.Date(2024, 2, 10, 12, 0, 0, 0, time.UTC)
	c1, c2 := int64(100), int64(200)

	m := store.NewMemory()
	m.Seed([]models.Transaction{
		{ID: uuid.New(), Invoice: "I1", InvoiceDate: jan, StockCode: "A", Description: "RED WIDGET", Quantity: 2, Price: 10, CustomerID: &c1, Country: "France"},
		{ID: uuid.New(), Invoice: "I1", InvoiceDate: jan, StockCode: "B", Description: "RED GADGET", Quantity: 1, Price: 5, CustomerID: &c1, Country: "France"},
		{ID: uuid.New(), Invoice: "I2", InvoiceDate: feb, StockCode: "A", Description: "RED WIDGET", Quantity: 3, Price: 10, CustomerID: &c2, Country: "Germany"},
	})
	return m
}

func newCachedService(t *testing.T) (*Service, *store.Memory) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	st := seedStore(t)
	return NewService(st, NewCache(client, time.Minute), nil), st
}

func TestSummary(t *testing.T) {
	svc := NewService(seedStore(t), nil, nil)

	summary, err := svc.Summary(context.Background(), Range{})
	if err != nil {
		t.Fatalf("Summary() error: %v", err)
	}

	// 20 + 5 + 30 revenue across two invoices and two customers.
	if summary.TotalRevenue != 55 {
		t.Errorf("TotalRevenue = %v, want 55", summary.TotalRevenue)
	}
	if summary.TotalOrders != 2 {
		t.Errorf("TotalOrders = %d, want 2", summary.TotalOrders)
	}
	if summary.UniqueCustomers != 2 {
		t.Errorf("UniqueCustomers = %d, want 2", summary.UniqueCustomers)
	}
	if math.Abs(summary.AvgOrderValue-27.5) > 1e-9 {
		t.Errorf("AvgOrderValue = %v, want 27.5", summary.AvgOrderValue)
	}
}

func TestSummaryEmptyStore(t *testing.T) {
	svc := NewService(store.NewMemory(), nil, nil)

	summary, err := svc.Summary(context.Background(), Range{})
	if err != nil {
		t.Fatalf("Summary() error: %v", err)
	}
	if summary.TotalRevenue != 0 || summary.AvgOrderValue != 0 {
		t.Errorf("empty store summary = %+v, want zeros", summary)
	}
}

func TestRevenueByCountry(t *testing.T) {
	svc := NewService(seedStore(t), nil, nil)

	rows, err := svc.RevenueByCountry(context.Background(), Range{})
	if err != nil {
		t.Fatalf("RevenueByCountry() error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[0].Country != "Germany" || rows[0].Revenue != 30 {
		t.Errorf("top country = %+v, want Germany/30", rows[0])
	}
}

func TestTopProducts(t *testing.T) {
	svc := NewService(seedStore(t), nil, nil)

	rows, err := svc.TopProducts(context.Background(), Range{}, 1)
	if err != nil {
		t.Fatalf("TopProducts() error: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("limit 1 returned %d rows", len(rows))
	}
	if rows[0].StockCode != "A" || rows[0].Revenue != 50 || rows[0].Quantity != 5 {
		t.Errorf("top product = %+v, want A/50/5", rows[0])
	}
}

func TestMonthlyTrend(t *testing.T) {
	svc := NewService(seedStore(t), nil, nil)

	points, err := svc.MonthlyTrend(context.Background(), Range{})
	if err != nil {
		t.Fatalf("MonthlyTrend() error: %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("points = %d, want 2", len(points))
	}
	if points[0].Month != "2024-01" || points[0].Revenue != 25 {
		t.Errorf("first point = %+v, want 2024-01/25", points[0])
	}
	if points[1].Month != "2024-02" || points[1].Revenue != 30 {
		t.Errorf("second point = %+v, want 2024-02/30", points[1])
	}
}

func TestSummaryRangeFilter(t *testing.T) {
	svc := NewService(seedStore(t), nil, nil)

	summary, err := svc.Summary(context.Background(), Range{
		Start: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 2, 28, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Summary() error: %v", err)
	}
	if summary.TotalRevenue != 30 || summary.TotalOrders != 1 {
		t.Errorf("february summary = %+v, want 30/1", summary)
	}
}

func TestCachedRollupServedFromRedis(t *testing.T) {
	svc, st := newCachedService(t)
	ctx := context.Background()

	first, err := svc.Summary(ctx, Range{})
	if err != nil {
		t.Fatalf("Summary() error: %v", err)
	}

	// Mutate the store behind the cache; the cached rollup must not notice.
	st.Seed(nil)

	second, err := svc.Summary(ctx, Range{})
	if err != nil {
		t.Fatalf("cached Summary() error: %v", err)
	}
	if second.TotalRevenue != first.TotalRevenue {
		t.Errorf("cached rollup changed: %v -> %v", first.TotalRevenue, second.TotalRevenue)
	}
}

func TestCreateInvalidatesCache(t *testing.T) {
	svc, _ := newCachedService(t)
	ctx := context.Background()

	before, err := svc.Summary(ctx, Range{})
	if err != nil {
		t.Fatalf("Summary() error: %v", err)
	}

	err = svc.Create(ctx, models.Transaction{
		ID:          uuid.New(),
		Invoice:     "I9",
		InvoiceDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		StockCode:   "C",
		Quantity:    1,
		Price:       100,
		Country:     "Spain",
	})
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	after, err := svc.Summary(ctx, Range{})
	if err != nil {
		t.Fatalf("Summary() error: %v", err)
	}
	if after.TotalRevenue != before.TotalRevenue+100 {
		t.Errorf("post-create revenue = %v, want %v", after.TotalRevenue, before.TotalRevenue+100)
	}
}

func TestUpdateMissingDoesNotBump(t *testing.T) {
	svc, _ := newCachedService(t)
	ctx := context.Background()

	qty := int64(9)
	n, err := svc.Update(ctx, uuid.New(), store.TransactionUpdate{Quantity: &qty})
	if err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	if n != 0 {
		t.Errorf("matched %d rows for unknown id", n)
	}
}

func TestCountries(t *testing.T) {
	svc := NewService(seedStore(t), nil, nil)

	countries, err := svc.Countries(context.Background())
	if err != nil {
		t.Fatalf("Countries() error: %v", err)
	}
	if len(countries) != 2 || countries[0] != "France" {
		t.Errorf("countries = %v", countries)
	}
}

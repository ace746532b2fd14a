package dashboard

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func refreshBackend(t *testing.T) (http.Handler, *atomic.Int64) {
	t.Helper()

	var requests atomic.Int64

	mux := http.NewServeMux()
	handle := func(pattern, body string) {
		mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
			requests.Add(1)
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(body))
		})
	}

	handle("/countries", `["United Kingdom", "France"]`)
	handle("/summary", `{"total_revenue": 100, "total_orders": 2, "unique_customers": 1, "avg_order_value": 50}`)
	handle("/revenue_by_country", `[{"Country": "United Kingdom", "Revenue": 100}]`)
	handle("/top_products", `[{"StockCode": "S1", "Description": "WIDGET", "Quantity": 5, "Revenue": 100}]`)
	handle("/monthly_trend", `[{"year_month": "2024-01", "Revenue": 30}, {"year_month": "2024-02", "Revenue": 30}, {"year_month": "2024-03", "Revenue": 40}]`)
	handle("/transactions", `[
		{"Invoice": "I1", "InvoiceDate": "2024-03-03T10:00:00Z", "StockCode": "A", "Description": "RED WIDGET", "Quantity": 2, "Price": 10, "CustomerID": 100, "Country": "France"},
		{"Invoice": "I1", "InvoiceDate": "2024-03-03T10:00:00Z", "StockCode": "B", "Description": "RED GADGET", "Quantity": 1, "Price": 5, "CustomerID": 100, "Country": "France"}
	]`)
	handle("/rfm", `[{"CustomerID": "100", "Recency": 10, "Frequency": 2, "Monetary": 25, "cluster": 0}]`)

	return mux, &requests
}

func TestRefreshAllIssuesNineFetches(t *testing.T) {
	backend, requests := refreshBackend(t)
	client, _ := newTestClient(t, backend)

	snap, err := client.RefreshAll(context.Background(), Filter{})
	if err != nil {
		t.Fatalf("RefreshAll() error: %v", err)
	}

	if got := requests.Load(); got != 9 {
		t.Errorf("refresh issued %d requests, want 9", got)
	}

	if len(snap.Countries) != 2 {
		t.Errorf("countries = %v", snap.Countries)
	}
	if snap.Summary.TotalRevenue != 100 {
		t.Errorf("summary = %+v", snap.Summary)
	}
	if len(snap.Transactions) != 2 {
		t.Errorf("transactions = %d rows", len(snap.Transactions))
	}
	if snap.FetchedAt.IsZero() {
		t.Error("FetchedAt not stamped")
	}
}

func TestRefreshAllDerivesAggregates(t *testing.T) {
	backend, _ := refreshBackend(t)
	client, _ := newTestClient(t, backend)

	snap, err := client.RefreshAll(context.Background(), Filter{})
	if err != nil {
		t.Fatalf("RefreshAll() error: %v", err)
	}

	if len(snap.DayOfWeek) != 7 {
		t.Errorf("day-of-week buckets = %d, want 7", len(snap.DayOfWeek))
	}
	if len(snap.Categories) != 1 || snap.Categories[0].Category != "RED" {
		t.Errorf("categories = %+v", snap.Categories)
	}
	if len(snap.Cohorts) != 1 || snap.Cohorts[0].Customers != 1 {
		t.Errorf("cohorts = %+v", snap.Cohorts)
	}
	if len(snap.Pairs) != 1 || snap.Pairs[0].Pair != "A|B" {
		t.Errorf("pairs = %+v", snap.Pairs)
	}
	// 30, 30, 40 trends by +5/month on average.
	if len(snap.Forecast) != 3 || snap.Forecast[0].Revenue != 45 {
		t.Errorf("forecast = %+v", snap.Forecast)
	}
}

func TestRefreshAllReportsSingleError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/summary", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "summary exploded"}`))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client := NewClient(srv.URL, 5*time.Second, nil)
	snap, err := client.RefreshAll(context.Background(), Filter{})
	if err == nil {
		t.Fatal("expected error from failing summary fetch")
	}
	if snap != nil {
		t.Error("failed refresh should not return a snapshot")
	}
}

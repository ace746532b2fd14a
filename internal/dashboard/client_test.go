package dashboard

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"retail-dashboard/internal/models"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 5*time.Second, nil), srv
}

func TestClientSummary(t *testing.T) {
	var gotPath, gotQuery string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"total_revenue": 1234.5, "total_orders": 10, "unique_customers": 4, "avg_order_value": 123.45}`))
	}))

	f := Filter{StartDate: "2024-01-01", Countries: []string{"France"}}
	summary, err := client.Summary(context.Background(), f)
	if err != nil {
		t.Fatalf("Summary() error: %v", err)
	}

	if gotPath != "/summary" {
		t.Errorf("path = %q, want /summary", gotPath)
	}
	if gotQuery != "countries=France&start_date=2024-01-01" {
		t.Errorf("query = %q", gotQuery)
	}
	if summary.TotalRevenue != 1234.5 || summary.TotalOrders != 10 {
		t.Errorf("summary = %+v", summary)
	}
}

func TestClientTopProductsSetsLimit(t *testing.T) {
	var gotQuery string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`[]`))
	}))

	if _, err := client.TopProducts(context.Background(), Filter{}, 25); err != nil {
		t.Fatalf("TopProducts() error: %v", err)
	}
	if gotQuery != "limit=25" {
		t.Errorf("query = %q, want limit=25", gotQuery)
	}
}

func TestClientRFM(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rfm" || r.URL.Query().Get("k") != "4" {
			t.Errorf("unexpected request %s?%s", r.URL.Path, r.URL.RawQuery)
		}
		w.Write([]byte(`[{"CustomerID": "17850", "Recency": 5, "Frequency": 12, "Monetary": 950.5, "cluster": 2}]`))
	}))

	records, err := client.RFM(context.Background(), 4)
	if err != nil {
		t.Fatalf("RFM() error: %v", err)
	}
	if len(records) != 1 || records[0].Cluster != 2 || records[0].CustomerID != "17850" {
		t.Errorf("records = %+v", records)
	}
}

func TestClientDecodesErrorEnvelope(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": {"code": "BAD_REQUEST", "message": "invalid ID format"}}`))
	}))

	err := client.DeleteTransaction(context.Background(), "not-a-uuid")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T: %v", err, err)
	}
	if apiErr.Status != http.StatusBadRequest || apiErr.Message != "invalid ID format" {
		t.Errorf("apiErr = %+v", apiErr)
	}
}

func TestClientDecodesStringError(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "database unavailable"}`))
	}))

	_, err := client.Countries(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T: %v", err, err)
	}
	if apiErr.Message != "database unavailable" {
		t.Errorf("message = %q", apiErr.Message)
	}
}

func TestClientUpdateSendsPut(t *testing.T) {
	var gotMethod, gotPath string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.Write([]byte(`{"matched": 1, "modified": 1}`))
	}))

	qty := int64(3)
	err := client.UpdateTransaction(context.Background(), "abc-123", models.TransactionInput{Quantity: &qty})
	if err != nil {
		t.Fatalf("UpdateTransaction() error: %v", err)
	}
	if gotMethod != http.MethodPut || gotPath != "/transactions/abc-123" {
		t.Errorf("request = %s %s, want PUT /transactions/abc-123", gotMethod, gotPath)
	}
}

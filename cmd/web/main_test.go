package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHandleDashboard(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()

	handleDashboard(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if cc := w.Header().Get("Cache-Control"); cc != cacheMaxAge {
		t.Errorf("cache-control = %q, want %q", cc, cacheMaxAge)
	}

	body := w.Body.String()
	for _, want := range []string{
		"<!DOCTYPE html>",
		"Retail Analytics",
		`id="transactions-content"`,
		`id="products-table-content"`,
		`id="transaction-modal"`,
		"/sse/refresh-all",
		"/export/csv",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q", want)
		}
	}
}

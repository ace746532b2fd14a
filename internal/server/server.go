package server

import (
	"log/slog"
	"net/http"

	"retail-dashboard/internal/analytics"
	"retail-dashboard/internal/dashboard"
	"retail-dashboard/internal/handlers"
)

// Server routes the three surfaces of the application: the REST backend
// under /api, the SSE dashboard endpoints under /sse and /ui, and the
// exports under /export.
type Server struct {
	mux    *http.ServeMux
	logger *slog.Logger

	apiHandlers    *handlers.APIHandlers
	sseHandlers    *handlers.SSEHandlers
	formHandlers   *handlers.FormHandlers
	exportHandlers *handlers.ExportHandlers
}

type TemplateHandlers struct {
	Dashboard http.HandlerFunc
}

func NewServer(svc *analytics.Service, client *dashboard.Client, logger *slog.Logger, templateHandlers *TemplateHandlers) *Server {
	sseHandlers := handlers.NewSSEHandlers(client, logger)
	form := dashboard.NewFormController(client)

	s := &Server{
		mux:            http.NewServeMux(),
		logger:         logger,
		apiHandlers:    handlers.NewAPIHandlers(svc, logger),
		sseHandlers:    sseHandlers,
		formHandlers:   handlers.NewFormHandlers(form, sseHandlers, logger),
		exportHandlers: handlers.NewExportHandlers(sseHandlers, logger),
	}
	s.setupRoutes(templateHandlers)
	return s
}

func (s *Server) setupRoutes(templateHandlers *TemplateHandlers) {
	// Dashboard page
	s.mux.HandleFunc("GET /{$}", templateHandlers.Dashboard)
	s.mux.HandleFunc("GET /health", s.apiHandlers.HandleHealth)

	// REST API endpoints
	s.mux.HandleFunc("GET /api/health", s.apiHandlers.HandleHealth)
	s.mux.HandleFunc("GET /api/countries", s.apiHandlers.HandleCountries)
	s.mux.HandleFunc("GET /api/summary", s.apiHandlers.HandleSummary)
	s.mux.HandleFunc("GET /api/revenue_by_country", s.apiHandlers.HandleRevenueByCountry)
	s.mux.HandleFunc("GET /api/top_products", s.apiHandlers.HandleTopProducts)
	s.mux.HandleFunc("GET /api/monthly_trend", s.apiHandlers.HandleMonthlyTrend)
	s.mux.HandleFunc("GET /api/rfm", s.apiHandlers.HandleRFM)
	s.mux.HandleFunc("GET /api/transactions", s.apiHandlers.HandleListTransactions)
	s.mux.HandleFunc("POST /api/transactions", s.apiHandlers.HandleCreateTransaction)
	s.mux.HandleFunc("PUT /api/transactions/{id}", s.apiHandlers.HandleUpdateTransaction)
	s.mux.HandleFunc("DELETE /api/transactions/{id}", s.apiHandlers.HandleDeleteTransaction)

	// Datastar SSE endpoints
	s.mux.HandleFunc("GET /sse/refresh-all", s.sseHandlers.HandleRefreshAll)
	s.mux.HandleFunc("GET /sse/transactions-table", s.sseHandlers.HandleTransactionsTable)
	s.mux.HandleFunc("GET /sse/products-table", s.sseHandlers.HandleProductsTable)
	s.mux.HandleFunc("GET /sse/rfm-segment", s.sseHandlers.HandleRFMSegment)

	// Transaction modal
	s.mux.HandleFunc("GET /ui/transactions/new", s.formHandlers.HandleNew)
	s.mux.HandleFunc("GET /ui/transactions/{id}/edit", s.formHandlers.HandleEdit)
	s.mux.HandleFunc("GET /ui/transactions/close", s.formHandlers.HandleClose)
	s.mux.HandleFunc("POST /ui/transactions/submit", s.formHandlers.HandleSubmit)
	s.mux.HandleFunc("DELETE /ui/transactions/{id}", s.formHandlers.HandleDelete)

	// Exports
	s.mux.HandleFunc("GET /export/csv", s.exportHandlers.HandleCSV)
	s.mux.HandleFunc("GET /export/pdf", s.exportHandlers.HandlePDF)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

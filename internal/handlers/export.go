package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"retail-dashboard/internal/apperr"
	"retail-dashboard/internal/dashboard"
	"retail-dashboard/internal/observability"
)

// ExportHandlers downloads the client-held dataset. Exports never refetch;
// they serialize exactly what the last refresh loaded.
type ExportHandlers struct {
	panels *SSEHandlers
	logger *slog.Logger
}

func NewExportHandlers(panels *SSEHandlers, logger *slog.Logger) *ExportHandlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExportHandlers{
		panels: panels,
		logger: logger,
	}
}

// HandleCSV streams the held transactions as a CSV attachment.
func (h *ExportHandlers) HandleCSV(w http.ResponseWriter, r *http.Request) {
	snap := h.panels.Snapshot()
	if snap == nil {
		apperr.WriteError(w, h.logger, apperr.BadRequest("no data loaded, refresh the dashboard first"),
			observability.GetRequestID(r.Context()))
		return
	}

	filename := fmt.Sprintf("transactions-%s.csv", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := dashboard.WriteTransactionsCSV(w, snap.Transactions); err != nil {
		h.logger.Error("csv export failed", "error", err)
	}
}

// HandlePDF is the PDF export placeholder; the button exists but the
// format does not.
func (h *ExportHandlers) HandlePDF(w http.ResponseWriter, r *http.Request) {
	apperr.WriteError(w, h.logger, apperr.NotImplemented("PDF export is not implemented"),
		observability.GetRequestID(r.Context()))
}

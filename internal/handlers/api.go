package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"retail-dashboard/internal/analytics"
	"retail-dashboard/internal/apperr"
	"retail-dashboard/internal/models"
	"retail-dashboard/internal/observability"
	"retail-dashboard/internal/store"
)

const defaultRFMClusters = 3

// APIHandlers implements the REST backend the dashboard consumes.
type APIHandlers struct {
	svc    *analytics.Service
	logger *slog.Logger
}

func NewAPIHandlers(svc *analytics.Service, logger *slog.Logger) *APIHandlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &APIHandlers{svc: svc, logger: logger}
}

func (h *APIHandlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	apperr.WriteError(w, h.logger, err, observability.GetRequestID(r.Context()))
}

func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	database := "connected"
	if err := h.svc.Ping(r.Context()); err != nil {
		database = "disconnected"
	}

	apperr.WriteJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"database":  database,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *APIHandlers) HandleCountries(w http.ResponseWriter, r *http.Request) {
	countries, err := h.svc.Countries(r.Context())
	if err != nil {
		h.fail(w, r, apperr.InternalWrap(err, "failed to list countries"))
		return
	}
	apperr.WriteJSON(w, http.StatusOK, countries)
}

func (h *APIHandlers) HandleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.svc.Summary(r.Context(), parseRange(r))
	if err != nil {
		h.fail(w, r, apperr.InternalWrap(err, "failed to compute summary"))
		return
	}
	apperr.WriteJSON(w, http.StatusOK, summary)
}

func (h *APIHandlers) HandleRevenueByCountry(w http.ResponseWriter, r *http.Request) {
	rows, err := h.svc.RevenueByCountry(r.Context(), parseRange(r))
	if err != nil {
		h.fail(w, r, apperr.InternalWrap(err, "failed to compute revenue by country"))
		return
	}
	apperr.WriteJSON(w, http.StatusOK, rows)
}

func (h *APIHandlers) HandleTopProducts(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", analytics.DefaultTopProducts)
	rows, err := h.svc.TopProducts(r.Context(), parseRange(r), limit)
	if err != nil {
		h.fail(w, r, apperr.InternalWrap(err, "failed to compute top products"))
		return
	}
	apperr.WriteJSON(w, http.StatusOK, rows)
}

func (h *APIHandlers) HandleMonthlyTrend(w http.ResponseWriter, r *http.Request) {
	points, err := h.svc.MonthlyTrend(r.Context(), parseRange(r))
	if err != nil {
		h.fail(w, r, apperr.InternalWrap(err, "failed to compute monthly trend"))
		return
	}
	apperr.WriteJSON(w, http.StatusOK, points)
}

func (h *APIHandlers) HandleRFM(w http.ResponseWriter, r *http.Request) {
	k := queryInt(r, "k", defaultRFMClusters)
	records, err := h.svc.RFM(r.Context(), k)
	if err != nil {
		h.fail(w, r, apperr.InternalWrap(err, "failed to compute rfm clusters"))
		return
	}
	apperr.WriteJSON(w, http.StatusOK, records)
}

func (h *APIHandlers) HandleListTransactions(w http.ResponseWriter, r *http.Request) {
	rng := parseRange(r)
	filter := store.Filter{
		Start:     rng.Start,
		End:       rng.End,
		Countries: rng.Countries,
		Invoice:   r.URL.Query().Get("invoice"),
		Limit:     queryInt(r, "limit", store.DefaultListLimit),
	}

	txs, err := h.svc.Transactions(r.Context(), filter)
	if err != nil {
		h.fail(w, r, apperr.InternalWrap(err, "failed to list transactions"))
		return
	}
	apperr.WriteJSON(w, http.StatusOK, txs)
}

func (h *APIHandlers) HandleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var in models.TransactionInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.fail(w, r, apperr.BadRequest("invalid JSON payload"))
		return
	}

	tx := models.Transaction{
		ID:          uuid.New(),
		Invoice:     deref(in.Invoice),
		StockCode:   deref(in.StockCode),
		Description: deref(in.Description),
		Country:     deref(in.Country),
		CustomerID:  in.CustomerID,
		InvoiceDate: time.Now().UTC(),
	}
	if in.Quantity != nil {
		tx.Quantity = *in.Quantity
	}
	if in.Price != nil {
		tx.Price = *in.Price
	}
	if in.InvoiceDate != nil {
		if parsed, ok := parseDateParam(*in.InvoiceDate); ok {
			tx.InvoiceDate = parsed
		}
	}

	if err := h.svc.Create(r.Context(), tx); err != nil {
		h.fail(w, r, apperr.InternalWrap(err, "failed to create transaction"))
		return
	}

	h.logger.Info("transaction created", "id", tx.ID)
	apperr.WriteJSON(w, http.StatusCreated, map[string]string{"inserted_id": tx.ID.String()})
}

func (h *APIHandlers) HandleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.fail(w, r, apperr.BadRequest("invalid ID format"))
		return
	}

	var in models.TransactionInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.fail(w, r, apperr.BadRequest("invalid JSON payload"))
		return
	}
	if in.Empty() {
		h.fail(w, r, apperr.BadRequest("no fields to update"))
		return
	}

	update := store.TransactionUpdate{
		Invoice:     in.Invoice,
		StockCode:   in.StockCode,
		Description: in.Description,
		Quantity:    in.Quantity,
		Price:       in.Price,
		CustomerID:  in.CustomerID,
		Country:     in.Country,
	}
	if in.InvoiceDate != nil {
		if parsed, ok := parseDateParam(*in.InvoiceDate); ok {
			update.InvoiceDate = &parsed
		}
	}

	matched, err := h.svc.Update(r.Context(), id, update)
	if err != nil {
		h.fail(w, r, apperr.InternalWrap(err, "failed to update transaction"))
		return
	}

	h.logger.Info("transaction updated", "id", id, "matched", matched)
	apperr.WriteJSON(w, http.StatusOK, map[string]int64{"matched": matched, "modified": matched})
}

func (h *APIHandlers) HandleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.fail(w, r, apperr.BadRequest("invalid ID format"))
		return
	}

	deleted, err := h.svc.Delete(r.Context(), id)
	if err != nil {
		h.fail(w, r, apperr.InternalWrap(err, "failed to delete transaction"))
		return
	}

	h.logger.Info("transaction deleted", "id", id, "deleted", deleted)
	apperr.WriteJSON(w, http.StatusOK, map[string]int64{"deleted": deleted})
}

// parseRange reads the shared filter params. Unknown params (including the
// dashboard's segment filter) are ignored here, as the original backend
// ignores them.
func parseRange(r *http.Request) analytics.Range {
	q := r.URL.Query()

	rng := analytics.Range{}
	if start, ok := parseDateParam(q.Get("start_date")); ok {
		rng.Start = start
	}
	if end, ok := parseDateParam(q.Get("end_date")); ok {
		rng.End = end
	}
	if raw := q.Get("countries"); raw != "" {
		for _, c := range strings.Split(raw, ",") {
			if c = strings.TrimSpace(c); c != "" {
				rng.Countries = append(rng.Countries, c)
			}
		}
	}
	return rng
}

func parseDateParam(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02T15:04", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func queryInt(r *http.Request, key string, defaultValue int) int {
	if raw := r.URL.Query().Get(key); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			return v
		}
	}
	return defaultValue
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

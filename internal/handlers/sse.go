package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/starfederation/datastar-go/datastar"

	"retail-dashboard/internal/dashboard"
)

// SSEHandlers drives the dashboard panels. A full refresh fetches the
// backend once and holds the result; the table and segment handlers
// re-render from that held snapshot without touching the backend again.
type SSEHandlers struct {
	client *dashboard.Client
	logger *slog.Logger

	mu   sync.RWMutex
	snap *dashboard.Snapshot
}

func NewSSEHandlers(client *dashboard.Client, logger *slog.Logger) *SSEHandlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &SSEHandlers{
		client: client,
		logger: logger,
	}
}

// Snapshot returns the last refreshed dataset, or nil before the first
// refresh.
func (h *SSEHandlers) Snapshot() *dashboard.Snapshot {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.snap
}

func parseFilter(r *http.Request) dashboard.Filter {
	q := r.URL.Query()

	f := dashboard.Filter{
		StartDate: q.Get("start_date"),
		EndDate:   q.Get("end_date"),
		Segment:   q.Get("segment"),
	}
	if raw := q.Get("countries"); raw != "" {
		for _, c := range strings.Split(raw, ",") {
			if c = strings.TrimSpace(c); c != "" {
				f.Countries = append(f.Countries, c)
			}
		}
	}
	if preset := q.Get("preset"); preset != "" {
		f.ApplyPreset(preset, time.Now())
	}
	return f
}

func parseTableState(r *http.Request) dashboard.TableState {
	q := r.URL.Query()
	state := dashboard.TableState{
		Search:  q.Get("search"),
		SortKey: q.Get("sort"),
		Page:    queryInt(r, "page", 1),
	}
	return state
}

// HandleRefreshAll runs the full nine-fetch refresh, replaces the held
// snapshot and pushes every panel: both tables as HTML patches, the
// chart specs and summary cards as one signals patch.
func (h *SSEHandlers) HandleRefreshAll(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	filter := parseFilter(r)
	snap, err := h.client.RefreshAll(r.Context(), filter)
	if err != nil {
		h.logger.Error("dashboard refresh failed", "error", err)
		sse.PatchElements(`<div id="refresh-status" class="error">Failed to load dashboard data</div>`)
		return
	}

	h.mu.Lock()
	h.snap = snap
	h.mu.Unlock()

	h.patchTables(sse, snap, dashboard.TableState{Page: 1})
	h.patchSignals(sse, snap, filter.Segment)
	sse.PatchElements(`<div id="refresh-status">Updated ` + snap.FetchedAt.Format("15:04:05") + `</div>`)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

// HandleTransactionsTable re-renders the transactions table from the held
// snapshot with the requested search, sort and page.
func (h *SSEHandlers) HandleTransactionsTable(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	snap := h.Snapshot()
	if snap == nil {
		sse.PatchElements(`<div id="transactions-content" class="no-data">No data loaded yet</div>`)
		return
	}

	html, err := dashboard.RenderTransactionsTable(snap.Transactions, parseTableState(r))
	if err != nil {
		h.logger.Error("render transactions table", "error", err)
		return
	}
	sse.PatchElements(html)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

// HandleProductsTable re-renders the product rollup table from the held
// snapshot.
func (h *SSEHandlers) HandleProductsTable(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	snap := h.Snapshot()
	if snap == nil {
		sse.PatchElements(`<div id="products-table-content" class="no-data">No data loaded yet</div>`)
		return
	}

	html, err := dashboard.RenderProductsTable(snap.Products, parseTableState(r))
	if err != nil {
		h.logger.Error("render products table", "error", err)
		return
	}
	sse.PatchElements(html)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

// HandleRFMSegment re-filters the held RFM records by segment label and
// pushes a fresh scatter spec. Only the chart changes; no refetch.
func (h *SSEHandlers) HandleRFMSegment(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	snap := h.Snapshot()
	if snap == nil {
		return
	}

	segment := r.URL.Query().Get("segment")
	records := dashboard.FilterBySegment(snap.RFM, segment)
	jsonData, err := json.Marshal(map[string]any{
		"rfmChart": dashboard.RFMScatterChart(records),
		"rfmCount": len(records),
	})
	if err != nil {
		h.logger.Error("marshal rfm signals", "error", err)
		return
	}
	sse.PatchSignals(jsonData)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func (h *SSEHandlers) patchTables(sse *datastar.ServerSentEventGenerator, snap *dashboard.Snapshot, state dashboard.TableState) {
	if html, err := dashboard.RenderTransactionsTable(snap.Transactions, state); err == nil {
		sse.PatchElements(html)
	} else {
		h.logger.Error("render transactions table", "error", err)
	}

	if html, err := dashboard.RenderProductsTable(snap.Products, state); err == nil {
		sse.PatchElements(html)
	} else {
		h.logger.Error("render products table", "error", err)
	}
}

func (h *SSEHandlers) patchSignals(sse *datastar.ServerSentEventGenerator, snap *dashboard.Snapshot, segment string) {
	rfm := dashboard.FilterBySegment(snap.RFM, segment)

	signals, err := json.Marshal(map[string]any{
		"totalRevenue":    snap.Summary.TotalRevenue,
		"totalOrders":     snap.Summary.TotalOrders,
		"uniqueCustomers": snap.Summary.UniqueCustomers,
		"avgOrderValue":   snap.Summary.AvgOrderValue,
		"countries":       snap.Countries,
		"countryChart":    dashboard.CountryRevenueChart(snap.CountryRevenue),
		"productsChart":   dashboard.TopProductsChart(snap.TopProducts),
		"monthlyChart":    dashboard.MonthlyTrendChart(snap.MonthlyTrend, snap.Forecast),
		"dayOfWeekChart":  dashboard.DayOfWeekChart(snap.DayOfWeek),
		"categoryChart":   dashboard.CategoryChart(snap.Categories),
		"cohortChart":     dashboard.CohortChart(snap.Cohorts),
		"pairsChart":      dashboard.AssociationChart(snap.Pairs),
		"rfmChart":        dashboard.RFMScatterChart(rfm),
		"rfmCount":        len(rfm),
	})
	if err != nil {
		h.logger.Error("marshal dashboard signals", "error", err)
		return
	}
	sse.PatchSignals(signals)
}

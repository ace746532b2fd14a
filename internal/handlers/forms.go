package handlers

import (
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/starfederation/datastar-go/datastar"

	"retail-dashboard/internal/dashboard"
)

var transactionFormTemplate = template.Must(template.New("transactionForm").Parse(`
<div id="transaction-modal" class="modal open">
<form data-on-submit="@post('/ui/transactions/submit', {contentType: 'form'})">
<h3>{{if .EditingID}}Edit Transaction{{else}}New Transaction{{end}}</h3>
<label>Invoice <input name="invoice" value="{{.Values.Invoice}}"></label>
<label>Date <input type="datetime-local" name="invoice_date" value="{{.Values.InvoiceDate}}"></label>
<label>Stock Code <input name="stock_code" value="{{.Values.StockCode}}"></label>
<label>Description <input name="description" value="{{.Values.Description}}"></label>
<label>Quantity <input type="number" name="quantity" value="{{.Values.Quantity}}"></label>
<label>Price <input type="number" step="0.01" name="price" value="{{printf "%.2f" .Values.Price}}"></label>
<label>Customer ID <input type="number" name="customer_id" value="{{if .Values.CustomerID}}{{.Values.CustomerID}}{{end}}"></label>
<label>Country <input name="country" value="{{.Values.Country}}"></label>
<button type="submit">Save</button>
<button type="button" data-on-click="@get('/ui/transactions/close')">Cancel</button>
</form>
</div>`))

const closedModal = `<div id="transaction-modal" class="modal"></div>`

type formTemplateData struct {
	EditingID string
	Values    dashboard.FormValues
}

// FormHandlers serves the create/edit modal. Submits go through the
// controller, which picks POST or PUT from its editing state; every
// successful mutation triggers a full refresh on the page.
type FormHandlers struct {
	form   *dashboard.FormController
	panels *SSEHandlers
	logger *slog.Logger
}

func NewFormHandlers(form *dashboard.FormController, panels *SSEHandlers, logger *slog.Logger) *FormHandlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &FormHandlers{
		form:   form,
		panels: panels,
		logger: logger,
	}
}

func (h *FormHandlers) renderModal(sse *datastar.ServerSentEventGenerator) {
	var buf strings.Builder
	err := transactionFormTemplate.Execute(&buf, formTemplateData{
		EditingID: h.form.EditingID(),
		Values:    h.form.Values(),
	})
	if err != nil {
		h.logger.Error("render transaction form", "error", err)
		return
	}
	sse.PatchElements(buf.String())
}

// HandleNew opens the modal in create mode.
func (h *FormHandlers) HandleNew(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	h.form.BeginCreate()
	h.renderModal(sse)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

// HandleEdit opens the modal prefilled from the held snapshot. Editing a
// row that is no longer in the current dataset reports an error instead
// of opening an empty form.
func (h *FormHandlers) HandleEdit(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	id := r.PathValue("id")
	if err := h.form.BeginEdit(id, h.panels.Snapshot()); err != nil {
		h.logger.Warn("edit prefill failed", "id", id, "error", err)
		sse.PatchElements(`<div id="refresh-status" class="error">Transaction not found in loaded data</div>`)
		return
	}
	h.renderModal(sse)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

// HandleClose dismisses the modal without saving.
func (h *FormHandlers) HandleClose(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)
	sse.PatchElements(closedModal)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

// HandleSubmit saves the form. Create or update is the controller's call.
func (h *FormHandlers) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	if err := r.ParseForm(); err != nil {
		sse.PatchElements(`<div id="refresh-status" class="error">Invalid form submission</div>`)
		return
	}

	values := dashboard.FormValues{
		Invoice:     r.PostFormValue("invoice"),
		InvoiceDate: r.PostFormValue("invoice_date"),
		StockCode:   r.PostFormValue("stock_code"),
		Description: r.PostFormValue("description"),
		Country:     r.PostFormValue("country"),
	}
	if raw := r.PostFormValue("quantity"); raw != "" {
		if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
			values.Quantity = v
		}
	}
	if raw := r.PostFormValue("price"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			values.Price = v
		}
	}
	if raw := r.PostFormValue("customer_id"); raw != "" {
		if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
			values.CustomerID = &v
		}
	}

	if err := h.form.Submit(r.Context(), values); err != nil {
		h.logger.Error("transaction save failed", "error", err)
		sse.PatchElements(`<div id="refresh-status" class="error">Save failed</div>`)
		return
	}

	sse.PatchElements(closedModal)
	// The patched status div re-runs the full refresh on load, so every
	// successful save is followed by fresh data.
	sse.PatchElements(`<div id="refresh-status" data-on-load="@get('/sse/refresh-all')">Saved</div>`)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

// HandleDelete removes a transaction. The confirm prompt already ran on
// the page, so the controller gets no second confirmation.
func (h *FormHandlers) HandleDelete(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	id := r.PathValue("id")
	if err := h.form.Delete(r.Context(), id, nil); err != nil {
		h.logger.Error("transaction delete failed", "id", id, "error", err)
		sse.PatchElements(`<div id="refresh-status" class="error">Delete failed</div>`)
		return
	}

	sse.PatchElements(`<div id="refresh-status" data-on-load="@get('/sse/refresh-all')">Deleted</div>`)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

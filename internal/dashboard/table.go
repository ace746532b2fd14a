package dashboard

import (
	"html/template"
	"slices"
	"strings"

	"retail-dashboard/internal/models"
)

// PageSize is the fixed page size of the client-side tables.
const PageSize = 50

// Sort keys accepted by SortTransactions.
const (
	SortByDate     = "date"
	SortByRevenue  = "revenue"
	SortByQuantity = "quantity"
)

// TableState mirrors the dashboard's table controls: a search box, a sort
// selector and the current page.
type TableState struct {
	Search  string
	SortKey string
	Page    int
}

// SearchTransactions keeps rows whose lowercased description or stock code
// contains the lowercased term.
func SearchTransactions(txs []models.Transaction, term string) []models.Transaction {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return txs
	}

	out := make([]models.Transaction, 0, len(txs))
	for _, tx := range txs {
		if strings.Contains(strings.ToLower(tx.Description), term) ||
			strings.Contains(strings.ToLower(tx.StockCode), term) {
			out = append(out, tx)
		}
	}
	return out
}

// SortTransactions orders a copy of txs by the given key, descending.
// Missing dates sort last; revenue and quantity default to zero.
func SortTransactions(txs []models.Transaction, key string) []models.Transaction {
	out := slices.Clone(txs)

	switch key {
	case SortByRevenue:
		slices.SortStableFunc(out, func(a, b models.Transaction) int {
			if a.Revenue() > b.Revenue() {
				return -1
			}
			if a.Revenue() < b.Revenue() {
				return 1
			}
			return 0
		})
	case SortByQuantity:
		slices.SortStableFunc(out, func(a, b models.Transaction) int {
			if a.Quantity > b.Quantity {
				return -1
			}
			if a.Quantity < b.Quantity {
				return 1
			}
			return 0
		})
	case SortByDate:
		slices.SortStableFunc(out, func(a, b models.Transaction) int {
			switch {
			case a.InvoiceDate.After(b.InvoiceDate):
				return -1
			case b.InvoiceDate.After(a.InvoiceDate):
				return 1
			default:
				return 0
			}
		})
	}
	return out
}

// TotalPages is ceil(n / PageSize), never below one.
func TotalPages(n int) int {
	pages := (n + PageSize - 1) / PageSize
	if pages < 1 {
		return 1
	}
	return pages
}

// ClampPage forces page into [1, TotalPages(n)].
func ClampPage(page, n int) int {
	if page < 1 {
		return 1
	}
	if total := TotalPages(n); page > total {
		return total
	}
	return page
}

// PageSlice returns the rows of the given (already clamped) page.
func PageSlice(txs []models.Transaction, page int) []models.Transaction {
	page = ClampPage(page, len(txs))
	lo := (page - 1) * PageSize
	hi := min(lo+PageSize, len(txs))
	if lo >= len(txs) {
		return nil
	}
	return txs[lo:hi]
}

var transactionsTableTemplate = template.Must(template.New("transactionsTable").Parse(`
<div id="transactions-content">
<table class="data-table">
<thead><tr><th>Invoice</th><th>Date</th><th>Stock</th><th>Description</th><th>Qty</th><th>Price</th><th>Customer</th><th>Country</th><th></th></tr></thead>
<tbody>
{{if not .Rows}}<tr><td colspan="9" class="no-data">No transactions found</td></tr>{{end}}
{{range .Rows}}<tr>
<td>{{.Invoice}}</td>
<td>{{.InvoiceDate.Format "2006-01-02"}}</td>
<td>{{.StockCode}}</td>
<td>{{.Description}}</td>
<td>{{.Quantity}}</td>
<td>{{printf "%.2f" .Price}}</td>
<td>{{if .CustomerID}}{{.CustomerID}}{{else}}&mdash;{{end}}</td>
<td>{{.Country}}</td>
<td><button data-on-click="@get('/ui/transactions/{{.ID}}/edit')">Edit</button>
<button data-on-click="confirm('Delete this transaction?') && @delete('/ui/transactions/{{.ID}}')">Delete</button></td>
</tr>{{end}}
</tbody>
</table>
<div class="pager">Page {{.Page}} / {{.TotalPages}} ({{.Total}} rows)</div>
</div>`))

type transactionsTableData struct {
	Rows       []models.Transaction
	Page       int
	TotalPages int
	Total      int
}

// RenderTransactionsTable applies search, sort and pagination to the
// client-held dataset and renders one HTML page of it. An empty dataset
// renders the "no data" row.
func RenderTransactionsTable(txs []models.Transaction, state TableState) (string, error) {
	filtered := SearchTransactions(txs, state.Search)
	sorted := SortTransactions(filtered, state.SortKey)
	page := ClampPage(state.Page, len(sorted))

	var buf strings.Builder
	err := transactionsTableTemplate.Execute(&buf, transactionsTableData{
		Rows:       PageSlice(sorted, page),
		Page:       page,
		TotalPages: TotalPages(len(sorted)),
		Total:      len(sorted),
	})
	return buf.String(), err
}

var productsTableTemplate = template.Must(template.New("productsTable").Parse(`
<div id="products-table-content">
<table class="data-table">
<thead><tr><th>Stock</th><th>Description</th><th>Quantity</th><th>Revenue</th></tr></thead>
<tbody>
{{if not .Rows}}<tr><td colspan="4" class="no-data">No products found</td></tr>{{end}}
{{range .Rows}}<tr>
<td>{{.StockCode}}</td>
<td>{{.Description}}</td>
<td>{{.Quantity}}</td>
<td><strong>{{printf "%.2f" .Revenue}}</strong></td>
</tr>{{end}}
</tbody>
</table>
<div class="pager">Page {{.Page}} / {{.TotalPages}} ({{.Total}} rows)</div>
</div>`))

type productsTableData struct {
	Rows       []models.ProductAggregate
	Page       int
	TotalPages int
	Total      int
}

// RenderProductsTable renders one page of the product rollup with an
// optional search over stock code and description.
func RenderProductsTable(products []models.ProductAggregate, state TableState) (string, error) {
	term := strings.ToLower(strings.TrimSpace(state.Search))
	filtered := products
	if term != "" {
		filtered = make([]models.ProductAggregate, 0, len(products))
		for _, p := range products {
			if strings.Contains(strings.ToLower(p.Description), term) ||
				strings.Contains(strings.ToLower(p.StockCode), term) {
				filtered = append(filtered, p)
			}
		}
	}

	page := ClampPage(state.Page, len(filtered))
	lo := (page - 1) * PageSize
	hi := min(lo+PageSize, len(filtered))
	rows := filtered[lo:hi]

	var buf strings.Builder
	err := productsTableTemplate.Execute(&buf, productsTableData{
		Rows:       rows,
		Page:       page,
		TotalPages: TotalPages(len(filtered)),
		Total:      len(filtered),
	})
	return buf.String(), err
}

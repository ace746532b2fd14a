package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// Dashboard is the single-page shell. Every panel is a placeholder that
// the SSE endpoints patch; the page itself carries no data.
func Dashboard() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, dashboardPage)
		return err
	})
}

const dashboardPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Retail Analytics Dashboard</title>
<script type="module" src="https://cdn.jsdelivr.net/gh/starfederation/datastar@main/bundles/datastar.js"></script>
<script src="https://cdn.jsdelivr.net/npm/chart.js@4"></script>
<style>
body { font-family: system-ui, sans-serif; margin: 0; background: #f4f5f7; color: #1c2733; }
header { background: #1c2733; color: #fff; padding: 1rem 2rem; display: flex; justify-content: space-between; align-items: center; }
main { padding: 1rem 2rem; }
.filters { display: flex; flex-wrap: wrap; gap: 0.5rem; align-items: center; margin-bottom: 1rem; }
.cards { display: grid; grid-template-columns: repeat(auto-fit, minmax(180px, 1fr)); gap: 1rem; margin-bottom: 1rem; }
.card { background: #fff; border-radius: 8px; padding: 1rem; box-shadow: 0 1px 3px rgba(0,0,0,.1); }
.card .value { font-size: 1.6rem; font-weight: 700; }
.grid { display: grid; grid-template-columns: repeat(auto-fit, minmax(420px, 1fr)); gap: 1rem; }
.panel { background: #fff; border-radius: 8px; padding: 1rem; box-shadow: 0 1px 3px rgba(0,0,0,.1); }
.data-table { width: 100%; border-collapse: collapse; font-size: 0.85rem; }
.data-table th, .data-table td { padding: 0.4rem 0.6rem; border-bottom: 1px solid #e3e6ea; text-align: left; }
.no-data { text-align: center; color: #7a8694; padding: 1rem; }
.pager { padding: 0.5rem 0; color: #7a8694; font-size: 0.85rem; }
.error { color: #b3261e; }
.modal { display: none; }
.modal.open { display: block; position: fixed; inset: 0; background: rgba(0,0,0,.4); padding-top: 5rem; }
.modal form { background: #fff; max-width: 480px; margin: 0 auto; padding: 1.5rem; border-radius: 8px; display: grid; gap: 0.6rem; }
</style>
</head>
<body data-signals="{search: '', sort: 'date', page: 1, segment: '',
  totalRevenue: 0, totalOrders: 0, uniqueCustomers: 0, avgOrderValue: 0,
  countryChart: null, productsChart: null, monthlyChart: null,
  dayOfWeekChart: null, categoryChart: null, cohortChart: null,
  pairsChart: null, rfmChart: null, rfmCount: 0}"
  data-on-load="@get('/sse/refresh-all')">

<header>
<h1>Retail Analytics</h1>
<div id="refresh-status">Loading&hellip;</div>
</header>

<main>
<div class="filters">
<input type="date" data-bind-start_date>
<input type="date" data-bind-end_date>
<input placeholder="Countries (comma separated)" data-bind-countries>
<select data-bind-segment data-on-change="@get('/sse/rfm-segment?segment=' + $segment)">
<option value="">All segments</option>
<option>Champions</option>
<option>Loyal</option>
<option>Big Spenders</option>
<option>At Risk</option>
<option>Hibernating</option>
<option>Others</option>
</select>
<button data-on-click="@get('/sse/refresh-all?start_date=' + ($start_date ?? '') + '&end_date=' + ($end_date ?? '') + '&countries=' + ($countries ?? '') + '&segment=' + $segment)">Apply</button>
<button data-on-click="@get('/sse/refresh-all?preset=week')">Last 7 days</button>
<button data-on-click="@get('/sse/refresh-all?preset=month')">Last month</button>
<button data-on-click="@get('/sse/refresh-all?preset=year')">Last year</button>
<button data-on-click="@get('/sse/refresh-all?preset=all')">All time</button>
<button data-on-click="@get('/ui/transactions/new')">+ New Transaction</button>
<a href="/export/csv">Export CSV</a>
<a href="/export/pdf">Export PDF</a>
</div>

<div class="cards">
<div class="card"><div>Total Revenue</div><div class="value" data-text="'$' + $totalRevenue.toFixed(2)"></div></div>
<div class="card"><div>Orders</div><div class="value" data-text="$totalOrders"></div></div>
<div class="card"><div>Customers</div><div class="value" data-text="$uniqueCustomers"></div></div>
<div class="card"><div>Avg Order Value</div><div class="value" data-text="'$' + $avgOrderValue.toFixed(2)"></div></div>
</div>

<div class="grid">
<div class="panel"><h3>Revenue by Country</h3><canvas id="country-chart" data-effect="renderChart('country-chart', $countryChart)"></canvas></div>
<div class="panel"><h3>Top Products</h3><canvas id="products-chart" data-effect="renderChart('products-chart', $productsChart)"></canvas></div>
<div class="panel"><h3>Monthly Trend &amp; Forecast</h3><canvas id="monthly-chart" data-effect="renderChart('monthly-chart', $monthlyChart)"></canvas></div>
<div class="panel"><h3>Revenue by Day of Week</h3><canvas id="dow-chart" data-effect="renderChart('dow-chart', $dayOfWeekChart)"></canvas></div>
<div class="panel"><h3>Category Split</h3><canvas id="category-chart" data-effect="renderChart('category-chart', $categoryChart)"></canvas></div>
<div class="panel"><h3>Customer Cohorts</h3><canvas id="cohort-chart" data-effect="renderChart('cohort-chart', $cohortChart)"></canvas></div>
<div class="panel"><h3>Frequently Bought Together</h3><canvas id="pairs-chart" data-effect="renderChart('pairs-chart', $pairsChart)"></canvas></div>
<div class="panel"><h3>Customer Segments (RFM)</h3>
<div data-text="$rfmCount + ' customers'"></div>
<canvas id="rfm-chart" data-effect="renderChart('rfm-chart', $rfmChart)"></canvas></div>
</div>

<div class="panel" style="margin-top:1rem">
<h3>Transactions</h3>
<input placeholder="Search description or stock code" data-bind-search
  data-on-input__debounce.300ms="@get('/sse/transactions-table?search=' + $search + '&sort=' + $sort + '&page=1')">
<select data-bind-sort data-on-change="@get('/sse/transactions-table?search=' + $search + '&sort=' + $sort + '&page=' + $page)">
<option value="date">Newest first</option>
<option value="revenue">Revenue</option>
<option value="quantity">Quantity</option>
</select>
<button data-on-click="$page = Math.max(1, $page - 1); @get('/sse/transactions-table?search=' + $search + '&sort=' + $sort + '&page=' + $page)">Prev</button>
<button data-on-click="$page = $page + 1; @get('/sse/transactions-table?search=' + $search + '&sort=' + $sort + '&page=' + $page)">Next</button>
<div id="transactions-content"><div class="no-data">Loading&hellip;</div></div>
</div>

<div class="panel" style="margin-top:1rem">
<h3>Products</h3>
<div id="products-table-content"><div class="no-data">Loading&hellip;</div></div>
</div>
</main>

<div id="transaction-modal" class="modal"></div>

<script>
const charts = {};
function renderChart(id, spec) {
  if (!spec) return;
  const el = document.getElementById(id);
  if (!el) return;
  if (charts[id]) charts[id].destroy();
  const config = spec.type === 'scatter'
    ? {type: 'bubble', data: {datasets: spec.datasets.map(d => ({
        label: d.label,
        data: d.points || [],
        backgroundColor: (d.colors && d.colors[0]) || undefined,
      }))}}
    : {type: spec.type, data: {labels: spec.labels, datasets: spec.datasets.map(d => ({
        label: d.label,
        data: d.data,
        backgroundColor: d.colors,
      }))}};
  config.options = {responsive: true, animation: false};
  charts[id] = new Chart(el, config);
}
</script>
</body>
</html>`

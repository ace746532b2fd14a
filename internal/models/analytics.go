package models

// Summary holds the KPI cards shown at the top of the dashboard.
type Summary struct {
	TotalRevenue    float64 `json:"total_revenue"`
	TotalOrders     int     `json:"total_orders"`
	UniqueCustomers int     `json:"unique_customers"`
	AvgOrderValue   float64 `json:"avg_order_value"`
}

type CountryRevenue struct {
	Country string  `json:"Country"`
	Revenue float64 `json:"Revenue"`
}

// ProductAggregate is the per-product rollup keyed by stock code.
type ProductAggregate struct {
	StockCode   string  `json:"StockCode"`
	Description string  `json:"Description"`
	Quantity    int64   `json:"Quantity"`
	Revenue     float64 `json:"Revenue"`
}

// MonthlyPoint is one month of the revenue trend, Month formatted "2006-01".
type MonthlyPoint struct {
	Month   string  `json:"year_month"`
	Revenue float64 `json:"Revenue"`
}

// RFMRecord is a customer's recency/frequency/monetary profile with the
// cluster assigned by k-means. The dashboard only buckets and labels it.
type RFMRecord struct {
	CustomerID string  `json:"CustomerID"`
	Recency    int     `json:"Recency"`
	Frequency  int     `json:"Frequency"`
	Monetary   float64 `json:"Monetary"`
	Cluster    int     `json:"cluster"`
}

package dashboard

import (
	"fmt"

	"retail-dashboard/internal/models"
)

// ChartSpec is the declarative chart configuration handed to the plotting
// library on the page. The library consumes it as-is; nothing here renders.
type ChartSpec struct {
	Type     string    `json:"type"`
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

type Dataset struct {
	Label  string    `json:"label"`
	Data   []float64 `json:"data"`
	Colors []string  `json:"colors,omitempty"`
	Points []PointXY `json:"points,omitempty"`
}

type PointXY struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	R float64 `json:"r,omitempty"`
}

func CountryRevenueChart(rows []models.CountryRevenue) ChartSpec {
	labels := make([]string, len(rows))
	data := make([]float64, len(rows))
	for i, row := range rows {
		labels[i] = row.Country
		data[i] = row.Revenue
	}
	return ChartSpec{
		Type:     "bar",
		Labels:   labels,
		Datasets: []Dataset{{Label: "Revenue", Data: data}},
	}
}

func TopProductsChart(rows []models.ProductAggregate) ChartSpec {
	labels := make([]string, len(rows))
	data := make([]float64, len(rows))
	for i, row := range rows {
		labels[i] = row.Description
		data[i] = row.Revenue
	}
	return ChartSpec{
		Type:     "bar",
		Labels:   labels,
		Datasets: []Dataset{{Label: "Revenue", Data: data}},
	}
}

// MonthlyTrendChart overlays the linear forecast on the actual series.
// Forecast months appear as extra labels with no actual data point.
func MonthlyTrendChart(actual, forecast []models.MonthlyPoint) ChartSpec {
	labels := make([]string, 0, len(actual)+len(forecast))
	actualData := make([]float64, 0, len(actual))
	for _, p := range actual {
		labels = append(labels, p.Month)
		actualData = append(actualData, p.Revenue)
	}

	spec := ChartSpec{
		Type:     "line",
		Labels:   labels,
		Datasets: []Dataset{{Label: "Revenue", Data: actualData}},
	}
	if len(forecast) == 0 {
		return spec
	}

	// The forecast line starts from the last actual point so the two
	// series join up visually.
	forecastData := make([]float64, len(actual)-1, len(actual)+len(forecast))
	if len(actual) > 0 {
		forecastData = append(forecastData, actual[len(actual)-1].Revenue)
	}
	for _, p := range forecast {
		spec.Labels = append(spec.Labels, p.Month)
		forecastData = append(forecastData, p.Revenue)
	}
	spec.Datasets = append(spec.Datasets, Dataset{Label: "Forecast", Data: forecastData})
	return spec
}

func DayOfWeekChart(rows []WeekdayRevenue) ChartSpec {
	labels := make([]string, len(rows))
	data := make([]float64, len(rows))
	for i, row := range rows {
		labels[i] = row.Day
		data[i] = row.Revenue
	}
	return ChartSpec{
		Type:     "bar",
		Labels:   labels,
		Datasets: []Dataset{{Label: "Revenue", Data: data}},
	}
}

func CategoryChart(rows []CategoryRevenue) ChartSpec {
	labels := make([]string, len(rows))
	data := make([]float64, len(rows))
	for i, row := range rows {
		labels[i] = row.Category
		data[i] = row.Revenue
	}
	return ChartSpec{
		Type:     "doughnut",
		Labels:   labels,
		Datasets: []Dataset{{Label: "Revenue", Data: data}},
	}
}

func CohortChart(rows []CohortSize) ChartSpec {
	labels := make([]string, len(rows))
	data := make([]float64, len(rows))
	for i, row := range rows {
		labels[i] = row.Month
		data[i] = float64(row.Customers)
	}
	return ChartSpec{
		Type:     "bar",
		Labels:   labels,
		Datasets: []Dataset{{Label: "Customers", Data: data}},
	}
}

func AssociationChart(rows []PairCount) ChartSpec {
	labels := make([]string, len(rows))
	data := make([]float64, len(rows))
	for i, row := range rows {
		labels[i] = row.Pair
		data[i] = float64(row.Count)
	}
	return ChartSpec{
		Type:     "bar",
		Labels:   labels,
		Datasets: []Dataset{{Label: "Invoices", Data: data}},
	}
}

// RFMScatterChart plots recency against monetary value, one dataset per
// cluster, colored by the cluster-id hash.
func RFMScatterChart(records []models.RFMRecord) ChartSpec {
	byCluster := make(map[int][]PointXY)
	for _, r := range records {
		byCluster[r.Cluster] = append(byCluster[r.Cluster], PointXY{
			X: float64(r.Recency),
			Y: r.Monetary,
			R: float64(r.Frequency),
		})
	}

	spec := ChartSpec{Type: "scatter"}
	for cluster := 0; cluster < MaxClusterDatasets; cluster++ {
		points, ok := byCluster[cluster]
		if !ok {
			continue
		}
		spec.Datasets = append(spec.Datasets, Dataset{
			Label:  fmt.Sprintf("Cluster %d", cluster),
			Points: points,
			Colors: []string{ClusterColor(cluster)},
		})
	}
	return spec
}

// MaxClusterDatasets bounds the scatter datasets; the backend clamps k to
// eight clusters.
const MaxClusterDatasets = 8

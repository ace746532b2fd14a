package dashboard

import (
	"slices"
	"strings"
	"time"

	"retail-dashboard/internal/models"
)

const (
	categoryLimit = 10
	cohortLimit   = 12
	pairLimit     = 10
	forecastSpan  = 3
)

var weekdayNames = [7]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

type WeekdayRevenue struct {
	Day     string  `json:"day"`
	Revenue float64 `json:"revenue"`
}

// DayOfWeekRevenue buckets revenue into the seven weekdays of the invoice
// dates. All seven slots are always present, Sunday first.
func DayOfWeekRevenue(txs []models.Transaction) []WeekdayRevenue {
	var totals [7]float64
	for _, tx := range txs {
		totals[int(tx.InvoiceDate.Weekday())] += tx.Revenue()
	}

	out := make([]WeekdayRevenue, 7)
	for i := range out {
		out[i] = WeekdayRevenue{Day: weekdayNames[i], Revenue: totals[i]}
	}
	return out
}

type CategoryRevenue struct {
	Category string  `json:"category"`
	Revenue  float64 `json:"revenue"`
}

// CategoryDistribution buckets revenue by the first whitespace-delimited
// token of the description and keeps the top ten by value.
func CategoryDistribution(txs []models.Transaction) []CategoryRevenue {
	groups := make(map[string]float64)
	for _, tx := range txs {
		fields := strings.Fields(tx.Description)
		if len(fields) == 0 {
			continue
		}
		groups[fields[0]] += tx.Revenue()
	}

	out := make([]CategoryRevenue, 0, len(groups))
	for category, revenue := range groups {
		out = append(out, CategoryRevenue{Category: category, Revenue: revenue})
	}
	slices.SortFunc(out, func(a, b CategoryRevenue) int {
		if a.Revenue > b.Revenue {
			return -1
		}
		if a.Revenue < b.Revenue {
			return 1
		}
		return strings.Compare(a.Category, b.Category)
	})
	if len(out) > categoryLimit {
		out = out[:categoryLimit]
	}
	return out
}

type CohortSize struct {
	Month     string `json:"month"`
	Customers int    `json:"customers"`
}

// CohortSizes counts distinct customers per calendar month and reports the
// first twelve cohorts ordered by ascending size.
func CohortSizes(txs []models.Transaction) []CohortSize {
	groups := make(map[string]map[int64]struct{})
	for _, tx := range txs {
		if tx.CustomerID == nil || tx.InvoiceDate.IsZero() {
			continue
		}
		month := tx.InvoiceDate.Format("2006-01")
		if groups[month] == nil {
			groups[month] = make(map[int64]struct{})
		}
		groups[month][*tx.CustomerID] = struct{}{}
	}

	out := make([]CohortSize, 0, len(groups))
	for month, customers := range groups {
		out = append(out, CohortSize{Month: month, Customers: len(customers)})
	}
	slices.SortFunc(out, func(a, b CohortSize) int {
		if a.Customers < b.Customers {
			return -1
		}
		if a.Customers > b.Customers {
			return 1
		}
		return strings.Compare(a.Month, b.Month)
	})
	if len(out) > cohortLimit {
		out = out[:cohortLimit]
	}
	return out
}

type PairCount struct {
	Pair  string `json:"pair"`
	Count int    `json:"count"`
}

// AssociationPairs groups stock codes by invoice and, for each invoice with
// at least two distinct codes, counts every unordered pair once under the
// canonical sorted "a|b" key. Returns the top ten by count.
func AssociationPairs(txs []models.Transaction) []PairCount {
	byInvoice := make(map[string]map[string]struct{})
	for _, tx := range txs {
		if tx.Invoice == "" || tx.StockCode == "" {
			continue
		}
		if byInvoice[tx.Invoice] == nil {
			byInvoice[tx.Invoice] = make(map[string]struct{})
		}
		byInvoice[tx.Invoice][tx.StockCode] = struct{}{}
	}

	counts := make(map[string]int)
	for _, codes := range byInvoice {
		if len(codes) < 2 {
			continue
		}
		sorted := make([]string, 0, len(codes))
		for code := range codes {
			sorted = append(sorted, code)
		}
		slices.Sort(sorted)

		for i := 0; i < len(sorted); i++ {
			for j := i + 1; j < len(sorted); j++ {
				counts[sorted[i]+"|"+sorted[j]]++
			}
		}
	}

	out := make([]PairCount, 0, len(counts))
	for pair, count := range counts {
		out = append(out, PairCount{Pair: pair, Count: count})
	}
	slices.SortFunc(out, func(a, b PairCount) int {
		if a.Count > b.Count {
			return -1
		}
		if a.Count < b.Count {
			return 1
		}
		return strings.Compare(a.Pair, b.Pair)
	})
	if len(out) > pairLimit {
		out = out[:pairLimit]
	}
	return out
}

// LinearForecast projects three future months from a monthly revenue
// series: the average period-over-period delta of the last three points is
// added cumulatively, floored at zero. Fewer than three input points yield
// no forecast.
func LinearForecast(points []models.MonthlyPoint) []models.MonthlyPoint {
	if len(points) < forecastSpan {
		return nil
	}

	tail := points[len(points)-forecastSpan:]
	var delta float64
	for i := 1; i < len(tail); i++ {
		delta += tail[i].Revenue - tail[i-1].Revenue
	}
	delta /= float64(len(tail) - 1)

	last, err := time.Parse("2006-01", points[len(points)-1].Month)
	if err != nil {
		return nil
	}

	level := points[len(points)-1].Revenue
	out := make([]models.MonthlyPoint, 0, forecastSpan)
	for i := 1; i <= forecastSpan; i++ {
		level = max(level+delta, 0)
		out = append(out, models.MonthlyPoint{
			Month:   last.AddDate(0, i, 0).Format("2006-01"),
			Revenue: level,
		})
	}
	return out
}

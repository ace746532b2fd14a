package dashboard

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"retail-dashboard/internal/models"
)

const (
	chartProductLimit = 10
	tableProductLimit = 100
	defaultClusters   = 4
)

// Snapshot is the dashboard's client-held dataset: one full refresh worth
// of backend responses plus the aggregates derived from them.
type Snapshot struct {
	Filter         Filter
	Countries      []string
	Summary        models.Summary
	CountryRevenue []models.CountryRevenue
	TopProducts    []models.ProductAggregate
	Products       []models.ProductAggregate
	MonthlyTrend   []models.MonthlyPoint
	Transactions   []models.Transaction
	RFM            []models.RFMRecord

	DayOfWeek  []WeekdayRevenue
	Categories []CategoryRevenue
	Cohorts    []CohortSize
	Pairs      []PairCount
	Forecast   []models.MonthlyPoint

	FetchedAt time.Time
}

// RefreshAll issues the nine fetches of a full dashboard refresh
// concurrently and waits for all of them. If any fetch fails the whole
// batch is reported as that single error; the fetches that succeeded are
// not retried or rolled back. The group deliberately carries no derived
// cancellation context: a new refresh does not abort one already in
// flight, so a late-arriving snapshot can overwrite a newer one (a known
// gap carried over from the original dashboard).
func (c *Client) RefreshAll(ctx context.Context, f Filter) (*Snapshot, error) {
	snap := &Snapshot{Filter: f}

	var aggTxs []models.Transaction

	var g errgroup.Group
	g.Go(func() error {
		var err error
		snap.Countries, err = c.Countries(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		snap.Summary, err = c.Summary(ctx, f)
		return err
	})
	g.Go(func() error {
		var err error
		snap.CountryRevenue, err = c.RevenueByCountry(ctx, f)
		return err
	})
	g.Go(func() error {
		var err error
		snap.TopProducts, err = c.TopProducts(ctx, f, chartProductLimit)
		return err
	})
	g.Go(func() error {
		var err error
		snap.Products, err = c.TopProducts(ctx, f, tableProductLimit)
		return err
	})
	g.Go(func() error {
		var err error
		snap.MonthlyTrend, err = c.MonthlyTrend(ctx, f)
		return err
	})
	g.Go(func() error {
		var err error
		snap.Transactions, err = c.Transactions(ctx, f)
		return err
	})
	g.Go(func() error {
		// The aggregator recomputes its buckets from its own flat
		// transaction fetch, independent of the table's copy.
		var err error
		aggTxs, err = c.Transactions(ctx, f)
		return err
	})
	g.Go(func() error {
		var err error
		snap.RFM, err = c.RFM(ctx, defaultClusters)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	snap.DayOfWeek = DayOfWeekRevenue(aggTxs)
	snap.Categories = CategoryDistribution(aggTxs)
	snap.Cohorts = CohortSizes(aggTxs)
	snap.Pairs = AssociationPairs(aggTxs)
	snap.Forecast = LinearForecast(snap.MonthlyTrend)
	snap.FetchedAt = time.Now()

	return snap, nil
}

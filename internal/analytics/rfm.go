package analytics

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
	"strconv"
	"time"

	"retail-dashboard/internal/models"
	"retail-dashboard/internal/store"
)

const (
	MinClusters = 2
	MaxClusters = 8

	kmeansRestarts = 10
	kmeansMaxIter  = 300
	kmeansSeed     = 42
)

// RFM profiles every customer (recency in days, frequency as distinct
// invoices, monetary as summed revenue) and clusters the profiles with
// k-means. Features are log1p-transformed on the monetary axis and z-scored
// before clustering. k is clamped to [MinClusters, MaxClusters]; with fewer
// eligible customers than k, everyone lands in cluster 0.
func (s *Service) RFM(ctx context.Context, k int) ([]models.RFMRecord, error) {
	k = min(max(k, MinClusters), MaxClusters)

	key := fmt.Sprintf("rfm:%d", k)
	return cached(ctx, s, key, func(ctx context.Context) ([]models.RFMRecord, error) {
		txs, err := s.store.List(ctx, store.Filter{Limit: store.MaxLoadLimit})
		if err != nil {
			return nil, err
		}
		return computeRFM(txs, s.now(), k), nil
	})
}

type customerStats struct {
	id       int64
	last     int64 // unix seconds of latest invoice
	invoices map[string]struct{}
	monetary float64
}

func computeRFM(txs []models.Transaction, now time.Time, k int) []models.RFMRecord {
	byCustomer := make(map[int64]*customerStats)
	for _, tx := range txs {
		if tx.CustomerID == nil || tx.InvoiceDate.IsZero() {
			continue
		}
		cs := byCustomer[*tx.CustomerID]
		if cs == nil {
			cs = &customerStats{id: *tx.CustomerID, invoices: make(map[string]struct{})}
			byCustomer[*tx.CustomerID] = cs
		}
		if ts := tx.InvoiceDate.Unix(); ts > cs.last {
			cs.last = ts
		}
		cs.invoices[tx.Invoice] = struct{}{}
		cs.monetary += tx.Revenue()
	}

	records := make([]models.RFMRecord, 0, len(byCustomer))
	for _, cs := range byCustomer {
		recency := int((now.Unix() - cs.last) / 86400)
		frequency := len(cs.invoices)
		if recency < 0 || frequency <= 0 || cs.monetary <= 0 {
			continue
		}
		records = append(records, models.RFMRecord{
			CustomerID: strconv.FormatInt(cs.id, 10),
			Recency:    recency,
			Frequency:  frequency,
			Monetary:   cs.monetary,
		})
	}

	// Deterministic ordering before clustering so the seeded k-means sees
	// a stable input.
	slices.SortFunc(records, func(a, b models.RFMRecord) int {
		ai, _ := strconv.ParseInt(a.CustomerID, 10, 64)
		bi, _ := strconv.ParseInt(b.CustomerID, 10, 64)
		if ai < bi {
			return -1
		}
		if ai > bi {
			return 1
		}
		return 0
	})

	if len(records) == 0 {
		return records
	}
	if len(records) < k {
		return records // all cluster 0
	}

	features := make([][]float64, len(records))
	for i, r := range records {
		features[i] = []float64{
			float64(r.Recency),
			float64(r.Frequency),
			math.Log1p(r.Monetary),
		}
	}
	standardize(features)

	assignments := kmeans(features, k, rand.New(rand.NewPCG(kmeansSeed, 0)))
	for i := range records {
		records[i].Cluster = assignments[i]
	}
	return records
}

// standardize z-scores each column in place. Constant columns collapse
// to zero rather than dividing by a zero deviation.
func standardize(points [][]float64) {
	if len(points) == 0 {
		return
	}
	dims := len(points[0])
	n := float64(len(points))

	for d := 0; d < dims; d++ {
		var sum float64
		for _, p := range points {
			sum += p[d]
		}
		mean := sum / n

		var sq float64
		for _, p := range points {
			diff := p[d] - mean
			sq += diff * diff
		}
		std := math.Sqrt(sq / n)
		if std == 0 {
			std = 1
		}

		for _, p := range points {
			p[d] = (p[d] - mean) / std
		}
	}
}

// kmeans clusters points with k-means++ seeding, keeping the best of
// kmeansRestarts runs by inertia.
func kmeans(points [][]float64, k int, rng *rand.Rand) []int {
	best := make([]int, len(points))
	bestInertia := math.Inf(1)

	for restart := 0; restart < kmeansRestarts; restart++ {
		centroids := seedCentroids(points, k, rng)
		assign := make([]int, len(points))

		for iter := 0; iter < kmeansMaxIter; iter++ {
			changed := false
			for i, p := range points {
				c := nearestCentroid(p, centroids)
				if c != assign[i] {
					assign[i] = c
					changed = true
				}
			}
			if !changed && iter > 0 {
				break
			}
			recomputeCentroids(points, assign, centroids, rng)
		}

		var inertia float64
		for i, p := range points {
			inertia += squaredDistance(p, centroids[assign[i]])
		}
		if inertia < bestInertia {
			bestInertia = inertia
			copy(best, assign)
		}
	}
	return best
}

// seedCentroids implements k-means++: the first centroid is uniform, each
// further one is drawn proportionally to squared distance from the nearest
// chosen centroid.
func seedCentroids(points [][]float64, k int, rng *rand.Rand) [][]float64 {
	dims := len(points[0])
	centroids := make([][]float64, 0, k)
	centroids = append(centroids, slices.Clone(points[rng.IntN(len(points))]))

	dists := make([]float64, len(points))
	for len(centroids) < k {
		var total float64
		for i, p := range points {
			d := math.Inf(1)
			for _, c := range centroids {
				if sq := squaredDistance(p, c); sq < d {
					d = sq
				}
			}
			dists[i] = d
			total += d
		}

		idx := len(points) - 1
		if total > 0 {
			target := rng.Float64() * total
			var acc float64
			for i, d := range dists {
				acc += d
				if acc >= target {
					idx = i
					break
				}
			}
		} else {
			idx = rng.IntN(len(points))
		}
		centroid := make([]float64, dims)
		copy(centroid, points[idx])
		centroids = append(centroids, centroid)
	}
	return centroids
}

func recomputeCentroids(points [][]float64, assign []int, centroids [][]float64, rng *rand.Rand) {
	dims := len(points[0])
	counts := make([]int, len(centroids))
	sums := make([][]float64, len(centroids))
	for c := range centroids {
		sums[c] = make([]float64, dims)
	}

	for i, p := range points {
		c := assign[i]
		counts[c]++
		for d, v := range p {
			sums[c][d] += v
		}
	}

	for c := range centroids {
		if counts[c] == 0 {
			// Re-seed an emptied cluster to a random point.
			copy(centroids[c], points[rng.IntN(len(points))])
			continue
		}
		for d := 0; d < dims; d++ {
			centroids[c][d] = sums[c][d] / float64(counts[c])
		}
	}
}

func nearestCentroid(p []float64, centroids [][]float64) int {
	best, bestDist := 0, math.Inf(1)
	for c, centroid := range centroids {
		if d := squaredDistance(p, centroid); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

func squaredDistance(a, b []float64) float64 {
	var sum float64
	for i := range a {
		diff := a[i] - b[i]
		sum += diff * diff
	}
	return sum
}

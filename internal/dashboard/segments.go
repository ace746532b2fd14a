package dashboard

import (
	"fmt"
	"hash/fnv"

	"retail-dashboard/internal/models"
)

// Segment labels derived from RFM thresholds. These are presentation
// buckets only; the clusters themselves come from the backend.
const (
	SegmentChampions   = "Champions"
	SegmentLoyal       = "Loyal"
	SegmentBigSpenders = "Big Spenders"
	SegmentAtRisk      = "At Risk"
	SegmentHibernating = "Hibernating"
	SegmentOthers      = "Others"
)

// SegmentNames in display order, used to populate the segment filter.
var SegmentNames = []string{
	SegmentChampions,
	SegmentLoyal,
	SegmentBigSpenders,
	SegmentAtRisk,
	SegmentHibernating,
	SegmentOthers,
}

// SegmentLabel buckets a customer by thresholds on recency, frequency and
// monetary value. First match wins.
func SegmentLabel(r models.RFMRecord) string {
	switch {
	case r.Recency <= 30 && r.Frequency >= 10 && r.Monetary >= 1000:
		return SegmentChampions
	case r.Recency <= 60 && r.Frequency >= 5:
		return SegmentLoyal
	case r.Monetary >= 5000:
		return SegmentBigSpenders
	case r.Recency >= 180 && r.Frequency <= 2:
		return SegmentHibernating
	case r.Recency >= 90:
		return SegmentAtRisk
	default:
		return SegmentOthers
	}
}

// FilterBySegment keeps the records whose derived label matches segment.
// An empty segment keeps everything.
func FilterBySegment(records []models.RFMRecord, segment string) []models.RFMRecord {
	if segment == "" {
		return records
	}
	out := make([]models.RFMRecord, 0, len(records))
	for _, r := range records {
		if SegmentLabel(r) == segment {
			out = append(out, r)
		}
	}
	return out
}

// ClusterColor derives a stable HSL color from a hash of the cluster id.
func ClusterColor(cluster int) string {
	h := fnv.New32a()
	fmt.Fprintf(h, "cluster-%d", cluster)
	hue := h.Sum32() % 360
	return fmt.Sprintf("hsl(%d, 70%%, 50%%)", hue)
}

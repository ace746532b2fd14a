package analytics

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"retail-dashboard/internal/models"
	"retail-dashboard/internal/store"
)

var rfmNow = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

// rfmTx builds one line item for a customer, placed daysAgo before rfmNow.
func rfmTx(invoice string, customer int64, daysAgo int, price float64) models.Transaction {
	return models.Transaction{
		ID:          uuid.New(),
		Invoice:     invoice,
		InvoiceDate: rfmNow.AddDate(0, 0, -daysAgo),
		StockCode:   "S1",
		Quantity:    1,
		Price:       price,
		CustomerID:  &customer,
		Country:     "France",
	}
}

func TestComputeRFMMetrics(t *testing.T) {
	txs := []models.Transaction{
		rfmTx("I1", 100, 10, 50),
		rfmTx("I2", 100, 5, 30),
		rfmTx("I2", 100, 5, 20),
	}

	records := computeRFM(txs, rfmNow, 2)
	if len(records) != 1 {
		t.Fatalf("records = %d, want 1", len(records))
	}

	r := records[0]
	if r.CustomerID != "100" {
		t.Errorf("CustomerID = %q", r.CustomerID)
	}
	if r.Recency != 5 {
		t.Errorf("Recency = %d, want 5 (days since latest invoice)", r.Recency)
	}
	if r.Frequency != 2 {
		t.Errorf("Frequency = %d, want 2 distinct invoices", r.Frequency)
	}
	if r.Monetary != 100 {
		t.Errorf("Monetary = %v, want 100", r.Monetary)
	}
}

func TestComputeRFMSkipsIneligible(t *testing.T) {
	neg := models.Transaction{
		ID:          uuid.New(),
		Invoice:     "I1",
		InvoiceDate: rfmNow.AddDate(0, 0, 2), // future invoice, negative recency
		Quantity:    1,
		Price:       10,
	}
	cid := int64(300)
	neg.CustomerID = &cid

	refund := rfmTx("I2", 400, 5, -20) // negative monetary

	anonymous := rfmTx("I3", 0, 5, 10)
	anonymous.CustomerID = nil

	records := computeRFM([]models.Transaction{neg, refund, anonymous}, rfmNow, 2)
	if len(records) != 0 {
		t.Errorf("expected no eligible customers, got %+v", records)
	}
}

func TestComputeRFMFewerCustomersThanK(t *testing.T) {
	txs := []models.Transaction{
		rfmTx("I1", 100, 5, 50),
		rfmTx("I2", 200, 10, 80),
	}

	records := computeRFM(txs, rfmNow, 4)
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}
	for _, r := range records {
		if r.Cluster != 0 {
			t.Errorf("customer %s in cluster %d, want 0 when count < k", r.CustomerID, r.Cluster)
		}
	}
}

func TestComputeRFMDeterministic(t *testing.T) {
	var txs []models.Transaction
	for i := 0; i < 40; i++ {
		txs = append(txs, rfmTx(fmt.Sprintf("I%d", i), int64(i+1), (i*7)%200, float64(10+i*25)))
	}

	first := computeRFM(txs, rfmNow, 3)
	second := computeRFM(txs, rfmNow, 3)

	if len(first) != 40 || len(second) != 40 {
		t.Fatalf("records = %d/%d, want 40", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("run differs at %d: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestComputeRFMSeparatesExtremes(t *testing.T) {
	var txs []models.Transaction
	// One tight group of recent, high-value customers.
	for i := 0; i < 10; i++ {
		customer := int64(100 + i)
		txs = append(txs, rfmTx(fmt.Sprintf("A%d", i), customer, 2+i%3, 5000))
		txs = append(txs, rfmTx(fmt.Sprintf("B%d", i), customer, 2+i%3, 5000))
	}
	// One tight group of stale, low-value customers.
	for i := 0; i < 10; i++ {
		txs = append(txs, rfmTx(fmt.Sprintf("C%d", i), int64(200+i), 300+i%3, 5))
	}

	records := computeRFM(txs, rfmNow, 2)
	if len(records) != 20 {
		t.Fatalf("records = %d, want 20", len(records))
	}

	clusters := map[string]int{}
	for _, r := range records {
		clusters[r.CustomerID] = r.Cluster
	}
	highCluster := clusters["100"]
	lowCluster := clusters["200"]
	if highCluster == lowCluster {
		t.Fatal("extreme groups landed in the same cluster")
	}
	for i := 0; i < 10; i++ {
		if clusters[fmt.Sprint(100+i)] != highCluster {
			t.Errorf("customer %d not in the high-value cluster", 100+i)
		}
		if clusters[fmt.Sprint(200+i)] != lowCluster {
			t.Errorf("customer %d not in the low-value cluster", 200+i)
		}
	}
}

func TestRFMClampsK(t *testing.T) {
	st := store.NewMemory()
	var txs []models.Transaction
	for i := 0; i < 20; i++ {
		txs = append(txs, rfmTx(fmt.Sprintf("I%d", i), int64(i+1), (i*11)%150, float64(20+i*40)))
	}
	st.Seed(txs)

	svc := NewService(st, nil, nil)
	svc.now = func() time.Time { return rfmNow }

	records, err := svc.RFM(context.Background(), 100)
	if err != nil {
		t.Fatalf("RFM() error: %v", err)
	}

	maxCluster := 0
	for _, r := range records {
		if r.Cluster > maxCluster {
			maxCluster = r.Cluster
		}
	}
	if maxCluster >= MaxClusters {
		t.Errorf("cluster id %d exceeds the %d-cluster clamp", maxCluster, MaxClusters)
	}
}

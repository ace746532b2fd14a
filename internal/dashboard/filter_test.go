package dashboard

import (
	"net/url"
	"testing"
	"time"
)

func TestFilterQuery(t *testing.T) {
	f := Filter{
		StartDate: "2024-01-01",
		EndDate:   "2024-03-31",
		Countries: []string{"United Kingdom", "France"},
		Segment:   "Champions",
	}

	v, err := url.ParseQuery(f.Query())
	if err != nil {
		t.Fatalf("query did not parse: %v", err)
	}
	if got := v.Get("start_date"); got != "2024-01-01" {
		t.Errorf("start_date = %q", got)
	}
	if got := v.Get("end_date"); got != "2024-03-31" {
		t.Errorf("end_date = %q", got)
	}
	if got := v.Get("countries"); got != "United Kingdom,France" {
		t.Errorf("countries = %q", got)
	}
	if got := v.Get("segment"); got != "Champions" {
		t.Errorf("segment = %q", got)
	}
}

func TestFilterQueryOmitsEmpty(t *testing.T) {
	if got := (Filter{}).Query(); got != "" {
		t.Errorf("empty filter should yield empty query, got %q", got)
	}

	v, _ := url.ParseQuery(Filter{StartDate: "2024-01-01"}.Query())
	for _, key := range []string{"end_date", "countries", "segment"} {
		if v.Has(key) {
			t.Errorf("empty field %q should not appear in query", key)
		}
	}
}

func TestApplyPreset(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		preset    string
		wantStart string
		wantEnd   string
	}{
		{PresetToday, "2024-06-15", "2024-06-15"},
		{PresetYesterday, "2024-06-14", "2024-06-14"},
		{PresetWeek, "2024-06-08", "2024-06-15"},
		{PresetMonth, "2024-05-15", "2024-06-15"},
		{PresetQuarter, "2024-03-15", "2024-06-15"},
		{PresetYear, "2023-06-15", "2024-06-15"},
	}

	for _, tt := range tests {
		f := Filter{}
		f.ApplyPreset(tt.preset, now)
		if f.StartDate != tt.wantStart || f.EndDate != tt.wantEnd {
			t.Errorf("%s: got %s..%s, want %s..%s", tt.preset, f.StartDate, f.EndDate, tt.wantStart, tt.wantEnd)
		}
	}
}

func TestApplyPresetAllClearsBounds(t *testing.T) {
	f := Filter{StartDate: "2024-01-01", EndDate: "2024-02-01"}
	f.ApplyPreset(PresetAll, time.Now())
	if f.StartDate != "" || f.EndDate != "" {
		t.Errorf("all preset should clear bounds, got %s..%s", f.StartDate, f.EndDate)
	}
}

func TestApplyPresetUnknownLeavesFilter(t *testing.T) {
	f := Filter{StartDate: "2024-01-01", EndDate: "2024-02-01"}
	f.ApplyPreset("fortnight", time.Now())
	if f.StartDate != "2024-01-01" || f.EndDate != "2024-02-01" {
		t.Errorf("unknown preset changed bounds to %s..%s", f.StartDate, f.EndDate)
	}
}

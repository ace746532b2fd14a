package dashboard

import (
	"net/url"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// Filter is the dashboard's current filter state. It is rebuilt on every
// apply; empty fields are omitted from the derived query string.
type Filter struct {
	StartDate string
	EndDate   string
	Countries []string
	Segment   string
}

// Query derives the URL query string for API calls. Keys with empty values
// never appear.
func (f Filter) Query() string {
	v := url.Values{}
	if f.StartDate != "" {
		v.Set("start_date", f.StartDate)
	}
	if f.EndDate != "" {
		v.Set("end_date", f.EndDate)
	}
	if countries := strings.Join(f.Countries, ","); countries != "" {
		v.Set("countries", countries)
	}
	if f.Segment != "" {
		v.Set("segment", f.Segment)
	}
	return v.Encode()
}

// Preset names for date ranges.
const (
	PresetToday     = "today"
	PresetYesterday = "yesterday"
	PresetWeek      = "week"
	PresetMonth     = "month"
	PresetQuarter   = "quarter"
	PresetYear      = "year"
	PresetAll       = "all"
)

// ApplyPreset mutates the date bounds by calendar arithmetic from now.
// "all" clears both bounds. Unknown presets leave the filter untouched.
func (f *Filter) ApplyPreset(name string, now time.Time) {
	today := now.Format(dateLayout)

	switch name {
	case PresetToday:
		f.StartDate, f.EndDate = today, today
	case PresetYesterday:
		yesterday := now.AddDate(0, 0, -1).Format(dateLayout)
		f.StartDate, f.EndDate = yesterday, yesterday
	case PresetWeek:
		f.StartDate, f.EndDate = now.AddDate(0, 0, -7).Format(dateLayout), today
	case PresetMonth:
		f.StartDate, f.EndDate = now.AddDate(0, -1, 0).Format(dateLayout), today
	case PresetQuarter:
		f.StartDate, f.EndDate = now.AddDate(0, -3, 0).Format(dateLayout), today
	case PresetYear:
		f.StartDate, f.EndDate = now.AddDate(-1, 0, 0).Format(dateLayout), today
	case PresetAll:
		f.StartDate, f.EndDate = "", ""
	}
}

package dashboard

import (
	"fmt"
	"time"

	"github.com/devolta/mautic-metrics/internal/mauticmail"
)

// Status is the orchestrator state exposed to the UI.
type Status string

const (
	StatusIdle     Status = "idle"
	StatusFetching Status = "fetching"
	StatusSuccess  Status = "success"
	StatusError    Status = "error"
	StatusNoData   Status = "no_data"
)

// Sentinel filter selections.
const (
	AccountAll = "all"
	EmailNone  = "none"
)

const dateLayout = "2006-01-02"

// Filters is the canonical dashboard filter state.
type Filters struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	AccountID string `json:"accountId"`
	EmailID   string `json:"emailId"`
}

// DefaultFilters returns the rolling window ending today with the
// default account/email selections.
func DefaultFilters(now time.Time, rangeDays int) Filters {
	return Filters{
		StartDate: now.AddDate(0, 0, -rangeDays).Format(dateLayout),
		EndDate:   now.Format(dateLayout),
		AccountID: AccountAll,
		EmailID:   EmailNone,
	}
}

// Validate checks the date range is well-formed and ordered.
func (f Filters) Validate() error {
	from, err := time.Parse(dateLayout, f.StartDate)
	if err != nil {
		return fmt.Errorf("invalid start date %q: %w", f.StartDate, err)
	}
	to, err := time.Parse(dateLayout, f.EndDate)
	if err != nil {
		return fmt.Errorf("invalid end date %q: %w", f.EndDate, err)
	}
	if from.After(to) {
		return fmt.Errorf("start date %s is after end date %s", f.StartDate, f.EndDate)
	}
	return nil
}

// dateRange returns the parsed window bounds. Callers validate first.
func (f Filters) dateRange() (time.Time, time.Time) {
	from, _ := time.Parse(dateLayout, f.StartDate)
	to, _ := time.Parse(dateLayout, f.EndDate)
	return from, to
}

// api maps the dashboard filter state onto upstream query filters. The
// "all"/"none" sentinels mean no constraint and are not sent upstream.
func (f Filters) api() mauticmail.Filters {
	out := mauticmail.Filters{
		StartDate: f.StartDate,
		EndDate:   f.EndDate,
	}
	if f.AccountID != "" && f.AccountID != AccountAll {
		out.AccountID = f.AccountID
	}
	if f.EmailID != "" && f.EmailID != EmailNone {
		out.EmailID = f.EmailID
	}
	return out
}

// Snapshot is a point-in-time copy of the orchestrator state, safe to
// serialize and hand to the UI.
type Snapshot struct {
	Status          Status                     `json:"status"`
	Filters         Filters                    `json:"filters"`
	Emails          []mauticmail.EmailMetric   `json:"emails"`
	DailySends      []mauticmail.DailyPoint    `json:"dailySends"`
	DailyOpens      []mauticmail.DailyPoint    `json:"dailyOpens"`
	DailyClicks     []mauticmail.DailyPoint    `json:"dailyClicks"`
	Totals          mauticmail.AggregateTotals `json:"totals"`
	Rates           mauticmail.ConversionRates `json:"rates"`
	LastSend        *mauticmail.LastSend       `json:"lastSend,omitempty"`
	SendRate        *mauticmail.SendRate       `json:"sendRate,omitempty"`
	Loading         bool                       `json:"loading"`
	Error           string                     `json:"error,omitempty"`
	NoDataAvailable bool                       `json:"noDataAvailable"`
	LastUpdated     time.Time                  `json:"lastUpdated"`
}

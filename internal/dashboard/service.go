// Package dashboard owns the dashboard filter state and orchestrates
// the parallel metrics fetches that populate it. All state is held in
// memory and rebuilt on every fetch cycle; the package exposes an
// immutable snapshot to the HTTP layer.
package dashboard

import (
	"context"
	"errors"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/devolta/mautic-metrics/internal/mauticmail"
	"github.com/devolta/mautic-metrics/internal/pkg/logger"
)

// MetricsAPI is the slice of the upstream client the orchestrator
// needs. *mauticmail.Client satisfies it.
type MetricsAPI interface {
	GetMetrics(ctx context.Context, filters mauticmail.Filters) (*mauticmail.AggregateTotals, error)
	GetMetricsByEmail(ctx context.Context, filters mauticmail.Filters) ([]mauticmail.EmailMetric, error)
	GetDailySends(ctx context.Context, filters mauticmail.Filters) ([]mauticmail.DailyPoint, error)
	GetDailyOpens(ctx context.Context, filters mauticmail.Filters) ([]mauticmail.DailyPoint, error)
	GetDailyClicks(ctx context.Context, filters mauticmail.Filters) ([]mauticmail.DailyPoint, error)
	GetConversionRates(ctx context.Context, filters mauticmail.Filters) (*mauticmail.ConversionRates, error)
	GetLastSend(ctx context.Context, filters mauticmail.Filters) (*mauticmail.LastSend, error)
	GetSendRate(ctx context.Context, filters mauticmail.Filters) (*mauticmail.SendRate, error)
}

// Options tunes the orchestrator timings. Zero values pick defaults.
type Options struct {
	DefaultRangeDays int           // rolling filter window, default 30 days
	Debounce         time.Duration // filter-change coalescing, default 300ms
	ResetDelay       time.Duration // settle delay after a reset, default 100ms
	EmailTimeout     time.Duration // by-email call budget, default 20s
	DailyTimeout     time.Duration // per optional call budget, default 15s
	CycleTimeout     time.Duration // whole cycle budget, default 30s
	Now              func() time.Time
}

func (o Options) withDefaults() Options {
	if o.DefaultRangeDays == 0 {
		o.DefaultRangeDays = 30
	}
	if o.Debounce == 0 {
		o.Debounce = 300 * time.Millisecond
	}
	if o.ResetDelay == 0 {
		o.ResetDelay = 100 * time.Millisecond
	}
	if o.EmailTimeout == 0 {
		o.EmailTimeout = 20 * time.Second
	}
	if o.DailyTimeout == 0 {
		o.DailyTimeout = 15 * time.Second
	}
	if o.CycleTimeout == 0 {
		o.CycleTimeout = 30 * time.Second
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Service is the filter/request orchestrator.
type Service struct {
	api  MetricsAPI
	opts Options

	mu         sync.RWMutex
	filters    Filters
	snap       Snapshot
	generation uint64

	debouncer *Debouncer
}

// NewService creates an orchestrator in the Idle state with default
// filters. No fetch is started until Refresh or a setter fires.
func NewService(api MetricsAPI, opts Options) *Service {
	opts = opts.withDefaults()
	filters := DefaultFilters(opts.Now(), opts.DefaultRangeDays)
	return &Service{
		api:       api,
		opts:      opts,
		filters:   filters,
		snap:      Snapshot{Status: StatusIdle, Filters: filters},
		debouncer: NewDebouncer(opts.Debounce),
	}
}

// State returns a copy of the current orchestrator snapshot.
func (s *Service) State() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := s.snap
	snap.Filters = s.filters
	return snap
}

// Filters returns the canonical filter state.
func (s *Service) Filters() Filters {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filters
}

// SetDateRange updates the filter window and schedules a debounced
// refetch. The range must be well-formed with start <= end.
func (s *Service) SetDateRange(startDate, endDate string) error {
	s.mu.Lock()
	candidate := s.filters
	candidate.StartDate = startDate
	candidate.EndDate = endDate
	if err := candidate.Validate(); err != nil {
		s.mu.Unlock()
		return err
	}
	s.filters = candidate
	s.mu.Unlock()

	s.scheduleRefetch()
	return nil
}

// SetSelectedAccount updates the account filter and schedules a
// debounced refetch. Empty means "all".
func (s *Service) SetSelectedAccount(accountID string) {
	s.mu.Lock()
	if accountID == "" {
		accountID = AccountAll
	}
	s.filters.AccountID = accountID
	s.mu.Unlock()

	s.scheduleRefetch()
}

// SetSelectedEmail updates the email filter and schedules a debounced
// refetch. Empty means "none".
func (s *Service) SetSelectedEmail(emailID string) {
	s.mu.Lock()
	if emailID == "" {
		emailID = EmailNone
	}
	s.filters.EmailID = emailID
	s.mu.Unlock()

	s.scheduleRefetch()
}

// Refresh starts a fetch cycle immediately with the current filters.
func (s *Service) Refresh() {
	go s.runFetch()
}

// ResetFiltersAndRetry restores the default filters, clears all cached
// dimension data, and refetches after a short settle delay.
func (s *Service) ResetFiltersAndRetry() {
	s.debouncer.Stop()

	s.mu.Lock()
	s.filters = DefaultFilters(s.opts.Now(), s.opts.DefaultRangeDays)
	s.generation++
	s.snap = Snapshot{Status: StatusIdle, Filters: s.filters}
	s.mu.Unlock()

	time.AfterFunc(s.opts.ResetDelay, func() { s.runFetch() })
}

// Stop cancels any pending debounced refetch.
func (s *Service) Stop() {
	s.debouncer.Stop()
}

func (s *Service) scheduleRefetch() {
	s.debouncer.Trigger(func() { s.runFetch() })
}

// cycleResult collects the per-dimension outcomes of one fetch cycle.
type cycleResult struct {
	emails   []mauticmail.EmailMetric
	emailErr error

	aggregate   *mauticmail.AggregateTotals
	dailySends  []mauticmail.DailyPoint
	dailyOpens  []mauticmail.DailyPoint
	dailyClicks []mauticmail.DailyPoint
	rates       *mauticmail.ConversionRates
	lastSend    *mauticmail.LastSend
	sendRate    *mauticmail.SendRate
}

// runFetch executes one fetch cycle: snapshot the filters, tag the
// cycle with a generation, fan out the per-dimension calls in
// parallel, then apply the results unless a newer cycle has started.
func (s *Service) runFetch() {
	s.mu.Lock()
	s.generation++
	gen := s.generation
	filters := s.filters
	s.snap.Status = StatusFetching
	s.snap.Loading = true
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), s.opts.CycleTimeout)
	defer cancel()

	apiFilters := filters.api()

	var res cycleResult
	var wg sync.WaitGroup

	// Required dimension: the per-email metrics list.
	wg.Add(1)
	go func() {
		defer wg.Done()
		callCtx, done := context.WithTimeout(ctx, s.opts.EmailTimeout)
		defer done()
		res.emails, res.emailErr = s.api.GetMetricsByEmail(callCtx, apiFilters)
	}()

	// Optional dimensions degrade to empty on failure without
	// aborting siblings.
	optional := []struct {
		name string
		call func(ctx context.Context) error
	}{
		{"aggregate", func(ctx context.Context) error {
			var err error
			res.aggregate, err = s.api.GetMetrics(ctx, apiFilters)
			return err
		}},
		{"daily-sends", func(ctx context.Context) error {
			var err error
			res.dailySends, err = s.api.GetDailySends(ctx, apiFilters)
			return err
		}},
		{"daily-opens", func(ctx context.Context) error {
			var err error
			res.dailyOpens, err = s.api.GetDailyOpens(ctx, apiFilters)
			return err
		}},
		{"daily-clicks", func(ctx context.Context) error {
			var err error
			res.dailyClicks, err = s.api.GetDailyClicks(ctx, apiFilters)
			return err
		}},
		{"rates", func(ctx context.Context) error {
			var err error
			res.rates, err = s.api.GetConversionRates(ctx, apiFilters)
			return err
		}},
		{"last-send", func(ctx context.Context) error {
			var err error
			res.lastSend, err = s.api.GetLastSend(ctx, apiFilters)
			return err
		}},
		{"send-rate", func(ctx context.Context) error {
			var err error
			res.sendRate, err = s.api.GetSendRate(ctx, apiFilters)
			return err
		}},
	}
	for _, dim := range optional {
		wg.Add(1)
		go func(name string, call func(ctx context.Context) error) {
			defer wg.Done()
			callCtx, done := context.WithTimeout(ctx, s.opts.DailyTimeout)
			defer done()
			if err := call(callCtx); err != nil {
				logger.Warn("dashboard dimension fetch failed", "dimension", name, "error", err.Error())
			}
		}(dim.name, dim.call)
	}

	wg.Wait()
	s.complete(gen, filters, res)
}

// complete applies a finished cycle's results. Results from a stale
// generation are dropped so a newer filter set always wins.
func (s *Service) complete(gen uint64, filters Filters, res cycleResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		logger.Debug("dropping stale fetch results", "generation", gen)
		return
	}

	if res.emailErr != nil {
		logger.Error("dashboard fetch failed", "error", res.emailErr.Error())
		s.snap = Snapshot{
			Status:  StatusError,
			Filters: filters,
			Error:   classifyError(res.emailErr),
		}
		return
	}

	hasDaily := len(res.dailySends) > 0 || len(res.dailyOpens) > 0 || len(res.dailyClicks) > 0
	if len(res.emails) == 0 && !hasDaily {
		s.snap = Snapshot{
			Status:          StatusNoData,
			Filters:         filters,
			NoDataAvailable: true,
			LastUpdated:     s.opts.Now(),
		}
		return
	}

	from, to := filters.dateRange()
	totals := deriveTotals(res)
	rates := deriveRates(res, totals)

	emails := make([]mauticmail.EmailMetric, 0, len(res.emails))
	for _, m := range res.emails {
		emails = append(emails, ResolveEmailRates(m))
	}

	s.snap = Snapshot{
		Status:      StatusSuccess,
		Filters:     filters,
		Emails:      emails,
		DailySends:  zeroFill(res.dailySends, from, to),
		DailyOpens:  zeroFill(res.dailyOpens, from, to),
		DailyClicks: zeroFill(res.dailyClicks, from, to),
		Totals:      totals,
		Rates:       rates,
		LastSend:    res.lastSend,
		SendRate:    res.sendRate,
		LastUpdated: s.opts.Now(),
	}
}

// deriveTotals applies the precedence rule: non-empty daily series are
// ground truth for sends/opens/clicks; the upstream aggregate object
// only fills the gaps.
func deriveTotals(res cycleResult) mauticmail.AggregateTotals {
	var totals mauticmail.AggregateTotals
	if res.aggregate != nil {
		totals = *res.aggregate
	}

	if len(res.dailySends) > 0 {
		sum := 0
		for _, day := range res.dailySends {
			sum += day.TotalSends
		}
		totals.SentCount = sum
	}
	if len(res.dailyOpens) > 0 {
		sum := 0
		for _, day := range res.dailyOpens {
			sum += day.TotalOpens
		}
		totals.OpenCount = sum
	}
	if len(res.dailyClicks) > 0 {
		sum := 0
		for _, day := range res.dailyClicks {
			sum += day.TotalClicks
		}
		totals.ClickCount = sum
	}
	return totals
}

// deriveRates returns the upstream rates unless they are degenerate
// (all-zero), in which case the open/click rates are recomputed from
// the derived totals and deliveryRate is pinned to 100 since no bounce
// data is available locally.
func deriveRates(res cycleResult, totals mauticmail.AggregateTotals) mauticmail.ConversionRates {
	var rates mauticmail.ConversionRates
	if res.rates != nil {
		rates = *res.rates
	}

	if rates.OpenRate == 0 && rates.ClickRate == 0 && rates.DeliveryRate == 0 {
		logger.Info("upstream rates degenerate, recomputing locally",
			"sends", totals.SentCount, "opens", totals.OpenCount, "clicks", totals.ClickCount)
		rates.OpenRate = OpenRate(totals.SentCount, totals.OpenCount)
		rates.ClickRate = ClickToSentRate(totals.SentCount, totals.ClickCount)
		rates.ClickToOpenRate = ClickToOpenRate(totals.OpenCount, totals.ClickCount)
		rates.DeliveryRate = 100
	}
	return rates
}

// zeroFill returns a series with exactly one point per calendar day in
// [from, to] inclusive, zero-valued where the upstream omitted a day.
func zeroFill(points []mauticmail.DailyPoint, from, to time.Time) []mauticmail.DailyPoint {
	byDate := make(map[string]mauticmail.DailyPoint, len(points))
	for _, p := range points {
		date := p.Date
		if len(date) > 10 {
			date = date[:10]
		}
		byDate[date] = p
	}

	var out []mauticmail.DailyPoint
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		date := d.Format(dateLayout)
		if p, ok := byDate[date]; ok {
			p.Date = date
			out = append(out, p)
		} else {
			out = append(out, mauticmail.DailyPoint{Date: date})
		}
	}
	return out
}

// classifyError maps a fetch failure onto a user-facing message.
func classifyError(err error) string {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &netErr) && netErr.Timeout(),
		strings.Contains(err.Error(), "timeout"):
		return "The request timed out. Please try again."
	case mauticmail.IsStatus(err, 404):
		return "The metrics endpoint was not found (404)."
	case mauticmail.IsStatus(err, 403):
		return "Access to the metrics service was denied (403)."
	case errors.As(err, &netErr),
		strings.Contains(err.Error(), "connection refused"),
		strings.Contains(err.Error(), "no such host"):
		return "Could not reach the metrics service. Check your connection."
	default:
		return "Something went wrong while loading metrics. Please try again."
	}
}

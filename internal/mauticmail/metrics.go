package mauticmail

import (
	"context"
	"net/http"
	"net/url"
)

// GetMetrics retrieves the pre-aggregated totals for the filter scope.
func (c *Client) GetMetrics(ctx context.Context, filters Filters) (*AggregateTotals, error) {
	var totals AggregateTotals
	if err := c.get(ctx, "/metrics", filters.values(), &totals); err != nil {
		return nil, err
	}
	return &totals, nil
}

// GetMetricsByDate retrieves per-day aggregates for the filter scope.
func (c *Client) GetMetricsByDate(ctx context.Context, filters Filters) ([]DailyPoint, error) {
	return c.getDailySeries(ctx, "/metrics/by-date", filters)
}

// GetMetricsByAccount retrieves per-account aggregates.
func (c *Client) GetMetricsByAccount(ctx context.Context, filters Filters) ([]AccountMetric, error) {
	var metrics []AccountMetric
	if err := c.get(ctx, "/metrics/by-account", filters.values(), &metrics); err != nil {
		return nil, err
	}
	return metrics, nil
}

// GetMetricsByEmail retrieves per-email metrics for the filter scope.
// Supports search/page/limit passthrough filters.
func (c *Client) GetMetricsByEmail(ctx context.Context, filters Filters) ([]EmailMetric, error) {
	var metrics []EmailMetric
	if err := c.get(ctx, "/metrics/by-email", filters.values(), &metrics); err != nil {
		return nil, err
	}
	return metrics, nil
}

// GetMetricsCompare compares the filtered window against the preceding
// window of equal length.
func (c *Client) GetMetricsCompare(ctx context.Context, compareType string, filters Filters) (*MetricsComparison, error) {
	params := filters.values()
	setParam(params, "compareType", compareType)
	var comparison MetricsComparison
	if err := c.get(ctx, "/metrics/compare", params, &comparison); err != nil {
		return nil, err
	}
	return &comparison, nil
}

// GetDailySends retrieves the daily send counts series.
func (c *Client) GetDailySends(ctx context.Context, filters Filters) ([]DailyPoint, error) {
	return c.getDailySeries(ctx, "/metrics/daily-sends", filters, "totalSends")
}

// GetDailyOpens retrieves the daily open counts series.
func (c *Client) GetDailyOpens(ctx context.Context, filters Filters) ([]DailyPoint, error) {
	return c.getDailySeries(ctx, "/metrics/daily-opens", filters, "totalOpens", "uniqueOpens")
}

// GetDailyClicks retrieves the daily click counts series.
func (c *Client) GetDailyClicks(ctx context.Context, filters Filters) ([]DailyPoint, error) {
	return c.getDailySeries(ctx, "/metrics/daily-clicks", filters, "totalClicks", "uniqueClicks")
}

// getDailySeries fetches a daily-series endpoint and normalizes the
// response shape. datasetFields assigns chart-shape datasets to point
// fields by position.
func (c *Client) getDailySeries(ctx context.Context, endpoint string, filters Filters, datasetFields ...string) ([]DailyPoint, error) {
	if c.userID == "" {
		return nil, ErrMissingUserID
	}
	data, err := c.doRequest(ctx, http.MethodGet, c.userPath(endpoint), filters.values(), nil)
	if err != nil {
		return nil, err
	}
	return normalizeDailySeries(data, datasetFields...)
}

// GetConversionRates retrieves the aggregate conversion rates object.
func (c *Client) GetConversionRates(ctx context.Context, filters Filters) (*ConversionRates, error) {
	var rates ConversionRates
	if err := c.get(ctx, "/metrics/rates", filters.values(), &rates); err != nil {
		return nil, err
	}
	return &rates, nil
}

// GetLastSend retrieves the most recent send in the filter scope.
func (c *Client) GetLastSend(ctx context.Context, filters Filters) (*LastSend, error) {
	var last LastSend
	if err := c.get(ctx, "/metrics/last-send", filters.values(), &last); err != nil {
		return nil, err
	}
	return &last, nil
}

// GetSendRate retrieves the current sending throughput.
func (c *Client) GetSendRate(ctx context.Context, filters Filters) (*SendRate, error) {
	var rate SendRate
	if err := c.get(ctx, "/metrics/send-rate", filters.values(), &rate); err != nil {
		return nil, err
	}
	return &rate, nil
}

// GetEvents retrieves recent open/click events for the filter scope.
func (c *Client) GetEvents(ctx context.Context, filters Filters) ([]Event, error) {
	var events []Event
	if err := c.get(ctx, "/metrics/events", filters.values(), &events); err != nil {
		return nil, err
	}
	return events, nil
}

// GetEmails retrieves campaign emails (metadata only).
func (c *Client) GetEmails(ctx context.Context, filters Filters) ([]Email, error) {
	var emails []Email
	if err := c.get(ctx, "/emails", filters.values(), &emails); err != nil {
		return nil, err
	}
	return emails, nil
}

// GetEmail retrieves a single campaign email by id.
func (c *Client) GetEmail(ctx context.Context, emailID string) (*Email, error) {
	if emailID == "" {
		return nil, ErrMissingEmailID
	}
	var email Email
	if err := c.get(ctx, "/emails/"+url.PathEscape(emailID), nil, &email); err != nil {
		return nil, err
	}
	return &email, nil
}

// SearchEmailSuggestions retrieves autocomplete suggestions matching a
// subject search term.
func (c *Client) SearchEmailSuggestions(ctx context.Context, search string) ([]EmailSuggestion, error) {
	params := url.Values{}
	setParam(params, "search", search)
	var suggestions []EmailSuggestion
	if err := c.get(ctx, "/emails/search/suggestions", params, &suggestions); err != nil {
		return nil, err
	}
	return suggestions, nil
}

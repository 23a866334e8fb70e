package mauticmail

// Account is a connected sending account on the upstream platform.
type Account struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Provider string `json:"provider,omitempty"`
	URL      string `json:"url,omitempty"`
	Status   string `json:"status,omitempty"`
}

// AccountInput is the payload for creating or updating an account.
type AccountInput struct {
	Name     string `json:"name"`
	Provider string `json:"provider,omitempty"`
	URL      string `json:"url,omitempty"`
	APIKey   string `json:"apiKey,omitempty"`
}

// AccountWebhook is the webhook endpoint provisioned for an account.
type AccountWebhook struct {
	URL    string `json:"url"`
	Secret string `json:"secret,omitempty"`
}

// DailyPoint is one calendar day of a daily metrics series. Endpoints
// only populate the counters they track; the rest stay zero.
type DailyPoint struct {
	Date         string `json:"date"`
	TotalSends   int    `json:"totalSends,omitempty"`
	TotalOpens   int    `json:"totalOpens,omitempty"`
	UniqueOpens  int    `json:"uniqueOpens,omitempty"`
	TotalClicks  int    `json:"totalClicks,omitempty"`
	UniqueClicks int    `json:"uniqueClicks,omitempty"`
}

// AggregateTotals is the upstream pre-aggregated counters object.
type AggregateTotals struct {
	SentCount        int `json:"sentCount"`
	OpenCount        int `json:"openCount"`
	ClickCount       int `json:"clickCount"`
	UniqueOpens      int `json:"uniqueOpens,omitempty"`
	UniqueClicks     int `json:"uniqueClicks,omitempty"`
	BounceCount      int `json:"bounceCount,omitempty"`
	UnsubscribeCount int `json:"unsubscribeCount,omitempty"`
}

// ConversionRates is the upstream rates object (percent values, 0-100).
type ConversionRates struct {
	OpenRate        float64 `json:"openRate"`
	ClickRate       float64 `json:"clickRate"`
	ClickToOpenRate float64 `json:"clickToOpenRate,omitempty"`
	DeliveryRate    float64 `json:"deliveryRate"`
	BounceRate      float64 `json:"bounceRate,omitempty"`
	UnsubscribeRate float64 `json:"unsubscribeRate,omitempty"`
}

// EmailMetric is one campaign email with its counters and, when the
// upstream supplies them, precomputed rates. Rate fields are pointers so
// a missing rate can be told apart from a genuine zero.
type EmailMetric struct {
	ID       string            `json:"id"`
	Subject  string            `json:"subject"`
	Campaign string            `json:"campaign,omitempty"`
	Account  string            `json:"account,omitempty"`
	SentDate string            `json:"sentDate,omitempty"`
	Metrics  EmailMetricCounts `json:"metrics"`
}

// EmailMetricCounts holds the per-email counters and optional rates.
type EmailMetricCounts struct {
	SentCount        int      `json:"sentCount"`
	OpenCount        int      `json:"openCount"`
	ClickCount       int      `json:"clickCount"`
	BounceCount      int      `json:"bounceCount,omitempty"`
	UnsubscribeCount int      `json:"unsubscribeCount,omitempty"`
	OpenRate         *float64 `json:"openRate,omitempty"`
	ClickRate        *float64 `json:"clickRate,omitempty"`
	ClickToOpenRate  *float64 `json:"clickToOpenRate,omitempty"`
	UnsubscribeRate  *float64 `json:"unsubscribeRate,omitempty"`
}

// AccountMetric is the aggregate for one account in a by-account query.
type AccountMetric struct {
	AccountID   string          `json:"accountId"`
	AccountName string          `json:"accountName,omitempty"`
	Totals      AggregateTotals `json:"totals"`
}

// MetricsComparison is the result of a compare query (current window
// against the preceding one of equal length).
type MetricsComparison struct {
	CompareType string          `json:"compareType"`
	Current     AggregateTotals `json:"current"`
	Previous    AggregateTotals `json:"previous"`
}

// LastSend reports the most recent send across the filtered scope.
type LastSend struct {
	Date    string `json:"date"`
	Subject string `json:"subject,omitempty"`
	EmailID string `json:"emailId,omitempty"`
}

// SendRate is the current sending throughput.
type SendRate struct {
	PerDay  float64 `json:"perDay"`
	PerHour float64 `json:"perHour,omitempty"`
}

// Email is a campaign email entity (metadata only, no counters).
type Email struct {
	ID        string `json:"id"`
	Subject   string `json:"subject"`
	Campaign  string `json:"campaign,omitempty"`
	AccountID string `json:"accountId,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// EmailSuggestion is a lightweight search hit for email autocomplete.
type EmailSuggestion struct {
	ID      string `json:"id"`
	Subject string `json:"subject"`
}

// Event is a single open or click event.
type Event struct {
	ID           string `json:"id"`
	Type         string `json:"type"`
	EmailID      string `json:"emailId,omitempty"`
	ContactEmail string `json:"contactEmail,omitempty"`
	Timestamp    string `json:"timestamp"`
}

package dashboard

import "github.com/devolta/mautic-metrics/internal/mauticmail"

// Pure rate math. All divisions guard a zero denominator and return 0.

// OpenRate is opens over sends, as a percentage.
func OpenRate(sent, opened int) float64 {
	if sent <= 0 {
		return 0
	}
	return float64(opened) / float64(sent) * 100
}

// ClickToOpenRate is clicks over opens, as a percentage.
func ClickToOpenRate(opened, clicked int) float64 {
	if opened <= 0 {
		return 0
	}
	return float64(clicked) / float64(opened) * 100
}

// ClickToSentRate is clicks over sends, as a percentage.
func ClickToSentRate(sent, clicked int) float64 {
	if sent <= 0 {
		return 0
	}
	return float64(clicked) / float64(sent) * 100
}

// UnsubscribeRate is unsubscribes over sends, as a percentage.
func UnsubscribeRate(sent, unsubscribed int) float64 {
	if sent <= 0 {
		return 0
	}
	return float64(unsubscribed) / float64(sent) * 100
}

// ResolveEmailRates fills in any rate the upstream left absent by
// computing it from the record's own counters. Each rate field is
// resolved independently: a record may arrive with some rates supplied
// and others missing.
func ResolveEmailRates(m mauticmail.EmailMetric) mauticmail.EmailMetric {
	counts := m.Metrics
	if counts.OpenRate == nil {
		rate := OpenRate(counts.SentCount, counts.OpenCount)
		counts.OpenRate = &rate
	}
	if counts.ClickRate == nil {
		rate := ClickToSentRate(counts.SentCount, counts.ClickCount)
		counts.ClickRate = &rate
	}
	if counts.ClickToOpenRate == nil {
		rate := ClickToOpenRate(counts.OpenCount, counts.ClickCount)
		counts.ClickToOpenRate = &rate
	}
	if counts.UnsubscribeRate == nil {
		rate := UnsubscribeRate(counts.SentCount, counts.UnsubscribeCount)
		counts.UnsubscribeRate = &rate
	}
	m.Metrics = counts
	return m
}

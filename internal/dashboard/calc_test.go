package dashboard

import (
	"testing"

	"github.com/devolta/mautic-metrics/internal/mauticmail"
	"github.com/stretchr/testify/assert"
)

func TestRateGuardsZeroDenominator(t *testing.T) {
	assert.Equal(t, 0.0, OpenRate(0, 50))
	assert.Equal(t, 0.0, ClickToOpenRate(0, 50))
	assert.Equal(t, 0.0, ClickToSentRate(0, 50))
	assert.Equal(t, 0.0, UnsubscribeRate(0, 5))
}

func TestRateFormulas(t *testing.T) {
	assert.Equal(t, 25.0, OpenRate(100, 25))
	assert.Equal(t, 20.0, ClickToOpenRate(25, 5))
	assert.Equal(t, 5.0, ClickToSentRate(100, 5))
	assert.Equal(t, 2.0, UnsubscribeRate(100, 2))
}

func TestResolveEmailRatesComputesMissing(t *testing.T) {
	m := mauticmail.EmailMetric{
		ID: "e1",
		Metrics: mauticmail.EmailMetricCounts{
			SentCount:        200,
			OpenCount:        50,
			ClickCount:       10,
			UnsubscribeCount: 4,
		},
	}

	resolved := ResolveEmailRates(m)
	assert.Equal(t, 25.0, *resolved.Metrics.OpenRate)
	assert.Equal(t, 5.0, *resolved.Metrics.ClickRate)
	assert.Equal(t, 20.0, *resolved.Metrics.ClickToOpenRate)
	assert.Equal(t, 2.0, *resolved.Metrics.UnsubscribeRate)
}

func TestResolveEmailRatesPrefersSupplied(t *testing.T) {
	supplied := 99.9
	m := mauticmail.EmailMetric{
		ID: "e1",
		Metrics: mauticmail.EmailMetricCounts{
			SentCount:  100,
			OpenCount:  25,
			ClickCount: 5,
			OpenRate:   &supplied,
		},
	}

	// openRate supplied, the rest computed. Each field is resolved
	// independently.
	resolved := ResolveEmailRates(m)
	assert.Equal(t, 99.9, *resolved.Metrics.OpenRate)
	assert.Equal(t, 5.0, *resolved.Metrics.ClickRate)
	assert.Equal(t, 20.0, *resolved.Metrics.ClickToOpenRate)
}

func TestResolveEmailRatesKeepsSuppliedZero(t *testing.T) {
	zero := 0.0
	m := mauticmail.EmailMetric{
		ID: "e1",
		Metrics: mauticmail.EmailMetricCounts{
			SentCount:  100,
			OpenCount:  25,
			ClickCount: 5,
			OpenRate:   &zero,
		},
	}

	// A supplied zero is a real value, not a missing field
	resolved := ResolveEmailRates(m)
	assert.Equal(t, 0.0, *resolved.Metrics.OpenRate)
}

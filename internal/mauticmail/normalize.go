package mauticmail

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// chartSeries is the alternate daily-series response shape: labels are
// ISO dates and each dataset is a value column aligned by position.
type chartSeries struct {
	Labels   []string `json:"labels"`
	Datasets []struct {
		Label string    `json:"label,omitempty"`
		Data  []float64 `json:"data"`
	} `json:"datasets"`
}

// normalizeDailySeries decodes a daily-series payload that is either an
// array of {date, ...counts} records or a {labels, datasets} chart
// object, and always returns the array form. For the chart form,
// datasetFields names the point field each dataset maps to, by index;
// datasets beyond the named fields are ignored.
func normalizeDailySeries(raw json.RawMessage, datasetFields ...string) ([]DailyPoint, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []DailyPoint{}, nil
	}

	if trimmed[0] == '[' {
		var points []DailyPoint
		if err := json.Unmarshal(trimmed, &points); err != nil {
			return nil, fmt.Errorf("failed to parse daily series: %w", err)
		}
		return points, nil
	}

	var chart chartSeries
	if err := json.Unmarshal(trimmed, &chart); err != nil {
		return nil, fmt.Errorf("failed to parse daily series: %w", err)
	}

	points := make([]DailyPoint, 0, len(chart.Labels))
	for i, label := range chart.Labels {
		point := DailyPoint{Date: label}
		for di, field := range datasetFields {
			if di >= len(chart.Datasets) || i >= len(chart.Datasets[di].Data) {
				continue
			}
			point.setField(field, int(chart.Datasets[di].Data[i]))
		}
		points = append(points, point)
	}
	return points, nil
}

func (p *DailyPoint) setField(field string, value int) {
	switch field {
	case "totalSends":
		p.TotalSends = value
	case "totalOpens":
		p.TotalOpens = value
	case "uniqueOpens":
		p.UniqueOpens = value
	case "totalClicks":
		p.TotalClicks = value
	case "uniqueClicks":
		p.UniqueClicks = value
	}
}

package mauticmail

import (
	"encoding/json"
	"testing"
)

func TestNormalizeArrayShape(t *testing.T) {
	raw := json.RawMessage(`[
		{"date":"2025-05-01","totalSends":120,"uniqueOpens":40},
		{"date":"2025-05-02","totalSends":90}
	]`)

	points, err := normalizeDailySeries(raw, "totalSends")
	if err != nil {
		t.Fatalf("normalize failed: %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("Expected 2 points, got %d", len(points))
	}
	if points[0].Date != "2025-05-01" || points[0].TotalSends != 120 || points[0].UniqueOpens != 40 {
		t.Errorf("Unexpected first point: %+v", points[0])
	}
	if points[1].TotalSends != 90 {
		t.Errorf("Unexpected second point: %+v", points[1])
	}
}

func TestNormalizeChartShape(t *testing.T) {
	raw := json.RawMessage(`{
		"labels": ["2025-05-01", "2025-05-02", "2025-05-03"],
		"datasets": [
			{"label": "opens", "data": [30, 45, 12]},
			{"label": "unique", "data": [25, 38, 10]}
		]
	}`)

	points, err := normalizeDailySeries(raw, "totalOpens", "uniqueOpens")
	if err != nil {
		t.Fatalf("normalize failed: %v", err)
	}
	if len(points) != 3 {
		t.Fatalf("Expected 3 points, got %d", len(points))
	}
	if points[0].Date != "2025-05-01" || points[0].TotalOpens != 30 || points[0].UniqueOpens != 25 {
		t.Errorf("Unexpected first point: %+v", points[0])
	}
	if points[2].TotalOpens != 12 || points[2].UniqueOpens != 10 {
		t.Errorf("Unexpected third point: %+v", points[2])
	}
}

func TestNormalizeChartShapeRaggedDatasets(t *testing.T) {
	// Second dataset shorter than the labels; missing positions stay zero
	raw := json.RawMessage(`{
		"labels": ["2025-05-01", "2025-05-02"],
		"datasets": [
			{"data": [10, 20]},
			{"data": [5]}
		]
	}`)

	points, err := normalizeDailySeries(raw, "totalClicks", "uniqueClicks")
	if err != nil {
		t.Fatalf("normalize failed: %v", err)
	}
	if points[1].TotalClicks != 20 {
		t.Errorf("Expected totalClicks 20, got %d", points[1].TotalClicks)
	}
	if points[1].UniqueClicks != 0 {
		t.Errorf("Expected missing dataset value to stay zero, got %d", points[1].UniqueClicks)
	}
}

func TestNormalizeNullAndEmpty(t *testing.T) {
	for _, raw := range []string{"null", "", "[]"} {
		points, err := normalizeDailySeries(json.RawMessage(raw), "totalSends")
		if err != nil {
			t.Fatalf("normalize(%q) failed: %v", raw, err)
		}
		if len(points) != 0 {
			t.Errorf("normalize(%q): expected empty series, got %d points", raw, len(points))
		}
	}
}

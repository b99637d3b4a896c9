package analysis

import (
	"encoding/json"
	"fmt"

	"clipforge/internal/highlight"
)

// Report is the analysis outcome stored on the queue item. The rendering
// stage reconstructs its work list from this record alone.
type Report struct {
	DurationSec   float64              `json:"duration_sec"`
	HasAudio      bool                 `json:"has_audio"`
	Threshold     float64              `json:"threshold"`
	Plans         []highlight.ClipPlan `json:"plans"`
	DroppedBoring int                  `json:"dropped_boring,omitempty"`
}

// Encode serializes the report for queue storage.
func (r Report) Encode() (string, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("encode analysis report: %w", err)
	}
	return string(data), nil
}

// ParseReport decodes a stored report.
func ParseReport(raw string) (Report, error) {
	var report Report
	if err := json.Unmarshal([]byte(raw), &report); err != nil {
		return Report{}, fmt.Errorf("decode analysis report: %w", err)
	}
	return report, nil
}

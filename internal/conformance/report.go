package conformance

import (
	"encoding/json"
	"os"
	"time"
)

// Report is the full conformance report (teacher's testing.Report
// lineage: there, {Timestamp, CardATR, CardICCID, Summary, Results} for
// a physical SIM; here, no card metadata since the applications run
// in-process).
type Report struct {
	Timestamp time.Time `json:"timestamp"`
	Summary   Summary   `json:"summary"`
	Results   []Result  `json:"results"`
}

// GenerateJSON writes the suite's report as JSON to path (teacher's
// generateJSON lineage).
func (s *Suite) GenerateJSON(path string) error {
	report := Report{
		Timestamp: time.Now(),
		Summary:   s.Summary(),
		Results:   s.Results,
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

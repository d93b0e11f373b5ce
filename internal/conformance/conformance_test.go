package conformance

import "testing"

func TestRunAllScenariosPass(t *testing.T) {
	s := NewSuite()
	s.RunAll()

	sum := s.Summary()
	if sum.Total != len(scenarios) {
		t.Fatalf("ran %d scenarios, want %d", sum.Total, len(scenarios))
	}
	if sum.Failed != 0 {
		for _, r := range s.Results {
			if !r.Passed {
				t.Errorf("%s: failed (expected %q, got %q, err %q)", r.Name, r.Expected, r.Actual, r.Error)
			}
		}
	}
}

func TestGenerateJSON(t *testing.T) {
	s := NewSuite()
	s.RunAll()

	path := t.TempDir() + "/report.json"
	if err := s.GenerateJSON(path); err != nil {
		t.Fatalf("GenerateJSON: %v", err)
	}
}

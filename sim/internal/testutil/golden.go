// Package testutil provides shared test infrastructure for the lattice Boltzmann
// simulator. It consolidates golden dataset types and assertion helpers used across
// sim/ and cmd/ test packages.
package testutil

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// GoldenDataset represents the structure of testdata/goldendataset.json.
type GoldenDataset struct {
	Tests []GoldenTestCase `json:"tests"`
}

// GoldenTestCase represents a single deterministic shear-wave run.
type GoldenTestCase struct {
	Name      string        `json:"name"`
	NX        int           `json:"nx"`
	NSteps    int           `json:"nsteps"`
	Tau       float64       `json:"tau"`
	TauBulk   float64       `json:"tau_bulk"`
	TauGhost  float64       `json:"tau_ghost"`
	Amplitude float64       `json:"A"`
	Metrics   GoldenMetrics `json:"metrics"`
}

// GoldenMetrics represents the expected results of a golden test case.
// Values come from an independent reference implementation of the same scheme.
type GoldenMetrics struct {
	TotalMass      float64 `json:"total_mass"`
	FinalAmplitude float64 `json:"final_amplitude"`
	DecayRate      float64 `json:"decay_rate"` // least-squares slope of −ln A over every step
}

// LoadGoldenDataset loads the golden dataset from the testdata directory.
// The path is resolved relative to this source file: sim/internal/testutil/ → testdata/.
func LoadGoldenDataset(t *testing.T) *GoldenDataset {
	t.Helper()

	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to get current file path")
	}
	// Navigate from sim/internal/testutil/ to repo root testdata/
	path := filepath.Join(filepath.Dir(thisFile), "..", "..", "..", "testdata", "goldendataset.json")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read golden dataset: %v", err)
	}

	var dataset GoldenDataset
	if err := json.Unmarshal(data, &dataset); err != nil {
		t.Fatalf("Failed to parse golden dataset: %v", err)
	}

	return &dataset
}

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}

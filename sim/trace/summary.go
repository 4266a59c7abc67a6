package trace

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	Records          int
	InitialMass      float64
	FinalMass        float64
	MaxMassDrift     float64 // max |M(t) − M(0)| / |M(0)|
	MaxMomentumDrift float64 // max |P(t) − P(0)| (Euclidean)
	MinDensity       float64 // smallest density seen in any record
	InitialAmplitude float64
	FinalAmplitude   float64
	DecayRate        float64 // fitted γ in A(t) ≈ A(0)·exp(−γt); 0 if fewer than two usable points
	DecayFitR2       float64
	DecayFitPoints   int // records with A > 0 used in the fit
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{}
	if st == nil || len(st.Steps) == 0 {
		return summary
	}

	first, last := st.Steps[0], st.Steps[len(st.Steps)-1]
	summary.Records = len(st.Steps)
	summary.InitialMass = first.Mass
	summary.FinalMass = last.Mass
	summary.InitialAmplitude = first.Amplitude
	summary.FinalAmplitude = last.Amplitude
	summary.MinDensity = first.MinDensity

	var ts, logA []float64
	for _, r := range st.Steps {
		if first.Mass != 0 {
			summary.MaxMassDrift = math.Max(summary.MaxMassDrift, math.Abs(r.Mass-first.Mass)/math.Abs(first.Mass))
		}
		dp := math.Sqrt(sq(r.MomentumX-first.MomentumX) + sq(r.MomentumY-first.MomentumY) + sq(r.MomentumZ-first.MomentumZ))
		summary.MaxMomentumDrift = math.Max(summary.MaxMomentumDrift, dp)
		summary.MinDensity = math.Min(summary.MinDensity, r.MinDensity)
		if r.Amplitude > 0 {
			ts = append(ts, r.Time)
			logA = append(logA, math.Log(r.Amplitude))
		}
	}

	summary.DecayFitPoints = len(ts)
	if len(ts) >= 2 {
		alpha, beta := stat.LinearRegression(ts, logA, nil, false)
		summary.DecayRate = -beta
		summary.DecayFitR2 = stat.RSquared(ts, logA, nil, alpha, beta)
	}
	return summary
}

func sq(v float64) float64 { return v * v }

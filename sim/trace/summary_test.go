package trace

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarize_EmptyTrace_ZeroValues(t *testing.T) {
	// GIVEN an empty trace
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelSteps})

	// WHEN summarized
	summary := Summarize(st)

	// THEN all fields are zero
	assert.Equal(t, TraceSummary{}, *summary)
	assert.Equal(t, TraceSummary{}, *Summarize(nil))
}

func TestSummarize_ExponentialDecay_RecoversRate(t *testing.T) {
	// GIVEN A(t) = 0.01·exp(−0.03t) sampled every step
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelSteps})
	for step := 0; step <= 50; step++ {
		st.Record(StepRecord{
			Step:       step,
			Time:       float64(step),
			Mass:       64,
			MinDensity: 1,
			Amplitude:  0.01 * math.Exp(-0.03*float64(step)),
		})
	}

	// WHEN summarized
	summary := Summarize(st)

	// THEN the fit recovers the rate exactly
	assert.InDelta(t, 0.03, summary.DecayRate, 1e-12)
	assert.InDelta(t, 1, summary.DecayFitR2, 1e-12)
	assert.Equal(t, 51, summary.DecayFitPoints)
	assert.Equal(t, 51, summary.Records)
	assert.InDelta(t, 0.01, summary.InitialAmplitude, 1e-15)
	assert.InDelta(t, 0.01*math.Exp(-1.5), summary.FinalAmplitude, 1e-15)
	assert.Zero(t, summary.MaxMassDrift)
}

func TestSummarize_Drifts_TrackWorstRecord(t *testing.T) {
	// GIVEN records whose mass and momentum wander
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelSteps})
	st.Record(StepRecord{Step: 0, Mass: 100, MinDensity: 1})
	st.Record(StepRecord{Step: 1, Mass: 101, MomentumX: 3, MomentumY: 4, MinDensity: 0.9})
	st.Record(StepRecord{Step: 2, Mass: 99.5, MomentumZ: 1, MinDensity: 0.95})

	// WHEN summarized
	summary := Summarize(st)

	// THEN drift is the maximum deviation from the first record
	assert.InDelta(t, 0.01, summary.MaxMassDrift, 1e-12)
	assert.InDelta(t, 5, summary.MaxMomentumDrift, 1e-12)
	assert.InDelta(t, 0.9, summary.MinDensity, 1e-12)
	assert.Equal(t, 100.0, summary.InitialMass)
	assert.Equal(t, 99.5, summary.FinalMass)
}

func TestSummarize_NonPositiveAmplitudes_SkippedInFit(t *testing.T) {
	// GIVEN only one record with a positive amplitude
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelSteps})
	st.Record(StepRecord{Step: 0, Amplitude: 0.1})
	st.Record(StepRecord{Step: 1, Time: 1, Amplitude: 0})
	st.Record(StepRecord{Step: 2, Time: 2, Amplitude: -0.1})

	// WHEN summarized
	summary := Summarize(st)

	// THEN no rate is fitted
	assert.Equal(t, 1, summary.DecayFitPoints)
	assert.Zero(t, summary.DecayRate)
}

package trace

// TraceLevel controls the verbosity of step tracing.
type TraceLevel string

const (
	// TraceLevelNone disables tracing (zero overhead).
	TraceLevelNone TraceLevel = "none"
	// TraceLevelSteps captures a StepRecord every Interval steps.
	TraceLevelSteps TraceLevel = "steps"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:  true,
	TraceLevelSteps: true,
	"":              true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// TraceConfig controls trace collection behavior.
type TraceConfig struct {
	Level    TraceLevel
	Interval int // record every Interval steps; values below 1 mean every step
}

// SimulationTrace collects step records during a run.
type SimulationTrace struct {
	Config TraceConfig
	Steps  []StepRecord
}

// NewSimulationTrace creates a SimulationTrace ready for recording.
func NewSimulationTrace(config TraceConfig) *SimulationTrace {
	return &SimulationTrace{
		Config: config,
		Steps:  make([]StepRecord, 0),
	}
}

// Wants reports whether step should be recorded under the trace configuration.
// Step 0 is always wanted when tracing is on so that drifts have a baseline.
func (st *SimulationTrace) Wants(step int) bool {
	if st == nil || st.Config.Level != TraceLevelSteps {
		return false
	}
	if st.Config.Interval <= 1 || step == 0 {
		return true
	}
	return step%st.Config.Interval == 0
}

// Record appends a step record.
func (st *SimulationTrace) Record(record StepRecord) {
	st.Steps = append(st.Steps, record)
}

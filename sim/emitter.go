package sim

import (
	"github.com/inference-sim/lbmsim/sim/mesh"
	"github.com/inference-sim/lbmsim/sim/structfact"
)

// FieldSnapshot is the hydro state handed to an Emitter. Field is owned by the
// simulator and is only valid until the next step.
type FieldSnapshot struct {
	Names    []string
	Field    *mesh.Field
	Geometry mesh.Geometry
	Step     int
	Time     float64
}

// SpectrumSnapshot is the time-averaged structure factor handed to an Emitter.
type SpectrumSnapshot struct {
	Spectrum *structfact.Spectrum
	Geometry mesh.Geometry
	Step     int
	Time     float64
}

// Emitter persists snapshots. Any error aborts the run.
type Emitter interface {
	EmitFields(FieldSnapshot) error
	EmitStructureFactor(SpectrumSnapshot) error
}

// NopEmitter discards every snapshot.
type NopEmitter struct{}

// EmitFields drops the snapshot.
func (NopEmitter) EmitFields(FieldSnapshot) error { return nil }

// EmitStructureFactor drops the snapshot.
func (NopEmitter) EmitStructureFactor(SpectrumSnapshot) error { return nil }

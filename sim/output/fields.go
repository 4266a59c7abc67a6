package output

import (
	"fmt"
	"path/filepath"

	"github.com/inference-sim/lbmsim/sim"
)

// cellRow is one interior cell of a hydro snapshot.
type cellRow struct {
	X   int     `csv:"x"`
	Y   int     `csv:"y"`
	Z   int     `csv:"z"`
	Rho float64 `csv:"rho"`
	Ux  float64 `csv:"ux"`
	Uy  float64 `csv:"uy"`
	Uz  float64 `csv:"uz"`
}

// EmitFields writes <dir>/pltNNNNN/cells.csv and header.yaml.
func (w *PlotfileWriter) EmitFields(s sim.FieldSnapshot) error {
	if w == nil {
		return nil
	}
	if s.Field == nil || s.Field.NComp() != len(sim.HydroNames) {
		return fmt.Errorf("emit fields at step %d: want a %d-component hydro field", s.Step, len(sim.HydroNames))
	}
	dir, err := w.plotDir("plt", s.Step)
	if err != nil {
		return err
	}

	v := s.Field.ValidBox()
	rows := make([]cellRow, 0, v.NumPts())
	for z := v.Lo[2]; z <= v.Hi[2]; z++ {
		for y := v.Lo[1]; y <= v.Hi[1]; y++ {
			for x := v.Lo[0]; x <= v.Hi[0]; x++ {
				h := s.Field.Cell(x, y, z)
				rows = append(rows, cellRow{
					X: x, Y: y, Z: z,
					Rho: h[sim.HydroRho],
					Ux:  h[sim.HydroUx],
					Uy:  h[sim.HydroUy],
					Uz:  h[sim.HydroUz],
				})
			}
		}
	}
	if err := writeCSV(filepath.Join(dir, "cells.csv"), rows); err != nil {
		return err
	}
	header := plotHeader{
		RunID:     w.runID.String(),
		Kind:      "fields",
		Step:      s.Step,
		Time:      s.Time,
		Variables: s.Names,
		Geometry:  newGeomHeader(s.Geometry),
	}
	if err := writeYAML(filepath.Join(dir, "header.yaml"), header); err != nil {
		return err
	}
	w.emissions++
	return nil
}

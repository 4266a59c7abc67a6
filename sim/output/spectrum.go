package output

import (
	"path/filepath"

	"github.com/inference-sim/lbmsim/sim"
)

// spectrumRow is one pair value at one signed wavevector.
type spectrumRow struct {
	Kx   int     `csv:"kx"`
	Ky   int     `csv:"ky"`
	Kz   int     `csv:"kz"`
	Pair string  `csv:"pair"`
	Re   float64 `csv:"re"`
	Im   float64 `csv:"im"`
}

// shellRow is the shell-averaged real part of one pair.
type shellRow struct {
	K     int     `csv:"k"`
	Pair  string  `csv:"pair"`
	Value float64 `csv:"s_k"`
}

// EmitStructureFactor writes <dir>/plt_SFNNNNN/structure_factor.csv with k = 0
// centered, shells.csv, and header.yaml.
func (w *PlotfileWriter) EmitStructureFactor(s sim.SpectrumSnapshot) error {
	if w == nil {
		return nil
	}
	dir, err := w.plotDir("plt_SF", s.Step)
	if err != nil {
		return err
	}

	sp := s.Spectrum
	nx, ny, nz := sp.Dims[0], sp.Dims[1], sp.Dims[2]
	rows := make([]spectrumRow, 0, len(sp.Pairs)*nx*ny*nz)
	var shells []shellRow
	pairs := make([]string, len(sp.Pairs))
	for p := range sp.Pairs {
		pairs[p] = sp.PairName(p)
		shifted := sp.Shifted(p)
		for jz := 0; jz < nz; jz++ {
			for jy := 0; jy < ny; jy++ {
				for jx := 0; jx < nx; jx++ {
					v := shifted[jx+nx*(jy+ny*jz)]
					rows = append(rows, spectrumRow{
						Kx: jx - nx/2, Ky: jy - ny/2, Kz: jz - nz/2,
						Pair: pairs[p],
						Re:   real(v),
						Im:   imag(v),
					})
				}
			}
		}
		for k, v := range sp.ShellAverage(p) {
			shells = append(shells, shellRow{K: k, Pair: pairs[p], Value: v})
		}
	}

	if err := writeCSV(filepath.Join(dir, "structure_factor.csv"), rows); err != nil {
		return err
	}
	if err := writeCSV(filepath.Join(dir, "shells.csv"), shells); err != nil {
		return err
	}
	header := plotHeader{
		RunID:     w.runID.String(),
		Kind:      "structure_factor",
		Step:      s.Step,
		Time:      s.Time,
		Variables: pairs,
		Samples:   sp.Count,
		Geometry:  newGeomHeader(s.Geometry),
	}
	if err := writeYAML(filepath.Join(dir, "header.yaml"), header); err != nil {
		return err
	}
	w.emissions++
	return nil
}

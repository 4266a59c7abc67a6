// Package output writes simulator snapshots as plotfile directories: one
// directory per emitted step holding CSV data and a YAML header.
package output

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/inference-sim/lbmsim/sim"
	"github.com/inference-sim/lbmsim/sim/mesh"
	"github.com/inference-sim/lbmsim/sim/trace"
)

// PlotfileWriter implements sim.Emitter on a directory tree:
//
//	<dir>/run.yaml                        run configuration
//	<dir>/plt00010/{header.yaml,cells.csv}
//	<dir>/plt_SF00010/{header.yaml,structure_factor.csv,shells.csv}
//	<dir>/diagnostics.csv                 step trace
//
// A nil *PlotfileWriter accepts every call and writes nothing.
type PlotfileWriter struct {
	dir       string
	runID     uuid.UUID
	emissions int
}

var _ sim.Emitter = (*PlotfileWriter)(nil)

// NewPlotfileWriter creates dir if needed. Returns nil if dir is empty (output disabled).
func NewPlotfileWriter(dir string, runID uuid.UUID) (*PlotfileWriter, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	return &PlotfileWriter{dir: dir, runID: runID}, nil
}

// Dir returns the output root, or "" when output is disabled.
func (w *PlotfileWriter) Dir() string {
	if w == nil {
		return ""
	}
	return w.dir
}

// Emissions returns how many snapshots (fields or structure factor) were written.
func (w *PlotfileWriter) Emissions() int {
	if w == nil {
		return 0
	}
	return w.emissions
}

// WriteConfig saves the run configuration as YAML.
func (w *PlotfileWriter) WriteConfig(cfg sim.Config) error {
	if w == nil {
		return nil
	}
	doc := struct {
		RunID  string     `yaml:"run_id"`
		Config sim.Config `yaml:"config"`
	}{w.runID.String(), cfg}
	return writeYAML(filepath.Join(w.dir, "run.yaml"), doc)
}

// WriteTrace saves every step record to diagnostics.csv.
func (w *PlotfileWriter) WriteTrace(st *trace.SimulationTrace) error {
	if w == nil || st == nil {
		return nil
	}
	return writeCSV(filepath.Join(w.dir, "diagnostics.csv"), st.Steps)
}

// plotHeader describes one plotfile directory.
type plotHeader struct {
	RunID     string     `yaml:"run_id"`
	Kind      string     `yaml:"kind"`
	Step      int        `yaml:"step"`
	Time      float64    `yaml:"time"`
	Variables []string   `yaml:"variables"`
	Samples   int        `yaml:"samples,omitempty"`
	Geometry  geomHeader `yaml:"geometry"`
}

type geomHeader struct {
	Lo       [3]int     `yaml:"lo,flow"`
	Hi       [3]int     `yaml:"hi,flow"`
	ProbLo   [3]float64 `yaml:"prob_lo,flow"`
	ProbHi   [3]float64 `yaml:"prob_hi,flow"`
	Periodic [3]bool    `yaml:"periodic,flow"`
}

func newGeomHeader(g mesh.Geometry) geomHeader {
	return geomHeader{
		Lo:       g.Domain.Lo,
		Hi:       g.Domain.Hi,
		ProbLo:   g.ProbLo,
		ProbHi:   g.ProbHi,
		Periodic: g.Periodic,
	}
}

// plotDir creates and returns <dir>/<prefix><step>.
func (w *PlotfileWriter) plotDir(prefix string, step int) (string, error) {
	d := filepath.Join(w.dir, fmt.Sprintf("%s%05d", prefix, step))
	if err := os.MkdirAll(d, 0755); err != nil {
		return "", fmt.Errorf("creating plotfile directory: %w", err)
	}
	return d, nil
}

func writeCSV(path string, rows any) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Base(path), err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing %s: %w", filepath.Base(path), cerr)
		}
	}()
	if err := gocsv.Marshal(rows, f); err != nil {
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	return nil
}

func writeYAML(path string, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	return nil
}

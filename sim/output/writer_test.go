package output

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/gocarina/gocsv"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/inference-sim/lbmsim/sim"
	"github.com/inference-sim/lbmsim/sim/trace"
)

func readCSV[T any](t *testing.T, path string) []T {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	var rows []T
	require.NoError(t, gocsv.UnmarshalFile(f, &rows))
	return rows
}

func readHeader(t *testing.T, path string) plotHeader {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var h plotHeader
	require.NoError(t, yaml.Unmarshal(data, &h))
	return h
}

func TestNewPlotfileWriter_EmptyDirDisablesOutput(t *testing.T) {
	w, err := NewPlotfileWriter("", uuid.New())
	require.NoError(t, err)
	assert.Nil(t, w)

	// A nil writer accepts every call.
	assert.NoError(t, w.EmitFields(sim.FieldSnapshot{}))
	assert.NoError(t, w.EmitStructureFactor(sim.SpectrumSnapshot{}))
	assert.NoError(t, w.WriteConfig(sim.DefaultConfig()))
	assert.NoError(t, w.WriteTrace(trace.NewSimulationTrace(trace.TraceConfig{})))
	assert.Zero(t, w.Emissions())
	assert.Empty(t, w.Dir())
}

func TestPlotfileWriter_ShearWaveRunWritesElevenPlotfiles(t *testing.T) {
	// GIVEN the reference run writing into a temp directory
	dir := t.TempDir()
	runID := uuid.New()
	w, err := NewPlotfileWriter(dir, runID)
	require.NoError(t, err)
	cfg := sim.DefaultConfig()
	s, err := sim.NewSimulator(cfg, w)
	require.NoError(t, err)

	// WHEN it runs and the trace is saved
	require.NoError(t, s.Run(context.Background()))
	require.NoError(t, w.WriteConfig(cfg))
	require.NoError(t, w.WriteTrace(s.Trace()))

	// THEN steps 0, 10, ..., 100 each have a field and a structure-factor plotfile
	fieldDirs, err := filepath.Glob(filepath.Join(dir, "plt[0-9]*"))
	require.NoError(t, err)
	sfDirs, err := filepath.Glob(filepath.Join(dir, "plt_SF*"))
	require.NoError(t, err)
	assert.Len(t, fieldDirs, 11)
	assert.Len(t, sfDirs, 11)
	assert.DirExists(t, filepath.Join(dir, "plt00100"))
	assert.DirExists(t, filepath.Join(dir, "plt_SF00000"))
	assert.Equal(t, 22, w.Emissions())

	// AND the last field plotfile matches the simulator state
	cells := readCSV[cellRow](t, filepath.Join(dir, "plt00100", "cells.csv"))
	require.Len(t, cells, 16*16*16)
	assert.Equal(t, cellRow{X: 0, Y: 0, Z: 0}, cellRow{X: cells[0].X, Y: cells[0].Y, Z: cells[0].Z})
	assert.Equal(t, 5, cells[5].X, "x varies fastest")
	assert.InDelta(t, s.Hydro().At(5, 0, 0, sim.HydroUy), cells[5].Uy, 1e-15)
	assert.InDelta(t, 1, cells[5].Rho, 1e-6)

	h := readHeader(t, filepath.Join(dir, "plt00100", "header.yaml"))
	assert.Equal(t, runID.String(), h.RunID)
	assert.Equal(t, "fields", h.Kind)
	assert.Equal(t, 100, h.Step)
	assert.Equal(t, 100.0, h.Time)
	assert.Equal(t, sim.HydroNames, h.Variables)
	assert.Equal(t, [3]int{15, 15, 15}, h.Geometry.Hi)
	assert.Equal(t, [3]bool{true, true, true}, h.Geometry.Periodic)

	// AND the structure factor is centered and labelled
	sf := readCSV[spectrumRow](t, filepath.Join(dir, "plt_SF00100", "structure_factor.csv"))
	require.Len(t, sf, 6*16*16*16)
	assert.Equal(t, spectrumRow{Kx: -8, Ky: -8, Kz: -8, Pair: "velx*velx"},
		spectrumRow{Kx: sf[0].Kx, Ky: sf[0].Ky, Kz: sf[0].Kz, Pair: sf[0].Pair})
	assert.Equal(t, "velz*velz", sf[len(sf)-1].Pair)
	sfHeader := readHeader(t, filepath.Join(dir, "plt_SF00100", "header.yaml"))
	assert.Equal(t, 100, sfHeader.Samples)
	assert.Equal(t, "structure_factor", sfHeader.Kind)

	shells := readCSV[shellRow](t, filepath.Join(dir, "plt_SF00100", "shells.csv"))
	assert.NotEmpty(t, shells)
	assert.Equal(t, 0, shells[0].K)

	// AND diagnostics hold one row per step plus the initial state
	diag := readCSV[trace.StepRecord](t, filepath.Join(dir, "diagnostics.csv"))
	require.Len(t, diag, 101)
	assert.Equal(t, 100, diag[100].Step)
	assert.InDelta(t, 4096, diag[100].Mass, 1e-9)
	assert.FileExists(t, filepath.Join(dir, "run.yaml"))
}

func TestPlotfileWriter_WriteConfig_RoundTrips(t *testing.T) {
	dir := t.TempDir()
	runID := uuid.New()
	w, err := NewPlotfileWriter(dir, runID)
	require.NoError(t, err)
	cfg := sim.DefaultConfig()
	cfg.Temperature = 2e-5
	cfg.TauBulk = 0.9

	require.NoError(t, w.WriteConfig(cfg))

	data, err := os.ReadFile(filepath.Join(dir, "run.yaml"))
	require.NoError(t, err)
	var doc struct {
		RunID  string     `yaml:"run_id"`
		Config sim.Config `yaml:"config"`
	}
	require.NoError(t, yaml.Unmarshal(data, &doc))
	assert.Equal(t, runID.String(), doc.RunID)
	assert.Equal(t, cfg, doc.Config)
}

func TestPlotfileWriter_RejectsNonHydroField(t *testing.T) {
	w, err := NewPlotfileWriter(t.TempDir(), uuid.New())
	require.NoError(t, err)
	assert.Error(t, w.EmitFields(sim.FieldSnapshot{Step: 3}))
	assert.Zero(t, w.Emissions())
}

func TestPlotfileWriter_UnwritableDirectorySurfacesError(t *testing.T) {
	// GIVEN an output root that is a regular file
	root := filepath.Join(t.TempDir(), "blocked")
	require.NoError(t, os.WriteFile(root, []byte("x"), 0644))
	w := &PlotfileWriter{dir: root, runID: uuid.New()}

	cfg := sim.DefaultConfig()
	cfg.NX = 4
	s, err := sim.NewSimulator(cfg, w)
	require.NoError(t, err)

	// WHEN the run tries to emit step 0
	err = s.Run(context.Background())

	// THEN the filesystem error aborts the run
	var pathErr *os.PathError
	assert.True(t, errors.As(err, &pathErr), "got %v", err)
	assert.Equal(t, 0, s.StepCount())
}

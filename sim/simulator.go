package sim

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/inference-sim/lbmsim/sim/lattice"
	"github.com/inference-sim/lbmsim/sim/mesh"
	"github.com/inference-sim/lbmsim/sim/structfact"
	"github.com/inference-sim/lbmsim/sim/trace"
)

// StructureFactorNames are the variables fed to the structure-factor accumulator.
var StructureFactorNames = []string{"velx", "vely", "velz"}

// Simulator advances the populations of a periodic cube one step at a time.
// It is not safe for concurrent use; parallelism lives inside each step.
type Simulator struct {
	cfg     Config
	vs      *lattice.VelocitySet
	relax   *lattice.Relaxation
	geom    mesh.Geometry
	runner  *mesh.Runner
	kernel  *Kernel
	cur     *mesh.Field // populations at the current step
	next    *mesh.Field // streaming target, swapped with cur after each step
	hydro   *mesh.Field
	sf      *structfact.Accumulator
	sfBuf   [][]float64
	emitter Emitter
	trace   *trace.SimulationTrace
	step    int
	Metrics *Metrics
}

// NewSimulator validates cfg, allocates the fields and initializes the shear wave
// u_y(x) = A sin(2πx/nx) at unit density. A nil emitter discards snapshots.
func NewSimulator(cfg Config, emitter Emitter) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if emitter == nil {
		emitter = NopEmitter{}
	}
	vs, err := lattice.ByName(cfg.Lattice)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	relax, err := lattice.NewRelaxation(vs, cfg.relaxationParams())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if cfg.Tau <= 0.5 {
		logrus.Warnf("tau = %g gives a non-positive viscosity; expect the run to blow up", cfg.Tau)
	}
	if cfg.bulkTau() <= 0.5 {
		logrus.Warnf("tau_bulk = %g over-relaxes the bulk moment; expect the run to blow up", cfg.bulkTau())
	}
	if cfg.ghostTau() <= 0.5 {
		logrus.Warnf("tau_ghost = %g over-relaxes the ghost moments; expect the run to blow up", cfg.ghostTau())
	}

	geom := mesh.NewPeriodicCube(cfg.NX)
	cur, err := mesh.NewField(geom.Domain, vs.Q(), 1)
	if err != nil {
		return nil, fmt.Errorf("allocate populations: %w", err)
	}
	next, err := mesh.NewField(geom.Domain, vs.Q(), 1)
	if err != nil {
		return nil, fmt.Errorf("allocate populations: %w", err)
	}
	hydro, err := mesh.NewField(geom.Domain, numHydro, 1)
	if err != nil {
		return nil, fmt.Errorf("allocate hydro field: %w", err)
	}
	sf, err := structfact.New(geom.Domain.Size(), StructureFactorNames, structfact.UnitScaling(len(StructureFactorNames)))
	if err != nil {
		return nil, err
	}

	s := &Simulator{
		cfg:     cfg,
		vs:      vs,
		relax:   relax,
		geom:    geom,
		runner:  mesh.NewRunner(cfg.Workers),
		kernel:  NewKernel(vs, relax, geom, NewSimulationKey(cfg.Seed)),
		cur:     cur,
		next:    next,
		hydro:   hydro,
		sf:      sf,
		sfBuf:   make([][]float64, len(StructureFactorNames)),
		emitter: emitter,
		trace:   trace.NewSimulationTrace(trace.TraceConfig{Level: cfg.TraceLevel, Interval: cfg.TraceInterval}),
		Metrics: NewMetrics(),
	}
	s.initialize()
	logrus.Infof("Initialized %s on %d^3 cells: tau=%g tau_bulk=%g tau_ghost=%g T=%g A=%g workers=%d",
		vs.Name(), cfg.NX, relax.Params().Tau, relax.Params().TauBulk, relax.Params().TauGhost,
		cfg.Temperature, cfg.Amplitude, s.runner.Workers())
	return s, nil
}

// initialize writes equilibrium populations over the grown box, so ghost cells are
// valid from the start.
func (s *Simulator) initialize() {
	nx := float64(s.cfg.NX)
	s.runner.ParallelFor(s.cur.GrownBox(), func(x, y, z int) {
		u := [3]float64{0, s.cfg.Amplitude * math.Sin(2*math.Pi*float64(x)/nx), 0}
		s.vs.Equilibrium(s.cur.Cell(x, y, z), 1, u)
	})
	extractHydro(s.runner, s.vs, s.cur, s.hydro)
	s.record(scanHydro(s.hydro))
}

// Run emits the initial state, then steps until NSteps, emitting every PlotInt
// steps. Cancellation is checked between steps.
func (s *Simulator) Run(ctx context.Context) error {
	start := time.Now()
	defer func() { s.Metrics.WallTime += time.Since(start) }()

	if s.step == 0 {
		if err := s.emit(); err != nil {
			return err
		}
	}
	for s.step < s.cfg.NSteps {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("run interrupted after step %d: %w", s.step, err)
		}
		if err := s.Step(); err != nil {
			return err
		}
		if s.cfg.PlotInt > 0 && s.step%s.cfg.PlotInt == 0 {
			if err := s.emit(); err != nil {
				return err
			}
		}
	}
	logrus.Infof("[step %05d] Simulation ended", s.step)
	return nil
}

// Step advances the state by one time step.
func (s *Simulator) Step() error {
	step := s.step + 1
	cur, next := s.cur, s.next
	s.runner.ParallelFor(s.geom.Domain, func(x, y, z int) {
		s.kernel.StreamCollide(x, y, z, step, cur, next)
	})
	s.cur, s.next = next, cur
	s.step = step

	if err := s.cur.FillBoundary(s.geom); err != nil {
		return fmt.Errorf("step %d: halo exchange: %w", step, err)
	}
	extractHydro(s.runner, s.vs, s.cur, s.hydro)
	stats := scanHydro(s.hydro)
	if s.cfg.StabilityCheck {
		if err := stats.check(step); err != nil {
			return err
		}
	}
	if err := s.accumulateStructureFactor(); err != nil {
		return fmt.Errorf("step %d: %w", step, err)
	}
	s.record(stats)

	s.Metrics.Steps++
	s.Metrics.CellUpdates += int64(s.geom.Domain.NumPts())
	logrus.Debugf("LB step %d", step)
	return nil
}

func (s *Simulator) accumulateStructureFactor() error {
	for v := range s.sfBuf {
		s.sfBuf[v] = s.hydro.Component(HydroUx+v, s.sfBuf[v])
	}
	return s.sf.Accumulate(s.sfBuf)
}

func (s *Simulator) record(st hydroStats) {
	if !s.trace.Wants(s.step) {
		return
	}
	p := s.TotalMomentum()
	s.trace.Record(trace.StepRecord{
		Step:       s.step,
		Time:       s.Time(),
		Mass:       s.TotalMass(),
		MomentumX:  p[0],
		MomentumY:  p[1],
		MomentumZ:  p[2],
		MinDensity: st.MinDensity,
		Amplitude:  s.ShearAmplitude(),
	})
}

func (s *Simulator) emit() error {
	if s.cfg.PlotInt <= 0 {
		return nil
	}
	fields := FieldSnapshot{
		Names:    append([]string(nil), HydroNames...),
		Field:    s.hydro,
		Geometry: s.geom,
		Step:     s.step,
		Time:     s.Time(),
	}
	if err := s.emitter.EmitFields(fields); err != nil {
		return fmt.Errorf("step %d: emit fields: %w", s.step, err)
	}
	spectrum := SpectrumSnapshot{
		Spectrum: s.sf.Snapshot(),
		Geometry: s.geom,
		Step:     s.step,
		Time:     s.Time(),
	}
	if err := s.emitter.EmitStructureFactor(spectrum); err != nil {
		return fmt.Errorf("step %d: emit structure factor: %w", s.step, err)
	}
	s.Metrics.Emissions++
	logrus.Infof("[step %05d] Emitted fields and structure factor (%d samples)", s.step, spectrum.Spectrum.Count)
	return nil
}

// StepCount returns the number of completed steps.
func (s *Simulator) StepCount() int { return s.step }

// Time returns the simulation time; the lattice time step is 1.
func (s *Simulator) Time() float64 { return float64(s.step) }

// Config returns the validated run configuration.
func (s *Simulator) Config() Config { return s.cfg }

// Geometry returns the periodic domain.
func (s *Simulator) Geometry() mesh.Geometry { return s.geom }

// Populations returns the current population field. It is replaced, not
// mutated, by the next step.
func (s *Simulator) Populations() *mesh.Field { return s.cur }

// Hydro returns the density and velocity field (components HydroRho..HydroUz).
func (s *Simulator) Hydro() *mesh.Field { return s.hydro }

// StructureFactor returns the running accumulator.
func (s *Simulator) StructureFactor() *structfact.Accumulator { return s.sf }

// Trace returns the step diagnostics recorded so far.
func (s *Simulator) Trace() *trace.SimulationTrace { return s.trace }

// TotalMass returns Σ f_i over every interior cell.
func (s *Simulator) TotalMass() float64 { return s.cur.SumAll() }

// TotalMomentum returns Σ f_i c_i over every interior cell.
func (s *Simulator) TotalMomentum() [3]float64 { return latticeMomentum(s.vs, s.cur) }

// ShearAmplitude projects u_y onto the initial mode: (2/N) Σ u_y sin(2πx/nx).
func (s *Simulator) ShearAmplitude() float64 {
	v := s.hydro.ValidBox()
	nx := float64(s.cfg.NX)
	var sum float64
	for z := v.Lo[2]; z <= v.Hi[2]; z++ {
		for y := v.Lo[1]; y <= v.Hi[1]; y++ {
			for x := v.Lo[0]; x <= v.Hi[0]; x++ {
				sum += s.hydro.At(x, y, z, HydroUy) * math.Sin(2*math.Pi*float64(x)/nx)
			}
		}
	}
	return 2 * sum / float64(v.NumPts())
}

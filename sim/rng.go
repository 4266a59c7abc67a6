package sim

import (
	"hash/fnv"
	"math/rand/v2"
	"sync"
)

// === SimulationKey ===

// SimulationKey uniquely identifies a reproducible simulation run.
// Two simulations with the same SimulationKey and identical configuration
// MUST produce bit-for-bit identical fields, whatever the worker count.
type SimulationKey int64

// NewSimulationKey creates a SimulationKey from a seed value.
func NewSimulationKey(seed int64) SimulationKey {
	return SimulationKey(seed)
}

// === Subsystem Constants ===

const (
	// SubsystemCollision is the RNG subsystem for thermal noise in collisions.
	SubsystemCollision = "collision"
)

// === Per-cell streams ===

// CellStream returns the random stream for one lattice cell at one step.
//
// Derivation: the PCG state is seeded with
//   - hi = mix(key XOR fnv1a64(subsystem)) XOR mix(step)
//   - lo = mix(cell)
//
// Streams are never shared, so kernels may draw from them on any goroutine in
// any order without changing results.
func (k SimulationKey) CellStream(subsystem string, step int, cell int64) *rand.Rand {
	hi, lo := cellSeed(k.subsystemSeed(subsystem), step, cell)
	return rand.New(rand.NewPCG(hi, lo))
}

// subsystemSeed is the step- and cell-independent part of a CellStream seed.
// Kernels compute it once rather than hashing the subsystem name per cell.
func (k SimulationKey) subsystemSeed(subsystem string) uint64 {
	return splitmix64(uint64(k.deriveSeed(subsystem)))
}

func cellSeed(base uint64, step int, cell int64) (hi, lo uint64) {
	return base ^ splitmix64(uint64(step)+0x632be59bd9b4e019), splitmix64(uint64(cell))
}

// cellRand is a reseedable CellStream. Kernels borrow one per cell from
// cellRandPool instead of allocating a generator each time.
type cellRand struct {
	src rand.PCG
	rng *rand.Rand
}

var cellRandPool = sync.Pool{New: func() any {
	c := &cellRand{}
	c.rng = rand.New(&c.src)
	return c
}}

// acquireCellRand returns a pooled generator positioned exactly where
// CellStream starts for the subsystem whose subsystemSeed is base.
// Release it with releaseCellRand.
func acquireCellRand(base uint64, step int, cell int64) *cellRand {
	c := cellRandPool.Get().(*cellRand)
	c.src.Seed(cellSeed(base, step, cell))
	return c
}

func releaseCellRand(c *cellRand) { cellRandPool.Put(c) }

// deriveSeed isolates subsystems: key XOR fnv1a64(name).
func (k SimulationKey) deriveSeed(name string) int64 {
	return int64(k) ^ fnv1a64(name)
}

// fnv1a64 computes a 64-bit FNV-1a hash of the input string.
func fnv1a64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}

// splitmix64 is the SplitMix64 finalizer; it spreads nearby integers across the
// whole 64-bit range.
func splitmix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}

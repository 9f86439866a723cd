package gaussian

import "sync"

// CubeType tags what a Cube's samples represent.
type CubeType int

const (
	CubeTypeUnset CubeType = iota
	CubeTypeMO
	CubeTypeElectronDensity
)

func (t CubeType) String() string {
	switch t {
	case CubeTypeMO:
		return "MO"
	case CubeTypeElectronDensity:
		return "ElectronDensity"
	default:
		return "Unset"
	}
}

// Cube is a regular 3-D grid: an origin and axis spacing in Ångström, a
// linear array of dimX*dimY*dimZ scalar samples, and a tag identifying what
// the samples represent. The embedded RWMutex is taken for write by an
// Evaluator for the duration of a computation; readers (e.g. a renderer)
// block until the computation has finished and released it, which happens
// before the completion callback runs.
type Cube struct {
	mu sync.RWMutex

	Origin  Vec3
	Spacing Vec3
	DimX    int
	DimY    int
	DimZ    int

	typ     CubeType
	samples []float64
}

// NewCube allocates a Cube of dimX*dimY*dimZ samples, all initially zero.
func NewCube(origin, spacing Vec3, dimX, dimY, dimZ int) *Cube {
	return &Cube{
		Origin:  origin,
		Spacing: spacing,
		DimX:    dimX,
		DimY:    dimY,
		DimZ:    dimZ,
		samples: make([]float64, dimX*dimY*dimZ),
	}
}

// Size returns the total number of samples, dimX*dimY*dimZ.
func (c *Cube) Size() int { return len(c.samples) }

// Position returns the Ångström position of sample i, decomposed row-major
// as origin + spacing ⊙ (ix, iy, iz).
func (c *Cube) Position(i int) Vec3 {
	iz := i % c.DimZ
	iy := (i / c.DimZ) % c.DimY
	ix := i / (c.DimY * c.DimZ)
	return Vec3{
		X: c.Origin.X + c.Spacing.X*float64(ix),
		Y: c.Origin.Y + c.Spacing.Y*float64(iy),
		Z: c.Origin.Z + c.Spacing.Z*float64(iz),
	}
}

// SetValue writes sample i. The contract documented alongside the
// Evaluator is that no two workers ever target the same index during one
// computation, so SetValue itself performs no per-sample synchronization
// beyond the outer write lock already held by the caller.
func (c *Cube) SetValue(i int, v float64) {
	c.samples[i] = v
}

// Value returns sample i. Callers should hold a read lock (via Lock) unless
// no computation can be in flight.
func (c *Cube) Value(i int) float64 { return c.samples[i] }

// SetCubeType sets the tag identifying what the samples represent.
func (c *Cube) SetCubeType(t CubeType) { c.typ = t }

// Type returns the current tag.
func (c *Cube) Type() CubeType { return c.typ }

// Lock returns the cube's read/write lock. An Evaluator takes it for write
// for the whole duration of a computation; readers such as renderers take
// it for read and block until the computation has finished and released
// the write lock.
func (c *Cube) Lock() *sync.RWMutex { return &c.mu }

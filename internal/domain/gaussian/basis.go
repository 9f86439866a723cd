package gaussian

import (
	"crypto/sha256"
	"encoding/binary"
	"math"
	"strconv"

	"github.com/turtacn/gaussgrid/pkg/errors"
)

// shell is a contracted Gaussian basis function on one atom.
type shell struct {
	atomIndex      int
	typ            AngularType
	firstPrimitive int
	numPrimitives  int
}

// DiagnosticSink receives one-line diagnostics the normalization pass emits
// for shells it cannot evaluate. GaussianBasis never depends on a concrete
// logging implementation; callers that want the diagnostics routed to a
// structured logger wrap one of their own as a DiagnosticSink.
type DiagnosticSink func(msg string)

// GaussianBasis is the authoritative in-memory form of a contracted Gaussian
// basis: shells, primitive exponents and contraction coefficients, their
// normalized form, the MO coefficient matrix and, optionally, a density
// matrix. Embeds Molecule since every shell refers to one of its atoms.
type GaussianBasis struct {
	Molecule

	shells []shell

	// Parallel dense arrays of raw primitives, contiguous per shell at
	// [firstPrimitive, firstPrimitive+numPrimitives).
	exponents []float64
	coeffs    []float64

	numMOs int

	// Derived by the normalization pass.
	moOffset     []int
	normOffset   []int
	normCoeff    []float64
	primitiveEnd []int

	// moMatrix is numMOs x numMOs, column-major: moMatrix[col*numMOs+row].
	moMatrix []float64

	// densityMatrix is numMOs x numMOs, symmetric, column-major. Nil until
	// setDensityMatrix is called.
	densityMatrix []float64
	hasDensity    bool

	normalized bool

	diag DiagnosticSink
}

// NewGaussianBasis returns an empty basis ready for the construction API.
func NewGaussianBasis() *GaussianBasis {
	return &GaussianBasis{diag: func(string) {}}
}

// SetDiagnosticSink installs the sink used for unsupported-angular-type and
// other one-line diagnostics emitted during normalization. Passing nil
// restores the no-op sink.
func (b *GaussianBasis) SetDiagnosticSink(sink DiagnosticSink) {
	if sink == nil {
		sink = func(string) {}
	}
	b.diag = sink
}

// NumMOs returns the current MO/AO column count.
func (b *GaussianBasis) NumMOs() int { return b.numMOs }

// NumAtoms returns the number of atoms in the embedded molecule.
func (b *GaussianBasis) NumAtoms() int { return b.numAtoms() }

// AtomPos returns the Ångström position of atom i.
func (b *GaussianBasis) AtomPos(i int) Vec3 { return b.atomPos(i) }

// AtomZ returns the atomic number of atom i.
func (b *GaussianBasis) AtomZ(i int) int { return b.atoms[i].Z }

// NumShells returns the number of shells appended so far.
func (b *GaussianBasis) NumShells() int { return len(b.shells) }

// IsNormalized reports whether the normalization pass has run since the
// last mutating call.
func (b *GaussianBasis) IsNormalized() bool { return b.normalized }

// HasDensityMatrix reports whether setDensityMatrix has been called.
func (b *GaussianBasis) HasDensityMatrix() bool { return b.hasDensity }

// ─────────────────────────────────────────────────────────────────────────
// Construction API (parser-facing)
// ─────────────────────────────────────────────────────────────────────────

// AddAtom forwards to the embedded Molecule and returns the new atom's index.
func (b *GaussianBasis) AddAtom(pos Vec3, z int) int {
	b.normalized = false
	return b.addAtom(pos, z)
}

// AddBasis appends a shell of the given angular type on atomIndex and
// returns its shell index. numMOs grows by componentsPerShell(typ); shells
// of an unrecognized type still contribute zero and remain present so the
// normalization pass can account for and diagnose them.
func (b *GaussianBasis) AddBasis(atomIndex int, typ AngularType) int {
	b.shells = append(b.shells, shell{atomIndex: atomIndex, typ: typ})
	b.numMOs += componentsPerShell(typ)
	b.normalized = false
	return len(b.shells) - 1
}

// AddGTO appends one primitive (c, α) to the most recently added shell.
// When the number of shells exceeds the number of recorded firstPrimitive
// entries, a new shell's primitive run begins at the current exponent count.
func (b *GaussianBasis) AddGTO(c, alpha float64) {
	s := len(b.shells) - 1
	if b.shells[s].numPrimitives == 0 {
		b.shells[s].firstPrimitive = len(b.exponents)
	}
	b.exponents = append(b.exponents, alpha)
	b.coeffs = append(b.coeffs, c)
	b.shells[s].numPrimitives++
	b.normalized = false
}

// AddMOs overwrites the MO matrix from a flat, column-major array. The
// matrix becomes numMOs x numMOs; columns beyond len(flat)/numMOs remain
// zero.
func (b *GaussianBasis) AddMOs(flat []float64) {
	b.moMatrix = make([]float64, b.numMOs*b.numMOs)
	if b.numMOs == 0 {
		b.normalized = false
		return
	}
	numCols := len(flat) / b.numMOs
	if numCols > b.numMOs {
		numCols = b.numMOs
	}
	for col := 0; col < numCols; col++ {
		for row := 0; row < b.numMOs; row++ {
			b.moMatrix[col*b.numMOs+row] = flat[col*b.numMOs+row]
		}
	}
	b.normalized = false
}

// SetDensityMatrix copies a symmetric density matrix of side numMOs, given
// as a flat column-major array of length numMOs*numMOs.
func (b *GaussianBasis) SetDensityMatrix(flat []float64) {
	b.densityMatrix = make([]float64, len(flat))
	copy(b.densityMatrix, flat)
	b.hasDensity = true
	b.normalized = false
}

// MOCoeff returns the MO matrix entry at (row, col).
func (b *GaussianBasis) MOCoeff(row, col int) float64 {
	return b.moMatrix[col*b.numMOs+row]
}

// DensityCoeff returns the density matrix entry at (row, col).
func (b *GaussianBasis) DensityCoeff(row, col int) float64 {
	return b.densityMatrix[col*b.numMOs+row]
}

// ─────────────────────────────────────────────────────────────────────────
// Normalization accessors, used by package kernel and package evalgrid.
// ─────────────────────────────────────────────────────────────────────────

func (b *GaussianBasis) shellType(s int) AngularType   { return b.shells[s].typ }
func (b *GaussianBasis) shellAtom(s int) int           { return b.shells[s].atomIndex }
func (b *GaussianBasis) shellMOOffset(s int) int       { return b.moOffset[s] }
func (b *GaussianBasis) shellNormOffset(s int) int     { return b.normOffset[s] }
func (b *GaussianBasis) shellPrimitiveEnd(s int) int   { return b.primitiveEnd[s+1] }
func (b *GaussianBasis) shellPrimitiveStart(s int) int { return b.shells[s].firstPrimitive }

// ShellType exports shellType for the kernel and evalgrid packages.
func (b *GaussianBasis) ShellType(s int) AngularType { return b.shellType(s) }

// ShellAtom exports shellAtom.
func (b *GaussianBasis) ShellAtom(s int) int { return b.shellAtom(s) }

// ShellMOOffset exports shellMOOffset.
func (b *GaussianBasis) ShellMOOffset(s int) int { return b.shellMOOffset(s) }

// ShellNormOffset exports shellNormOffset.
func (b *GaussianBasis) ShellNormOffset(s int) int { return b.shellNormOffset(s) }

// ShellPrimitiveRange returns the [start, end) primitive range for shell s
// within NormCoeff's primitive-major layout (end counted in primitives, not
// normalized-coefficient slots).
func (b *GaussianBasis) ShellPrimitiveRange(s int) (start, end int) {
	return b.shells[s].firstPrimitive, b.shells[s].firstPrimitive + b.shells[s].numPrimitives
}

// Exponent returns the raw exponent of primitive p.
func (b *GaussianBasis) Exponent(p int) float64 { return b.exponents[p] }

// RawCoeff returns the raw (un-normalized) contraction coefficient of primitive p.
func (b *GaussianBasis) RawCoeff(p int) float64 { return b.coeffs[p] }

// NormCoeff returns the flat normalized-coefficient array populated by
// Normalize.
func (b *GaussianBasis) NormCoeff() []float64 { return b.normCoeff }

// Clone returns an independent deep copy of the basis, including the MO and
// density matrices. Mutating the original afterward never perturbs the
// clone's evaluation outputs.
func (b *GaussianBasis) Clone() *GaussianBasis {
	out := &GaussianBasis{
		Molecule:   b.Molecule.clone(),
		shells:     append([]shell(nil), b.shells...),
		exponents:  append([]float64(nil), b.exponents...),
		coeffs:     append([]float64(nil), b.coeffs...),
		numMOs:     b.numMOs,
		normalized: b.normalized,
		hasDensity: b.hasDensity,
		diag:       b.diag,
	}
	out.moOffset = append([]int(nil), b.moOffset...)
	out.normOffset = append([]int(nil), b.normOffset...)
	out.normCoeff = append([]float64(nil), b.normCoeff...)
	out.primitiveEnd = append([]int(nil), b.primitiveEnd...)
	out.moMatrix = append([]float64(nil), b.moMatrix...)
	out.densityMatrix = append([]float64(nil), b.densityMatrix...)
	return out
}

// BasisFingerprint returns a sha256 content hash over the basis's shell
// layout, raw primitives and MO matrix. Two bases with identical
// fingerprints normalize to byte-identical NormCoeff arrays, which is what
// the optional coefficient cache keys on.
func BasisFingerprint(b *GaussianBasis) [32]byte {
	h := sha256.New()
	var buf [8]byte
	putInt := func(v int) {
		binary.LittleEndian.PutUint64(buf[:], uint64(int64(v)))
		h.Write(buf[:])
	}
	putFloat := func(v float64) {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
		h.Write(buf[:])
	}

	for _, s := range b.shells {
		putInt(s.atomIndex)
		putInt(int(s.typ))
	}
	for i := range b.exponents {
		putFloat(b.exponents[i])
		putFloat(b.coeffs[i])
	}
	for _, v := range b.moMatrix {
		putFloat(v)
	}

	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// ValidateForMO returns the AppError explaining why ComputeMO cannot
// proceed for stateIndex, or nil if the basis is ready.
func (b *GaussianBasis) ValidateForMO(stateIndex int) *errors.AppError {
	if len(b.shells) == 0 {
		return errors.New(errors.CodeBasisEmpty, "basis has no shells")
	}
	if stateIndex < 1 || stateIndex > b.numMOs {
		return errors.New(errors.CodeMOIndexOutOfRange, "state index out of range").
			WithDetail(itoaPair("stateIndex", stateIndex, "numMOs", b.numMOs))
	}
	return nil
}

// ValidateForDensity returns the AppError explaining why ComputeDensity
// cannot proceed, or nil if the basis is ready.
func (b *GaussianBasis) ValidateForDensity() *errors.AppError {
	if len(b.shells) == 0 {
		return errors.New(errors.CodeBasisEmpty, "basis has no shells")
	}
	if !b.hasDensity {
		return errors.New(errors.CodeDensityMatrixMissing, "setDensityMatrix was never called")
	}
	return nil
}

func itoaPair(k1 string, v1 int, k2 string, v2 int) string {
	return k1 + "=" + strconv.Itoa(v1) + ", " + k2 + "=" + strconv.Itoa(v2)
}

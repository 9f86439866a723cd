// Package gaussian is the in-memory representation of a contracted Gaussian
// basis set: atoms, shells, primitives, normalized coefficients, and the MO
// and density matrices derived from them.  It holds no knowledge of any file
// format; population is driven entirely by the construction API in basis.go,
// called by format-specific parsers that live outside this package.
package gaussian

// AngularType enumerates the angular-momentum classes a shell can carry.
// Only S, P, D and D5 are evaluated by the kernels in package kernel;
// SP, F and higher are recognized here (so parsers can still build a shell
// of that type) but contribute zero to every evaluation.
type AngularType int

const (
	S AngularType = iota
	SP
	P
	D
	D5
	F
	F7
	G
	G9
	H
	H11
	I
	I13
)

func (t AngularType) String() string {
	switch t {
	case S:
		return "S"
	case SP:
		return "SP"
	case P:
		return "P"
	case D:
		return "D"
	case D5:
		return "D5"
	case F:
		return "F"
	case F7:
		return "F7"
	case G:
		return "G"
	case G9:
		return "G9"
	case H:
		return "H"
	case H11:
		return "H11"
	case I:
		return "I"
	case I13:
		return "I13"
	default:
		return "UNKNOWN"
	}
}

// componentsPerShell returns the number of MO/AO columns a shell of this
// angular type contributes, per the table in the data model: S→1, P→3,
// SP→4, D→6 (Cartesian), D5→5. Unsupported types beyond D5 still reserve
// slots so that numMOs accounting matches the upstream program's MO matrix,
// even though the kernels never populate them.
func componentsPerShell(t AngularType) int {
	switch t {
	case S:
		return 1
	case P:
		return 3
	case SP:
		return 4
	case D:
		return 6
	case D5:
		return 5
	case F:
		return 10
	case F7:
		return 7
	case G:
		return 15
	case G9:
		return 9
	case H:
		return 21
	case H11:
		return 11
	case I:
		return 28
	case I13:
		return 13
	default:
		return 0
	}
}

// evaluated reports whether the kernels in package kernel implement this
// angular type. Only S, P, D (Cartesian) and D5 (spherical) have analytical
// kernels and normalization formulas; SP and F and higher are recognized so
// a shell of that type can still be built, but are left at zero per the
// Non-goal on arbitrary angular momentum.
func (t AngularType) evaluated() bool {
	switch t {
	case S, P, D, D5:
		return true
	default:
		return false
	}
}

// Evaluated reports whether the kernels implement this angular type.
func (t AngularType) Evaluated() bool { return t.evaluated() }

// ComponentsPerShell exports componentsPerShell for callers outside this
// package (the evaluator and loader façade need it for column bookkeeping).
func ComponentsPerShell(t AngularType) int { return componentsPerShell(t) }

// Physical constants. BohrToAngstrom is stored exactly as the upstream
// programs store it; AngstromToBohr is its reciprocal, computed once.
const (
	BohrToAngstrom = 0.529177249
	AngstromToBohr = 1.0 / BohrToAngstrom
)

// Vec3 is a 3-vector of doubles, used for both Ångström and Bohr positions.
type Vec3 struct {
	X, Y, Z float64
}

// Sub returns v - w.
func (v Vec3) Sub(w Vec3) Vec3 {
	return Vec3{v.X - w.X, v.Y - w.Y, v.Z - w.Z}
}

// Norm2 returns |v|^2.
func (v Vec3) Norm2() float64 {
	return v.X*v.X + v.Y*v.Y + v.Z*v.Z
}

// Scale returns v scaled by s.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

// Atom is a single nucleus: atomic number and position in Ångström.
// Atoms are immutable once appended to a Molecule.
type Atom struct {
	Z   int
	Pos Vec3
}

// Molecule is an ordered sequence of Atoms. Atoms are addressed by their
// zero-based insertion index; that index is the identity a Shell refers to.
type Molecule struct {
	atoms []Atom
}

// addAtom appends an atom at pos (Ångström) with atomic number z and
// returns its zero-based index.
func (m *Molecule) addAtom(pos Vec3, z int) int {
	m.atoms = append(m.atoms, Atom{Z: z, Pos: pos})
	return len(m.atoms) - 1
}

// numAtoms returns the number of atoms in the molecule.
func (m *Molecule) numAtoms() int {
	return len(m.atoms)
}

// atomPos returns the Ångström position of atom i.
func (m *Molecule) atomPos(i int) Vec3 {
	return m.atoms[i].Pos
}

func (m *Molecule) clone() Molecule {
	out := Molecule{atoms: make([]Atom, len(m.atoms))}
	copy(out.atoms, m.atoms)
	return out
}

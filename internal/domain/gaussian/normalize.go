package gaussian

import "math"

// Normalization constants from the authoritative table. Kept as package
// constants rather than computed at init time so there is no dynamic
// initialization on the hot path.
const (
	normS     = 0.71270547
	normP     = 1.425410941
	normD6    = 1.645922781 // xx, yy, zz
	normD6off = 2.850821881 // xy, xz, yz
)

// Normalize runs the one-time normalization pass described in the data
// model: for each shell in insertion order it computes
// numPrimitives * componentsPerShell(type) normalized coefficients,
// primitive-major and component-inner, and records moOffset/normOffset for
// every shell. Unsupported angular types reserve their MO columns, emit one
// diagnostic, and contribute no normalized coefficients.
//
// Normalize is idempotent: calling it twice without an intervening mutator
// call produces byte-identical normCoeff, moOffset and normOffset arrays.
func (b *GaussianBasis) Normalize() {
	b.normalizeWith(nil)
}

// ExpectedNormCoeffLen returns the length NormCoeff will have once Normalize
// runs, computed from shell structure alone. Callers with a cached
// normalized-coefficient array for this exact shell layout compare their
// cached length against this before trusting it with NormalizeCached.
func (b *GaussianBasis) ExpectedNormCoeffLen() int {
	n := 0
	for _, sh := range b.shells {
		if sh.typ.evaluated() {
			n += sh.numPrimitives * componentsPerShell(sh.typ)
		}
	}
	return n
}

// NormalizeCached behaves like Normalize but, when cached is non-nil and its
// length matches ExpectedNormCoeffLen, installs it directly as NormCoeff
// instead of recomputing every primitive's pow(alpha, ...) term. moOffset,
// normOffset and primitiveEnd are structural and always recomputed: they
// depend only on shell layout, never on coefficient values, so a cache hit
// skips exactly the work worth skipping and nothing else.
func (b *GaussianBasis) NormalizeCached(cached []float64) {
	if cached != nil && len(cached) != b.ExpectedNormCoeffLen() {
		cached = nil
	}
	b.normalizeWith(cached)
}

func (b *GaussianBasis) normalizeWith(cached []float64) {
	if b.normalized {
		return
	}

	numShells := len(b.shells)
	b.moOffset = make([]int, numShells)
	b.normOffset = make([]int, numShells)
	b.primitiveEnd = make([]int, numShells+1)
	if cached != nil {
		b.normCoeff = append([]float64(nil), cached...)
	} else {
		b.normCoeff = b.normCoeff[:0]
	}

	moCursor := 0
	primCursor := 0
	normCursor := 0
	for s := 0; s < numShells; s++ {
		sh := b.shells[s]
		b.moOffset[s] = moCursor
		b.normOffset[s] = normCursor
		b.primitiveEnd[s] = primCursor

		moCursor += componentsPerShell(sh.typ)
		primCursor = sh.firstPrimitive + sh.numPrimitives

		if !sh.typ.evaluated() {
			b.diag("gaussian: unsupported angular type " + sh.typ.String() + " on shell; contributes zero")
			continue
		}

		if cached != nil {
			normCursor += sh.numPrimitives * componentsPerShell(sh.typ)
			continue
		}

		for p := sh.firstPrimitive; p < sh.firstPrimitive+sh.numPrimitives; p++ {
			alpha := b.exponents[p]
			c := b.coeffs[p]
			b.pushNormalized(sh.typ, c, alpha)
		}
		normCursor = len(b.normCoeff)
	}
	b.primitiveEnd[numShells] = len(b.exponents)

	b.normalized = true
}

// pushNormalized appends the per-primitive normalized coefficients for one
// (type, c, alpha) onto normCoeff, following the exact per-type ordering
// in the normalization table.
func (b *GaussianBasis) pushNormalized(typ AngularType, c, alpha float64) {
	switch typ {
	case S:
		b.normCoeff = append(b.normCoeff, c*math.Pow(alpha, 0.75)*normS)

	case P:
		v := c * math.Pow(alpha, 1.25) * normP
		b.normCoeff = append(b.normCoeff, v, v, v)

	case D:
		v1 := c * math.Pow(alpha, 1.75) * normD6
		v2 := c * math.Pow(alpha, 1.75) * normD6off
		b.normCoeff = append(b.normCoeff, v1, v1, v1, v2, v2, v2)

	case D5:
		a7 := math.Pow(alpha, 7)
		d0 := c * math.Pow(2048*a7/(9*math.Pi*math.Pi*math.Pi), 0.25)
		d1 := c * math.Pow(2048*a7/(math.Pi*math.Pi*math.Pi), 0.25)
		d2p := c * math.Pow(128*a7/(math.Pi*math.Pi*math.Pi), 0.25)
		d2m := c * math.Pow(2048*a7/(math.Pi*math.Pi*math.Pi), 0.25)
		b.normCoeff = append(b.normCoeff, d0, d1, d1, d2p, d2m)
	}
}

// Package kernel implements the pure, per-shell, per-point analytical
// functions that compute either one MO contribution or a basis-value
// vector for the electron-density accumulation. Every function here is a
// pure function of (basis, shellIndex, delta, dr2[, moIndex]) — no kernel
// ever blocks or mutates shared state, which is what lets the Evaluator
// map them over grid points with no per-point synchronization.
package kernel

import (
	"math"

	"github.com/turtacn/gaussgrid/internal/domain/gaussian"
)

// smallCoeff is the threshold below which the small-coefficient shortcut
// skips touching primitives entirely; the result would round to zero
// regardless, so this is observable only in performance, never in results.
const smallCoeff = 1e-20

// allSmall reports whether every one of the n MO coefficients of a shell
// starting at row off is below smallCoeff for column moIndex.
func allSmall(b *gaussian.GaussianBasis, off, n, moIndex int) bool {
	for k := 0; k < n; k++ {
		if math.Abs(b.MOCoeff(off+k, moIndex)) >= smallCoeff {
			return false
		}
	}
	return true
}

// MOAtPoint returns shell s's contribution to psi_moIndex(r), where delta is
// r - R_atom(s) in Bohr and dr2 = |delta|^2. moIndex is the zero-based MO
// column, matching GaussianBasis.MOCoeff; callers holding a 1-based state
// index (as ComputeMO's public contract does) must subtract 1 first.
func MOAtPoint(b *gaussian.GaussianBasis, s int, delta gaussian.Vec3, dr2 float64, moIndex int) float64 {
	typ := b.ShellType(s)
	off := b.ShellMOOffset(s)

	switch typ {
	case gaussian.S:
		coeff := b.MOCoeff(off, moIndex)
		if math.Abs(coeff) < smallCoeff {
			return 0
		}
		return sKernel(b, s, dr2) * coeff

	case gaussian.P:
		if allSmall(b, off, 3, moIndex) {
			return 0
		}
		x, y, z := pKernel(b, s, dr2)
		return b.MOCoeff(off, moIndex)*delta.X*x +
			b.MOCoeff(off+1, moIndex)*delta.Y*y +
			b.MOCoeff(off+2, moIndex)*delta.Z*z

	case gaussian.D:
		if allSmall(b, off, 6, moIndex) {
			return 0
		}
		xx, yy, zz, xy, xz, yz := dKernel(b, s, dr2)
		return b.MOCoeff(off, moIndex)*delta.X*delta.X*xx +
			b.MOCoeff(off+1, moIndex)*delta.Y*delta.Y*yy +
			b.MOCoeff(off+2, moIndex)*delta.Z*delta.Z*zz +
			b.MOCoeff(off+3, moIndex)*delta.X*delta.Y*xy +
			b.MOCoeff(off+4, moIndex)*delta.X*delta.Z*xz +
			b.MOCoeff(off+5, moIndex)*delta.Y*delta.Z*yz

	case gaussian.D5:
		if allSmall(b, off, 5, moIndex) {
			return 0
		}
		d0, d1p, d1m, d2p, d2m := d5Kernel(b, s, dr2)
		return b.MOCoeff(off, moIndex)*(delta.Z*delta.Z-dr2)*d0 +
			b.MOCoeff(off+1, moIndex)*delta.X*delta.Z*d1p +
			b.MOCoeff(off+2, moIndex)*delta.Y*delta.Z*d1m +
			b.MOCoeff(off+3, moIndex)*(delta.X*delta.X-delta.Y*delta.Y)*d2p +
			b.MOCoeff(off+4, moIndex)*delta.X*delta.Y*d2m

	default:
		// Unsupported angular type: contributes zero. The normalization
		// pass already emitted a diagnostic for this shell.
		return 0
	}
}

// BasisValuesAtPoint writes shell s's basis-function values at this point
// into V, starting at V[moOffset(s)], without applying any MO coefficient.
// V is reused across shells by the density evaluator.
func BasisValuesAtPoint(b *gaussian.GaussianBasis, s int, delta gaussian.Vec3, dr2 float64, v []float64) {
	typ := b.ShellType(s)
	off := b.ShellMOOffset(s)

	switch typ {
	case gaussian.S:
		v[off] = sKernel(b, s, dr2)

	case gaussian.P:
		x, y, z := pKernel(b, s, dr2)
		v[off] = delta.X * x
		v[off+1] = delta.Y * y
		v[off+2] = delta.Z * z

	case gaussian.D:
		xx, yy, zz, xy, xz, yz := dKernel(b, s, dr2)
		v[off] = delta.X * delta.X * xx
		v[off+1] = delta.Y * delta.Y * yy
		v[off+2] = delta.Z * delta.Z * zz
		v[off+3] = delta.X * delta.Y * xy
		v[off+4] = delta.X * delta.Z * xz
		v[off+5] = delta.Y * delta.Z * yz

	case gaussian.D5:
		d0, d1p, d1m, d2p, d2m := d5Kernel(b, s, dr2)
		v[off] = (delta.Z*delta.Z - dr2) * d0
		v[off+1] = delta.X * delta.Z * d1p
		v[off+2] = delta.Y * delta.Z * d1m
		v[off+3] = (delta.X*delta.X - delta.Y*delta.Y) * d2p
		v[off+4] = delta.X * delta.Y * d2m

	default:
		n := gaussian.ComponentsPerShell(typ)
		for k := 0; k < n; k++ {
			v[off+k] = 0
		}
	}
}

// sKernel sums normC_j * exp(-alpha_j * dr2) over shell s's primitives.
func sKernel(b *gaussian.GaussianBasis, s int, dr2 float64) float64 {
	normOff := b.ShellNormOffset(s)
	start, end := b.ShellPrimitiveRange(s)
	sum := 0.0
	k := normOff
	for p := start; p < end; p++ {
		sum += b.NormCoeff()[k] * math.Exp(-b.Exponent(p)*dr2)
		k++
	}
	return sum
}

// pKernel sums the three per-component P accumulators over shell s's
// primitives; the three normalized coefficients per primitive are equal in
// value but distinct slots, matching the normalization layout.
func pKernel(b *gaussian.GaussianBasis, s int, dr2 float64) (x, y, z float64) {
	normOff := b.ShellNormOffset(s)
	start, end := b.ShellPrimitiveRange(s)
	nc := b.NormCoeff()
	k := normOff
	for p := start; p < end; p++ {
		e := math.Exp(-b.Exponent(p) * dr2)
		x += nc[k] * e
		y += nc[k+1] * e
		z += nc[k+2] * e
		k += 3
	}
	return
}

// dKernel sums the six Cartesian-D accumulators {xx, yy, zz, xy, xz, yz}.
func dKernel(b *gaussian.GaussianBasis, s int, dr2 float64) (xx, yy, zz, xy, xz, yz float64) {
	normOff := b.ShellNormOffset(s)
	start, end := b.ShellPrimitiveRange(s)
	nc := b.NormCoeff()
	k := normOff
	for p := start; p < end; p++ {
		e := math.Exp(-b.Exponent(p) * dr2)
		xx += nc[k] * e
		yy += nc[k+1] * e
		zz += nc[k+2] * e
		xy += nc[k+3] * e
		xz += nc[k+4] * e
		yz += nc[k+5] * e
		k += 6
	}
	return
}

// d5Kernel sums the five spherical-D5 accumulators {d0, d1+, d1-, d2+, d2-}.
func d5Kernel(b *gaussian.GaussianBasis, s int, dr2 float64) (d0, d1p, d1m, d2p, d2m float64) {
	normOff := b.ShellNormOffset(s)
	start, end := b.ShellPrimitiveRange(s)
	nc := b.NormCoeff()
	k := normOff
	for p := start; p < end; p++ {
		e := math.Exp(-b.Exponent(p) * dr2)
		d0 += nc[k] * e
		d1p += nc[k+1] * e
		d1m += nc[k+2] * e
		d2p += nc[k+3] * e
		d2m += nc[k+4] * e
		k += 5
	}
	return
}

// Density computes rho = sum_i D_ii*V_i^2 + 2*sum_{i<j} D_ij*V_i*V_j using
// only the lower triangle of the density matrix, exploiting its symmetry.
func Density(b *gaussian.GaussianBasis, v []float64) float64 {
	n := len(v)
	rho := 0.0
	for i := 0; i < n; i++ {
		rho += b.DensityCoeff(i, i) * v[i] * v[i]
		for j := 0; j < i; j++ {
			rho += 2 * b.DensityCoeff(i, j) * v[i] * v[j]
		}
	}
	return rho
}

// Package slater is a placeholder for the Slater-type-orbital engine. It
// exists only so the loader façade has a concrete type to return for the
// MOPAC aux format; its analytical kernels are a parallel concern with
// their own normalization constants and are out of scope for this module.
package slater

import "github.com/turtacn/gaussgrid/internal/domain/gaussian"

// Basis is the minimal, unimplemented Slater-basis counterpart to
// gaussian.GaussianBasis. It satisfies the same capability set the loader
// façade depends on so that callers can treat Gaussian and Slater bases
// polymorphically, per the design notes on basis-kind polymorphism.
type Basis struct {
	numMOs int
}

// New returns an empty Slater basis.
func New() *Basis { return &Basis{} }

// NumMOs returns the component count recorded so far. Always zero until
// the Slater engine is implemented.
func (b *Basis) NumMOs() int { return b.numMOs }

// Clone returns an independent copy.
func (b *Basis) Clone() *Basis { return &Basis{numMOs: b.numMOs} }

// ComputeMO is unimplemented; the Slater engine is out of scope.
func (b *Basis) ComputeMO(_ *gaussian.Cube, _ int, _ func()) bool { return false }

// ComputeDensity is unimplemented; the Slater engine is out of scope.
func (b *Basis) ComputeDensity(_ *gaussian.Cube, _ func()) bool { return false }

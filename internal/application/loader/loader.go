// Package loader implements the extension-based loader façade: the single
// entry point that accepts a file path and returns a populated basis,
// Gaussian or Slater, polymorphic behind the Basis capability interface.
// The format-specific parsers themselves are external collaborators,
// specified only through the Parser function type below; none ship with
// this module.
package loader

import (
	"context"
	"crypto/sha256"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/turtacn/gaussgrid/internal/application/evalgrid"
	"github.com/turtacn/gaussgrid/internal/domain/gaussian"
	"github.com/turtacn/gaussgrid/internal/domain/slater"
	"github.com/turtacn/gaussgrid/internal/infrastructure/database/postgres/basisstore"
)

// Format identifies the recognized upstream file formats.
type Format int

const (
	FormatUnknown Format = iota
	FormatFCHK
	FormatGAMESSUK
	FormatMOPACAux
	FormatMolden
)

// classify returns the Format matching path's suffix and true, or
// (FormatUnknown, false) if no priority class matches. The test is a
// case-insensitive substring match against the complete suffix, tried in
// priority order: fchk/fch/fck, gukout, aux, molden/mold/molf.
func classify(path string) (Format, bool) {
	suffix := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	switch {
	case containsAny(suffix, "fchk", "fch", "fck"):
		return FormatFCHK, true
	case strings.Contains(suffix, "gukout"):
		return FormatGAMESSUK, true
	case strings.Contains(suffix, "aux"):
		return FormatMOPACAux, true
	case containsAny(suffix, "molden", "mold", "molf"):
		return FormatMolden, true
	default:
		return FormatUnknown, false
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// MatchBasisSet returns a sibling file of path whose extension indicates a
// recognized format: path itself first, then its sibling files in
// readable-file order. It returns "" if none match.
func MatchBasisSet(path string) string {
	if _, ok := classify(path); ok {
		return path
	}

	dir := filepath.Dir(path)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	for _, name := range names {
		candidate := filepath.Join(dir, name)
		if _, ok := classify(candidate); ok {
			return candidate
		}
	}
	return ""
}

// Basis is the capability set shared by GaussianBasis and the Slater
// placeholder, matching the polymorphism the loader façade returns behind.
type Basis interface {
	NumMOs() int
	ComputeMO(cube *gaussian.Cube, stateIndex int, onComplete func()) bool
	ComputeDensity(cube *gaussian.Cube, onComplete func()) bool
}

// Parser drives the construction API of a fresh GaussianBasis from the
// upstream file at path. Parsers for FCHK, GAMESS-UK and Molden are
// external collaborators; none ship with this module. A nil entry in the
// registry is treated as a parser failure.
type Parser func(path string, b *gaussian.GaussianBasis) error

var gaussianParsers = map[Format]Parser{}

// RegisterGaussianParser installs fn as the parser for format. Intended to
// be called once at program startup by whichever package implements that
// format's parser.
func RegisterGaussianParser(format Format, fn Parser) {
	gaussianParsers[format] = fn
}

// gaussianBasis adapts *gaussian.GaussianBasis plus an Evaluator to the
// Basis capability interface.
type gaussianBasis struct {
	basis *gaussian.GaussianBasis
	eval  *evalgrid.Evaluator
}

func (g *gaussianBasis) NumMOs() int { return g.basis.NumMOs() }

func (g *gaussianBasis) ComputeMO(cube *gaussian.Cube, stateIndex int, onComplete func()) bool {
	return g.eval.ComputeMO(g.basis, cube, stateIndex, onComplete)
}

func (g *gaussianBasis) ComputeDensity(cube *gaussian.Cube, onComplete func()) bool {
	return g.eval.ComputeDensity(g.basis, cube, onComplete)
}

type slaterBasis struct {
	basis *slater.Basis
}

func (s *slaterBasis) NumMOs() int { return s.basis.NumMOs() }

func (s *slaterBasis) ComputeMO(cube *gaussian.Cube, stateIndex int, onComplete func()) bool {
	return s.basis.ComputeMO(cube, stateIndex, onComplete)
}

func (s *slaterBasis) ComputeDensity(cube *gaussian.Cube, onComplete func()) bool {
	return s.basis.ComputeDensity(cube, onComplete)
}

// LoadBasisSet is the loader façade's single entry point. It dispatches on
// path's suffix class: FCHK, GAMESS-UK and Molden instantiate a Gaussian
// basis and invoke the registered parser; MOPAC aux instantiates a Slater
// basis. It returns nil if no format matches or the matched parser fails
// or is unregistered. Ownership of the returned Basis transfers to the
// caller.
//
// store, if non-nil, is consulted before parsing: a hit keyed by path's
// content hash returns the stored basis without invoking a parser at all,
// and a miss persists the freshly parsed basis under that hash. store is
// strictly best-effort: a read or write failure is swallowed and the call
// falls through to normal parsing, never turning a would-have-succeeded
// load into a failure. Only the Gaussian formats consult store; MOPAC aux
// has no parser to skip.
func LoadBasisSet(path string, store *basisstore.Store, opts ...evalgrid.Option) Basis {
	format, ok := classify(path)
	if !ok {
		return nil
	}

	if format == FormatMOPACAux {
		return &slaterBasis{basis: slater.New()}
	}

	var fingerprint [32]byte
	haveFingerprint := false
	if store != nil {
		if raw, err := os.ReadFile(path); err == nil {
			fingerprint = sha256.Sum256(raw)
			haveFingerprint = true
			if cached, found, err := store.Get(context.Background(), fingerprint); err == nil && found {
				return &gaussianBasis{basis: cached, eval: evalgrid.New(opts...)}
			}
		}
	}

	parse, ok := gaussianParsers[format]
	if !ok || parse == nil {
		return nil
	}

	b := gaussian.NewGaussianBasis()
	if err := parse(path, b); err != nil {
		return nil
	}

	if store != nil && haveFingerprint {
		_ = store.Put(context.Background(), fingerprint, b)
	}

	return &gaussianBasis{basis: b, eval: evalgrid.New(opts...)}
}

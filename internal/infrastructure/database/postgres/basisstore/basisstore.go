// Package basisstore persists a GaussianBasis (its atoms, shells, raw
// primitives, MO matrix and density matrix; not its normalized
// coefficients) so that a basis
// parsed once from an upstream ab-initio output can be reloaded by content
// hash without re-parsing. Storage is PostgreSQL via jackc/pgx/v5; the
// schema is managed by golang-migrate alongside the rest of the platform's
// migrations.
package basisstore

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/turtacn/gaussgrid/internal/domain/gaussian"
	"github.com/turtacn/gaussgrid/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/gaussgrid/pkg/errors"
)

// shellRecord is the JSON-serialized form of one shell: its owning atom,
// angular type, and the slice of (exponent, coefficient) primitives.
type shellRecord struct {
	AtomIndex  int          `json:"atom_index"`
	Type       int          `json:"type"`
	Primitives [][2]float64 `json:"primitives"` // [alpha, c]
}

// atomRecord is the JSON-serialized form of one atom.
type atomRecord struct {
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
	Z  float64 `json:"z"`
	Z_ int     `json:"z_num"`
}

// document is the full JSON body stored alongside a basis's fingerprint.
type document struct {
	Atoms      []atomRecord  `json:"atoms"`
	Shells     []shellRecord `json:"shells"`
	NumMOs     int           `json:"num_mos"`
	MOFlat     []float64     `json:"mo_flat"`
	HasDensity bool          `json:"has_density"`
	Density    []float64     `json:"density,omitempty"`
}

// Store persists GaussianBasis values keyed by their content fingerprint.
type Store struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

// New wraps an existing connection pool. logger must not be nil.
func New(pool *pgxpool.Pool, logger logging.Logger) *Store {
	return &Store{pool: pool, logger: logger}
}

func keyOf(fp [32]byte) string {
	const hextable = "0123456789abcdef"
	out := make([]byte, 64)
	for i, b := range fp {
		out[i*2] = hextable[b>>4]
		out[i*2+1] = hextable[b&0x0f]
	}
	return string(out)
}

// Get returns the basis stored under fingerprint, or found=false if absent.
func (s *Store) Get(ctx context.Context, fingerprint [32]byte) (basis *gaussian.GaussianBasis, found bool, err error) {
	var raw []byte
	row := s.pool.QueryRow(ctx, `SELECT body FROM bases WHERE fingerprint = $1`, keyOf(fingerprint))
	if scanErr := row.Scan(&raw); scanErr != nil {
		if scanErr == pgx.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, errors.Wrap(scanErr, errors.CodeDBConnectionError, "basisstore: query failed")
	}

	var doc document
	if jsonErr := json.Unmarshal(raw, &doc); jsonErr != nil {
		return nil, false, errors.Wrap(jsonErr, errors.CodeStoreQueryError, "basisstore: corrupt stored basis")
	}
	return doc.toBasis(), true, nil
}

// Put persists basis under its content fingerprint, replacing any existing
// entry. The key is whatever fingerprint the caller supplies; the loader
// façade uses the sha256 of the upstream file's bytes.
func (s *Store) Put(ctx context.Context, fingerprint [32]byte, basis *gaussian.GaussianBasis) error {
	doc := documentFrom(basis)
	raw, err := json.Marshal(doc)
	if err != nil {
		return errors.Wrap(err, errors.CodeStoreQueryError, "basisstore: marshal failed")
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO bases (fingerprint, body)
		VALUES ($1, $2)
		ON CONFLICT (fingerprint) DO UPDATE SET body = EXCLUDED.body
	`, keyOf(fingerprint), raw)
	if err != nil {
		return errors.Wrap(err, errors.CodeDBConnectionError, "basisstore: insert failed")
	}

	s.logger.Debug("basisstore: persisted basis", logging.String("fingerprint", keyOf(fingerprint)[:16]))
	return nil
}

// Delete removes the entry for fingerprint, if any.
func (s *Store) Delete(ctx context.Context, fingerprint [32]byte) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM bases WHERE fingerprint = $1`, keyOf(fingerprint))
	if err != nil {
		return errors.Wrap(err, errors.CodeDBConnectionError, "basisstore: delete failed")
	}
	return nil
}

func documentFrom(b *gaussian.GaussianBasis) document {
	doc := document{
		NumMOs:     b.NumMOs(),
		HasDensity: b.HasDensityMatrix(),
	}

	for i := 0; i < b.NumAtoms(); i++ {
		pos := b.AtomPos(i)
		doc.Atoms = append(doc.Atoms, atomRecord{X: pos.X, Y: pos.Y, Z: pos.Z, Z_: b.AtomZ(i)})
	}

	for s := 0; s < b.NumShells(); s++ {
		start, end := b.ShellPrimitiveRange(s)
		rec := shellRecord{
			AtomIndex: b.ShellAtom(s),
			Type:      int(b.ShellType(s)),
		}
		for p := start; p < end; p++ {
			rec.Primitives = append(rec.Primitives, [2]float64{b.Exponent(p), b.RawCoeff(p)})
		}
		doc.Shells = append(doc.Shells, rec)
	}

	numBasisFuncs := 0
	for s := 0; s < b.NumShells(); s++ {
		numBasisFuncs += gaussian.ComponentsPerShell(b.ShellType(s))
	}
	if doc.NumMOs > 0 && numBasisFuncs > 0 {
		doc.MOFlat = make([]float64, numBasisFuncs*doc.NumMOs)
		idx := 0
		for col := 0; col < doc.NumMOs; col++ {
			for row := 0; row < numBasisFuncs; row++ {
				doc.MOFlat[idx] = b.MOCoeff(row, col)
				idx++
			}
		}
	}
	if doc.HasDensity && numBasisFuncs > 0 {
		doc.Density = make([]float64, numBasisFuncs*numBasisFuncs)
		idx := 0
		for col := 0; col < numBasisFuncs; col++ {
			for row := 0; row < numBasisFuncs; row++ {
				doc.Density[idx] = b.DensityCoeff(row, col)
				idx++
			}
		}
	}
	return doc
}

func (doc *document) toBasis() *gaussian.GaussianBasis {
	b := gaussian.NewGaussianBasis()
	for _, a := range doc.Atoms {
		b.AddAtom(gaussian.Vec3{X: a.X, Y: a.Y, Z: a.Z}, a.Z_)
	}
	for _, rec := range doc.Shells {
		b.AddBasis(rec.AtomIndex, gaussian.AngularType(rec.Type))
		for _, prim := range rec.Primitives {
			b.AddGTO(prim[1], prim[0])
		}
	}
	if len(doc.MOFlat) > 0 {
		b.AddMOs(doc.MOFlat)
	}
	if doc.HasDensity {
		b.SetDensityMatrix(doc.Density)
	}
	return b
}

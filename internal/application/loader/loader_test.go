package loader_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/gaussgrid/internal/application/loader"
	"github.com/turtacn/gaussgrid/internal/domain/gaussian"
)

func TestMatchBasisSet_DirectMatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "water.fchk")
	require.NoError(t, os.WriteFile(path, []byte("dummy"), 0o644))

	assert.Equal(t, path, loader.MatchBasisSet(path))
}

func TestMatchBasisSet_FindsSiblingByPriority(t *testing.T) {
	dir := t.TempDir()
	unrelated := filepath.Join(dir, "water.log")
	molden := filepath.Join(dir, "water.molden")
	require.NoError(t, os.WriteFile(unrelated, []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(molden, []byte("x"), 0o644))

	got := loader.MatchBasisSet(unrelated)
	assert.Equal(t, molden, got)
}

func TestMatchBasisSet_NoneFoundReturnsEmpty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "water.log")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	assert.Equal(t, "", loader.MatchBasisSet(path))
}

func TestLoadBasisSet_UnrecognizedExtensionReturnsNil(t *testing.T) {
	got := loader.LoadBasisSet("water.log", nil)
	assert.Nil(t, got)
}

func TestLoadBasisSet_MOPACAuxReturnsSlaterBasis(t *testing.T) {
	got := loader.LoadBasisSet("water.aux", nil)
	require.NotNil(t, got)
	assert.Equal(t, 0, got.NumMOs())
}

func TestLoadBasisSet_UnregisteredParserReturnsNil(t *testing.T) {
	got := loader.LoadBasisSet("nobodyregistered.gukout", nil)
	assert.Nil(t, got)
}

func TestLoadBasisSet_ParserFailureReturnsNil(t *testing.T) {
	loader.RegisterGaussianParser(loader.FormatFCHK, func(path string, b *gaussian.GaussianBasis) error {
		return assert.AnError
	})

	got := loader.LoadBasisSet("broken.fchk", nil)
	assert.Nil(t, got)
}

func TestLoadBasisSet_SuccessfulParseReturnsUsableBasis(t *testing.T) {
	loader.RegisterGaussianParser(loader.FormatMolden, func(path string, b *gaussian.GaussianBasis) error {
		a := b.AddAtom(gaussian.Vec3{}, 1)
		b.AddBasis(a, gaussian.S)
		b.AddGTO(0.4, 1.2)
		b.AddMOs([]float64{1.0})
		return nil
	})

	got := loader.LoadBasisSet("molecule.molden", nil)
	require.NotNil(t, got)
	assert.Equal(t, 1, got.NumMOs())

	cube := gaussian.NewCube(gaussian.Vec3{}, gaussian.Vec3{X: 1, Y: 1, Z: 1}, 1, 1, 1)
	done := make(chan struct{})
	ok := got.ComputeMO(cube, 1, func() { close(done) })
	assert.True(t, ok)
	<-done
}

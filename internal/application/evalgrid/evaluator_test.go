package evalgrid_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/gaussgrid/internal/application/evalgrid"
	"github.com/turtacn/gaussgrid/internal/domain/gaussian"
)

func singleSShellBasis() *gaussian.GaussianBasis {
	b := gaussian.NewGaussianBasis()
	a := b.AddAtom(gaussian.Vec3{}, 1)
	b.AddBasis(a, gaussian.S)
	b.AddGTO(0.4, 1.2)
	b.AddMOs([]float64{1.0})
	return b
}

func waitForComplete(t *testing.T) (func(), <-chan struct{}) {
	t.Helper()
	done := make(chan struct{})
	var once sync.Once
	return func() { once.Do(func() { close(done) }) }, done
}

func requireDone(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("computation did not complete in time")
	}
}

func TestComputeMO_PopulatesEveryCubeSample(t *testing.T) {
	b := singleSShellBasis()
	cube := gaussian.NewCube(gaussian.Vec3{}, gaussian.Vec3{X: 0.5, Y: 0.5, Z: 0.5}, 2, 2, 2)
	e := evalgrid.New(evalgrid.WithWorkerPoolSize(2))

	onComplete, done := waitForComplete(t)
	ok := e.ComputeMO(b, cube, 1, onComplete)
	require.True(t, ok)
	requireDone(t, done)

	assert.Equal(t, gaussian.CubeTypeMO, cube.Type())
	nonZero := 0
	for i := 0; i < cube.Size(); i++ {
		if cube.Value(i) != 0 {
			nonZero++
		}
	}
	assert.Greater(t, nonZero, 0)
}

func TestComputeMO_InvalidStateIndexReturnsFalseWithoutTouchingCube(t *testing.T) {
	b := singleSShellBasis()
	cube := gaussian.NewCube(gaussian.Vec3{}, gaussian.Vec3{X: 1, Y: 1, Z: 1}, 1, 1, 1)
	e := evalgrid.New()

	ok := e.ComputeMO(b, cube, 7, nil)
	assert.False(t, ok)
	assert.Equal(t, gaussian.CubeTypeUnset, cube.Type())
}

func TestComputeDensity_RequiresDensityMatrix(t *testing.T) {
	b := singleSShellBasis()
	cube := gaussian.NewCube(gaussian.Vec3{}, gaussian.Vec3{X: 1, Y: 1, Z: 1}, 1, 1, 1)
	e := evalgrid.New()

	ok := e.ComputeDensity(b, cube, nil)
	assert.False(t, ok)
}

func TestComputeDensity_PopulatesCube(t *testing.T) {
	b := singleSShellBasis()
	b.SetDensityMatrix([]float64{2.0})
	cube := gaussian.NewCube(gaussian.Vec3{}, gaussian.Vec3{X: 0.5, Y: 0.5, Z: 0.5}, 2, 2, 2)
	e := evalgrid.New()

	onComplete, done := waitForComplete(t)
	ok := e.ComputeDensity(b, cube, onComplete)
	require.True(t, ok)
	requireDone(t, done)
	assert.Equal(t, gaussian.CubeTypeElectronDensity, cube.Type())
}

type fakeBus struct {
	mu       sync.Mutex
	kinds    []string
	failWith error
}

func (f *fakeBus) PublishCubeReady(kind string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.kinds = append(f.kinds, kind)
	return f.failWith
}

func TestComputeMO_PublishesCompletionEventWhenBusConfigured(t *testing.T) {
	b := singleSShellBasis()
	cube := gaussian.NewCube(gaussian.Vec3{}, gaussian.Vec3{X: 1, Y: 1, Z: 1}, 1, 1, 1)
	bus := &fakeBus{}
	e := evalgrid.New(evalgrid.WithCompletionBus(bus))

	onComplete, done := waitForComplete(t)
	e.ComputeMO(b, cube, 1, onComplete)
	requireDone(t, done)

	bus.mu.Lock()
	defer bus.mu.Unlock()
	assert.Equal(t, []string{"mo"}, bus.kinds)
}

func TestComputeMO_BusFailureNeverBlocksOnComplete(t *testing.T) {
	b := singleSShellBasis()
	cube := gaussian.NewCube(gaussian.Vec3{}, gaussian.Vec3{X: 1, Y: 1, Z: 1}, 1, 1, 1)
	bus := &fakeBus{failWith: assert.AnError}
	e := evalgrid.New(evalgrid.WithCompletionBus(bus))

	onComplete, done := waitForComplete(t)
	e.ComputeMO(b, cube, 1, onComplete)
	requireDone(t, done)
}

type fakeNormCache struct {
	mu      sync.Mutex
	entries map[[32]byte][]float64
	gets    int
	sets    int
}

func newFakeNormCache() *fakeNormCache {
	return &fakeNormCache{entries: make(map[[32]byte][]float64)}
}

func (c *fakeNormCache) Get(_ context.Context, fp [32]byte) ([]float64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	v, ok := c.entries[fp]
	return v, ok
}

func (c *fakeNormCache) Set(_ context.Context, fp [32]byte, coeffs []float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	c.entries[fp] = append([]float64(nil), coeffs...)
}

func TestComputeMO_NormCacheMissThenHitConverge(t *testing.T) {
	cache := newFakeNormCache()

	first := singleSShellBasis()
	cube1 := gaussian.NewCube(gaussian.Vec3{}, gaussian.Vec3{X: 1, Y: 1, Z: 1}, 1, 1, 1)
	e := evalgrid.New(evalgrid.WithNormCache(cache))

	done1, wait1 := waitForComplete(t)
	e.ComputeMO(first, cube1, 1, done1)
	requireDone(t, wait1)
	assert.Equal(t, 1, cache.sets)

	second := singleSShellBasis()
	cube2 := gaussian.NewCube(gaussian.Vec3{}, gaussian.Vec3{X: 1, Y: 1, Z: 1}, 1, 1, 1)

	done2, wait2 := waitForComplete(t)
	e.ComputeMO(second, cube2, 1, done2)
	requireDone(t, wait2)

	assert.Equal(t, cube1.Value(0), cube2.Value(0))
	assert.GreaterOrEqual(t, cache.gets, 1)
}

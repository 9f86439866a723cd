// Package evalgrid drives the parallel map-over-grid-points evaluation of a
// GaussianBasis onto a Cube. It is the only caller in this module that
// holds a Cube's write lock; the concurrency shape — per-item goroutine
// gated by a buffered-channel semaphore, collected by a WaitGroup — mirrors
// the generic batch-processing engine used elsewhere in this codebase,
// simplified because kernels have no error return, no retry and no
// circuit breaker.
package evalgrid

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/turtacn/gaussgrid/internal/domain/gaussian"
	"github.com/turtacn/gaussgrid/internal/domain/gaussian/kernel"
)

// Logger is the minimal structured-logging contract evalgrid depends on.
// Callers inject an adapter around whatever concrete logger the rest of the
// application uses; evalgrid itself never imports a logging library.
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...interface{}) {}
func (noopLogger) Info(string, ...interface{})  {}
func (noopLogger) Warn(string, ...interface{})  {}
func (noopLogger) Error(string, ...interface{}) {}

// Metrics is the minimal metrics contract evalgrid depends on.
type Metrics interface {
	ObserveEvaluation(kind string, points int, durationSeconds float64)
	IncUnsupportedShell(angularType string)
}

type noopMetrics struct{}

func (noopMetrics) ObserveEvaluation(string, int, float64) {}
func (noopMetrics) IncUnsupportedShell(string)             {}

// CompletionBus is the optional distributed-completion publisher
// (evalbus). A nil bus simply means no event is published; the in-process
// callback always fires.
type CompletionBus interface {
	PublishCubeReady(kind string) error
}

// NormCache is the optional normalized-coefficient cache (coeffcache). A nil
// cache means every ComputeMO/ComputeDensity call normalizes from scratch.
type NormCache interface {
	Get(ctx context.Context, fingerprint [32]byte) (coeffs []float64, found bool)
	Set(ctx context.Context, fingerprint [32]byte, coeffs []float64)
}

// config holds all tunables for an Evaluator.
type config struct {
	workerPoolSize int
	metrics        Metrics
	logger         Logger
	bus            CompletionBus
	normCache      NormCache
}

func defaultConfig() *config {
	return &config{
		workerPoolSize: runtime.NumCPU(),
		metrics:        noopMetrics{},
		logger:         noopLogger{},
	}
}

// Option configures an Evaluator.
type Option func(*config)

// WithWorkerPoolSize sets the number of grid points evaluated concurrently.
// Values <= 0 are ignored.
func WithWorkerPoolSize(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.workerPoolSize = n
		}
	}
}

// WithMetrics injects a metrics collector.
func WithMetrics(m Metrics) Option {
	return func(c *config) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithLogger injects a logger.
func WithLogger(l Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithCompletionBus injects the optional "cube ready" event publisher.
func WithCompletionBus(b CompletionBus) Option {
	return func(c *config) {
		c.bus = b
	}
}

// WithNormCache injects the optional normalized-coefficient cache. Before
// every normalization pass the Evaluator looks up the basis's fingerprint in
// cache; on a hit it installs the cached coefficients and skips the
// pow-heavy recomputation, on a miss it normalizes and then populates cache.
func WithNormCache(cache NormCache) Option {
	return func(c *config) {
		c.normCache = cache
	}
}

// normalize runs b's normalization pass, consulting the Evaluator's
// NormCache first when one is configured and b isn't already normalized.
func (e *Evaluator) normalize(b *gaussian.GaussianBasis) {
	if e.cfg.normCache == nil || b.IsNormalized() {
		b.Normalize()
		return
	}

	fp := gaussian.BasisFingerprint(b)
	cached, found := e.cfg.normCache.Get(context.Background(), fp)
	if found {
		b.NormalizeCached(cached)
		return
	}

	b.Normalize()
	e.cfg.normCache.Set(context.Background(), fp, b.NormCoeff())
}

// Evaluator is the parallel driver described in the component design: it
// takes a Cube's write lock, performs a one-time normalization pass, maps
// kernels over all grid points in a bounded worker pool, then releases the
// lock and signals completion.
type Evaluator struct {
	cfg *config
}

// New constructs an Evaluator with the supplied options.
func New(opts ...Option) *Evaluator {
	cfg := defaultConfig()
	for _, o := range opts {
		o(cfg)
	}
	return &Evaluator{cfg: cfg}
}

// atomBohr precomputes every atom's position in Bohr, once per dispatch —
// reused by every grid point's delta/dr2 precomputation.
func atomBohr(b *gaussian.GaussianBasis) []gaussian.Vec3 {
	n := b.NumAtoms()
	out := make([]gaussian.Vec3, n)
	for i := 0; i < n; i++ {
		out[i] = b.AtomPos(i).Scale(gaussian.AngstromToBohr)
	}
	return out
}

// ComputeMO computes psi_stateIndex(r) at every point of cube and writes
// the result via cube.SetValue. It returns false without taking the cube's
// lock if the basis is empty or stateIndex is out of [1, numMOs].
// Completion is asynchronous: onComplete, if non-nil, is invoked exactly
// once after every worker has returned and the write lock has been
// released, satisfying the happens-before contract for any reader that
// waits on it.
func (e *Evaluator) ComputeMO(b *gaussian.GaussianBasis, cube *gaussian.Cube, stateIndex int, onComplete func()) bool {
	if err := b.ValidateForMO(stateIndex); err != nil {
		e.cfg.logger.Error("evalgrid: computeMO cannot proceed",
			"code", err.Code.String(), "message", err.Message)
		return false
	}

	e.normalize(b)

	lock := cube.Lock()
	lock.Lock()
	cube.SetCubeType(gaussian.CubeTypeMO)

	go func() {
		start := time.Now()
		bohr := atomBohr(b)
		e.mapPoints(cube, func(i int) {
			r := cube.Position(i).Scale(gaussian.AngstromToBohr)
			sum := 0.0
			for s := 0; s < b.NumShells(); s++ {
				a := b.ShellAtom(s)
				delta := r.Sub(bohr[a])
				dr2 := delta.Norm2()
				sum += kernel.MOAtPoint(b, s, delta, dr2, stateIndex-1)
			}
			cube.SetValue(i, sum)
		})
		lock.Unlock()

		e.cfg.metrics.ObserveEvaluation("mo", cube.Size(), time.Since(start).Seconds())
		if e.cfg.bus != nil {
			if err := e.cfg.bus.PublishCubeReady("mo"); err != nil {
				e.cfg.logger.Warn("evalgrid: completion bus publish failed", "error", err.Error())
			}
		}
		if onComplete != nil {
			onComplete()
		}
	}()

	return true
}

// ComputeDensity computes the total electron density rho(r) at every point
// of cube. It returns false without taking the cube's lock if the basis is
// empty or no density matrix has been installed via SetDensityMatrix.
func (e *Evaluator) ComputeDensity(b *gaussian.GaussianBasis, cube *gaussian.Cube, onComplete func()) bool {
	if err := b.ValidateForDensity(); err != nil {
		e.cfg.logger.Error("evalgrid: computeDensity cannot proceed",
			"code", err.Code.String(), "message", err.Message)
		return false
	}

	e.normalize(b)

	lock := cube.Lock()
	lock.Lock()
	cube.SetCubeType(gaussian.CubeTypeElectronDensity)

	numMOs := b.NumMOs()

	go func() {
		start := time.Now()
		bohr := atomBohr(b)
		e.mapPoints(cube, func(i int) {
			r := cube.Position(i).Scale(gaussian.AngstromToBohr)
			v := make([]float64, numMOs)
			for s := 0; s < b.NumShells(); s++ {
				a := b.ShellAtom(s)
				delta := r.Sub(bohr[a])
				dr2 := delta.Norm2()
				kernel.BasisValuesAtPoint(b, s, delta, dr2, v)
			}
			cube.SetValue(i, kernel.Density(b, v))
		})
		lock.Unlock()

		e.cfg.metrics.ObserveEvaluation("density", cube.Size(), time.Since(start).Seconds())
		if e.cfg.bus != nil {
			if err := e.cfg.bus.PublishCubeReady("density"); err != nil {
				e.cfg.logger.Warn("evalgrid: completion bus publish failed", "error", err.Error())
			}
		}
		if onComplete != nil {
			onComplete()
		}
	}()

	return true
}

// mapPoints dispatches fn(i) for every i in [0, cube.Size()), bounded by
// the evaluator's worker pool size via a buffered-channel semaphore. Writes
// from different workers target disjoint cube indices, so no per-sample
// synchronization is needed beyond the caller's write lock.
func (e *Evaluator) mapPoints(cube *gaussian.Cube, fn func(i int)) {
	n := cube.Size()
	sem := make(chan struct{}, e.cfg.workerPoolSize)
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		sem <- struct{}{}
		go func(idx int) {
			defer wg.Done()
			defer func() { <-sem }()
			fn(idx)
		}(i)
	}
	wg.Wait()
}

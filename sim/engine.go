package sim

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"sync"

	"github.com/Starland9/sand-simulation/particle"
	"github.com/Starland9/sand-simulation/systems"
	"github.com/Starland9/sand-simulation/telemetry"
)

// Options configures a new engine.
type Options struct {
	Params      systems.Params
	Profiles    particle.Profiles
	Emitter     systems.Emitter
	Seed        int64
	StatsWindow float64                  // seconds per stats window, 0 disables
	Perf        *telemetry.PerfCollector // optional phase timing
}

// Engine steps the simulation. Step must be called from one goroutine at
// a time; command methods and ReadSnapshot are safe to call from others.
// Commands take effect at the start of the next frame, never mid-step.
type Engine struct {
	params   systems.Params
	profiles particle.Profiles
	store    *particle.Store
	grid     *systems.Grid
	collider *systems.Collider
	emitter  systems.Emitter
	rng      *rand.Rand
	seed     int64
	parallel *parallelState
	perf     *telemetry.PerfCollector

	tick    uint64
	time    float64
	playing bool

	spawnBuf []systems.SpawnRequest

	cmdMu   sync.Mutex
	pending []func(*Engine)

	snapMu sync.RWMutex
	snap   Snapshot

	counters    telemetry.Counters
	statsWindow float64
	windowStart float64
	lastStats   telemetry.WindowStats
	haveStats   bool
	statsMu     sync.Mutex
}

// New builds an engine from validated options.
func New(opts Options) (*Engine, error) {
	if err := opts.Params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}
	if err := opts.Profiles.Validate(); err != nil {
		return nil, fmt.Errorf("invalid profiles: %w", err)
	}

	e := &Engine{
		params:      opts.Params,
		profiles:    opts.Profiles,
		store:       particle.NewStore(opts.Params.MaxParticles, opts.Params.CapacityPolicy),
		collider:    systems.NewCollider(),
		emitter:     opts.Emitter,
		rng:         rand.New(rand.NewSource(opts.Seed)),
		seed:        opts.Seed,
		parallel:    newParallelState(),
		perf:        opts.Perf,
		playing:     true,
		statsWindow: opts.StatsWindow,
	}
	e.grid = systems.NewGrid(e.params.BoundsMin, e.params.BoundsMax, e.cellSize())
	e.publish()
	return e, nil
}

// Close shuts down the worker pool.
func (e *Engine) Close() {
	e.parallel.stopWorkers()
}

func (e *Engine) cellSize() float32 {
	return 2 * e.profiles.MaxRadius()
}

// Tick returns the number of completed frames.
func (e *Engine) Tick() uint64 { return e.tick }

// Time returns the accumulated simulation time in seconds.
func (e *Engine) Time() float64 { return e.time }

// Count returns the live particle count.
func (e *Engine) Count() int { return e.store.Len() }

// Profiles returns the current material table.
func (e *Engine) Profiles() particle.Profiles { return e.profiles }

// Params returns the current global parameters.
func (e *Engine) Params() systems.Params { return e.params }

// EmitterState returns the current emitter settings.
func (e *Engine) EmitterState() systems.Emitter { return e.emitter }

// queue registers a command to run at the next frame boundary.
func (e *Engine) queue(fn func(*Engine)) {
	e.cmdMu.Lock()
	e.pending = append(e.pending, fn)
	e.cmdMu.Unlock()
}

// TogglePlay pauses or resumes physics stepping.
func (e *Engine) TogglePlay() {
	e.queue(func(e *Engine) { e.playing = !e.playing })
}

// ToggleEmitter flips the continuous emitter on or off.
func (e *Engine) ToggleEmitter() {
	e.queue(func(e *Engine) { e.emitter.Enabled = !e.emitter.Enabled })
}

// Reset clears all particles and reseeds the random stream, so a reset
// run replays identically to a fresh one.
func (e *Engine) Reset() {
	e.queue(func(e *Engine) { e.reset() })
}

func (e *Engine) reset() {
	e.store.Clear()
	e.store.Compact()
	e.emitter.ResetCarry()
	e.rng = rand.New(rand.NewSource(e.seed))
	e.tick = 0
	e.time = 0
	e.windowStart = 0
	e.counters.Reset()
}

// Burst emits count particles from the emitter position immediately at
// the next frame boundary.
func (e *Engine) Burst(count int) {
	e.queue(func(e *Engine) {
		e.spawnBuf = e.emitter.Burst(e.spawnBuf[:0], count, e.rng)
		e.spawnAll(e.spawnBuf)
	})
}

// Rain scatters count particles of the emitter's material across the top
// of the simulation box.
func (e *Engine) Rain(count int) {
	e.queue(func(e *Engine) {
		min, max := e.params.BoundsMin, e.params.BoundsMax
		e.spawnBuf = e.spawnBuf[:0]
		for i := 0; i < count; i++ {
			pos := particle.V3(
				min.X+e.rng.Float32()*(max.X-min.X),
				max.Y-1,
				min.Z+e.rng.Float32()*(max.Z-min.Z),
			)
			e.spawnBuf = append(e.spawnBuf, systems.SpawnRequest{
				Type: e.emitter.Material,
				Pos:  pos,
			})
		}
		e.spawnAll(e.spawnBuf)
	})
}

// SetEmitter replaces the emitter settings. The carried fraction restarts
// at zero.
func (e *Engine) SetEmitter(em systems.Emitter) {
	e.queue(func(e *Engine) {
		em.ResetCarry()
		e.emitter = em
	})
}

// ApplyParams validates and installs a new parameter set. On error the
// engine keeps the previous parameters untouched.
func (e *Engine) ApplyParams(p systems.Params) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("invalid parameters: %w", err)
	}
	e.queue(func(e *Engine) {
		e.params = p
		e.store.SetCapacity(p.MaxParticles, p.CapacityPolicy)
		e.grid.Reset(p.BoundsMin, p.BoundsMax, e.cellSize())
	})
	return nil
}

// SetProfile validates and installs a new profile for one material. The
// change affects newly spawned particles; existing particles keep the
// radius and mass they were born with.
func (e *Engine) SetProfile(t particle.Type, p particle.Profile) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("invalid profile for %s: %w", t, err)
	}
	e.queue(func(e *Engine) {
		e.profiles[t] = p
		e.grid.Reset(e.params.BoundsMin, e.params.BoundsMax, e.cellSize())
	})
	return nil
}

// Playing reports the play state as of the last published snapshot.
func (e *Engine) Playing() bool {
	e.snapMu.RLock()
	defer e.snapMu.RUnlock()
	return e.snap.Playing
}

// ReadSnapshot copies the last published frame state into dst.
func (e *Engine) ReadSnapshot(dst *Snapshot) {
	e.snapMu.RLock()
	e.snap.CopyInto(dst)
	e.snapMu.RUnlock()
}

// Step advances the simulation by one frame of length frameDt seconds.
func (e *Engine) Step(frameDt float32) {
	if e.perf != nil {
		e.perf.StartTick()
	}

	e.applyPending()

	if e.playing && frameDt > 0 {
		e.stepPhysics(frameDt)
		e.tick++
		e.time += float64(frameDt)
	}

	e.startPhase(telemetry.PhaseSnapshot)
	e.publish()

	e.startPhase(telemetry.PhaseTelemetry)
	e.updateStats()

	if e.perf != nil {
		e.perf.EndTick()
	}
}

func (e *Engine) startPhase(name string) {
	if e.perf != nil {
		e.perf.StartPhase(name)
	}
}

func (e *Engine) applyPending() {
	e.cmdMu.Lock()
	cmds := e.pending
	e.pending = nil
	e.cmdMu.Unlock()
	for _, fn := range cmds {
		fn(e)
	}
}

func (e *Engine) stepPhysics(frameDt float32) {
	e.startPhase(telemetry.PhaseEmit)
	e.spawnBuf = e.emitter.Tick(e.spawnBuf[:0], frameDt, e.rng)
	e.spawnAll(e.spawnBuf)

	subDt := frameDt / float32(e.params.Substeps)
	for s := 0; s < e.params.Substeps; s++ {
		e.substep(subDt)
	}

	e.startPhase(telemetry.PhaseCleanup)
	e.store.Compact()
}

func (e *Engine) substep(dt float32) {
	n := e.store.Size()

	// Remove non-finite particles before anything reads their positions.
	e.startPhase(telemetry.PhaseCollide)
	e.counters.Quarantined += e.collider.Quarantine(e.store)

	e.startPhase(telemetry.PhaseIntegrate)
	e.parallel.runPhase(e, n, dt, phaseIntegrate)

	e.startPhase(telemetry.PhaseSpatialGrid)
	e.grid.Rebuild(e.store)

	if e.params.EnableCollisions {
		e.startPhase(telemetry.PhaseCollide)
		e.counters.Contacts += e.collider.ResolvePairs(e.store, e.grid, &e.profiles, &e.params)
	}

	// Boundary runs last among position writers so nothing is published
	// outside the box.
	e.startPhase(telemetry.PhaseCollide)
	e.counters.BoundaryHits += e.collider.Boundary(e.store, &e.profiles, &e.params)

	if e.params.EnableCohesion {
		e.startPhase(telemetry.PhaseCohesion)
		e.parallel.runPhase(e, n, dt, phaseCohesion)
	}
}

func (e *Engine) spawnAll(reqs []systems.SpawnRequest) {
	for _, r := range reqs {
		atCap := e.store.Len() >= e.params.MaxParticles
		_, ok := e.store.Spawn(r.Type, e.profiles[r.Type], r.Pos, r.Vel)
		if !ok {
			e.counters.Dropped++
			continue
		}
		e.counters.Spawned++
		if atCap {
			e.counters.Recycled++
		}
	}
}

func (e *Engine) publish() {
	e.snapMu.Lock()
	defer e.snapMu.Unlock()

	e.snap.Tick = e.tick
	e.snap.Time = e.time
	e.snap.Playing = e.playing
	e.snap.EmitterOn = e.emitter.Enabled
	e.snap.BoundsMin = e.params.BoundsMin
	e.snap.BoundsMax = e.params.BoundsMax
	e.snap.Particles = e.snap.Particles[:0]
	e.store.ForEachAlive(func(i int, p *particle.Particle) {
		e.snap.Particles = append(e.snap.Particles, ParticleView{
			ID:     p.ID,
			Pos:    p.Pos,
			Vel:    p.Vel,
			Type:   p.Type,
			Radius: p.Radius,
		})
	})
}

func (e *Engine) updateStats() {
	if e.statsWindow <= 0 {
		return
	}
	if e.time-e.windowStart < e.statsWindow {
		return
	}
	e.windowStart = e.time

	stats := e.computeWindowStats()
	e.counters.Reset()

	e.statsMu.Lock()
	e.lastStats = stats
	e.haveStats = true
	e.statsMu.Unlock()
}

// TakeWindowStats returns the stats for the most recently closed window,
// once. The second return is false until a new window closes.
func (e *Engine) TakeWindowStats() (telemetry.WindowStats, bool) {
	e.statsMu.Lock()
	defer e.statsMu.Unlock()
	if !e.haveStats {
		return telemetry.WindowStats{}, false
	}
	e.haveStats = false
	return e.lastStats, true
}

func (e *Engine) computeWindowStats() telemetry.WindowStats {
	stats := telemetry.WindowStats{
		WindowEndTick: e.tick,
		SimTimeSec:    e.time,
		Count:         e.store.Len(),
		Spawned:       e.counters.Spawned,
		Dropped:       e.counters.Dropped,
		Recycled:      e.counters.Recycled,
		Quarantined:   e.counters.Quarantined,
		Contacts:      e.counters.Contacts,
		BoundaryHits:  e.counters.BoundaryHits,
	}

	speeds := make([]float64, 0, e.store.Len())
	var heightSum, kinetic float64
	var typeCounts [particle.TypeCount]int
	e.store.ForEachAlive(func(i int, p *particle.Particle) {
		speed := float64(p.Vel.Length())
		speeds = append(speeds, speed)
		heightSum += float64(p.Pos.Y)
		kinetic += 0.5 * float64(p.Mass) * speed * speed
		typeCounts[p.Type]++
	})

	stats.CountNormal = typeCounts[particle.Normal]
	stats.CountHeavy = typeCounts[particle.Heavy]
	stats.CountLight = typeCounts[particle.Light]
	stats.CountBouncy = typeCounts[particle.Bouncy]
	stats.CountViscous = typeCounts[particle.Viscous]
	stats.CountExplosive = typeCounts[particle.Explosive]

	if len(speeds) > 0 {
		stats.SpeedMean, stats.SpeedStd, stats.SpeedP50, stats.SpeedP90 = telemetry.ComputeDistribution(speeds)
		stats.HeightMean = heightSum / float64(len(speeds))
	}
	stats.KineticEnergy = kinetic
	if math.IsNaN(stats.KineticEnergy) {
		slog.Warn("non-finite kinetic energy in stats window", "tick", e.tick)
		stats.KineticEnergy = 0
	}
	return stats
}

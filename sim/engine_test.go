package sim

import (
	"math"
	"testing"

	"github.com/Starland9/sand-simulation/particle"
	"github.com/Starland9/sand-simulation/systems"
)

const dt60 = float32(1.0 / 60.0)

func testOptions() Options {
	return Options{
		Params:   systems.DefaultParams(),
		Profiles: particle.DefaultProfiles(),
		Emitter: systems.Emitter{
			Enabled:  true,
			Rate:     120,
			Material: particle.Normal,
			Position: particle.V3(0, 40, 0),
			Spread:   2,
			Velocity: particle.V3(0, -5, 0),
		},
		Seed: 7,
	}
}

func newTestEngine(t *testing.T, opts Options) *Engine {
	t.Helper()
	e, err := New(opts)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(e.Close)
	return e
}

func snapshotOf(e *Engine) Snapshot {
	var s Snapshot
	e.ReadSnapshot(&s)
	return s
}

func sameSnapshot(a, b Snapshot) bool {
	if a.Tick != b.Tick || len(a.Particles) != len(b.Particles) {
		return false
	}
	for i := range a.Particles {
		if a.Particles[i] != b.Particles[i] {
			return false
		}
	}
	return true
}

func TestEngineDeterministicForSeed(t *testing.T) {
	run := func() Snapshot {
		e := newTestEngine(t, testOptions())
		for i := 0; i < 120; i++ {
			e.Step(dt60)
		}
		return snapshotOf(e)
	}
	a, b := run(), run()
	if len(a.Particles) == 0 {
		t.Fatal("no particles after 2 simulated seconds")
	}
	if !sameSnapshot(a, b) {
		t.Fatal("two runs with the same seed diverged")
	}
}

func TestEngineResetReplaysIdentically(t *testing.T) {
	e := newTestEngine(t, testOptions())
	for i := 0; i < 60; i++ {
		e.Step(dt60)
	}
	first := snapshotOf(e)

	// The reset applies at the start of the next Step, which then simulates
	// as usual, so 60 steps replay the 60-frame run.
	e.Reset()
	for i := 0; i < 60; i++ {
		e.Step(dt60)
	}
	second := snapshotOf(e)

	if len(first.Particles) == 0 {
		t.Fatal("no particles in first run")
	}
	// IDs keep counting after a reset, so compare positions only.
	if len(first.Particles) != len(second.Particles) {
		t.Fatalf("counts differ after reset: %d vs %d", len(first.Particles), len(second.Particles))
	}
	for i := range first.Particles {
		if first.Particles[i].Pos != second.Particles[i].Pos {
			t.Fatalf("particle %d position differs after reset replay", i)
		}
	}
}

func TestEngineParticlesStayInBounds(t *testing.T) {
	opts := testOptions()
	opts.Emitter.Rate = 300
	e := newTestEngine(t, opts)

	for i := 0; i < 300; i++ {
		e.Step(dt60)
	}

	s := snapshotOf(e)
	if len(s.Particles) == 0 {
		t.Fatal("no particles")
	}
	min, max := s.BoundsMin, s.BoundsMax
	for _, p := range s.Particles {
		if p.Pos.X < min.X || p.Pos.X > max.X ||
			p.Pos.Y < min.Y || p.Pos.Y > max.Y ||
			p.Pos.Z < min.Z || p.Pos.Z > max.Z {
			t.Fatalf("particle %d escaped the box: %+v", p.ID, p.Pos)
		}
	}
}

func TestEngineEnergyNonIncreasing(t *testing.T) {
	// Without gravity and cohesion, every interaction dissipates: wall
	// bounces, pair impulses and viscous drag all scale energy down.
	opts := testOptions()
	opts.Params.Gravity = particle.Vec3{}
	opts.Params.EnableCohesion = false
	opts.Emitter.Enabled = false
	e := newTestEngine(t, opts)

	if err := e.LoadScene("explosion"); err != nil {
		t.Fatal(err)
	}
	e.Step(dt60)

	prev := kineticEnergy(snapshotOf(e), e.Profiles())
	if prev == 0 {
		t.Fatal("scene has no kinetic energy")
	}
	for i := 0; i < 120; i++ {
		e.Step(dt60)
		cur := kineticEnergy(snapshotOf(e), e.Profiles())
		if cur > prev*(1+1e-5) {
			t.Fatalf("kinetic energy rose at frame %d: %v -> %v", i, prev, cur)
		}
		prev = cur
	}
}

func kineticEnergy(s Snapshot, profiles particle.Profiles) float64 {
	var total float64
	for _, p := range s.Particles {
		speed := float64(p.Vel.Length())
		total += 0.5 * float64(profiles[p.Type].Mass) * speed * speed
	}
	return total
}

func TestEngineCohesionDisabledMatchesZeroStrength(t *testing.T) {
	run := func(mutate func(*Options)) Snapshot {
		opts := testOptions()
		opts.Emitter.Material = particle.Viscous
		mutate(&opts)
		e := newTestEngine(t, opts)
		for i := 0; i < 90; i++ {
			e.Step(dt60)
		}
		return snapshotOf(e)
	}

	disabled := run(func(o *Options) { o.Params.EnableCohesion = false })
	zeroed := run(func(o *Options) {
		for i := range o.Profiles {
			o.Profiles[i].Cohesion = 0
		}
	})

	if !sameSnapshot(disabled, zeroed) {
		t.Fatal("disabling cohesion differs from zero cohesion strength")
	}
}

func TestEngineCommandsApplyAtFrameBoundary(t *testing.T) {
	e := newTestEngine(t, testOptions())

	p := e.Params()
	p.GravityScale = 2
	if err := e.ApplyParams(p); err != nil {
		t.Fatal(err)
	}
	if e.Params().GravityScale != 1 {
		t.Fatal("parameter change visible before the next frame")
	}
	e.Step(dt60)
	if e.Params().GravityScale != 2 {
		t.Fatal("parameter change not applied at the frame boundary")
	}
}

func TestEngineApplyParamsRejectsInvalid(t *testing.T) {
	e := newTestEngine(t, testOptions())

	p := e.Params()
	p.Substeps = 0
	if err := e.ApplyParams(p); err == nil {
		t.Fatal("invalid parameters accepted")
	}
	e.Step(dt60)
	if e.Params().Substeps != 2 {
		t.Fatalf("previous parameters not retained: substeps = %d", e.Params().Substeps)
	}
}

func TestEngineSetProfileRejectsInvalid(t *testing.T) {
	e := newTestEngine(t, testOptions())

	bad := e.Profiles()[particle.Normal]
	bad.Mass = -1
	if err := e.SetProfile(particle.Normal, bad); err == nil {
		t.Fatal("invalid profile accepted")
	}

	good := e.Profiles()[particle.Normal]
	good.Restitution = 0.7
	if err := e.SetProfile(particle.Normal, good); err != nil {
		t.Fatal(err)
	}
	e.Step(dt60)
	if e.Profiles()[particle.Normal].Restitution != 0.7 {
		t.Fatal("valid profile change not applied")
	}
}

func TestEnginePauseFreezesState(t *testing.T) {
	e := newTestEngine(t, testOptions())
	for i := 0; i < 30; i++ {
		e.Step(dt60)
	}

	e.TogglePlay()
	e.Step(dt60)
	before := snapshotOf(e)
	for i := 0; i < 30; i++ {
		e.Step(dt60)
	}
	after := snapshotOf(e)

	if before.Playing {
		t.Fatal("snapshot still reports playing")
	}
	if !sameSnapshot(before, after) {
		t.Fatal("state advanced while paused")
	}
}

func TestEngineCapacityDropCounted(t *testing.T) {
	opts := testOptions()
	opts.Params.MaxParticles = 50
	opts.Emitter.Rate = 0
	opts.StatsWindow = 0.5
	e := newTestEngine(t, opts)

	e.Burst(80)
	for i := 0; i < 31; i++ {
		e.Step(dt60)
	}

	stats, ok := e.TakeWindowStats()
	if !ok {
		t.Fatal("no stats window closed")
	}
	if stats.Spawned != 50 {
		t.Errorf("Spawned = %d, want 50", stats.Spawned)
	}
	if stats.Dropped != 30 {
		t.Errorf("Dropped = %d, want 30", stats.Dropped)
	}
	if stats.Count != 50 {
		t.Errorf("Count = %d, want 50", stats.Count)
	}
}

func TestEngineRecyclePolicyKeepsNewest(t *testing.T) {
	opts := testOptions()
	opts.Params.MaxParticles = 40
	opts.Params.CapacityPolicy = particle.RecycleOldest
	opts.Emitter.Rate = 0
	e := newTestEngine(t, opts)

	e.Burst(60)
	e.Step(dt60)

	s := snapshotOf(e)
	if len(s.Particles) != 40 {
		t.Fatalf("count = %d, want 40", len(s.Particles))
	}
	// The 20 oldest were recycled, so the smallest surviving ID is 21.
	for _, p := range s.Particles {
		if p.ID <= 20 {
			t.Fatalf("old particle %d survived recycling", p.ID)
		}
	}
}

func TestEngineQuarantinesInjectedNaN(t *testing.T) {
	opts := testOptions()
	opts.Emitter.Rate = 0
	opts.StatsWindow = 0.5
	e := newTestEngine(t, opts)
	e.Burst(10)
	e.Step(dt60)

	// Inject a non-finite velocity through a frame-boundary command, the
	// same path a buggy parameter change would take.
	e.queue(func(e *Engine) {
		e.store.At(0).Vel.Y = float32(math.NaN())
	})
	for i := 0; i < 30; i++ {
		e.Step(dt60)
	}

	s := snapshotOf(e)
	if len(s.Particles) != 9 {
		t.Fatalf("count = %d, want 9 after quarantine", len(s.Particles))
	}
	stats, ok := e.TakeWindowStats()
	if !ok {
		t.Fatal("no stats window closed")
	}
	if stats.Quarantined != 1 {
		t.Errorf("Quarantined = %d, want 1", stats.Quarantined)
	}
}

// Package telemetry collects simulation statistics and performance
// timings and exports them as CSV and structured logs.
package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Counters accumulates event counts over a stats window. The engine
// increments them during stepping and resets them when a window closes.
type Counters struct {
	Spawned      int // particles added by emitter or scene
	Dropped      int // spawns rejected by capacity policy
	Recycled     int // oldest particles evicted by capacity policy
	Quarantined  int // particles removed for non-finite state
	Contacts     int // particle pair contacts resolved
	BoundaryHits int // wall contacts
}

// Add merges another counter set into this one.
func (c *Counters) Add(o Counters) {
	c.Spawned += o.Spawned
	c.Dropped += o.Dropped
	c.Recycled += o.Recycled
	c.Quarantined += o.Quarantined
	c.Contacts += o.Contacts
	c.BoundaryHits += o.BoundaryHits
}

// Reset zeroes the counters.
func (c *Counters) Reset() { *c = Counters{} }

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowEndTick uint64  `csv:"window_end"`
	SimTimeSec    float64 `csv:"sim_time"`

	// Population at window end
	Count          int `csv:"count"`
	CountNormal    int `csv:"count_normal"`
	CountHeavy     int `csv:"count_heavy"`
	CountLight     int `csv:"count_light"`
	CountBouncy    int `csv:"count_bouncy"`
	CountViscous   int `csv:"count_viscous"`
	CountExplosive int `csv:"count_explosive"`

	// Events during window
	Spawned      int `csv:"spawned"`
	Dropped      int `csv:"dropped"`
	Recycled     int `csv:"recycled"`
	Quarantined  int `csv:"quarantined"`
	Contacts     int `csv:"contacts"`
	BoundaryHits int `csv:"boundary_hits"`

	// Motion distribution (sampled at window end)
	SpeedMean float64 `csv:"speed_mean"`
	SpeedStd  float64 `csv:"speed_std"`
	SpeedP50  float64 `csv:"speed_p50"`
	SpeedP90  float64 `csv:"speed_p90"`

	HeightMean float64 `csv:"height_mean"`

	// Total kinetic energy over live particles
	KineticEnergy float64 `csv:"kinetic_energy"`
}

// ComputeDistribution fills mean, standard deviation and percentiles from
// a sample. The input slice is sorted in place.
func ComputeDistribution(values []float64) (mean, std, p50, p90 float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0
	}
	sort.Float64s(values)
	mean = stat.Mean(values, nil)
	if len(values) > 1 {
		std = stat.StdDev(values, nil)
	}
	p50 = stat.Quantile(0.5, stat.Empirical, values, nil)
	p90 = stat.Quantile(0.9, stat.Empirical, values, nil)
	return mean, std, p50, p90
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Uint64("window_end", s.WindowEndTick),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("count", s.Count),
		slog.Int("spawned", s.Spawned),
		slog.Int("dropped", s.Dropped),
		slog.Int("recycled", s.Recycled),
		slog.Int("quarantined", s.Quarantined),
		slog.Int("contacts", s.Contacts),
		slog.Int("boundary_hits", s.BoundaryHits),
		slog.Float64("speed_mean", s.SpeedMean),
		slog.Float64("speed_p90", s.SpeedP90),
		slog.Float64("height_mean", s.HeightMean),
		slog.Float64("kinetic_energy", s.KineticEnergy),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"sim_time", s.SimTimeSec,
		"count", s.Count,
		"spawned", s.Spawned,
		"dropped", s.Dropped,
		"recycled", s.Recycled,
		"quarantined", s.Quarantined,
		"contacts", s.Contacts,
		"boundary_hits", s.BoundaryHits,
		"speed_mean", s.SpeedMean,
		"speed_std", s.SpeedStd,
		"speed_p50", s.SpeedP50,
		"speed_p90", s.SpeedP90,
		"height_mean", s.HeightMean,
		"kinetic_energy", s.KineticEnergy,
	)
}

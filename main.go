package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/Starland9/sand-simulation/app"
	"github.com/Starland9/sand-simulation/config"
	"github.com/Starland9/sand-simulation/particle"
	"github.com/Starland9/sand-simulation/sim"
	"github.com/Starland9/sand-simulation/systems"
	"github.com/Starland9/sand-simulation/telemetry"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	statsWindow := flag.Float64("stats-window", 0, "Stats window size in seconds (0 = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	stepsPerUpdate := flag.Int("steps-per-update", 1, "Simulation ticks per loop iteration in headless mode")
	scene := flag.String("scene", "", "Seed a demo scene at startup")

	flag.Parse()

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	statsWindowSec := cfg.Telemetry.StatsWindow
	if *statsWindow > 0 {
		statsWindowSec = *statsWindow
	}

	perf := telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow)

	out, err := telemetry.NewOutputManager(*outputDir)
	if err != nil {
		slog.Error("failed to create output directory", "error", err)
		os.Exit(1)
	}
	defer out.Close()
	if err := out.WriteConfig(cfg); err != nil {
		slog.Warn("failed to write config snapshot", "error", err)
	}

	engine, err := buildEngine(cfg, rngSeed, statsWindowSec, perf)
	if err != nil {
		slog.Error("failed to build engine", "error", err)
		os.Exit(1)
	}
	defer engine.Close()

	if *scene != "" {
		if err := engine.LoadScene(*scene); err != nil {
			slog.Error("failed to load scene", "scene", *scene, "error", err)
			os.Exit(1)
		}
	}

	if *headless {
		slog.Info("starting headless simulation",
			"seed", rngSeed,
			"stats_window", statsWindowSec,
			"max_ticks", *maxTicks,
			"steps_per_update", *stepsPerUpdate,
		)
		runHeadless(engine, cfg, perf, out, *maxTicks, *stepsPerUpdate, *logStats)
		return
	}

	app.Run(engine, perf, out, *maxTicks)
}

func buildEngine(cfg *config.Config, seed int64, statsWindowSec float64, perf *telemetry.PerfCollector) (*sim.Engine, error) {
	profiles, err := cfg.Profiles()
	if err != nil {
		return nil, err
	}
	policy, err := cfg.Particles.Policy()
	if err != nil {
		return nil, err
	}
	material := particle.Normal
	if cfg.Emitter.Material != "" {
		if material, err = particle.TypeFromName(cfg.Emitter.Material); err != nil {
			return nil, err
		}
	}

	return sim.New(sim.Options{
		Params: systems.Params{
			Gravity:          cfg.Physics.Gravity.Vec3(),
			GravityScale:     cfg.Physics.GravityScale,
			Friction:         cfg.Physics.Friction,
			Restitution:      cfg.Physics.Restitution,
			Substeps:         cfg.Physics.Substeps,
			BoundsMin:        cfg.World.Min.Vec3(),
			BoundsMax:        cfg.World.Max.Vec3(),
			EnableCollisions: cfg.Physics.EnableCollisions,
			EnableCohesion:   cfg.Physics.EnableCohesion,
			MaxParticles:     cfg.Particles.Max,
			CapacityPolicy:   policy,
		},
		Profiles: profiles,
		Emitter: systems.Emitter{
			Enabled:  cfg.Emitter.Enabled,
			Rate:     cfg.Emitter.Rate,
			Material: material,
			Position: cfg.Emitter.Position.Vec3(),
			Spread:   cfg.Emitter.Spread,
			Velocity: cfg.Emitter.Velocity.Vec3(),
		},
		Seed:        seed,
		StatsWindow: statsWindowSec,
		Perf:        perf,
	})
}

func runHeadless(e *sim.Engine, cfg *config.Config, perf *telemetry.PerfCollector, out *telemetry.OutputManager, maxTicks, stepsPerUpdate int, logStats bool) {
	if stepsPerUpdate < 1 {
		stepsPerUpdate = 1
	}
	dt := float32(cfg.Physics.DT)

	for {
		for i := 0; i < stepsPerUpdate; i++ {
			e.Step(dt)
		}

		if stats, ok := e.TakeWindowStats(); ok {
			if logStats {
				stats.LogStats()
			}
			if err := out.WriteStats(stats); err != nil {
				slog.Warn("failed to write stats", "error", err)
			}
			if err := out.WritePerf(perf.Stats(), stats.WindowEndTick); err != nil {
				slog.Warn("failed to write perf", "error", err)
			}
		}

		if maxTicks > 0 && int(e.Tick()) >= maxTicks {
			slog.Info("max ticks reached", "tick", e.Tick())
			return
		}
	}
}

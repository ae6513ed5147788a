// Command ecs-stress populates a storage, then runs movement, decay and
// structural churn systems for a fixed duration and prints a report.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"runtime"
	"time"

	"github.com/pkg/profile"
	"github.com/plus3/slotecs/ecs"
	"github.com/plus3/slotecs/internal/config"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "Path to a TOML or YAML config file.")
	duration := flag.Duration("duration", 0, "The total duration the test should run for.")
	entityCount := flag.Int("entities", 0, "The initial number of entities to create.")
	churn := flag.Int("churn", -1, "Structural changes queued per frame.")
	format := flag.String("report", "", "Report format: text or json.")
	gcPauseMetrics := flag.Bool("gc-pause-metrics", false, "Enable detailed GC pause metrics in the report.")
	profileMode := flag.String("profile", "", "Profile to record: cpu, mem, block, mutex or trace.")
	flag.Parse()

	cfg, err := config.LoadOrDefault(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "duration":
			cfg.Stress.Duration = *duration
		case "entities":
			cfg.Stress.Entities = *entityCount
		case "churn":
			cfg.Stress.ChurnPerFrame = *churn
		case "report":
			cfg.Stress.Report = *format
		case "gc-pause-metrics":
			cfg.Stress.GCPauseMetrics = *gcPauseMetrics
		case "profile":
			cfg.Stress.Profile = *profileMode
		}
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger, err := config.NewLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	if mode, ok := profileModes[cfg.Stress.Profile]; ok {
		defer profile.Start(mode, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	} else if cfg.Stress.Profile != "" {
		logger.Warn("unknown profile mode ignored", zap.String("profile", cfg.Stress.Profile))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Stress.Duration)
	defer cancel()

	report, err := Run(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("stress test failed", zap.Error(err))
	}

	if cfg.Stress.Report == "json" {
		err = report.WriteJSON(os.Stdout)
	} else {
		fmt.Println("\n\n--- Stress Test Report ---")
		err = report.Generate(os.Stdout)
		fmt.Println("--- End of Report ---")
	}
	if err != nil {
		logger.Fatal("failed to generate report", zap.Error(err))
	}

	logger.Info("stress test complete")
}

var profileModes = map[string]func(*profile.Profile){
	"cpu":   profile.CPUProfile,
	"mem":   profile.MemProfile,
	"block": profile.BlockProfile,
	"mutex": profile.MutexProfile,
	"trace": profile.TraceProfile,
}

// Run builds the world described by cfg and updates it until ctx is done.
func Run(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Report, error) {
	opts := cfg.Engine.Options(logger)
	registry := ecs.NewComponentRegistry(opts...)
	if err := RegisterStressComponents(registry); err != nil {
		return nil, eris.Wrap(err, "register components")
	}
	storage := ecs.NewStorage(registry, opts...)
	rng := rand.New(rand.NewSource(cfg.Stress.Seed))

	scheduler := ecs.NewScheduler(storage)
	scheduler.Register(&MovementSystem{Workers: cfg.Engine.Workers})
	scheduler.Register(&DecaySystem{})
	scheduler.Register(&ChurnSystem{Rng: rng, PerFrame: cfg.Stress.ChurnPerFrame})

	logger.Info("populating storage", zap.Int("entities", cfg.Stress.Entities))
	for range cfg.Stress.Entities {
		if _, err := SpawnRandomEntity(storage, rng, rng.Intn(5)+1); err != nil {
			return nil, eris.Wrap(err, "populate")
		}
	}

	report := &Report{
		Duration:       cfg.Stress.Duration,
		Entities:       cfg.Stress.Entities,
		Components:     registry.Len(),
		ChurnPerFrame:  cfg.Stress.ChurnPerFrame,
		GCPauseMetrics: cfg.Stress.GCPauseMetrics,
	}
	runtime.ReadMemStats(&report.MemStatsStart)

	logger.Info("running simulation", zap.Duration("duration", cfg.Stress.Duration))
	startTime := time.Now()
	lastFrameTime := startTime

Loop:
	for {
		select {
		case <-ctx.Done():
			break Loop
		default:
			deltaTime := time.Since(lastFrameTime)
			lastFrameTime = time.Now()

			updateStart := time.Now()
			if err := scheduler.Once(deltaTime.Seconds()); err != nil {
				report.CommandErrors++
			}
			report.UpdateTime.Samples = append(report.UpdateTime.Samples, time.Since(updateStart))
			report.TotalUpdates++
		}
	}

	report.TotalTime = time.Since(startTime)
	report.UpdateTime.Finalize()
	runtime.ReadMemStats(&report.MemStatsEnd)
	report.Storage = storage.CollectStats()
	report.Scheduler = scheduler.GetStats()

	logger.Info("simulation finished", zap.Int64("updates", report.TotalUpdates))
	return report, nil
}

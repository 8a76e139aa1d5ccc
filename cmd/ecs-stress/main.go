package main

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/pkg/profile"
	"github.com/rs/zerolog"

	"github.com/plus3/entcore/ecs"
	ecslog "github.com/plus3/entcore/ecs/log"
)

func main() {
	cfg, err := loadConfig(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "ecs-stress: %v\n", err)
		os.Exit(2)
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.Fatal().Err(err).Str("log_level", cfg.LogLevel).Msg("invalid log level")
	}
	logger = logger.Level(level)

	switch cfg.Profile {
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.Quiet).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath("."), profile.Quiet).Stop()
	}

	logger.Info().Msg("Starting ECS stress test...")

	// 1. Setup Registry and World
	registry := ecs.NewRegistry(ecs.WithLogger(logger.With().Str("component", "registry").Logger()))
	world := NewWorld(registry, cfg)
	ecslog.Registry(&logger, registry, zerolog.DebugLevel)

	// 2. Populate the entity list
	logger.Info().Int("entities", cfg.Entities).Msg("Populating entity list...")
	scheduler := world.Populate(cfg.Entities)
	entities := scheduler.Entities()
	logger.Info().Msg("Population complete.")

	// 3. Run the simulation loop
	report := &Report{
		Duration:       cfg.Duration,
		Entities:       cfg.Entities,
		Attributes:     cfg.Attributes,
		MutationRate:   cfg.MutationRate,
		GCPauseMetrics: cfg.GCPauseMetrics,
		UpdateTime: Stats{
			Samples: make([]time.Duration, 0),
		},
	}

	runtime.ReadMemStats(&report.MemStatsStart)

	logger.Info().Dur("duration", cfg.Duration).Msg("Running simulation...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Duration)
	defer cancel()

	startTime := time.Now()
	var totalUpdates int64
	lastFrameTime := time.Now()

Loop:
	for {
		select {
		case <-ctx.Done():
			break Loop
		default:
			deltaTime := time.Since(lastFrameTime)
			lastFrameTime = time.Now()

			updateStart := time.Now()
			scheduler.Once(deltaTime.Seconds())
			updateDuration := time.Since(updateStart)

			report.UpdateTime.Samples = append(report.UpdateTime.Samples, updateDuration)
			totalUpdates++
		}
	}

	report.TotalTime = time.Since(startTime)
	report.TotalUpdates = totalUpdates
	report.UpdateTime.Finalize()
	runtime.ReadMemStats(&report.MemStatsEnd)
	report.Scheduler = scheduler.GetStats()
	report.Registry = registry.CollectStats()

	logger.Info().
		Int("live_custom_schemas", report.Registry.LiveCustomSchemas).
		Int("custom_schemas_created", report.Registry.CustomSchemasCreated).
		Msg("Simulation finished.")

	// 4. Release everything so custom schemas are accounted for
	entities.Clear()
	if live := registry.CollectStats().LiveCustomSchemas; live != 0 {
		logger.Warn().Int("live_custom_schemas", live).Msg("custom schemas still referenced after clear")
	}

	// 5. Generate Report to Console
	if cfg.JSON {
		if err := report.WriteJSON(os.Stdout); err != nil {
			logger.Fatal().Err(err).Msg("Failed to generate report")
		}
		return
	}
	fmt.Println("\n\n--- Stress Test Report ---")
	if err := report.Generate(os.Stdout); err != nil {
		logger.Fatal().Err(err).Msg("Failed to generate report")
	}
	fmt.Println("--- End of Report ---")

	logger.Info().Msg("Stress test complete.")
}

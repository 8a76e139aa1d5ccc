package main

import (
	"flag"
	"os"
	"time"

	"github.com/JeremyLoy/config"
	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Config controls a stress run. Values are layered: defaults, then the YAML
// file given by -config, then ECS_STRESS_* environment variables, then flags
// set explicitly on the command line.
type Config struct {
	Duration       time.Duration `yaml:"duration" config:"ECS_STRESS_DURATION"`
	Entities       int           `yaml:"entities" config:"ECS_STRESS_ENTITIES"`
	Attributes     int           `yaml:"attributes" config:"ECS_STRESS_ATTRIBUTES"`
	MutationRate   float64       `yaml:"mutation_rate" config:"ECS_STRESS_MUTATION_RATE"`
	Lifetime       float64       `yaml:"lifetime" config:"ECS_STRESS_LIFETIME"`
	Seed           int64         `yaml:"seed" config:"ECS_STRESS_SEED"`
	GCPauseMetrics bool          `yaml:"gc_pause_metrics" config:"ECS_STRESS_GC_PAUSE_METRICS"`
	Profile        string        `yaml:"profile" config:"ECS_STRESS_PROFILE"`
	JSON           bool          `yaml:"json" config:"ECS_STRESS_JSON"`
	LogLevel       string        `yaml:"log_level" config:"ECS_STRESS_LOG_LEVEL"`
}

func defaultConfig() Config {
	return Config{
		Duration:     10 * time.Second,
		Entities:     10000,
		Attributes:   32,
		MutationRate: 0.01,
		Lifetime:     2.0,
		Seed:         1,
		LogLevel:     "info",
	}
}

// loadConfig builds the run configuration from args.
func loadConfig(args []string) (Config, error) {
	cfg := defaultConfig()

	fs := flag.NewFlagSet("ecs-stress", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to a YAML configuration file.")
	duration := fs.Duration("duration", cfg.Duration, "The total duration the test should run for.")
	entityCount := fs.Int("entities", cfg.Entities, "The initial number of entities to create.")
	attributes := fs.Int("attributes", cfg.Attributes, "The number of attribute components entities may acquire.")
	mutationRate := fs.Float64("mutation-rate", cfg.MutationRate, "Chance per entity and tick of acquiring a new attribute.")
	lifetime := fs.Float64("lifetime", cfg.Lifetime, "Seconds an ephemeral entity lives before it expires.")
	seed := fs.Int64("seed", cfg.Seed, "Random seed.")
	gcPauseMetrics := fs.Bool("gc-pause-metrics", cfg.GCPauseMetrics, "Enable detailed GC pause metrics in the report.")
	profileMode := fs.String("profile", cfg.Profile, "Write a profile: cpu or mem.")
	asJSON := fs.Bool("json", cfg.JSON, "Print the report as JSON.")
	logLevel := fs.String("log-level", cfg.LogLevel, "Log level.")
	if err := fs.Parse(args); err != nil {
		return cfg, eris.Wrap(err, "parse flags")
	}

	if *configPath != "" {
		raw, err := os.ReadFile(*configPath)
		if err != nil {
			return cfg, eris.Wrapf(err, "read config %s", *configPath)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, eris.Wrapf(err, "decode config %s", *configPath)
		}
	}

	if err := config.FromEnv().To(&cfg); err != nil {
		return cfg, eris.Wrap(err, "load environment")
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "duration":
			cfg.Duration = *duration
		case "entities":
			cfg.Entities = *entityCount
		case "attributes":
			cfg.Attributes = *attributes
		case "mutation-rate":
			cfg.MutationRate = *mutationRate
		case "lifetime":
			cfg.Lifetime = *lifetime
		case "seed":
			cfg.Seed = *seed
		case "gc-pause-metrics":
			cfg.GCPauseMetrics = *gcPauseMetrics
		case "profile":
			cfg.Profile = *profileMode
		case "json":
			cfg.JSON = *asJSON
		case "log-level":
			cfg.LogLevel = *logLevel
		}
	})

	if cfg.Entities < 0 || cfg.Attributes < 0 {
		return cfg, eris.New("entities and attributes must not be negative")
	}
	switch cfg.Profile {
	case "", "cpu", "mem":
	default:
		return cfg, eris.Errorf("unknown profile mode %q", cfg.Profile)
	}
	return cfg, nil
}

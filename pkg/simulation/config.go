package simulation

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/lao-tseu-is-alive/go-flocking-birds/pkg/flock"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ErrInvalidConfig wraps every configuration validation failure.
var ErrInvalidConfig = errors.New("invalid config")

//go:embed config.schema.json
var configSchema string

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

// Config holds every parameter of a simulation run.
// It is passed explicitly to the world and the harnesses; nothing is global.
type Config struct {
	// World Dimensions
	WorldWidth  float64 `json:"worldWidth" toml:"worldWidth"`
	WorldHeight float64 `json:"worldHeight" toml:"worldHeight"`

	// Population
	NumBirds     int     `json:"numBirds" toml:"numBirds"`
	InitialSpeed float64 `json:"initialSpeed" toml:"initialSpeed"`
	Seed         int64   `json:"seed" toml:"seed"` // 0 picks a seed from the clock

	// Pacing and update strategy
	FrameRate  int    `json:"frameRate" toml:"frameRate"`
	UpdateMode string `json:"updateMode" toml:"updateMode"` // sequential or snapshot

	// Limits and flocking weights shared by every bird
	Bird flock.Params `json:"bird" toml:"bird"`

	// Frame capture, disabled when RecordPath is empty
	RecordPath   string `json:"recordPath" toml:"recordPath"`
	RecordFrames int    `json:"recordFrames" toml:"recordFrames"`

	LogLevel string `json:"logLevel" toml:"logLevel"`
}

// DefaultConfig returns the reference setup: 30 birds in an 800x600 world at 60 FPS.
func DefaultConfig() *Config {
	return &Config{
		WorldWidth:   800,
		WorldHeight:  600,
		NumBirds:     30,
		InitialSpeed: flock.DefaultSpeed,
		FrameRate:    60,
		UpdateMode:   flock.Sequential.String(),
		Bird:         flock.DefaultParams(),
		RecordFrames: 600,
		LogLevel:     "info",
	}
}

// Bounds returns the world size used for wrap-around.
func (c *Config) Bounds() flock.Bounds {
	return flock.Bounds{Width: c.WorldWidth, Height: c.WorldHeight}
}

// Mode returns the parsed update mode, Sequential if it is not valid.
func (c *Config) Mode() flock.UpdateMode {
	m, _ := flock.ParseUpdateMode(c.UpdateMode)
	return m
}

// Validate checks the rules the JSON schema cannot express.
func (c *Config) Validate() error {
	if c.WorldWidth <= 0 || c.WorldHeight <= 0 {
		return fmt.Errorf("%w: world size must be positive, got %vx%v", ErrInvalidConfig, c.WorldWidth, c.WorldHeight)
	}
	if c.NumBirds < 0 {
		return fmt.Errorf("%w: numBirds must not be negative, got %d", ErrInvalidConfig, c.NumBirds)
	}
	if c.InitialSpeed < 0 {
		return fmt.Errorf("%w: initialSpeed must not be negative, got %v", ErrInvalidConfig, c.InitialSpeed)
	}
	if c.FrameRate <= 0 {
		return fmt.Errorf("%w: frameRate must be positive, got %d", ErrInvalidConfig, c.FrameRate)
	}
	if _, err := flock.ParseUpdateMode(c.UpdateMode); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := c.Bird.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.RecordPath != "" && c.RecordFrames <= 0 {
		return fmt.Errorf("%w: recordFrames must be positive when recording", ErrInvalidConfig)
	}
	if _, err := parseLogLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// Bind attaches the configuration to the provided FlagSet.
func (c *Config) Bind(fs *flag.FlagSet) {
	fs.Float64Var(&c.WorldWidth, "width", c.WorldWidth, "world width in pixels")
	fs.Float64Var(&c.WorldHeight, "height", c.WorldHeight, "world height in pixels")
	fs.IntVar(&c.NumBirds, "birds", c.NumBirds, "number of birds")
	fs.Float64Var(&c.InitialSpeed, "speed", c.InitialSpeed, "initial speed of every bird")
	fs.Int64Var(&c.Seed, "seed", c.Seed, "random seed, 0 for a clock based one")
	fs.IntVar(&c.FrameRate, "fps", c.FrameRate, "ticks per second")
	fs.StringVar(&c.UpdateMode, "mode", c.UpdateMode, "update mode: sequential or snapshot")
	fs.Float64Var(&c.Bird.MaxSpeed, "max-speed", c.Bird.MaxSpeed, "speed cap of a bird")
	fs.Float64Var(&c.Bird.MaxSteeringForce, "max-force", c.Bird.MaxSteeringForce, "steering force cap of a bird")
	fs.Float64Var(&c.Bird.PerceptionRadius, "perception", c.Bird.PerceptionRadius, "neighbor detection radius")
	fs.Float64Var(&c.Bird.SeparationRadius, "separation", c.Bird.SeparationRadius, "neighbor avoidance radius")
	fs.Float64Var(&c.Bird.AlignmentWeight, "alignment-weight", c.Bird.AlignmentWeight, "weight of the alignment rule")
	fs.Float64Var(&c.Bird.CohesionWeight, "cohesion-weight", c.Bird.CohesionWeight, "weight of the cohesion rule")
	fs.Float64Var(&c.Bird.SeparationWeight, "separation-weight", c.Bird.SeparationWeight, "weight of the separation rule")
	fs.StringVar(&c.RecordPath, "record", c.RecordPath, "write an animated GIF to this path")
	fs.IntVar(&c.RecordFrames, "frames", c.RecordFrames, "number of frames to record")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log level: debug, info, warn or error")
}

// ParseArgs builds a Config from command-line arguments.
// An optional -config file is loaded first; flags given explicitly override it.
func ParseArgs(name string, args []string, output io.Writer) (*Config, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	if output != nil {
		fs.SetOutput(output)
	}
	path := fs.String("config", "", "path to a JSON or TOML config file")
	staged := DefaultConfig()
	staged.Bind(fs)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	if *path != "" {
		loaded, err := LoadConfig(*path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	overrides := flag.NewFlagSet(name, flag.ContinueOnError)
	overrides.SetOutput(io.Discard)
	cfg.Bind(overrides)
	var setErr error
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "config" || setErr != nil {
			return
		}
		setErr = overrides.Set(f.Name, f.Value.String())
	})
	if setErr != nil {
		return nil, setErr
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfig loads configuration from a JSON or TOML file, chosen by extension,
// and validates it against the schema. Missing keys keep their default value.
func LoadConfig(configFile string) (*Config, error) {
	b, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	switch ext := strings.ToLower(filepath.Ext(configFile)); ext {
	case ".toml":
		md, err := toml.Decode(string(b), cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to decode config toml: %w", err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("%w: unknown keys %v", ErrInvalidConfig, undecoded)
		}
		// TOML goes through the same schema as JSON
		encoded, err := json.Marshal(cfg)
		if err != nil {
			return nil, err
		}
		if err := validateDocument(encoded); err != nil {
			return nil, err
		}
	case ".json", "":
		if err := validateDocument(b); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: unsupported config file extension %q", ErrInvalidConfig, ext)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func schema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiledSchema, schemaErr = jsonschema.CompileString("config.schema.json", configSchema)
	})
	return compiledSchema, schemaErr
}

func validateDocument(doc []byte) error {
	sch, err := schema()
	if err != nil {
		return fmt.Errorf("failed to compile schema: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(doc))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return fmt.Errorf("failed to decode config json: %w", err)
	}

	if err := sch.Validate(v); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

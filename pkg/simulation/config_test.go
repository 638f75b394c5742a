package simulation

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/lao-tseu-is-alive/go-flocking-birds/pkg/flock"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() = %v", err)
	}
	if cfg.WorldWidth != 800 || cfg.WorldHeight != 600 || cfg.NumBirds != 30 || cfg.FrameRate != 60 {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if cfg.Mode() != flock.Sequential {
		t.Errorf("default mode = %v; want sequential", cfg.Mode())
	}
	if cfg.Bounds() != (flock.Bounds{Width: 800, Height: 600}) {
		t.Errorf("Bounds = %+v", cfg.Bounds())
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero width", func(c *Config) { c.WorldWidth = 0 }},
		{"negative birds", func(c *Config) { c.NumBirds = -1 }},
		{"negative speed", func(c *Config) { c.InitialSpeed = -2 }},
		{"zero fps", func(c *Config) { c.FrameRate = 0 }},
		{"bad mode", func(c *Config) { c.UpdateMode = "parallel" }},
		{"separation beyond perception", func(c *Config) { c.Bird.SeparationRadius = 80 }},
		{"recording without frames", func(c *Config) { c.RecordPath = "out.gif"; c.RecordFrames = 0 }},
		{"bad log level", func(c *Config) { c.LogLevel = "chatty" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Validate() = %v; want ErrInvalidConfig", err)
			}
		})
	}

	t.Run("param errors keep their sentinel", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Bird.MaxSpeed = 0
		if err := cfg.Validate(); !errors.Is(err, flock.ErrInvalidParams) {
			t.Errorf("Validate() = %v; want ErrInvalidParams in the chain", err)
		}
	})
}

func TestLoadConfig_JSON(t *testing.T) {
	path := writeFile(t, "flock.json", `{
		"worldWidth": 1024,
		"numBirds": 120,
		"seed": 7,
		"updateMode": "snapshot",
		"bird": {"separationWeight": 2.5, "perceptionRadius": 70}
	}`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() = %v", err)
	}
	if cfg.WorldWidth != 1024 || cfg.NumBirds != 120 || cfg.Seed != 7 {
		t.Errorf("unexpected values %+v", cfg)
	}
	if cfg.Mode() != flock.Snapshot {
		t.Errorf("Mode = %v; want snapshot", cfg.Mode())
	}
	// untouched keys keep their defaults
	if cfg.WorldHeight != 600 || cfg.Bird.MaxSpeed != 5 || cfg.Bird.SeparationRadius != 25 {
		t.Errorf("defaults lost: %+v", cfg)
	}
	if cfg.Bird.SeparationWeight != 2.5 || cfg.Bird.PerceptionRadius != 70 {
		t.Errorf("bird params not loaded: %+v", cfg.Bird)
	}
}

func TestLoadConfig_JSONSchemaErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"unknown key", `{"numberOfBirds": 3}`},
		{"wrong type", `{"numBirds": "many"}`},
		{"fraction of a bird", `{"numBirds": 2.5}`},
		{"negative radius", `{"bird": {"perceptionRadius": -1}}`},
		{"unknown mode", `{"updateMode": "parallel"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "bad.json", tt.doc)
			if _, err := LoadConfig(path); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("LoadConfig() = %v; want ErrInvalidConfig", err)
			}
		})
	}
}

func TestLoadConfig_TOML(t *testing.T) {
	path := writeFile(t, "flock.toml", `
worldWidth = 640.0
worldHeight = 480.0
numBirds = 12
frameRate = 30
logLevel = "debug"

[bird]
maxSpeed = 3.0
cohesionWeight = 0.5
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() = %v", err)
	}
	if cfg.WorldWidth != 640 || cfg.WorldHeight != 480 || cfg.NumBirds != 12 || cfg.FrameRate != 30 {
		t.Errorf("unexpected values %+v", cfg)
	}
	if cfg.Bird.MaxSpeed != 3 || cfg.Bird.CohesionWeight != 0.5 || cfg.Bird.AlignmentWeight != 1 {
		t.Errorf("unexpected bird params %+v", cfg.Bird)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q; want debug", cfg.LogLevel)
	}
}

func TestLoadConfig_TOMLErrors(t *testing.T) {
	t.Run("unknown key", func(t *testing.T) {
		path := writeFile(t, "bad.toml", "birdCount = 3\n")
		if _, err := LoadConfig(path); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("LoadConfig() = %v; want ErrInvalidConfig", err)
		}
	})
	t.Run("schema violation", func(t *testing.T) {
		path := writeFile(t, "bad.toml", "updateMode = \"parallel\"\n")
		if _, err := LoadConfig(path); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("LoadConfig() = %v; want ErrInvalidConfig", err)
		}
	})
	t.Run("syntax", func(t *testing.T) {
		path := writeFile(t, "bad.toml", "numBirds = = 3\n")
		if _, err := LoadConfig(path); err == nil {
			t.Error("LoadConfig() = nil; want a decode error")
		}
	})
}

func TestLoadConfig_Errors(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("missing file should fail")
	}
	path := writeFile(t, "flock.yaml", "numBirds: 3\n")
	if _, err := LoadConfig(path); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("unsupported extension: got %v; want ErrInvalidConfig", err)
	}
}

func TestParseArgs(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := ParseArgs("flock", nil, io.Discard)
		if err != nil {
			t.Fatalf("ParseArgs() = %v", err)
		}
		if *cfg != *DefaultConfig() {
			t.Errorf("ParseArgs() = %+v; want defaults", cfg)
		}
	})

	t.Run("flags", func(t *testing.T) {
		cfg, err := ParseArgs("flock", []string{"-birds", "80", "-mode", "snapshot", "-separation-weight", "3"}, io.Discard)
		if err != nil {
			t.Fatalf("ParseArgs() = %v", err)
		}
		if cfg.NumBirds != 80 || cfg.Mode() != flock.Snapshot || cfg.Bird.SeparationWeight != 3 {
			t.Errorf("flags not applied: %+v", cfg)
		}
	})

	t.Run("flags override file", func(t *testing.T) {
		path := writeFile(t, "flock.json", `{"numBirds": 50, "worldWidth": 300}`)
		cfg, err := ParseArgs("flock", []string{"-birds", "5", "-config", path}, io.Discard)
		if err != nil {
			t.Fatalf("ParseArgs() = %v", err)
		}
		if cfg.NumBirds != 5 {
			t.Errorf("NumBirds = %d; want the flag value 5", cfg.NumBirds)
		}
		if cfg.WorldWidth != 300 {
			t.Errorf("WorldWidth = %v; want the file value 300", cfg.WorldWidth)
		}
	})

	t.Run("invalid combination", func(t *testing.T) {
		_, err := ParseArgs("flock", []string{"-separation", "90"}, io.Discard)
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("ParseArgs() = %v; want ErrInvalidConfig", err)
		}
	})

	t.Run("unknown flag", func(t *testing.T) {
		if _, err := ParseArgs("flock", []string{"-flock-size", "3"}, io.Discard); err == nil {
			t.Error("ParseArgs() = nil; want an error")
		}
	})
}

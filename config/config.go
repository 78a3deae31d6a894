// Package config loads the YAML settings of the gomosh tool.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/ugparu/gomosh/utils/logger"
	"gopkg.in/yaml.v3"
)

const (
	DefaultFFmpegBin = "ffmpeg"
	DefaultKeyint    = 99999999
	DefaultLogLevel  = "info"
)

type Config struct {
	Shuffle Shuffle `yaml:"shuffle"`
	Premux  Premux  `yaml:"premux"`
	Output  Output  `yaml:"output"`
	Log     Log     `yaml:"log"`
	Pprof   string  `yaml:"pprof"` // Listen address of the profiling endpoint, empty disables it.
}

type Shuffle struct {
	StartFraction float64 `yaml:"start_fraction"`
	Seed          *uint64 `yaml:"seed"` // Reproducible shuffles when set.
	SyncTracks    bool    `yaml:"sync_tracks"`
	Parallel      bool    `yaml:"parallel"`
}

type Premux struct {
	Skip            bool   `yaml:"skip"` // Input is already premuxed.
	RemoveTemporary bool   `yaml:"remove_temporary"`
	FFmpeg          FFmpeg `yaml:"ffmpeg"`
}

// FFmpeg configures the encoder that removes long-term references.
type FFmpeg struct {
	Bin    string `yaml:"bin"`
	Keyint uint64 `yaml:"keyint"`
}

type Output struct {
	Atomic bool `yaml:"atomic"`
}

type Log struct {
	Level string `yaml:"level"`
}

// Default returns the settings used when no file is given.
func Default() Config {
	return Config{
		Premux: Premux{
			FFmpeg: FFmpeg{Bin: DefaultFFmpegBin, Keyint: DefaultKeyint},
		},
		Output: Output{Atomic: true},
		Log:    Log{Level: DefaultLogLevel},
	}
}

// Load reads path over the defaults. Unknown keys are rejected.
func Load(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err = dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate clamps the shuffle fraction and checks the remaining fields.
func (c *Config) Validate() error {
	if math.IsNaN(c.Shuffle.StartFraction) {
		c.Shuffle.StartFraction = 0
	}
	c.Shuffle.StartFraction = min(max(c.Shuffle.StartFraction, 0), 1)

	if c.Premux.FFmpeg.Bin == "" {
		return errors.New("config: premux.ffmpeg.bin is empty")
	}
	if c.Premux.FFmpeg.Keyint == 0 {
		return errors.New("config: premux.ffmpeg.keyint must be positive")
	}
	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("config: log.level: %w", err)
	}
	return nil
}

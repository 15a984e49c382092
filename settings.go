package impulse

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/akmonengine/impulse/constraint"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

var ErrUnknownFormat = errors.New("unknown settings format")

// Settings configures a Physics instance. Zero fields are replaced by their default by Validate.
type Settings struct {
	// FixedTimestep is the duration of one simulation step, in seconds
	FixedTimestep float32 `toml:"fixed_timestep" yaml:"fixed_timestep"`
	// TimeScale multiplies the time given to Simulate
	TimeScale float32 `toml:"time_scale" yaml:"time_scale"`
	// MaxStepsPerFrame caps the steps run by one Simulate call, the remaining time is dropped
	MaxStepsPerFrame int `toml:"max_steps_per_frame" yaml:"max_steps_per_frame"`

	// Gravity is registered as a global force when non-zero
	Gravity [3]float32 `toml:"gravity" yaml:"gravity"`

	VelocityIterations   int     `toml:"velocity_iterations" yaml:"velocity_iterations"`
	RestitutionThreshold float32 `toml:"restitution_threshold" yaml:"restitution_threshold"`
	LocationIterations   int     `toml:"location_iterations" yaml:"location_iterations"`
	LocationSlop         float32 `toml:"location_slop" yaml:"location_slop"`
	LocationFactor       float32 `toml:"location_factor" yaml:"location_factor"`

	SleepLinearThreshold  float32 `toml:"sleep_linear_threshold" yaml:"sleep_linear_threshold"`
	SleepAngularThreshold float32 `toml:"sleep_angular_threshold" yaml:"sleep_angular_threshold"`
	// SleepTimeout is how long a body must stay slow before sleeping, a negative value disables sleeping
	SleepTimeout float32 `toml:"sleep_timeout" yaml:"sleep_timeout"`

	GridCellSize  float32 `toml:"grid_cell_size" yaml:"grid_cell_size"`
	GridCellCount int     `toml:"grid_cell_count" yaml:"grid_cell_count"`
}

func DefaultSettings() Settings {
	return Settings{
		FixedTimestep:         1.0 / 64.0,
		TimeScale:             1.0,
		MaxStepsPerFrame:      8,
		Gravity:               [3]float32{0, -9.81, 0},
		VelocityIterations:    constraint.DefaultVelocityIterations,
		RestitutionThreshold:  constraint.DefaultRestitutionThreshold,
		LocationIterations:    constraint.DefaultLocationIterations,
		LocationSlop:          constraint.DefaultLocationSlop,
		LocationFactor:        constraint.DefaultLocationFactor,
		SleepLinearThreshold:  0.1,
		SleepAngularThreshold: 0.05,
		SleepTimeout:          0.5,
		GridCellSize:          2.0,
		GridCellCount:         4096,
	}
}

// LoadSettings reads settings from a .toml, .yaml or .yml file.
// Missing keys keep their default value.
func LoadSettings(path string) (Settings, error) {
	settings := DefaultSettings()

	data, err := os.ReadFile(path)
	if err != nil {
		return settings, fmt.Errorf("read settings %s: %w", path, err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		err = toml.Unmarshal(data, &settings)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &settings)
	default:
		return settings, fmt.Errorf("settings %s: %w %q", path, ErrUnknownFormat, ext)
	}
	if err != nil {
		return settings, fmt.Errorf("decode settings %s: %w", path, err)
	}

	settings.Validate()

	return settings, nil
}

// Validate replaces the zero or out of range values by their default
func (s *Settings) Validate() {
	defaults := DefaultSettings()

	if s.FixedTimestep <= 0 {
		s.FixedTimestep = defaults.FixedTimestep
	}
	if s.TimeScale <= 0 {
		s.TimeScale = defaults.TimeScale
	}
	if s.MaxStepsPerFrame <= 0 {
		s.MaxStepsPerFrame = defaults.MaxStepsPerFrame
	}
	if s.VelocityIterations <= 0 {
		s.VelocityIterations = defaults.VelocityIterations
	}
	if s.RestitutionThreshold <= 0 {
		s.RestitutionThreshold = defaults.RestitutionThreshold
	}
	if s.LocationIterations <= 0 {
		s.LocationIterations = defaults.LocationIterations
	}
	if s.LocationSlop < 0 {
		s.LocationSlop = defaults.LocationSlop
	}
	if s.LocationFactor <= 0 || s.LocationFactor > 1 {
		s.LocationFactor = defaults.LocationFactor
	}
	if s.SleepLinearThreshold <= 0 {
		s.SleepLinearThreshold = defaults.SleepLinearThreshold
	}
	if s.SleepAngularThreshold <= 0 {
		s.SleepAngularThreshold = defaults.SleepAngularThreshold
	}
	if s.SleepTimeout == 0 {
		s.SleepTimeout = defaults.SleepTimeout
	}
	if s.GridCellSize <= 0 {
		s.GridCellSize = defaults.GridCellSize
	}
	if s.GridCellCount <= 0 {
		s.GridCellCount = defaults.GridCellCount
	}
}

func (s Settings) gravity() mgl32.Vec3 {
	return mgl32.Vec3(s.Gravity)
}

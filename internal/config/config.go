package config

import (
	"fmt"
	"math"
	"os"

	"github.com/san-kum/springsim/internal/control"
	"github.com/san-kum/springsim/internal/dynamo"
	"github.com/san-kum/springsim/internal/integrators"
	"gopkg.in/yaml.v3"
)

const (
	DefaultIntegration = "auto"
	DefaultIntegrator  = "semi-implicit"
	DefaultKind        = "scalar"
	DefaultSpringName  = "main"
)

type Config struct {
	Tuning      dynamo.TuningConfig `yaml:"tuning"`
	Run         dynamo.RunConfig    `yaml:"run"`
	Integration string              `yaml:"integration"`
	Integrator  string              `yaml:"integrator"`
	Springs     []SpringConfig      `yaml:"springs"`
}

// SpringConfig describes one spring. Vector fields hold one value per axis;
// rotations take Euler degrees (x, y, z) or a quaternion (w, x, y, z). Empty
// vectors keep the spring's defaults.
type SpringConfig struct {
	Name               string          `yaml:"name"`
	Kind               string          `yaml:"kind"`
	Preset             string          `yaml:"preset,omitempty"`
	Force              *float64        `yaml:"force,omitempty"`
	Drag               *float64        `yaml:"drag,omitempty"`
	CommonForceAndDrag bool            `yaml:"common_force_and_drag,omitempty"`
	Initial            []float64       `yaml:"initial,omitempty"`
	Target             []float64       `yaml:"target,omitempty"`
	InitialHex         string          `yaml:"initial_hex,omitempty"`
	TargetHex          string          `yaml:"target_hex,omitempty"`
	Velocity           []float64       `yaml:"velocity,omitempty"`
	Min                []float64       `yaml:"min,omitempty"`
	Max                []float64       `yaml:"max,omitempty"`
	ClampCurrent       bool            `yaml:"clamp_current,omitempty"`
	ClampTarget        bool            `yaml:"clamp_target,omitempty"`
	StopOnClamp        bool            `yaml:"stop_on_clamp,omitempty"`
	Schedule           *ScheduleConfig `yaml:"schedule,omitempty"`
}

// ScheduleConfig retargets a spring during a run: hold, keyframes or oscillate.
type ScheduleConfig struct {
	Kind      string             `yaml:"kind"`
	Keyframes []control.Keyframe `yaml:"keyframes,omitempty"`
	Amplitude float64            `yaml:"amplitude,omitempty"`
	Frequency float64            `yaml:"frequency,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Tuning:      dynamo.DefaultTuning(),
		Run:         dynamo.DefaultRunConfig(),
		Integration: DefaultIntegration,
		Integrator:  DefaultIntegrator,
		Springs: []SpringConfig{
			{Name: DefaultSpringName, Kind: DefaultKind, Initial: []float64{0}, Target: []float64{1}},
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Find returns the spring called name, or nil.
func (c *Config) Find(name string) *SpringConfig {
	for i := range c.Springs {
		if c.Springs[i].Name == name {
			return &c.Springs[i]
		}
	}
	return nil
}

func (c *Config) Mode() (integrators.Mode, error) {
	return integrators.ParseMode(c.Integration)
}

func (c *Config) Validate() error {
	if err := c.Tuning.Validate(); err != nil {
		return err
	}
	if !(c.Run.Dt > 0) || !(c.Run.Duration > 0) {
		return fmt.Errorf("%w: run dt and duration must be positive, got %g and %g", dynamo.ErrParameterBounds, c.Run.Dt, c.Run.Duration)
	}
	if _, err := c.Mode(); err != nil {
		return err
	}
	if !knownIntegrator(c.Integrator) {
		return fmt.Errorf("%w: integrator %q", dynamo.ErrUnknownKind, c.Integrator)
	}

	seen := make(map[string]bool, len(c.Springs))
	for i := range c.Springs {
		s := &c.Springs[i]
		if s.Name == "" {
			return fmt.Errorf("%w: spring %d has no name", dynamo.ErrParameterBounds, i)
		}
		if seen[s.Name] {
			return fmt.Errorf("%w: duplicate spring name %q", dynamo.ErrParameterBounds, s.Name)
		}
		seen[s.Name] = true
		if err := s.Validate(); err != nil {
			return fmt.Errorf("spring %q: %w", s.Name, err)
		}
	}
	return nil
}

// NumericalIntegrators are the names accepted by Config.Integrator.
var NumericalIntegrators = []string{"euler", "semi-implicit", "rk4", "verlet"}

func knownIntegrator(name string) bool {
	if name == "" {
		return true
	}
	for _, n := range NumericalIntegrators {
		if n == name {
			return true
		}
	}
	return false
}

// Kinds lists the spring kinds in display order.
var Kinds = []string{"scalar", "vector2", "vector3", "vector4", "color", "rotation"}

// Arity returns the number of values a kind takes per vector field.
func Arity(kind string) (int, bool) {
	switch kind {
	case "scalar":
		return 1, true
	case "vector2":
		return 2, true
	case "vector3", "rotation":
		return 3, true
	case "vector4", "color":
		return 4, true
	}
	return 0, false
}

func (s *SpringConfig) KindOrDefault() string {
	if s.Kind == "" {
		return DefaultKind
	}
	return s.Kind
}

func (s *SpringConfig) Validate() error {
	kind := s.KindOrDefault()
	n, ok := Arity(kind)
	if !ok {
		return fmt.Errorf("%w: spring kind %q", dynamo.ErrUnknownKind, s.Kind)
	}
	if s.Preset != "" && GetPreset(s.Preset) == nil {
		return fmt.Errorf("%w: preset %q", dynamo.ErrUnknownKind, s.Preset)
	}
	for name, p := range map[string]*float64{"force": s.Force, "drag": s.Drag} {
		if p != nil && (!finite(*p) || *p < 0) {
			return fmt.Errorf("%w: %s must be finite and >= 0, got %g", dynamo.ErrParameterBounds, name, *p)
		}
	}

	fields := []struct {
		name string
		vals []float64
		rot  bool
	}{
		{"initial", s.Initial, true},
		{"target", s.Target, true},
		{"velocity", s.Velocity, false},
		{"min", s.Min, false},
		{"max", s.Max, false},
	}
	for _, f := range fields {
		if len(f.vals) == 0 {
			continue
		}
		if len(f.vals) != n && !(kind == "rotation" && f.rot && len(f.vals) == 4) {
			return fmt.Errorf("%w: %s has %d values, %s takes %d", dynamo.ErrDimensionMismatch, f.name, len(f.vals), kind, n)
		}
		if !dynamo.State(f.vals).IsValid() {
			return fmt.Errorf("%w: %s", dynamo.ErrInvalidValue, f.name)
		}
	}
	if len(s.Min) > 0 && len(s.Max) > 0 {
		for i := range s.Min {
			if s.Min[i] > s.Max[i] {
				return fmt.Errorf("%w: min[%d]=%g above max[%d]=%g", dynamo.ErrParameterBounds, i, s.Min[i], i, s.Max[i])
			}
		}
	}
	if kind == "rotation" && (len(s.Min) > 0 || len(s.Max) > 0 || s.ClampCurrent || s.ClampTarget || s.StopOnClamp) {
		return fmt.Errorf("%w: rotation springs do not clamp", dynamo.ErrParameterBounds)
	}
	if (s.InitialHex != "" || s.TargetHex != "") && kind != "color" {
		return fmt.Errorf("%w: hex colours need kind color, got %s", dynamo.ErrDimensionMismatch, kind)
	}

	if s.Schedule != nil {
		return s.Schedule.validate(n)
	}
	return nil
}

// Params resolves force and drag: explicit values win over the preset,
// which wins over the defaults.
func (s *SpringConfig) Params(defaultForce, defaultDrag float64) (float64, float64) {
	force, drag := defaultForce, defaultDrag
	if p := GetPreset(s.Preset); p != nil {
		force, drag = p.Force, p.Drag
	}
	if s.Force != nil {
		force = *s.Force
	}
	if s.Drag != nil {
		drag = *s.Drag
	}
	return force, drag
}

// ApplyPreset writes the named preset into Force and Drag.
func (s *SpringConfig) ApplyPreset(name string) error {
	p := GetPreset(name)
	if p == nil {
		return fmt.Errorf("%w: preset %q", dynamo.ErrUnknownKind, name)
	}
	force, drag := p.Force, p.Drag
	s.Preset = name
	s.Force = &force
	s.Drag = &drag
	return nil
}

var ScheduleKinds = []string{"hold", "keyframes", "oscillate"}

func (sc *ScheduleConfig) validate(dim int) error {
	switch sc.Kind {
	case "", "hold":
		return nil
	case "keyframes":
		if len(sc.Keyframes) == 0 {
			return fmt.Errorf("%w: keyframes schedule without keyframes", dynamo.ErrParameterBounds)
		}
		return control.NewKeyframes(sc.Keyframes...).Validate(dim)
	case "oscillate":
		if !finite(sc.Amplitude) || !finite(sc.Frequency) || sc.Frequency < 0 {
			return fmt.Errorf("%w: oscillate needs finite amplitude and frequency >= 0", dynamo.ErrParameterBounds)
		}
		return nil
	}
	return fmt.Errorf("%w: schedule kind %q", dynamo.ErrUnknownKind, sc.Kind)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

package config

import (
	"math"
	"os"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"gonum.org/v1/gonum/num/quat"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/lookahead/internal/cost"
	"github.com/san-kum/lookahead/internal/dynamo"
	"github.com/san-kum/lookahead/internal/geom"
	"github.com/san-kum/lookahead/internal/integrators"
	"github.com/san-kum/lookahead/internal/obstacle"
	"github.com/san-kum/lookahead/internal/planner"
)

const (
	DefaultAcceptanceRadius = 0.5
	DefaultControlDt        = 0.1
	DefaultDuration         = 40.0
	DefaultSimStep          = 0.05
	DefaultIntegrator       = "rk4"
	DefaultAltitude         = 2.0
	DefaultSpacing          = 0.25
)

type Config struct {
	Planner   planner.Config  `yaml:"planner"`
	Limits    dynamo.Limits   `yaml:"limits"`
	Cost      cost.Parameters `yaml:"cost"`
	Mission   MissionConfig   `yaml:"mission"`
	Obstacles ObstacleConfig  `yaml:"obstacles"`
}

// Vec3 is a point or vector as written in config files.
type Vec3 struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

func V(x, y, z float64) Vec3 { return Vec3{X: x, Y: y, Z: z} }

func (v Vec3) R3() r3.Vector { return r3.Vector{X: v.X, Y: v.Y, Z: v.Z} }

type MissionConfig struct {
	Start            Vec3    `yaml:"start,flow"`
	Velocity         Vec3    `yaml:"velocity,flow"`
	YawDeg           float64 `yaml:"yaw_deg"`
	Goal             Vec3    `yaml:"goal,flow"`
	AcceptanceRadius float64 `yaml:"acceptance_radius"`
	// ControlDt is the replanning period of the closed loop, in seconds.
	ControlDt  float64 `yaml:"control_dt"`
	Duration   float64 `yaml:"duration"`
	SimStep    float64 `yaml:"sim_step"`
	Integrator string  `yaml:"integrator"`
}

type ObstacleConfig struct {
	Points []Vec3 `yaml:"points,flow,omitempty"`
	// File is a CSV point cloud with x,y,z rows.
	File    string         `yaml:"file,omitempty"`
	Spacing float64        `yaml:"spacing"`
	Walls   []WallConfig   `yaml:"walls,omitempty"`
	Pillars []PillarConfig `yaml:"pillars,omitempty"`
}

type WallConfig struct {
	From   Vec3    `yaml:"from,flow"`
	To     Vec3    `yaml:"to,flow"`
	Height float64 `yaml:"height"`
}

type PillarConfig struct {
	Center Vec3    `yaml:"center,flow"`
	Radius float64 `yaml:"radius"`
	Height float64 `yaml:"height"`
}

func DefaultConfig() *Config {
	return &Config{
		Planner: planner.DefaultConfig(),
		Limits:  dynamo.DefaultLimits(),
		Cost:    cost.DefaultParameters(),
		Mission: MissionConfig{
			Start:            V(0, 0, DefaultAltitude),
			Goal:             V(20, 0, DefaultAltitude),
			AcceptanceRadius: DefaultAcceptanceRadius,
			ControlDt:        DefaultControlDt,
			Duration:         DefaultDuration,
			SimStep:          DefaultSimStep,
			Integrator:       DefaultIntegrator,
		},
		Obstacles: ObstacleConfig{
			Spacing: DefaultSpacing,
		},
	}
}

// Load reads a YAML file on top of the defaults, so omitted keys keep their
// default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "parse config %s", path)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "encode config")
	}
	return errors.Wrap(os.WriteFile(path, data, 0644), "write config")
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	out.Obstacles.Points = append([]Vec3(nil), c.Obstacles.Points...)
	out.Obstacles.Walls = append([]WallConfig(nil), c.Obstacles.Walls...)
	out.Obstacles.Pillars = append([]PillarConfig(nil), c.Obstacles.Pillars...)
	return &out
}

// Orientation is the vehicle attitude implied by the mission yaw.
func (c *Config) Orientation() quat.Number {
	return geom.FromYaw(c.Mission.YawDeg * math.Pi / 180)
}

// ObstaclePoints collects inline points, the point-cloud file and the sampled
// walls and pillars.
func (c *Config) ObstaclePoints() ([]r3.Vector, error) {
	o := c.Obstacles
	pts := make([]r3.Vector, 0, len(o.Points))
	for _, p := range o.Points {
		pts = append(pts, p.R3())
	}
	if o.File != "" {
		cloud, err := obstacle.LoadCSV(o.File)
		if err != nil {
			return nil, err
		}
		pts = append(pts, cloud...)
	}
	for _, w := range o.Walls {
		pts = append(pts, obstacle.Wall(w.From.R3(), w.To.R3(), w.Height, o.Spacing)...)
	}
	for _, p := range o.Pillars {
		pts = append(pts, obstacle.Pillar(p.Center.R3(), p.Radius, p.Height, o.Spacing)...)
	}
	return pts, nil
}

func (c *Config) ObstacleIndex() (*obstacle.KDTree, error) {
	pts, err := c.ObstaclePoints()
	if err != nil {
		return nil, err
	}
	return obstacle.NewKDTree(pts), nil
}

// Validate reports every invalid setting, not just the first.
func (c *Config) Validate() error {
	var err error
	err = multierr.Append(err, errors.Wrap(c.Planner.Validate(), "planner"))

	l := c.Limits
	if l.MaxXYVelocityNorm < 0 {
		err = multierr.Append(err, errors.Errorf("limits: max_xy_velocity_norm must not be negative, got %g", l.MaxXYVelocityNorm))
	}
	if l.MaxZVelocity < 0 {
		err = multierr.Append(err, errors.Errorf("limits: max_z_velocity must not be negative, got %g", l.MaxZVelocity))
	}
	if l.MinZVelocity > 0 {
		err = multierr.Append(err, errors.Errorf("limits: min_z_velocity must not be positive, got %g", l.MinZVelocity))
	}
	if l.MaxAccelerationNorm < 0 || l.MaxJerkNorm < 0 {
		err = multierr.Append(err, errors.New("limits: acceleration and jerk bounds must not be negative"))
	}

	if c.Cost.CollisionRadius < 0 {
		err = multierr.Append(err, errors.Errorf("cost: collision_radius must not be negative, got %g", c.Cost.CollisionRadius))
	}

	m := c.Mission
	if m.AcceptanceRadius <= 0 {
		err = multierr.Append(err, errors.Errorf("mission: acceptance_radius must be positive, got %g", m.AcceptanceRadius))
	}
	if m.ControlDt <= 0 {
		err = multierr.Append(err, errors.Errorf("mission: control_dt must be positive, got %g", m.ControlDt))
	}
	if m.Duration <= 0 {
		err = multierr.Append(err, errors.Errorf("mission: duration must be positive, got %g", m.Duration))
	}
	if m.SimStep < 0 || m.SimStep > m.ControlDt {
		err = multierr.Append(err, errors.Errorf("mission: sim_step must be within [0, control_dt], got %g", m.SimStep))
	}
	if _, ierr := integrators.New(m.Integrator); ierr != nil {
		err = multierr.Append(err, errors.Wrap(ierr, "mission"))
	}

	if (len(c.Obstacles.Walls) > 0 || len(c.Obstacles.Pillars) > 0) && c.Obstacles.Spacing <= 0 {
		err = multierr.Append(err, errors.Errorf("obstacles: spacing must be positive, got %g", c.Obstacles.Spacing))
	}
	for i, w := range c.Obstacles.Walls {
		if w.Height < 0 {
			err = multierr.Append(err, errors.Errorf("obstacles: wall %d height must not be negative, got %g", i, w.Height))
		}
	}
	for i, p := range c.Obstacles.Pillars {
		if p.Radius <= 0 {
			err = multierr.Append(err, errors.Errorf("obstacles: pillar %d radius must be positive, got %g", i, p.Radius))
		}
		if p.Height < 0 {
			err = multierr.Append(err, errors.Errorf("obstacles: pillar %d height must not be negative, got %g", i, p.Height))
		}
	}
	return errors.Wrap(err, "invalid config")
}

package config

import "sort"

// Presets are ready-made missions. Each is built on DefaultConfig.
var Presets = map[string]*Config{
	"open_field": preset(func(c *Config) {
		c.Mission.Goal = V(20, 5, DefaultAltitude)
	}),
	"climb": preset(func(c *Config) {
		c.Mission.Start = V(0, 0, 1)
		c.Mission.Goal = V(12, 0, 6)
	}),
	"turnaround": preset(func(c *Config) {
		c.Mission.Goal = V(-12, 0, DefaultAltitude)
		c.Mission.Velocity = V(1.5, 0, 0)
	}),
	"wall": preset(func(c *Config) {
		c.Mission.Goal = V(16, 0, DefaultAltitude)
		c.Obstacles.Walls = []WallConfig{
			{From: V(8, -4, 0), To: V(8, 4, 0), Height: 4},
		}
	}),
	"pillars": preset(func(c *Config) {
		c.Mission.Goal = V(18, 2, DefaultAltitude)
		c.Obstacles.Pillars = []PillarConfig{
			{Center: V(5, 0, 0), Radius: 0.6, Height: 5},
			{Center: V(9, 2.5, 0), Radius: 0.6, Height: 5},
			{Center: V(12, -1, 0), Radius: 0.8, Height: 5},
			{Center: V(14, 3, 0), Radius: 0.5, Height: 5},
		}
	}),
	"corridor": preset(func(c *Config) {
		c.Mission.Goal = V(24, 0, DefaultAltitude)
		c.Limits.MaxXYVelocityNorm = 2
		c.Obstacles.Walls = []WallConfig{
			{From: V(2, 2, 0), To: V(22, 2, 0), Height: 4},
			{From: V(2, -2, 0), To: V(22, -2, 0), Height: 4},
		}
		c.Obstacles.Pillars = []PillarConfig{
			{Center: V(12, 0.8, 0), Radius: 0.3, Height: 4},
		}
	}),
	"cluttered": preset(func(c *Config) {
		c.Mission.Goal = V(15, 15, DefaultAltitude)
		c.Mission.YawDeg = 45
		c.Planner.MaxExpansions = 800
		c.Obstacles.Points = []Vec3{
			V(4, 4, 2), V(4.5, 4, 2), V(5, 4, 2),
			V(8, 7, 1.5), V(8, 7.5, 1.5), V(8, 8, 1.5),
			V(11, 10, 2.5), V(11.5, 10.5, 2.5),
		}
		c.Obstacles.Pillars = []PillarConfig{
			{Center: V(6, 9, 0), Radius: 0.7, Height: 4},
			{Center: V(10, 5, 0), Radius: 0.7, Height: 4},
		}
	}),
}

func preset(edit func(*Config)) *Config {
	c := DefaultConfig()
	edit(c)
	return c
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

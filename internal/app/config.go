package app

import "flag"

// Config represents the command-line parameters for the viewer.
type Config struct {
	System string
	Width  int
	Panel  int
	TPS    int
}

// NewConfig returns a Config populated with sensible defaults.
func NewConfig() *Config {
	return &Config{System: "systems/Stellarator", Width: 1024, Panel: 280, TPS: 30}
}

// Bind attaches the configuration to the provided FlagSet.
func (c *Config) Bind(fs *flag.FlagSet) {
	fs.StringVar(&c.System, "system", c.System, "generated system directory")
	fs.IntVar(&c.Width, "width", c.Width, "map view width in pixels")
	fs.IntVar(&c.Panel, "panel", c.Panel, "info panel width in pixels")
	fs.IntVar(&c.TPS, "tps", c.TPS, "ticks per second")
}

package main

import (
	"flag"

	"github.com/ivlev/shapes2video/internal/config"
)

// overrides binds command-line flags to config fields. Only flags that were
// given on the command line are applied, so the file and the environment
// keep their values otherwise.
type overrides struct {
	fs  *flag.FlagSet
	set map[string]func(*config.Config)
}

func newOverrides(fs *flag.FlagSet) *overrides {
	return &overrides{fs: fs, set: make(map[string]func(*config.Config))}
}

func (o *overrides) String(name, usage string, field func(*config.Config) *string) {
	v := o.fs.String(name, "", usage)
	o.set[name] = func(c *config.Config) { *field(c) = *v }
}

func (o *overrides) Int(name, usage string, field func(*config.Config) *int) {
	v := o.fs.Int(name, 0, usage)
	o.set[name] = func(c *config.Config) { *field(c) = *v }
}

func (o *overrides) Int64(name, usage string, field func(*config.Config) *int64) {
	v := o.fs.Int64(name, 0, usage)
	o.set[name] = func(c *config.Config) { *field(c) = *v }
}

func (o *overrides) Float64(name, usage string, field func(*config.Config) *float64) {
	v := o.fs.Float64(name, 0, usage)
	o.set[name] = func(c *config.Config) { *field(c) = *v }
}

func (o *overrides) Bool(name, usage string, field func(*config.Config) *bool) {
	v := o.fs.Bool(name, false, usage)
	o.set[name] = func(c *config.Config) { *field(c) = *v }
}

// Apply copies every flag that was set onto cfg.
func (o *overrides) Apply(cfg *config.Config) {
	o.fs.Visit(func(f *flag.Flag) {
		if fn, ok := o.set[f.Name]; ok {
			fn(cfg)
		}
	})
}

// commonFlags are shared by every subcommand.
func commonFlags(o *overrides) {
	o.String("data", "Dataset directory (audio/, video/, texts.csv)", func(c *config.Config) *string { return &c.DataPath })
	o.String("plan", "Plan file (default: newest file in -plan-dir)", func(c *config.Config) *string { return &c.PlanPath })
	o.String("plan-dir", "Directory for generated plans", func(c *config.Config) *string { return &c.PlanDir })
	o.String("log-level", "Log level: debug, info, warn, error", func(c *config.Config) *string { return &c.LogLevel })
	o.Bool("log-console", "Human readable log output instead of JSON", func(c *config.Config) *bool { return &c.LogConsole })
}

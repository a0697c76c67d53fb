package config

import (
	"flag"
	"fmt"

	"github.com/Faultbox/hairbuild/pkg/strands"
)

// Flags are the command-line overrides shared by the build commands.
type Flags struct {
	fs       *flag.FlagSet
	Config   string
	Debug    bool
	LogFile  string
	Layout   string
	Resample int
	LOD      bool
}

// RegisterFlags adds the configuration flags to fs.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{fs: fs}
	fs.StringVar(&f.Config, "config", "", "Path to config file")
	fs.BoolVar(&f.Debug, "debug", false, "Enable debug logging")
	fs.StringVar(&f.LogFile, "log", "", "Write logs to this file")
	fs.StringVar(&f.Layout, "layout", "", "Particle memory layout (sequential, interleaved)")
	fs.IntVar(&f.Resample, "resample", 0, "Resample every strand to this many particles")
	fs.BoolVar(&f.LOD, "lod", true, "Build the LOD chain")
	return f
}

// set reports whether the named flag was given on the command line.
func (f *Flags) set(name string) bool {
	found := false
	f.fs.Visit(func(fl *flag.Flag) {
		if fl.Name == name {
			found = true
		}
	})
	return found
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config, f *Flags) error {
	if f == nil {
		return nil
	}
	if f.Debug {
		cfg.Logging.Level = "debug"
	}
	if f.LogFile != "" {
		cfg.Logging.LogFile = f.LogFile
	}
	if f.Layout != "" {
		var layout strands.MemoryLayout
		if err := layout.UnmarshalText([]byte(f.Layout)); err != nil {
			return fmt.Errorf("-layout: %w", err)
		}
		cfg.Build.Layout = layout
	}
	if f.Resample > 0 {
		cfg.Build.Resample.Enabled = true
		cfg.Build.Resample.Resolution = f.Resample
	}
	if f.set("lod") {
		cfg.Build.LOD.Enabled = f.LOD
	}
	return nil
}

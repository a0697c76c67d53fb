// Package config handles build configuration loading and management.
package config

import "github.com/Faultbox/hairbuild/pkg/strands"

// Config holds all build settings.
type Config struct {
	Logging LoggingConfig    `yaml:"logging"`
	Data    DataConfig       `yaml:"data"`
	Build   strands.Settings `yaml:"build"`
}

// DataConfig holds input file paths.
type DataConfig struct {
	// Mesh is the glTF reference surface used for root UV projection and
	// mesh placement. Empty means no mesh.
	Mesh string `yaml:"mesh,omitempty"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Build: strands.DefaultSettings(),
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

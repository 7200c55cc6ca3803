package config

import (
	"os"

	"github.com/BurntSushi/toml"
)

// Config holds all user-facing configuration for stk-captions.
type Config struct {
	Data   DataConfig   `toml:"data"`
	Render RenderConfig `toml:"render"`
	Build  BuildConfig  `toml:"build"`
	Server ServerConfig `toml:"server"`
}

type DataConfig struct {
	Dir string `toml:"dir"`
}

// RenderConfig sets the image size kart coordinates are scaled to.
type RenderConfig struct {
	Width  int `toml:"width"`
	Height int `toml:"height"`
}

type BuildConfig struct {
	Workers int `toml:"workers"`
}

type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// Defaults returns a Config populated with built-in default values.
func Defaults() *Config {
	return &Config{
		Data:   DataConfig{Dir: "data"},
		Render: RenderConfig{Width: 150, Height: 100},
		Build:  BuildConfig{Workers: 1},
		Server: ServerConfig{Host: "localhost", Port: 8080},
	}
}

// Load reads a TOML config file. If the file does not exist, built-in
// defaults are returned without error.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

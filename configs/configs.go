package configs

import (
	"os"
	"runtime"
	"time"

	"github.com/pelletier/go-toml"
)

type config struct {
	Main   configMain   `toml:"main"`
	Server configServer `toml:"server"`
	Render configRender `toml:"render"`
}

type configMain struct {
	LogLevel string `toml:"log_level"`
	DevMode  bool   `toml:"dev_mode"`
}

type configServer struct {
	Host        string `toml:"host"`
	Port        int    `toml:"port"`
	MaxUploadMB int    `toml:"max_upload_mb"`
}

type configRender struct {
	DebounceMS     int    `toml:"debounce_ms"`
	NumWorkers     int    `toml:"workers"`
	DefaultProfile string `toml:"default_profile"`
	MaxSize        int    `toml:"max_size"`
}

// Config holds the configuration data from configuration files
// or flags.
//
// This variable sets some default values that might be overwritten
// by a configuration file.
var Config = config{
	Main: configMain{
		LogLevel: "info",
		DevMode:  false,
	},
	Server: configServer{
		Host:        "127.0.0.1",
		Port:        5000,
		MaxUploadMB: 32,
	},
	Render: configRender{
		DebounceMS: 30,
		NumWorkers: runtime.NumCPU(),
	},
}

// Debounce returns the render debounce delay.
func (c configRender) Debounce() time.Duration {
	if c.DebounceMS < 0 {
		return 0
	}
	return time.Duration(c.DebounceMS) * time.Millisecond
}

// MaxUploadBytes returns the maximum request body size.
func (c configServer) MaxUploadBytes() int64 {
	if c.MaxUploadMB < 1 {
		return 1 << 20
	}
	return int64(c.MaxUploadMB) << 20
}

// LoadConfiguration loads the configuration file.
func LoadConfiguration(configPath string) error {
	if configPath == "" {
		return nil
	}

	fd, err := os.Open(configPath)
	if err != nil {
		return err
	}
	defer fd.Close() //nolint:errcheck

	dec := toml.NewDecoder(fd)
	if err := dec.Decode(&Config); err != nil {
		return err
	}

	return nil
}

// WriteConfig writes configuration to a file.
func WriteConfig(filename string) error {
	fd, err := os.OpenFile(filename, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}

	enc := toml.NewEncoder(fd).
		Indentation("  ").
		Order(toml.OrderPreserve)

	if err = enc.Encode(Config); err != nil {
		defer fd.Close() //nolint:errcheck
		return err
	}

	return fd.Close()
}

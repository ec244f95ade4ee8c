// Package config loads server configuration from a JSON file with sane
// defaults and environment overrides.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"
)

// Config stores server configuration parameters.
type Config struct {
	Port          int    `json:"port"`            // server port number
	ModelPath     string `json:"model_path"`      // ONNX model artifact location
	LogFile       string `json:"log_file"`        // server log file, empty means stdout
	Verbose       int    `json:"verbose"`         // verbose output
	LimiterPeriod string `json:"rate"`            // rate limiter value, e.g. 100-S
	MaxUploadSize int64  `json:"max_upload_size"` // upload ceiling in bytes
}

// Load reads the configuration file when given, applies defaults, and honors
// the PORT environment variable.
func Load(configFile string) (*Config, error) {
	cfg := &Config{}
	if configFile != "" {
		data, err := os.ReadFile(filepath.Clean(configFile))
		if err != nil {
			return nil, errors.Wrapf(err, "unable to read config %s", configFile)
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrapf(err, "unable to parse config %s", configFile)
		}
	}

	if port := os.Getenv("PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid PORT value %q", port)
		}
		cfg.Port = p
	}

	// default values
	if cfg.Port == 0 {
		cfg.Port = 8080
	}
	if cfg.ModelPath == "" {
		cfg.ModelPath = filepath.Join("models", "cifar10.onnx")
	}
	if cfg.LimiterPeriod == "" {
		cfg.LimiterPeriod = "100-S"
	}
	if cfg.MaxUploadSize == 0 {
		cfg.MaxUploadSize = 5 << 20
	}
	return cfg, nil
}

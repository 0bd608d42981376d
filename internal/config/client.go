package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ramalamadingdong/Drifitng-Autonomously-Torcs/internal/evaluation"
)

// Defaults applied by the Get* accessors when a field is omitted.
const (
	DefaultHost        = "localhost"
	DefaultPort        = 3001
	DefaultTimeout     = time.Second
	DefaultFitnessFile = "fitnessFile"
	DefaultLogLevel    = "info"
)

const maxFileSize = 1 * 1024 * 1024 // 1MB

// ClientConfig is the on-disk configuration of the race client. Fields
// omitted from the file stay nil and resolve to their defaults.
type ClientConfig struct {
	Host        *string        `yaml:"host,omitempty"`
	Port        *int           `yaml:"port,omitempty"`
	Timeout     *string        `yaml:"timeout,omitempty"` // duration string like "1s"
	FitnessFile *string        `yaml:"fitness_file,omitempty"`
	Weights     *WeightsConfig `yaml:"weights,omitempty"`
	StopOn      []string       `yaml:"stop_on,omitempty"`
	DebugListen *string        `yaml:"debug_listen,omitempty"`
	LogLevel    *string        `yaml:"log_level,omitempty"`
}

// WeightsConfig holds the fitness weights.
type WeightsConfig struct {
	Speed           *float64 `yaml:"speed,omitempty"`
	Distance        *float64 `yaml:"distance,omitempty"`
	SteeringPenalty *float64 `yaml:"steering_penalty,omitempty"`
}

func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }
func ptrFloat64(v float64) *float64 { return &v }

// DefaultClientConfig returns a ClientConfig with every field populated.
func DefaultClientConfig() *ClientConfig {
	w := evaluation.DefaultWeights()
	return &ClientConfig{
		Host:        ptrString(DefaultHost),
		Port:        ptrInt(DefaultPort),
		Timeout:     ptrString(DefaultTimeout.String()),
		FitnessFile: ptrString(DefaultFitnessFile),
		Weights: &WeightsConfig{
			Speed:           ptrFloat64(w.Speed),
			Distance:        ptrFloat64(w.Distance),
			SteeringPenalty: ptrFloat64(w.SteeringPenalty),
		},
		DebugListen: ptrString(""),
		LogLevel:    ptrString(DefaultLogLevel),
	}
}

// LoadClientConfig loads a ClientConfig from a YAML file.
// The file must have a .yaml or .yml extension and be under 1MB. Unknown keys
// are rejected so that typos do not silently fall back to defaults.
func LoadClientConfig(path string) (*ClientConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("config file must have .yaml or .yml extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := ParseClientConfig(data)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParseClientConfig decodes and validates YAML configuration bytes. An empty
// document yields an empty config.
func ParseClientConfig(data []byte) (*ClientConfig, error) {
	cfg := &ClientConfig{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that the configuration values are valid.
func (c *ClientConfig) Validate() error {
	if c.Port != nil && (*c.Port < 1 || *c.Port > 65535) {
		return fmt.Errorf("port must be between 1 and 65535, got %d", *c.Port)
	}

	if c.Timeout != nil && *c.Timeout != "" {
		d, err := time.ParseDuration(*c.Timeout)
		if err != nil {
			return fmt.Errorf("invalid timeout '%s': %w", *c.Timeout, err)
		}
		if d <= 0 {
			return fmt.Errorf("timeout must be positive, got %s", d)
		}
	}

	if c.FitnessFile != nil && strings.TrimSpace(*c.FitnessFile) == "" {
		return errors.New("fitness_file must not be empty")
	}

	if err := c.GetWeights().Validate(); err != nil {
		return err
	}

	for _, name := range c.StopOn {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "crashed", "stuck", "lap":
		default:
			return fmt.Errorf("unknown stop_on condition %q (want crashed, stuck or lap)", name)
		}
	}

	return nil
}

// GetHost returns the server host or the default.
func (c *ClientConfig) GetHost() string {
	if c.Host == nil || *c.Host == "" {
		return DefaultHost
	}
	return *c.Host
}

// GetPort returns the server port or the default.
func (c *ClientConfig) GetPort() int {
	if c.Port == nil {
		return DefaultPort
	}
	return *c.Port
}

// GetTimeout parses and returns the receive timeout.
func (c *ClientConfig) GetTimeout() time.Duration {
	if c.Timeout == nil || *c.Timeout == "" {
		return DefaultTimeout
	}
	d, err := time.ParseDuration(*c.Timeout)
	if err != nil || d <= 0 {
		return DefaultTimeout
	}
	return d
}

// GetFitnessFile returns the fitness output path or the default.
func (c *ClientConfig) GetFitnessFile() string {
	if c.FitnessFile == nil || *c.FitnessFile == "" {
		return DefaultFitnessFile
	}
	return *c.FitnessFile
}

// GetWeights returns the fitness weights, filling omitted ones from
// evaluation.DefaultWeights.
func (c *ClientConfig) GetWeights() evaluation.Weights {
	w := evaluation.DefaultWeights()
	if c.Weights == nil {
		return w
	}
	if c.Weights.Speed != nil {
		w.Speed = *c.Weights.Speed
	}
	if c.Weights.Distance != nil {
		w.Distance = *c.Weights.Distance
	}
	if c.Weights.SteeringPenalty != nil {
		w.SteeringPenalty = *c.Weights.SteeringPenalty
	}
	return w
}

// GetStopOn returns the configured stop conditions.
func (c *ClientConfig) GetStopOn() []string {
	return append([]string(nil), c.StopOn...)
}

// GetDebugListen returns the debug HTTP listen address. Empty disables it.
func (c *ClientConfig) GetDebugListen() string {
	if c.DebugListen == nil {
		return ""
	}
	return *c.DebugListen
}

// GetLogLevel returns the log level name or the default.
func (c *ClientConfig) GetLogLevel() string {
	if c.LogLevel == nil || *c.LogLevel == "" {
		return DefaultLogLevel
	}
	return *c.LogLevel
}

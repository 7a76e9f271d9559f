package server

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/iwvelando/pipeline-forecast/internal/config"
	"github.com/iwvelando/pipeline-forecast/pkg/constants"
	"gopkg.in/yaml.v3"
)

// DefaultShutdownTimeout bounds how long serve waits for in-flight forecasts.
const DefaultShutdownTimeout = 10 * time.Second

// Config defines runtime parameters for the forecast API.
type Config struct {
	Address         string `yaml:"address"`
	MaxUploadSize   string `yaml:"maxUploadSize"`
	ShutdownTimeout string `yaml:"shutdownTimeout"`
	// DefaultScenario names a scenario YAML file applied to uploads that do
	// not include their own scenario.
	DefaultScenario string               `yaml:"defaultScenario"`
	Logging         config.LoggingConfig `yaml:"logging"`

	uploadSizeBytes int64
	shutdown        time.Duration
}

var sizeUnits = map[string]int64{
	"":   1,
	"B":  1,
	"K":  1 << 10,
	"KB": 1 << 10,
	"M":  1 << 20,
	"MB": 1 << 20,
	"G":  1 << 30,
	"GB": 1 << 30,
}

func defaultConfig() *Config {
	return &Config{
		Address:         constants.DefaultServerAddress,
		MaxUploadSize:   strconv.FormatInt(constants.DefaultMaxUploadSizeBytes, 10),
		ShutdownTimeout: DefaultShutdownTimeout.String(),
		uploadSizeBytes: constants.DefaultMaxUploadSizeBytes,
		shutdown:        DefaultShutdownTimeout,
	}
}

// LoadConfig reads the server configuration at path. An empty path or a
// missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read server config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse server config %s: %w", path, err)
	}
	if err := cfg.normalize(); err != nil {
		return nil, fmt.Errorf("invalid server config %s: %w", path, err)
	}
	return cfg, nil
}

// BaseScenario reads the default scenario file, which must load as a
// scenario. It returns nil when none is configured.
func (c *Config) BaseScenario() ([]byte, error) {
	if c.DefaultScenario == "" {
		return nil, nil
	}

	data, err := os.ReadFile(c.DefaultScenario)
	if err != nil {
		return nil, fmt.Errorf("failed to read default scenario: %w", err)
	}
	if _, err := config.LoadConfigurationFromReader(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("invalid default scenario %s: %w", c.DefaultScenario, err)
	}
	return data, nil
}

// UploadSizeBytes returns the workbook upload limit in bytes.
func (c *Config) UploadSizeBytes() int64 {
	return c.uploadSizeBytes
}

// SetUploadSizeBytes overrides the upload limit. Non-positive sizes are ignored.
func (c *Config) SetUploadSizeBytes(size int64) {
	if size > 0 {
		c.uploadSizeBytes = size
		c.MaxUploadSize = strconv.FormatInt(size, 10)
	}
}

// ShutdownGrace returns how long a graceful shutdown may take.
func (c *Config) ShutdownGrace() time.Duration {
	if c.shutdown <= 0 {
		return DefaultShutdownTimeout
	}
	return c.shutdown
}

func (c *Config) normalize() error {
	c.Address = strings.TrimSpace(c.Address)
	if c.Address == "" {
		c.Address = constants.DefaultServerAddress
	}
	c.DefaultScenario = strings.TrimSpace(c.DefaultScenario)

	size, err := ParseSize(c.MaxUploadSize)
	if err != nil {
		return err
	}
	if size <= 0 {
		size = constants.DefaultMaxUploadSizeBytes
	}
	c.uploadSizeBytes = size
	c.MaxUploadSize = strconv.FormatInt(size, 10)

	c.shutdown = DefaultShutdownTimeout
	if timeout := strings.TrimSpace(c.ShutdownTimeout); timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return fmt.Errorf("invalid shutdownTimeout %q: %w", c.ShutdownTimeout, err)
		}
		if d > 0 {
			c.shutdown = d
		}
	}
	c.ShutdownTimeout = c.shutdown.String()
	return nil
}

// ParseSize converts a byte count with an optional binary unit ("512",
// "256K", "10MB", "1G") into bytes. Blank input yields the default upload
// limit.
func ParseSize(value string) (int64, error) {
	trimmed := strings.ToUpper(strings.TrimSpace(value))
	if trimmed == "" {
		return constants.DefaultMaxUploadSizeBytes, nil
	}

	split := strings.IndexFunc(trimmed, func(r rune) bool { return !unicode.IsDigit(r) })
	if split == -1 {
		split = len(trimmed)
	}
	if split == 0 {
		return 0, fmt.Errorf("invalid size: %s", value)
	}

	n, err := strconv.ParseInt(trimmed[:split], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size value %q: %w", value, err)
	}

	unit := strings.TrimSpace(trimmed[split:])
	multiplier, ok := sizeUnits[unit]
	if !ok {
		return 0, fmt.Errorf("unsupported size unit %q", unit)
	}
	if n > math.MaxInt64/multiplier {
		return 0, fmt.Errorf("size overflow for value %s", value)
	}
	return n * multiplier, nil
}

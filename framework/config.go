package framework

import (
	"fmt"
	"github.com/rs/zerolog"
	"github.com/taoxinyi/ruad/framework/wire"
	"gopkg.in/yaml.v3"
	"io/ioutil"
	"net"
	"strconv"
	"time"
)

const (
	defaultHost           = "0.0.0.0"
	defaultPort           = 8080
	defaultBacklog        = 128
	defaultRoot           = "public"
	defaultReadBufferSize = 4096
	defaultMaxRequestSize = 64 << 10
	defaultShutdownGrace  = 5 * time.Second
)

// Config is the configuration for a server
type Config struct {
	// Host and Port form the listening address
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	// Backlog is the accept queue length passed to listen(2)
	Backlog int `yaml:"backlog"`
	// Root is the directory static files are served from
	Root string `yaml:"root"`
	// MaxConns caps the number of connections served at once. 0 means no limit
	MaxConns int `yaml:"max_conns"`
	// ReadTimeout and WriteTimeout are per connection deadlines. 0 means no deadline
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	// ShutdownTimeout is how long in-flight connections may finish after shutdown
	// starts. Connections still open after it are interrupted. 0 interrupts them at once
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	// ReadBufferSize is the initial read buffer of a connection
	ReadBufferSize int `yaml:"read_buffer_size"`
	// MaxRequestSize is the largest request (line, headers and body) accepted
	MaxRequestSize int `yaml:"max_request_size"`
	// Strict rejects over-long tokens and extra headers instead of truncating them
	Strict bool `yaml:"strict"`
	// LogLevel is one of zerolog's level names
	LogLevel string `yaml:"log_level"`

	// Logger receives all server logs, nil disables logging
	Logger *zerolog.Logger `yaml:"-"`
}

// DefaultConfig returns a Config with every field set to its default
func DefaultConfig() Config {
	config := Config{Port: defaultPort, Backlog: defaultBacklog, ShutdownTimeout: defaultShutdownGrace}
	setDefaultConfig(&config)
	return config
}

func setDefaultConfig(config *Config) {
	if config.Host == "" {
		config.Host = defaultHost
	}
	if config.Root == "" {
		config.Root = defaultRoot
	}
	if config.ReadBufferSize <= 0 {
		config.ReadBufferSize = defaultReadBufferSize
	}
	if config.MaxRequestSize <= 0 {
		config.MaxRequestSize = defaultMaxRequestSize
	}
	if config.LogLevel == "" {
		config.LogLevel = zerolog.InfoLevel.String()
	}
	if config.Logger == nil {
		nop := zerolog.Nop()
		config.Logger = &nop
	}
}

// LoadConfigFile overlays the YAML file at path onto config.
// Keys missing from the file keep their current values.
func LoadConfigFile(path string, config *Config) error {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return nil
}

// Validate checks the configuration for values the server cannot run with
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.Backlog < 0 {
		return fmt.Errorf("invalid backlog: %d", c.Backlog)
	}
	if c.MaxConns < 0 {
		return fmt.Errorf("invalid max connections: %d", c.MaxConns)
	}
	if c.ReadTimeout < 0 || c.WriteTimeout < 0 || c.ShutdownTimeout < 0 {
		return fmt.Errorf("timeouts must not be negative")
	}
	if c.Root == "" {
		return fmt.Errorf("root directory must be set")
	}
	if c.MaxRequestSize < c.ReadBufferSize {
		return fmt.Errorf("max request size %d is smaller than the read buffer %d", c.MaxRequestSize, c.ReadBufferSize)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	return nil
}

// Address returns the listening address in host:port form
func (c *Config) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Limits returns the parser limits the configuration asks for
func (c *Config) Limits() wire.Limits {
	limits := wire.DefaultLimits()
	limits.Strict = c.Strict
	return limits
}

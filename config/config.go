// Package config resolves agent settings from command-line flags,
// MSFS_AGENT_* environment variables, an optional YAML file and defaults,
// in that order.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jamescl604/MSFSVoiceAttackPlugin/protocol"
)

const envPrefix = "MSFS_AGENT_"

// Config holds all resolved agent configuration
type Config struct {
	ConfigFile     string
	BridgeURL      string
	TokenFile      string
	Token          string
	ClientName     string
	ConnectTimeout time.Duration
	PollInterval   time.Duration
	WaitInterval   time.Duration
	RequestTimeout time.Duration
	EventRate      float64
	EventBurst     int
	InboxSize      int
	MetricsAddr    string
	LogLevel       string
	LogFormat      string
}

// Flags carries raw command-line values. Empty means unset.
type Flags struct {
	ConfigFile     string
	BridgeURL      string
	TokenFile      string
	Token          string
	ClientName     string
	ConnectTimeout string
	PollInterval   string
	WaitInterval   string
	RequestTimeout string
	EventRate      string
	EventBurst     string
	InboxSize      string
	MetricsAddr    string
	LogLevel       string
	LogFormat      string
}

// FileConfig is the YAML file schema. Values are kept as strings so that
// durations accept both "10s" and plain seconds.
type FileConfig struct {
	BridgeURL      string `yaml:"bridge_url"`
	TokenFile      string `yaml:"token_file"`
	Token          string `yaml:"token"`
	ClientName     string `yaml:"client_name"`
	ConnectTimeout string `yaml:"connect_timeout"`
	PollInterval   string `yaml:"poll_interval"`
	WaitInterval   string `yaml:"wait_interval"`
	RequestTimeout string `yaml:"request_timeout"`
	EventRate      string `yaml:"event_rate"`
	EventBurst     string `yaml:"event_burst"`
	InboxSize      string `yaml:"inbox_size"`
	MetricsAddr    string `yaml:"metrics_addr"`
	LogLevel       string `yaml:"log_level"`
	LogFormat      string `yaml:"log_format"`
}

// Load resolves the configuration and validates it.
func Load(flags Flags) (*Config, error) {
	path := resolve(flags.ConfigFile, "CONFIG", "")

	file := &FileConfig{}
	if path != "" {
		var err error
		if file, err = LoadFile(path); err != nil {
			return nil, fmt.Errorf("load config %s: %w", path, err)
		}
	}

	cfg := &Config{
		ConfigFile:     path,
		BridgeURL:      resolveString(flags.BridgeURL, "BRIDGE_URL", file.BridgeURL, "ws://127.0.0.1:8500/simconnect"),
		TokenFile:      resolveString(flags.TokenFile, "TOKEN_FILE", file.TokenFile, ""),
		Token:          resolveString(flags.Token, "TOKEN", file.Token, ""),
		ClientName:     resolveString(flags.ClientName, "CLIENT_NAME", file.ClientName, "msfs-agent"),
		ConnectTimeout: resolveDuration(flags.ConnectTimeout, "CONNECT_TIMEOUT", file.ConnectTimeout, 5*time.Second),
		PollInterval:   resolveDuration(flags.PollInterval, "POLL_INTERVAL", file.PollInterval, time.Millisecond),
		WaitInterval:   resolveDuration(flags.WaitInterval, "WAIT_INTERVAL", file.WaitInterval, 10*time.Millisecond),
		RequestTimeout: resolveDuration(flags.RequestTimeout, "REQUEST_TIMEOUT", file.RequestTimeout, 5*time.Second),
		EventRate:      resolveFloat(flags.EventRate, "EVENT_RATE", file.EventRate, 0),
		EventBurst:     resolveInt(flags.EventBurst, "EVENT_BURST", file.EventBurst, 1),
		InboxSize:      resolveInt(flags.InboxSize, "INBOX_SIZE", file.InboxSize, 64),
		MetricsAddr:    resolveString(flags.MetricsAddr, "METRICS_ADDR", file.MetricsAddr, ""),
		LogLevel:       resolveString(flags.LogLevel, "LOG_LEVEL", file.LogLevel, "INFO"),
		LogFormat:      resolveString(flags.LogFormat, "LOG_FORMAT", file.LogFormat, "console"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile parses a YAML config file. Unknown keys are rejected.
func LoadFile(path string) (*FileConfig, error) {
	// #nosec G304 -- the path is supplied by the operator
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var fc FileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil {
		if errors.Is(err, io.EOF) {
			return &FileConfig{}, nil
		}
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	return &fc, nil
}

// resolve returns the flag value, then the env var, then the fallback.
func resolve(flagVal, env, fallback string) string {
	if flagVal != "" {
		return flagVal
	}
	if val := os.Getenv(envPrefix + env); val != "" {
		return val
	}
	return fallback
}

func resolveString(flagVal, env, fileVal, defaultVal string) string {
	if val := resolve(flagVal, env, fileVal); val != "" {
		return val
	}
	return defaultVal
}

// resolveDuration supports both duration strings ("10s", "1m") and plain
// seconds ("60").
func resolveDuration(flagVal, env, fileVal string, defaultVal time.Duration) time.Duration {
	return protocol.ParseDuration(resolve(flagVal, env, fileVal), defaultVal)
}

func resolveInt(flagVal, env, fileVal string, defaultVal int) int {
	val := resolve(flagVal, env, fileVal)
	if val == "" {
		return defaultVal
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(val))
	if err != nil || parsed < 0 {
		return defaultVal
	}
	return parsed
}

func resolveFloat(flagVal, env, fileVal string, defaultVal float64) float64 {
	val := resolve(flagVal, env, fileVal)
	if val == "" {
		return defaultVal
	}
	parsed, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
	if err != nil || parsed < 0 {
		return defaultVal
	}
	return parsed
}

// LoadToken loads the token from file or inline value
func (c *Config) LoadToken() (string, error) {
	if c.TokenFile != "" {
		// #nosec G304 -- the path is supplied by the operator
		data, err := os.ReadFile(c.TokenFile)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(data)), nil
	}
	return strings.TrimSpace(c.Token), nil
}

// Validate checks that the resolved values are usable
func (c *Config) Validate() error {
	var errs []error

	u, err := url.Parse(c.BridgeURL)
	switch {
	case err != nil:
		errs = append(errs, fmt.Errorf("bridge url: %w", err))
	case u.Scheme != "ws" && u.Scheme != "wss":
		errs = append(errs, fmt.Errorf("bridge url %q: scheme must be ws or wss", c.BridgeURL))
	}

	if strings.TrimSpace(c.ClientName) == "" {
		errs = append(errs, errors.New("client name must not be blank"))
	}
	if c.PollInterval <= 0 {
		errs = append(errs, fmt.Errorf("poll interval must be positive, got %s", c.PollInterval))
	}
	if c.WaitInterval <= 0 {
		errs = append(errs, fmt.Errorf("wait interval must be positive, got %s", c.WaitInterval))
	}
	if c.InboxSize < 1 {
		errs = append(errs, fmt.Errorf("inbox size must be at least 1, got %d", c.InboxSize))
	}

	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG", "INFO", "WARN", "WARNING", "ERROR":
	default:
		errs = append(errs, fmt.Errorf("unknown log level %q", c.LogLevel))
	}
	switch strings.ToLower(c.LogFormat) {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", c.LogFormat))
	}

	return errors.Join(errs...)
}

package config

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/mandelsoft/vfs/pkg/vfs"

	"go.hackfix.me/bulletin/xtime"
)

// Trace outputs supported by Telemetry.TraceOutput.
const (
	TraceOutputNone   = "none"
	TraceOutputStdout = "stdout"
	TraceOutputStderr = "stderr"
)

// Config represents the application configuration, backed by a filesystem for
// persistence.
type Config struct {
	Server    Server
	Session   Session
	Telemetry Telemetry

	fs   vfs.FileSystem
	path string
}

// NewConfig creates a new Config instance with the specified filesystem
// and configuration file path.
func NewConfig(fs vfs.FileSystem, path string) *Config {
	return &Config{fs: fs, path: path}
}

// Load reads and parses the configuration file from the filesystem.
// If the file doesn't exist, it initializes with an empty configuration.
func (c *Config) Load() error {
	configJSON, err := vfs.ReadFile(c.fs, c.path)
	if err != nil && !vfs.IsErrNotExist(err) {
		return fmt.Errorf("failed reading configuration file: %w", err)
	}

	if len(configJSON) == 0 {
		configJSON = []byte("{}")
	}

	if err = json.Unmarshal(configJSON, c); err != nil {
		return fmt.Errorf("failed parsing configuration file: %w", err)
	}

	return nil
}

// Path returns the filesystem path where the configuration is stored.
func (c *Config) Path() string {
	return c.path
}

// Save writes the current configuration to the filesystem as JSON.
func (c *Config) Save() error {
	if err := c.fs.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("failed creating configuration directory: %w", err)
	}
	configJSON, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed serializing configuration data: %w", err)
	}
	// The file contains the session secret.
	if err = vfs.WriteFile(c.fs, c.path, configJSON, 0o600); err != nil {
		return fmt.Errorf("failed writing configuration file: %w", err)
	}

	return nil
}

// Server defines configuration options specific to the HTTP server.
type Server struct {
	// Address is the network address in [host]:port format the server will listen on.
	Address sql.Null[string] `json:"address"`
	// ReadTimeout is the maximum duration for reading an entire request.
	// It serializes from/to xtime.Duration string values.
	ReadTimeout sql.Null[time.Duration] `json:"read_timeout"`
	// WriteTimeout is the maximum duration before timing out writes of a response.
	// It serializes from/to xtime.Duration string values.
	WriteTimeout sql.Null[time.Duration] `json:"write_timeout"`
	// MaxBodySize is the maximum amount of bytes read from request bodies.
	MaxBodySize sql.Null[int64] `json:"max_body_size"`
}

// Session defines options of user sessions.
type Session struct {
	// Secret is the base58 encoded secret session tokens are signed with.
	Secret sql.Null[string] `json:"secret"`
	// Expiration is the amount of time session tokens are valid for.
	// It serializes from/to xtime.Duration string values. Minimum value: 1 minute.
	Expiration sql.Null[time.Duration] `json:"expiration"`
}

// Telemetry defines options of OpenTelemetry tracing.
type Telemetry struct {
	// TraceOutput is where spans are exported to. One of "none", "stdout" or
	// "stderr".
	TraceOutput sql.Null[string] `json:"trace_output"`
}

type cfgWrapper struct {
	Server    srvCfgWrapper     `json:"server"`
	Session   sessionCfgWrapper `json:"session"`
	Telemetry telemetryWrapper  `json:"telemetry"`
}
type srvCfgWrapper struct {
	Address      string `json:"address,omitempty"`
	ReadTimeout  string `json:"read_timeout,omitempty"`
	WriteTimeout string `json:"write_timeout,omitempty"`
	MaxBodySize  int64  `json:"max_body_size,omitempty"`
}
type sessionCfgWrapper struct {
	Secret     string `json:"secret,omitempty"`
	Expiration string `json:"expiration,omitempty"`
}
type telemetryWrapper struct {
	TraceOutput string `json:"trace_output,omitempty"`
}

// MarshalJSON implements custom JSON marshaling to convert sql.Null values
// to their underlying types, omitting invalid/null fields from the output.
func (c Config) MarshalJSON() ([]byte, error) {
	w := cfgWrapper{}

	if c.Server.Address.Valid {
		w.Server.Address = c.Server.Address.V
	}
	if c.Server.ReadTimeout.Valid {
		w.Server.ReadTimeout = xtime.FormatDuration(c.Server.ReadTimeout.V, time.Second)
	}
	if c.Server.WriteTimeout.Valid {
		w.Server.WriteTimeout = xtime.FormatDuration(c.Server.WriteTimeout.V, time.Second)
	}
	if c.Server.MaxBodySize.Valid {
		w.Server.MaxBodySize = c.Server.MaxBodySize.V
	}

	if c.Session.Secret.Valid {
		w.Session.Secret = c.Session.Secret.V
	}
	if c.Session.Expiration.Valid {
		w.Session.Expiration = xtime.FormatDuration(c.Session.Expiration.V, time.Minute)
	}

	if c.Telemetry.TraceOutput.Valid {
		w.Telemetry.TraceOutput = c.Telemetry.TraceOutput.V
	}

	//nolint:wrapcheck // This is fine.
	return json.Marshal(w)
}

// UnmarshalJSON implements custom JSON unmarshaling to convert plain values
// into sql.Null types and parse duration strings into time.Duration values.
func (c *Config) UnmarshalJSON(data []byte) error {
	var w cfgWrapper
	if err := json.Unmarshal(data, &w); err != nil {
		//nolint:wrapcheck // This is fine.
		return err
	}

	if w.Server.Address != "" {
		c.Server.Address = sql.Null[string]{V: w.Server.Address, Valid: true}
	}
	if w.Server.ReadTimeout != "" {
		dur, err := parseDuration(w.Server.ReadTimeout, time.Second)
		if err != nil {
			return fmt.Errorf("failed parsing server read timeout: %w", err)
		}
		c.Server.ReadTimeout = sql.Null[time.Duration]{V: dur, Valid: true}
	}
	if w.Server.WriteTimeout != "" {
		dur, err := parseDuration(w.Server.WriteTimeout, time.Second)
		if err != nil {
			return fmt.Errorf("failed parsing server write timeout: %w", err)
		}
		c.Server.WriteTimeout = sql.Null[time.Duration]{V: dur, Valid: true}
	}
	if w.Server.MaxBodySize < 0 {
		return fmt.Errorf("invalid server max body size: %d", w.Server.MaxBodySize)
	}
	if w.Server.MaxBodySize > 0 {
		c.Server.MaxBodySize = sql.Null[int64]{V: w.Server.MaxBodySize, Valid: true}
	}

	if w.Session.Secret != "" {
		c.Session.Secret = sql.Null[string]{V: w.Session.Secret, Valid: true}
	}
	if w.Session.Expiration != "" {
		dur, err := parseDuration(w.Session.Expiration, time.Minute)
		if err != nil {
			return fmt.Errorf("failed parsing session expiration: %w", err)
		}
		c.Session.Expiration = sql.Null[time.Duration]{V: dur, Valid: true}
	}

	switch w.Telemetry.TraceOutput {
	case "":
	case TraceOutputNone, TraceOutputStdout, TraceOutputStderr:
		c.Telemetry.TraceOutput = sql.Null[string]{V: w.Telemetry.TraceOutput, Valid: true}
	default:
		return fmt.Errorf("invalid trace output %q", w.Telemetry.TraceOutput)
	}

	return nil
}

// SetDefaults sets default configuration values if they weren't set already.
func (c *Config) SetDefaults() {
	if !c.Server.Address.Valid {
		c.Server.Address = sql.Null[string]{V: "localhost:8080", Valid: true}
	}
	if !c.Server.ReadTimeout.Valid {
		c.Server.ReadTimeout = sql.Null[time.Duration]{V: 30 * time.Second, Valid: true}
	}
	if !c.Server.WriteTimeout.Valid {
		c.Server.WriteTimeout = sql.Null[time.Duration]{V: time.Minute, Valid: true}
	}
	if !c.Server.MaxBodySize.Valid {
		// 1MiB
		c.Server.MaxBodySize = sql.Null[int64]{V: 1 << 20, Valid: true}
	}
	if !c.Session.Expiration.Valid {
		c.Session.Expiration = sql.Null[time.Duration]{V: 7 * 24 * time.Hour, Valid: true}
	}
	if !c.Telemetry.TraceOutput.Valid {
		c.Telemetry.TraceOutput = sql.Null[string]{V: TraceOutputNone, Valid: true}
	}
}

func parseDuration(s string, minimum time.Duration) (time.Duration, error) {
	dur, err := xtime.ParseDuration(s)
	if err != nil {
		return 0, err //nolint:wrapcheck // This is wrapped by the caller.
	}
	if dur < minimum {
		return 0, fmt.Errorf("duration must be at least %s", xtime.FormatDuration(minimum, 0))
	}

	return dur, nil
}

package config

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/vango-dev/vrt/internal/errors"
	"github.com/vango-dev/vrt/pkg/export"
	"github.com/vango-dev/vrt/pkg/oplog"
	"github.com/vango-dev/vrt/pkg/reactive"
	"github.com/vango-dev/vrt/pkg/renderer"
)

// FileNames are the config file names Load looks for, in order.
var FileNames = []string{"vrt.json", "vrt.yaml", "vrt.yml", "vrt.toml"}

const (
	// DefaultInspectAddr is the inspector listen address.
	DefaultInspectAddr = ":7070"

	// DefaultNamespace is the Prometheus namespace.
	DefaultNamespace = "vrt"
)

// Config is the vrt configuration.
type Config struct {
	Log        LogConfig        `json:"log,omitempty" yaml:"log,omitempty" toml:"log,omitempty"`
	Reactivity ReactivityConfig `json:"reactivity,omitempty" yaml:"reactivity,omitempty" toml:"reactivity,omitempty"`
	Metrics    MetricsConfig    `json:"metrics,omitempty" yaml:"metrics,omitempty" toml:"metrics,omitempty"`
	Tracing    TracingConfig    `json:"tracing,omitempty" yaml:"tracing,omitempty" toml:"tracing,omitempty"`
	Inspect    InspectConfig    `json:"inspect,omitempty" yaml:"inspect,omitempty" toml:"inspect,omitempty"`
	Render     RenderConfig     `json:"render,omitempty" yaml:"render,omitempty" toml:"render,omitempty"`

	configPath string
}

// LogConfig configures the slog handler.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `json:"level,omitempty" yaml:"level,omitempty" toml:"level,omitempty"`

	// Format is text or json.
	Format string `json:"format,omitempty" yaml:"format,omitempty" toml:"format,omitempty"`
}

// ReactivityConfig configures the dependency tracker.
type ReactivityConfig struct {
	// EdgePolicy is retain or clear. See reactive.EdgePolicy.
	EdgePolicy string `json:"edgePolicy,omitempty" yaml:"edgePolicy,omitempty" toml:"edgePolicy,omitempty"`
}

// MetricsConfig configures Prometheus metric names.
type MetricsConfig struct {
	Namespace string `json:"namespace,omitempty" yaml:"namespace,omitempty" toml:"namespace,omitempty"`
	Subsystem string `json:"subsystem,omitempty" yaml:"subsystem,omitempty" toml:"subsystem,omitempty"`
}

// TracingConfig configures component render spans.
type TracingConfig struct {
	Enabled    bool   `json:"enabled,omitempty" yaml:"enabled,omitempty" toml:"enabled,omitempty"`
	TracerName string `json:"tracerName,omitempty" yaml:"tracerName,omitempty" toml:"tracerName,omitempty"`
}

// InspectConfig configures `vrt serve`.
type InspectConfig struct {
	Addr  string `json:"addr,omitempty" yaml:"addr,omitempty" toml:"addr,omitempty"`
	Scene string `json:"scene,omitempty" yaml:"scene,omitempty" toml:"scene,omitempty"`
}

// RenderConfig configures `vrt render`.
type RenderConfig struct {
	// Format is the op log encoding: text, json or msgpack.
	Format string `json:"format,omitempty" yaml:"format,omitempty" toml:"format,omitempty"`

	// Export is a directory or s3://bucket/prefix to write snapshots to.
	Export string `json:"export,omitempty" yaml:"export,omitempty" toml:"export,omitempty"`
}

// New returns a config with defaults applied.
func New() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load finds the first config file in dir and loads it.
func Load(dir string) (*Config, error) {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}
	return nil, errors.New("C100").
		WithDetail("No vrt.json, vrt.yaml, vrt.yml or vrt.toml found in " + dir).
		WithSuggestion("Run 'vrt render' without --config to use defaults, or create vrt.yaml")
}

// LoadOrDefault loads the config in dir, or returns defaults when there is
// none. Environment overrides apply either way.
func LoadOrDefault(dir string) (*Config, error) {
	cfg, err := Load(dir)
	if errors.Code(err) == "C100" {
		cfg = New()
		cfg.applyEnvOverrides()
		return cfg, cfg.Validate()
	}
	return cfg, err
}

// LoadFile loads the config at path. The format follows the extension.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("C100").WithDetail("No config file at " + path)
		}
		return nil, errors.New("C101").Wrap(err)
	}

	cfg := &Config{}
	if err := decode(path, data, cfg); err != nil {
		return nil, err
	}

	cfg.configPath = path
	cfg.applyDefaults()
	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(path string, data []byte, cfg *Config) error {
	var err error
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		err = json.Unmarshal(data, cfg)
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err = dec.Decode(cfg); err == io.EOF {
			err = nil
		}
	case ".toml":
		var md toml.MetaData
		md, err = toml.Decode(string(data), cfg)
		if err == nil {
			if undecoded := md.Undecoded(); len(undecoded) > 0 {
				return errors.New("C101").WithDetailf("unknown key %q in %s", undecoded[0].String(), path)
			}
		}
	default:
		return errors.New("C102").WithDetailf("%s has extension %q", path, ext)
	}
	if err != nil {
		return errors.New("C101").
			WithDetailf("Failed to parse %s: %v", filepath.Base(path), err).
			Wrap(err)
	}
	return nil
}

// Save writes the config back to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the config to path in the format its extension names.
func (c *Config) SaveTo(path string) error {
	var buf bytes.Buffer
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		data, err := json.MarshalIndent(c, "", "  ")
		if err != nil {
			return errors.New("C104").Wrap(err)
		}
		buf.Write(data)
		buf.WriteByte('\n')
	case ".yaml", ".yml":
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(c); err != nil {
			return errors.New("C104").Wrap(err)
		}
		enc.Close()
	case ".toml":
		if err := toml.NewEncoder(&buf).Encode(c); err != nil {
			return errors.New("C104").Wrap(err)
		}
	default:
		return errors.New("C102").WithDetailf("%s has extension %q", path, ext)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return errors.New("C104").Wrap(err)
	}
	c.configPath = path
	return nil
}

// Path returns the file the config was loaded from or saved to.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

func (c *Config) applyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Reactivity.EdgePolicy == "" {
		c.Reactivity.EdgePolicy = reactive.RetainEdges.String()
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultNamespace
	}
	if c.Tracing.TracerName == "" {
		c.Tracing.TracerName = renderer.TracerName
	}
	if c.Inspect.Addr == "" {
		c.Inspect.Addr = DefaultInspectAddr
	}
	if c.Render.Format == "" {
		c.Render.Format = oplog.FormatText.String()
	}
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("VRT_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("VRT_EDGE_POLICY"); v != "" {
		c.Reactivity.EdgePolicy = v
	}
	if v := os.Getenv("VRT_INSPECT_ADDR"); v != "" {
		c.Inspect.Addr = v
	}
}

// Validate checks that every enumerated field holds a known value.
func (c *Config) Validate() error {
	if _, err := parseLevel(c.Log.Level); err != nil {
		return c.invalid("log.level", c.Log.Level, "debug, info, warn or error")
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return c.invalid("log.format", c.Log.Format, "text or json")
	}
	if _, err := reactive.ParseEdgePolicy(c.Reactivity.EdgePolicy); err != nil {
		return c.invalid("reactivity.edgePolicy", c.Reactivity.EdgePolicy, "retain or clear")
	}
	if _, err := oplog.ParseFormat(c.Render.Format); err != nil {
		return c.invalid("render.format", c.Render.Format, "text, json or msgpack")
	}
	if c.Render.Export != "" {
		if _, err := export.ParseTarget(c.Render.Export); err != nil {
			return c.invalid("render.export", c.Render.Export, "a directory or s3://bucket/prefix")
		}
	}
	return nil
}

func (c *Config) invalid(field, value, allowed string) error {
	err := errors.New("C103").
		WithDetailf("%s is %q; expected %s", field, value, allowed)
	if c.configPath != "" {
		err.Location = &errors.Location{File: c.configPath}
	}
	return err
}

// EdgePolicy returns the parsed reactivity.edgePolicy.
func (c *Config) EdgePolicy() reactive.EdgePolicy {
	p, _ := reactive.ParseEdgePolicy(c.Reactivity.EdgePolicy)
	return p
}

// OpFormat returns the parsed render.format.
func (c *Config) OpFormat() oplog.Format {
	f, _ := oplog.ParseFormat(c.Render.Format)
	return f
}

// Logger builds a slog logger writing to w at the configured level and
// format.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	level, _ := parseLevel(c.Log.Level)
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(c.Log.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	err := level.UnmarshalText([]byte(s))
	return level, err
}

// Exists reports whether dir contains a config file.
func Exists(dir string) bool {
	for _, name := range FileNames {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}

package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/dpup/vprofile/internal/clients/attrdb"
)

// EnvPrefix is the prefix of environment overrides. A double underscore
// separates nested keys: VPROFILE_OUTPUT__QUOTE sets output.quote.
const EnvPrefix = "VPROFILE_"

// Config represents the complete profiler configuration
type Config struct {
	DataDir  string                   `koanf:"data_dir"`
	Datasets map[string]DatasetConfig `koanf:"datasets"`
	Output   OutputConfig             `koanf:"output"`
	Log      LogConfig                `koanf:"log"`
	Limits   LimitsConfig             `koanf:"limits"`
}

// DatasetConfig locates a dataset and its attribute tables
type DatasetConfig struct {
	Path  string       `koanf:"path"`
	Links []LinkConfig `koanf:"links"`
}

// LinkConfig ties one layer of a dataset to an attribute table
type LinkConfig struct {
	Layer    int    `koanf:"layer"`
	Driver   string `koanf:"driver"`
	Database string `koanf:"database"`
	Table    string `koanf:"table"`
	Key      string `koanf:"key"`
}

// OutputConfig holds settings for printed and persisted output
type OutputConfig struct {
	Quote     string `koanf:"quote"`
	MapFormat string `koanf:"map_format"`
}

// LogConfig holds logger settings
type LogConfig struct {
	Level    string `koanf:"level"`
	Encoding string `koanf:"encoding"`
}

// LimitsConfig bounds resource use. Zero means unbounded.
type LimitsConfig struct {
	MaxResults int `koanf:"max_results"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		DataDir:  ".",
		Datasets: map[string]DatasetConfig{},
		Output: OutputConfig{
			Quote:     `"`,
			MapFormat: "kml",
		},
		Log: LogConfig{
			Level:    "info",
			Encoding: "console",
		},
	}
}

func defaults() map[string]interface{} {
	d := DefaultConfig()
	return map[string]interface{}{
		"data_dir":           d.DataDir,
		"output.quote":       d.Output.Quote,
		"output.map_format":  d.Output.MapFormat,
		"log.level":          d.Log.Level,
		"log.encoding":       d.Log.Encoding,
		"limits.max_results": d.Limits.MaxResults,
	}
}

// Load reads defaults, then the YAML file at path when path is not empty,
// then environment overrides
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}
	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if cfg.Datasets == nil {
		cfg.Datasets = map[string]DatasetConfig{}
	}
	return cfg, nil
}

// DatasetPath returns the file holding the named dataset. Relative paths
// are resolved against DataDir.
func (c *Config) DatasetPath(name string) string {
	if ds, ok := c.Datasets[name]; ok && ds.Path != "" {
		return c.resolve(ds.Path)
	}
	return filepath.Join(c.DataDir, name+".geojson")
}

// OutputPath returns where a new dataset with the given extension is written
func (c *Config) OutputPath(name, ext string) string {
	return filepath.Join(c.DataDir, name+ext)
}

// Link returns the attribute table link for a dataset layer
func (c *Config) Link(dataset string, layer int) (attrdb.Link, bool) {
	for _, l := range c.Datasets[dataset].Links {
		if l.Layer == layer {
			return l.ToLink(dataset, c.resolve(l.Database)), true
		}
	}
	return attrdb.Link{}, false
}

// ToLink converts the config entry into a database link
func (l LinkConfig) ToLink(dataset, database string) attrdb.Link {
	return attrdb.Link{
		Layer:    l.Layer,
		Name:     dataset,
		Driver:   l.Driver,
		Database: database,
		Table:    l.Table,
		Key:      l.Key,
	}
}

func (c *Config) resolve(path string) string {
	if path == "" || filepath.IsAbs(path) || path == ":memory:" {
		return path
	}
	return filepath.Join(c.DataDir, path)
}

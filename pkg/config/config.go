// Package config loads the auhtml configuration file. Both YAML and HCL are
// accepted; the format is picked from the file extension.
package config

import (
	"bytes"
	"io"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hashicorp/go-multierror"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

// FileNames are the config file names looked for by Discover, in order.
var FileNames = []string{".auhtml.yaml", ".auhtml.yml", ".auhtml.hcl"}

var DefaultFiles = []string{"**/*.html"}

const DefaultLogLevel = "info"

type Config struct {
	// Providers switches completion providers on or off by id. Providers not
	// listed are enabled.
	Providers map[string]bool `json:"providers,omitempty" yaml:"providers,omitempty" hcl:"providers,optional"`
	// Catalog is an extra catalog file merged over the built in HTML catalog.
	// Relative paths are resolved against the directory of the config file.
	Catalog string `json:"catalog,omitempty" yaml:"catalog,omitempty" hcl:"catalog,optional"`
	// Files are the doublestar patterns of the files handled when a command is
	// given a directory.
	Files    []string `json:"files,omitempty" yaml:"files,omitempty" hcl:"files,optional"`
	LogLevel string   `json:"log_level,omitempty" yaml:"log_level,omitempty" hcl:"log_level,optional"`

	dir string
}

func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Providers == nil {
		c.Providers = map[string]bool{}
	}
	if len(c.Files) == 0 {
		c.Files = append([]string(nil), DefaultFiles...)
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
}

// Discover looks for a config file in dir and its parents and returns the
// first one found.
func Discover(fs afero.Fs, dir string) (string, bool) {
	dir = filepath.Clean(dir)
	for {
		for _, name := range FileNames {
			path := filepath.Join(dir, name)
			if ok, err := afero.Exists(fs, path); err == nil && ok {
				return path, true
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// Load reads, decodes and validates the config file at path. Missing keys get
// their defaults.
func Load(fs afero.Fs, path string) (*Config, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	var cfg *Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		cfg, err = parseYAML(data)
	case ".hcl":
		cfg, err = parseHCL(data, path)
	default:
		return nil, errors.Errorf("unsupported config file %s: expected .yaml, .yml or .hcl", path)
	}
	if err != nil {
		return nil, err
	}

	cfg.dir = filepath.Dir(path)
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func parseYAML(data []byte) (*Config, error) {
	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Errorf("parsing YAML: %w", err)
	}
	return &cfg, nil
}

func parseHCL(data []byte, path string) (*Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, path)
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	ctx := &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"config_dir": cty.StringVal(filepath.Dir(path)),
		},
	}

	var cfg Config
	if diags := gohcl.DecodeBody(file.Body, ctx, &cfg); diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}
	return &cfg, nil
}

// Validate reports every problem of the config at once.
func (c *Config) Validate() error {
	var result *multierror.Error

	for _, pattern := range c.Files {
		if !doublestar.ValidatePattern(pattern) {
			result = multierror.Append(result, errors.Errorf("files: invalid pattern %q", pattern))
		}
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		result = multierror.Append(result, errors.Errorf("log_level: %w", err))
	}

	return result.ErrorOrNil()
}

// Enabled reports whether the provider with the given id is switched on.
func (c *Config) Enabled(id string) bool {
	enabled, ok := c.Providers[id]
	return !ok || enabled
}

func (c *Config) Level() zerolog.Level {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}

// CatalogPath is the extra catalog path resolved against the config file
// directory, or "" when there is none.
func (c *Config) CatalogPath() string {
	if c.Catalog == "" || filepath.IsAbs(c.Catalog) || c.dir == "" {
		return c.Catalog
	}
	return filepath.Join(c.dir, c.Catalog)
}

// Matches reports whether path, relative to the directory being walked, is
// covered by one of the file patterns.
func (c *Config) Matches(path string) bool {
	path = filepath.ToSlash(path)
	for _, pattern := range c.Files {
		if ok, err := doublestar.Match(pattern, path); err == nil && ok {
			return true
		}
	}
	return false
}

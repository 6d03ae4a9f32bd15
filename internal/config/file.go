package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is looked up in the current directory.
const DefaultConfigFile = ".roptool.yaml"

// File is the on-disk configuration. Unset fields keep their defaults.
type File struct {
	Arch            *string `yaml:"arch,omitempty" json:"arch,omitempty" jsonschema:"title=Architecture,description=Architecture override,enum=x86,enum=x86-64,enum=arm,enum=arm64"`
	Flavor          *string `yaml:"flavor,omitempty" json:"flavor,omitempty" jsonschema:"title=Flavor,description=Assembly syntax,enum=intel,enum=att,default=intel"`
	Color           *bool   `yaml:"color,omitempty" json:"color,omitempty" jsonschema:"title=Color,description=Colorize listings,default=true"`
	Highlight       *bool   `yaml:"highlight,omitempty" json:"highlight,omitempty" jsonschema:"title=Highlight,description=Syntax highlight instruction operands"`
	Demangle        *bool   `yaml:"demangle,omitempty" json:"demangle,omitempty" jsonschema:"title=Demangle,description=Demangle C++ and Rust symbol names"`
	MinStringLength *int    `yaml:"min_string_length,omitempty" json:"min_string_length,omitempty" jsonschema:"title=Minimum String Length,description=Shortest printable run reported by search,minimum=1,default=6"`
	Protection      *string `yaml:"protection,omitempty" json:"protection,omitempty" jsonschema:"title=Protection,description=Segment protection filter for search,pattern=^[rwx]+$,default=r"`
}

// LoadConfigFile reads a YAML configuration file. A missing file yields
// ErrConfigNotFound.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, err
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &f, nil
}

// FindConfigFile returns the configuration file to use, or "" when there
// is none. The lookup order is:
//  1. configPath, when given (returned even if missing so that loading
//     reports it)
//  2. .roptool.yaml in the current directory
//  3. config.yaml in the XDG config directory
func FindConfigFile(configPath string) string {
	if configPath != "" {
		return configPath
	}

	if cwd, err := os.Getwd(); err == nil {
		p := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	p := filepath.Join(XDGConfigDir(), "config.yaml")
	if _, err := os.Stat(p); err == nil {
		return p
	}
	return ""
}

// Apply copies every set field of f into c.
func (f *File) Apply(c *Config) {
	if f == nil {
		return
	}
	if f.Arch != nil {
		c.Arch = *f.Arch
	}
	if f.Flavor != nil {
		c.Flavor = *f.Flavor
	}
	if f.Color != nil {
		c.Color = *f.Color
	}
	if f.Highlight != nil {
		c.Highlight = *f.Highlight
	}
	if f.Demangle != nil {
		c.Demangle = *f.Demangle
	}
	if f.MinStringLength != nil {
		c.MinStringLength = *f.MinStringLength
	}
	if f.Protection != nil {
		c.Protection = *f.Protection
	}
}

// Load builds a Config from the defaults and the configuration file found
// by FindConfigFile.
func Load(configPath string) (Config, error) {
	cfg := NewConfig()
	path := FindConfigFile(configPath)
	if path == "" {
		return cfg, nil
	}
	f, err := LoadConfigFile(path)
	if err != nil {
		return cfg, err
	}
	f.Apply(&cfg)
	return cfg, nil
}

// Package config loads complore settings from TOML, YAML or JSON files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/panbanda/complore/pkg/models"
)

// Config holds all configuration for complore. The flat top-level keys
// mirror the command-line flags.
type Config struct {
	// Paths are the files, directories or globs to scan.
	Paths []string `koanf:"paths" toml:"paths"`
	// Ignore holds extra patterns in .gitignore syntax.
	Ignore []string `koanf:"ignore" toml:"ignore"`
	// FoldersOnly aggregates file records into one record per directory.
	FoldersOnly bool `koanf:"folders_only" toml:"folders_only"`
	// Height is the metric driving bar size.
	Height string `koanf:"height" toml:"height"`
	// Color is the metric driving bar hue.
	Color string `koanf:"color" toml:"color"`
	// Out is the output file; empty picks a name from the report type.
	Out string `koanf:"out" toml:"out"`
	// Report is the output format.
	Report string `koanf:"report" toml:"report"`
	// Top limits text and markdown summaries to the N largest items.
	Top int `koanf:"top" toml:"top"`
	// Workers bounds concurrent file processing; 0 means 2x NumCPU.
	Workers int `koanf:"workers" toml:"workers"`
	// Collapsed starts every flamegraph section closed.
	Collapsed bool `koanf:"collapsed" toml:"collapsed"`

	Activity ActivityConfig `koanf:"activity" toml:"activity"`
	Exclude  ExcludeConfig  `koanf:"exclude" toml:"exclude"`
	Layout   LayoutConfig   `koanf:"layout" toml:"layout"`
}

// ActivityConfig selects how version-control activity is measured.
type ActivityConfig struct {
	// Backend is one of git (go-git history index), exec (git CLI) or off.
	Backend string `koanf:"backend" toml:"backend"`
}

// ExcludeConfig controls file discovery.
type ExcludeConfig struct {
	Gitignore bool     `koanf:"gitignore" toml:"gitignore"`
	Dirs      []string `koanf:"dirs" toml:"dirs"`
}

// LayoutConfig holds the compact renderer's pixel constants.
type LayoutConfig struct {
	PxPer10LOC   int `koanf:"px_per_10_loc" toml:"px_per_10_loc"`
	ColumnWidth  int `koanf:"column_width" toml:"column_width"`
	GapY         int `koanf:"gap_y" toml:"gap_y"`
	FolderPad    int `koanf:"folder_pad" toml:"folder_pad"`
	FolderBorder int `koanf:"folder_border" toml:"folder_border"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	components := models.DefaultComponents()
	return &Config{
		Paths:  []string{"."},
		Ignore: []string{},
		Height: string(components.Height),
		Color:  string(components.Color),
		Report: "html",
		Top:    20,
		Activity: ActivityConfig{
			Backend: "git",
		},
		Exclude: ExcludeConfig{
			Gitignore: true,
			Dirs:      []string{},
		},
		Layout: LayoutConfig{
			PxPer10LOC:   1,
			ColumnWidth:  10,
			GapY:         1,
			FolderPad:    0,
			FolderBorder: 0,
		},
	}
}

// Components returns the metric-to-channel selection.
func (c *Config) Components() models.Components {
	return models.Components{
		Height: models.ParseMetric(c.Height),
		Color:  models.ParseMetric(c.Color),
	}
}

// Validate reports values the renderers cannot honour. Unknown metric names
// are reported here even though a scan accepts them and scales them to 0.
func (c *Config) Validate() error {
	var errs []error
	if !models.ParseMetric(c.Height).Valid() {
		errs = append(errs, fmt.Errorf("height: unknown metric %q", c.Height))
	}
	if !models.ParseMetric(c.Color).Valid() {
		errs = append(errs, fmt.Errorf("color: unknown metric %q", c.Color))
	}
	switch strings.ToLower(c.Activity.Backend) {
	case "", "git", "exec", "off":
	default:
		errs = append(errs, fmt.Errorf("activity.backend: unknown backend %q", c.Activity.Backend))
	}
	if c.Top < 0 {
		errs = append(errs, fmt.Errorf("top: must not be negative, got %d", c.Top))
	}
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers: must not be negative, got %d", c.Workers))
	}
	if c.Layout.PxPer10LOC < 1 {
		errs = append(errs, fmt.Errorf("layout.px_per_10_loc: must be at least 1, got %d", c.Layout.PxPer10LOC))
	}
	if c.Layout.ColumnWidth < 1 {
		errs = append(errs, fmt.Errorf("layout.column_width: must be at least 1, got %d", c.Layout.ColumnWidth))
	}
	if c.Layout.GapY < 0 || c.Layout.FolderPad < 0 || c.Layout.FolderBorder < 0 {
		errs = append(errs, errors.New("layout: gap_y, folder_pad and folder_border must not be negative"))
	}
	return errors.Join(errs...)
}

// Load loads configuration from a file on top of the defaults.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	// Determine parser based on extension
	var parser koanf.Parser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		parser = toml.Parser()
	}

	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	if err := normalize(k); err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return cfg, nil
}

// normalize accepts the camelCase foldersOnly key and comma-separated
// strings for the list keys.
func normalize(k *koanf.Koanf) error {
	if k.Exists("foldersOnly") && !k.Exists("folders_only") {
		if err := k.Set("folders_only", k.Get("foldersOnly")); err != nil {
			return err
		}
	}
	for _, key := range []string{"paths", "ignore"} {
		if v, ok := k.Get(key).(string); ok {
			if err := k.Set(key, SplitList(v)); err != nil {
				return err
			}
		}
	}
	return nil
}

// SplitList flattens comma-separated values and drops blanks.
func SplitList(values ...string) []string {
	out := []string{}
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// LoadResult is a loaded configuration and the file it came from. Source is
// empty when no config file was found.
type LoadResult struct {
	Config *Config
	Source string
}

// LoadOption configures LoadConfig.
type LoadOption func(*loadOptions)

type loadOptions struct {
	path string
	dirs []string
}

// WithPath loads an explicit file instead of searching.
func WithPath(path string) LoadOption {
	return func(o *loadOptions) {
		o.path = path
	}
}

// WithSearchDirs overrides the directories searched for a config file.
func WithSearchDirs(dirs ...string) LoadOption {
	return func(o *loadOptions) {
		o.dirs = dirs
	}
}

// configNames are the file names searched for, in priority order.
var configNames = []string{
	"complore.toml",
	"complore.yaml",
	"complore.yml",
	"complore.json",
	".complore.toml",
	".complore.yaml",
	".complore.yml",
	".complore.json",
}

// LoadConfig loads an explicit file, or the first config file found in the
// search directories. Finding nothing is not an error.
func LoadConfig(opts ...LoadOption) (*LoadResult, error) {
	o := &loadOptions{dirs: []string{".", ".complore"}}
	for _, opt := range opts {
		opt(o)
	}

	if o.path != "" {
		cfg, err := Load(o.path)
		if err != nil {
			return nil, err
		}
		return &LoadResult{Config: cfg, Source: o.path}, nil
	}

	if path := find(o.dirs); path != "" {
		cfg, err := Load(path)
		if err != nil {
			return nil, err
		}
		return &LoadResult{Config: cfg, Source: path}, nil
	}
	return &LoadResult{Config: DefaultConfig()}, nil
}

func find(dirs []string) string {
	for _, dir := range dirs {
		for _, name := range configNames {
			path := filepath.Join(dir, name)
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				return path
			}
		}
	}
	return ""
}

// LoadFileOrDefault loads path, or searches the standard locations when path
// is empty. On failure it returns the defaults together with the error so
// the caller can log it; the run continues either way.
func LoadFileOrDefault(path string) (*Config, string, error) {
	result, err := LoadConfig(WithPath(path))
	if err != nil {
		return DefaultConfig(), "", err
	}
	return result.Config, result.Source, nil
}

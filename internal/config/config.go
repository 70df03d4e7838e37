// Package config loads the gh-log TOML configuration: repository/title filters
// and the S/M/L/XL size thresholds.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"

	"github.com/BurntSushi/toml"

	"github.com/naka-gawa/gh-log/internal/domain"
)

// AppName names the per-user config and cache directories.
const AppName = "gh-log"

// Config mirrors the on-disk TOML layout.
type Config struct {
	Filter FilterConfig `toml:"filter" yaml:"filter" json:"filter"`
	Size   SizeConfig   `toml:"size" yaml:"size" json:"size"`
}

// FilterConfig holds the exclude/ignore rule lists. Exclude rules hide a PR
// entirely; ignore rules keep it visible but out of every metric. Exclude
// always wins when both match.
type FilterConfig struct {
	ExcludeRepos    []string `toml:"exclude_repos" yaml:"exclude_repos" json:"exclude_repos"`
	ExcludePatterns []string `toml:"exclude_patterns" yaml:"exclude_patterns" json:"exclude_patterns"`
	IgnoreRepos     []string `toml:"ignore_repos" yaml:"ignore_repos" json:"ignore_repos"`
	IgnorePatterns  []string `toml:"ignore_patterns" yaml:"ignore_patterns" json:"ignore_patterns"`
}

// SizeConfig holds the inclusive upper bounds, in changed lines, of the S, M
// and L categories. Anything above Large is XL.
type SizeConfig struct {
	Small  int `toml:"small" yaml:"small" json:"small"`
	Medium int `toml:"medium" yaml:"medium" json:"medium"`
	Large  int `toml:"large" yaml:"large" json:"large"`
}

// Error is a configuration problem. It is always fatal and is reported
// before any fetch or aggregation work starts.
type Error struct {
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("invalid configuration: %v", e.Err)
	}
	return fmt.Sprintf("invalid configuration in %s: %v", e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// DefaultSize returns the built-in thresholds.
func DefaultSize() SizeConfig {
	return SizeConfig{Small: 50, Medium: 200, Large: 500}
}

// Default returns a config with no filters and the default thresholds.
func Default() *Config {
	return &Config{Size: DefaultSize()}
}

// DefaultPath returns the platform-specific location of config.toml.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to determine config directory: %w", err)
	}
	return filepath.Join(dir, AppName, "config.toml"), nil
}

// Load reads and validates the config at path. A missing file yields the
// defaults; anything malformed yields an *Error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, &Error{Path: path, Err: fmt.Errorf("failed to parse TOML: %w", err)}
	}
	if err := cfg.Validate(); err != nil {
		return nil, &Error{Path: path, Err: err}
	}
	return cfg, nil
}

// Validate checks that every pattern compiles and that the size thresholds
// increase strictly.
func (c *Config) Validate() error {
	if err := c.Filter.Validate(); err != nil {
		return err
	}
	return c.Size.Validate()
}

// Validate compiles every pattern once so a bad regex fails before any PR is classified.
func (f FilterConfig) Validate() error {
	for _, pattern := range f.ExcludePatterns {
		if _, err := regexp.Compile(pattern); err != nil {
			return fmt.Errorf("invalid exclude_patterns entry %q: %w", pattern, err)
		}
	}
	for _, pattern := range f.IgnorePatterns {
		if _, err := regexp.Compile(pattern); err != nil {
			return fmt.Errorf("invalid ignore_patterns entry %q: %w", pattern, err)
		}
	}
	return nil
}

// Validate requires 0 < small < medium < large.
func (s SizeConfig) Validate() error {
	if s.Small <= 0 || s.Small >= s.Medium || s.Medium >= s.Large {
		return fmt.Errorf("size thresholds must be positive and strictly increasing (small=%d, medium=%d, large=%d)", s.Small, s.Medium, s.Large)
	}
	return nil
}

// Category maps a changed-line total onto S/M/L/XL. Each bound is inclusive,
// so total == Small is still S.
func (s SizeConfig) Category(totalLines int) domain.SizeCategory {
	switch {
	case totalLines <= s.Small:
		return domain.SizeS
	case totalLines <= s.Medium:
		return domain.SizeM
	case totalLines <= s.Large:
		return domain.SizeL
	default:
		return domain.SizeXL
	}
}

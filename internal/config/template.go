package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

const templateHeader = `# gh-log configuration
#
# [filter]
# exclude_* = not shown at all (filtered out completely)
# ignore_*  = shown but not counted in metrics
# A PR matching both an exclude and an ignore rule is excluded.
# Patterns are regular expressions matched against PR titles (case-sensitive;
# prefix with (?i) for case-insensitive matching).
#
# [size]
# small = 50    # S: <= 50 lines changed
# medium = 200  # M: 51-200 lines
# large = 500   # L: 201-500 lines, XL: > 500 lines

`

// Example is the config written by WriteTemplate.
func Example() *Config {
	return &Config{
		Filter: FilterConfig{
			ExcludeRepos:    []string{"username/spam"},
			ExcludePatterns: []string{"^test:", "^tmp:"},
			IgnoreRepos:     []string{"username/private", "username/notes"},
			IgnorePatterns:  []string{"^docs:", "^meeting:"},
		},
		Size: DefaultSize(),
	}
}

// WriteTemplate writes a commented example config to path, creating parent
// directories as needed.
func WriteTemplate(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	body, err := Example().EncodeTOML()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, append([]byte(templateHeader), body...), 0o644); err != nil {
		return fmt.Errorf("failed to write config template %s: %w", path, err)
	}
	return nil
}

// EncodeTOML renders the config in its on-disk form.
func (c *Config) EncodeTOML() ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return nil, fmt.Errorf("failed to encode config as TOML: %w", err)
	}
	return buf.Bytes(), nil
}

// EncodeYAML renders the config as YAML.
func (c *Config) EncodeYAML() ([]byte, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to encode config as YAML: %w", err)
	}
	return out, nil
}

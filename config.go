package crom

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// ConfigFile is the primary project config file name.
const ConfigFile = ".crom.toml"

// configFiles are looked for in order in every directory.
var configFiles = []string{ConfigFile, ".crom.yaml", ".crom.yml"}

// DefaultMessageTemplate is used for tag messages when the config has none.
const DefaultMessageTemplate = "Crom is creating a version {version}."

const versionPlaceholder = "{version}"

// Default file names for the version writers.
const (
	CargoToml         = "Cargo.toml"
	PackageJSON       = "package.json"
	VersionProperties = "version.properties"
)

// Config is the project configuration read from .crom.toml.
type Config struct {
	Pattern         string                    `toml:"pattern" yaml:"pattern"`
	MessageTemplate string                    `toml:"message-template,omitempty" yaml:"message-template,omitempty"`
	Cargo           *CargoConfig              `toml:"cargo,omitempty" yaml:"cargo,omitempty"`
	Property        *PropertyConfig           `toml:"property,omitempty" yaml:"property,omitempty"`
	Maven           *MavenConfig              `toml:"maven,omitempty" yaml:"maven,omitempty"`
	Node            *NodeConfig               `toml:"node,omitempty" yaml:"node,omitempty"`
	Python          *PythonConfig             `toml:"python,omitempty" yaml:"python,omitempty"`
	Artifacts       map[string]ArtifactConfig `toml:"artifact,omitempty" yaml:"artifact,omitempty"`
}

// CargoConfig enables writing the version into Cargo.toml.
type CargoConfig struct {
	Directory string `toml:"directory,omitempty" yaml:"directory,omitempty"`
	Path      string `toml:"path,omitempty" yaml:"path,omitempty"`
}

func (c CargoConfig) dir() string {
	if c.Directory != "" {
		return c.Directory
	}
	return c.Path
}

// PropertyConfig enables writing the version into a properties file.
type PropertyConfig struct {
	Path string `toml:"path,omitempty" yaml:"path,omitempty"`
}

func (c PropertyConfig) path() string {
	if c.Path == "" {
		return VersionProperties
	}
	return c.Path
}

// MavenConfig enables writing the version into pom.xml.
type MavenConfig struct{}

// NodeConfig enables writing the version into package.json.
type NodeConfig struct {
	Directory string `toml:"directory,omitempty" yaml:"directory,omitempty"`
	Path      string `toml:"path,omitempty" yaml:"path,omitempty"`
}

func (c NodeConfig) dir() string {
	if c.Directory != "" {
		return c.Directory
	}
	return c.Path
}

// PythonConfig enables writing a version.py file.
type PythonConfig struct {
	Path string `toml:"path" yaml:"path"`
}

// ArtifactConfig describes files published with a release.
type ArtifactConfig struct {
	// Paths maps the name of each file in the release (or archive) to its
	// path relative to the artifact root.
	Paths    map[string]string `toml:"paths" yaml:"paths"`
	Compress *CompressConfig   `toml:"compress,omitempty" yaml:"compress,omitempty"`
	Target   string            `toml:"target" yaml:"target"`
}

// CompressConfig bundles an artifact's files into a single archive.
type CompressConfig struct {
	Name   string `toml:"name" yaml:"name"`
	Format string `toml:"format" yaml:"format"`
}

// DefaultConfig returns the config init writes for pattern.
func DefaultConfig(pattern string) *Config {
	return &Config{
		Pattern:         pattern,
		MessageTemplate: "Created {version} for release -- Crom",
	}
}

// FindConfig looks for a config file in dir and then each of its parents.
// It returns the directory holding the file along with its path.
func FindConfig(dir string) (root string, path string, err error) {
	current, err := filepath.Abs(dir)
	if err != nil {
		return "", "", fmt.Errorf("resolving %q: %w", dir, err)
	}

	for {
		for _, name := range configFiles {
			candidate := filepath.Join(current, name)
			if _, err := os.Stat(candidate); err == nil {
				return current, candidate, nil
			}
		}

		parent := filepath.Dir(current)
		if parent == current {
			return "", "", fmt.Errorf("%w in %s or any parent directory", ErrConfigNotFound, dir)
		}
		current = parent
	}
}

// LoadConfig reads and validates the config file at path. The format is
// chosen from the file extension.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return ParseConfig(filepath.Ext(path), data)
}

// ParseConfig decodes data as TOML, or YAML when ext is .yaml/.yml, and
// validates the result.
func ParseConfig(ext string, data []byte) (*Config, error) {
	var cfg Config
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, &ConfigurationError{Field: "config", Reason: err.Error()}
		}
	default:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, &ConfigurationError{Field: "config", Reason: err.Error()}
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the config for mistakes that would otherwise surface in
// the middle of a release.
func (c *Config) Validate() error {
	if _, err := ParsePattern(c.Pattern); err != nil {
		return err
	}

	if c.MessageTemplate != "" && !strings.Contains(c.MessageTemplate, versionPlaceholder) {
		return &ConfigurationError{
			Field:  "message-template",
			Value:  c.MessageTemplate,
			Reason: "template must contain " + versionPlaceholder,
		}
	}

	if c.Python != nil && c.Python.Path == "" {
		return &ConfigurationError{Field: "python.path", Reason: "path is required"}
	}

	for _, name := range c.ArtifactNames() {
		artifact := c.Artifacts[name]
		if len(artifact.Paths) == 0 {
			return &ConfigurationError{Field: "artifact." + name + ".paths", Reason: "no files listed"}
		}
		if target, err := ParseTagTarget(artifact.Target); err != nil || target != TagTargetGitHub {
			return &ConfigurationError{
				Field:  "artifact." + name + ".target",
				Value:  artifact.Target,
				Reason: "only github is supported",
			}
		}
		if artifact.Compress != nil {
			if artifact.Compress.Name == "" {
				return &ConfigurationError{Field: "artifact." + name + ".compress.name", Reason: "name is required"}
			}
			if _, err := ParseArchiveFormat(artifact.Compress.Format); err != nil {
				return &ConfigurationError{
					Field:  "artifact." + name + ".compress.format",
					Value:  artifact.Compress.Format,
					Reason: err.Error(),
				}
			}
		}
	}

	return nil
}

// ArtifactNames returns the configured artifact names, sorted.
func (c *Config) ArtifactNames() []string {
	names := make([]string, 0, len(c.Artifacts))
	for name := range c.Artifacts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Message returns the tag message for version.
func (c *Config) Message(version Version) string {
	return MakeMessage(c.MessageTemplate, version)
}

// Encode renders the config as TOML.
func (c *Config) Encode() ([]byte, error) {
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.SetIndentTables(true)
	if err := enc.Encode(c); err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	return buf.Bytes(), nil
}

// MakeMessage fills {version} in template. An empty template falls back to
// DefaultMessageTemplate.
func MakeMessage(template string, version Version) string {
	if template == "" {
		template = DefaultMessageTemplate
	}
	return strings.ReplaceAll(template, versionPlaceholder, version.String())
}

// ParseTagTarget parses "local" or "github".
func ParseTagTarget(name string) (TagTarget, error) {
	switch strings.ToLower(name) {
	case "local":
		return TagTargetLocal, nil
	case "github":
		return TagTargetGitHub, nil
	default:
		return "", fmt.Errorf("unknown tag target %q", name)
	}
}

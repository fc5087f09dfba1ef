package crom

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"github.com/blang/semver"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"github.com/pelletier/go-toml/v2"
	"github.com/tidwall/sjson"
	"gopkg.in/ini.v1"
)

const writerFileMode os.FileMode = 0o644

// VersionWriter records a resolved version in one kind of project file.
type VersionWriter interface {
	// Name identifies the writer in logs and errors.
	Name() string
	// WriteVersion updates the files under fs.
	WriteVersion(fs billy.Filesystem, version Version) error
}

// Writers returns the writers enabled in the config, in a fixed order.
func (c *Config) Writers() []VersionWriter {
	var writers []VersionWriter
	if c.Cargo != nil {
		writers = append(writers, CargoWriter{Directory: c.Cargo.dir()})
	}
	if c.Property != nil {
		writers = append(writers, PropertyWriter{Path: c.Property.path()})
	}
	if c.Maven != nil {
		writers = append(writers, MavenWriter{})
	}
	if c.Node != nil {
		writers = append(writers, NodeWriter{Directory: c.Node.dir()})
	}
	if c.Python != nil {
		writers = append(writers, PythonWriter{Path: c.Python.Path})
	}
	return writers
}

// WriteAll runs every writer, stopping at the first failure.
func WriteAll(fs billy.Filesystem, writers []VersionWriter, version Version) error {
	for _, w := range writers {
		slog.Debug("writing version", "writer", w.Name(), "version", version.String())
		if err := w.WriteVersion(fs, version); err != nil {
			return fmt.Errorf("%s: %w", w.Name(), err)
		}
	}
	return nil
}

// CargoWriter sets package.version in Cargo.toml. For a workspace every
// member manifest is updated as well.
type CargoWriter struct {
	Directory string
}

type cargoManifest struct {
	Package *struct {
		Version any `toml:"version"`
	} `toml:"package"`
	Workspace *struct {
		Members []string `toml:"members"`
	} `toml:"workspace"`
}

var cargoVersionLine = regexp.MustCompile(`^(\s*version\s*=\s*)"[^"]*"(.*)$`)

func (CargoWriter) Name() string { return "cargo" }

func (w CargoWriter) WriteVersion(fs billy.Filesystem, version Version) error {
	manifestPath := fs.Join(w.Directory, CargoToml)
	manifest, err := readCargoManifest(fs, manifestPath)
	if err != nil {
		return err
	}

	if manifest.Workspace == nil {
		return updateCargoPackage(fs, manifestPath, version)
	}

	if len(manifest.Workspace.Members) == 0 {
		return fmt.Errorf("%s for workspace was missing members", manifestPath)
	}

	if manifest.Package != nil {
		if err := updateCargoPackage(fs, manifestPath, version); err != nil {
			return err
		}
	}

	for _, member := range manifest.Workspace.Members {
		dirs, err := util.Glob(fs, fs.Join(w.Directory, member))
		if err != nil {
			return fmt.Errorf("expanding workspace member %q: %w", member, err)
		}
		for _, dir := range dirs {
			if err := updateCargoPackage(fs, fs.Join(dir, CargoToml), version); err != nil {
				return err
			}
		}
	}
	return nil
}

func readCargoManifest(fs billy.Filesystem, path string) (*cargoManifest, error) {
	data, err := util.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var manifest cargoManifest
	if err := toml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("%s is not valid: %w", path, err)
	}
	return &manifest, nil
}

// updateCargoPackage rewrites the version line of the [package] table in
// place so the rest of the manifest keeps its formatting.
func updateCargoPackage(fs billy.Filesystem, path string, version Version) error {
	manifest, err := readCargoManifest(fs, path)
	if err != nil {
		return err
	}
	if manifest.Package == nil {
		return fmt.Errorf("%s has no [package] table", path)
	}
	if _, ok := manifest.Package.Version.(string); !ok {
		slog.Info("package version is inherited, skipping", "path", path)
		return nil
	}

	cargoVersion := strings.TrimPrefix(version.String(), "v")
	if _, err := semver.Parse(cargoVersion); err != nil {
		return fmt.Errorf("%q is not a valid Cargo version: %w", cargoVersion, err)
	}

	data, err := util.ReadFile(fs, path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	lines := strings.Split(string(data), "\n")
	table := ""
	replaced := false
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "[") {
			table = strings.Trim(trimmed, "[] ")
			continue
		}
		if table != "package" || replaced {
			continue
		}
		if m := cargoVersionLine.FindStringSubmatch(line); m != nil {
			lines[i] = m[1] + `"` + cargoVersion + `"` + m[2]
			replaced = true
		}
	}
	if !replaced {
		return fmt.Errorf("%s has no package version to update", path)
	}

	return util.WriteFile(fs, path, []byte(strings.Join(lines, "\n")), writerFileMode)
}

// PropertyWriter sets the version key of a properties file.
type PropertyWriter struct {
	Path string
}

func (PropertyWriter) Name() string { return "property" }

func (w PropertyWriter) WriteVersion(fs billy.Filesystem, version Version) error {
	data, err := util.ReadFile(fs, w.Path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", w.Path, err)
	}

	props, err := ini.Load(data)
	if err != nil {
		return fmt.Errorf("loading %s: %w", w.Path, err)
	}
	props.Section(ini.DefaultSection).Key("version").SetValue(version.String())

	var buf bytes.Buffer
	if _, err := props.WriteTo(&buf); err != nil {
		return fmt.Errorf("saving %s: %w", w.Path, err)
	}
	return util.WriteFile(fs, w.Path, buf.Bytes(), writerFileMode)
}

// NodeWriter sets the version field of package.json, leaving the rest of the
// document untouched.
type NodeWriter struct {
	Directory string
}

func (NodeWriter) Name() string { return "node" }

func (w NodeWriter) WriteVersion(fs billy.Filesystem, version Version) error {
	path := fs.Join(w.Directory, PackageJSON)
	data, err := util.ReadFile(fs, path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if !json.Valid(data) {
		return fmt.Errorf("%s is not valid JSON", path)
	}

	if _, err := semver.ParseTolerant(version.String()); err != nil {
		slog.Warn("version is not semver, npm may reject it", "version", version.String())
	}

	updated, err := sjson.SetBytes(data, "version", version.String())
	if err != nil {
		return fmt.Errorf("updating %s: %w", path, err)
	}
	return util.WriteFile(fs, path, updated, writerFileMode)
}

// PythonWriter writes a module holding __version__.
type PythonWriter struct {
	Path string
}

func (PythonWriter) Name() string { return "python" }

func (w PythonWriter) WriteVersion(fs billy.Filesystem, version Version) error {
	content := `__version__ = "` + version.String() + `"` + "\n"
	return util.WriteFile(fs, w.Path, []byte(content), writerFileMode)
}

// MavenWriter is accepted in config but pom.xml can't be updated yet.
type MavenWriter struct{}

func (MavenWriter) Name() string { return "maven" }

func (MavenWriter) WriteVersion(billy.Filesystem, Version) error {
	return fmt.Errorf("%w: pom.xml", ErrUnsupportedWriter)
}

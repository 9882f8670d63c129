// Package config loads extbuild settings from defaults, an extbuild.toml
// file and EXTBUILD_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
	"golang.org/x/mod/semver"
)

const (
	// FileName is the config file looked up in the workspace root.
	FileName = "extbuild.toml"
	// EnvPrefix prefixes environment overrides, e.g. EXTBUILD_BUILD_JOBS.
	EnvPrefix = "EXTBUILD"
)

// ErrHostVersion is returned when the installed host is older than
// host.min_version.
var ErrHostVersion = errors.New("host version not supported")

// Project is the extension's package metadata.
type Project struct {
	Name      string `mapstructure:"name" toml:"name"`
	Version   string `mapstructure:"version" toml:"version"`
	Extension string `mapstructure:"extension" toml:"extension"` // extension module name
	Target    string `mapstructure:"target" toml:"target"`       // CMake target producing it
}

// Host selects the installed host library and how to query it.
type Host struct {
	Package     string `mapstructure:"package" toml:"package"`
	Binding     string `mapstructure:"binding" toml:"binding"`
	Interpreter string `mapstructure:"interpreter" toml:"interpreter"`
	MinVersion  string `mapstructure:"min_version" toml:"min_version,omitempty"`
	FactsFile   string `mapstructure:"facts_file" toml:"facts_file,omitempty"`
}

// Build controls directory layout and the compile step.
type Build struct {
	Jobs      int               `mapstructure:"jobs" toml:"jobs"`
	Generator string            `mapstructure:"generator" toml:"generator,omitempty"`
	BuildTemp string            `mapstructure:"build_temp" toml:"build_temp,omitempty"`
	BuildLib  string            `mapstructure:"build_lib" toml:"build_lib,omitempty"`
	Inplace   bool              `mapstructure:"inplace" toml:"inplace"`
	Env       map[string]string `mapstructure:"env" toml:"env,omitempty"`
}

// Config is the complete extbuild configuration.
type Config struct {
	Project Project `mapstructure:"project" toml:"project"`
	Host    Host    `mapstructure:"host" toml:"host"`
	Build   Build   `mapstructure:"build" toml:"build"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Project: Project{
			Name:      "sapien_render_server",
			Version:   "0.1",
			Extension: "sapien_render_server",
			Target:    "pysapien_render_server",
		},
		Host: Host{
			Package:     "sapien",
			Binding:     "pysapien",
			Interpreter: "python3",
		},
		Build: Build{
			Jobs: 4,
		},
	}
}

// LoadOptions selects where configuration is read from.
type LoadOptions struct {
	// Workspace is searched for FileName when ConfigFile is empty.
	Workspace string
	// ConfigFile, when set, must exist and is used exclusively.
	ConfigFile string
}

// Load reads the configuration. It returns the path of the file that was
// read, or "" when only defaults and the environment applied.
func Load(opts LoadOptions) (*Config, string, error) {
	v := viper.New()
	setDefaults(v, Default())
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	path := opts.ConfigFile
	if path == "" {
		candidate := filepath.Join(opts.Workspace, FileName)
		if _, err := os.Stat(candidate); err == nil {
			path = candidate
		}
	} else if _, err := os.Stat(path); err != nil {
		return nil, "", fmt.Errorf("config file not found: %w", err)
	}
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return nil, "", fmt.Errorf("failed to read %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}
	if path != "" {
		// viper folds keys to lower case; tool environment names are case
		// sensitive, so build.env is read from the file as written.
		env, err := readBuildEnv(path)
		if err != nil {
			return nil, "", err
		}
		cfg.Build.Env = env
		if cfg.Host.FactsFile != "" && !filepath.IsAbs(cfg.Host.FactsFile) {
			cfg.Host.FactsFile = filepath.Join(filepath.Dir(path), cfg.Host.FactsFile)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return &cfg, path, nil
}

func readBuildEnv(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var file struct {
		Build struct {
			Env map[string]string `toml:"env"`
		} `toml:"build"`
	}
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse build.env in %s: %w", path, err)
	}
	return file.Build.Env, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("project.name", d.Project.Name)
	v.SetDefault("project.version", d.Project.Version)
	v.SetDefault("project.extension", d.Project.Extension)
	v.SetDefault("project.target", d.Project.Target)
	v.SetDefault("host.package", d.Host.Package)
	v.SetDefault("host.binding", d.Host.Binding)
	v.SetDefault("host.interpreter", d.Host.Interpreter)
	v.SetDefault("host.min_version", d.Host.MinVersion)
	v.SetDefault("host.facts_file", d.Host.FactsFile)
	v.SetDefault("build.jobs", d.Build.Jobs)
	v.SetDefault("build.generator", d.Build.Generator)
	v.SetDefault("build.build_temp", d.Build.BuildTemp)
	v.SetDefault("build.build_lib", d.Build.BuildLib)
	v.SetDefault("build.inplace", d.Build.Inplace)
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.Project.Extension == "":
		return errors.New("project.extension must be set")
	case c.Project.Target == "":
		return errors.New("project.target must be set")
	case c.Host.Package == "":
		return errors.New("host.package must be set")
	case c.Build.Jobs < 1:
		return fmt.Errorf("build.jobs must be at least 1, got %d", c.Build.Jobs)
	}
	if c.Host.MinVersion != "" {
		if _, ok := canonicalVersion(c.Host.MinVersion); !ok {
			return fmt.Errorf("host.min_version %q is not a valid version", c.Host.MinVersion)
		}
	}
	return nil
}

// CheckHostVersion compares the reported host version with host.min_version.
// A host that does not report a version passes only when no minimum is set.
func (c *Config) CheckHostVersion(version string) error {
	if c.Host.MinVersion == "" {
		return nil
	}
	minVer, _ := canonicalVersion(c.Host.MinVersion)
	got, ok := canonicalVersion(version)
	if !ok {
		return fmt.Errorf("%w: %s reports unrecognized version %q", ErrHostVersion, c.Host.Package, version)
	}
	if semver.Compare(got, minVer) < 0 {
		return fmt.Errorf("%w: %s %s is older than %s", ErrHostVersion, c.Host.Package, version, c.Host.MinVersion)
	}
	return nil
}

// canonicalVersion keeps the leading numeric release of a package version
// ("3.0.0.dev20240101" -> "v3.0.0") and returns it in semver form.
func canonicalVersion(version string) (string, bool) {
	version = strings.TrimPrefix(version, "v")
	end := 0
	for end < len(version) && (version[end] == '.' || version[end] >= '0' && version[end] <= '9') {
		end++
	}
	release := strings.TrimRight(version[:end], ".")
	if release == "" {
		return "", false
	}
	if parts := strings.Split(release, "."); len(parts) > 3 {
		release = strings.Join(parts[:3], ".")
	}
	v := "v" + release
	if !semver.IsValid(v) {
		return "", false
	}
	return semver.Canonical(v), true
}

// Write stores cfg at path in TOML form. It refuses to overwrite an
// existing file.
func Write(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

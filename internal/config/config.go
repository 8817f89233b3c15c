package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/appcanary/packager/internal/domain/build"
	"github.com/appcanary/packager/internal/domain/recipe"
	"github.com/appcanary/packager/internal/logger"
)

// Config holds the pipeline settings.
type Config struct {
	// LogLevel is the minimum level of pipeline log messages.
	LogLevel string `yaml:"log_level"`
	// Jobs is the number of units built at once.
	Jobs int `yaml:"jobs"`
	// Layout locates inputs and outputs.
	Layout Layout `yaml:"layout"`
	// Package holds the metadata written into every package.
	Package Package `yaml:"package"`
	// Builder configures the fpm invocation.
	Builder Tool `yaml:"builder"`
	// Publisher configures the package_cloud invocation.
	Publisher Publisher `yaml:"publisher"`
	// Verifier configures the container smoke test.
	Verifier Verifier `yaml:"verifier"`
	// Recipes are appended to the built-in recipes.
	Recipes []recipe.Recipe `yaml:"recipes"`
}

// Layout mirrors build.Layout.
type Layout struct {
	Root        string `yaml:"root"`
	PackageRoot string `yaml:"package_root"`
	DistRoot    string `yaml:"dist_root"`
	ReleasesDir string `yaml:"releases_dir"`
}

// Package mirrors build.Metadata.
type Package struct {
	Name        string   `yaml:"name"`
	Vendor      string   `yaml:"vendor"`
	License     string   `yaml:"license"`
	Binary      string   `yaml:"binary"`
	BinaryDest  string   `yaml:"binary_dest"`
	Directories []string `yaml:"directories"`
}

// Tool is an external program prefix and its per-run timeout.
type Tool struct {
	// Command is the program and its leading arguments.
	Command []string `yaml:"command"`
	// Timeout bounds each run; a negative value disables the limit.
	Timeout time.Duration `yaml:"timeout"`
}

// Publisher configures pushes to the package host.
type Publisher struct {
	Tool `yaml:",inline"`

	// Account is the package host user or organisation.
	Account string `yaml:"account"`
	// Repository is the package host repository.
	Repository string `yaml:"repository"`
}

// Verifier configures the container smoke test.
type Verifier struct {
	Tool `yaml:",inline"`

	// Arches lists the architectures the container host can install.
	Arches []string `yaml:"arches"`
	// Mount is where the releases directory appears inside the container.
	Mount string `yaml:"mount"`
}

const (
	// DefaultConfigFilename is read when no --config flag is given.
	DefaultConfigFilename = "appcanary-packager.yaml"

	// DefaultBuildTimeout bounds a single fpm run.
	DefaultBuildTimeout = 30 * time.Minute

	// DefaultPushTimeout bounds a single package_cloud or docker run.
	DefaultPushTimeout = 10 * time.Minute
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errEmptyCommand is returned when a tool has no program.
	errEmptyCommand = errors.New("tool command is empty")
	// errBadJobs is returned for a negative job count.
	errBadJobs = errors.New("jobs must not be negative")
)

// Default returns the settings used when no configuration file exists.
func Default() *Config {
	cfg := new(Config)
	_ = Validate(cfg)

	return cfg
}

// Load reads configuration from path. An empty path reads
// DefaultConfigFilename if it exists and falls back to Default otherwise.
func Load(path string) (*Config, error) {
	optional := path == ""
	if optional {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if optional && errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}

		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings %s: %w", path, err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("settings %s: %w", path, err)
	}

	return &cfg, nil
}

// Validate fills defaults and checks the settings.
//
//nolint:cyclop // A flat list of defaults reads better than helpers.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	if _, ok := logger.ParseLogLevel(cfg.LogLevel); !ok {
		return fmt.Errorf("%w: %q", logger.ErrUnknownLevel, cfg.LogLevel)
	}

	if cfg.Jobs < 0 {
		return errBadJobs
	}

	if cfg.Jobs == 0 {
		cfg.Jobs = 1
	}

	setDefault(&cfg.Layout.Root, ".")
	setDefault(&cfg.Layout.PackageRoot, "package")
	setDefault(&cfg.Layout.DistRoot, "dist")
	setDefault(&cfg.Layout.ReleasesDir, "releases")

	setDefault(&cfg.Package.Name, "appcanary")
	setDefault(&cfg.Package.Vendor, "Appcanary")
	setDefault(&cfg.Package.License, "GPLv3")
	setDefault(&cfg.Package.Binary, "appcanary")
	setDefault(&cfg.Package.BinaryDest, "/usr/sbin/appcanary")

	if cfg.Package.Directories == nil {
		cfg.Package.Directories = []string{"/etc/appcanary/", "/var/db/appcanary/"}
	}

	setDefaultTool(&cfg.Builder, []string{"bundle", "exec", "fpm"}, DefaultBuildTimeout)
	setDefaultTool(&cfg.Publisher.Tool, []string{"bundle", "exec", "package_cloud", "push"}, DefaultPushTimeout)
	setDefaultTool(&cfg.Verifier.Tool, []string{"docker"}, DefaultPushTimeout)

	setDefault(&cfg.Publisher.Account, "appcanary")
	setDefault(&cfg.Publisher.Repository, "agent")
	setDefault(&cfg.Verifier.Mount, "/releases")

	if cfg.Verifier.Arches == nil {
		cfg.Verifier.Arches = []string{"amd64"}
	}

	for name, tool := range map[string]*Tool{
		"builder":   &cfg.Builder,
		"publisher": &cfg.Publisher.Tool,
		"verifier":  &cfg.Verifier.Tool,
	} {
		if len(tool.Command) == 0 || tool.Command[0] == "" {
			return fmt.Errorf("%s: %w", name, errEmptyCommand)
		}
	}

	if !filepath.IsAbs(cfg.Verifier.Mount) {
		return fmt.Errorf("verifier mount %q must be absolute: %w", cfg.Verifier.Mount, build.ErrInvalidLayout)
	}

	meta := cfg.Metadata()
	if err := meta.Validate(); err != nil {
		return err
	}

	return nil
}

// BuildLayout converts the layout section for the resolver.
func (c *Config) BuildLayout() build.Layout {
	return build.Layout{
		Root:        c.Layout.Root,
		PackageRoot: c.Layout.PackageRoot,
		DistRoot:    c.Layout.DistRoot,
		ReleasesDir: c.Layout.ReleasesDir,
	}
}

// Metadata converts the package section for the resolver.
func (c *Config) Metadata() build.Metadata {
	return build.Metadata{
		Name:        c.Package.Name,
		Vendor:      c.Package.Vendor,
		License:     c.Package.License,
		Binary:      c.Package.Binary,
		BinaryDest:  c.Package.BinaryDest,
		Directories: append([]string(nil), c.Package.Directories...),
	}
}

// ReleasesPath returns the releases directory as seen from the current process.
func (c *Config) ReleasesPath() string {
	layout := c.BuildLayout()

	return layout.Join(c.Layout.ReleasesDir)
}

func setDefault(field *string, value string) {
	if *field == "" {
		*field = value
	}
}

func setDefaultTool(tool *Tool, command []string, timeout time.Duration) {
	if tool.Command == nil {
		tool.Command = command
	}

	if tool.Timeout == 0 {
		tool.Timeout = timeout
	}
}

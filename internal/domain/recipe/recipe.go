package recipe

import (
	"errors"
	"fmt"
	"path"
)

// Format is the output package type handed to fpm.
type Format string

const (
	// FormatDeb produces Debian packages.
	FormatDeb Format = "deb"
	// FormatRPM produces RPM packages.
	FormatRPM Format = "rpm"
)

// Hook is a lifecycle script kind, named after the fpm flag that installs it.
type Hook string

const (
	// HookAfterInstall runs after the package is installed. Every recipe has it.
	HookAfterInstall Hook = "after-install"
	// HookAfterRemove runs after the package is removed.
	HookAfterRemove Hook = "after-remove"
	// HookAfterUpgrade runs after the package is upgraded.
	HookAfterUpgrade Hook = "after-upgrade"
)

// ErrInvalid marks a structurally broken recipe. It is a configuration
// error: nothing should be built when it is returned.
var ErrInvalid = errors.New("invalid recipe")

// Architectures lists the architectures every recipe is built for, in build order.
//
//nolint:gochecknoglobals // Fixed build matrix axis.
var Architectures = []string{"amd64", "i386"}

//nolint:gochecknoglobals // Fixed lookup table.
var hostingNames = map[string]string{
	"centos": "el",
	"amazon": "el",
}

// Release is one supported release of a distro.
type Release struct {
	// Name is the release identifier used in paths (trusty, 7, jessie).
	Name string `yaml:"name"`
	// Init is the optional init-system tag (upstart, systemd, sysv).
	Init string `yaml:"init,omitempty"`
}

// ConfigFile maps a template config file to its installed location.
type ConfigFile struct {
	// Template is relative to the package root.
	Template string `yaml:"template"`
	// Dest is the absolute path on the target system.
	Dest string `yaml:"dest"`
}

// Recipe declares how one distro family is packaged.
type Recipe struct {
	// Name is the registry key. Defaults to Distro.
	Name string `yaml:"name"`
	// Distro is the distribution identifier used in paths and artifact names.
	Distro string `yaml:"distro"`
	// Releases are built in declaration order.
	Releases []Release `yaml:"releases"`
	// Format selects deb or rpm output.
	Format Format `yaml:"format"`
	// ConfigFiles are marked as config and shipped with the package.
	ConfigFiles []ConfigFile `yaml:"config_files"`
	// Hooks lists lifecycle scripts beyond after-install.
	Hooks []Hook `yaml:"hooks,omitempty"`
	// HostingDistro overrides the distro name used by the package host.
	HostingDistro string `yaml:"hosting_distro,omitempty"`
	// SkipVerify disables the container smoke test for this recipe.
	SkipVerify bool `yaml:"skip_verify,omitempty"`
}

// Key returns the registry key of the recipe.
func (r *Recipe) Key() string {
	if r.Name != "" {
		return r.Name
	}

	return r.Distro
}

// ReleaseNames returns the release identifiers in declaration order.
func (r *Recipe) ReleaseNames() []string {
	names := make([]string, 0, len(r.Releases))
	for _, rel := range r.Releases {
		names = append(names, rel.Name)
	}

	return names
}

// AllHooks returns after-install followed by the recipe's extra hooks.
func (r *Recipe) AllHooks() []Hook {
	hooks := make([]Hook, 0, len(r.Hooks)+1)
	hooks = append(hooks, HookAfterInstall)

	for _, h := range r.Hooks {
		if h != HookAfterInstall {
			hooks = append(hooks, h)
		}
	}

	return hooks
}

// Validate reports structural defects, wrapping ErrInvalid.
func (r *Recipe) Validate() error {
	if !isPathSegment(r.Distro) {
		return fmt.Errorf("%w: bad distro %q", ErrInvalid, r.Distro)
	}

	if len(r.Releases) == 0 {
		return fmt.Errorf("%w: %s: no releases", ErrInvalid, r.Key())
	}

	switch r.Format {
	case FormatDeb, FormatRPM:
	default:
		return fmt.Errorf("%w: %s: unknown format %q", ErrInvalid, r.Key(), r.Format)
	}

	seen := make(map[string]struct{}, len(r.Releases))

	for _, rel := range r.Releases {
		if !isPathSegment(rel.Name) {
			return fmt.Errorf("%w: %s: bad release %q", ErrInvalid, r.Key(), rel.Name)
		}

		if _, dup := seen[rel.Name]; dup {
			return fmt.Errorf("%w: %s: duplicate release %q", ErrInvalid, r.Key(), rel.Name)
		}

		seen[rel.Name] = struct{}{}
	}

	for _, cf := range r.ConfigFiles {
		if cf.Template == "" || path.IsAbs(cf.Template) {
			return fmt.Errorf("%w: %s: config template %q must be a relative path", ErrInvalid, r.Key(), cf.Template)
		}

		if !path.IsAbs(cf.Dest) {
			return fmt.Errorf("%w: %s: config destination %q must be absolute", ErrInvalid, r.Key(), cf.Dest)
		}
	}

	for _, h := range r.Hooks {
		switch h {
		case HookAfterInstall, HookAfterRemove, HookAfterUpgrade:
		default:
			return fmt.Errorf("%w: %s: unknown hook %q", ErrInvalid, r.Key(), h)
		}
	}

	return nil
}

// HostingName translates a distro identifier to the package host's naming.
// Unknown distros pass through unchanged.
func HostingName(distro string) string {
	if name, ok := hostingNames[distro]; ok {
		return name
	}

	return distro
}

// Hosting returns the recipe's override, or the translated distro name.
func (r *Recipe) Hosting() string {
	if r.HostingDistro != "" {
		return r.HostingDistro
	}

	return HostingName(r.Distro)
}

// Extension returns the artifact file extension for the format.
func (f Format) Extension() string {
	return string(f)
}

// ScriptName returns the conventional script file name for the hook.
func (h Hook) ScriptName() string {
	switch h {
	case HookAfterRemove:
		return "post-remove.sh"
	case HookAfterUpgrade:
		return "post-upgrade.sh"
	default:
		return "post-install.sh"
	}
}

// Flag returns the fpm flag installing the hook.
func (h Hook) Flag() string {
	return "--" + string(h)
}

func isPathSegment(s string) bool {
	return s != "" && s != "." && s != ".." && path.Base(s) == s
}

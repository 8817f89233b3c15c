package build

import (
	"path/filepath"

	"github.com/appcanary/packager/internal/domain/recipe"
)

// Layout locates build inputs and outputs. All paths are relative to Root,
// which is also the working directory of the external tools.
type Layout struct {
	// Root is the repository checkout the tools run in.
	Root string
	// PackageRoot holds <distro>/<release>/files, hook scripts and config templates.
	PackageRoot string
	// DistRoot holds prebuilt binaries as <version>/linux_<goarch>/<binary>.
	DistRoot string
	// ReleasesDir receives the built artifacts.
	ReleasesDir string
}

// Join resolves a layout-relative path against Root.
func (l *Layout) Join(p string) string {
	if filepath.IsAbs(p) || l.Root == "" {
		return p
	}

	return filepath.Join(l.Root, p)
}

// Metadata is the package-level data shared by every unit.
type Metadata struct {
	// Name is the package name and the artifact filename prefix.
	Name string
	// Vendor is written to the package vendor field.
	Vendor string
	// License is written to the package license field.
	License string
	// Binary is the file name of the prebuilt binary inside DistRoot.
	Binary string
	// BinaryDest is the installed location of the binary.
	BinaryDest string
	// Directories are owned by the package.
	Directories []string
}

// Mapping is one source file copied into the package at Dest.
type Mapping struct {
	// Path is relative to the layout root, for existence checks.
	Path string
	// Source is relative to the unit's files directory, as fpm expects it.
	Source string
	// Dest is the installed location.
	Dest string
}

// HookScript is a lifecycle script attached to a unit.
type HookScript struct {
	Hook recipe.Hook
	// Path is relative to the layout root.
	Path string
}

// Unit is one (release, architecture) cell of a recipe's build matrix.
// It carries everything needed to render and run the builder command.
type Unit struct {
	Recipe  string
	Distro  string
	Release string
	Init    string
	Arch    string
	Format  recipe.Format
	Version string

	Metadata Metadata

	// PackageDir is <package_root>/<distro>/<release>.
	PackageDir string
	// FilesDir is the fpm -C directory.
	FilesDir string
	// Binary maps the prebuilt binary to its installed location.
	Binary Mapping
	// ConfigFiles map templates to their installed locations, in recipe order.
	ConfigFiles []Mapping
	// Hooks are in fpm flag order, after-install first.
	Hooks []HookScript
	// OutputPath is where the builder writes the artifact.
	OutputPath string

	HostingDistro string
	SkipVerify    bool
}

// Package is a successfully built artifact.
type Package struct {
	Recipe        string `yaml:"recipe"`
	Distro        string `yaml:"distro"`
	Release       string `yaml:"release"`
	Arch          string `yaml:"arch"`
	Version       string `yaml:"version"`
	Path          string `yaml:"path"`
	HostingDistro string `yaml:"hosting_distro,omitempty"`
	SkipVerify    bool   `yaml:"skip_verify,omitempty"`
	// Size is the artifact size in bytes.
	Size int64 `yaml:"size"`
	// Digest is the base64 blake3 digest of the artifact.
	Digest string `yaml:"digest"`
	// RunID identifies the pipeline run that built the artifact.
	RunID string `yaml:"run_id,omitempty"`
}

// Label identifies the unit in logs and errors.
func (u *Unit) Label() string {
	return u.Distro + "/" + u.Release + "/" + u.Arch
}

// Label identifies the package in logs and errors.
func (p *Package) Label() string {
	return p.Distro + "/" + p.Release + "/" + p.Arch
}

// NewPackage derives the build result record for u. Size and Digest are left
// for the caller to fill in after inspecting the artifact.
func NewPackage(u *Unit) *Package {
	return &Package{
		Recipe:        u.Recipe,
		Distro:        u.Distro,
		Release:       u.Release,
		Arch:          u.Arch,
		Version:       u.Version,
		Path:          u.OutputPath,
		HostingDistro: u.HostingDistro,
		SkipVerify:    u.SkipVerify,
	}
}

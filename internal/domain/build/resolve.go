package build

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"

	"github.com/appcanary/packager/internal/domain/recipe"
)

var (
	// ErrInvalidVersion is returned for versions that cannot appear in a file name.
	ErrInvalidVersion = errors.New("invalid version")
	// ErrInvalidLayout is returned when layout paths cannot be related to each other.
	ErrInvalidLayout = errors.New("invalid layout")
	// ErrInvalidMetadata is returned for incomplete package metadata.
	ErrInvalidMetadata = errors.New("invalid package metadata")
)

// versionPattern admits the characters deb and rpm both accept in versions
// and that are safe inside a single path segment.
var versionPattern = regexp.MustCompile(`^[0-9A-Za-z][0-9A-Za-z.+~_-]*$`)

// goArchitectures maps package architectures to the Go toolchain's names,
// which key the prebuilt binaries directory.
//
//nolint:gochecknoglobals // Fixed lookup table.
var goArchitectures = map[string]string{
	"i386": "386",
}

// ValidateVersion checks that v is non-empty and safe to use in artifact names.
func ValidateVersion(v string) error {
	if !versionPattern.MatchString(v) {
		return fmt.Errorf("%w: %q", ErrInvalidVersion, v)
	}

	return nil
}

// Validate checks the metadata required to render a builder command.
func (m *Metadata) Validate() error {
	switch {
	case m.Name == "" || filepath.Base(m.Name) != m.Name:
		return fmt.Errorf("%w: bad package name %q", ErrInvalidMetadata, m.Name)
	case m.Binary == "":
		return fmt.Errorf("%w: binary name is empty", ErrInvalidMetadata)
	case !filepath.IsAbs(m.BinaryDest):
		return fmt.Errorf("%w: binary destination %q must be absolute", ErrInvalidMetadata, m.BinaryDest)
	}

	for _, dir := range m.Directories {
		if !filepath.IsAbs(dir) {
			return fmt.Errorf("%w: directory %q must be absolute", ErrInvalidMetadata, dir)
		}
	}

	return nil
}

// GoArch returns the Go architecture name for a package architecture.
func GoArch(arch string) string {
	if goArch, ok := goArchitectures[arch]; ok {
		return goArch
	}

	return arch
}

// ArtifactName returns <name>_<version>_<arch>_<distro>_<release>.<ext>.
func ArtifactName(name, version, arch, distro, release string, format recipe.Format) string {
	return fmt.Sprintf("%s_%s_%s_%s_%s.%s", name, version, arch, distro, release, format.Extension())
}

// Resolve expands r into one Unit per (release, architecture) pair, releases
// in declaration order and architectures in recipe.Architectures order.
func Resolve(r *recipe.Recipe, version string, layout Layout, meta Metadata) ([]Unit, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	if err := ValidateVersion(version); err != nil {
		return nil, err
	}

	if err := meta.Validate(); err != nil {
		return nil, err
	}

	units := make([]Unit, 0, len(r.Releases)*len(recipe.Architectures))

	for _, rel := range r.Releases {
		for _, arch := range recipe.Architectures {
			unit, err := resolveUnit(r, rel, arch, version, layout, meta)
			if err != nil {
				return nil, fmt.Errorf("%s/%s/%s: %w", r.Distro, rel.Name, arch, err)
			}

			units = append(units, unit)
		}
	}

	return units, nil
}

func resolveUnit(
	r *recipe.Recipe,
	rel recipe.Release,
	arch, version string,
	layout Layout,
	meta Metadata,
) (Unit, error) {
	packageDir := filepath.Join(layout.PackageRoot, r.Distro, rel.Name)
	filesDir := filepath.Join(packageDir, "files")

	binaryPath := filepath.Join(layout.DistRoot, version, "linux_"+GoArch(arch), meta.Binary)

	binary, err := newMapping(filesDir, binaryPath, meta.BinaryDest)
	if err != nil {
		return Unit{}, err
	}

	configFiles := make([]Mapping, 0, len(r.ConfigFiles))

	for _, cf := range r.ConfigFiles {
		mapping, err := newMapping(filesDir, filepath.Join(layout.PackageRoot, cf.Template), cf.Dest)
		if err != nil {
			return Unit{}, err
		}

		configFiles = append(configFiles, mapping)
	}

	hooks := make([]HookScript, 0, len(r.Hooks)+1)
	for _, h := range r.AllHooks() {
		hooks = append(hooks, HookScript{
			Hook: h,
			Path: filepath.Join(packageDir, h.ScriptName()),
		})
	}

	meta.Directories = append([]string(nil), meta.Directories...)

	return Unit{
		Recipe:        r.Key(),
		Distro:        r.Distro,
		Release:       rel.Name,
		Init:          rel.Init,
		Arch:          arch,
		Format:        r.Format,
		Version:       version,
		Metadata:      meta,
		PackageDir:    packageDir,
		FilesDir:      filesDir,
		Binary:        binary,
		ConfigFiles:   configFiles,
		Hooks:         hooks,
		OutputPath:    filepath.Join(layout.ReleasesDir, ArtifactName(meta.Name, version, arch, r.Distro, rel.Name, r.Format)),
		HostingDistro: r.HostingDistro,
		SkipVerify:    r.SkipVerify,
	}, nil
}

// newMapping expresses target relative to base, which is how fpm resolves
// sources once -C has changed its directory.
func newMapping(base, target, dest string) (Mapping, error) {
	if filepath.IsAbs(target) {
		return Mapping{Path: target, Source: target, Dest: dest}, nil
	}

	source, err := filepath.Rel(base, target)
	if err != nil {
		return Mapping{}, fmt.Errorf("%w: %w", ErrInvalidLayout, err)
	}

	return Mapping{Path: target, Source: source, Dest: dest}, nil
}

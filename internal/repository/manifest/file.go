package manifest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/appcanary/packager/internal/domain/build"
)

// Actor identifies who produced a manifest.
type Actor struct {
	Hostname string `yaml:"hostname"`
	Username string `yaml:"username"`
}

// Manifest records the packages produced by one pipeline run.
type Manifest struct {
	Version  string           `yaml:"version"`
	RunID    string           `yaml:"run_id"`
	BuiltBy  *Actor           `yaml:"built_by,omitempty"`
	BuiltAt  time.Time        `yaml:"built_at"`
	Packages []*build.Package `yaml:"packages"`
}

// Merge records pkgs, replacing packages already recorded for the same
// recipe, distro, release and arch. Other packages keep their position.
func (m *Manifest) Merge(pkgs []*build.Package) {
	type key struct {
		recipe, distro, release, arch string
	}

	index := make(map[key]int, len(m.Packages)+len(pkgs))
	for i, pkg := range m.Packages {
		index[key{pkg.Recipe, pkg.Distro, pkg.Release, pkg.Arch}] = i
	}

	for _, pkg := range pkgs {
		k := key{pkg.Recipe, pkg.Distro, pkg.Release, pkg.Arch}
		if i, ok := index[k]; ok {
			m.Packages[i] = pkg

			continue
		}

		index[k] = len(m.Packages)
		m.Packages = append(m.Packages, pkg)
	}
}

// Repository persists manifests keyed by package version.
type Repository interface {
	Load(ctx context.Context, version string) (*Manifest, error)
	Save(ctx context.Context, m *Manifest) error
}

// ErrNotFound is returned when no manifest exists for a version.
var ErrNotFound = errors.New("manifest not found")

// ErrNoVersion is returned when saving a manifest without a version.
var ErrNoVersion = errors.New("manifest version is empty")

const fileMode = 0o644

// FileRepository stores manifests as YAML files next to the artifacts.
type FileRepository struct {
	// dir is the releases directory.
	dir string
	// mu serialises reads and writes of manifest files.
	mu sync.Mutex
}

// NewFileRepository creates a repository rooted at dir.
func NewFileRepository(dir string) *FileRepository {
	return &FileRepository{
		dir: filepath.Clean(dir),
	}
}

// Path returns the manifest file path for version.
func (r *FileRepository) Path(version string) string {
	return filepath.Join(r.dir, "manifest_"+version+".yaml")
}

// Load reads the manifest for version.
func (r *FileRepository) Load(_ context.Context, version string) (*Manifest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	contents, err := os.ReadFile(r.Path(version))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, version)
		}

		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var m Manifest
	if err = yaml.Unmarshal(contents, &m); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}

	return &m, nil
}

// Save writes m, replacing any manifest for the same version.
func (r *FileRepository) Save(_ context.Context, m *Manifest) error {
	if m == nil || m.Version == "" {
		return ErrNoVersion
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}

	if err = os.MkdirAll(r.dir, 0o755); err != nil {
		return fmt.Errorf("create releases dir: %w", err)
	}

	// Write then rename so a crashed run never leaves half a manifest.
	tmp := r.Path(m.Version) + ".tmp"
	if err = os.WriteFile(tmp, data, fileMode); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	if err = os.Rename(tmp, r.Path(m.Version)); err != nil {
		_ = os.Remove(tmp)

		return fmt.Errorf("write manifest: %w", err)
	}

	return nil
}

package recipe

import (
	"testing"

	"github.com/stretchr/testify/require"

	domain "github.com/appcanary/packager/internal/domain/recipe"
)

// TestBuiltinRegistry ensures the built-in declarations form a valid registry.
func TestBuiltinRegistry(t *testing.T) {
	t.Parallel()

	reg, err := NewDefaultRegistry()
	require.NoError(t, err)
	require.Equal(t, len(Builtin()), reg.Len())

	keys := make([]string, 0, reg.Len())
	for _, r := range reg.All() {
		keys = append(keys, r.Key())
		require.NotEmpty(t, r.Releases, r.Key())
	}

	require.Equal(t, []string{"ubuntu", "centos", "centos7", "redhat", "debian", "linuxmint", "fedora"}, keys)

	centos7, err := reg.Get("centos7")
	require.NoError(t, err)
	require.Equal(t, "centos", centos7.Distro)
	require.Equal(t, "el", centos7.Hosting())
	require.Equal(t, []string{"7"}, centos7.ReleaseNames())
}

// TestRegistryRejectsDuplicates verifies that keys must be unique.
func TestRegistryRejectsDuplicates(t *testing.T) {
	t.Parallel()

	extra := domain.Recipe{
		Distro:   "ubuntu",
		Releases: []domain.Release{{Name: "bionic"}},
		Format:   domain.FormatDeb,
	}

	_, err := NewDefaultRegistry(extra)
	require.ErrorIs(t, err, domain.ErrInvalid)

	extra.Name = "ubuntu-bionic"
	reg, err := NewDefaultRegistry(extra)
	require.NoError(t, err)

	got, err := reg.Get("ubuntu-bionic")
	require.NoError(t, err)
	require.Equal(t, "ubuntu", got.Distro)
}

// TestRegistryRejectsInvalid verifies validation of every declared recipe.
func TestRegistryRejectsInvalid(t *testing.T) {
	t.Parallel()

	_, err := NewRegistry(domain.Recipe{Distro: "amazon", Format: domain.FormatRPM})
	require.ErrorIs(t, err, domain.ErrInvalid)
}

// TestSelect covers empty, ordered, duplicated and unknown selections.
func TestSelect(t *testing.T) {
	t.Parallel()

	reg, err := NewDefaultRegistry()
	require.NoError(t, err)

	all, err := reg.Select(nil)
	require.NoError(t, err)
	require.Len(t, all, reg.Len())

	some, err := reg.Select([]string{"fedora", "ubuntu", "fedora"})
	require.NoError(t, err)
	require.Len(t, some, 2)
	require.Equal(t, "fedora", some[0].Key())
	require.Equal(t, "ubuntu", some[1].Key())

	_, err = reg.Select([]string{"gentoo"})
	require.ErrorIs(t, err, ErrNotFound)
}

// TestRegistryReturnsCopies ensures callers cannot mutate registered recipes.
func TestRegistryReturnsCopies(t *testing.T) {
	t.Parallel()

	reg, err := NewDefaultRegistry()
	require.NoError(t, err)

	got, err := reg.Get("ubuntu")
	require.NoError(t, err)

	got.Releases[0].Name = "mutated"
	got.ConfigFiles = nil

	again, err := reg.Get("ubuntu")
	require.NoError(t, err)
	require.Equal(t, "trusty", again.Releases[0].Name)
	require.NotEmpty(t, again.ConfigFiles)
}

// TestBuiltin_VerifiableImages skips verification for distros without an
// official container image named after them.
func TestBuiltin_VerifiableImages(t *testing.T) {
	t.Parallel()

	verified := make([]string, 0)

	for _, r := range Builtin() {
		if !r.SkipVerify {
			verified = append(verified, r.Key())
		}
	}

	require.Equal(t, []string{"ubuntu", "centos", "centos7", "debian"}, verified)
}

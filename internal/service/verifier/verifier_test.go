package verifier

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/appcanary/packager/internal/domain/build"
	"github.com/appcanary/packager/internal/process"
	"github.com/appcanary/packager/internal/process/processtest"
)

func testOptions() Options {
	return Options{
		Command:     []string{"docker"},
		Arches:      []string{"amd64"},
		ReleasesDir: "/src/releases",
		Mount:       "/releases",
	}
}

// TestCommand renders install commands per package format.
func TestCommand(t *testing.T) {
	t.Parallel()

	v := New(&processtest.Recorder{}, testOptions())

	cmd, err := v.Command(&build.Package{Distro: "ubuntu", Release: "xenial", Path: "releases/appcanary_1.0_amd64_ubuntu_xenial.deb"})
	require.NoError(t, err)
	require.Equal(t, []string{
		"docker", "run", "--rm", "-v", "/src/releases:/releases:ro", "ubuntu:xenial",
		"dpkg", "-i", "/releases/appcanary_1.0_amd64_ubuntu_xenial.deb",
	}, cmd.Argv())

	cmd, err = v.Command(&build.Package{Distro: "centos", Release: "7", Path: "releases/appcanary_1.0_amd64_centos_7.rpm"})
	require.NoError(t, err)
	require.Equal(t, []string{"rpm", "-i", "/releases/appcanary_1.0_amd64_centos_7.rpm"}, cmd.Args[len(cmd.Args)-3:])

	_, err = v.Command(&build.Package{Path: "releases/appcanary.tar"})
	require.ErrorIs(t, err, ErrUnknownFormat)
}

// TestVerifyAll skips flagged and foreign-arch packages and continues past failures.
func TestVerifyAll(t *testing.T) {
	t.Parallel()

	rec := &processtest.Recorder{OnRun: func(cmd process.Command) error {
		if cmd.Args[4] == "debian:jessie" {
			return processtest.Fail(cmd, 2)
		}

		return nil
	}}

	pkgs := []*build.Package{
		{Distro: "ubuntu", Release: "trusty", Arch: "amd64", Path: "releases/a.deb"},
		{Distro: "ubuntu", Release: "trusty", Arch: "i386", Path: "releases/b.deb"},
		{Distro: "debian", Release: "jessie", Arch: "amd64", Path: "releases/c.deb"},
		{Distro: "fedora", Release: "24", Arch: "amd64", Path: "releases/d.rpm", SkipVerify: true},
	}

	passed, err := New(rec, testOptions()).VerifyAll(context.Background(), pkgs)
	require.Error(t, err)
	require.Len(t, multierr.Errors(err), 1)
	require.Contains(t, err.Error(), "debian/jessie/amd64")

	require.Len(t, rec.Commands(), 2)
	require.Equal(t, []*build.Package{pkgs[0], pkgs[1], pkgs[3]}, passed)
}

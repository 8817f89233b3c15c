package publisher

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
		Command:    []string{"bundle", "exec", "package_cloud", "push"},
		Account:    "appcanary",
		Repository: "agent",
		Root:       "/src",
	}
}

// TestPush_RemapsCentos checks that centos packages go to the el repository.
func TestPush_RemapsCentos(t *testing.T) {
	t.Parallel()

	rec := &processtest.Recorder{}
	pub := New(rec, testOptions())

	pkg := &build.Package{Distro: "centos", Release: "7", Arch: "amd64", Path: "releases/appcanary_1.0.0_amd64_centos_7.rpm"}
	require.NoError(t, pub.Push(context.Background(), pkg))

	require.Equal(t, [][]string{{
		"bundle", "exec", "package_cloud", "push",
		"appcanary/agent/el/7",
		"releases/appcanary_1.0.0_amd64_centos_7.rpm",
	}}, rec.Argvs())
	require.Equal(t, "/src", rec.Commands()[0].Dir)
}

// TestTarget covers pass-through, remapped and overridden distros.
func TestTarget(t *testing.T) {
	t.Parallel()

	pub := New(&processtest.Recorder{}, testOptions())

	require.Equal(t, "appcanary/agent/ubuntu/trusty", pub.Target(&build.Package{Distro: "ubuntu", Release: "trusty"}))
	require.Equal(t, "appcanary/agent/el/6", pub.Target(&build.Package{Distro: "amazon", Release: "6"}))
	require.Equal(t, "appcanary/agent/rhel/7", pub.Target(&build.Package{Distro: "centos", Release: "7", HostingDistro: "rhel"}))
}

// TestPushAll_ContinuesPastFailures attempts every package even when one push fails.
func TestPushAll_ContinuesPastFailures(t *testing.T) {
	t.Parallel()

	rec := &processtest.Recorder{OnRun: func(cmd process.Command) error {
		if cmd.Args[len(cmd.Args)-1] == "b.deb" {
			return processtest.Fail(cmd, 1)
		}

		return nil
	}}

	pkgs := []*build.Package{
		{Distro: "ubuntu", Release: "trusty", Arch: "amd64", Path: "a.deb"},
		{Distro: "ubuntu", Release: "trusty", Arch: "i386", Path: "b.deb"},
		{Distro: "debian", Release: "jessie", Arch: "amd64", Path: "c.deb"},
	}

	err := New(rec, testOptions()).PushAll(context.Background(), pkgs)
	require.Error(t, err)
	require.Len(t, rec.Commands(), 3)

	errs := multierr.Errors(err)
	require.Len(t, errs, 1)

	var pubErr *Error
	require.ErrorAs(t, errs[0], &pubErr)
	require.Equal(t, "b.deb", pubErr.Path)
	require.Equal(t, "i386", pubErr.Arch)
	require.Contains(t, err.Error(), "appcanary/agent/ubuntu/trusty b.deb")
}

// TestPushAll_StopsOnCancel stops pushing once the context is cancelled.
func TestPushAll_StopsOnCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec := &processtest.Recorder{}
	err := New(rec, testOptions()).PushAll(ctx, []*build.Package{{Distro: "ubuntu", Path: "a.deb"}})
	require.ErrorIs(t, err, context.Canceled)
	require.Empty(t, rec.Commands())
}

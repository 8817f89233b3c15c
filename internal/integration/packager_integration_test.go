package integration

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/appcanary/packager/internal/repository/manifest"
	"github.com/appcanary/packager/internal/service/builder"
	"github.com/appcanary/packager/internal/service/packager"
)

// fakeFpm writes a small file at the path given with -p.
const fakeFpm = `out=""
while [ $# -gt 0 ]; do
  if [ "$1" = "-p" ]; then out="$2"; fi
  shift
done
mkdir -p "$(dirname "$out")"
printf 'package\n' > "$out"
`

// silentFpm exits cleanly without writing anything.
const silentFpm = `exit 0
`

// fakePush appends its arguments to pushed.log in the working directory.
const fakePush = `echo "$@" >> pushed.log
`

const settings = `
log_level: error
layout:
  root: %ROOT%
builder:
  command: [sh, %ROOT%/bin/fpm.sh]
  timeout: 1m
publisher:
  command: [sh, %ROOT%/bin/push.sh]
  account: acme
  repository: agent
recipes:
  - name: acme
    distro: acme
    format: rpm
    releases:
      - name: "1"
        init: systemd
    config_files:
      - template: config/agent.yml
        dest: /etc/appcanary/agent.yml
`

// workspace lays out the inputs of the acme recipe and the tool scripts.
func workspace(t *testing.T, fpm string) (string, string) {
	t.Helper()

	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh is not available")
	}

	root := t.TempDir()

	files := map[string]string{
		"bin/fpm.sh":                       fpm,
		"bin/push.sh":                      fakePush,
		"dist/2.0.0/linux_amd64/appcanary": "bin",
		"dist/2.0.0/linux_386/appcanary":   "bin",
		"package/config/agent.yml":         "config",
		"package/acme/1/post-install.sh":   "exit 0",
		"package/acme/1/files/.keep":       "",
	}

	for name, contents := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	}

	configPath := filepath.Join(root, "appcanary-packager.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(strings.ReplaceAll(settings, "%ROOT%", root)), 0o600))

	return root, configPath
}

// TestBuild_EndToEnd runs the pipeline against script stand-ins for fpm and package_cloud.
func TestBuild_EndToEnd(t *testing.T) {
	t.Parallel()

	root, configPath := workspace(t, fakeFpm)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	err := packager.Build(ctx, &packager.Options{
		ConfigPath: configPath,
		Version:    "2.0.0",
		Recipes:    []string{"acme"},
		Publish:    true,
	})
	require.NoError(t, err)

	require.FileExists(t, filepath.Join(root, "releases", "appcanary_2.0.0_amd64_acme_1.rpm"))
	require.FileExists(t, filepath.Join(root, "releases", "appcanary_2.0.0_i386_acme_1.rpm"))

	m, err := manifest.NewFileRepository(filepath.Join(root, "releases")).Load(ctx, "2.0.0")
	require.NoError(t, err)
	require.Len(t, m.Packages, 2)

	pushed, err := os.ReadFile(filepath.Join(root, "pushed.log"))
	require.NoError(t, err)
	require.Equal(t,
		"acme/agent/acme/1 releases/appcanary_2.0.0_amd64_acme_1.rpm\n"+
			"acme/agent/acme/1 releases/appcanary_2.0.0_i386_acme_1.rpm\n",
		string(pushed))
}

// TestBuild_MissingArtifactFails treats a clean builder exit without output as a failure.
func TestBuild_MissingArtifactFails(t *testing.T) {
	t.Parallel()

	root, configPath := workspace(t, silentFpm)

	err := packager.Build(context.Background(), &packager.Options{
		ConfigPath: configPath,
		Version:    "2.0.0",
		Recipes:    []string{"acme"},
		Publish:    true,
	})
	require.ErrorIs(t, err, builder.ErrArtifactMissing)
	require.Len(t, multierr.Errors(err), 2)

	require.NoFileExists(t, filepath.Join(root, "pushed.log"))
	require.NoFileExists(t, filepath.Join(root, "releases", "manifest_2.0.0.yaml"))
}

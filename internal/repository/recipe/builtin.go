package recipe

import (
	domain "github.com/appcanary/packager/internal/domain/recipe"
)

const (
	agentSample  = "/etc/appcanary/agent.yml.sample"
	serverSample = "/var/db/appcanary/server.yml.sample"
	serverConfig = "config/var/db/appcanary/server.yml"
)

// defaultConfigFiles ship ready-to-use config files.
func defaultConfigFiles() []domain.ConfigFile {
	return []domain.ConfigFile{
		{Template: "config/etc/appcanary/agent.yml", Dest: "/etc/appcanary/agent.yml"},
		{Template: serverConfig, Dest: "/var/db/appcanary/server.yml"},
	}
}

// sampleConfigFiles ship format-specific samples the post-install script
// copies into place.
func sampleConfigFiles(agentTemplate string) []domain.ConfigFile {
	return []domain.ConfigFile{
		{Template: agentTemplate, Dest: agentSample},
		{Template: serverConfig, Dest: serverSample},
	}
}

func releases(init string, names ...string) []domain.Release {
	out := make([]domain.Release, 0, len(names))
	for _, name := range names {
		out = append(out, domain.Release{Name: name, Init: init})
	}

	return out
}

// Builtin returns the supported distro recipes in build order.
//
// Amazon Linux is not listed: its 2015.x releases map onto el/6 at the
// package host, so the centos packages cover it.
func Builtin() []domain.Recipe {
	return []domain.Recipe{
		{
			Distro: "ubuntu",
			Releases: append(
				releases("upstart", "trusty", "precise"),
				releases("systemd", "vivid", "utopic", "wily", "xenial", "yakkety", "zesty")...,
			),
			Format:      domain.FormatDeb,
			ConfigFiles: sampleConfigFiles("config/etc/appcanary/dpkg.agent.yml"),
		},
		{
			Distro:      "centos",
			Releases:    releases("sysv", "5", "6"),
			Format:      domain.FormatRPM,
			ConfigFiles: defaultConfigFiles(),
		},
		{
			// centos 7 ships a sample config with the default turned on.
			Name:        "centos7",
			Distro:      "centos",
			Releases:    releases("systemd", "7"),
			Format:      domain.FormatRPM,
			ConfigFiles: sampleConfigFiles("config/etc/appcanary/rpm.agent.yml"),
		},
		{
			// No public redhat:<release> image exists to install into.
			Distro:      "redhat",
			Releases:    append(releases("sysv", "6"), releases("systemd", "7")...),
			Format:      domain.FormatRPM,
			ConfigFiles: defaultConfigFiles(),
			SkipVerify:  true,
		},
		{
			Distro:      "debian",
			Releases:    append(releases("systemd", "jessie"), releases("sysv", "wheezy", "squeeze")...),
			Format:      domain.FormatDeb,
			ConfigFiles: sampleConfigFiles("config/etc/appcanary/dpkg.agent.yml"),
		},
		{
			Distro:      "linuxmint",
			Releases:    releases("upstart", "rosa", "rafaela", "rebecca", "qiana"),
			Format:      domain.FormatDeb,
			ConfigFiles: defaultConfigFiles(),
			SkipVerify:  true,
		},
		{
			Distro:      "fedora",
			Releases:    releases("systemd", "24", "23"),
			Format:      domain.FormatRPM,
			ConfigFiles: defaultConfigFiles(),
			SkipVerify:  true,
		},
	}
}

// NewDefaultRegistry returns the built-in recipes followed by extra ones.
func NewDefaultRegistry(extra ...domain.Recipe) (*Registry, error) {
	return NewRegistry(append(Builtin(), extra...)...)
}

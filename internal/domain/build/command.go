package build

import (
	"path/filepath"
	"strings"
)

// FormatCommand renders the fpm arguments for u. The result depends on u
// alone, so the logged command is exactly the executed one.
func FormatCommand(u *Unit) []string {
	meta := &u.Metadata

	args := make([]string, 0, 32+2*(len(meta.Directories)+len(u.Hooks)+2*len(u.ConfigFiles)))

	args = append(args,
		"-f",
		"-s", "dir",
		"-t", string(u.Format),
		"-n", meta.Name,
		"-p", u.OutputPath,
		"-v", u.Version,
		"-a", u.Arch,
		"--rpm-os", "linux", // ignored by non-rpm targets
		"-C", u.FilesDir,
	)

	for _, dir := range meta.Directories {
		args = append(args, "--directories", dir)
	}

	for _, hook := range u.Hooks {
		args = append(args, hook.Hook.Flag(), dotSlash(hook.Path))
	}

	args = append(args, "--license", meta.License, "--vendor", meta.Vendor)

	for _, cf := range u.ConfigFiles {
		args = append(args, "--config-files", cf.Dest)
	}

	args = append(args, "./", u.Binary.Source+"="+u.Binary.Dest)

	for _, cf := range u.ConfigFiles {
		args = append(args, cf.Source+"="+cf.Dest)
	}

	return args
}

// dotSlash anchors relative script paths at the working directory.
func dotSlash(p string) string {
	if filepath.IsAbs(p) || strings.HasPrefix(p, ".") {
		return p
	}

	return "." + string(filepath.Separator) + p
}

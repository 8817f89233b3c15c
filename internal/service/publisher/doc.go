// Package publisher pushes built packages to packagecloud with one
// `package_cloud push <account>/<repo>/<distro>/<release> <file>` per package.
// Distro names are translated to the host's naming (centos and amazon are
// published as el).
package publisher

package builder

import (
	"errors"
	"fmt"

	"github.com/appcanary/packager/internal/domain/build"
	"github.com/appcanary/packager/internal/process"
)

var (
	// ErrInputMissing is returned when a file the builder needs is absent.
	ErrInputMissing = errors.New("build input missing")
	// ErrArtifactMissing is returned when the builder exits cleanly without writing the artifact.
	ErrArtifactMissing = errors.New("artifact not written")
	// ErrArtifactEmpty is returned when the artifact is zero bytes.
	ErrArtifactEmpty = errors.New("artifact is empty")
)

// Error is a failed build of one unit.
type Error struct {
	Recipe  string
	Distro  string
	Release string
	Arch    string
	Command process.Command
	Err     error
}

func newError(u *build.Unit, cmd process.Command, err error) *Error {
	return &Error{
		Recipe:  u.Recipe,
		Distro:  u.Distro,
		Release: u.Release,
		Arch:    u.Arch,
		Command: cmd,
		Err:     err,
	}
}

func (e *Error) Error() string {
	return fmt.Sprintf("build %s/%s/%s: %v; command: %s", e.Distro, e.Release, e.Arch, e.Err, e.Command)
}

func (e *Error) Unwrap() error {
	return e.Err
}

//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mitchellh/go-ps"

	"github.com/appcanary/packager/internal/logger"
)

// LockFilename marks a releases directory as being written by a running pipeline.
const LockFilename = ".appcanary-packager.lock"

// commLength is the longest process name the kernel reports.
const commLength = 15

// ErrAlreadyRunning indicates another pipeline holds the lock.
var ErrAlreadyRunning = errors.New("another packager run holds the lock")

// Lock is a held run lock.
type Lock struct {
	path string
}

// AcquireLock takes the run lock in dir, creating dir if needed. A lock
// left by a process that no longer runs is removed and taken over.
func AcquireLock(ctx context.Context, dir string) (*Lock, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", dir, err)
	}

	path := filepath.Join(dir, LockFilename)

	for range 2 {
		file, err := os.OpenFile(filepath.Clean(path), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			_, err = file.WriteString(strconv.Itoa(os.Getpid()))
			if closeErr := file.Close(); err == nil {
				err = closeErr
			}

			if err != nil {
				_ = os.Remove(path)

				return nil, fmt.Errorf("write lock: %w", err)
			}

			return &Lock{path: path}, nil
		}

		if !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create lock: %w", err)
		}

		holder, alive := lockHolder(path)
		if alive {
			return nil, fmt.Errorf("%w: pid %d, lock %s", ErrAlreadyRunning, holder, path)
		}

		logger.WarnKV(ctx, "Removing stale run lock", "path", path, "pid", holder)

		if err = os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("remove stale lock: %w", err)
		}
	}

	return nil, fmt.Errorf("%w: lock %s", ErrAlreadyRunning, path)
}

// Release removes the lock file.
func (l *Lock) Release() error {
	if l == nil {
		return nil
	}

	if err := os.Remove(l.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("release lock: %w", err)
	}

	return nil
}

// lockHolder reads the pid in the lock file and reports whether a packager
// process with that pid is still running.
func lockHolder(path string) (int, bool) {
	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		// Unreadable but present: assume it is live rather than clobber it.
		return 0, !errors.Is(err, os.ErrNotExist)
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(contents)))
	if err != nil || pid <= 0 {
		return 0, false
	}

	process, err := ps.FindProcess(pid)
	if err != nil || process == nil {
		return pid, false
	}

	return pid, sameProgram(process.Executable())
}

// sameProgram compares a kernel-reported process name with this binary's,
// allowing for the kernel's truncation.
func sameProgram(name string) bool {
	self := filepath.Base(os.Args[0])
	if len(self) > commLength {
		self = self[:commLength]
	}

	return name != "" && name == self
}

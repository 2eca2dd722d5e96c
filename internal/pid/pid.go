// Package pid keeps a single running wifimon per host.
package pid

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"codeberg.org/mutker/wifimon/internal/errors"
)

const fileName = "wifimon.pid"

// Path returns the location of the PID file
func Path() string {
	return filepath.Join(os.TempDir(), fileName)
}

// Write records the current process ID. It fails with ErrAlreadyRunning
// if the file names another live process; a stale file is replaced.
func Write() error {
	return write(Path())
}

// Remove deletes the PID file if present.
func Remove() error {
	return remove(Path())
}

func write(path string) error {
	errFactory := errors.New()
	self := os.Getpid()

	if other, ok := readPID(path); ok && other != self && alive(other) {
		return errFactory.WithData(errors.ErrAlreadyRunning, other)
	}

	if err := os.WriteFile(path, []byte(strconv.Itoa(self)), 0o600); err != nil {
		return errFactory.Wrap(errors.ErrInternal, err)
	}

	return nil
}

func remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.New().Wrap(errors.ErrInternal, err)
	}

	return nil
}

// readPID returns the ID stored at path. Unreadable or malformed files
// count as stale.
func readPID(path string) (int, bool) {
	b, err := os.ReadFile(path)
	if err != nil {
		return 0, false
	}

	n, err := strconv.Atoi(strings.TrimSpace(string(b)))
	if err != nil || n <= 0 {
		return 0, false
	}

	return n, true
}

func alive(pid int) bool {
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}

	return process.Signal(syscall.Signal(0)) == nil
}

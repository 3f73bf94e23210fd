// Package pidfile records the running shell's process id so command-line
// tools can signal it when the control socket is unavailable.
package pidfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shirou/gopsutil/v4/process"
)

// ErrNotRunning is returned when no live shell owns the PID file.
var ErrNotRunning = errors.New("deskbar is not running")

// File is a PID file at a fixed path.
type File struct {
	path string
}

// New returns a PID file at path.
func New(path string) *File { return &File{path: path} }

func (f *File) Path() string { return f.path }

// Write stores pid, replacing any previous file atomically.
func (f *File) Write(pid int) error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("create PID directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".deskbar-pid-*")
	if err != nil {
		return fmt.Errorf("write PID file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := fmt.Fprintf(tmp, "%d\n", pid); err != nil {
		tmp.Close()
		return fmt.Errorf("write PID file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write PID file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0600); err != nil {
		return fmt.Errorf("write PID file: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("write PID file: %w", err)
	}
	return nil
}

// Read returns the stored pid.
func (f *File) Read() (int, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("invalid PID format: %w", err)
	}
	if pid <= 0 {
		return 0, fmt.Errorf("invalid PID value: %d", pid)
	}
	return pid, nil
}

// Remove deletes the file. A missing file is not an error.
func (f *File) Remove() error {
	err := os.Remove(f.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Alive returns the stored pid if that process still exists, and
// ErrNotRunning otherwise.
func (f *File) Alive() (int, error) {
	pid, err := f.Read()
	if err != nil {
		if os.IsNotExist(err) {
			return 0, ErrNotRunning
		}
		return 0, err
	}
	exists, err := process.PidExists(int32(pid))
	if err != nil {
		return 0, fmt.Errorf("check pid %d: %w", pid, err)
	}
	if !exists {
		return 0, ErrNotRunning
	}
	return pid, nil
}

// Package launcher starts user programs detached from the shell and reaps
// them once they exit.
package launcher

import (
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"syscall"

	"golang.org/x/sys/unix"
)

// Launcher starts commands through a shell, optionally inside a terminal.
type Launcher struct {
	shell    string
	terminal []string
	logger   *slog.Logger

	start func(cmd *exec.Cmd) error
}

// New creates a launcher. terminal is split on whitespace so it may carry
// its own flags.
func New(shell, terminal string, logger *slog.Logger) *Launcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Launcher{
		shell:    shell,
		terminal: strings.Fields(terminal),
		logger:   logger,
		start:    func(cmd *exec.Cmd) error { return cmd.Start() },
	}
}

// Argv returns the argument vector Launch would run.
func (l *Launcher) Argv(command string, inTerminal bool) []string {
	if inTerminal && len(l.terminal) > 0 {
		argv := append([]string{}, l.terminal...)
		if strings.TrimSpace(command) == "" {
			return argv
		}
		return append(argv, "-e", l.shell, "-c", command)
	}
	return []string{l.shell, "-c", command}
}

// Launch starts command in its own session and returns without waiting.
// The child is collected later by Reap.
func (l *Launcher) Launch(command string, inTerminal bool) error {
	if strings.TrimSpace(command) == "" && !inTerminal {
		return fmt.Errorf("launch: empty command")
	}
	argv := l.Argv(command, inTerminal)
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	if err := l.start(cmd); err != nil {
		return fmt.Errorf("failed to launch %q: %w", command, err)
	}
	l.logger.Debug("launched", "command", command, "terminal", inTerminal, "pid", cmd.Process.Pid)
	return nil
}

// Reap collects every exited child without blocking and returns how many
// were collected.
func Reap() (int, error) {
	reaped := 0
	for {
		var status unix.WaitStatus
		pid, err := unix.Wait4(-1, &status, unix.WNOHANG, nil)
		switch {
		case errors.Is(err, unix.ECHILD):
			return reaped, nil
		case errors.Is(err, unix.EINTR):
			continue
		case err != nil:
			return reaped, err
		case pid <= 0:
			return reaped, nil
		}
		reaped++
	}
}

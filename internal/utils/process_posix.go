//go:build !windows

package utils

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"syscall"
)

// SetNewPG puts the child in its own process group so it survives the
// parent's exit and can be signalled as a tree.
func SetNewPG(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

/**
 * Check whether a process with the given PID is alive
 * @param {int} pid - Process ID
 * @returns {bool} true if the process exists
 * @returns {error} Unexpected signalling errors
 */
func IsProcessRunning(pid int) (bool, error) {
	if pid <= 0 {
		return false, nil
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false, err
	}
	err = proc.Signal(syscall.Signal(0))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrProcessDone) || errors.Is(err, syscall.ESRCH) {
		return false, nil
	}
	if errors.Is(err, syscall.EPERM) {
		// Exists but owned by someone else
		return true, nil
	}
	return false, err
}

/**
 * Find a live process by PID
 * @returns {os.Process} The process handle
 * @returns {error} If no such process is running
 */
func FindProcess(pid int) (*os.Process, error) {
	running, err := IsProcessRunning(pid)
	if err != nil {
		return nil, err
	}
	if !running {
		return nil, fmt.Errorf("process %d isn't running", pid)
	}
	return os.FindProcess(pid)
}

// TerminateProcessTree signals the whole process group of pid
func TerminateProcessTree(pid int) error {
	return syscall.Kill(-pid, syscall.SIGTERM)
}

/**
 * Map a finished process state to a shell-style exit code
 * @description Signal-terminated children are reported as 128+signal
 */
func ExitStatus(state *os.ProcessState) int {
	if ws, ok := state.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return 128 + int(ws.Signal())
	}
	return state.ExitCode()
}

//go:build windows

package utils

import (
	"fmt"
	"os"
	"os/exec"
	"syscall"
)

// SetNewPG detaches the child into its own process group
func SetNewPG(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP,
	}
}

func IsProcessRunning(pid int) (bool, error) {
	if pid <= 0 {
		return false, nil
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false, nil
	}
	proc.Release()
	return true, nil
}

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

// TerminateProcessTree kills the process (group signalling is POSIX-only)
func TerminateProcessTree(pid int) error {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	return proc.Kill()
}

func ExitStatus(state *os.ProcessState) int {
	return state.ExitCode()
}

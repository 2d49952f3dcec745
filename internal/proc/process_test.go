//go:build !windows

package proc

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"workshop-host/internal/models"
)

/**
 * Test the exit watcher callback
 * @param {*testing.T} t - Testing framework instance
 * @description
 * - A watched process that exits on its own must trigger the callback
 * - The instance must end up in the exited state with no pid
 */
func TestWatcherReportsExit(t *testing.T) {
	pi := NewProcessInstance("test-process", "true", "true", nil)

	var exits int32
	pi.EnableWatcher(func(p *ProcessInstance) {
		atomic.AddInt32(&exits, 1)
	})

	if err := pi.StartProcess(context.Background()); err != nil {
		t.Fatalf("failed to start process: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for atomic.LoadInt32(&exits) == 0 && time.Now().Before(deadline) {
		time.Sleep(50 * time.Millisecond)
	}

	if atomic.LoadInt32(&exits) != 1 {
		t.Fatal("exit callback was not invoked")
	}
	if pi.Status != models.StatusExited {
		t.Errorf("unexpected status after exit: %s", pi.Status)
	}
	if pi.Pid() != 0 {
		t.Errorf("pid should be cleared after exit, got %d", pi.Pid())
	}
}

/**
 * Test that a user stop does not look like a crash
 * @param {*testing.T} t - Testing framework instance
 * @description Stopping a watched process must not invoke the exit
 * callback: only unexpected exits are reported
 */
func TestStopDoesNotTriggerCallback(t *testing.T) {
	pi := NewProcessInstance("test-sleeper", "sleep", "sleep", []string{"60"})

	var exits int32
	pi.EnableWatcher(func(p *ProcessInstance) {
		atomic.AddInt32(&exits, 1)
	})

	if err := pi.StartProcess(context.Background()); err != nil {
		t.Fatalf("failed to start process: %v", err)
	}
	if pi.Status != models.StatusRunning {
		t.Fatalf("unexpected status after start: %s", pi.Status)
	}

	if err := pi.StopProcess(); err != nil {
		t.Fatalf("failed to stop process: %v", err)
	}

	time.Sleep(500 * time.Millisecond)

	if atomic.LoadInt32(&exits) != 0 {
		t.Error("exit callback must not fire for a user-requested stop")
	}
	if pi.Status != models.StatusStopped {
		t.Errorf("unexpected status after stop: %s", pi.Status)
	}
}

func TestCheckProcess(t *testing.T) {
	pi := NewProcessInstance("test-sleeper", "sleep", "sleep", []string{"60"})

	if pi.CheckProcess() {
		t.Error("CheckProcess must be false before start")
	}

	if err := pi.StartProcess(context.Background()); err != nil {
		t.Fatalf("failed to start process: %v", err)
	}
	if !pi.CheckProcess() {
		t.Error("CheckProcess must be true while running")
	}

	if err := pi.StopProcess(); err != nil {
		t.Fatalf("failed to stop process: %v", err)
	}
	if pi.CheckProcess() {
		t.Error("CheckProcess must be false after stop")
	}
}

/**
 * Test re-attaching to a live process by pid
 * @param {*testing.T} t - Testing framework instance
 */
func TestAttachProcess(t *testing.T) {
	source := NewProcessInstance("source", "sleep", "sleep", []string{"60"})
	if err := source.StartProcess(context.Background()); err != nil {
		t.Fatalf("failed to start process: %v", err)
	}
	defer source.StopProcess()

	adopted := NewProcessInstance("adopted", "sleep", "sleep", []string{"60"})
	if err := adopted.AttachProcess(source.Pid()); err != nil {
		t.Fatalf("failed to attach: %v", err)
	}
	if adopted.Status != models.StatusRunning {
		t.Errorf("unexpected status after attach: %s", adopted.Status)
	}

	orphan := NewProcessInstance("orphan", "sleep", "sleep", []string{"60"})
	if err := orphan.AttachProcess(99999999); err == nil {
		t.Error("attaching to a dead pid must fail")
	}
}

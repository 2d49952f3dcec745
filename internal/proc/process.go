package proc

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"time"

	"workshop-host/internal/logger"
	"workshop-host/internal/models"
	"workshop-host/internal/utils"
)

type processWatcher struct {
	enabled  bool                   //whether the watch goroutine runs
	onExited func(*ProcessInstance) //called when the watched process goes away
}

/**
 * ProcessInstance describes one managed child process
 * @property {string} title - Display name
 * @property {string} procName - Process name, identifies the process together with the pid
 * @property {string} command - Startup command
 * @property {[]string} args - Command arguments
 * @property {string} workDir - Working directory
 * @property {[]string} env - Environment; inherits the parent's when empty
 * @property {models.RunStatus} status - running/exited/stopped/error
 */
type ProcessInstance struct {
	Title          string
	ProcessName    string
	Command        string
	Args           []string
	WorkDir        string
	Env            []string
	Status         models.RunStatus
	StartTime      time.Time
	LastExitTime   time.Time
	LastExitReason string
	watcher        processWatcher
	process        *os.Process //saved for the unified Wait()
	mutex          sync.Mutex
}

/**
 * NewProcessInstance creates a new process instance
 * @param {string} title - Display name, stable across restarts
 * @param {string} procName - Process name
 * @param {string} command - Startup command
 * @param {[]string} args - Command arguments
 * @returns {ProcessInstance} The created instance, initially exited
 */
func NewProcessInstance(title, procName, command string, args []string) *ProcessInstance {
	return &ProcessInstance{
		Title:       title,
		ProcessName: procName,
		Command:     command,
		Args:        args,
		Status:      models.StatusExited,
	}
}

// EnableWatcher arms the exit watcher. There is no automatic restart: the
// callback only reports the exit, recovery is the owner's decision.
func (pi *ProcessInstance) EnableWatcher(onExited func(*ProcessInstance)) {
	pi.mutex.Lock()
	defer pi.mutex.Unlock()

	pi.watcher.enabled = true
	pi.watcher.onExited = onExited
}

func (pi *ProcessInstance) DisableWatcher() {
	pi.mutex.Lock()
	defer pi.mutex.Unlock()

	pi.watcher.enabled = false
	pi.watcher.onExited = nil
}

func (pi *ProcessInstance) Pid() int {
	if pi.process == nil {
		return 0
	}
	return pi.process.Pid
}

func (pi *ProcessInstance) GetDetail() models.ProcessDetail {
	pi.mutex.Lock()
	defer pi.mutex.Unlock()

	return models.ProcessDetail{
		Title:          pi.Title,
		ProcessName:    pi.ProcessName,
		Command:        pi.Command,
		Args:           pi.Args,
		WorkDir:        pi.WorkDir,
		Status:         pi.Status,
		Pid:            pi.Pid(),
		StartTime:      pi.StartTime,
		LastExitTime:   pi.LastExitTime,
		LastExitReason: pi.LastExitReason,
	}
}

/**
 * AttachProcess re-associates the instance with an already running process
 * @param {int} pid - Process ID recorded by a previous invocation
 * @returns {error} If no such process is running
 * @description
 * - Used after a restart of the manager to adopt a detached child
 * - Starts the watch goroutine when the watcher is enabled
 */
func (pi *ProcessInstance) AttachProcess(pid int) error {
	pi.mutex.Lock()
	defer pi.mutex.Unlock()

	processObj, err := utils.FindProcess(pid)
	if err != nil {
		logger.Warnf("Failed to find process '%s' with PID %d: %v", pi.ProcessName, pid, err)
		return err
	}

	pi.Status = models.StatusRunning
	pi.StartTime = time.Now()
	pi.process = processObj

	logger.Infof("Process '%s' attached (PID: %d, NAME: %s)", pi.Title, pid, pi.ProcessName)
	if pi.watcher.enabled {
		go pi.watchProcess()
	}
	return nil
}

/**
 * StartProcess launches the child process
 * @param {context.Context} ctx - Bounds the child's lifetime in watched mode
 * @returns {error} Start failure
 * @description
 * - Detached (own process group) when the watcher is disabled, so the child
 *   survives the CLI invocation that launched it
 * - Watched children get a goroutine waiting on them
 */
func (pi *ProcessInstance) StartProcess(ctx context.Context) error {
	pi.mutex.Lock()
	defer pi.mutex.Unlock()

	if pi.Status == models.StatusRunning {
		return nil
	}
	fullCommand := pi.Command
	for _, arg := range pi.Args {
		fullCommand += " " + arg
	}
	logger.Infof("Executing command: %s", fullCommand)

	cmd := exec.CommandContext(ctx, pi.Command, pi.Args...)

	if pi.WorkDir != "" {
		cmd.Dir = pi.WorkDir
	}
	if len(pi.Env) > 0 {
		cmd.Env = pi.Env
	}

	if !pi.watcher.enabled {
		// Keep the child alive after this process exits
		utils.SetNewPG(cmd)
	}

	if err := cmd.Start(); err != nil {
		pi.Status = models.StatusError
		pi.LastExitReason = fmt.Sprintf("start failed: %v", err)
		logger.Errorf("Failed to start process '%s', error: %v", pi.Title, err)
		return err
	}

	pi.process = cmd.Process
	pi.Status = models.StatusRunning
	pi.StartTime = time.Now()

	logger.Infof("Process '%s' started (PID: %d)", pi.Title, pi.Pid())

	if pi.watcher.enabled {
		go pi.watchProcess()
	}
	return nil
}

/**
 * StopProcess stops the child process
 * @returns {error} Kill failure
 * @description Reaps the child after killing it and updates the status
 */
func (pi *ProcessInstance) StopProcess() error {
	pi.mutex.Lock()
	defer pi.mutex.Unlock()

	if pi.Status != models.StatusRunning {
		return nil
	}
	pi.Status = models.StatusStopped
	pi.LastExitTime = time.Now()
	pi.LastExitReason = "stopped by user"

	pid := pi.Pid()
	if pi.process != nil {
		if err := pi.process.Kill(); err != nil {
			logger.Errorf("Failed to kill process '%s' (PID: %d, NAME: %s)",
				pi.Title, pid, pi.ProcessName)
			return err
		}
		pi.process.Wait()
		pi.process = nil
	}

	logger.Infof("Process '%s' (PID: %d, NAME: %s) stopped",
		pi.Title, pid, pi.ProcessName)
	return nil
}

// CheckProcess verifies the child is still alive, correcting the status when
// it silently went away.
func (pi *ProcessInstance) CheckProcess() bool {
	pi.mutex.Lock()
	defer pi.mutex.Unlock()

	if pi.Status != models.StatusRunning {
		return false
	}
	if pi.process == nil {
		return false
	}
	running, err := utils.IsProcessRunning(pi.Pid())
	if err != nil || !running {
		logger.Warnf("Process '%s' (PID: %d, NAME: %s) isn't running", pi.Title, pi.Pid(), pi.ProcessName)
		pi.Status = models.StatusError
		pi.process = nil
		return false
	}
	return true
}

/**
 * watchProcess waits on the child and records the exit
 * @description
 * - Uses the unified process.Wait()
 * - No automatic restart: the exit is reported through the watcher callback
 */
func (pi *ProcessInstance) watchProcess() {
	_, err := pi.process.Wait()

	pi.mutex.Lock()

	if pi.Status == models.StatusStopped {
		logger.Infof("Process '%s' stopped by user", pi.Title)
		pi.mutex.Unlock()
		return
	}
	pi.LastExitTime = time.Now()
	if err != nil {
		logger.Errorf("Process '%s' (PID: %d) exited with error: %v", pi.Title, pi.Pid(), err)
		pi.LastExitReason = fmt.Sprintf("exited with error: %v", err)
		pi.Status = models.StatusError
	} else {
		logger.Infof("Process '%s' (PID: %d) exited", pi.Title, pi.Pid())
		pi.LastExitReason = "exited"
		pi.Status = models.StatusExited
	}
	pi.process = nil
	onExited := pi.watcher.onExited
	pi.mutex.Unlock()

	if onExited != nil {
		onExited(pi)
	}
}

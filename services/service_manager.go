package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"workshop-host/internal/config"
	"workshop-host/internal/env"
	"workshop-host/internal/logger"
	"workshop-host/internal/models"
	"workshop-host/internal/proc"
	"workshop-host/internal/utils"
)

const (
	WORKSHOP_NAME = "workshop"
)

/**
 * Service instance information
 * @property {int} pid - Process ID
 * @property {models.ServiceState} state - stopped/starting/ready/failed
 * @property {string} startTime - Service start time in ISO format
 * @property {models.ServiceSpecification} spec - Service configuration
 */
type ServiceInstance struct {
	Name      string              `json:"name"`
	Pid       int                 `json:"pid"`
	Port      int                 `json:"port"`
	State     models.ServiceState `json:"state"`
	StartTime string              `json:"startTime"`

	Spec models.ServiceSpecification `json:"-"`
	proc *proc.ProcessInstance
}

// ServiceArgs is the value exposed to command and argument templates
type ServiceArgs struct {
	Port    int
	DataDir string
}

type ServiceManager struct {
	self     ServiceInstance
	services map[string]*ServiceInstance
}

var serviceManager *ServiceManager

/**
 * GetServiceManager returns the process-wide service manager
 * @returns {ServiceManager} Singleton instance
 * @description
 * - Registers the backing database service from configuration
 * - Reloads cached state and re-attaches to still-running processes
 * - In daemon mode, records the daemon itself as a service
 */
func GetServiceManager() *ServiceManager {
	if serviceManager != nil {
		return serviceManager
	}
	sm := &ServiceManager{
		services: make(map[string]*ServiceInstance),
	}
	dbSpec := config.Config.Database
	sm.services[dbSpec.Name] = &ServiceInstance{
		Name:      dbSpec.Name,
		Pid:       0,
		State:     models.StateStopped,
		StartTime: time.Now().Format(time.RFC3339),
		Spec:      dbSpec,
	}
	sm.self.Name = WORKSHOP_NAME
	sm.self.State = models.StateStopped
	for name, svc := range sm.services {
		sm.loadService(name, svc)
	}
	sm.loadService(WORKSHOP_NAME, &sm.self)
	if env.Daemon {
		sm.self.Pid = os.Getpid()
		sm.self.State = models.StateReady
		sm.self.Port = env.ListenPort
		sm.self.StartTime = time.Now().Format(time.RFC3339)
		sm.saveService(&sm.self)
	}
	serviceManager = sm
	return serviceManager
}

func (sm *ServiceManager) GetInstances() []*ServiceInstance {
	var svcs []*ServiceInstance
	svcs = append(svcs, &sm.self)
	for _, svc := range sm.services {
		svcs = append(svcs, svc)
	}
	return svcs
}

func (sm *ServiceManager) GetInstance(name string) *ServiceInstance {
	if name == WORKSHOP_NAME {
		return &sm.self
	}
	if svc, exist := sm.services[name]; exist {
		return svc
	}
	return nil
}

func (sm *ServiceManager) GetServiceDetail(svc *ServiceInstance) models.ServiceDetail {
	detail := models.ServiceDetail{
		Name:      svc.Name,
		Pid:       svc.Pid,
		Port:      svc.Port,
		State:     svc.State,
		StartTime: svc.StartTime,
		Ready:     svc.State == models.StateReady,
		Spec:      svc.Spec,
	}
	if svc.proc != nil {
		detail.Process = svc.proc.GetDetail()
	}
	return detail
}

/**
 * IsServiceReady reports whether a service is ready for clients
 * @param {string} name - Name of the service to check
 * @returns {bool} true when state is ready and the port still answers
 */
func (sm *ServiceManager) IsServiceReady(name string) bool {
	svc, ok := sm.services[name]
	if !ok {
		return false
	}
	if svc.State != models.StateReady {
		return false
	}
	if svc.Port > 0 {
		return utils.CheckPortConnectable(svc.Port)
	}
	return true
}

/**
 * Save service information to cache file
 * @param {ServiceInstance} svc - Service instance information
 * @description
 * - Marshals the instance to JSON
 * - Writes to a service-specific file in .workshop/cache/services/
 */
func (sm *ServiceManager) saveService(svc *ServiceInstance) {
	cacheDir := filepath.Join(env.WorkshopDir, "cache", "services")
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		logger.Errorf("Service [%s] save info failed, error: %v", svc.Name, err)
		return
	}

	jsonData, err := json.MarshalIndent(svc, "", "  ")
	if err != nil {
		logger.Errorf("Service [%s] save info failed, error: %v", svc.Name, err)
		return
	}

	cacheFile := filepath.Join(cacheDir, svc.Name+".json")
	if err := os.WriteFile(cacheFile, jsonData, 0644); err != nil {
		logger.Errorf("Service [%s] save info failed, error: %v", svc.Name, err)
		return
	}

	logger.Infof("Service [%s] info saved to %s", svc.Name, cacheFile)
}

/**
 * loadService restores an instance from its cache file
 * @description
 * - A cached running pid is re-attached; a vanished process resets the
 *   instance to stopped
 * - Ready state is only trusted after the process attach succeeds
 */
func (sm *ServiceManager) loadService(name string, svc *ServiceInstance) error {
	cacheFile := filepath.Join(env.WorkshopDir, "cache", "services", name+".json")

	if _, err := os.Stat(cacheFile); os.IsNotExist(err) {
		logger.Debugf("No cache file found for service %s, skipping", name)
		return os.ErrNotExist
	}

	jsonData, err := os.ReadFile(cacheFile)
	if err != nil {
		logger.Errorf("Failed to read cache file for service %s: %v", name, err)
		return err
	}

	var cachedInstance ServiceInstance
	if err := json.Unmarshal(jsonData, &cachedInstance); err != nil {
		logger.Errorf("Failed to unmarshal cache data for service %s: %v", name, err)
		return err
	}

	if cachedInstance.Name != name {
		logger.Warnf("Cache file name mismatch for service %s (cached name: %s), skipping", name, cachedInstance.Name)
		return fmt.Errorf("not matched")
	}

	svc.Pid = cachedInstance.Pid
	svc.State = cachedInstance.State
	svc.StartTime = cachedInstance.StartTime
	svc.Port = cachedInstance.Port

	if svc.Pid > 0 {
		svc.proc, err = sm.getProcessInstance(svc)
		if err != nil {
			logger.Errorf("Process %d for service %s configure error: %v", svc.Pid, name, err)
			svc.State = models.StateStopped
			svc.Pid = 0
			sm.saveService(svc)
			return err
		}
		if err := svc.proc.AttachProcess(svc.Pid); err != nil {
			logger.Warnf("Process %d for service %s not found, marking as stopped", svc.Pid, name)
			svc.State = models.StateStopped
			svc.Pid = 0
			svc.proc = nil
			sm.saveService(svc)
			return err
		}
		logger.Infof("Service %s process %d is still running", name, svc.Pid)
	}

	logger.Infof("Successfully loaded service %s from cache", name)

	return nil
}

func (sm *ServiceManager) getProcessInstance(svc *ServiceInstance) (*proc.ProcessInstance, error) {
	args := ServiceArgs{
		Port:    svc.Spec.Port,
		DataDir: svc.Spec.DataDir,
	}
	command, cmdArgs, err := utils.GetCommandLine(svc.Spec.Command, svc.Spec.Args, args)
	if err != nil {
		return nil, err
	}
	return proc.NewProcessInstance("service "+svc.Name, svc.Spec.Name, command, cmdArgs), nil
}

/**
 * startService launches the service process, moving stopped to starting
 * @description
 * - The process is detached so it outlives a one-shot CLI invocation
 * - In daemon mode the exit watcher marks an unexpected exit as failed
 * - Starting never implies ready: callers follow up with WaitReady
 */
func (sm *ServiceManager) startService(ctx context.Context, svc *ServiceInstance) error {
	if svc.Spec.DataDir != "" {
		if err := os.MkdirAll(svc.Spec.DataDir, 0755); err != nil {
			return fmt.Errorf("failed to create data dir '%s': %w", svc.Spec.DataDir, err)
		}
	}
	svc.Port = svc.Spec.Port

	var err error
	svc.proc, err = sm.getProcessInstance(svc)
	if err != nil {
		return err
	}
	if env.Daemon {
		svc.proc.EnableWatcher(func(pi *proc.ProcessInstance) {
			svc.Pid = 0
			svc.State = models.StateFailed
			sm.saveService(svc)
			sm.export()
		})
	}
	if err := svc.proc.StartProcess(ctx); err != nil {
		svc.State = models.StateFailed
		sm.saveService(svc)
		return err
	}
	svc.Pid = svc.proc.Pid()
	svc.StartTime = time.Now().Format(time.RFC3339)
	svc.State = models.StateStarting

	sm.saveService(svc)
	sm.export()
	return nil
}

func (sm *ServiceManager) stopService(svc *ServiceInstance) {
	if svc.proc != nil {
		if err := svc.proc.StopProcess(); err != nil {
			logger.Errorf("Failed to stop the service %s (PID: %d)", svc.Name, svc.Pid)
		} else {
			logger.Infof("Successfully stopped the service %s (PID: %d)", svc.Name, svc.Pid)
		}
	} else if svc.Pid > 0 {
		// Detached child from an earlier invocation
		if err := utils.TerminateProcessTree(svc.Pid); err != nil {
			logger.Errorf("Failed to terminate process group %d: %v", svc.Pid, err)
		}
	}
	svc.State = models.StateStopped
	svc.Pid = 0
	svc.proc = nil
	sm.saveService(svc)
	sm.export()
}

/**
 * StartService starts a named service without waiting for readiness
 * @param {string} name - Service name
 * @returns {error} Start failure, or unknown service
 * @description Starting an already starting or ready service is an error;
 * a failed service may be started again explicitly
 */
func (sm *ServiceManager) StartService(ctx context.Context, name string) error {
	svc, ok := sm.services[name]
	if !ok {
		return fmt.Errorf("service %s not found", name)
	}
	if svc.State == models.StateStarting || svc.State == models.StateReady {
		return fmt.Errorf("service %s is already %s", name, svc.State)
	}
	if err := sm.startService(ctx, svc); err != nil {
		logger.Errorf("Start [%s] failed: %v", name, err)
		return err
	}
	return nil
}

/**
 * WaitReady blocks until the service accepts connections
 * @param {string} name - Service name
 * @param {time.Duration} timeout - Wait budget; zero uses the spec value
 * @returns {error} *models.ServiceTimeout at the boundary, nil when ready
 * @description
 * - starting → ready on success
 * - starting → failed on timeout; the failure is permanent until an
 *   explicit restart
 * - Caller cancellation aborts only this wait; the service stays starting
 *   and other waiters are unaffected
 */
func (sm *ServiceManager) WaitReady(ctx context.Context, name string, timeout time.Duration) error {
	svc, ok := sm.services[name]
	if !ok {
		return fmt.Errorf("service %s not found", name)
	}
	if svc.State == models.StateReady {
		return nil
	}
	if svc.State != models.StateStarting {
		return fmt.Errorf("service %s is %s, not starting", name, svc.State)
	}
	if timeout <= 0 {
		timeout = time.Duration(svc.Spec.StartTimeout) * time.Second
	}

	began := time.Now()
	err := utils.WaitPortReady(ctx, svc.Port, timeout)
	RecordReadinessWait(name, time.Since(began).Seconds(), err)
	if err != nil {
		if cerr := ctx.Err(); cerr != nil {
			logger.Warnf("Service [%s] readiness wait interrupted: %v", name, cerr)
			return cerr
		}
		svc.State = models.StateFailed
		sm.saveService(svc)
		sm.export()
		logger.Errorf("Service [%s] not ready after %v", name, timeout)
		return &models.ServiceTimeout{Service: name, Timeout: timeout}
	}

	svc.State = models.StateReady
	sm.saveService(svc)
	sm.export()
	logger.Infof("Service [%s] is ready on port %d", name, svc.Port)
	return nil
}

func (sm *ServiceManager) StopService(name string) error {
	svc, ok := sm.services[name]
	if !ok {
		logger.Errorf("Stop [%s] failed: service not found", name)
		return fmt.Errorf("service %s not found", name)
	}
	if svc.State == models.StateStopped {
		return nil
	}
	sm.stopService(svc)
	return nil
}

func (sm *ServiceManager) StopAll() {
	for _, svc := range sm.services {
		if svc.State != models.StateStopped {
			sm.stopService(svc)
		}
	}
	if env.Daemon {
		sm.self.Pid = 0
		sm.self.Port = 0
		sm.self.State = models.StateStopped
		sm.saveService(&sm.self)
	}
	sm.export()
}

/**
 * CheckServices verifies that ready services still answer on their port
 * @description A ready service whose process died is downgraded to failed.
 * There is no automatic restart; the finding is reported and recorded.
 */
func (sm *ServiceManager) CheckServices() error {
	for _, svc := range sm.services {
		if svc.State != models.StateReady {
			continue
		}
		alive := svc.proc == nil || svc.proc.CheckProcess()
		if !alive || (svc.Port > 0 && !utils.CheckPortConnectable(svc.Port)) {
			logger.Errorf("Service [%s] is no longer ready", svc.Name)
			svc.State = models.StateFailed
			sm.saveService(svc)
			sm.export()
		}
	}
	return nil
}

func (sm *ServiceManager) getServiceKnowledge(svc *ServiceInstance) models.ServiceKnowledge {
	return models.ServiceKnowledge{
		Name:  svc.Name,
		State: svc.State,
		Port:  svc.Port,
		Pid:   svc.Pid,
	}
}

/**
 * ExportKnowledge writes the discovery file for other tools
 * @param {string} outputPath - Output file, empty picks the default location
 */
func (sm *ServiceManager) ExportKnowledge(outputPath string) error {
	if outputPath == "" {
		outputPath = filepath.Join(env.WorkshopDir, "share", ".well-known.json")
	}
	if err := sm.exportKnowledge(outputPath); err != nil {
		logger.Errorf("Failed to export .well-known to file [%s]: %v", outputPath, err)
		return err
	}
	return nil
}

func (sm *ServiceManager) exportKnowledge(outputPath string) error {
	serviceKnowledge := []models.ServiceKnowledge{}
	serviceKnowledge = append(serviceKnowledge, sm.getServiceKnowledge(&sm.self))
	for _, svc := range sm.services {
		serviceKnowledge = append(serviceKnowledge, sm.getServiceKnowledge(svc))
	}
	logKnowledge := models.LogKnowledge{
		Dir:   filepath.Join(env.WorkshopDir, "logs"),
		Level: config.Config.Log.Level,
	}

	info := models.SystemKnowledge{
		Logs:     logKnowledge,
		Services: serviceKnowledge,
	}

	outputDir := filepath.Dir(outputPath)
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %v", err)
	}

	jsonData, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return fmt.Errorf("JSON encoding failed: %v", err)
	}
	if err := os.WriteFile(outputPath, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write file: %v", err)
	}
	return nil
}

func (sm *ServiceManager) export() error {
	outputFile := filepath.Join(env.WorkshopDir, "share", ".well-known.json")
	if err := sm.exportKnowledge(outputFile); err != nil {
		logger.Errorf("Failed to export .well-known to file [%s]: %v", outputFile, err)
		return err
	}
	return nil
}

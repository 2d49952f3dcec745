package services

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"workshop-host/internal/config"
	"workshop-host/internal/env"
	"workshop-host/internal/logger"
	"workshop-host/internal/models"
)

type Server struct {
	cfg       *config.AppConfig
	service   *ServiceManager
	layers    *LayerManager
	execCtx   *models.ExecutionContext
	startTime time.Time
}

/**
 * Create new server instance with all managers
 * @param {config.AppConfig} cfg - Application configuration
 * @returns {Server} Returns new server instance
 * @description
 * - Creates and initializes a new Server instance
 * - Initializes the service manager; the layer manager is built in Init
 *   once the spec file has been read
 * - Used as the main entry point for bootstrap and daemon operations
 */
func NewServer(cfg *config.AppConfig) *Server {
	return &Server{
		cfg:       cfg,
		service:   GetServiceManager(),
		startTime: time.Now(),
	}
}

func (s *Server) Services() *ServiceManager {
	return s.service
}

func (s *Server) Layers() *LayerManager {
	return s.layers
}

func (s *Server) ExecutionContext() *models.ExecutionContext {
	return s.execCtx
}

/**
 * Init loads the layer spec and builds the execution context
 * @returns {error} Spec parse error or env file error
 */
func (s *Server) Init() error {
	ec, err := NewExecutionContext(&s.cfg.Environment, "")
	if err != nil {
		return err
	}
	s.execCtx = ec

	spec, err := config.LoadLayerSpec(s.cfg.Environment.LayerFile, &s.cfg.Environment)
	if err != nil {
		return err
	}
	s.layers = NewLayerManager(spec, s.execCtx)

	return ensureResourceConfig()
}

/**
 * ensureResourceConfig seeds the local resource description file
 * @returns {error} Write error; an existing file is left untouched
 * @description The pilot runtime reads ~/.workshop/resource.json to size its
 * allocation. A file placed there by the operator wins; only when none
 * exists is a localhost default written before first use.
 */
func ensureResourceConfig() error {
	path := filepath.Join(env.WorkshopDir, "resource.json")
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	resource := models.ResourceConfig{
		Label:        "local.localhost",
		AccessSchema: "local",
		Cores:        runtime.NumCPU(),
		GPUs:         0,
	}
	jsonData, err := json.MarshalIndent(resource, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(env.WorkshopDir, 0755); err != nil {
		return err
	}
	if err := os.WriteFile(path, jsonData, 0644); err != nil {
		return err
	}
	logger.Infof("Seeded default resource description at %s", path)
	return nil
}

/**
 * Bootstrap prepares the whole environment in one pass
 * @param {context.Context} ctx - Cancels any in-flight step
 * @returns {error} The first failure; nothing later runs after it
 * @description
 * - Applies all install layers in declared order
 * - Starts the database service in the background
 * - Blocks until the database answers or the timeout expires
 */
func (s *Server) Bootstrap(ctx context.Context) error {
	if err := s.layers.Apply(ctx); err != nil {
		return err
	}

	dbName := s.cfg.Database.Name
	db := s.service.GetInstance(dbName)
	if db != nil && db.State == models.StateReady {
		logger.Infof("Service [%s] already ready, skipping start", dbName)
		return nil
	}
	if db == nil || db.State != models.StateStarting {
		if err := s.service.StartService(ctx, dbName); err != nil {
			return err
		}
	}
	return s.service.WaitReady(ctx, dbName, 0)
}

/**
 * Start monitoring of managed services
 * @description
 * - Creates ticker with configured monitoring interval
 * - Periodically verifies that ready services still answer
 * - Runs indefinitely until daemon shutdown
 * @example
 * go server.StartMonitoring()
 */
func (s *Server) StartMonitoring() {
	interval := time.Duration(s.cfg.Interval.Monitoring) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		if err := s.service.CheckServices(); err != nil {
			logger.Errorf("Service monitoring error: %v", err)
		}
	}
}

/**
 * StopAllService stops everything the daemon manages
 * @param {context.Context} ctx - Context for cancellation and timeout
 */
func (s *Server) StopAllService(ctx context.Context) {
	s.service.StopAll()
}

/**
 * Perform comprehensive system check
 * @returns {models.CheckResponse} Returns system check results
 * @description
 * - Collects the state of every managed service
 * - Collects every layer together with its receipt state
 * - Aggregates statistics for total, passed and failed checks
 * @example
 * checkResult := server.Check()
 * fmt.Printf("System status: %s, Passed: %d/%d\n",
 *     checkResult.OverallStatus, checkResult.PassedChecks, checkResult.TotalChecks)
 */
func (s *Server) Check() models.CheckResponse {
	response := models.CheckResponse{
		Timestamp: time.Now(),
	}

	var serviceResults []models.ServiceDetail
	for _, svc := range s.service.GetInstances() {
		serviceResults = append(serviceResults, s.service.GetServiceDetail(svc))
	}
	response.Services = serviceResults

	var layerResults []models.LayerDetail
	if s.layers != nil {
		layerResults = s.layers.GetDetails()
	}
	response.Layers = layerResults

	response.TotalChecks = 0
	response.PassedChecks = 0
	response.FailedChecks = 0

	for _, svc := range serviceResults {
		response.TotalChecks++
		if svc.Ready {
			response.PassedChecks++
		} else {
			response.FailedChecks++
		}
	}

	for _, layer := range layerResults {
		if layer.Action != models.LayerInstall {
			continue
		}
		response.TotalChecks++
		if layer.Installed {
			response.PassedChecks++
		} else {
			response.FailedChecks++
		}
	}

	if response.FailedChecks == 0 {
		response.OverallStatus = "healthy"
	} else if response.FailedChecks < response.TotalChecks/2 {
		response.OverallStatus = "warning"
	} else {
		response.OverallStatus = "error"
	}

	return response
}

func configToString(v interface{}) string {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return ""
	}
	return string(jsonData)
}

func (s *Server) GetState() models.ServerState {
	state := models.ServerState{
		StartTime: s.startTime,
	}

	state.Env.WorkshopDir = env.WorkshopDir
	state.Env.VenvDir = s.cfg.Environment.VenvDir
	state.Env.Daemon = env.Daemon
	state.Env.ListenPort = env.ListenPort
	state.Env.Version = env.Version

	state.Config = models.ServerConfig{
		Software: configToString(s.cfg),
	}
	if s.layers != nil {
		state.Config.Layers = configToString(s.layers.Spec())
	}
	return state
}

/**
 * Get health check response for the daemon
 * @returns {models.HealthResponse} Health response with status and metrics
 * @description
 * - Calculates uptime from start time
 * - Reports whether the database answers right now
 * - Counts installed layers from their receipts
 * @example
 * health := server.GetHealthz()
 * fmt.Printf("Server status: %s, Uptime: %s\n", health.Status, health.Uptime)
 */
func (s *Server) GetHealthz() models.HealthResponse {
	uptime := time.Since(s.startTime)

	layersInstalled := 0
	if s.layers != nil {
		for _, layer := range s.layers.GetDetails() {
			if layer.Installed {
				layersInstalled++
			}
		}
	}

	response := models.HealthResponse{
		Version:   env.Version,
		StartTime: s.startTime.Format(time.RFC3339),
		Status:    "UP",
		Uptime:    uptime.String(),
		Metrics: models.Metrics{
			TotalRequests:   GetTotalRequestCount(),
			ErrorRequests:   GetTotalErrorCount(),
			DatabaseReady:   s.service.IsServiceReady(s.cfg.Database.Name),
			LayersInstalled: layersInstalled,
			CommandsRun:     GetCommandsRunCount(),
		},
	}

	return response
}

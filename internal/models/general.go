package models

// RunStatus describes the observable state of a managed child process
type RunStatus string

const (
	StatusRunning RunStatus = "running"
	StatusExited  RunStatus = "exited"
	StatusStopped RunStatus = "stopped"
	StatusError   RunStatus = "error"
)

/**
 * ServiceState is the lifecycle state of the backing database service
 * @description
 * - stopped → starting on launch
 * - starting → ready once the endpoint accepts connections
 * - starting → failed on timeout or crash
 * - ready → stopped on external stop/kill (terminal, no automatic retry)
 */
type ServiceState string

const (
	StateStopped  ServiceState = "stopped"
	StateStarting ServiceState = "starting"
	StateReady    ServiceState = "ready"
	StateFailed   ServiceState = "failed"
)

type ErrorResponse struct {
	Code  string `json:"code,omitempty"`
	Error string `json:"error"`
}

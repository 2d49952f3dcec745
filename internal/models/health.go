package models

// HealthResponse is the readiness probe payload served at /healthz
type HealthResponse struct {
	Version   string  `json:"version" example:"1.0.0"`
	StartTime string  `json:"startTime" example:"2024-01-01T10:00:00Z"`
	Status    string  `json:"status" example:"UP"`
	Uptime    string  `json:"uptime" example:"1h30m45s"`
	Metrics   Metrics `json:"metrics"`
}

// Metrics carries the key indicators included in the health response
type Metrics struct {
	TotalRequests   int64 `json:"totalRequests" example:"1000"`
	ErrorRequests   int64 `json:"errorRequests" example:"5"`
	DatabaseReady   bool  `json:"databaseReady" example:"true"`
	LayersInstalled int   `json:"layersInstalled" example:"4"`
	CommandsRun     int64 `json:"commandsRun" example:"12"`
}

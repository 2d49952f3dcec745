package models

import (
	"time"
)

// CheckResponse aggregates the one-shot validation results
type CheckResponse struct {
	Timestamp     time.Time       `json:"timestamp" example:"2024-01-01T10:00:00Z"`
	Services      []ServiceDetail `json:"services"`
	Layers        []LayerDetail   `json:"layers"`
	OverallStatus string          `json:"overallStatus" example:"healthy"`
	TotalChecks   int             `json:"totalChecks" example:"10"`
	PassedChecks  int             `json:"passedChecks" example:"8"`
	FailedChecks  int             `json:"failedChecks" example:"2"`
}

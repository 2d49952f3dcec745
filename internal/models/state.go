package models

import (
	"time"
)

type EnvConfig struct {
	Daemon      bool   `json:"daemon"`
	ListenPort  int    `json:"listenPort"`
	Version     string `json:"version"`
	WorkshopDir string `json:"workshopDir"`
	VenvDir     string `json:"venvDir"`
}

type ServerConfig struct {
	Software string `json:"software"`
	Layers   string `json:"layers"`
}

type ServerState struct {
	StartTime time.Time    `json:"startTime"`
	Env       EnvConfig    `json:"env"`
	Config    ServerConfig `json:"config"`
}

// ResourceConfig describes the local compute resource the pilot runtime may
// claim. Seeded at ~/.workshop/resource.json before first use; an existing
// file is the operator's override and is never rewritten.
type ResourceConfig struct {
	Label        string `json:"label"`
	AccessSchema string `json:"access_schema"`
	Cores        int    `json:"cores"`
	GPUs         int    `json:"gpus"`
}

// LogKnowledge tells clients where the logs live
type LogKnowledge struct {
	Dir   string `json:"dir"`
	Level string `json:"level"`
}

// ServiceKnowledge is the per-service entry exported to .well-known.json so
// other processes can discover the daemon and the database endpoint
type ServiceKnowledge struct {
	Name  string       `json:"name"`
	State ServiceState `json:"state"`
	Port  int          `json:"port,omitempty"`
	Pid   int          `json:"pid,omitempty"`
}

type SystemKnowledge struct {
	Logs     LogKnowledge       `json:"logs"`
	Services []ServiceKnowledge `json:"services"`
}

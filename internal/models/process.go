package models

import "time"

type ProcessDetail struct {
	Title          string    `json:"title"`
	ProcessName    string    `json:"processName"`
	Command        string    `json:"command"`
	Args           []string  `json:"args,omitempty"`
	WorkDir        string    `json:"workDir,omitempty"`
	Status         RunStatus `json:"status"`
	Pid            int       `json:"pid"`
	StartTime      time.Time `json:"startTime"`
	LastExitTime   time.Time `json:"lastExitTime,omitempty"`
	LastExitReason string    `json:"lastExitReason,omitempty"`
}

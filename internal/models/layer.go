package models

import "time"

// LayerReceipt records a successfully applied install step. One receipt file
// per installed layer lives under the state directory.
type LayerReceipt struct {
	Name      string    `json:"name"`
	Source    string    `json:"source"`
	Version   string    `json:"version,omitempty"`
	Target    string    `json:"target,omitempty"`
	AppliedAt time.Time `json:"appliedAt"`
}

type LayerDetail struct {
	Name             string `json:"name"`
	Action           string `json:"action"`
	Source           string `json:"source,omitempty"`
	Version          string `json:"version,omitempty"`
	Installed        bool   `json:"installed"`
	InstalledVersion string `json:"installedVersion,omitempty"`
}

package models

type ServiceDetail struct {
	Name      string               `json:"name"`
	Pid       int                  `json:"pid"`
	Port      int                  `json:"port"`
	State     ServiceState         `json:"state"`
	StartTime string               `json:"startTime"`
	Ready     bool                 `json:"ready"`
	Spec      ServiceSpecification `json:"spec"`
	Process   ProcessDetail        `json:"process,omitempty"`
}

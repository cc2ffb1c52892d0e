package contract

import (
	statex "github.com/tanpawarit/travel-orchestrator/agent/state"
)

// ModelRole selects per-role model overrides.
type ModelRole string

const (
	ModelRolePreference ModelRole = "preference"
	ModelRoleSupervisor ModelRole = "supervisor"
	ModelRoleSearch     ModelRole = "search"
	ModelRoleWeather    ModelRole = "weather"
	ModelRoleCatalog    ModelRole = "catalog"
)

// ActionFinalize is the oracle's name for ending the gathering phase.
const ActionFinalize = "finalize"

type NextActionRequest struct {
	Query       string                    `json:"query"`
	Preferences statex.Preferences        `json:"preferences"`
	Counts      map[statex.WorkerKind]int `json:"result_counts"`
	Completed   []statex.WorkerKind       `json:"completed_workers"`
	Eligible    []statex.WorkerKind       `json:"available_workers"`
}

type NextActionResponse struct {
	NextAgent string `json:"next_agent"`
	Reasoning string `json:"reasoning"`
}

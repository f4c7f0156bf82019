package dto

import (
	"agentcloud.dev/console/internal/model"
	"agentcloud.dev/console/internal/permission"
	"agentcloud.dev/console/internal/state"
)

type OpenSessionRequest struct {
	// Account may be supplied when the client already holds server-rendered
	// account data; otherwise the first navigation triggers a fetch.
	Account *model.Account `json:"account,omitempty"`
	Props   map[string]any `json:"props,omitempty"`
}

type OpenSessionResponse struct {
	SessionID int64             `json:"session_id,string"`
	State     *SnapshotResponse `json:"state"`
}

type NavigateRequest struct {
	Path         string `json:"path" binding:"required,max=2048"`
	ResourceSlug string `json:"resourceSlug" binding:"omitempty,max=255"`
	MemberID     string `json:"memberId" binding:"omitempty,max=255"`
}

type SwitchingRequest struct {
	Switching *bool `json:"switching" binding:"required"`
}

type SnapshotResponse struct {
	Props        map[string]any `json:"props,omitempty"`
	Account      *model.Account `json:"account,omitempty"`
	OrgName      string         `json:"org_name"`
	TeamName     string         `json:"team_name"`
	Switching    bool           `json:"switching"`
	Capabilities []string       `json:"capabilities"`
}

func ToSnapshotResponse(snap state.SharedState) *SnapshotResponse {
	return &SnapshotResponse{
		Props:        snap.Props,
		Account:      snap.Account,
		OrgName:      snap.OrgName,
		TeamName:     snap.TeamName,
		Switching:    snap.Switching,
		Capabilities: capabilityNames(snap.Permissions),
	}
}

func capabilityNames(m permission.Model) []string {
	caps := m.Capabilities()
	names := make([]string, len(caps))
	for i, c := range caps {
		names[i] = c.String()
	}
	return names
}

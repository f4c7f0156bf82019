package state

import (
	"maps"

	"agentcloud.dev/console/internal/model"
	"agentcloud.dev/console/internal/permission"
)

// SharedState is one complete snapshot of the signed-in account view.
// Snapshots are replaced wholesale, never field-patched: OrgName, TeamName
// and Permissions are always derived from the Account in the same snapshot.
type SharedState struct {
	// Props carries the externally supplied initial properties plus any extra
	// top-level fields from the latest account fetch. Shape is opaque here.
	Props map[string]any

	// Account is nil until the first successful fetch.
	Account *model.Account

	// OrgName and TeamName are never empty; NamePlaceholder until resolved.
	OrgName  string
	TeamName string

	// Switching marks an in-flight tenant switch. Only SetSwitching raises it;
	// every other snapshot replacement resets it to false.
	Switching bool

	Permissions permission.Model
}

// clone copies the snapshot deeply enough that holders of the previous value
// never observe later mutations. Props values are treated as immutable.
func (s SharedState) clone() SharedState {
	out := s
	out.Props = maps.Clone(s.Props)
	if out.Props == nil {
		out.Props = map[string]any{}
	}
	return out
}

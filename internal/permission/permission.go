// Package permission decodes the account API's opaque permission blob into a
// queryable capability set. Construction is total: any input, including nil,
// yields a usable model (absence means "no capabilities", not an error).
package permission

import "encoding/base64"

// Capability is a bit position in the account's permission bit array.
// The vocabulary is owned by the platform backend; positions here must stay
// in sync with its permission table.
type Capability uint

const (
	CapRoot Capability = iota
	CapOrgOwner
	CapOrgAdmin
	CapEditOrg
	CapInviteOrgMember
	CapRemoveOrgMember
	CapTeamOwner
	CapTeamAdmin
	CapEditTeam
	CapAddTeamMember
	CapRemoveTeamMember
	CapCreateApp
	CapEditApp
	CapDeleteApp
	CapCreateModel
	CapEditModel
	CapDeleteModel
	CapCreateDatasource
	CapEditDatasource
	CapDeleteDatasource
	CapCreateCredential
	CapDeleteCredential

	capCount // keep last
)

var capabilityNames = map[Capability]string{
	CapRoot:             "root",
	CapOrgOwner:         "org_owner",
	CapOrgAdmin:         "org_admin",
	CapEditOrg:          "edit_org",
	CapInviteOrgMember:  "invite_org_member",
	CapRemoveOrgMember:  "remove_org_member",
	CapTeamOwner:        "team_owner",
	CapTeamAdmin:        "team_admin",
	CapEditTeam:         "edit_team",
	CapAddTeamMember:    "add_team_member",
	CapRemoveTeamMember: "remove_team_member",
	CapCreateApp:        "create_app",
	CapEditApp:          "edit_app",
	CapDeleteApp:        "delete_app",
	CapCreateModel:      "create_model",
	CapEditModel:        "edit_model",
	CapDeleteModel:      "delete_model",
	CapCreateDatasource: "create_datasource",
	CapEditDatasource:   "edit_datasource",
	CapDeleteDatasource: "delete_datasource",
	CapCreateCredential: "create_credential",
	CapDeleteCredential: "delete_credential",
}

func (c Capability) String() string {
	if name, ok := capabilityNames[c]; ok {
		return name
	}
	return "unknown"
}

// Model is an immutable capability set. The zero value grants nothing.
type Model struct {
	bits []byte
}

// New decodes the raw base64 bit array from the account payload.
// nil or undecodable input yields an empty model, never an error.
func New(raw *string) Model {
	if raw == nil || *raw == "" {
		return Model{}
	}
	bits, err := base64.StdEncoding.DecodeString(*raw)
	if err != nil {
		return Model{}
	}
	return Model{bits: bits}
}

// FromCapabilities builds a model granting exactly the given capabilities.
// Used by fixtures and by callers that mint permission blobs locally.
func FromCapabilities(caps ...Capability) Model {
	bits := make([]byte, (int(capCount)+7)/8)
	for _, c := range caps {
		if c >= capCount {
			continue
		}
		bits[c/8] |= 1 << (7 - c%8)
	}
	return Model{bits: bits}
}

// Can reports whether the capability bit is set. Bits are MSB-first within
// each byte, matching the backend's bit-buffer encoding.
func (m Model) Can(c Capability) bool {
	idx := int(c / 8)
	if idx >= len(m.bits) {
		return false
	}
	return m.bits[idx]&(1<<(7-c%8)) != 0
}

func (m Model) CanAll(caps ...Capability) bool {
	for _, c := range caps {
		if !m.Can(c) {
			return false
		}
	}
	return true
}

func (m Model) CanAny(caps ...Capability) bool {
	for _, c := range caps {
		if m.Can(c) {
			return true
		}
	}
	return false
}

// Capabilities lists every granted capability in bit order.
func (m Model) Capabilities() []Capability {
	var caps []Capability
	for c := Capability(0); c < capCount; c++ {
		if m.Can(c) {
			caps = append(caps, c)
		}
	}
	return caps
}

// Encode returns the base64 form of the set, the inverse of New.
func (m Model) Encode() string {
	return base64.StdEncoding.EncodeToString(m.bits)
}

package model

// Account is the signed-in account as returned by the platform account API.
// JSON tags follow the upstream wire format, not the gateway's own DTOs.
type Account struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Email       string  `json:"email"`
	CurrentOrg  string  `json:"currentOrg"`
	CurrentTeam string  `json:"currentTeam"`
	Orgs        []Org   `json:"orgs"`
	Permissions *string `json:"permissions,omitempty"` // opaque base64 bit array, decoded by internal/permission
}

type Org struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Teams []Team `json:"teams"`
}

type Team struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Route identifies where the browser currently is. ResourceSlug and MemberID
// are extracted from the path/query by the client and reported on navigation.
type Route struct {
	Path         string `json:"path"`
	ResourceSlug string `json:"resourceSlug"`
	MemberID     string `json:"memberId"`
}

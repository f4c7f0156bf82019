package state

import "agentcloud.dev/console/internal/model"

// NamePlaceholder is shown for the org/team name while the chain of data
// needed to resolve it is incomplete. That is an expected transient state
// before the first fetch lands, not a failure.
const NamePlaceholder = "Loading..."

// ResolveTenant derives the active org and team display names from the
// account. First id match wins; any missing link yields the placeholder for
// the corresponding name. Never errors.
func ResolveTenant(account *model.Account) (orgName, teamName string) {
	orgName, teamName = NamePlaceholder, NamePlaceholder
	if account == nil {
		return orgName, teamName
	}

	for _, org := range account.Orgs {
		if org.ID != account.CurrentOrg {
			continue
		}
		orgName = org.Name
		for _, team := range org.Teams {
			if team.ID == account.CurrentTeam {
				teamName = team.Name
				break
			}
		}
		break
	}
	return orgName, teamName
}

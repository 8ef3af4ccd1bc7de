// Package access implements location-scoped authorization.
package access

import "github.com/erazemk/assetdesk/internal/model"

// Decision is the outcome of an authorization check.
type Decision int

// Decisions.
const (
	Allow Decision = iota
	DenyAccountDisabled
	DenyLocationMismatch
)

// Rule decides whether a user may act on an entity recorded at a location.
type Rule struct {
	// AdminBypassesLocation lets admins act on entities of any location.
	AdminBypassesLocation bool
}

// Authorize checks the acting user against the target location.
// A disabled account is denied before the location is considered.
func (r Rule) Authorize(user *model.User, targetLocation string) Decision {
	if user.Disabled {
		return DenyAccountDisabled
	}
	if user.Location == targetLocation {
		return Allow
	}
	if r.AdminBypassesLocation && user.Role == model.RoleAdmin {
		return Allow
	}
	return DenyLocationMismatch
}

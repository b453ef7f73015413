// Package authz maps account roles to the capabilities they grant.  Callers
// ask for a capability, never for a role or a username.
package authz

import "github.com/iliyamo/carbon-tracker/internal/model"

// Capability names one protected action.
type Capability string

const (
	ViewOwnLedger    Capability = "view_own_ledger"
	ViewAdminReports Capability = "view_admin_reports"
	ClearEvents      Capability = "clear_events"
)

var grants = map[model.Role]map[Capability]bool{
	model.RoleUser: {
		ViewOwnLedger: true,
	},
	model.RoleAdmin: {
		ViewOwnLedger:    true,
		ViewAdminReports: true,
		ClearEvents:      true,
	},
}

// Can reports whether role holds capability.  Unknown roles hold nothing.
func Can(role model.Role, capability Capability) bool {
	return grants[role][capability]
}

// Capabilities lists what role may do, in a fixed order.
func Capabilities(role model.Role) []Capability {
	out := []Capability{}
	for _, c := range []Capability{ViewOwnLedger, ViewAdminReports, ClearEvents} {
		if Can(role, c) {
			out = append(out, c)
		}
	}
	return out
}

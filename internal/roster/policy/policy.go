// Package policy is the single decision table for what each role may see and
// do. The route guard, the services and the client affordance payload all
// read from here.
package policy

import (
	"strings"

	"roster/internal/roster/models"
	id "roster/pkg/domain"
)

// Action is something an actor may be allowed to do.
type Action string

const (
	ListSuperRole   Action = "list_super_role"
	ViewRoleColumns Action = "view_role_columns"
	CreateLeader    Action = "create_leader"
	EditLeader      Action = "edit_leader"
	DeleteLeader    Action = "delete_leader"
	DeleteAffiliate Action = "delete_affiliate"
	SaveAffiliate   Action = "save_affiliate"
	ViewStatistics  Action = "view_statistics"
	ManageConfig    Action = "manage_config"
)

// Actions lists every action in table order.
var Actions = []Action{
	ListSuperRole, ViewRoleColumns, CreateLeader, EditLeader, DeleteLeader,
	DeleteAffiliate, SaveAffiliate, ViewStatistics, ManageConfig,
}

var table = map[models.RoleCode]map[Action]bool{
	models.RoleSuper: {
		ListSuperRole: true, ViewRoleColumns: true, CreateLeader: true, EditLeader: true,
		DeleteLeader: true, DeleteAffiliate: true, SaveAffiliate: true, ViewStatistics: true,
		ManageConfig: true,
	},
	models.RoleAdministrator: {
		ViewRoleColumns: true, CreateLeader: true, EditLeader: true, DeleteLeader: true,
		DeleteAffiliate: true, SaveAffiliate: true, ViewStatistics: true,
	},
	models.RoleLeader: {
		SaveAffiliate: true, ViewStatistics: true,
	},
}

// Allows reports whether role may perform action. Unknown roles may do nothing.
func Allows(role models.RoleCode, action Action) bool {
	return table[role][action]
}

// Can reports whether actor may perform action.
func Can(actor models.Actor, action Action) bool {
	return Allows(actor.RoleCode, action)
}

// Permissions serializes the table row of actor for client affordance gating.
func Permissions(actor models.Actor) map[Action]bool {
	out := make(map[Action]bool, len(Actions))
	for _, a := range Actions {
		out[a] = Can(actor, a)
	}
	return out
}

// Columns says which optional listing columns actor sees.
type Columns struct {
	Role    bool `json:"role"`
	Actions bool `json:"actions"`
}

// ColumnsFor returns the listing columns visible to actor.
func ColumnsFor(actor models.Actor) Columns {
	return Columns{
		Role:    Can(actor, ViewRoleColumns),
		Actions: Can(actor, DeleteAffiliate) || Can(actor, EditLeader),
	}
}

// CanViewCell reports whether actor may open leaderID's cell. Leaders only
// see their own cell; administrators see every cell.
func CanViewCell(actor models.Actor, leaderID id.UserID) bool {
	switch actor.RoleCode {
	case models.RoleSuper, models.RoleAdministrator:
		return true
	case models.RoleLeader:
		return actor.UserID == leaderID
	}
	return false
}

// CanSeeAllCells reports whether actor sees every cell rather than their own.
func CanSeeAllCells(actor models.Actor) bool {
	return actor.Is(models.RoleSuper) || actor.Is(models.RoleAdministrator)
}

// CanAssignAffiliateTo reports whether actor may place an affiliate under
// leaderID (nil meaning unassigned). Leaders may only fill their own cell.
func CanAssignAffiliateTo(actor models.Actor, leaderID *id.UserID) bool {
	if !Can(actor, SaveAffiliate) {
		return false
	}
	if CanSeeAllCells(actor) {
		return true
	}
	return leaderID != nil && *leaderID == actor.UserID
}

// CanAssignRole reports whether actor may give someone the role code.
// Only SUPER may grant SUPER.
func CanAssignRole(actor models.Actor, code models.RoleCode) bool {
	if !code.IsValid() {
		return false
	}
	if code == models.RoleSuper {
		return Can(actor, ListSuperRole)
	}
	return Can(actor, CreateLeader) || Can(actor, EditLeader)
}

// AssignableRoles filters roles down to what actor may list in a role picker.
func AssignableRoles(actor models.Actor, roles []models.Role) []models.Role {
	out := make([]models.Role, 0, len(roles))
	for _, r := range roles {
		if r.Code == models.RoleSuper && !Can(actor, ListSuperRole) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Route paths the guard knows about.
const (
	PathHome         = "/"
	PathProtected    = "/protected"
	PathAdmin        = "/protected/admin"
	PathConfigs      = "/protected/admin/configs"
	PathUnauthorized = "/unauthorized"
)

// RouteDecision is the guard's verdict for one request.
type RouteDecision struct {
	Allow    bool
	Redirect string
}

// Route decides whether actor (nil when unauthenticated) may reach path.
func Route(path string, actor *models.Actor) RouteDecision {
	path = "/" + strings.Trim(path, "/")

	if path == PathHome {
		if actor != nil {
			return RouteDecision{Redirect: PathProtected}
		}
		return RouteDecision{Allow: true}
	}
	if !under(path, PathProtected) {
		return RouteDecision{Allow: true}
	}
	if actor == nil {
		return RouteDecision{Redirect: PathHome}
	}
	if !actor.RoleCode.IsValid() {
		return RouteDecision{Redirect: PathUnauthorized}
	}
	if under(path, PathConfigs) && !actor.Is(models.RoleSuper) {
		return RouteDecision{Redirect: PathUnauthorized}
	}
	if under(path, PathAdmin) && !CanSeeAllCells(*actor) {
		return RouteDecision{Redirect: PathUnauthorized}
	}
	return RouteDecision{Allow: true}
}

func under(path, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

package domain

// Permission represents granular permission (resource:action pattern) / Permission granulaire (pattern resource:action)
type Permission string

// Predefined permissions / Permissions prédéfinies
const (
	PermissionUsersManage      Permission = "users:manage"
	PermissionReferentielWrite Permission = "referentiel:write" // products, semaines, commentaires
	PermissionPlanningWrite    Permission = "planning:write"
	PermissionProductionDecl   Permission = "production:declare"
	PermissionNonConfWrite     Permission = "nonconf:write"
	PermissionOuvriersWrite    Permission = "ouvriers:write"
	PermissionStatutsWrite     Permission = "statuts:write"
	PermissionRapportsWrite    Permission = "rapports:write"
	PermissionStatsRead        Permission = "stats:read"
	PermissionActivityRead     Permission = "activity:read"
	PermissionSystemAdmin      Permission = "system:admin"
)

// AllPermissions returns all defined permissions / Retourne toutes les permissions définies
func AllPermissions() []Permission {
	return []Permission{
		PermissionUsersManage,
		PermissionReferentielWrite,
		PermissionPlanningWrite,
		PermissionProductionDecl,
		PermissionNonConfWrite,
		PermissionOuvriersWrite,
		PermissionStatutsWrite,
		PermissionRapportsWrite,
		PermissionStatsRead,
		PermissionActivityRead,
		PermissionSystemAdmin,
	}
}

// String returns permission as string / Retourne la permission en string
func (p Permission) String() string {
	return string(p)
}

// DefaultPermissionsForRole returns default permissions for role / Retourne les permissions par défaut du rôle
// Must stay in sync with the role_permissions seed migration.
func DefaultPermissionsForRole(role UserRole) []Permission {
	switch role {
	case RoleUser:
		return []Permission{
			PermissionProductionDecl,
			PermissionNonConfWrite,
			PermissionStatutsWrite,
			PermissionRapportsWrite,
			PermissionStatsRead,
		}
	case RoleAdmin:
		return AllPermissions()
	default:
		return []Permission{}
	}
}

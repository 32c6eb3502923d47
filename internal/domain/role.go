package domain

// Marketplace roles. Several are aliases kept for accounts created by older clients.
const (
	RoleCustomer  = "customer"
	RoleBuyer     = "buyer"
	RoleSeller    = "seller"
	RoleEmployee  = "employee"
	RoleJobSeeker = "job_seeker"
	RoleEmployer  = "employer"
	RoleRecruiter = "recruiter"
	RoleAdmin     = "admin"
)

var knownRoles = map[string]struct{}{
	RoleCustomer:  {},
	RoleBuyer:     {},
	RoleSeller:    {},
	RoleEmployee:  {},
	RoleJobSeeker: {},
	RoleEmployer:  {},
	RoleRecruiter: {},
	RoleAdmin:     {},
}

// IsKnownRole reports whether role is one of the marketplace roles.
func IsKnownRole(role string) bool {
	_, ok := knownRoles[role]
	return ok
}

// CanSelfRegister reports whether role may be chosen on public sign-up.
// Admin accounts are provisioned out of band.
func CanSelfRegister(role string) bool {
	return IsKnownRole(role) && role != RoleAdmin
}

package verification

import "github.com/go-otp-verify/internal/domain"

// Destinations used after a verification completes.
const (
	RouteProducts           = "/products"
	RouteSellerDashboard    = "/seller/dashboard"
	RouteJobSeekerDashboard = "/job-seeker/dashboard"
	RouteEmployerDashboard  = "/employer/dashboard"
	RouteAdminDashboard     = "/admin/dashboard"
	RouteDefault            = "/dashboard"
	RouteLogin              = "/login"
)

var roleRoutes = map[string]string{
	domain.RoleCustomer:  RouteProducts,
	domain.RoleBuyer:     RouteProducts,
	domain.RoleSeller:    RouteSellerDashboard,
	domain.RoleEmployee:  RouteJobSeekerDashboard,
	domain.RoleJobSeeker: RouteJobSeekerDashboard,
	domain.RoleEmployer:  RouteEmployerDashboard,
	domain.RoleRecruiter: RouteEmployerDashboard,
	domain.RoleAdmin:     RouteAdminDashboard,
}

// RouteForRole returns the landing route for role, RouteDefault for anything unmapped.
func RouteForRole(role string) string {
	if r, ok := roleRoutes[role]; ok {
		return r
	}
	return RouteDefault
}

// Navigator moves the user to route, optionally showing message there.
type Navigator interface {
	Navigate(route, message string)
}

package httpkit

import (
	"net/http"

	perrs "brandpulse/internal/platform/errors"
	pnet "brandpulse/internal/platform/net"
)

// Tenants returns the caller's authorized tenant ids from the request context
func Tenants(r *http.Request) []string {
	return pnet.Tenants(r.Context())
}

// SuperAdmin reports whether the caller holds the super admin capability
func SuperAdmin(r *http.Request) bool {
	return pnet.SuperAdmin(r.Context())
}

// RequireTenant fails with forbidden when the caller may not read the tenant.
// Modules call this per request even when routing already scoped the tenant.
func RequireTenant(r *http.Request, tenantID string) error {
	if pnet.CanAccessTenant(r.Context(), tenantID) {
		return nil
	}
	return perrs.Forbiddenf("access denied to this tenant")
}

// RequireSuperAdmin fails with forbidden for non super admin callers
func RequireSuperAdmin(r *http.Request) error {
	if pnet.SuperAdmin(r.Context()) {
		return nil
	}
	return perrs.Forbiddenf("super admin required")
}

package middleware

import (
	"net/http"

	pnet "brandpulse/internal/platform/net"
)

// Identity is the authenticated principal extracted from a request
type Identity struct {
	UserID      string
	TenantIDs   []string
	Permissions []string
	SuperAdmin  bool
}

// AuthPort is the seam the auth service implements
type AuthPort interface {
	// Parse returns the caller identity from the request or an error
	Parse(r *http.Request) (Identity, error)
}

// Auth places the parsed identity on the request context.
// A nil port leaves requests anonymous.
func Auth(p AuthPort, write func(w http.ResponseWriter, status int, body any)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if p == nil {
				next.ServeHTTP(w, r)
				return
			}
			id, err := p.Parse(r)
			if err != nil {
				status, body := pnet.Error(err, pnet.RequestID(r.Context()))
				write(w, status, body)
				return
			}
			ctx := pnet.WithUser(r.Context(), id.UserID)
			ctx = pnet.WithTenants(ctx, id.TenantIDs)
			ctx = pnet.WithPermissions(ctx, id.Permissions)
			ctx = pnet.WithSuperAdmin(ctx, id.SuperAdmin)
			if len(id.TenantIDs) == 1 {
				ctx = pnet.WithRequest(ctx, pnet.RequestID(ctx), id.TenantIDs[0])
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

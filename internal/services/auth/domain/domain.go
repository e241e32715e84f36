// Package domain defines the auth service types
package domain

// Principal is an authenticated portal user
type Principal struct {
	UserID      string   `json:"userId"`
	TenantIDs   []string `json:"tenantIds"`
	Permissions []string `json:"permissions,omitempty"`
	SuperAdmin  bool     `json:"superAdmin"`
}

// CanAccess reports whether the principal may read the given tenant
func (p Principal) CanAccess(tenantID string) bool {
	if p.SuperAdmin {
		return true
	}
	for _, id := range p.TenantIDs {
		if id == tenantID {
			return true
		}
	}
	return false
}

// TokenPort issues and parses portal access tokens
type TokenPort interface {
	Issue(p Principal) (string, error)
	Parse(raw string) (Principal, error)
}

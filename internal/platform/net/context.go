// Package net provides utilities for working with request contexts
package net

import (
	"context"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// ctxKey is an unexported key type for context values
type ctxKey string

const (
	keyTenantID    ctxKey = "tenant_id"
	keyUserID      ctxKey = "user_id"
	keyTenantIDs   ctxKey = "tenant_ids"
	keyPermissions ctxKey = "permissions"
	keySuperAdmin  ctxKey = "super_admin"
)

// WithRequest annotates context with common request scoped ids
func WithRequest(ctx context.Context, reqID, tenantID string) context.Context {
	if reqID != "" {
		// set chi RequestID so chimw.GetReqID can retrieve it
		ctx = context.WithValue(ctx, chimw.RequestIDKey, reqID)
	}
	if tenantID != "" {
		ctx = context.WithValue(ctx, keyTenantID, tenantID)
	}
	return ctx
}

// WithUser annotates context with the authenticated user id
func WithUser(ctx context.Context, userID string) context.Context {
	if userID != "" {
		ctx = context.WithValue(ctx, keyUserID, userID)
	}
	return ctx
}

// WithTenants annotates context with the caller's authorized tenant ids
func WithTenants(ctx context.Context, tenantIDs []string) context.Context {
	if len(tenantIDs) > 0 {
		ctx = context.WithValue(ctx, keyTenantIDs, tenantIDs)
	}
	return ctx
}

// WithPermissions annotates context with the caller's granted permissions
func WithPermissions(ctx context.Context, perms []string) context.Context {
	if len(perms) > 0 {
		ctx = context.WithValue(ctx, keyPermissions, perms)
	}
	return ctx
}

// WithSuperAdmin marks the context as carrying the super admin capability
func WithSuperAdmin(ctx context.Context, on bool) context.Context {
	if on {
		ctx = context.WithValue(ctx, keySuperAdmin, true)
	}
	return ctx
}

// RequestID returns the request id on the context if present
func RequestID(ctx context.Context) string {
	if v := chimw.GetReqID(ctx); v != "" {
		return v
	}
	return ""
}

// TenantID returns the tenant id on the context if present
func TenantID(ctx context.Context) string {
	if v, ok := ctx.Value(keyTenantID).(string); ok {
		return v
	}
	return ""
}

// UserID returns the user id on the context if present
func UserID(ctx context.Context) string {
	if v, ok := ctx.Value(keyUserID).(string); ok {
		return v
	}
	return ""
}

// Tenants returns the authorized tenant ids on the context if present
func Tenants(ctx context.Context) []string {
	if v, ok := ctx.Value(keyTenantIDs).([]string); ok {
		return v
	}
	return nil
}

// Permissions returns the granted permissions on the context if present
func Permissions(ctx context.Context) []string {
	if v, ok := ctx.Value(keyPermissions).([]string); ok {
		return v
	}
	return nil
}

// HasPermission reports whether the caller holds the named permission.
// Super admins hold every permission.
func HasPermission(ctx context.Context, perm string) bool {
	if SuperAdmin(ctx) {
		return true
	}
	for _, p := range Permissions(ctx) {
		if p == perm {
			return true
		}
	}
	return false
}

// SuperAdmin reports whether the context carries the super admin capability
func SuperAdmin(ctx context.Context) bool {
	v, ok := ctx.Value(keySuperAdmin).(bool)
	return ok && v
}

// CanAccessTenant reports whether the caller may read the given tenant.
// Super admins may read every tenant.
func CanAccessTenant(ctx context.Context, tenantID string) bool {
	if SuperAdmin(ctx) {
		return true
	}
	for _, id := range Tenants(ctx) {
		if id == tenantID {
			return true
		}
	}
	return false
}

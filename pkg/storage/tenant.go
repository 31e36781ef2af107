package storage

import "context"

// tenantKey is a private type for the tenant context key.
type tenantKey struct{}

// SetTenant injects a tenant identifier into the context. For partner-key
// and JWT callers the tenant is the partner ID.
func SetTenant(ctx context.Context, tenantID string) context.Context {
	return context.WithValue(ctx, tenantKey{}, tenantID)
}

// GetTenant extracts the tenant identifier from the context.
// Returns an empty string if no tenant is set (operator access).
func GetTenant(ctx context.Context) string {
	if v, ok := ctx.Value(tenantKey{}).(string); ok {
		return v
	}
	return ""
}

// TenantAllows reports whether the tenant in ctx may access partnerID.
// A context without a tenant may access every partner.
func TenantAllows(ctx context.Context, partnerID string) bool {
	t := GetTenant(ctx)
	return t == "" || t == partnerID
}

package orgcontext

import "context"

type contextKey struct{}

// WithOrgID attaches the authenticated organization ID to the context.
func WithOrgID(ctx context.Context, orgID int64) context.Context {
	return context.WithValue(ctx, contextKey{}, orgID)
}

// OrgID returns the organization ID from the context, if any.
func OrgID(ctx context.Context) (int64, bool) {
	value, ok := ctx.Value(contextKey{}).(int64)
	if !ok || value == 0 {
		return 0, false
	}
	return value, true
}

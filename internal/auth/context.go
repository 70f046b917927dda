package auth

import "context"

type contextKey struct{}

// AuthContext identifies the member behind a request. FamilyCode is
// empty until the member creates or joins a family.
type AuthContext struct {
	UserUID    string
	Name       string
	FamilyCode string
	SessionID  int64
}

func WithAuth(ctx context.Context, ac AuthContext) context.Context {
	return context.WithValue(ctx, contextKey{}, ac)
}

func FromContext(ctx context.Context) (AuthContext, bool) {
	ac, ok := ctx.Value(contextKey{}).(AuthContext)
	return ac, ok
}

func UserUID(ctx context.Context) string {
	ac, ok := FromContext(ctx)
	if !ok {
		return ""
	}
	return ac.UserUID
}

func FamilyCode(ctx context.Context) string {
	ac, ok := FromContext(ctx)
	if !ok {
		return ""
	}
	return ac.FamilyCode
}

package identity

import "context"

// User is the authenticated caller as seen by the mind map service.
type User struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
}

// Provider resolves the current user for a request.
type Provider interface {
	CurrentUser(ctx context.Context) (User, bool)
}

type ctxKey struct{}

// WithUser returns a context carrying u.
func WithUser(ctx context.Context, u User) context.Context {
	return context.WithValue(ctx, ctxKey{}, u)
}

// FromContext returns the user placed by WithUser. Users without an ID do not count.
func FromContext(ctx context.Context) (User, bool) {
	u, ok := ctx.Value(ctxKey{}).(User)
	if !ok || u.ID == "" {
		return User{}, false
	}
	return u, true
}

// ContextProvider reads the user the auth middleware stored on the request context.
type ContextProvider struct{}

func (ContextProvider) CurrentUser(ctx context.Context) (User, bool) { return FromContext(ctx) }

// FromClaims maps verified token claims to a User: sub is the id; the
// display name is the first non-empty of name, preferred_username, email, sub.
func FromClaims(claims map[string]interface{}) (User, bool) {
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return User{}, false
	}
	u := User{ID: sub, DisplayName: sub}
	for _, k := range []string{"name", "preferred_username", "email"} {
		if v, _ := claims[k].(string); v != "" {
			u.DisplayName = v
			break
		}
	}
	return u, true
}

package identity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestContextRoundTrip(t *testing.T) {
	_, ok := ContextProvider{}.CurrentUser(context.Background())
	require.False(t, ok)

	ctx := WithUser(context.Background(), User{ID: "alice", DisplayName: "Alice"})
	u, ok := ContextProvider{}.CurrentUser(ctx)
	require.True(t, ok)
	require.Equal(t, "Alice", u.DisplayName)

	_, ok = FromContext(WithUser(context.Background(), User{DisplayName: "nobody"}))
	require.False(t, ok, "a user without id is anonymous")
}

func TestFromClaims(t *testing.T) {
	cases := []struct {
		name   string
		claims map[string]interface{}
		want   User
		ok     bool
	}{
		{"no sub", map[string]interface{}{"name": "X"}, User{}, false},
		{"name wins", map[string]interface{}{"sub": "s1", "name": "Alice", "email": "a@x"}, User{ID: "s1", DisplayName: "Alice"}, true},
		{"preferred username", map[string]interface{}{"sub": "s2", "preferred_username": "bob"}, User{ID: "s2", DisplayName: "bob"}, true},
		{"email", map[string]interface{}{"sub": "s3", "email": "c@x"}, User{ID: "s3", DisplayName: "c@x"}, true},
		{"sub only", map[string]interface{}{"sub": "s4"}, User{ID: "s4", DisplayName: "s4"}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			u, ok := FromClaims(tc.claims)
			require.Equal(t, tc.ok, ok)
			require.Equal(t, tc.want, u)
		})
	}
}

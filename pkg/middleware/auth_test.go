package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mindmap/mindmap-server/internal/identity"
	"github.com/stretchr/testify/require"
)

// fakeToken implements Token
type fakeToken struct {
	data map[string]interface{}
}

func (t *fakeToken) Claims(v interface{}) error {
	if mm, ok := v.(*map[string]interface{}); ok {
		*mm = t.data
		return nil
	}
	return fmt.Errorf("unsupported claims type")
}

// fakeVerifier implements Verifier
type fakeVerifier struct{}

func (f *fakeVerifier) Verify(ctx context.Context, raw string) (Token, error) {
	switch raw {
	case "goodtoken":
		return &fakeToken{data: map[string]interface{}{"sub": "user1", "preferred_username": "ada", "email": "test@example.com"}}, nil
	case "nosub":
		return &fakeToken{data: map[string]interface{}{"email": "test@example.com"}}, nil
	}
	return nil, fmt.Errorf("invalid token")
}

func serveAuth(t *testing.T, header string, h gin.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	g := gin.New()
	g.GET("/", AuthMiddleware(&fakeVerifier{}), h)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rw := httptest.NewRecorder()
	g.ServeHTTP(rw, req)
	return rw
}

func ok(c *gin.Context) { c.Status(http.StatusOK) }

func TestAuthMiddleware_Rejections(t *testing.T) {
	for name, header := range map[string]string{
		"no header":      "",
		"invalid header": "BadHeader",
		"wrong scheme":   "Basic goodtoken",
		"empty token":    "Bearer ",
		"bad token":      "Bearer nope",
		"no subject":     "Bearer nosub",
	} {
		t.Run(name, func(t *testing.T) {
			require.Equal(t, http.StatusUnauthorized, serveAuth(t, header, ok).Code)
		})
	}
}

func TestAuthMiddleware_ValidTokenSetsUser(t *testing.T) {
	var got identity.User
	rw := serveAuth(t, "Bearer goodtoken", func(c *gin.Context) {
		claims, ok := c.Get("claims")
		require.True(t, ok)
		require.Contains(t, claims, "email")
		got, _ = identity.FromContext(c.Request.Context())
		c.Status(http.StatusOK)
	})
	require.Equal(t, http.StatusOK, rw.Code)
	require.Equal(t, identity.User{ID: "user1", DisplayName: "ada"}, got)
}

package oidc

import (
	"context"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKeycloakIssuer(t *testing.T) {
	require.Equal(t, "https://kc.local/realms/maps", KeycloakIssuer("https://kc.local/", "maps"))
	require.Equal(t, "https://kc.local/realms/maps", KeycloakIssuer("https://kc.local/realms/maps", ""))
}

func TestInsecureVerifier(t *testing.T) {
	enc := base64.RawURLEncoding.EncodeToString
	raw := enc([]byte(`{"alg":"RS256"}`)) + "." + enc([]byte(`{"sub":"u1","name":"Ada"}`)) + ".sig"

	tok, err := NewInsecureVerifier().Verify(context.Background(), raw)
	require.NoError(t, err)
	var claims map[string]interface{}
	require.NoError(t, tok.Claims(&claims))
	require.Equal(t, "u1", claims["sub"])
	require.Equal(t, "Ada", claims["name"])

	_, err = NewInsecureVerifier().Verify(context.Background(), "garbage")
	require.Error(t, err)
}

func TestNewVerifier_DiscoveryFailure(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewVerifier(ctx, "http://127.0.0.1:1/realms/none", "client")
	require.Error(t, err)
}

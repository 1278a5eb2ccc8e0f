package tokens

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mindmap/mindmap-server/internal/identity"
	"github.com/mindmap/mindmap-server/pkg/middleware"
)

var ErrNoSecret = errors.New("jwt secret is empty")

// GenerateAccessToken signs an HS256 access token for u.
func GenerateAccessToken(secret string, u identity.User, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", ErrNoSecret
	}
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  u.ID,
		"name": u.DisplayName,
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
	}
	jt := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return jt.SignedString([]byte(secret))
}

type claimsToken struct {
	claims jwt.MapClaims
}

func (t *claimsToken) Claims(v interface{}) error {
	b, err := json.Marshal(t.claims)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

// HS256Verifier checks bearer tokens signed with a shared secret. Only HS256
// is accepted and exp is required.
type HS256Verifier struct {
	secret []byte
	parser *jwt.Parser
}

func NewHS256Verifier(secret string) (*HS256Verifier, error) {
	if secret == "" {
		return nil, ErrNoSecret
	}
	return &HS256Verifier{
		secret: []byte(secret),
		parser: jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired()),
	}, nil
}

func (v *HS256Verifier) Verify(_ context.Context, raw string) (middleware.Token, error) {
	claims := jwt.MapClaims{}
	tok, err := v.parser.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return v.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !tok.Valid {
		return nil, errors.New("token invalid")
	}
	return &claimsToken{claims: claims}, nil
}

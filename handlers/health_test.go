package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func get(g *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	g.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestHealth(t *testing.T) {
	g := gin.New()
	RegisterHealth(g, time.Now(), nil)
	w := get(g, "/health")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "healthy", w.Body.String())
}

func TestReady_RedisCheck(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: m.Addr(), MaxRetries: -1})

	g := gin.New()
	RegisterHealth(g, time.Now(), map[string]Check{
		"storage": func(context.Context) error { return nil },
		"redis":   func(ctx context.Context) error { return client.Ping(ctx).Err() },
	})

	w := get(g, "/ready")
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Status string          `json:"status"`
		Deps   map[string]bool `json:"deps"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, "ready", body.Status)
	require.Equal(t, map[string]bool{"storage": true, "redis": true}, body.Deps)

	m.Close()
	w = get(g, "/ready")
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, "not_ready", body.Status)
	require.False(t, body.Deps["redis"])
	require.True(t, body.Deps["storage"])
}

func TestReady_FailingCheck(t *testing.T) {
	g := gin.New()
	RegisterHealth(g, time.Now(), map[string]Check{"oidc": func(context.Context) error { return errors.New("no verifier") }})
	require.Equal(t, http.StatusServiceUnavailable, get(g, "/ready").Code)
}

package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mindmap/mindmap-server/pkg/logger"
	"github.com/stretchr/testify/require"
)

func TestRequestLogger_LevelsByStatus(t *testing.T) {
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	defer logger.SetOutput(os.Stdout)

	r := gin.New()
	r.Use(RequestLogger())
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	hit(r, "/ok")
	hit(r, "/missing")
	hit(r, "/boom")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	want := []struct {
		level  string
		status float64
	}{{"info", 200}, {"warn", 404}, {"error", 500}}
	for i, line := range lines {
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		require.Equal(t, want[i].level, entry["level"])
		require.Equal(t, want[i].status, entry["status"])
		require.Equal(t, "GET", entry["method"])
	}
}

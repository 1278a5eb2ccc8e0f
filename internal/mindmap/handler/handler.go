package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mindmap/mindmap-server/internal/mindmap"
	"github.com/mindmap/mindmap-server/internal/mindmap/service"
	"github.com/mindmap/mindmap-server/internal/socket"
	"github.com/mindmap/mindmap-server/pkg/logger"
	"go.uber.org/zap"
)

type saveRequest struct {
	Content *string `json:"content" binding:"required"`
}

// RegisterMindMapRoutes mounts the mind map API on r. Authentication is
// expected to run before these handlers.
func RegisterMindMapRoutes(r gin.IRouter, svc service.Service) {
	r.GET("/api/mindmaps", func(c *gin.Context) {
		list, err := svc.List(c.Request.Context())
		if err != nil {
			fail(c, "list", err)
			return
		}
		c.JSON(http.StatusOK, list)
	})

	r.GET("/api/mindmaps/:name", func(c *gin.Context) {
		m, err := svc.Get(c.Request.Context(), c.Param("name"))
		if err != nil {
			fail(c, "get", err)
			return
		}
		c.JSON(http.StatusOK, m)
	})

	r.POST("/api/mindmaps/:name", func(c *gin.Context) {
		var req saveRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		m, err := svc.Save(c.Request.Context(), c.Param("name"), *req.Content)
		if err != nil {
			fail(c, "save", err)
			return
		}
		c.JSON(http.StatusOK, m)
	})

	r.DELETE("/api/mindmaps/:name", func(c *gin.Context) {
		ok, err := svc.Delete(c.Request.Context(), c.Param("name"))
		if err != nil {
			fail(c, "delete", err)
			return
		}
		if !ok {
			fail(c, "delete", mindmap.ErrNotFound)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	})

	r.GET("/api/mindmaps/:name/socket", func(c *gin.Context) {
		info, err := svc.SocketInfo(c.Request.Context(), c.Param("name"), c.Request.Host)
		if err != nil {
			fail(c, "socket", err)
			return
		}
		c.JSON(http.StatusOK, info)
	})
}

// fail writes the error response for err. Only unexpected errors are logged.
func fail(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, mindmap.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Mind map not found"})
	case errors.Is(err, mindmap.ErrInvalidName):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, mindmap.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, socket.ErrMissingSecret):
		logger.L().Error("socket token requested without a configured secret", zap.String("op", op))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		logger.L().Error("mind map request failed", zap.String("op", op), zap.String("path", c.Request.URL.Path), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints for the mind map API.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg gin.IRouter) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(swaggerJSON))
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>mindmap-server - Swagger</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/swagger/doc.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`

const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "mindmap-server", "version": "v1.0.0" },
  "components": {
    "securitySchemes": { "bearer": { "type": "http", "scheme": "bearer", "bearerFormat": "JWT" } },
    "schemas": {
      "MindMap": { "type": "object", "properties": {
        "id": {"type":"integer"}, "name": {"type":"string"}, "content": {"type":"string"},
        "ownerId": {"type":"string"}, "storagePath": {"type":"string"},
        "createdAt": {"type":"string","format":"date-time"}, "updatedAt": {"type":"string","format":"date-time"} } },
      "SocketInfo": { "type": "object", "properties": {
        "token": {"type":"string"}, "userId": {"type":"string"}, "displayName": {"type":"string"},
        "mindMapName": {"type":"string"}, "timestamp": {"type":"integer"}, "wsUrl": {"type":"string"} } },
      "Error": { "type": "object", "properties": { "error": {"type":"string"} } }
    }
  },
  "security": [ { "bearer": [] } ],
  "paths": {
    "/api/mindmaps": {
      "get": { "summary": "List the caller's mind maps",
        "responses": { "200": { "description": "mind maps", "content": { "application/json": { "schema": { "type": "array", "items": { "$ref": "#/components/schemas/MindMap" } } } } },
          "401": { "description": "not logged in" } } }
    },
    "/api/mindmaps/{name}": {
      "parameters": [ { "name": "name", "in": "path", "required": true, "schema": { "type": "string" } } ],
      "get": { "summary": "Get a mind map",
        "responses": { "200": { "description": "mind map", "content": { "application/json": { "schema": { "$ref": "#/components/schemas/MindMap" } } } },
          "400": { "description": "invalid name" }, "401": { "description": "not logged in" }, "404": { "description": "Mind map not found" } } },
      "post": { "summary": "Create or replace a mind map",
        "requestBody": { "required": true, "content": { "application/json": { "schema": { "type": "object", "required": ["content"], "properties": { "content": { "type": "string" } } } } } },
        "responses": { "200": { "description": "saved mind map", "content": { "application/json": { "schema": { "$ref": "#/components/schemas/MindMap" } } } },
          "400": { "description": "invalid body or name" }, "401": { "description": "not logged in" }, "500": { "description": "storage failure" } } },
      "delete": { "summary": "Delete a mind map",
        "responses": { "200": { "description": "deleted" }, "401": { "description": "not logged in" }, "404": { "description": "Mind map not found" } } }
    },
    "/api/mindmaps/{name}/socket": {
      "parameters": [ { "name": "name", "in": "path", "required": true, "schema": { "type": "string" } } ],
      "get": { "summary": "Issue realtime collaboration connection info",
        "responses": { "200": { "description": "socket info", "content": { "application/json": { "schema": { "$ref": "#/components/schemas/SocketInfo" } } } },
          "401": { "description": "not logged in" }, "500": { "description": "secret not configured" } } }
    },
    "/health": { "get": { "summary": "Liveness check", "security": [], "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "security": [], "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } },
    "/metrics": { "get": { "summary": "Prometheus metrics", "security": [], "responses": { "200": { "description": "metrics" } } } }
  }
}`

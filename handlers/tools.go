package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/muraqib/backend/tools"
)

var toolRegistry *tools.Registry

// SetToolRegistry injects the tool registry
func SetToolRegistry(r *tools.Registry) {
	toolRegistry = r
}

// ListTools handles GET /api/tools - Tool definitions for an external chat
// orchestrator: name, description and JSON-schema parameters per tool.
func ListTools(c *gin.Context) {
	type def struct {
		Name        string       `json:"name"`
		Description string       `json:"description"`
		Parameters  tools.Schema `json:"parameters"`
	}

	defs := make([]def, 0, len(toolRegistry.Tools()))
	for _, t := range toolRegistry.Tools() {
		defs = append(defs, def{Name: t.Name, Description: t.Description, Parameters: t.Parameters})
	}
	c.JSON(http.StatusOK, gin.H{"tools": defs})
}

// InvokeTool handles POST /api/tools/:name - Run one tool with the request
// body as its JSON arguments and return the raw result.
func InvokeTool(c *gin.Context) {
	name := c.Param("name")
	if _, ok := toolRegistry.Get(name); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown tool: " + name})
		return
	}

	args, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}

	result, err := toolRegistry.Invoke(c.Request.Context(), name, json.RawMessage(args))
	if err != nil {
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "malformed tool arguments"})
			return
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"result": result})
}

package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response bodies follow the DRF conventions the client parses:
// {"error": "..."} for a single message and {"field": ["..."]} for validation.
const (
	msgBlank       = "This field may not be blank."
	msgRequired    = "This field is required."
	msgTooLong     = "Ensure this field has no more than 500 characters."
	msgUnknownUser = "User not found"
	msgItemMissing = "Checklist item not found"
	msgBadJSON     = "JSON parse error"
)

func abortError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

func abortField(c *gin.Context, field, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{field: []string{message}})
}

func (s *Server) internalError(c *gin.Context, what string, err error) {
	s.logger.Error(what, "path", c.Request.URL.Path, "error", err)
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
}

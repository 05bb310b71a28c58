package server

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/thenoetrevino/ticks/internal/database"
	"github.com/thenoetrevino/ticks/internal/models"
)

const ctxIssue = "ticks.issue"

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("api request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}

func (s *Server) authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.apiKey == "" {
			c.Next()
			return
		}
		given := c.GetHeader(headerAPIKey)
		if subtle.ConstantTimeCompare([]byte(given), []byte(s.apiKey)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"detail": "Authentication credentials were not provided.",
			})
			return
		}
		c.Next()
	}
}

// requireIssue loads the work item addressed by the path or answers 404
func (s *Server) requireIssue() gin.HandlerFunc {
	return func(c *gin.Context) {
		issue, err := s.store.GetIssue(c.Request.Context(), c.Param("slug"), c.Param("project"), c.Param("issue"))
		if err != nil {
			if errors.Is(err, database.ErrNotFound) {
				abortError(c, http.StatusNotFound, "Issue not found")
				return
			}
			s.internalError(c, "failed to load issue", err)
			return
		}
		c.Set(ctxIssue, issue)
		c.Next()
	}
}

func issueFrom(c *gin.Context) *models.Issue {
	return c.MustGet(ctxIssue).(*models.Issue)
}

// actor returns the acting user id, "" when the request is anonymous
func actor(c *gin.Context) string {
	return c.GetHeader(headerActor)
}

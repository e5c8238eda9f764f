// Package handlers implements the admin HTTP endpoints: the health probe and
// the administrative session-invalidation operation.
//
// The bot itself never deletes its stored session; forcing a fresh password
// login (for example after a token leak) is an operator decision, so it
// lives here rather than in the dispatcher.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yukibtc/braiinspool-matrix-bot/internal/repo"
)

// Healthz returns a handler reporting store liveness plus record counts.
func Healthz(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessions, subscriptions, err := repo.StoreStats(c.Request.Context(), db)
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":        "ok",
			"sessions":      sessions,
			"subscriptions": subscriptions,
		})
	}
}

// DeleteSession returns a handler that invalidates the stored session for
// the user ID path parameter. The next bot start will perform a fresh
// password login.
func DeleteSession(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.Param("user_id")
		if err := repo.DeleteSession(c.Request.Context(), db, userID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "no session for this user"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Status(http.StatusNoContent)
	}
}

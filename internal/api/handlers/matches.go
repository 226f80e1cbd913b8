package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/breakshot/backend/internal/archive"
)

// RecentMatches returns the latest archived matches, newest first. Serves an
// empty list when the server runs without a database.
func RecentMatches(rec *archive.Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
		matches, err := rec.RecentMatches(c.Request.Context(), limit)
		if err != nil {
			respondError(c, err)
			return
		}
		if matches == nil {
			matches = []archive.Match{}
		}
		c.JSON(http.StatusOK, matches)
	}
}

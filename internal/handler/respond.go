package handler

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/salahe03/residex/internal/apperr"
	"github.com/salahe03/residex/internal/middleware"
)

// respondError maps a domain error to its HTTP status and writes the
// failure envelope. Unexpected errors are logged and masked as 500s.
func respondError(c *gin.Context, err error) {
	switch apperr.KindOf(err) {
	case apperr.KindValidation, apperr.KindConflict, apperr.KindInvalidState, apperr.KindInsufficientFunds:
		middleware.RespondWithError(c, http.StatusBadRequest, err.Error())
	case apperr.KindForbidden:
		middleware.RespondWithError(c, http.StatusForbidden, err.Error())
	case apperr.KindNotFound:
		middleware.RespondWithError(c, http.StatusNotFound, err.Error())
	case apperr.KindAuth:
		middleware.RespondWithError(c, http.StatusUnauthorized, err.Error())
	case apperr.KindPendingApproval:
		// distinguishable from bad credentials: the client shows a
		// waiting-for-approval message instead of a login failure
		c.JSON(http.StatusForbidden, gin.H{
			"success":          false,
			"error":            err.Error(),
			"requiresApproval": true,
		})
	default:
		log.Printf("internal error: %v", err)
		middleware.RespondWithError(c, http.StatusInternalServerError, "Internal server error")
	}
}

// parseDate accepts a bare date or a full RFC 3339 timestamp.
func parseDate(value string) (time.Time, bool) {
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

package helpers

import (
	"github.com/gin-gonic/gin"
	"github.com/ticketxpress/ticketxpress/internal/models"
)

func RespondWithError(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error":   message,
	})
}

// RespondWithTicketError attaches the existing ticket so the station can
// show when the first validation happened.
func RespondWithTicketError(c *gin.Context, statusCode int, message string, ticket *models.Ticket) {
	if ticket == nil {
		RespondWithError(c, statusCode, message)
		return
	}
	c.JSON(statusCode, gin.H{
		"success": false,
		"error":   message,
		"ticket":  ticket,
	})
}

func OfflineSuffix(message string, offline bool) string {
	if offline {
		return message + " (offline mode)"
	}
	return message
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ticketxpress/ticketxpress/internal/helpers"
	"github.com/ticketxpress/ticketxpress/internal/middleware"
)

func GetDashboard(c *gin.Context) {
	service := middleware.GetTicketingService(c)
	if service == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Ticketing service not found.")
		return
	}

	report, _, err := service.Dashboard(c.Request.Context())
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to load dashboard statistics.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":          true,
		"stats":            report.Stats,
		"validatedTickets": report.ValidatedTickets,
	})
}

package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ticketxpress/ticketxpress/internal/helpers"
	"github.com/ticketxpress/ticketxpress/internal/middleware"
	"github.com/ticketxpress/ticketxpress/internal/models"
	"github.com/ticketxpress/ticketxpress/internal/ticketing"
)

const DefaultScanLocation = "Mobile App"

type NextTicketNumberRequest struct {
	Type string `json:"type" binding:"required"`
}

func NextTicketNumber(c *gin.Context) {
	var req NextTicketNumberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}

	service := middleware.GetTicketingService(c)
	if service == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Ticketing service not found.")
		return
	}

	number, _, err := service.NextTicketNumber(c.Request.Context(), req.Type, time.Now().Year())
	if err != nil {
		if errors.Is(err, ticketing.ErrInvalidTicketType) {
			helpers.RespondWithError(c, http.StatusBadRequest, "Unknown ticket type.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to allocate a ticket number.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"ticketNumber": number,
	})
}

type GenerateTicketRequest struct {
	TicketNumber string `json:"ticketNumber" binding:"required"`
	Type         string `json:"type" binding:"required"`
}

func GenerateTicket(c *gin.Context) {
	var req GenerateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}

	service := middleware.GetTicketingService(c)
	if service == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Ticketing service not found.")
		return
	}

	ticket, offline, err := service.Generate(c.Request.Context(), req.TicketNumber, req.Type)
	if err != nil {
		switch {
		case errors.Is(err, ticketing.ErrDuplicateTicketNumber):
			helpers.RespondWithError(c, http.StatusConflict, "This ticket number has already been issued.")
		case errors.Is(err, ticketing.ErrInvalidTicketType):
			helpers.RespondWithError(c, http.StatusBadRequest, "Unknown ticket type.")
		case errors.Is(err, ticketing.ErrInvalidTicketNumber):
			helpers.RespondWithError(c, http.StatusBadRequest, "Malformed ticket number.")
		default:
			helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to generate ticket.")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"ticket":  ticket,
		"message": helpers.OfflineSuffix("Ticket generated successfully", offline),
	})
}

type ScanTicketRequest struct {
	TicketNumber string `json:"ticketNumber" binding:"required"`
	Location     string `json:"location"`
}

func ScanTicket(c *gin.Context) {
	var req ScanTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}

	service := middleware.GetTicketingService(c)
	if service == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Ticketing service not found.")
		return
	}

	ticket, offline, err := service.Scan(c.Request.Context(), ticketing.ScanRequest{
		TicketNumber: req.TicketNumber,
		Location:     scanLocation(req.Location),
	})
	if err != nil {
		respondScanError(c, err, ticket)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"ticket":  ticket,
		"message": helpers.OfflineSuffix("Ticket validated successfully", offline),
	})
}

type ScanPayloadRequest struct {
	Content  string `json:"content" binding:"required"`
	Location string `json:"location"`
}

// ScanPayload takes the raw text decoded from a QR image. Foreign codes are
// not an error, the station shows their content as plain text.
func ScanPayload(c *gin.Context) {
	var req ScanPayloadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}

	service := middleware.GetTicketingService(c)
	if service == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Ticketing service not found.")
		return
	}

	decoded := ticketing.DecodePayload(req.Content)
	if !decoded.Recognized() {
		c.JSON(http.StatusOK, gin.H{
			"success":    true,
			"recognized": false,
			"content":    decoded.Raw,
		})
		return
	}

	ticket, offline, err := service.Scan(c.Request.Context(), ticketing.ScanRequest{
		TicketNumber: decoded.Ticket.ID,
		Location:     scanLocation(req.Location),
		Payload:      decoded.Ticket,
	})
	if err != nil {
		respondScanError(c, err, ticket)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"recognized": true,
		"ticket":     ticket,
		"message":    helpers.OfflineSuffix("Ticket validated successfully", offline),
	})
}

func scanLocation(location string) string {
	if location == "" {
		return DefaultScanLocation
	}
	return location
}

func respondScanError(c *gin.Context, err error, ticket *models.Ticket) {
	switch {
	case errors.Is(err, ticketing.ErrTicketNotFound):
		helpers.RespondWithError(c, http.StatusNotFound, "Ticket not found.")
	case errors.Is(err, ticketing.ErrAlreadyScanned):
		helpers.RespondWithTicketError(c, http.StatusConflict, "This ticket has already been scanned.", ticket)
	case errors.Is(err, ticketing.ErrTicketExpired):
		helpers.RespondWithTicketError(c, http.StatusGone, "This ticket has expired.", ticket)
	case errors.Is(err, ticketing.ErrInvalidTicketNumber):
		helpers.RespondWithError(c, http.StatusBadRequest, "Malformed ticket number.")
	default:
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to validate ticket.")
	}
}

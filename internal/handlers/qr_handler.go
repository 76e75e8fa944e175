package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"
	"github.com/ticketxpress/ticketxpress/internal/helpers"
	"github.com/ticketxpress/ticketxpress/internal/middleware"
	"github.com/ticketxpress/ticketxpress/internal/ticketing"
)

// TicketQR encodes the payload snapshot stored at generation time.
func TicketQR(c *gin.Context) {
	ticketNumber := c.Param("ticketNumber")

	service := middleware.GetTicketingService(c)
	if service == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Ticketing service not found.")
		return
	}

	ticket, _, err := service.GetTicket(c.Request.Context(), ticketNumber)
	if err != nil {
		if errors.Is(err, ticketing.ErrTicketNotFound) {
			helpers.RespondWithError(c, http.StatusNotFound, "Ticket not found.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to load ticket.")
		return
	}

	qrImage, err := qrcode.Encode(ticket.QRData, qrcode.Medium, 256)
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to generate QR code.")
		return
	}

	c.Data(http.StatusOK, "image/png", qrImage)
}

package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"istishara/models"
	"istishara/services/booking"
	"istishara/utils"
)

var BookingService booking.BookingService

// CreateBookingHandler reserves a slot and starts payment collection.
func CreateBookingHandler(c *gin.Context) {
	var input struct {
		OfferingID    string `json:"offeringId" binding:"required"`
		SlotID        string `json:"slotId" binding:"required"`
		MeetingMode   string `json:"meetingMode" binding:"required"`
		PaymentMethod string `json:"paymentMethod"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	mode, err := models.ParseMeetingMode(input.MeetingMode)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	if input.PaymentMethod == "" {
		input.PaymentMethod = "card"
	}

	res, err := BookingService.Reserve(c.Request.Context(), booking.ReserveRequest{
		RequesterID:   c.GetString("userID"),
		OfferingID:    input.OfferingID,
		SlotID:        input.SlotID,
		MeetingMode:   mode,
		PaymentMethod: input.PaymentMethod,
	})
	if err != nil {
		// A lost claim race still carries the refreshed availability so
		// the client can offer alternatives in the same round trip.
		if booking.IsCode(err, booking.CodeSlotUnavailable) && res != nil {
			var se *booking.Error
			errors.As(err, &se)
			c.JSON(http.StatusConflict, gin.H{
				"message":        se.Message,
				"code":           se.Code,
				"availableSlots": res.AvailableSlots,
			})
			return
		}
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, res.Booking)
}

// GetBookingHandler returns one booking, owner-scoped.
func GetBookingHandler(c *gin.Context) {
	b, err := BookingService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if b.RequesterID != c.GetString("userID") {
		c.JSON(http.StatusNotFound, utils.ErrorResponse{
			Message: "booking not found", Code: booking.CodeNotFound,
		})
		return
	}
	c.JSON(http.StatusOK, b)
}

// ListMyBookingsHandler returns the caller's bookings, newest first.
func ListMyBookingsHandler(c *gin.Context) {
	page := parseInt64(c.Query("page"), 1)
	pageSize := parseInt64(c.Query("pageSize"), 20)

	items, total, err := BookingService.ListByRequester(c.Request.Context(), c.GetString("userID"), page, pageSize)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"bookings": items,
		"total":    total,
		"page":     page,
		"pageSize": pageSize,
	})
}

// CancelBookingHandler cancels the caller's own booking.
func CancelBookingHandler(c *gin.Context) {
	userID := c.GetString("userID")

	b, err := BookingService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if b.RequesterID != userID {
		c.JSON(http.StatusNotFound, utils.ErrorResponse{
			Message: "booking not found", Code: booking.CodeNotFound,
		})
		return
	}

	updated, err := BookingService.Cancel(c.Request.Context(), b.ID, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func parseInt64(raw string, fallback int64) int64 {
	if raw == "" {
		return fallback
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

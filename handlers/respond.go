package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"istishara/services/booking"
	"istishara/utils"
)

// statusForCode maps service error codes onto HTTP statuses.
func statusForCode(code string) int {
	switch code {
	case booking.CodeNotFound:
		return http.StatusNotFound
	case booking.CodeSlotUnavailable, booking.CodeSlotInUse, booking.CodeDuplicateFeedback:
		return http.StatusConflict
	case booking.CodeInvalidInterval:
		return http.StatusBadRequest
	case booking.CodeIllegalTransition, booking.CodeBookingNotCompleted:
		return http.StatusUnprocessableEntity
	case booking.CodePaymentGateway:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// respondServiceError renders a coded service error, or a generic 500
// when the error carries no code.
func respondServiceError(c *gin.Context, err error) {
	var se *booking.Error
	if !errors.As(err, &se) {
		utils.GetLogger().Error("unhandled service error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse{
			Message: "Internal Server Error",
		})
		return
	}
	c.JSON(statusForCode(se.Code), utils.ErrorResponse{Message: se.Message, Code: se.Code})
}

package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	auditRepo "istishara/database/repository/audit"
	bookingRepo "istishara/database/repository/booking"
	"istishara/models"
	"istishara/services/booking"
	"istishara/utils"
)

var AuditRepo auditRepo.AuditRepository

// AdminListBookingsHandler lists bookings across all requesters with
// status, date-range, and free-text filters.
func AdminListBookingsHandler(c *gin.Context) {
	f := bookingRepo.AdminFilter{
		Search:   c.Query("search"),
		Page:     parseInt64(c.Query("page"), 1),
		PageSize: parseInt64(c.Query("pageSize"), 20),
	}

	if raw := c.Query("status"); raw != "" {
		status, err := models.ParseBookingStatus(raw)
		if err != nil {
			utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
			return
		}
		f.Status = status
	}
	if raw := c.Query("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			utils.JSONError(c, http.StatusBadRequest, "invalid input", "from must be RFC3339")
			return
		}
		f.FromDate = t
	}
	if raw := c.Query("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			utils.JSONError(c, http.StatusBadRequest, "invalid input", "to must be RFC3339")
			return
		}
		f.ToDate = t
	}

	items, total, err := BookingService.ListAdmin(c.Request.Context(), f)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"bookings": items,
		"total":    total,
		"page":     f.Page,
		"pageSize": f.PageSize,
	})
}

// AdminGetBookingHandler returns any booking by ID.
func AdminGetBookingHandler(c *gin.Context) {
	b, err := BookingService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// AdminTransitionBookingHandler applies a lifecycle event to a booking:
// advisor confirmation, completion, reschedule, cancellation, no-show.
func AdminTransitionBookingHandler(c *gin.Context) {
	var input struct {
		Event     string `json:"event" binding:"required"`
		NewSlotID string `json:"newSlotId"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	event, err := models.ParseBookingEvent(input.Event)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	b, err := BookingService.Transition(c.Request.Context(), c.Param("id"), event, "admin",
		booking.TransitionOptions{NewSlotID: input.NewSlotID})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// AdminReconcilePaymentHandler applies an out-of-band payment outcome,
// the manual counterpart of a gateway callback. Replays are no-ops.
func AdminReconcilePaymentHandler(c *gin.Context) {
	var input struct {
		Status        string `json:"status" binding:"required"`
		TransactionID string `json:"transactionId"`
		FailureReason string `json:"failureReason"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	status := models.ChargeOutcomeStatus(input.Status)
	switch status {
	case models.ChargeSucceeded, models.ChargeFailed, models.ChargePending:
	default:
		utils.JSONError(c, http.StatusBadRequest, "invalid input", "status must be succeeded, failed or pending")
		return
	}

	err := BookingService.Reconcile(c.Request.Context(), c.Param("id"), models.ChargeResult{
		Status:        status,
		TransactionID: input.TransactionID,
		FailureReason: input.FailureReason,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	b, err := BookingService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// AdminSweepPaymentsHandler runs the overdue-payment sweep on demand.
func AdminSweepPaymentsHandler(c *gin.Context) {
	n, err := BookingService.SweepOverduePayments(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"expired": n})
}

// AdminAuditTrailHandler lists audit records for one entity.
func AdminAuditTrailHandler(c *gin.Context) {
	entityType := c.Param("entityType")
	entityID := c.Param("entityId")

	records, err := AuditRepo.ListByEntity(c.Request.Context(), entityType, entityID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": records})
}

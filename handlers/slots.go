package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"istishara/services/schedule"
	"istishara/utils"
)

var ScheduleService schedule.ScheduleService

// ListAvailableSlotsHandler returns upcoming open slots for an offering.
func ListAvailableSlotsHandler(c *gin.Context) {
	offeringID := c.Param("id")

	from := time.Now().UTC()
	if raw := c.Query("from"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			utils.JSONError(c, http.StatusBadRequest, "invalid input", "from must be RFC3339")
			return
		}
		from = parsed
	}

	slots, err := ScheduleService.ListAvailable(c.Request.Context(), offeringID, from)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"slots": slots})
}

// CreateSlotHandler publishes a new bookable slot (admin).
func CreateSlotHandler(c *gin.Context) {
	var input struct {
		OfferingID string    `json:"offeringId" binding:"required"`
		Start      time.Time `json:"start" binding:"required"`
		End        time.Time `json:"end" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	slot, err := ScheduleService.CreateSlot(c.Request.Context(), input.OfferingID, input.Start, input.End, "admin")
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, slot)
}

// ListOfferingSlotsHandler returns all slots of an offering, booked
// included (admin).
func ListOfferingSlotsHandler(c *gin.Context) {
	slots, err := ScheduleService.ListByOffering(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"slots": slots})
}

// DeleteSlotHandler removes an unreferenced slot (admin).
func DeleteSlotHandler(c *gin.Context) {
	if err := ScheduleService.DeleteSlot(c.Request.Context(), c.Param("id"), "admin"); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

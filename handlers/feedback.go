package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"istishara/services/feedback"
	"istishara/utils"
)

var FeedbackService feedback.FeedbackService

// CreateFeedbackHandler records feedback for the caller's completed booking.
func CreateFeedbackHandler(c *gin.Context) {
	var input struct {
		Rating  int    `json:"rating" binding:"required"`
		Comment string `json:"comment"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	fb, err := FeedbackService.Create(c.Request.Context(), feedback.CreateRequest{
		BookingID:   c.Param("id"),
		RequesterID: c.GetString("userID"),
		Rating:      input.Rating,
		Comment:     input.Comment,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, fb)
}

// ListOfferingFeedbackHandler returns public feedback for an offering.
func ListOfferingFeedbackHandler(c *gin.Context) {
	items, err := FeedbackService.ListPublicByOffering(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"feedback": items})
}

// SetFeedbackVisibilityHandler is the moderation toggle (admin).
func SetFeedbackVisibilityHandler(c *gin.Context) {
	var input struct {
		IsPublic *bool `json:"isPublic" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	if err := FeedbackService.SetVisibility(c.Request.Context(), c.Param("id"), *input.IsPublic, "admin"); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteFeedbackHandler removes a feedback record (admin moderation).
func DeleteFeedbackHandler(c *gin.Context) {
	if err := FeedbackService.Delete(c.Request.Context(), c.Param("id"), "admin"); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"istishara/models"
	"istishara/services/offering"
	"istishara/utils"
)

var OfferingService offering.OfferingService

// ListOfferingsHandler returns the public catalogue (active offerings only).
func ListOfferingsHandler(c *gin.Context) {
	items, err := OfferingService.List(c.Request.Context(), true)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"offerings": items})
}

// GetOfferingHandler returns one offering.
func GetOfferingHandler(c *gin.Context) {
	o, err := OfferingService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

type offeringInput struct {
	Title           string  `json:"title" binding:"required"`
	Description     string  `json:"description"`
	Category        string  `json:"category"`
	Price           float64 `json:"price"`
	Currency        string  `json:"currency"`
	DurationMinutes int     `json:"durationMinutes" binding:"required"`
	MaxPerDay       int     `json:"maxPerDay"`
}

// CreateOfferingHandler adds a catalogue entry (admin).
func CreateOfferingHandler(c *gin.Context) {
	var input offeringInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	o, err := OfferingService.Create(c.Request.Context(), &models.ConsultationOffering{
		Title:           input.Title,
		Description:     input.Description,
		Category:        input.Category,
		Price:           input.Price,
		Currency:        input.Currency,
		DurationMinutes: input.DurationMinutes,
		MaxPerDay:       input.MaxPerDay,
	}, "admin")
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, o)
}

// UpdateOfferingHandler edits a catalogue entry (admin).
func UpdateOfferingHandler(c *gin.Context) {
	var input offeringInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	o, err := OfferingService.Update(c.Request.Context(), &models.ConsultationOffering{
		ID:              c.Param("id"),
		Title:           input.Title,
		Description:     input.Description,
		Category:        input.Category,
		Price:           input.Price,
		Currency:        input.Currency,
		DurationMinutes: input.DurationMinutes,
		MaxPerDay:       input.MaxPerDay,
	}, "admin")
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

// SetOfferingActiveHandler toggles catalogue visibility (admin).
func SetOfferingActiveHandler(c *gin.Context) {
	var input struct {
		Active *bool `json:"active" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	if err := OfferingService.SetActive(c.Request.Context(), c.Param("id"), *input.Active, "admin"); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/rmaia-dev/sgt-api/internal/models"
	"github.com/rmaia-dev/sgt-api/internal/service"
	appErrors "github.com/rmaia-dev/sgt-api/pkg/errors"
	"github.com/rmaia-dev/sgt-api/pkg/response"
)

// TrainingHandler wires the portfolio training catalog to HTTP routes.
type TrainingHandler struct {
	trainings *service.TrainingService
}

// NewTrainingHandler constructs a new TrainingHandler.
func NewTrainingHandler(trainings *service.TrainingService) *TrainingHandler {
	return &TrainingHandler{trainings: trainings}
}

// List godoc
// @Summary List catalog entries
// @Tags Trainings
// @Produce json
// @Param search query string false "Search by name/code"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /trainings [get]
func (h *TrainingHandler) List(c *gin.Context) {
	filter := models.TrainingFilter{Search: strings.TrimSpace(c.Query("search"))}
	filter.Page, filter.PageSize = pageParams(c)

	trainings, pagination, err := h.trainings.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, trainings, pagination)
}

// Get godoc
// @Summary Get a catalog entry
// @Tags Trainings
// @Produce json
// @Param id path string true "Training ID"
// @Success 200 {object} response.Envelope
// @Router /trainings/{id} [get]
func (h *TrainingHandler) Get(c *gin.Context) {
	training, err := h.trainings.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, training, nil)
}

// Create godoc
// @Summary Create a catalog entry
// @Tags Trainings
// @Accept json
// @Produce json
// @Param payload body service.TrainingRequest true "Training payload"
// @Success 201 {object} response.Envelope
// @Router /trainings [post]
func (h *TrainingHandler) Create(c *gin.Context) {
	var req service.TrainingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid training payload"))
		return
	}
	training, err := h.trainings.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, training)
}

// Update godoc
// @Summary Update a catalog entry
// @Tags Trainings
// @Accept json
// @Produce json
// @Param id path string true "Training ID"
// @Param payload body service.TrainingRequest true "Training payload"
// @Success 200 {object} response.Envelope
// @Router /trainings/{id} [put]
func (h *TrainingHandler) Update(c *gin.Context) {
	var req service.TrainingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid training payload"))
		return
	}
	training, err := h.trainings.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, training, nil)
}

// Delete godoc
// @Summary Delete a catalog entry
// @Tags Trainings
// @Param id path string true "Training ID"
// @Success 204
// @Router /trainings/{id} [delete]
func (h *TrainingHandler) Delete(c *gin.Context) {
	if err := h.trainings.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

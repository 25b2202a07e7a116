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

// ClassHandler wires class lifecycle services to HTTP routes.
type ClassHandler struct {
	classes *service.ClassService
	exports *service.ExportService
}

// NewClassHandler constructs a new ClassHandler.
func NewClassHandler(classes *service.ClassService, exports *service.ExportService) *ClassHandler {
	return &ClassHandler{classes: classes, exports: exports}
}

// List godoc
// @Summary List open classes
// @Tags Classes
// @Produce json
// @Param search query string false "Search by name/code"
// @Param types query string false "Comma-separated class types"
// @Param units query string false "Comma-separated units"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /classes [get]
func (h *ClassHandler) List(c *gin.Context) {
	filter := models.ClassFilter{
		Search: strings.TrimSpace(c.Query("search")),
		Units:  splitParam(c.Query("units")),
	}
	for _, raw := range splitParam(c.Query("types")) {
		classType := models.ClassType(strings.ToUpper(raw))
		if !classType.Valid() {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unknown class type: "+raw))
			return
		}
		filter.Types = append(filter.Types, classType)
	}
	filter.Page, filter.PageSize = pageParams(c)

	classes, pagination, err := h.classes.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, classes, pagination)
}

// Get godoc
// @Summary Get class detail with roster
// @Tags Classes
// @Produce json
// @Param id path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /classes/{id} [get]
func (h *ClassHandler) Get(c *gin.Context) {
	detail, err := h.classes.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// Create godoc
// @Summary Schedule a class
// @Tags Classes
// @Accept json
// @Produce json
// @Param payload body service.CreateClassRequest true "Class payload"
// @Success 201 {object} response.Envelope
// @Router /classes [post]
func (h *ClassHandler) Create(c *gin.Context) {
	var req service.CreateClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid class payload"))
		return
	}
	detail, err := h.classes.Create(c.Request.Context(), actorFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, detail)
}

// Update godoc
// @Summary Update a class
// @Tags Classes
// @Accept json
// @Produce json
// @Param id path string true "Class ID"
// @Param payload body service.UpdateClassRequest true "Class patch"
// @Success 200 {object} response.Envelope
// @Router /classes/{id} [put]
func (h *ClassHandler) Update(c *gin.Context) {
	var req service.UpdateClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid class payload"))
		return
	}
	detail, err := h.classes.Update(c.Request.Context(), actorFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// Delete godoc
// @Summary Delete a class
// @Tags Classes
// @Param id path string true "Class ID"
// @Success 204
// @Router /classes/{id} [delete]
func (h *ClassHandler) Delete(c *gin.Context) {
	if err := h.classes.Delete(c.Request.Context(), actorFromContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Finish godoc
// @Summary Finish a class
// @Tags Classes
// @Produce json
// @Param id path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/finish [post]
func (h *ClassHandler) Finish(c *gin.Context) {
	detail, err := h.classes.Finish(c.Request.Context(), actorFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// Cancel godoc
// @Summary Cancel a class
// @Tags Classes
// @Produce json
// @Param id path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/cancel [post]
func (h *ClassHandler) Cancel(c *gin.Context) {
	detail, err := h.classes.Cancel(c.Request.Context(), actorFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// Export godoc
// @Summary Export the attendance sheet
// @Tags Classes
// @Produce text/csv
// @Produce application/pdf
// @Param id path string true "Class ID"
// @Param format query string false "csv or pdf (default pdf)"
// @Success 200
// @Router /classes/{id}/export [get]
func (h *ClassHandler) Export(c *gin.Context) {
	if h.exports == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "exports disabled"))
		return
	}
	format := service.ExportFormat(strings.ToLower(c.DefaultQuery("format", "pdf")))
	result, err := h.exports.RosterSheet(c.Request.Context(), c.Param("id"), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+result.Filename+`"`)
	c.Data(http.StatusOK, result.ContentType, result.Content)
}

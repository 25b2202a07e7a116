package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rmaia-dev/sgt-api/internal/service"
	appErrors "github.com/rmaia-dev/sgt-api/pkg/errors"
	"github.com/rmaia-dev/sgt-api/pkg/response"
)

// AttendanceHandler wires roster operations to HTTP routes.
type AttendanceHandler struct {
	attendance *service.AttendanceService
	metrics    *service.MetricsService
}

// NewAttendanceHandler constructs a new AttendanceHandler.
func NewAttendanceHandler(attendance *service.AttendanceService, metrics *service.MetricsService) *AttendanceHandler {
	return &AttendanceHandler{attendance: attendance, metrics: metrics}
}

// Register godoc
// @Summary Check an attendee into a class
// @Tags Attendance
// @Accept json
// @Produce json
// @Param id path string true "Class ID"
// @Param payload body service.RegisterAttendanceRequest true "Attendee payload"
// @Success 201 {object} response.Envelope
// @Router /classes/{id}/attendees [post]
func (h *AttendanceHandler) Register(c *gin.Context) {
	var req service.RegisterAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid attendance payload"))
		return
	}
	attendee, err := h.attendance.Register(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.countMutation("register")
	response.Created(c, attendee)
}

// EarlyLeave godoc
// @Summary Record an early departure
// @Tags Attendance
// @Param id path string true "Class ID"
// @Param registration path string true "Attendee registration"
// @Success 204
// @Router /classes/{id}/attendees/{registration}/early-leave [post]
func (h *AttendanceHandler) EarlyLeave(c *gin.Context) {
	if err := h.attendance.MarkEarlyLeave(c.Request.Context(), c.Param("id"), c.Param("registration")); err != nil {
		response.Error(c, err)
		return
	}
	h.countMutation("early_leave")
	response.NoContent(c)
}

// Remove godoc
// @Summary Remove an attendee from the roster
// @Tags Attendance
// @Param id path string true "Class ID"
// @Param registration path string true "Attendee registration"
// @Success 204
// @Router /classes/{id}/attendees/{registration} [delete]
func (h *AttendanceHandler) Remove(c *gin.Context) {
	if err := h.attendance.Remove(c.Request.Context(), c.Param("id"), c.Param("registration")); err != nil {
		response.Error(c, err)
		return
	}
	h.countMutation("remove")
	response.NoContent(c)
}

// Roster godoc
// @Summary List class attendees in check-in order
// @Tags Attendance
// @Produce json
// @Param id path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/attendees [get]
func (h *AttendanceHandler) Roster(c *gin.Context) {
	attendees, err := h.attendance.Roster(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, attendees, nil)
}

func (h *AttendanceHandler) countMutation(kind string) {
	if h.metrics != nil {
		h.metrics.CountRosterMutation(kind)
	}
}

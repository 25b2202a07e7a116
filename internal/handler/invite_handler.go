package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rmaia-dev/sgt-api/internal/service"
	appErrors "github.com/rmaia-dev/sgt-api/pkg/errors"
	"github.com/rmaia-dev/sgt-api/pkg/response"
)

// InviteHandler wires invite issuance and the public self check-in entry
// point to HTTP routes.
type InviteHandler struct {
	invites    *service.InviteService
	attendance *service.AttendanceService
	metrics    *service.MetricsService
}

// NewInviteHandler constructs a new InviteHandler.
func NewInviteHandler(invites *service.InviteService, attendance *service.AttendanceService, metrics *service.MetricsService) *InviteHandler {
	return &InviteHandler{invites: invites, attendance: attendance, metrics: metrics}
}

type generateInviteRequest struct {
	ExpiresInMinutes int `json:"expires_in_minutes"`
}

// Generate godoc
// @Summary Generate a self check-in invite link
// @Tags Invites
// @Accept json
// @Produce json
// @Param id path string true "Class ID"
// @Param payload body generateInviteRequest false "TTL override"
// @Success 201 {object} response.Envelope
// @Router /classes/{id}/invite [post]
func (h *InviteHandler) Generate(c *gin.Context) {
	var req generateInviteRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid invite payload"))
			return
		}
	}
	link, err := h.invites.Generate(c.Request.Context(), actorFromContext(c), c.Param("id"), req.ExpiresInMinutes)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, link)
}

// Validate godoc
// @Summary Validate an invite token
// @Tags Check-in
// @Produce json
// @Param classId path string true "Class ID"
// @Param token path string true "Invite token"
// @Success 200 {object} response.Envelope
// @Router /checkin/{classId}/{token} [get]
func (h *InviteHandler) Validate(c *gin.Context) {
	outcome, err := h.invites.Validate(c.Request.Context(), c.Param("classId"), c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	h.countOutcome(outcome)
	response.JSON(c, http.StatusOK, gin.H{
		"class_id": c.Param("classId"),
		"outcome":  outcome,
		"valid":    outcome == service.InviteValid,
	}, nil)
}

// SelfCheckIn godoc
// @Summary Check in through an invite link
// @Tags Check-in
// @Accept json
// @Produce json
// @Param classId path string true "Class ID"
// @Param token path string true "Invite token"
// @Param payload body service.RegisterAttendanceRequest true "Attendee payload"
// @Success 201 {object} response.Envelope
// @Router /checkin/{classId}/{token} [post]
func (h *InviteHandler) SelfCheckIn(c *gin.Context) {
	classID := c.Param("classId")
	outcome, err := h.invites.Validate(c.Request.Context(), classID, c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	h.countOutcome(outcome)
	if outcome != service.InviteValid {
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "invite link is "+string(outcome)))
		return
	}

	var req service.RegisterAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid attendance payload"))
		return
	}
	attendee, err := h.attendance.Register(c.Request.Context(), classID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, attendee)
}

func (h *InviteHandler) countOutcome(outcome service.InviteOutcome) {
	if h.metrics != nil {
		h.metrics.CountInviteOutcome(string(outcome))
	}
}

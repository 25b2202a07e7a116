package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/rmaia-dev/sgt-api/internal/middleware"
	"github.com/rmaia-dev/sgt-api/internal/models"
	"github.com/rmaia-dev/sgt-api/internal/service"
	"github.com/rmaia-dev/sgt-api/pkg/config"
)

type inviteRepoMock struct {
	tokens map[string]*models.InviteToken
}

func newInviteRepoMock() *inviteRepoMock {
	return &inviteRepoMock{tokens: make(map[string]*models.InviteToken)}
}

func (m *inviteRepoMock) SaveInviteToken(ctx context.Context, token *models.InviteToken) error {
	copy := *token
	m.tokens[token.ClassID] = &copy
	return nil
}

func (m *inviteRepoMock) FindInviteToken(ctx context.Context, classID string) (*models.InviteToken, error) {
	if token, ok := m.tokens[classID]; ok {
		copy := *token
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func newTestInviteHandler(repo *inviteRepoMock, attendance *attendanceRepoMock) *InviteHandler {
	invites := service.NewInviteService(repo, nil, config.InvitesConfig{
		DefaultTTL: time.Hour,
		MaxTTL:     24 * time.Hour,
		BaseURL:    "http://localhost:8080",
	}, nil)
	return NewInviteHandler(invites, service.NewAttendanceService(attendance, nil, nil), nil)
}

func TestInviteHandlerGenerate(t *testing.T) {
	repo := newInviteRepoMock()
	handler := newTestInviteHandler(repo, newAttendanceRepoMock())

	c, w := testContext(t, http.MethodPost, "/classes/class-1/invite", nil)
	c.Params = gin.Params{{Key: "id", Value: "class-1"}}
	c.Set(middleware.ContextActorKey, models.Actor{ID: "admin-1", IsAdmin: true})

	handler.Generate(c)
	require.Equal(t, http.StatusCreated, w.Code)
	require.Contains(t, repo.tokens, "class-1")
}

func TestInviteHandlerGenerateNonAdmin(t *testing.T) {
	handler := newTestInviteHandler(newInviteRepoMock(), newAttendanceRepoMock())

	c, w := testContext(t, http.MethodPost, "/classes/class-1/invite", nil)
	c.Params = gin.Params{{Key: "id", Value: "class-1"}}
	c.Set(middleware.ContextActorKey, models.Actor{ID: "user-1"})

	handler.Generate(c)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestInviteHandlerValidate(t *testing.T) {
	repo := newInviteRepoMock()
	repo.tokens["class-1"] = &models.InviteToken{
		ClassID:   "class-1",
		Token:     "good-token",
		ExpiresAt: time.Now().Add(time.Hour),
	}
	handler := newTestInviteHandler(repo, newAttendanceRepoMock())

	c, w := testContext(t, http.MethodGet, "/checkin/class-1/good-token", nil)
	c.Params = gin.Params{{Key: "classId", Value: "class-1"}, {Key: "token", Value: "good-token"}}

	handler.Validate(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data struct {
			Outcome string `json:"outcome"`
			Valid   bool   `json:"valid"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Equal(t, "valid", envelope.Data.Outcome)
	require.True(t, envelope.Data.Valid)
}

func TestInviteHandlerSelfCheckIn(t *testing.T) {
	repo := newInviteRepoMock()
	repo.tokens["class-1"] = &models.InviteToken{
		ClassID:   "class-1",
		Token:     "good-token",
		ExpiresAt: time.Now().Add(time.Hour),
	}
	attendance := newAttendanceRepoMock()
	handler := newTestInviteHandler(repo, attendance)

	c, w := testContext(t, http.MethodPost, "/checkin/class-1/good-token", service.RegisterAttendanceRequest{
		Name:         "Jane Doe",
		Registration: "12345",
		Unit:         "Plant A",
	})
	c.Params = gin.Params{{Key: "classId", Value: "class-1"}, {Key: "token", Value: "good-token"}}

	handler.SelfCheckIn(c)
	require.Equal(t, http.StatusCreated, w.Code)
	require.Contains(t, attendance.roster, "12345")
}

func TestInviteHandlerSelfCheckInExpiredToken(t *testing.T) {
	repo := newInviteRepoMock()
	repo.tokens["class-1"] = &models.InviteToken{
		ClassID:   "class-1",
		Token:     "old-token",
		ExpiresAt: time.Now().Add(-time.Hour),
	}
	attendance := newAttendanceRepoMock()
	handler := newTestInviteHandler(repo, attendance)

	c, w := testContext(t, http.MethodPost, "/checkin/class-1/old-token", service.RegisterAttendanceRequest{
		Name:         "Jane Doe",
		Registration: "12345",
		Unit:         "Plant A",
	})
	c.Params = gin.Params{{Key: "classId", Value: "class-1"}, {Key: "token", Value: "old-token"}}

	handler.SelfCheckIn(c)
	require.Equal(t, http.StatusForbidden, w.Code)
	require.Empty(t, attendance.roster)
}

func TestInviteHandlerSelfCheckInUnknownClass(t *testing.T) {
	handler := newTestInviteHandler(newInviteRepoMock(), newAttendanceRepoMock())

	c, w := testContext(t, http.MethodPost, "/checkin/ghost/token", service.RegisterAttendanceRequest{
		Name:         "Jane Doe",
		Registration: "12345",
		Unit:         "Plant A",
	})
	c.Params = gin.Params{{Key: "classId", Value: "ghost"}, {Key: "token", Value: "token"}}

	handler.SelfCheckIn(c)
	require.Equal(t, http.StatusForbidden, w.Code)
}

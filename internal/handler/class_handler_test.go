package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/rmaia-dev/sgt-api/internal/middleware"
	"github.com/rmaia-dev/sgt-api/internal/models"
	"github.com/rmaia-dev/sgt-api/internal/service"
)

func TestClassHandlerListUnknownType(t *testing.T) {
	handler := NewClassHandler(service.NewClassService(nil, nil, nil, nil, nil, nil), nil)

	c, w := testContext(t, http.MethodGet, "/classes?types=WORKSHOP", nil)
	handler.List(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestClassHandlerCreateNonAdmin(t *testing.T) {
	handler := NewClassHandler(service.NewClassService(nil, nil, nil, nil, nil, nil), nil)

	start := time.Now()
	c, w := testContext(t, http.MethodPost, "/classes", service.CreateClassRequest{
		Type:         models.ClassTypeDDS,
		Name:         "Daily safety talk",
		Unit:         "Plant A",
		InstructorID: "instructor-1",
		DateStart:    &start,
	})
	c.Set(middleware.ContextActorKey, models.Actor{ID: "user-1"})

	handler.Create(c)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestClassHandlerCreateInvalidBody(t *testing.T) {
	handler := NewClassHandler(service.NewClassService(nil, nil, nil, nil, nil, nil), nil)

	c, w := testContext(t, http.MethodPost, "/classes", []byte(`invalid`))
	c.Set(middleware.ContextActorKey, models.Actor{ID: "admin-1", IsAdmin: true})

	handler.Create(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestClassHandlerExportDisabled(t *testing.T) {
	handler := NewClassHandler(service.NewClassService(nil, nil, nil, nil, nil, nil), nil)

	c, w := testContext(t, http.MethodGet, "/classes/class-1/export?format=csv", nil)
	c.Params = gin.Params{{Key: "id", Value: "class-1"}}

	handler.Export(c)
	require.Equal(t, http.StatusNotFound, w.Code)
}

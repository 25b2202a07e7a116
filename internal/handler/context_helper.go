package handler

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/rmaia-dev/sgt-api/internal/middleware"
	"github.com/rmaia-dev/sgt-api/internal/models"
)

func actorFromContext(c *gin.Context) models.Actor {
	value, exists := c.Get(middleware.ContextActorKey)
	if !exists {
		return models.Actor{}
	}
	actor, ok := value.(models.Actor)
	if !ok {
		return models.Actor{}
	}
	return actor
}

func pageParams(c *gin.Context) (int, int) {
	page := 1
	size := 20
	if v, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		page = v
	}
	if v, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		size = v
	}
	return page, size
}

// splitParam normalizes a comma-delimited query parameter into a trimmed set.
func splitParam(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			values = append(values, trimmed)
		}
	}
	return values
}

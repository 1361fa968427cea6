package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/cellbroadcast-api/internal/middleware"
	"github.com/noah-isme/cellbroadcast-api/internal/models"
	appErrors "github.com/noah-isme/cellbroadcast-api/pkg/errors"
)

const maxSlot = 7

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		return nil
	}
	return claims
}

func actorOf(c *gin.Context) string {
	if claims := claimsFromContext(c); claims != nil {
		return claims.Subject
	}
	return "anonymous"
}

func idParam(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "invalid id")
	}
	return id, nil
}

func slotQuery(c *gin.Context) (int, error) {
	raw := c.Query("slot")
	if raw == "" {
		return 0, nil
	}
	slot, err := strconv.Atoi(raw)
	if err != nil || slot < 0 || slot > maxSlot {
		return 0, appErrors.Clone(appErrors.ErrValidation, "invalid slot")
	}
	return slot, nil
}

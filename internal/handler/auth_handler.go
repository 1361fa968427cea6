package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/cellbroadcast-api/internal/dto"
	appErrors "github.com/noah-isme/cellbroadcast-api/pkg/errors"
	"github.com/noah-isme/cellbroadcast-api/pkg/response"
)

type tokenIssuer interface {
	Issue(ctx context.Context, req dto.TokenRequest) (*dto.TokenResponse, error)
}

// AuthHandler exchanges client credentials for access tokens.
type AuthHandler struct {
	issuer tokenIssuer
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(issuer tokenIssuer) *AuthHandler {
	return &AuthHandler{issuer: issuer}
}

// Token godoc
// @Summary Issue an access token
// @Description Verifies a registered client secret and returns a bearer token for its role.
// @Tags Auth
// @Accept json
// @Produce json
// @Param payload body dto.TokenRequest true "Client credentials"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/token [post]
func (h *AuthHandler) Token(c *gin.Context) {
	var req dto.TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid token payload"))
		return
	}
	token, err := h.issuer.Issue(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, token, nil)
}

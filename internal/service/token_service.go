package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/cellbroadcast-api/internal/dto"
	"github.com/noah-isme/cellbroadcast-api/internal/models"
	appErrors "github.com/noah-isme/cellbroadcast-api/pkg/errors"
)

// TokenConfig defines signing parameters for collaborator tokens.
type TokenConfig struct {
	Secret string
	Issuer string
	Expiry time.Duration
	// Clients may exchange their secret for a token via Issue.
	Clients []TokenClient
}

// TokenClient is a registered collaborator with a bcrypt-hashed secret.
type TokenClient struct {
	ID         string
	Role       models.Role
	SecretHash string
}

// TokenService issues and validates bearer tokens for the radio producer and the
// settings UI.
type TokenService struct {
	config    TokenConfig
	clients   map[string]TokenClient
	validator *validator.Validate
	now       func() time.Time
}

// NewTokenService constructs a TokenService.
func NewTokenService(config TokenConfig) *TokenService {
	if config.Expiry <= 0 {
		config.Expiry = 24 * time.Hour
	}
	clients := make(map[string]TokenClient, len(config.Clients))
	for _, client := range config.Clients {
		if client.Role.Valid() {
			clients[client.ID] = client
		}
	}
	return &TokenService{config: config, clients: clients, validator: validator.New(), now: time.Now}
}

// Issue verifies client credentials and signs a token carrying the client's role.
func (s *TokenService) Issue(ctx context.Context, req dto.TokenRequest) (*dto.TokenResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid token payload")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	client, ok := s.clients[req.ClientID]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid client id or secret")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(client.SecretHash), []byte(req.ClientSecret)); err != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid client id or secret")
	}

	token, expiresAt, err := s.Generate(client.ID, client.Role)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to issue token")
	}
	return &dto.TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		Role:        string(client.Role),
		ExpiresAt:   expiresAt,
	}, nil
}

// Generate signs a token for subject with role.
func (s *TokenService) Generate(subject string, role models.Role) (string, time.Time, error) {
	if !role.Valid() {
		return "", time.Time{}, appErrors.Clone(appErrors.ErrValidation, "unknown role "+string(role))
	}
	issuedAt := s.now().UTC()
	expiresAt := issuedAt.Add(s.config.Expiry)
	claims := models.JWTClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subject,
			Issuer:    s.config.Issuer,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.Secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// ValidateToken parses and validates an access token returning the claims.
func (s *TokenService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if s.config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.config.Issuer))
	}
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.config.Secret), nil
	}, opts...)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid || !claims.Role.Valid() {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}
	return claims, nil
}

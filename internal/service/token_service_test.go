package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/cellbroadcast-api/internal/dto"
	"github.com/noah-isme/cellbroadcast-api/internal/models"
	appErrors "github.com/noah-isme/cellbroadcast-api/pkg/errors"
)

func TestTokenServiceRoundTrip(t *testing.T) {
	svc := NewTokenService(TokenConfig{Secret: "s3cret", Issuer: "cellbroadcast-api", Expiry: time.Hour})

	token, expiresAt, err := svc.Generate("modem-0", models.RoleRadio)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "modem-0", claims.Subject)
	assert.Equal(t, models.RoleRadio, claims.Role)
	assert.NotEmpty(t, claims.ID)
}

func TestTokenServiceRejects(t *testing.T) {
	svc := NewTokenService(TokenConfig{Secret: "s3cret", Issuer: "cellbroadcast-api", Expiry: time.Hour})

	_, _, err := svc.Generate("x", models.Role("admin"))
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	other := NewTokenService(TokenConfig{Secret: "other", Issuer: "cellbroadcast-api"})
	token, _, err := other.Generate("x", models.RoleViewer)
	require.NoError(t, err)
	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)

	foreign := NewTokenService(TokenConfig{Secret: "s3cret", Issuer: "someone-else"})
	token, _, err = foreign.Generate("x", models.RoleViewer)
	require.NoError(t, err)
	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)

	expired := NewTokenService(TokenConfig{Secret: "s3cret", Issuer: "cellbroadcast-api", Expiry: time.Minute})
	expired.now = func() time.Time { return time.Now().Add(-time.Hour) }
	token, _, err = expired.Generate("x", models.RoleViewer)
	require.NoError(t, err)
	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)

	_, err = svc.ValidateToken("not-a-token")
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
}

func TestTokenServiceIssue(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("modem-pass"), bcrypt.MinCost)
	require.NoError(t, err)
	svc := NewTokenService(TokenConfig{
		Secret: "s3cret",
		Issuer: "cellbroadcast-api",
		Expiry: time.Hour,
		Clients: []TokenClient{
			{ID: "modem-0", Role: models.RoleRadio, SecretHash: string(hash)},
			{ID: "ghost", Role: models.Role("root"), SecretHash: string(hash)},
		},
	})
	ctx := context.Background()

	resp, err := svc.Issue(ctx, dto.TokenRequest{ClientID: "modem-0", ClientSecret: "modem-pass"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, "radio", resp.Role)
	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "modem-0", claims.Subject)

	_, err = svc.Issue(ctx, dto.TokenRequest{ClientID: "modem-0", ClientSecret: "wrong"})
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredentials)
	_, err = svc.Issue(ctx, dto.TokenRequest{ClientID: "ghost", ClientSecret: "modem-pass"})
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredentials)
	_, err = svc.Issue(ctx, dto.TokenRequest{ClientID: "modem-0"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

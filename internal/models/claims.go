package models

import "github.com/golang-jwt/jwt/v5"

// Role is a collaborator role carried in access tokens.
type Role string

const (
	RoleRadio    Role = "radio"
	RoleSettings Role = "settings"
	RoleViewer   Role = "viewer"
)

// Valid reports a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleRadio, RoleSettings, RoleViewer:
		return true
	}
	return false
}

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	Role Role `json:"role"`
	jwt.RegisteredClaims
}

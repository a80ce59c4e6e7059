package models

import "github.com/golang-jwt/jwt/v5"

// JWTClaims carries the authenticated caller identity on protected routes.
type JWTClaims struct {
	UserID string `json:"uid"`
	Name   string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

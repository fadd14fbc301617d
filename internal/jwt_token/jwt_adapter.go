package jwttoken

import (
	id "roster/pkg/domain"
	dErrors "roster/pkg/domain-errors"
	authmw "roster/pkg/platform/middleware/auth"
)

// ToMiddlewareClaims maps token claims onto what the auth middleware needs.
func ToMiddlewareClaims(claims *Claims) (*authmw.Claims, error) {
	userID, err := id.ParseUserID(claims.Subject)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token subject")
	}
	out := &authmw.Claims{UserID: userID, JTI: claims.ID}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.UTC()
	}
	return out, nil
}

type JWTServiceAdapter struct {
	service *JWTService
}

func NewJWTServiceAdapter(service *JWTService) *JWTServiceAdapter {
	return &JWTServiceAdapter{service: service}
}

func (a *JWTServiceAdapter) ValidateToken(tokenString string) (*authmw.Claims, error) {
	claims, err := a.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	return ToMiddlewareClaims(claims)
}

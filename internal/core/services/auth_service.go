package services

import (
	"errors"

	"pulsehub/internal/core/domain"

	"github.com/golang-jwt/jwt/v5"
)

// AuthService validates bearer credentials presented at connection time.
// Tokens are minted by the main backend; the coordinator only verifies
// them and extracts the user's identity.
type AuthService interface {
	VerifyToken(tokenString string) (*Claims, error)
}

type Claims struct {
	UserID domain.UserID `json:"id"`
	Name   string        `json:"name"`
	jwt.RegisteredClaims
}

type authService struct {
	jwtSecret []byte
}

func NewAuthService(jwtSecret string) AuthService {
	return &authService{
		jwtSecret: []byte(jwtSecret),
	}
}

func (s *authService) VerifyToken(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, domain.ErrInvalidToken
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.ErrInvalidToken
		}
		return s.jwtSecret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrExpiredToken
		}
		return nil, domain.ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, domain.ErrInvalidToken
	}

	return claims, nil
}

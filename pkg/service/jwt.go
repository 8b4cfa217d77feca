// Package service holds small process-wide services shared by the auth
// service and the bearer-auth middleware every other service mounts.
package service

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	apperrors "dating-core/pkg/errors"
)

// Claims is the access-token payload minted by the auth service and
// verified by every other service's auth middleware (spec.md §4.2:
// "a JWS using HMAC-SHA-256 ... sub is the internal user id, tg is the
// Telegram id").
type Claims struct {
	UserID     int64 `json:"sub,string"`
	TelegramID int64 `json:"tg,string"`
	jwt.RegisteredClaims
}

// JWTService mints and verifies the bearer tokens handed out at
// /auth/session and checked by pkg/middleware.Auth.
type JWTService interface {
	Generate(userID, telegramID int64) (string, error)
	Validate(tokenString string) (*Claims, error)
	TTL() time.Duration
}

type jwtService struct {
	secretKey []byte
	ttl       time.Duration
}

// NewJWTService builds the HS256 signer/verifier. ttl is the access-token
// lifetime, one hour per spec.md §4.2.
func NewJWTService(secretKey string, ttl time.Duration) JWTService {
	return &jwtService{secretKey: []byte(secretKey), ttl: ttl}
}

func (s *jwtService) Generate(userID, telegramID int64) (string, error) {
	now := time.Now().UTC()
	claims := &Claims{
		UserID:     userID,
		TelegramID: telegramID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secretKey)
}

func (s *jwtService) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apperrors.ErrInvalidToken
		}
		return s.secretKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.ErrInvalidToken
		}
		return nil, apperrors.Wrap(apperrors.ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, apperrors.ErrInvalidToken
	}
	return claims, nil
}

func (s *jwtService) TTL() time.Duration {
	return s.ttl
}

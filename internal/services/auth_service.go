// Package services holds the business logic behind every HTTP/WS
// controller — the layer the teacher calls "services", wired with
// repositories + ambient pkg/ packages, no framework types leak in.
package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"dating-core/internal/repositories"
	apperrors "dating-core/pkg/errors"
	"dating-core/pkg/service"
	"dating-core/pkg/utils"

	"go.uber.org/zap"
)

type AuthServiceInterface interface {
	ValidateInitData(ctx context.Context, initData string, botTokenOverride string) (token string, userID int64, username *string, err error)
	Verify(ctx context.Context, token string) (userID int64, err error)
	Refresh(ctx context.Context, token string) (newToken string, err error)
}

type AuthService struct {
	users          repositories.UserRepositoryInterface
	jwt            service.JWTService
	botToken       string
	initDataMaxAge time.Duration
	logger         *zap.Logger
}

func NewAuthService(users repositories.UserRepositoryInterface, jwt service.JWTService, botToken string, initDataMaxAge time.Duration, logger *zap.Logger) AuthServiceInterface {
	return &AuthService{users: users, jwt: jwt, botToken: botToken, initDataMaxAge: initDataMaxAge, logger: logger}
}

// ValidateInitData implements spec.md §4.2's four-step verification: parse,
// build the data-check-string, derive the expected hash with the
// "WebAppData"-keyed secret, constant-time compare, then the auth_date
// freshness check.
func (s *AuthService) ValidateInitData(ctx context.Context, initData string, botTokenOverride string) (string, int64, *string, error) {
	values, err := url.ParseQuery(initData)
	if err != nil {
		return "", 0, nil, apperrors.ErrInvalidInitData
	}

	receivedHash := values.Get("hash")
	if receivedHash == "" {
		return "", 0, nil, apperrors.ErrInvalidInitData
	}

	botToken := s.botToken
	if botTokenOverride != "" {
		botToken = botTokenOverride
	}
	if botToken == "" {
		return "", 0, nil, apperrors.Wrap(apperrors.ErrInternal, fmt.Errorf("no telegram bot token configured"))
	}

	if !verifyInitDataHash(values, receivedHash, botToken) {
		return "", 0, nil, apperrors.ErrInvalidInitData
	}

	authDateStr := values.Get("auth_date")
	authDateUnix, err := strconv.ParseInt(authDateStr, 10, 64)
	if err != nil {
		return "", 0, nil, apperrors.ErrInvalidInitData
	}
	if time.Since(time.Unix(authDateUnix, 0)) > s.initDataMaxAge {
		return "", 0, nil, apperrors.ErrExpiredInitData
	}

	telegramID, err := strconv.ParseInt(values.Get("id"), 10, 64)
	if err != nil {
		telegramID, err = parseUserFieldTelegramID(values.Get("user"))
		if err != nil {
			return "", 0, nil, apperrors.ErrInvalidInitData
		}
	}

	var username *string
	if u := values.Get("username"); u != "" {
		username = utils.Ptr(u)
	}

	user, err := s.users.UpsertByTelegramID(ctx, telegramID, username)
	if err != nil {
		return "", 0, nil, apperrors.Wrap(apperrors.ErrInternal, err)
	}

	token, err := s.jwt.Generate(user.ID, user.TelegramID)
	if err != nil {
		return "", 0, nil, apperrors.Wrap(apperrors.ErrInternal, err)
	}
	return token, user.ID, username, nil
}

// verifyInitDataHash computes HMAC-SHA-256(secretKey, dataCheckString) and
// constant-time compares it with the client-supplied hash. secretKey is
// itself HMAC-SHA-256("WebAppData", botToken) per Telegram's spec.
func verifyInitDataHash(values url.Values, receivedHash, botToken string) bool {
	keys := make([]string, 0, len(values))
	for k := range values {
		if k == "hash" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, fmt.Sprintf("%s=%s", k, values.Get(k)))
	}
	dataCheckString := strings.Join(pairs, "\n")

	secretMac := hmac.New(sha256.New, []byte("WebAppData"))
	secretMac.Write([]byte(botToken))
	secretKey := secretMac.Sum(nil)

	mac := hmac.New(sha256.New, secretKey)
	mac.Write([]byte(dataCheckString))
	expected := hex.EncodeToString(mac.Sum(nil))

	return subtle.ConstantTimeCompare([]byte(expected), []byte(receivedHash)) == 1
}

// parseUserFieldTelegramID pulls "id" out of initData's JSON-encoded
// "user" field, used when the flattened "id" key is absent (older clients).
func parseUserFieldTelegramID(userJSON string) (int64, error) {
	if userJSON == "" {
		return 0, fmt.Errorf("no user field in init data")
	}
	idx := strings.Index(userJSON, `"id":`)
	if idx == -1 {
		return 0, fmt.Errorf("no id in user field")
	}
	rest := userJSON[idx+len(`"id":`):]
	end := strings.IndexAny(rest, ",}")
	if end == -1 {
		return 0, fmt.Errorf("malformed user field")
	}
	return strconv.ParseInt(strings.TrimSpace(rest[:end]), 10, 64)
}

func (s *AuthService) Verify(ctx context.Context, token string) (int64, error) {
	claims, err := s.jwt.Validate(token)
	if err != nil {
		return 0, apperrors.ErrInvalidToken
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		return 0, apperrors.ErrInvalidToken
	}
	if user.IsBlocked {
		return 0, apperrors.ErrBlockedUser
	}
	return user.ID, nil
}

// Refresh mints a fresh-exp token from a still-valid one. Refusal only
// when the token is within its last 10% of lifetime *and* the user is now
// blocked (spec.md §4.2) — an otherwise-valid near-expiry token for a
// good-standing user is still refreshed.
func (s *AuthService) Refresh(ctx context.Context, token string) (string, error) {
	claims, err := s.jwt.Validate(token)
	if err != nil {
		return "", apperrors.ErrInvalidToken
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		return "", apperrors.ErrInvalidToken
	}

	if user.IsBlocked && nearExpiry(claims.ExpiresAt.Time, s.jwt.TTL()) {
		return "", apperrors.ErrBlockedUser
	}

	return s.jwt.Generate(user.ID, user.TelegramID)
}

func nearExpiry(exp time.Time, ttl time.Duration) bool {
	remaining := time.Until(exp)
	return remaining <= ttl/10
}

package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"testing"
	"time"

	"dating-core/internal/entities"
	"dating-core/pkg/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeUserRepo is an in-memory UserRepositoryInterface, standing in for
// pgx in tests that only exercise the service layer.
type fakeUserRepo struct {
	byTelegramID map[int64]*entities.User
	nextID       int64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byTelegramID: make(map[int64]*entities.User)}
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id int64) (*entities.User, error) {
	for _, u := range f.byTelegramID {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, fmt.Errorf("not found")
}

func (f *fakeUserRepo) FindByTelegramID(ctx context.Context, telegramID int64) (*entities.User, error) {
	u, ok := f.byTelegramID[telegramID]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return u, nil
}

func (f *fakeUserRepo) UpsertByTelegramID(ctx context.Context, telegramID int64, username *string) (*entities.User, error) {
	if u, ok := f.byTelegramID[telegramID]; ok {
		u.LastSeenAt = time.Now()
		u.TelegramUsername = username
		return u, nil
	}
	f.nextID++
	u := &entities.User{ID: f.nextID, TelegramID: telegramID, TelegramUsername: username, CreatedAt: time.Now(), LastSeenAt: time.Now()}
	f.byTelegramID[telegramID] = u
	return u, nil
}

func (f *fakeUserRepo) TouchLastSeen(ctx context.Context, id int64) error { return nil }

func (f *fakeUserRepo) SetBlocked(ctx context.Context, id int64, blocked bool) error {
	for _, u := range f.byTelegramID {
		if u.ID == id {
			u.IsBlocked = blocked
			return nil
		}
	}
	return fmt.Errorf("not found")
}

// signInitData builds a valid Telegram initData string the way the
// Telegram client itself would, for use as a test fixture.
func signInitData(t *testing.T, botToken string, fields map[string]string) string {
	t.Helper()
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, fmt.Sprintf("%s=%s", k, fields[k]))
	}
	dataCheckString := strings.Join(pairs, "\n")

	secretMac := hmac.New(sha256.New, []byte("WebAppData"))
	secretMac.Write([]byte(botToken))
	secretKey := secretMac.Sum(nil)

	mac := hmac.New(sha256.New, secretKey)
	mac.Write([]byte(dataCheckString))
	hash := hex.EncodeToString(mac.Sum(nil))

	values := url.Values{}
	for k, v := range fields {
		values.Set(k, v)
	}
	values.Set("hash", hash)
	return values.Encode()
}

func TestAuthService_ValidateInitData_Success(t *testing.T) {
	botToken := "test-bot-token"
	users := newFakeUserRepo()
	jwtSvc := service.NewJWTService("test-secret", time.Hour)
	svc := NewAuthService(users, jwtSvc, botToken, 24*time.Hour, zap.NewNop())

	initData := signInitData(t, botToken, map[string]string{
		"auth_date": strconv.FormatInt(time.Now().Unix(), 10),
		"id":        "555",
		"username":  "alex",
	})

	token, userID, username, err := svc.ValidateInitData(context.Background(), initData, "")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.True(t, userID > 0)
	require.NotNil(t, username)
	assert.Equal(t, "alex", *username)

	claims, err := jwtSvc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, int64(555), claims.TelegramID)
}

func TestAuthService_ValidateInitData_TamperedHashRejected(t *testing.T) {
	botToken := "test-bot-token"
	users := newFakeUserRepo()
	jwtSvc := service.NewJWTService("test-secret", time.Hour)
	svc := NewAuthService(users, jwtSvc, botToken, 24*time.Hour, zap.NewNop())

	initData := signInitData(t, botToken, map[string]string{
		"auth_date": strconv.FormatInt(time.Now().Unix(), 10),
		"id":        "555",
	})
	tampered := strings.Replace(initData, "id=555", "id=999", 1)

	_, _, _, err := svc.ValidateInitData(context.Background(), tampered, "")
	require.Error(t, err)
}

func TestAuthService_ValidateInitData_ExpiredRejected(t *testing.T) {
	botToken := "test-bot-token"
	users := newFakeUserRepo()
	jwtSvc := service.NewJWTService("test-secret", time.Hour)
	svc := NewAuthService(users, jwtSvc, botToken, time.Hour, zap.NewNop())

	stale := time.Now().Add(-2 * time.Hour).Unix()
	initData := signInitData(t, botToken, map[string]string{
		"auth_date": strconv.FormatInt(stale, 10),
		"id":        "555",
	})

	_, _, _, err := svc.ValidateInitData(context.Background(), initData, "")
	require.Error(t, err)
}

func TestAuthService_Verify_RejectsBlockedUser(t *testing.T) {
	botToken := "test-bot-token"
	users := newFakeUserRepo()
	jwtSvc := service.NewJWTService("test-secret", time.Hour)
	svc := NewAuthService(users, jwtSvc, botToken, 24*time.Hour, zap.NewNop())

	initData := signInitData(t, botToken, map[string]string{
		"auth_date": strconv.FormatInt(time.Now().Unix(), 10),
		"id":        "777",
	})
	token, userID, _, err := svc.ValidateInitData(context.Background(), initData, "")
	require.NoError(t, err)

	require.NoError(t, users.SetBlocked(context.Background(), userID, true))

	_, err = svc.Verify(context.Background(), token)
	assert.Error(t, err)
}

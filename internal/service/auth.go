package service

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bcmimarlik/site/internal/config"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// AuthService exchanges the shared admin password for signed, expiring tokens.
// A token is "<expiry unix>.<nonce>.<signature>".
type AuthService struct {
	password []byte
	secret   []byte
	ttl      time.Duration
	now      func() time.Time
}

func NewAuthService(cfg config.AuthConfig) *AuthService {
	secret := []byte(cfg.Secret)
	if len(secret) == 0 {
		// tokens will not survive a restart
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			logrus.Fatalf("failed to generate token secret: %v", err)
		}
	}

	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}

	return &AuthService{
		password: []byte(cfg.Password),
		secret:   secret,
		ttl:      ttl,
		now:      time.Now,
	}
}

// Login returns a token and its expiry for the correct password.
func (a *AuthService) Login(ctx context.Context, password string) (string, time.Time, error) {
	if subtle.ConstantTimeCompare([]byte(password), a.password) != 1 {
		logrus.Warn("admin login rejected")
		return "", time.Time{}, ErrInvalidPassword
	}

	expiry := a.now().Add(a.ttl).Truncate(time.Second)
	payload := strconv.FormatInt(expiry.Unix(), 10) + "." + strings.ReplaceAll(uuid.New().String(), "-", "")

	return payload + "." + a.sign(payload), expiry, nil
}

// VerifyToken checks the signature and expiry of token.
func (a *AuthService) VerifyToken(ctx context.Context, token string) (bool, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return false, ErrInvalidToken
	}

	payload := parts[0] + "." + parts[1]
	if !hmac.Equal([]byte(parts[2]), []byte(a.sign(payload))) {
		return false, ErrInvalidToken
	}

	expiry, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !a.now().Before(time.Unix(expiry, 0)) {
		return false, ErrTokenExpired
	}

	return true, nil
}

func (a *AuthService) sign(payload string) string {
	mac := hmac.New(sha256.New, a.secret)
	mac.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

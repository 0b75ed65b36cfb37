package module

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	authorization = "Authorization"
	// TokenCookie carries the admin token for browser requests.
	TokenCookie = "site_token"
)

var (
	ErrTokenNotFound = errors.New("access token not found")
	ErrTokenRejected = errors.New("access token verification failed")
)

// TokenService verifies admin access tokens.
type TokenService interface {
	VerifyToken(ctx context.Context, token string) (bool, error)
}

// AuthTokenMiddleware rejects requests without a valid admin token. The token
// is read from the Authorization header or, failing that, the token cookie.
func AuthTokenMiddleware(verifyToken TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		accessToken, err := accessTokenFromRequest(c.Request)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		ok, err := verifyToken.VerifyToken(c.Request.Context(), accessToken)
		if err != nil {
			logrus.Debugf("token rejected: %v", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": ErrTokenRejected.Error()})
			return
		}

		c.Next()
	}
}

func accessTokenFromRequest(r *http.Request) (string, error) {
	if header := r.Header.Get(authorization); header != "" {
		scheme, token, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			return "", ErrTokenNotFound
		}
		return strings.TrimSpace(token), nil
	}

	if cookie, err := r.Cookie(TokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value, nil
	}

	return "", ErrTokenNotFound
}

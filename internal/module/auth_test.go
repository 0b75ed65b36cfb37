package module

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type staticTokens map[string]bool

func (s staticTokens) VerifyToken(ctx context.Context, token string) (bool, error) {
	if token == "broken" {
		return false, errors.New("invalid token")
	}
	return s[token], nil
}

func TestAuthTokenMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.GET("/admin", AuthTokenMiddleware(staticTokens{"good": true}), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	tests := []struct {
		name   string
		header string
		cookie string
		want   int
	}{
		{name: "no token", want: http.StatusUnauthorized},
		{name: "bearer", header: "Bearer good", want: http.StatusNoContent},
		{name: "lowercase scheme", header: "bearer good", want: http.StatusNoContent},
		{name: "basic scheme", header: "Basic good", want: http.StatusUnauthorized},
		{name: "bare token", header: "good", want: http.StatusUnauthorized},
		{name: "unknown token", header: "Bearer other", want: http.StatusUnauthorized},
		{name: "verify error", header: "Bearer broken", want: http.StatusUnauthorized},
		{name: "cookie", cookie: "good", want: http.StatusNoContent},
		{name: "header wins over cookie", header: "Bearer other", cookie: "good", want: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: TokenCookie, Value: tt.cookie})
			}

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestTokenPair(t *testing.T) {
	access, refresh, err := GenerateTokenPair(42, "a@example.com")
	require.NoError(t, err)

	claims, err := ParseToken(access)
	require.NoError(t, err)
	assert.EqualValues(t, 42, claims.UserID)
	assert.Equal(t, "a@example.com", claims.Email)
	assert.False(t, claims.IsRefresh())

	claims, err = ParseToken(refresh)
	require.NoError(t, err)
	assert.True(t, claims.IsRefresh())
}

func TestParseToken_WrongSecretOrIssuer(t *testing.T) {
	orig := GetJWTConfig()
	defer SetJWTConfig(orig)

	token, err := GenerateAccessToken(1, "a@example.com")
	require.NoError(t, err)

	SetJWTConfig(&JWTConfig{SecretKey: "other", AccessTokenTTL: time.Hour, RefreshTokenTTL: time.Hour, Issuer: orig.Issuer})
	_, err = ParseToken(token)
	assert.Error(t, err)

	SetJWTConfig(&JWTConfig{SecretKey: orig.SecretKey, AccessTokenTTL: time.Hour, RefreshTokenTTL: time.Hour, Issuer: "someone-else"})
	_, err = ParseToken(token)
	assert.Error(t, err)
}

func TestJWTAuth(t *testing.T) {
	r := gin.New()
	r.GET("/me", JWTAuth(), AuditContext(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id":  GetUserID(c),
			"email":    GetEmail(c),
			"audit_id": GetAuditUserID(c.Request.Context()),
		})
	})

	access, refresh, err := GenerateTokenPair(7, "owner@example.com")
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"not bearer", "Token " + access, http.StatusUnauthorized},
		{"garbage", "Bearer abc.def.ghi", http.StatusUnauthorized},
		{"refresh token", "Bearer " + refresh, http.StatusUnauthorized},
		{"ok", "Bearer " + access, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				assert.JSONEq(t, `{"user_id":7,"email":"owner@example.com","audit_id":7}`, w.Body.String())
			} else {
				assert.Contains(t, w.Body.String(), `"error"`)
			}
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	r := gin.New()
	r.GET("/p", OptionalAuth(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": GetUserID(c)})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/p", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":0}`, w.Body.String())

	access, err := GenerateAccessToken(3, "x@example.com")
	require.NoError(t, err)
	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/p", nil)
	req.Header.Set("Authorization", "Bearer "+access)
	r.ServeHTTP(w, req)
	assert.JSONEq(t, `{"user_id":3}`, w.Body.String())
}

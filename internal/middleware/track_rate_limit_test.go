package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackRateLimiter_Enforce(t *testing.T) {
	_, err := NewTrackRateLimiter("lots", nil)
	assert.Error(t, err)

	l, err := NewTrackRateLimiter("2-M", nil)
	require.NoError(t, err)

	r := gin.New()
	require.NoError(t, r.SetTrustedProxies(nil))
	r.POST("/track", l.Enforce(), func(c *gin.Context) { c.Status(http.StatusOK) })

	hit := func(remoteAddr, forwarded string) int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/track", nil)
		req.RemoteAddr = remoteAddr
		if forwarded != "" {
			req.Header.Set("X-Forwarded-For", forwarded)
		}
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, hit("203.0.113.1:5000", ""))
	assert.Equal(t, http.StatusOK, hit("203.0.113.1:5001", "198.51.100.1"))
	// 伪造转发头不能绕过
	assert.Equal(t, http.StatusTooManyRequests, hit("203.0.113.1:5002", "198.51.100.2"))
	// 按 IP 独立计数
	assert.Equal(t, http.StatusOK, hit("203.0.113.2:5000", ""))
}

func TestTrackRateLimiter_TrustedProxy(t *testing.T) {
	l, err := NewTrackRateLimiter("1-M", nil)
	require.NoError(t, err)

	r := gin.New()
	require.NoError(t, r.SetTrustedProxies([]string{"10.0.0.0/8"}))
	r.GET("/track", l.Enforce(), func(c *gin.Context) { c.Status(http.StatusOK) })

	hit := func(client string) int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/track", nil)
		req.RemoteAddr = "10.0.0.5:443"
		req.Header.Set("X-Forwarded-For", client)
		r.ServeHTTP(w, req)
		return w.Code
	}

	// 同一代理后的不同用户各自计数
	assert.Equal(t, http.StatusOK, hit("198.51.100.1"))
	assert.Equal(t, http.StatusOK, hit("198.51.100.2"))
	assert.Equal(t, http.StatusTooManyRequests, hit("198.51.100.1"))
}

func TestTrackRateLimiter_Mark(t *testing.T) {
	l, err := NewTrackRateLimiter("1-M", nil)
	require.NoError(t, err)

	r := gin.New()
	var limited []bool
	r.GET("/click", l.Mark(), func(c *gin.Context) {
		limited = append(limited, TrackLimited(c))
		c.Status(http.StatusFound)
	})

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/click", nil)
		req.RemoteAddr = "203.0.113.7:1234"
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusFound, w.Code)
	}
	assert.Equal(t, []bool{false, true, true}, limited)
}

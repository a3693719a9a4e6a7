package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsSlug(t *testing.T) {
	for _, s := range []string{"demo-store", "a", "iphone-15-pro-max"} {
		assert.True(t, IsSlug(s), s)
	}
	for _, s := range []string{"", "Demo", "a b", "a_b", "loja/1"} {
		assert.False(t, IsSlug(s), s)
	}
}

func TestRegisterValidators(t *testing.T) {
	require.NoError(t, RegisterValidators())

	type form struct {
		Slug  string `json:"slug" binding:"required,slug"`
		Color string `json:"color" binding:"hexcolor_or_empty"`
	}
	r := gin.New()
	r.POST("/", func(c *gin.Context) {
		var f form
		if err := c.ShouldBindJSON(&f); err != nil {
			c.Status(http.StatusBadRequest)
			return
		}
		c.Status(http.StatusOK)
	})

	tests := []struct {
		body   string
		status int
	}{
		{`{"slug":"ok-1","color":"#3b82F6"}`, http.StatusOK},
		{`{"slug":"ok-1"}`, http.StatusOK},
		{`{"slug":"Not Ok"}`, http.StatusBadRequest},
		{`{"slug":"ok","color":"blue"}`, http.StatusBadRequest},
		{`{"slug":"ok","color":"#fff"}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(tt.body)))
		assert.Equal(t, tt.status, w.Code, tt.body)
	}
}

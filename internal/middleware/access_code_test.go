package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type fakeValidator struct {
	valid string
	err   error
}

func (f *fakeValidator) IsValid(_ context.Context, code string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return code == f.valid, nil
}

func accessCodeRouter(v CodeValidator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/gated", AccessCode(v), func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return r
}

func TestAccessCode(t *testing.T) {
	r := accessCodeRouter(&fakeValidator{valid: "483920"})

	tests := []struct {
		name     string
		header   string
		query    string
		wantCode int
	}{
		{"missing code", "", "", http.StatusUnauthorized},
		{"invalid header code", "000000", "", http.StatusUnauthorized},
		{"valid header code", "483920", "", http.StatusOK},
		{"valid query code", "", "483920", http.StatusOK},
		{"header wins over query", "483920", "000000", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := "/gated"
			if tt.query != "" {
				path += "?code=" + tt.query
			}
			req := httptest.NewRequest(http.MethodGet, path, nil)
			if tt.header != "" {
				req.Header.Set(HeaderAccessCode, tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.wantCode, w.Code)
		})
	}
}

func TestAccessCode_ValidatorError(t *testing.T) {
	r := accessCodeRouter(&fakeValidator{err: errors.New("db down")})

	req := httptest.NewRequest(http.MethodGet, "/gated", nil)
	req.Header.Set(HeaderAccessCode, "483920")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

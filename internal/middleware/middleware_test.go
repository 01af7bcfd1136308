package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rewardscraft/studio/internal/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func sessionRouter(tokens *auth.TokenService) *gin.Engine {
	r := gin.New()
	r.GET("/me", SessionToken(tokens), func(c *gin.Context) {
		id, _ := SessionID(c)
		c.String(http.StatusOK, id.String())
	})
	return r
}

func TestSessionToken_Sources(t *testing.T) {
	tokens := auth.NewTokenService("secret", time.Hour)
	id := uuid.New()
	token, err := tokens.Issue(id)
	require.NoError(t, err)
	r := sessionRouter(tokens)

	cases := map[string]func(*http.Request){
		"header": func(req *http.Request) { req.Header.Set("Authorization", "Bearer "+token) },
		"cookie": func(req *http.Request) { req.AddCookie(&http.Cookie{Name: SessionCookie, Value: token}) },
		"query":  func(req *http.Request) { req.URL.RawQuery = "token=" + token },
	}
	for name, set := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			set(req)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, id.String(), w.Body.String())
		})
	}
}

func TestSessionToken_Rejects(t *testing.T) {
	r := sessionRouter(auth.NewTokenService("secret", time.Hour))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer nope")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"unauthorized"`)
}

func TestRateLimiter(t *testing.T) {
	l := NewRateLimiter(RateLimitConfig{RequestsPerMinute: 60, Burst: 2})
	assert.True(t, l.Allow("a"))
	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"))
	assert.True(t, l.Allow("b"))

	off := NewRateLimiter(RateLimitConfig{})
	for i := 0; i < 10; i++ {
		assert.True(t, off.Allow("a"))
	}
}

func TestRateLimiter_Middleware(t *testing.T) {
	l := NewRateLimiter(RateLimitConfig{RequestsPerMinute: 60, Burst: 1})
	r := gin.New()
	r.POST("/save", l.Middleware(), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/save", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/save", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS("http://localhost:3000"))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "http://evil.test")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

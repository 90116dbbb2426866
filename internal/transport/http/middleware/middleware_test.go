package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"profilehub/internal/app"
	"profilehub/internal/model"
)

type fakeAuthenticator struct {
	users map[string]*model.User
	err   error
}

func (f fakeAuthenticator) Authenticate(_ context.Context, token string) (*model.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	user, ok := f.users[token]
	if !ok {
		return nil, fmt.Errorf("%w: bad signature", app.ErrUnauthorized)
	}
	return user, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newAuthRouter(auth Authenticator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/me", AuthJWT(auth, discardLogger()), func(c *gin.Context) {
		user := CurrentUser(c)
		c.JSON(http.StatusOK, gin.H{"id": user.ID})
	})
	return router
}

func TestAuthJWT(t *testing.T) {
	auth := fakeAuthenticator{users: map[string]*model.User{"good": {ID: "u1"}}}

	cases := []struct {
		name       string
		header     string
		auth       Authenticator
		wantStatus int
		wantMsg    string
	}{
		{"missing header", "", auth, http.StatusUnauthorized, "Authorization token missing"},
		{"wrong scheme", "Basic good", auth, http.StatusUnauthorized, "Invalid authorization header"},
		{"empty token", "Bearer   ", auth, http.StatusUnauthorized, "Invalid authorization header"},
		{"bad token", "Bearer nope", auth, http.StatusUnauthorized, "Invalid or expired token"},
		{"deleted user", "Bearer good", fakeAuthenticator{err: app.ErrUserNotFound}, http.StatusUnauthorized, "User not found"},
		{"store failure", "Bearer good", fakeAuthenticator{err: errors.New("db down")}, http.StatusInternalServerError, "Internal server error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			resp := httptest.NewRecorder()
			newAuthRouter(tc.auth).ServeHTTP(resp, req)

			assert.Equal(t, tc.wantStatus, resp.Code)
			var body map[string]any
			require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
			assert.Equal(t, tc.wantMsg, body["message"])
			assert.NotContains(t, body, "id")
		})
	}
}

func TestAuthJWT_SchemeIsCaseInsensitive(t *testing.T) {
	router := newAuthRouter(fakeAuthenticator{users: map[string]*model.User{"good": {ID: "u1"}}})

	for _, header := range []string{"Bearer good", "bearer good", "BEARER  good "} {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", header)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)

		require.Equal(t, http.StatusOK, resp.Code, header)
		assert.JSONEq(t, `{"id":"u1"}`, resp.Body.String())
	}
}

func TestCurrentUserWithoutAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Nil(t, CurrentUser(c))
}

func TestRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var logs bytes.Buffer
	router := gin.New()
	router.Use(RequestID(slog.New(slog.NewTextHandler(&logs, nil))))
	router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, RequestIDFromContext(c))
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "  abc-123 ")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	assert.Equal(t, "abc-123", resp.Header().Get(RequestIDHeader))
	assert.Equal(t, "abc-123", resp.Body.String())
	assert.Contains(t, logs.String(), "request_id=abc-123")
	assert.Contains(t, logs.String(), "route=/ping")

	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Len(t, resp.Header().Get(RequestIDHeader), 36)
}

func TestCORS(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(CORS())
	router.GET("/api/getusers", func(c *gin.Context) { c.Status(http.StatusOK) })

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodOptions, "/api/getusers", nil))
	assert.Equal(t, http.StatusNoContent, resp.Code)
	assert.Equal(t, "*", resp.Header().Get("Access-Control-Allow-Origin"))

	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/getusers", nil))
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "*", resp.Header().Get("Access-Control-Allow-Origin"))
}

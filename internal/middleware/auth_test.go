package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"certgo_backend/internal/model"
	"certgo_backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type stubResolver map[string]*model.User

func (s stubResolver) ResolveToken(ctx context.Context, token string) (*model.User, error) {
	switch token {
	case "expired":
		return nil, fmt.Errorf("%w: token is expired", util.ErrUnauthorized)
	case "orphan":
		return nil, util.ErrNotFound
	case "broken":
		return nil, errors.New("db down")
	}
	if u, ok := s[token]; ok {
		return u, nil
	}
	return nil, util.ErrUnauthorized
}

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	resolver := stubResolver{
		"learner": {Email: "l@x.com", Role: model.Learner},
		"admin":   {Email: "a@x.com", Role: model.Admin},
	}
	r.GET("/me", AuthMiddleware(resolver), func(c *gin.Context) {
		c.String(http.StatusOK, util.GetUserFromContext(c).Email)
	})
	r.GET("/admin", AuthMiddleware(resolver), RoleMiddleware(model.Admin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func do(r *gin.Engine, path, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	r := newRouter()

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic learner", http.StatusUnauthorized},
		{"empty token", "Bearer ", http.StatusUnauthorized},
		{"unknown token", "Bearer nope", http.StatusUnauthorized},
		{"expired token", "Bearer expired", http.StatusUnauthorized},
		{"user deleted", "Bearer orphan", http.StatusNotFound},
		{"resolver failure", "Bearer broken", http.StatusInternalServerError},
		{"valid", "Bearer learner", http.StatusOK},
		{"scheme is case-insensitive", "bearer learner", http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := do(r, "/me", tc.header)
			assert.Equal(t, tc.status, w.Code)
			if tc.status == http.StatusUnauthorized {
				assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))
			}
		})
	}

	w := do(r, "/me", "Bearer learner")
	assert.Equal(t, "l@x.com", w.Body.String())
}

func TestRoleMiddleware(t *testing.T) {
	r := newRouter()

	assert.Equal(t, http.StatusForbidden, do(r, "/admin", "Bearer learner").Code)
	assert.Equal(t, http.StatusNoContent, do(r, "/admin", "Bearer admin").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "/admin", "").Code)
}

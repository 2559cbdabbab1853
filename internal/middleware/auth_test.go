package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/memodb-io/notespace/internal/config"
	"github.com/memodb-io/notespace/internal/modules/model"
	"github.com/memodb-io/notespace/internal/modules/service"
)

type stubAuthenticator struct {
	users map[string]*model.User
	err   error
}

func (s stubAuthenticator) Authenticate(_ context.Context, token string) (*model.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	if u, ok := s.users[token]; ok {
		return u, nil
	}
	return nil, service.ErrUnauthenticated
}

func setupAuthRouter(cfg *config.Config, auth Authenticator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", SessionAuth(cfg, auth), func(c *gin.Context) {
		u := c.MustGet("user").(*model.User)
		c.String(http.StatusOK, u.Username)
	})
	return r
}

func TestSessionAuth(t *testing.T) {
	cfg := &config.Config{}
	cfg.Auth.CookieName = "notespace_session"
	alice := &model.User{ID: uuid.New(), Username: "alice"}
	auth := stubAuthenticator{users: map[string]*model.User{"ns_sess_good": alice}}

	tests := []struct {
		name           string
		auth           Authenticator
		header         string
		cookie         string
		expectedStatus int
		expectedBody   string
	}{
		{name: "bearer token", auth: auth, header: "Bearer ns_sess_good", expectedStatus: http.StatusOK, expectedBody: "alice"},
		{name: "cookie token", auth: auth, cookie: "ns_sess_good", expectedStatus: http.StatusOK, expectedBody: "alice"},
		{name: "missing token", auth: auth, expectedStatus: http.StatusUnauthorized},
		{name: "unknown token", auth: auth, header: "Bearer ns_sess_bad", expectedStatus: http.StatusUnauthorized},
		{name: "inactive account", auth: stubAuthenticator{err: service.ErrInactiveAccount}, header: "Bearer x", expectedStatus: http.StatusForbidden},
		{name: "store failure", auth: stubAuthenticator{err: errors.New("redis down")}, header: "Bearer x", expectedStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupAuthRouter(cfg, tt.auth)
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: cfg.Auth.CookieName, Value: tt.cookie})
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedBody != "" {
				assert.Equal(t, tt.expectedBody, w.Body.String())
			}
		})
	}
}

func TestZapLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.InfoLevel)
	r := gin.New()
	r.Use(ZapLogger(zap.New(core)))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	for _, p := range []string{"/ok", "/boom"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, p, nil))
	}

	entries := logs.All()
	if assert.Len(t, entries, 2) {
		assert.Equal(t, zap.InfoLevel, entries[0].Level)
		assert.Equal(t, zap.ErrorLevel, entries[1].Level)
		assert.Equal(t, "/boom", entries[1].ContextMap()["route"])
	}
}

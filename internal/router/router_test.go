package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/memodb-io/notespace/internal/config"
	"github.com/memodb-io/notespace/internal/modules/handler"
	"github.com/memodb-io/notespace/internal/modules/model"
	"github.com/memodb-io/notespace/internal/modules/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type denyAll struct{}

func (denyAll) Authenticate(context.Context, string) (*model.User, error) {
	return nil, service.ErrUnauthenticated
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{}
	r, err := NewRouter(RouterDeps{
		Config:            cfg,
		Log:               zap.NewNop(),
		Accounts:          denyAll{},
		AccountHandler:    handler.NewAccountHandler(nil, cfg),
		ProjectHandler:    handler.NewProjectHandler(nil),
		MembershipHandler: handler.NewMembershipHandler(nil),
		NoteHandler:       handler.NewNoteHandler(nil),
		AssetHandler:      handler.NewAssetHandler(nil),
	})
	require.NoError(t, err)
	return r
}

func TestRouter_PublicAndProtectedRoutes(t *testing.T) {
	r := newTestRouter(t)

	tests := []struct {
		method string
		path   string
		status int
	}{
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/api/v1/ping", http.StatusOK},
		{http.MethodGet, "/api/v1/note", http.StatusUnauthorized},
		{http.MethodGet, "/api/v1/note/search?q=x", http.StatusUnauthorized},
		{http.MethodPost, "/api/v1/project", http.StatusUnauthorized},
		{http.MethodPatch, "/api/v1/membership/0b6f5f5e-1111-4c8e-9d7a-3c1e2a4b5c6d", http.StatusUnauthorized},
		{http.MethodPost, "/api/v1/auth/logout", http.StatusUnauthorized},
		{http.MethodGet, "/api/v1/public/note/not-a-uuid", http.StatusBadRequest},
		{http.MethodPost, "/api/v1/auth/login", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

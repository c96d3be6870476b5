package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	glog "github.com/Laisky/go-utils/v6/log"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	mcpServer "github.com/Laisky/websearch-mcp/internal/mcp"
	"github.com/Laisky/websearch-mcp/internal/mcp/keyregistry"
	"github.com/Laisky/websearch-mcp/library/search"
)

var (
	ginModeOnce sync.Once
)

func setupGinTestMode() {
	ginModeOnce.Do(func() {
		gin.SetMode(gin.TestMode)
	})
}

type stubProvider struct{}

func (p *stubProvider) Search(_ context.Context, _ string, _ search.Query) ([]search.ResultItem, error) {
	return nil, nil
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	setupGinTestMode()

	srv, err := mcpServer.NewServer(mcpServer.Settings{
		TrustedOrigins:       []string{"http://localhost:8001/mcp"},
		GeneralSearchEnabled: true,
	}, &stubProvider{}, nil, nil, glog.Shared)
	require.NoError(t, err)

	router := gin.New()
	registerRoutes(router, srv, keyregistry.New())
	return router
}

func TestRegisterRoutesServesJWKS(t *testing.T) {
	router := newTestRouter(t)

	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/.well-known/jwks.json", nil)
	router.ServeHTTP(recorder, req)

	require.Equal(t, http.StatusOK, recorder.Code)
	require.Contains(t, recorder.Body.String(), `"keys"`)
}

func TestRegisterRoutesRejectsInvalidRegistration(t *testing.T) {
	router := newTestRouter(t)

	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(recorder, req)

	require.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestRegisterRoutesGuardsMCPOrigin(t *testing.T) {
	router := newTestRouter(t)

	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader(`{}`))
	req.Header.Set("Origin", "https://evil.example.com")
	router.ServeHTTP(recorder, req)

	require.Equal(t, http.StatusForbidden, recorder.Code)
}
